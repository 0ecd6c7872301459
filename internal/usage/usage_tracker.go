// Package usage records per-run token consumption, aggregated by project,
// model, operation, and session, persisted as JSON under .sherlock/.
package usage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"sherlock/internal/gemini"
	"sherlock/internal/logging"
)

// Tracker manages token usage recording and persistence.
type Tracker struct {
	mu        sync.Mutex
	data      UsageData
	filePath  string
	sessionID string
}

// NewTracker creates a usage tracker persisting under the given workspace.
func NewTracker(workspacePath string) (*Tracker, error) {
	sherlockDir := filepath.Join(workspacePath, ".sherlock")
	if err := os.MkdirAll(sherlockDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create .sherlock dir: %w", err)
	}

	t := &Tracker{
		filePath:  filepath.Join(sherlockDir, "usage.json"),
		sessionID: uuid.New().String(),
		data: UsageData{
			Version: "1.0",
			Aggregate: AggregatedStats{
				ByProject:   make(map[string]TokenCounts),
				ByModel:     make(map[string]TokenCounts),
				ByOperation: make(map[string]TokenCounts),
				BySession:   make(map[string]TokenCounts),
			},
		},
	}

	if err := t.Load(); err != nil {
		logging.UsageDebug("starting with empty usage data: %v", err)
	}
	return t, nil
}

// SessionID returns this run's session identifier.
func (t *Tracker) SessionID() string {
	return t.sessionID
}

// Load reads the usage data from disk.
func (t *Tracker) Load() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	data, err := os.ReadFile(t.filePath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, &t.data); err != nil {
		return err
	}

	// Ensure maps are initialized if file was empty/partial
	if t.data.Aggregate.ByProject == nil {
		t.data.Aggregate.ByProject = make(map[string]TokenCounts)
	}
	if t.data.Aggregate.ByModel == nil {
		t.data.Aggregate.ByModel = make(map[string]TokenCounts)
	}
	if t.data.Aggregate.ByOperation == nil {
		t.data.Aggregate.ByOperation = make(map[string]TokenCounts)
	}
	if t.data.Aggregate.BySession == nil {
		t.data.Aggregate.BySession = make(map[string]TokenCounts)
	}
	return nil
}

// Save writes the usage data to disk.
func (t *Tracker) Save() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.saveLocked()
}

func (t *Tracker) saveLocked() error {
	data, err := json.MarshalIndent(t.data, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(t.filePath, data, 0644)
}

// Track records the token usage of one generation call. A nil usage is a
// no-op: the service reported no accounting.
func (t *Tracker) Track(project, model, operation string, u *gemini.UsageMetadata) {
	if u == nil {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	prompt, response := u.PromptTokenCount, u.CandidatesTokenCount
	t.data.Aggregate.Total.Add(prompt, response)
	addToMap(t.data.Aggregate.ByProject, project, prompt, response)
	addToMap(t.data.Aggregate.ByModel, model, prompt, response)
	addToMap(t.data.Aggregate.ByOperation, operation, prompt, response)
	addToMap(t.data.Aggregate.BySession, t.sessionID, prompt, response)

	logging.Usage("Track: project=%s model=%s operation=%s prompt=%d response=%d", project, model, operation, prompt, response)
}

// Stats returns a copy of the aggregated stats.
func (t *Tracker) Stats() AggregatedStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	stats := t.data.Aggregate
	stats.ByProject = copyTokenCountsMap(stats.ByProject)
	stats.ByModel = copyTokenCountsMap(stats.ByModel)
	stats.ByOperation = copyTokenCountsMap(stats.ByOperation)
	stats.BySession = copyTokenCountsMap(stats.BySession)
	return stats
}

func copyTokenCountsMap(src map[string]TokenCounts) map[string]TokenCounts {
	if src == nil {
		return nil
	}
	dst := make(map[string]TokenCounts, len(src))
	for key, counts := range src {
		dst[key] = counts
	}
	return dst
}

func addToMap(m map[string]TokenCounts, key string, prompt, response int) {
	entry := m[key]
	entry.Add(prompt, response)
	m[key] = entry
}
