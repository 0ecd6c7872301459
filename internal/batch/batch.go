// Package batch parses multi-item analysis manifests and runs them with
// bounded concurrency.
package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"sherlock/internal/analysis"
	"sherlock/internal/logging"
)

// Item is one analysis to run: a heuristic number paired with an evidence
// file, plus optional per-item context.
type Item struct {
	Heuristic string `json:"heuristic" yaml:"heuristic"`
	Evidence  string `json:"evidence" yaml:"evidence"`
	Context   string `json:"context,omitempty" yaml:"context,omitempty"`
}

// jsonItem tolerates the alternate key names accepted in manifests.
type jsonItem struct {
	Heuristic       string `json:"heuristic" yaml:"heuristic"`
	HeuristicNumber string `json:"heuristicNumber" yaml:"heuristicNumber"`
	Evidence        string `json:"evidence" yaml:"evidence"`
	File            string `json:"file" yaml:"file"`
	Video           string `json:"video" yaml:"video"`
	Context         string `json:"context" yaml:"context"`
}

func (j jsonItem) normalize() Item {
	item := Item{Heuristic: j.Heuristic, Evidence: j.Evidence, Context: j.Context}
	if item.Heuristic == "" {
		item.Heuristic = j.HeuristicNumber
	}
	if item.Evidence == "" {
		item.Evidence = j.File
	}
	if item.Evidence == "" {
		item.Evidence = j.Video
	}
	return item
}

// ParseFile reads a batch manifest. JSON and YAML manifests hold an array of
// items; the plain-text format is one "heuristic evidence" pair per line,
// with blank lines and # comments ignored.
func ParseFile(path string) ([]Item, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("batch file not found: %s", path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return parseStructured(content, json.Unmarshal)
	case ".yaml", ".yml":
		return parseStructured(content, yaml.Unmarshal)
	default:
		return parseText(content), nil
	}
}

func parseStructured(content []byte, unmarshal func([]byte, interface{}) error) ([]Item, error) {
	var raw []jsonItem
	if err := unmarshal(content, &raw); err != nil {
		return nil, fmt.Errorf("batch file must contain an array of items: %w", err)
	}

	var items []Item
	for _, j := range raw {
		item := j.normalize()
		if item.Heuristic == "" || item.Evidence == "" {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

func parseText(content []byte) []Item {
	var items []Item
	for _, line := range strings.Split(string(content), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		fields := strings.Fields(trimmed)
		if len(fields) < 2 {
			continue
		}
		items = append(items, Item{
			Heuristic: fields[0],
			// Evidence names may contain spaces.
			Evidence: strings.Join(fields[1:], " "),
		})
	}
	return items
}

// Outcome is the result of one batch item.
type Outcome struct {
	Item     Item
	FileName string
	Report   *analysis.Report
	Err      error
}

// Summary aggregates a finished batch run.
type Summary struct {
	Total       int
	Pass        int
	Fail        int
	Rejected    int
	Errors      int
	TotalTokens int
}

// passScore is the minimum score counted as passing.
const passScore = 4

// RunFunc executes one item and returns its report.
type RunFunc func(ctx context.Context, item Item) (*analysis.Report, error)

// Runner executes batch items with bounded concurrency.
type Runner struct {
	// Concurrency caps items in flight. Zero or negative means sequential.
	Concurrency int

	// ContinueOnError records failures and keeps going instead of aborting
	// the whole batch on the first error.
	ContinueOnError bool

	// Progress, when set, is called as each item finishes.
	Progress func(done, total int, outcome Outcome)
}

// Run executes every item via fn. Outcomes are returned in manifest order.
func (r *Runner) Run(ctx context.Context, items []Item, fn RunFunc) ([]Outcome, Summary, error) {
	if len(items) == 0 {
		return nil, Summary{}, fmt.Errorf("no valid items to process")
	}

	limit := r.Concurrency
	if limit <= 0 {
		limit = 1
	}
	logging.Batch("Run: %d items, concurrency=%d", len(items), limit)

	outcomes := make([]Outcome, len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	var mu sync.Mutex
	done := 0

	for i, item := range items {
		g.Go(func() error {
			report, err := fn(gctx, item)
			outcome := Outcome{Item: item, FileName: filepath.Base(item.Evidence), Report: report, Err: err}
			outcomes[i] = outcome

			mu.Lock()
			done++
			if r.Progress != nil {
				r.Progress(done, len(items), outcome)
			}
			mu.Unlock()

			if err != nil {
				logging.Batch("Run: item %s/%s failed: %v", item.Heuristic, item.Evidence, err)
				if !r.ContinueOnError {
					return err
				}
			}
			return nil
		})
	}

	err := g.Wait()
	summary := summarize(outcomes)
	if err != nil {
		return outcomes, summary, err
	}
	return outcomes, summary, nil
}

func summarize(outcomes []Outcome) Summary {
	s := Summary{Total: len(outcomes)}
	for _, o := range outcomes {
		if o.Err != nil {
			s.Errors++
			continue
		}
		if o.Report == nil {
			continue
		}
		s.TotalTokens += o.Report.TotalTokens()
		if len(o.Report.Results) == 0 {
			continue
		}
		r := o.Report.Results[0]
		switch {
		case r.Rejected:
			s.Rejected++
		case r.Score >= passScore:
			s.Pass++
		default:
			s.Fail++
		}
	}
	return s
}
