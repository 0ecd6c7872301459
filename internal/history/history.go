// Package history persists completed analyses to a local SQLite database so
// past evaluations can be reviewed without re-running them.
package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"sherlock/internal/analysis"
	"sherlock/internal/logging"
)

// Entry is one recorded analysis run.
type Entry struct {
	ID         string
	Project    string
	Evidence   string
	Heuristics string
	Context    string
	Results    []analysis.Result
	Tokens     int
	CreatedAt  time.Time
}

// Store persists analysis history.
type Store struct {
	db     *sql.DB
	mu     sync.RWMutex
	dbPath string
}

// NewStore opens (or creates) the history database at the given path.
func NewStore(path string) (*Store, error) {
	logging.Store("Initializing history store at path: %s", path)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logging.StoreDebug("Failed to set sqlite busy_timeout: %v", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		logging.StoreDebug("Failed to set sqlite journal_mode=WAL: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL"); err != nil {
		logging.StoreDebug("Failed to set sqlite synchronous=NORMAL: %v", err)
	}

	store := &Store{db: db, dbPath: path}
	if err := store.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS analyses (
		id TEXT PRIMARY KEY,
		project TEXT NOT NULL,
		evidence TEXT NOT NULL,
		heuristics TEXT NOT NULL,
		context TEXT,
		results TEXT NOT NULL,
		tokens INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_analyses_created ON analyses(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_analyses_project ON analyses(project);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record stores one completed analysis and returns its id.
func (s *Store) Record(project, evidence, heuristics, contextText string, report *analysis.Report) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	results, err := json.Marshal(report.Results)
	if err != nil {
		return "", fmt.Errorf("failed to encode results: %w", err)
	}

	id := uuid.New().String()
	_, err = s.db.Exec(
		`INSERT INTO analyses (id, project, evidence, heuristics, context, results, tokens, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, project, evidence, heuristics, contextText, string(results), report.TotalTokens(), time.Now().UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to record analysis: %w", err)
	}
	logging.Store("Recorded analysis %s (project=%s evidence=%s)", id, project, evidence)
	return id, nil
}

// Recent returns the newest entries, most recent first.
func (s *Store) Recent(limit int) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(
		`SELECT id, project, evidence, heuristics, context, results, tokens, created_at
		 FROM analyses ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// ByProject returns the newest entries for one project.
func (s *Store) ByProject(project string, limit int) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(
		`SELECT id, project, evidence, heuristics, context, results, tokens, created_at
		 FROM analyses WHERE project = ? ORDER BY created_at DESC LIMIT ?`, project, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		var e Entry
		var results string
		if err := rows.Scan(&e.ID, &e.Project, &e.Evidence, &e.Heuristics, &e.Context, &results, &e.Tokens, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		if err := json.Unmarshal([]byte(results), &e.Results); err != nil {
			logging.StoreDebug("Skipping undecodable results for %s: %v", e.ID, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
