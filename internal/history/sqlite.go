package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore creates a new SQLite-backed build history store.
// Use ":memory:" for an in-memory database, or a file path for persistence.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close() // Best effort cleanup on initialization error
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS builds (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		build_id TEXT NOT NULL,
		started INTEGER NOT NULL,
		finished INTEGER NOT NULL,
		outcome TEXT NOT NULL,
		posts INTEGER NOT NULL,
		pages INTEGER NOT NULL,
		rendered INTEGER NOT NULL,
		failed INTEGER NOT NULL,
		issues TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_builds_build_id ON builds(build_id);
	CREATE INDEX IF NOT EXISTS idx_builds_started ON builds(started);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record appends a build entry.
func (s *SQLiteStore) Record(ctx context.Context, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	issuesJSON, err := json.Marshal(entry.Issues)
	if err != nil {
		return fmt.Errorf("marshal issues: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO builds (build_id, started, finished, outcome, posts, pages, rendered, failed, issues)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.BuildID, entry.Started.UnixMilli(), entry.Finished.UnixMilli(), entry.Outcome,
		entry.Posts, entry.Pages, entry.Rendered, entry.Failed, string(issuesJSON),
	)
	if err != nil {
		return fmt.Errorf("insert build: %w", err)
	}
	return nil
}

// List returns the most recent entries, newest first.
func (s *SQLiteStore) List(ctx context.Context, limit int) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT build_id, started, finished, outcome, posts, pages, rendered, failed, issues
		 FROM builds ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query builds: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var started, finished int64
		var issuesJSON sql.NullString
		if err := rows.Scan(&e.BuildID, &started, &finished, &e.Outcome,
			&e.Posts, &e.Pages, &e.Rendered, &e.Failed, &issuesJSON); err != nil {
			return nil, fmt.Errorf("scan build row: %w", err)
		}
		e.Started = time.UnixMilli(started).UTC()
		e.Finished = time.UnixMilli(finished).UTC()
		if issuesJSON.Valid && issuesJSON.String != "" {
			if err := json.Unmarshal([]byte(issuesJSON.String), &e.Issues); err != nil {
				return nil, fmt.Errorf("unmarshal issues: %w", err)
			}
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
