// Package history persists build reports so past runs can be inspected from
// the command line.
package history

import (
	"context"
	"time"
)

// Entry is one recorded build.
type Entry struct {
	BuildID  string
	Started  time.Time
	Finished time.Time
	Outcome  string
	Posts    int
	Pages    int
	Rendered int
	Failed   int
	Issues   []string // formatted issue lines, stored as JSON
}

// Store defines the interface for persisting and retrieving build records.
type Store interface {
	// Record appends a build entry.
	Record(ctx context.Context, entry Entry) error

	// List returns the most recent entries, newest first.
	List(ctx context.Context, limit int) ([]Entry, error)

	// Close closes the store and releases resources.
	Close() error
}
