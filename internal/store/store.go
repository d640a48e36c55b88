// Package store persists fill run history and the daily search quota ledger.
package store

import (
	"context"
	"time"
)

// RunRecord summarizes one completed fill run.
type RunRecord struct {
	ID          string    `json:"id"`
	Input       string    `json:"input"`
	Mode        string    `json:"mode"`
	RowsTotal   int       `json:"rows_total"`
	RowsFilled  int       `json:"rows_filled"`
	RowsSkipped int       `json:"rows_skipped"`
	Misses      int       `json:"misses"`
	CallsMade   int       `json:"calls_made"`
	CreatedAt   time.Time `json:"created_at"`
}

// Store defines the persistence interface for quota accounting and run
// history. Table contents are never persisted; only run summaries and the
// per-day call ledger.
type Store interface {
	// Quota ledger
	UsedOn(ctx context.Context, day string) (int, error)
	AddUsage(ctx context.Context, day string, n int) error

	// Runs
	RecordRun(ctx context.Context, rec RunRecord) (*RunRecord, error)
	ListRuns(ctx context.Context, limit int) ([]RunRecord, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Day formats t as the ledger's day key, a UTC calendar date. The CSE free
// tier resets daily, so usage is bucketed the same way.
func Day(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
