package store

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

func TestPostgresStore_UsedOn_Empty(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT used FROM quota_usage WHERE day = \$1`).
		WithArgs("2026-08-26").
		WillReturnError(pgx.ErrNoRows)

	used, err := s.UsedOn(context.Background(), "2026-08-26")
	require.NoError(t, err)
	assert.Equal(t, 0, used)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UsedOn(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT used FROM quota_usage WHERE day = \$1`).
		WithArgs("2026-08-26").
		WillReturnRows(pgxmock.NewRows([]string{"used"}).AddRow(42))

	used, err := s.UsedOn(context.Background(), "2026-08-26")
	require.NoError(t, err)
	assert.Equal(t, 42, used)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_AddUsage(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO quota_usage`).
		WithArgs("2026-08-26", 5).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, s.AddUsage(context.Background(), "2026-08-26", 5))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_AddUsage_SkipsNonPositive(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	// No expectation set: a zero delta must not touch the database.
	require.NoError(t, s.AddUsage(context.Background(), "2026-08-26", 0))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_RecordRun(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO fill_runs`).
		WithArgs(pgxmock.AnyArg(), "products.csv", "sku", 3, 1, 1, 1, 2, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	rec, err := s.RecordRun(context.Background(), RunRecord{
		Input:       "products.csv",
		Mode:        "sku",
		RowsTotal:   3,
		RowsFilled:  1,
		RowsSkipped: 1,
		Misses:      1,
		CallsMade:   2,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListRuns(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	now := time.Now().UTC()
	rows := pgxmock.NewRows([]string{
		"id", "input", "mode", "rows_total", "rows_filled", "rows_skipped", "misses", "calls_made", "created_at",
	}).AddRow("run-1", "products.csv", "sku", 3, 1, 1, 1, 2, now)

	mock.ExpectQuery(`SELECT id, input, mode, rows_total`).
		WithArgs(10).
		WillReturnRows(rows)

	runs, err := s.ListRuns(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "run-1", runs[0].ID)
	assert.Equal(t, 2, runs[0].CallsMade)
	assert.NoError(t, mock.ExpectationsWereMet())
}
