package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/gtin-cli/internal/db"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool db.Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 4
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS quota_usage (
	day  TEXT PRIMARY KEY,
	used INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS fill_runs (
	id           TEXT PRIMARY KEY,
	input        TEXT NOT NULL,
	mode         TEXT NOT NULL,
	rows_total   INTEGER NOT NULL,
	rows_filled  INTEGER NOT NULL,
	rows_skipped INTEGER NOT NULL,
	misses       INTEGER NOT NULL,
	calls_made   INTEGER NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_fill_runs_created_at ON fill_runs(created_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) UsedOn(ctx context.Context, day string) (int, error) {
	var used int
	err := s.pool.QueryRow(ctx,
		`SELECT used FROM quota_usage WHERE day = $1`, day,
	).Scan(&used)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, eris.Wrapf(err, "postgres: usage for %s", day)
	}
	return used, nil
}

func (s *PostgresStore) AddUsage(ctx context.Context, day string, n int) error {
	if n <= 0 {
		return nil
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO quota_usage (day, used) VALUES ($1, $2)
		 ON CONFLICT (day) DO UPDATE SET used = quota_usage.used + EXCLUDED.used`,
		day, n,
	)
	return eris.Wrapf(err, "postgres: add usage for %s", day)
}

func (s *PostgresStore) RecordRun(ctx context.Context, rec RunRecord) (*RunRecord, error) {
	rec.ID = uuid.New().String()
	rec.CreatedAt = time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO fill_runs (id, input, mode, rows_total, rows_filled, rows_skipped, misses, calls_made, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		rec.ID, rec.Input, rec.Mode, rec.RowsTotal, rec.RowsFilled, rec.RowsSkipped, rec.Misses, rec.CallsMade, rec.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert run")
	}
	return &rec, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, input, mode, rows_total, rows_filled, rows_skipped, misses, calls_made, created_at
		 FROM fill_runs ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var rec RunRecord
		if err := rows.Scan(&rec.ID, &rec.Input, &rec.Mode, &rec.RowsTotal, &rec.RowsFilled,
			&rec.RowsSkipped, &rec.Misses, &rec.CallsMade, &rec.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		out = append(out, rec)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate runs")
}
