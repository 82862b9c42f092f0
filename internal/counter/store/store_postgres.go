package store

import (
	"context"
	"database/sql"
	"fmt"

	dErrors "trichluc/pkg/domain-errors"
)

// PostgresStore persists counters in the counters table. The upsert in
// Increment is a single atomic statement, so row-level locking in Postgres
// serializes concurrent increments per key with no gaps.
//
// Schema:
//
//	CREATE TABLE counters (
//	    scope_key  TEXT PRIMARY KEY,
//	    value      BIGINT NOT NULL DEFAULT 0,
//	    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Increment(ctx context.Context, scopeKey string) (int64, error) {
	query := `
		INSERT INTO counters (scope_key, value, updated_at)
		VALUES ($1, 1, now())
		ON CONFLICT (scope_key)
		DO UPDATE SET value = counters.value + 1, updated_at = now()
		RETURNING value
	`
	var value int64
	if err := s.db.QueryRowContext(ctx, query, scopeKey).Scan(&value); err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeUnavailable, "increment counter")
	}
	return value, nil
}

func (s *PostgresStore) Peek(ctx context.Context, scopeKey string) (int64, error) {
	var value int64
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM counters WHERE scope_key = $1`, scopeKey,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeUnavailable, "read counter")
	}
	return value, nil
}

func (s *PostgresStore) Overwrite(ctx context.Context, scopeKey string, value int64) error {
	if value < 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "counter value cannot be negative")
	}
	query := `
		INSERT INTO counters (scope_key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (scope_key)
		DO UPDATE SET value = EXCLUDED.value, updated_at = now()
	`
	if _, err := s.db.ExecContext(ctx, query, scopeKey, value); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, fmt.Sprintf("overwrite counter %q", scopeKey))
	}
	return nil
}
