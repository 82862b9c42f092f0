package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"trichluc/internal/ward"
	"trichluc/pkg/platform/sentinel"
)

// PostgresStore persists the registry in the wards table. The position column
// preserves insertion order across restarts.
//
// Schema:
//
//	CREATE TABLE wards (
//	    name     TEXT PRIMARY KEY,
//	    position BIGSERIAL,
//	    added_at TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) List(ctx context.Context) ([]ward.Ward, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, added_at FROM wards ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query wards: %w", err)
	}
	defer rows.Close()

	var wards []ward.Ward
	for rows.Next() {
		var w ward.Ward
		if err := rows.Scan(&w.Name, &w.AddedAt); err != nil {
			return nil, fmt.Errorf("scan ward: %w", err)
		}
		wards = append(wards, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wards: %w", err)
	}
	return wards, nil
}

func (s *PostgresStore) Contains(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM wards WHERE name = $1)`, name,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check ward: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) Add(ctx context.Context, w ward.Ward) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO wards (name, added_at) VALUES ($1, $2)`, w.Name, w.AddedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert ward: %w", err)
	}
	return nil
}

func (s *PostgresStore) Remove(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM wards WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("delete ward: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete ward: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// Replace swaps the whole set in one transaction. Counters and allocation
// history are untouched.
func (s *PostgresStore) Replace(ctx context.Context, names []string, now time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace wards tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM wards`); err != nil {
		return fmt.Errorf("clear wards: %w", err)
	}
	for _, name := range names {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO wards (name, added_at) VALUES ($1, $2)`, name, now); err != nil {
			return fmt.Errorf("seed ward %q: %w", name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace wards tx: %w", err)
	}
	return nil
}
