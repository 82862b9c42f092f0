package store

import (
	"context"
	"database/sql"
	"fmt"

	"trichluc/internal/allocation/models"
)

// PostgresStore persists the audit log in the allocations table. Append-only:
// no UPDATE or DELETE is ever issued against it.
//
// Schema:
//
//	CREATE TABLE allocations (
//	    id                 UUID PRIMARY KEY,
//	    ward               TEXT NOT NULL,
//	    year               INT NOT NULL,
//	    sheet              TEXT NOT NULL,
//	    plot               TEXT NOT NULL,
//	    issued_number      BIGINT NOT NULL,
//	    issued_at          TIMESTAMPTZ NOT NULL,
//	    issued_by          TEXT NOT NULL,
//	    station            TEXT NOT NULL DEFAULT '',
//	    linked_record_code TEXT NOT NULL DEFAULT ''
//	);
//	CREATE INDEX allocations_ward_year_idx ON allocations (ward, year);
//	CREATE INDEX allocations_issued_at_idx ON allocations (issued_at DESC);
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, record models.AllocationRecord) error {
	query := `
		INSERT INTO allocations (
			id, ward, year, sheet, plot,
			issued_number, issued_at, issued_by, station, linked_record_code
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(ctx, query,
		record.ID,
		record.Ward,
		record.Year,
		record.Sheet,
		record.Plot,
		record.IssuedNumber,
		record.IssuedAt,
		record.IssuedBy,
		record.Station,
		record.LinkedRecordCode,
	)
	if err != nil {
		return fmt.Errorf("insert allocation: %w", err)
	}
	return nil
}

func (s *PostgresStore) Query(ctx context.Context, q models.Query) ([]models.AllocationRecord, error) {
	query := `
		SELECT id, ward, year, sheet, plot,
		       issued_number, issued_at, issued_by, station, linked_record_code
		FROM allocations
		WHERE ($1 = '' OR ward = $1)
		  AND ($2 = 0 OR ($2 <= $3 AND year <= $3) OR ($2 > $3 AND year = $2))
		  AND ($4 = '' OR sheet ILIKE '%' || $4 || '%'
		               OR plot ILIKE '%' || $4 || '%'
		               OR linked_record_code ILIKE '%' || $4 || '%')
		ORDER BY issued_at DESC
	`
	args := []any{q.Ward, q.Year, q.CutoverYear, q.Text}
	if q.Limit > 0 {
		query += ` LIMIT $5`
		args = append(args, q.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query allocations: %w", err)
	}
	defer rows.Close()

	var records []models.AllocationRecord
	for rows.Next() {
		var r models.AllocationRecord
		err := rows.Scan(
			&r.ID,
			&r.Ward,
			&r.Year,
			&r.Sheet,
			&r.Plot,
			&r.IssuedNumber,
			&r.IssuedAt,
			&r.IssuedBy,
			&r.Station,
			&r.LinkedRecordCode,
		)
		if err != nil {
			return nil, fmt.Errorf("scan allocation: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate allocations: %w", err)
	}
	return records, nil
}
