package imports

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/de-tools/price-atlas/pkg/models/store"
	"github.com/de-tools/price-atlas/pkg/store/duckdb"
	"github.com/google/uuid"
)

// Store is the ledger of reference file imports.
type Store interface {
	Add(ctx context.Context, run *store.ImportRun) error
	List(ctx context.Context, limit int) ([]store.ImportRun, error)
}

type defaultStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &defaultStore{
		db: db,
	}, nil
}

// Add inserts run, assigning an ID when it has none.
func (s *defaultStore) Add(ctx context.Context, run *store.ImportRun) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}

	stmt, err := duckdb.Prepare(ctx, s.db, `
		INSERT INTO import_runs (
			id, source, file, read_count, accepted_count, dropped_count, replaced_count
		) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(ctx, run.ID, run.Source, run.File, run.Read, run.Accepted, run.Dropped, run.Replaced)
	if err != nil {
		return fmt.Errorf("insert import run: %w", err)
	}
	return nil
}

// List returns the most recent runs first.
func (s *defaultStore) List(ctx context.Context, limit int) ([]store.ImportRun, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source, file, read_count, accepted_count, dropped_count, replaced_count, imported_at
		FROM import_runs
		ORDER BY imported_at DESC, id
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query import runs: %w", err)
	}
	defer rows.Close()

	var runs []store.ImportRun
	for rows.Next() {
		var (
			run  store.ImportRun
			file sql.NullString
		)
		if err := rows.Scan(
			&run.ID, &run.Source, &file, &run.Read, &run.Accepted, &run.Dropped, &run.Replaced, &run.ImportedAt,
		); err != nil {
			return nil, fmt.Errorf("scan import run: %w", err)
		}
		run.File = file.String
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
