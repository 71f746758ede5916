package importer

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/de-tools/price-atlas/pkg/adapters"
	"github.com/de-tools/price-atlas/pkg/models/domain"
	"github.com/de-tools/price-atlas/pkg/models/store"
	"github.com/de-tools/price-atlas/pkg/services/observations"
	"github.com/de-tools/price-atlas/pkg/store/duckdb"
	"github.com/de-tools/price-atlas/pkg/store/duckdb/imports"
	duckdbobservations "github.com/de-tools/price-atlas/pkg/store/duckdb/observations"
	"github.com/de-tools/price-atlas/pkg/store/reference"
	"github.com/rs/zerolog"
)

// Result summarises one import. Report counts how many of the read rows
// will survive ingestion; all rows are stored as received.
type Result struct {
	Read     int
	Replaced int64
	Report   domain.IngestReport
}

type Options struct {
	// File is recorded in the import ledger.
	File string
	// Source labels the stored rows; defaults to reference.SourceReference.
	Source string
	// Replace deletes rows previously imported under Source first.
	Replace bool
}

type Importer struct {
	db    *sql.DB
	store duckdbobservations.Store
	runs  imports.Store
	read  func(path string) ([]store.ObservationRecord, error)
}

func NewImporter(db *sql.DB, observationStore duckdbobservations.Store, runs imports.Store) (*Importer, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	if observationStore == nil {
		return nil, fmt.Errorf("observation store is nil")
	}
	if runs == nil {
		return nil, fmt.Errorf("import ledger is nil")
	}
	return &Importer{db: db, store: observationStore, runs: runs, read: reference.ReadFile}, nil
}

// Runs lists the most recent imports first.
func (i *Importer) Runs(ctx context.Context, limit int) ([]store.ImportRun, error) {
	return i.runs.List(ctx, limit)
}

// ImportFile loads a CSV or XLSX reference file into the observation store
// in a single transaction.
func (i *Importer) ImportFile(ctx context.Context, path string, opts Options) (*Result, error) {
	logger := zerolog.Ctx(ctx)

	records, err := i.read(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if opts.File == "" {
		opts.File = path
	}
	return i.Import(ctx, records, opts, logger.With().Str("file", path).Logger())
}

func (i *Importer) Import(
	ctx context.Context,
	records []store.ObservationRecord,
	opts Options,
	logger zerolog.Logger,
) (*Result, error) {
	source := opts.Source
	if source == "" {
		source = reference.SourceReference
	}
	for idx := range records {
		records[idx].Source = source
	}

	_, report := observations.Ingest(adapters.MapStoreObservationsToDomainRaw(records))
	result := &Result{Read: len(records), Report: report}

	tx, err := i.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	ctxWithTx := duckdb.WithTransaction(ctx, tx)

	if opts.Replace {
		result.Replaced, err = i.store.DeleteSource(ctxWithTx, source)
		if err != nil {
			_ = tx.Rollback()
			return nil, fmt.Errorf("replace source %q: %w", source, err)
		}
	}
	if err := i.store.Add(ctxWithTx, records); err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("store observations: %w", err)
	}
	run := &store.ImportRun{
		Source:   source,
		File:     opts.File,
		Read:     result.Read,
		Accepted: report.Accepted,
		Dropped:  report.Dropped,
		Replaced: result.Replaced,
	}
	if err := i.runs.Add(ctxWithTx, run); err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("record import run: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}

	logger.Info().
		Str("source", source).
		Int("read", result.Read).
		Int64("replaced", result.Replaced).
		Int("accepted", report.Accepted).
		Int("dropped", report.Dropped).
		Msg("observations imported")
	return result, nil
}
