package observations

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/de-tools/price-atlas/pkg/models/store"
	"github.com/de-tools/price-atlas/pkg/store/duckdb"
	"github.com/google/uuid"
)

// Store persists the raw observation feed: bundled reference data and manual
// corrections. Rows are kept as received; validation happens on ingestion.
type Store interface {
	Add(ctx context.Context, records []store.ObservationRecord) error
	List(ctx context.Context) ([]store.ObservationRecord, error)
	ListCommodity(ctx context.Context, commodity, specification string) ([]store.ObservationRecord, error)
	DeleteSource(ctx context.Context, source string) (int64, error)
	GetStats(ctx context.Context) (*store.ObservationStats, error)
}

type observationStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &observationStore{db: db}, nil
}

func (s *observationStore) Add(ctx context.Context, records []store.ObservationRecord) error {
	if len(records) == 0 {
		return nil
	}

	query := `
		INSERT INTO price_observations (
			id, commodity, specification, price, observed_on, region, source
		) VALUES (
			?, ?, ?, ?, ?, ?, ?
		)`

	stmt, err := duckdb.Prepare(ctx, s.db, query)
	if err != nil {
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, record := range records {
		id := record.ID
		if id == "" {
			id = uuid.NewString()
		}

		_, err = stmt.ExecContext(ctx,
			id,
			record.Commodity,
			record.Specification,
			record.Price,
			record.ObservedOn,
			record.Region,
			record.Source,
		)
		if err != nil {
			return fmt.Errorf("insert record: %w", err)
		}
	}

	return nil
}

const selectColumns = `id, commodity, specification, price, observed_on, region, source, ingested_at`

func (s *observationStore) List(ctx context.Context) ([]store.ObservationRecord, error) {
	query := `SELECT ` + selectColumns + ` FROM price_observations ORDER BY commodity, specification, observed_on`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query observations: %w", err)
	}
	defer rows.Close()
	return scanObservationRows(rows)
}

// ListCommodity matches commodity and specification case-insensitively,
// mirroring key normalization on ingestion.
func (s *observationStore) ListCommodity(
	ctx context.Context,
	commodity, specification string,
) ([]store.ObservationRecord, error) {
	query := `SELECT ` + selectColumns + `
		FROM price_observations
		WHERE lower(trim(commodity)) = ? AND lower(trim(specification)) = ?
		ORDER BY observed_on`
	rows, err := s.db.QueryContext(ctx, query,
		strings.ToLower(strings.TrimSpace(commodity)),
		strings.ToLower(strings.TrimSpace(specification)),
	)
	if err != nil {
		return nil, fmt.Errorf("query commodity observations: %w", err)
	}
	defer rows.Close()
	return scanObservationRows(rows)
}

func (s *observationStore) DeleteSource(ctx context.Context, source string) (int64, error) {
	stmt, err := duckdb.Prepare(ctx, s.db, `DELETE FROM price_observations WHERE source = ?`)
	if err != nil {
		return 0, fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	res, err := stmt.ExecContext(ctx, source)
	if err != nil {
		return 0, fmt.Errorf("delete observations: %w", err)
	}
	return res.RowsAffected()
}

func (s *observationStore) GetStats(ctx context.Context) (*store.ObservationStats, error) {
	query := `
		SELECT
			COUNT(*) AS total_records,
			COUNT(DISTINCT lower(trim(commodity)) || '|' || lower(trim(specification))) AS commodities,
			MIN(observed_on) AS first_observed,
			MAX(observed_on) AS last_observed
		FROM price_observations`

	var (
		total, commodities int64
		first, last        sql.NullString
	)
	if err := s.db.QueryRowContext(ctx, query).Scan(&total, &commodities, &first, &last); err != nil {
		return nil, fmt.Errorf("get observation stats: %w", err)
	}

	stats := &store.ObservationStats{RecordsCount: total, Commodities: commodities}
	if first.Valid {
		stats.FirstObserved = &first.String
	}
	if last.Valid {
		stats.LastObserved = &last.String
	}
	return stats, nil
}

func scanObservationRows(rows *sql.Rows) ([]store.ObservationRecord, error) {
	records := make([]store.ObservationRecord, 0)
	for rows.Next() {
		var (
			r                          store.ObservationRecord
			price                      sql.NullFloat64
			observedOn, region, source sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.Commodity, &r.Specification, &price, &observedOn, &region, &source, &r.IngestedAt); err != nil {
			return nil, err
		}
		r.Price = price.Float64
		r.ObservedOn = observedOn.String
		r.Region = region.String
		r.Source = source.String
		records = append(records, r)
	}
	return records, rows.Err()
}
