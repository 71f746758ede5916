package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	"github.com/marcboeker/go-duckdb/v2"
)

const ObservationsTableSchema = `
	CREATE TABLE IF NOT EXISTS price_observations (
		id VARCHAR NOT NULL PRIMARY KEY,
		commodity VARCHAR NOT NULL,
		specification VARCHAR NOT NULL DEFAULT '',
		price DOUBLE,
		observed_on VARCHAR,
		region VARCHAR,
		source VARCHAR,
		ingested_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
`

const ObservationsCommodityIndex = `
	CREATE INDEX IF NOT EXISTS price_observations_commodity_idx
		ON price_observations (commodity, specification);
`

const ImportRunsTableSchema = `
	CREATE TABLE IF NOT EXISTS import_runs (
		id VARCHAR NOT NULL PRIMARY KEY,
		source VARCHAR NOT NULL,
		file VARCHAR,
		read_count INTEGER NOT NULL,
		accepted_count INTEGER NOT NULL,
		dropped_count INTEGER NOT NULL,
		replaced_count BIGINT NOT NULL DEFAULT 0,
		imported_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
`

var bootQueries = []string{
	ObservationsTableSchema,
	ObservationsCommodityIndex,
	ImportRunsTableSchema,
}

type Settings struct {
	DbPath  string
	Threads int
}

func NewDB(settings Settings) (*sql.DB, error) {
	threads := settings.Threads
	if threads <= 0 {
		threads = 4
	}

	dsn := fmt.Sprintf("%s?threads=%d", settings.DbPath, threads)
	c, err := duckdb.NewConnector(dsn, func(exec driver.ExecerContext) error {
		for _, query := range bootQueries {
			_, err := exec.ExecContext(context.Background(), query, nil)
			if err != nil {
				return fmt.Errorf("boot query: %w", err)
			}
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	return sql.OpenDB(c), nil
}
