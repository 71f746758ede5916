package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/de-tools/price-atlas/pkg/services/config"
	"github.com/de-tools/price-atlas/pkg/services/importer"
	"github.com/de-tools/price-atlas/pkg/services/pricing"
	"github.com/de-tools/price-atlas/pkg/store/duckdb"
	"github.com/de-tools/price-atlas/pkg/store/duckdb/imports"
	duckdbobservations "github.com/de-tools/price-atlas/pkg/store/duckdb/observations"
	"github.com/de-tools/price-atlas/pkg/store/redis/overrides"
	"github.com/rs/zerolog"
)

// App is the wired set of stores and services shared by the CLI and the
// web server.
type App struct {
	Config       *config.Config
	DB           *sql.DB
	Observations duckdbobservations.Store
	Overrides    overrides.Store
	Importer     *importer.Importer
	Prices       *pricing.Service
}

type Options struct {
	Recorder pricing.Recorder
	Now      func() time.Time
}

// Open connects the stores described by cfg, seeds reference data into an
// empty observation store and loads the first price snapshot.
func Open(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	logger := zerolog.Ctx(ctx)

	db, err := duckdb.NewDB(duckdb.Settings{DbPath: cfg.Storage.DuckDBPath})
	if err != nil {
		return nil, fmt.Errorf("failed to create DuckDB instance: %w", err)
	}
	a := &App{Config: cfg, DB: db}

	if err := a.init(ctx, opts); err != nil {
		_ = a.Close()
		return nil, err
	}

	logger.Info().
		Str("duckdb", cfg.Storage.DuckDBPath).
		Bool("redis", cfg.Redis.Addr != "").
		Msg("price atlas initialised")
	return a, nil
}

func (a *App) init(ctx context.Context, opts Options) error {
	logger := zerolog.Ctx(ctx)
	cfg := a.Config

	var err error
	a.Observations, err = duckdbobservations.NewStore(a.DB)
	if err != nil {
		return fmt.Errorf("failed to create observation store: %w", err)
	}
	runs, err := imports.NewStore(a.DB)
	if err != nil {
		return fmt.Errorf("failed to create import ledger: %w", err)
	}
	a.Importer, err = importer.NewImporter(a.DB, a.Observations, runs)
	if err != nil {
		return fmt.Errorf("failed to create importer: %w", err)
	}

	if cfg.Redis.Addr != "" {
		a.Overrides, err = overrides.Connect(ctx, cfg.Redis.Addr, cfg.Redis.DB, cfg.Redis.Password)
		if err != nil {
			return err
		}
	} else {
		logger.Warn().Msg("redis not configured, manual overrides are kept in memory only")
		a.Overrides = overrides.NewMemoryStore()
	}

	if err := a.seed(ctx); err != nil {
		return err
	}

	a.Prices, err = pricing.NewService(a.Observations, a.Overrides, opts.Recorder, pricing.Settings{
		HorizonYear:        cfg.Forecast.HorizonYear,
		Cutover:            cfg.Forecast.Cutover(),
		ForecastActivation: cfg.Forecast.Activation(),
		CacheSize:          cfg.Cache.Size,
		Now:                opts.Now,
	})
	if err != nil {
		return fmt.Errorf("failed to create pricing service: %w", err)
	}
	return a.Prices.Load(ctx)
}

func (a *App) seed(ctx context.Context) error {
	path := a.Config.Storage.ReferenceData
	if path == "" {
		return nil
	}

	stats, err := a.Observations.GetStats(ctx)
	if err != nil {
		return fmt.Errorf("failed to read observation stats: %w", err)
	}
	if stats.RecordsCount > 0 {
		return nil
	}

	if _, err := a.Importer.ImportFile(ctx, path, importer.Options{}); err != nil {
		return fmt.Errorf("failed to seed reference data: %w", err)
	}
	return nil
}

func (a *App) Close() error {
	var errs []error
	if a.Overrides != nil {
		errs = append(errs, a.Overrides.Close())
	}
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	return errors.Join(errs...)
}
