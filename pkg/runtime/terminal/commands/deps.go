package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/de-tools/price-atlas/pkg/models/domain"
	"github.com/de-tools/price-atlas/pkg/models/store"
	"github.com/de-tools/price-atlas/pkg/services/importer"
)

type PriceService interface {
	Commodities() []domain.CommoditySummary
	Forecast(key domain.CommodityKey, target time.Time) domain.ForecastPoint
	YearSeries(key domain.CommodityKey, year int) domain.YearSeries
	SetOverride(ctx context.Context, override domain.PriceOverride) error
	ClearOverride(ctx context.Context, key domain.CommodityKey) error
}

type FileImporter interface {
	ImportFile(ctx context.Context, path string, opts importer.Options) (*importer.Result, error)
	Runs(ctx context.Context, limit int) ([]store.ImportRun, error)
}

// Deps are opened lazily so that commands like --help never touch storage.
type Deps struct {
	Prices   PriceService
	Importer FileImporter
	Now      func() time.Time
}

type Provider func(ctx context.Context) (*Deps, error)

func (d *Deps) now() time.Time {
	if d.Now == nil {
		return time.Now()
	}
	return d.Now()
}

// keyFlags are shared by every command addressing one commodity.
type keyFlags struct {
	commodity     string
	specification string
}

func (k *keyFlags) key() (domain.CommodityKey, error) {
	key := domain.NewCommodityKey(k.commodity, k.specification)
	if key.IsZero() {
		return key, fmt.Errorf("--commodity is required")
	}
	return key, nil
}

func parseDate(raw string, fallback time.Time) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return domain.Day(fallback), nil
	}
	t, err := time.Parse(domain.DateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", raw)
	}
	return t, nil
}
