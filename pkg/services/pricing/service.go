package pricing

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/de-tools/price-atlas/pkg/adapters"
	"github.com/de-tools/price-atlas/pkg/models/domain"
	"github.com/de-tools/price-atlas/pkg/models/store"
	"github.com/de-tools/price-atlas/pkg/services/aggregate"
	"github.com/de-tools/price-atlas/pkg/services/forecast"
	"github.com/de-tools/price-atlas/pkg/services/yearseries"
	"github.com/de-tools/price-atlas/pkg/store/redis/overrides"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// ObservationSource supplies the raw observation feed.
type ObservationSource interface {
	List(ctx context.Context) ([]store.ObservationRecord, error)
}

// OverrideStore persists manual price overrides.
type OverrideStore interface {
	Set(ctx context.Context, record store.OverrideRecord) error
	Delete(ctx context.Context, commodity, specification string) error
	List(ctx context.Context) ([]store.OverrideRecord, error)
}

// Recorder receives operational counters; nil disables them.
type Recorder interface {
	ObserveIngest(report domain.IngestReport)
	ObserveForecast(mode string)
	SetCommodities(n int)
}

type Settings struct {
	HorizonYear        int
	Cutover            time.Month
	ForecastActivation time.Time
	CacheSize          int
	Now                func() time.Time
}

// Service answers display requests against an in-memory snapshot of
// observations and overrides. Load must succeed once before queries return
// anything but fallbacks; later loads swap the snapshot atomically.
type Service struct {
	observations ObservationSource
	overrides    OverrideStore
	recorder     Recorder
	settings     Settings
	merger       *yearseries.Merger

	// loadMu serializes fetch-and-swap so an older read never replaces a
	// newer snapshot.
	loadMu sync.Mutex
	mu     sync.RWMutex
	snap   *snapshot
}

func NewService(observations ObservationSource, overrideStore OverrideStore, recorder Recorder, settings Settings) (*Service, error) {
	if observations == nil {
		return nil, fmt.Errorf("observation source is nil")
	}
	if overrideStore == nil {
		return nil, fmt.Errorf("override store is nil")
	}
	if settings.Now == nil {
		settings.Now = time.Now
	}
	if settings.CacheSize <= 0 {
		settings.CacheSize = 256
	}
	if settings.HorizonYear == 0 {
		settings.HorizonYear = settings.Now().Year() + 1
	}

	s := &Service{
		observations: observations,
		overrides:    overrideStore,
		recorder:     recorder,
		settings:     settings,
		merger:       yearseries.NewMerger(aggregate.NewAggregator(settings.ForecastActivation), settings.Cutover),
	}

	empty, err := newSnapshot(nil, nil, settings)
	if err != nil {
		return nil, err
	}
	s.snap = empty
	return s, nil
}

// Load fetches observations and overrides concurrently and replaces the
// current snapshot. On error the previous snapshot stays in place.
func (s *Service) Load(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)

	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	var (
		records         []store.ObservationRecord
		overrideRecords []store.OverrideRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, err = s.observations.List(gctx)
		if err != nil {
			return fmt.Errorf("load observations: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		overrideRecords, err = s.overrides.List(gctx)
		if err != nil {
			return fmt.Errorf("load overrides: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	snap, err := newSnapshot(records, overrideRecords, s.settings)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()

	if s.recorder != nil {
		s.recorder.ObserveIngest(snap.report)
		s.recorder.SetCommodities(len(snap.keys()))
	}

	logger.Info().
		Int("accepted", snap.report.Accepted).
		Int("dropped", snap.report.Dropped).
		Int("overrides", len(snap.overrides)).
		Int("commodities", len(snap.keys())).
		Msg("price snapshot loaded")
	return nil
}

func (s *Service) current() *snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

func (s *Service) HorizonEnd() time.Time {
	return forecast.HorizonEnd(s.settings.HorizonYear)
}

// Commodities lists every key with observations or an override.
func (s *Service) Commodities() []domain.CommoditySummary {
	snap := s.current()
	keys := snap.keys()

	out := make([]domain.CommoditySummary, 0, len(keys))
	for _, key := range keys {
		summary := domain.CommoditySummary{
			Key:           key,
			Commodity:     key.Commodity,
			Specification: key.Specification,
			Samples:       len(snap.store.Points(key)),
		}
		if commodity, spec, ok := snap.store.DisplayNames(key); ok {
			summary.Commodity = commodity
			summary.Specification = spec
		}
		if q, ok := snap.currentPrice(key); ok {
			summary.Current = &q
		}
		out = append(out, summary)
	}
	return out
}

// CurrentPrice resolves the price shown to the user. A manual override wins
// over observations even when it is older than the latest observation.
func (s *Service) CurrentPrice(key domain.CommodityKey) (domain.PriceQuote, bool) {
	return s.current().currentPrice(key)
}

func (s *Service) History(key domain.CommodityKey) (*domain.HistoricalSeries, bool) {
	return s.current().History(key)
}

// Forecast predicts the price of key on target, using the current price as
// the base when one exists.
func (s *Service) Forecast(key domain.CommodityKey, target time.Time) domain.ForecastPoint {
	snap := s.current()
	hint := 0.0
	if q, ok := snap.currentPrice(key); ok {
		hint = q.Price
	}
	s.observeMode(snap, key)
	return snap.generator.Predict(key, target, hint)
}

// ForecastSeries covers the day after the current price through the horizon end.
func (s *Service) ForecastSeries(key domain.CommodityKey) []domain.ForecastPoint {
	snap := s.current()
	s.observeMode(snap, key)
	return snap.forecastSeries(key, s.HorizonEnd())
}

func (s *Service) YearSeries(key domain.CommodityKey, year int) domain.YearSeries {
	snap := s.current()
	history := snap.store.Points(key)

	var fc []domain.ForecastPoint
	if year >= s.settings.Now().Year() {
		fc = snap.forecastSeries(key, s.HorizonEnd())
	}
	return s.merger.Merge(key, year, history, fc, s.settings.Now())
}

// SetOverride persists a manual current price and reloads the snapshot.
func (s *Service) SetOverride(ctx context.Context, override domain.PriceOverride) error {
	if override.Key.IsZero() {
		return fmt.Errorf("override requires a commodity")
	}
	if !domain.ValidPrice(override.Price) {
		return fmt.Errorf("override price must be positive, got %v", override.Price)
	}
	record := adapters.MapDomainOverrideToStore(override, s.settings.Now().UTC())
	if err := s.overrides.Set(ctx, record); err != nil {
		return err
	}
	return s.Load(ctx)
}

// ClearOverride removes the override for key. Clearing a key without an
// override succeeds.
func (s *Service) ClearOverride(ctx context.Context, key domain.CommodityKey) error {
	err := s.overrides.Delete(ctx, key.Commodity, key.Specification)
	if errors.Is(err, overrides.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return s.Load(ctx)
}

func (s *Service) observeMode(snap *snapshot, key domain.CommodityKey) {
	if s.recorder == nil {
		return
	}
	if _, ok := snap.History(key); ok {
		s.recorder.ObserveForecast("history")
		return
	}
	s.recorder.ObserveForecast("category")
}

func sortKeys(keys []domain.CommodityKey) {
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})
}
