package pricing

import (
	"fmt"
	"time"

	"github.com/de-tools/price-atlas/pkg/adapters"
	"github.com/de-tools/price-atlas/pkg/models/domain"
	"github.com/de-tools/price-atlas/pkg/models/store"
	"github.com/de-tools/price-atlas/pkg/services/forecast"
	"github.com/de-tools/price-atlas/pkg/services/observations"
	"github.com/de-tools/price-atlas/pkg/services/statistics"
	lru "github.com/hashicorp/golang-lru/v2"
)

// snapshot is immutable apart from its caches, which only memoize pure
// functions of the snapshot contents.
type snapshot struct {
	store     *observations.Store
	report    domain.IngestReport
	overrides map[domain.CommodityKey]domain.PriceOverride
	history   *lru.Cache[domain.CommodityKey, *domain.HistoricalSeries]
	series    *lru.Cache[seriesKey, []domain.ForecastPoint]
	generator *forecast.Generator
	builder   *forecast.SeriesBuilder
	now       func() time.Time
}

// seriesKey scopes a cached forecast series to the day it was built on.
type seriesKey struct {
	key domain.CommodityKey
	day time.Time
}

func newSnapshot(records []store.ObservationRecord, overrideRecords []store.OverrideRecord, settings Settings) (*snapshot, error) {
	obs, report := observations.Ingest(adapters.MapStoreObservationsToDomainRaw(records))

	history, err := lru.New[domain.CommodityKey, *domain.HistoricalSeries](settings.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("create history cache: %w", err)
	}
	series, err := lru.New[seriesKey, []domain.ForecastPoint](settings.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("create series cache: %w", err)
	}

	snap := &snapshot{
		store:     obs,
		report:    report,
		overrides: make(map[domain.CommodityKey]domain.PriceOverride),
		history:   history,
		series:    series,
		now:       settings.Now,
	}
	for _, r := range overrideRecords {
		if o, ok := adapters.MapStoreOverrideToDomain(r); ok {
			snap.overrides[o.Key] = o
		}
	}

	clock := forecast.Clock(settings.Now)
	snap.generator = forecast.NewGenerator(snap, clock)
	snap.builder = forecast.NewSeriesBuilder(snap.generator, clock)
	return snap, nil
}

// History implements forecast.HistorySource.
func (s *snapshot) History(key domain.CommodityKey) (*domain.HistoricalSeries, bool) {
	if h, ok := s.history.Get(key); ok {
		return h, true
	}
	points := s.store.Points(key)
	if len(points) == 0 {
		return nil, false
	}
	h := statistics.Build(key, points)
	s.history.Add(key, &h)
	return &h, true
}

func (s *snapshot) currentPrice(key domain.CommodityKey) (domain.PriceQuote, bool) {
	if o, ok := s.overrides[key]; ok {
		return domain.PriceQuote{Key: key, Date: o.Date, Price: o.Price, Overridden: true}, true
	}
	if p, ok := s.store.Latest(key); ok {
		return domain.PriceQuote{Key: key, Date: p.Date, Price: p.Price}, true
	}
	return domain.PriceQuote{}, false
}

func (s *snapshot) forecastSeries(key domain.CommodityKey, horizonEnd time.Time) []domain.ForecastPoint {
	cacheKey := seriesKey{key: key, day: domain.Day(s.now())}
	if points, ok := s.series.Get(cacheKey); ok {
		return copyPoints(points)
	}

	var last *domain.PriceQuote
	if q, ok := s.currentPrice(key); ok {
		last = &q
	}
	points := s.builder.Build(key, last, horizonEnd)
	s.series.Add(cacheKey, points)
	return copyPoints(points)
}

func (s *snapshot) keys() []domain.CommodityKey {
	keys := s.store.Keys()
	for key := range s.overrides {
		if len(s.store.Points(key)) == 0 {
			keys = append(keys, key)
		}
	}
	sortKeys(keys)
	return keys
}

func copyPoints(points []domain.ForecastPoint) []domain.ForecastPoint {
	out := make([]domain.ForecastPoint, len(points))
	copy(out, points)
	return out
}
