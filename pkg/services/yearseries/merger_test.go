package yearseries

import (
	"testing"
	"time"

	"github.com/de-tools/price-atlas/pkg/models/domain"
	"github.com/de-tools/price-atlas/pkg/services/aggregate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	key   = domain.NewCommodityKey("rice", "well milled")
	today = time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC)
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newMerger() *Merger {
	return NewMerger(aggregate.NewAggregator(day(2025, 11, 1)), time.November)
}

// everyMonth returns one history point and one forecast point on the 15th of
// every month of 2025..2027, with distinguishable prices.
func everyMonth() ([]domain.PricePoint, []domain.ForecastPoint) {
	var history []domain.PricePoint
	var forecast []domain.ForecastPoint
	for y := 2025; y <= 2027; y++ {
		for m := time.January; m <= time.December; m++ {
			history = append(history, domain.PricePoint{Date: day(y, m, 15), Price: 10})
			forecast = append(forecast, domain.ForecastPoint{Date: day(y, m, 15), PredictedPrice: 20})
		}
	}
	return history, forecast
}

func TestMerge_PastYearIsHistoricalOnly(t *testing.T) {
	history, forecast := everyMonth()

	s := newMerger().Merge(key, 2025, history, forecast, today)

	for _, v := range s.Months {
		require.True(t, v.HasValue())
		assert.False(t, v.IsForecast)
		assert.Equal(t, 10.0, *v.Price)
	}
}

func TestMerge_FutureYearIsForecastOnly(t *testing.T) {
	history, forecast := everyMonth()

	s := newMerger().Merge(key, 2027, history, forecast, today)

	for _, v := range s.Months {
		require.True(t, v.HasValue())
		assert.True(t, v.IsForecast)
		assert.Equal(t, 20.0, *v.Price)
	}

	empty := newMerger().Merge(key, 2027, history, nil, today)
	assert.Empty(t, empty.Table())
}

func TestMerge_CurrentYearCutover(t *testing.T) {
	history, forecast := everyMonth()

	s := newMerger().Merge(key, 2026, history, forecast, today)

	for _, v := range s.Months {
		require.True(t, v.HasValue(), v.Label)
		if v.Month < time.November {
			assert.False(t, v.IsForecast, v.Label)
			assert.Equal(t, 10.0, *v.Price, v.Label)
		} else {
			assert.True(t, v.IsForecast, v.Label)
			assert.Equal(t, 20.0, *v.Price, v.Label)
		}
	}
}

func TestMerge_CurrentYearFallsBackToHistory(t *testing.T) {
	history := []domain.PricePoint{
		{Date: day(2026, 11, 3), Price: 44},
		{Date: day(2026, 3, 3), Price: 40},
	}
	forecast := []domain.ForecastPoint{
		{Date: day(2026, 12, 1), PredictedPrice: 46},
		{Date: day(2026, 5, 1), PredictedPrice: 99},
	}

	s := newMerger().Merge(key, 2026, history, forecast, today)

	assert.Equal(t, 40.0, *s.Months[time.March-1].Price)
	assert.False(t, s.Months[time.May-1].HasValue(), "forecast before cutover is ignored")
	assert.Equal(t, 44.0, *s.Months[time.November-1].Price)
	assert.False(t, s.Months[time.November-1].IsForecast)
	assert.Equal(t, 46.0, *s.Months[time.December-1].Price)
	assert.True(t, s.Months[time.December-1].IsForecast)
	assert.Len(t, s.Table(), 3)
}

func TestMerge_SinglePointTableAndChart(t *testing.T) {
	history := []domain.PricePoint{{Date: day(2025, 6, 1), Price: 38.5}}

	s := newMerger().Merge(key, 2025, history, nil, today)

	table := s.Table()
	require.Len(t, table, 1)
	assert.Equal(t, "Jun", table[0].Label)

	chart := s.Chart()
	require.Len(t, chart, 12)
	var empty int
	for _, slot := range chart {
		if !slot.HasValue() {
			empty++
		}
	}
	assert.Equal(t, 11, empty)
}

func TestMerge_ForecastBeforeActivationIgnored(t *testing.T) {
	forecast := []domain.ForecastPoint{
		{Date: day(2025, 10, 30), PredictedPrice: 0},
		{Date: day(2025, 10, 31), PredictedPrice: 50},
	}

	s := NewMerger(aggregate.NewAggregator(day(2025, 11, 1)), time.November).
		Merge(key, 2025, nil, forecast, day(2024, 6, 1))

	assert.Empty(t, s.Table())
}

func TestNewMerger_InvalidCutover(t *testing.T) {
	m := NewMerger(aggregate.NewAggregator(time.Time{}), 0)
	assert.Equal(t, DefaultCutover, m.cutover)
}
