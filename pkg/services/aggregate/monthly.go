package aggregate

import (
	"time"

	"github.com/de-tools/price-atlas/pkg/models/domain"
)

// Aggregator collapses dated values into calendar-month means. It is the
// single implementation shared by the historical and forecast views.
type Aggregator struct {
	// ForecastActivation is the first date for which forecasts exist.
	// Forecast values dated before it are placeholders and are skipped.
	ForecastActivation time.Time
}

func NewAggregator(forecastActivation time.Time) Aggregator {
	return Aggregator{ForecastActivation: domain.Day(forecastActivation)}
}

// Monthly buckets values by calendar month, ignoring the year; callers that
// need one year must filter beforehand. Only months with at least one valid
// value appear in the result.
func (a Aggregator) Monthly(values []domain.DatedValue, kind domain.SeriesKind) domain.MonthlyAverage {
	var sums [12]float64
	var counts [12]int

	for _, v := range values {
		if !domain.ValidPrice(v.Value) || v.Date.IsZero() {
			continue
		}
		if kind == domain.SeriesForecast && domain.Day(v.Date).Before(a.ForecastActivation) {
			continue
		}
		idx := v.Date.Month() - 1
		sums[idx] += v.Value
		counts[idx]++
	}

	means := make(map[time.Month]float64)
	for i := range sums {
		if counts[i] > 0 {
			means[time.Month(i+1)] = domain.Round2(sums[i] / float64(counts[i]))
		}
	}
	return domain.NewMonthlyAverage(means)
}

// InYear keeps the values dated in year.
func InYear(values []domain.DatedValue, year int) []domain.DatedValue {
	out := make([]domain.DatedValue, 0, len(values))
	for _, v := range values {
		if v.Date.Year() == year {
			out = append(out, v)
		}
	}
	return out
}

func FromPricePoints(points []domain.PricePoint) []domain.DatedValue {
	out := make([]domain.DatedValue, len(points))
	for i, p := range points {
		out[i] = domain.DatedValue{Date: p.Date, Value: p.Price}
	}
	return out
}

func FromForecastPoints(points []domain.ForecastPoint) []domain.DatedValue {
	out := make([]domain.DatedValue, len(points))
	for i, p := range points {
		out[i] = domain.DatedValue{Date: p.Date, Value: p.PredictedPrice}
	}
	return out
}
