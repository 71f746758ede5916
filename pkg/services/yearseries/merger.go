// Package yearseries merges the historical and forecast monthly averages of a
// commodity into one series per display year.
package yearseries

import (
	"time"

	"github.com/de-tools/price-atlas/pkg/models/domain"
	"github.com/de-tools/price-atlas/pkg/services/aggregate"
)

// DefaultCutover is the month from which the current year switches to the
// forecast source.
const DefaultCutover = time.November

type Merger struct {
	aggregator aggregate.Aggregator
	cutover    time.Month
}

func NewMerger(aggregator aggregate.Aggregator, cutover time.Month) *Merger {
	if cutover < time.January || cutover > time.December {
		cutover = DefaultCutover
	}
	return &Merger{aggregator: aggregator, cutover: cutover}
}

// Merge resolves one value per month of year. Past years use history only,
// future years use forecasts only, and the current year switches to forecasts
// at the cutover month, falling back to history where no forecast exists.
func (m *Merger) Merge(
	key domain.CommodityKey,
	year int,
	history []domain.PricePoint,
	forecast []domain.ForecastPoint,
	today time.Time,
) domain.YearSeries {
	hist := m.aggregator.Monthly(aggregate.InYear(aggregate.FromPricePoints(history), year), domain.SeriesHistorical)
	fc := m.aggregator.Monthly(aggregate.InYear(aggregate.FromForecastPoints(forecast), year), domain.SeriesForecast)

	currentYear := today.Year()
	series := domain.YearSeries{Key: key, Year: year}

	for month := time.January; month <= time.December; month++ {
		value := domain.MonthValue{Month: month, Label: domain.MonthLabel(month)}

		switch {
		case year < currentYear:
			value.Price = lookup(hist, month)
		case year > currentYear:
			value.Price = lookup(fc, month)
			value.IsForecast = value.Price != nil
		case month < m.cutover:
			value.Price = lookup(hist, month)
		default:
			if p := lookup(fc, month); p != nil {
				value.Price = p
				value.IsForecast = true
			} else {
				value.Price = lookup(hist, month)
			}
		}

		series.Months[month-1] = value
	}
	return series
}

func lookup(avg domain.MonthlyAverage, month time.Month) *float64 {
	v, ok := avg.Get(month)
	if !ok || !domain.ValidPrice(v) {
		return nil
	}
	return &v
}
