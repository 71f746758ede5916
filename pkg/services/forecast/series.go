package forecast

import (
	"time"

	"github.com/de-tools/price-atlas/pkg/models/domain"
)

// BlendDays is the number of leading forecast days interpolated from the last
// actual price towards the model output.
const BlendDays = 7

// SeriesBuilder drives a Generator across the forecast horizon.
type SeriesBuilder struct {
	generator *Generator
	now       Clock
}

func NewSeriesBuilder(generator *Generator, now Clock) *SeriesBuilder {
	if now == nil {
		now = time.Now
	}
	return &SeriesBuilder{generator: generator, now: now}
}

// HorizonEnd is December 31 of year.
func HorizonEnd(year int) time.Time {
	return time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
}

// Build returns one ForecastPoint per day from the day after lastActual
// through horizonEnd inclusive. With no last actual price the series starts
// today and is not blended.
func (b *SeriesBuilder) Build(key domain.CommodityKey, lastActual *domain.PriceQuote, horizonEnd time.Time) []domain.ForecastPoint {
	horizonEnd = domain.Day(horizonEnd)

	start := domain.Day(b.now())
	hint := 0.0
	blend := false
	if lastActual != nil && domain.ValidPrice(lastActual.Price) {
		start = domain.Day(lastActual.Date).AddDate(0, 0, 1)
		hint = lastActual.Price
		blend = true
	}
	if start.After(horizonEnd) {
		return nil
	}

	points := make([]domain.ForecastPoint, 0, domain.DaysBetween(start, horizonEnd)+1)
	for i, date := 0, start; !date.After(horizonEnd); i, date = i+1, date.AddDate(0, 0, 1) {
		point := b.generator.Predict(key, date, hint)
		if blend && i < BlendDays {
			point.PredictedPrice = Blend(hint, point.PredictedPrice, i)
		}
		points = append(points, point)
	}
	return points
}

// Blend interpolates linearly between actual and raw; day 0 is all actual.
func Blend(actual, raw float64, day int) float64 {
	if day <= 0 {
		return actual
	}
	w := float64(day) / BlendDays
	return domain.Round2(actual*(1-w) + raw*w)
}
