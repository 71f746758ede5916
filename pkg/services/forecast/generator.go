package forecast

import (
	"fmt"
	"math"
	"time"

	"github.com/de-tools/price-atlas/pkg/models/domain"
)

const (
	WeeklyRate               = 0.01
	DownTrendDamping         = 0.5
	StableTrendDamping       = 0.3
	SeasonalFactorThreshold  = 0.02
	LongHorizonDays          = 30
	MaxExplanationFactors    = 4
	MinConfidence            = 60
	MaxConfidence            = 95
	NoHistoryConfidence      = 70
	maxCategoryFactorsPerRun = 2
)

// HistorySource resolves the derived history of a commodity key.
type HistorySource interface {
	History(key domain.CommodityKey) (*domain.HistoricalSeries, bool)
}

type Clock func() time.Time

// Generator produces single-date price forecasts from a seasonal-times-trend
// heuristic. It holds no state beyond its collaborators.
type Generator struct {
	history HistorySource
	now     Clock
}

func NewGenerator(history HistorySource, now Clock) *Generator {
	if now == nil {
		now = time.Now
	}
	return &Generator{history: history, now: now}
}

// Predict forecasts the price of key on target. currentPrice is used as the
// base price when positive; otherwise the historical average is used.
func (g *Generator) Predict(key domain.CommodityKey, target time.Time, currentPrice float64) domain.ForecastPoint {
	target = domain.Day(target)
	daysFromNow := domain.DaysBetween(g.now(), target)

	series, hasHistory := g.lookup(key)

	trend := domain.TrendStable
	samples := 0
	basePrice := 0.0
	if hasHistory {
		trend = series.Trend
		samples = len(series.Points)
		basePrice = series.AveragePrice
	}
	if domain.ValidPrice(currentPrice) {
		basePrice = currentPrice
	}

	seasonal := g.seasonalAdjustment(key, series, target.Month())
	timeAdj := TimeAdjustment(trend, daysFromNow)

	point := domain.ForecastPoint{
		Key:                       key,
		Date:                      target,
		PredictedPrice:            domain.Round2(basePrice * (1 + seasonal + timeAdj)),
		ConfidencePercent:         NoHistoryConfidence,
		Trend:                     trend,
		SeasonalAdjustmentPercent: domain.Round2(seasonal * 100),
		HistoricalSampleCount:     samples,
	}
	if hasHistory {
		point.ConfidencePercent = Confidence(series.AveragePrice, series.Dispersion)
	}
	point.ExplanationFactors = explain(key.Category(), hasHistory, samples, seasonal, trend, target.Month(), daysFromNow)

	return point
}

func (g *Generator) lookup(key domain.CommodityKey) (*domain.HistoricalSeries, bool) {
	if g.history == nil {
		return nil, false
	}
	series, ok := g.history.History(key)
	if !ok || series == nil || len(series.Points) == 0 {
		return nil, false
	}
	return series, true
}

// seasonalAdjustment prefers the observed seasonal pattern. A target month
// with no observations carries no signal, so the category heuristic is used.
func (g *Generator) seasonalAdjustment(key domain.CommodityKey, series *domain.HistoricalSeries, m time.Month) float64 {
	if series != nil && series.HasSeasonalSignal() {
		if slot := series.Seasonal(m); slot > 0 {
			avg := seasonalMean(series.SeasonalPattern)
			return (slot - avg) / avg
		}
	}
	return CategorySeasonalAdjustment(key.Category(), m)
}

func seasonalMean(pattern [12]float64) float64 {
	var sum float64
	var n int
	for _, v := range pattern {
		if v > 0 {
			sum += v
			n++
		}
	}
	return sum / float64(n)
}

// TimeAdjustment scales the weekly drift by trend direction. Negative
// horizons produce a negative adjustment.
func TimeAdjustment(trend domain.Trend, daysFromNow int) float64 {
	weeks := float64(daysFromNow) / 7
	switch trend {
	case domain.TrendUp:
		return weeks * WeeklyRate
	case domain.TrendDown:
		return -weeks * WeeklyRate * DownTrendDamping
	case domain.TrendStable:
		return weeks * WeeklyRate * StableTrendDamping
	}
	return 0
}

// Confidence maps the coefficient of variation into [MinConfidence, MaxConfidence].
func Confidence(average, dispersion float64) int {
	if average <= 0 {
		return MinConfidence
	}
	c := math.Round(100 - dispersion/average*100)
	return int(math.Min(MaxConfidence, math.Max(MinConfidence, c)))
}

func explain(
	category domain.Category,
	hasHistory bool,
	samples int,
	seasonal float64,
	trend domain.Trend,
	month time.Month,
	daysFromNow int,
) []string {
	factors := make([]string, 0, MaxExplanationFactors)

	if hasHistory {
		factors = append(factors, fmt.Sprintf("Based on %d historical price records", samples))
	} else {
		factors = append(factors, "Limited historical data")
	}

	switch {
	case seasonal > SeasonalFactorThreshold:
		factors = append(factors, fmt.Sprintf("Seasonal price increase expected in %s", month))
	case seasonal < -SeasonalFactorThreshold:
		factors = append(factors, fmt.Sprintf("Seasonal price decrease expected in %s", month))
	}

	if hasHistory {
		switch trend {
		case domain.TrendUp:
			factors = append(factors, "Upward price trend")
		case domain.TrendDown:
			factors = append(factors, "Downward price trend")
		case domain.TrendStable:
			factors = append(factors, "Stable price trend")
		}
	}

	if daysFromNow > LongHorizonDays {
		factors = append(factors, "Long-range forecast; lower certainty")
	}

	for i, f := range CategoryFactors(category) {
		if i == maxCategoryFactorsPerRun {
			break
		}
		factors = append(factors, f)
	}

	if len(factors) > MaxExplanationFactors {
		factors = factors[:MaxExplanationFactors]
	}
	return factors
}
