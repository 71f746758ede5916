// Package statistics derives a HistoricalSeries from the observations of one
// commodity key. All functions are pure.
package statistics

import (
	"math"
	"sort"

	"github.com/de-tools/price-atlas/pkg/models/domain"
)

// TrendThreshold is the relative change between the first and second half
// means above which a series is classified as trending.
const TrendThreshold = 0.05

// Build computes the HistoricalSeries for points. Points with an invalid
// price are ignored; the input slice is not modified.
func Build(key domain.CommodityKey, points []domain.PricePoint) domain.HistoricalSeries {
	valid := make([]domain.PricePoint, 0, len(points))
	for _, p := range points {
		if domain.ValidPrice(p.Price) && !p.Date.IsZero() {
			valid = append(valid, p)
		}
	}
	sort.SliceStable(valid, func(i, j int) bool {
		return valid[i].Date.Before(valid[j].Date)
	})

	prices := make([]float64, len(valid))
	for i, p := range valid {
		prices[i] = p.Price
	}

	series := domain.HistoricalSeries{
		Key:             key,
		Points:          valid,
		Trend:           ClassifyTrend(prices),
		SeasonalPattern: SeasonalPattern(valid),
	}
	if len(prices) > 0 {
		series.AveragePrice = mean(prices)
		series.Dispersion = StdDev(prices)
	}
	return series
}

// StdDev is the population standard deviation; 0 for fewer than two values.
func StdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	var sum float64
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}

// ClassifyTrend compares the mean of the first half of chronologically
// ordered prices with the mean of the second half. The first half takes the
// extra element on odd counts.
func ClassifyTrend(prices []float64) domain.Trend {
	if len(prices) < 2 {
		return domain.TrendStable
	}
	split := (len(prices) + 1) / 2
	first := mean(prices[:split])
	second := mean(prices[split:])
	if first == 0 {
		return domain.TrendStable
	}

	change := (second - first) / first
	switch {
	case change > TrendThreshold:
		return domain.TrendUp
	case change < -TrendThreshold:
		return domain.TrendDown
	default:
		return domain.TrendStable
	}
}

// SeasonalPattern averages prices per calendar month across all years.
// Months without observations stay 0.
func SeasonalPattern(points []domain.PricePoint) [12]float64 {
	var sums [12]float64
	var counts [12]int
	for _, p := range points {
		idx := p.Date.Month() - 1
		sums[idx] += p.Price
		counts[idx]++
	}

	var pattern [12]float64
	for i := range pattern {
		if counts[i] > 0 {
			pattern[i] = sums[i] / float64(counts[i])
		}
	}
	return pattern
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
