package domain

import "time"

type Trend string

const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

// HistoricalSeries is derived from the full point set of one commodity key.
// A zero slot in SeasonalPattern means no observation fell in that month.
type HistoricalSeries struct {
	Key             CommodityKey
	Points          []PricePoint
	AveragePrice    float64
	Dispersion      float64
	Trend           Trend
	SeasonalPattern [12]float64 // index 0 = January
}

func (s *HistoricalSeries) HasSeasonalSignal() bool {
	for _, v := range s.SeasonalPattern {
		if v > 0 {
			return true
		}
	}
	return false
}

// Seasonal returns the pattern slot for month m.
func (s *HistoricalSeries) Seasonal(m time.Month) float64 {
	return s.SeasonalPattern[m-1]
}

type ForecastPoint struct {
	Key                       CommodityKey
	Date                      time.Time
	PredictedPrice            float64
	ConfidencePercent         int
	Trend                     Trend
	ExplanationFactors        []string
	SeasonalAdjustmentPercent float64
	HistoricalSampleCount     int
}
