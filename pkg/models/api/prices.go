package api

import "time"

type PriceQuote struct {
	Date       string  `json:"date"`
	Price      float64 `json:"price"`
	Overridden bool    `json:"overridden"`
}

type Commodity struct {
	Commodity     string      `json:"commodity"`
	Specification string      `json:"specification"`
	Key           string      `json:"key"`
	Category      string      `json:"category"`
	Samples       int         `json:"samples"`
	Current       *PriceQuote `json:"current,omitempty"`
}

type ForecastPoint struct {
	Date                      string   `json:"date"`
	PredictedPrice            float64  `json:"predicted_price"`
	ConfidencePercent         int      `json:"confidence_percent"`
	Trend                     string   `json:"trend"`
	ExplanationFactors        []string `json:"explanation_factors"`
	SeasonalAdjustmentPercent float64  `json:"seasonal_adjustment_percent"`
	HistoricalSampleCount     int      `json:"historical_sample_count"`
}

type ForecastSeries struct {
	Commodity string          `json:"commodity"`
	Current   *PriceQuote     `json:"current,omitempty"`
	Points    []ForecastPoint `json:"points"`
}

// MonthValue carries a null price for chart slots without data.
type MonthValue struct {
	Month      int      `json:"month"`
	Label      string   `json:"label"`
	Price      *float64 `json:"price"`
	IsForecast bool     `json:"is_forecast"`
}

type YearSeries struct {
	Commodity string       `json:"commodity"`
	Year      int          `json:"year"`
	View      string       `json:"view"`
	Months    []MonthValue `json:"months"`
}

type OverrideRequest struct {
	Date  string  `json:"date" validate:"omitempty"`
	Price float64 `json:"price" validate:"gt=0"`
}

type ErrorResponse struct {
	Error     string    `json:"error"`
	Timestamp time.Time `json:"timestamp"`
}
