package store

import "time"

type OverrideRecord struct {
	Commodity     string    `json:"commodity"`
	Specification string    `json:"specification"`
	Date          string    `json:"date"` // 2006-01-02
	Price         float64   `json:"price"`
	UpdatedAt     time.Time `json:"updated_at"`
}
