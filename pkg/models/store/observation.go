package store

import "time"

type ObservationRecord struct {
	ID            string
	Commodity     string
	Specification string
	Price         float64
	ObservedOn    string // raw feed date text, validated on ingestion
	Region        string
	Source        string
	IngestedAt    time.Time
}

type ObservationStats struct {
	RecordsCount  int64
	Commodities   int64
	FirstObserved *string
	LastObserved  *string
}
