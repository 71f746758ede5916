package domain

import "time"

// RawRecord is a row of the historical observation feed as received, before
// validation. Date is kept as text because the feed may carry unparsable values.
type RawRecord struct {
	Commodity     string
	Specification string
	Price         float64
	Date          string // 2025-01-05
	Region        string
	Source        string // reference, manual
}

// PricePoint is a validated observation. Price is always > 0.
type PricePoint struct {
	Date   time.Time
	Price  float64
	Region string
}

type IngestReport struct {
	Accepted int
	Dropped  int
}

// PriceQuote is the "current price" shown for a commodity.
type PriceQuote struct {
	Key        CommodityKey
	Date       time.Time
	Price      float64
	Overridden bool
}

// PriceOverride is an operator correction of the displayed current price.
type PriceOverride struct {
	Key   CommodityKey
	Date  time.Time
	Price float64
}

// CommoditySummary is one row of the commodity listing.
type CommoditySummary struct {
	Key           CommodityKey
	Commodity     string // display name
	Specification string // display name
	Samples       int
	Current       *PriceQuote
}
