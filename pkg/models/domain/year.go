package domain

import "time"

// MonthValue is one month of a YearSeries. Price is nil when none of the
// applicable sources has data for the month.
type MonthValue struct {
	Month      time.Month
	Label      string
	Price      *float64
	IsForecast bool
}

func (v MonthValue) HasValue() bool {
	return v.Price != nil
}

// YearSeries always holds twelve months, January first.
type YearSeries struct {
	Key    CommodityKey
	Year   int
	Months [12]MonthValue
}

// Table returns only the months that resolved to a value.
func (s YearSeries) Table() []MonthValue {
	rows := make([]MonthValue, 0, len(s.Months))
	for _, v := range s.Months {
		if v.HasValue() {
			rows = append(rows, v)
		}
	}
	return rows
}

// Chart returns all twelve positional slots.
func (s YearSeries) Chart() []MonthValue {
	slots := make([]MonthValue, len(s.Months))
	copy(slots, s.Months[:])
	return slots
}
