package domain

import "time"

type SeriesKind int

const (
	SeriesHistorical SeriesKind = iota
	SeriesForecast
)

func (k SeriesKind) String() string {
	if k == SeriesForecast {
		return "forecast"
	}
	return "historical"
}

// DatedValue is the common input of monthly aggregation for both
// observations and forecast points.
type DatedValue struct {
	Date  time.Time
	Value float64
}

// MonthlyAverage is a sparse month -> mean price mapping. A missing month
// means no data and is never reported as zero.
type MonthlyAverage struct {
	values map[time.Month]float64
}

func NewMonthlyAverage(values map[time.Month]float64) MonthlyAverage {
	m := MonthlyAverage{values: make(map[time.Month]float64, len(values))}
	for k, v := range values {
		m.values[k] = v
	}
	return m
}

func (m MonthlyAverage) Get(month time.Month) (float64, bool) {
	v, ok := m.values[month]
	return v, ok
}

func (m MonthlyAverage) Len() int {
	return len(m.values)
}

// Months lists the months holding data in January..December order.
func (m MonthlyAverage) Months() []time.Month {
	months := make([]time.Month, 0, len(m.values))
	for month := time.January; month <= time.December; month++ {
		if _, ok := m.values[month]; ok {
			months = append(months, month)
		}
	}
	return months
}

// Labels is parallel to Months.
func (m MonthlyAverage) Labels() []string {
	months := m.Months()
	labels := make([]string, len(months))
	for i, month := range months {
		labels[i] = MonthLabel(month)
	}
	return labels
}

// Dense returns all twelve slots for positional consumers; months without
// data are nil.
func (m MonthlyAverage) Dense() [12]*float64 {
	var slots [12]*float64
	for month, v := range m.values {
		slots[month-1] = &v
	}
	return slots
}
