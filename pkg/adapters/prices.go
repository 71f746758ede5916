package adapters

import (
	"time"

	"github.com/de-tools/price-atlas/pkg/models/api"
	"github.com/de-tools/price-atlas/pkg/models/domain"
	"github.com/de-tools/price-atlas/pkg/models/store"
)

func MapStoreObservationToDomainRaw(r store.ObservationRecord) domain.RawRecord {
	return domain.RawRecord{
		Commodity:     r.Commodity,
		Specification: r.Specification,
		Price:         r.Price,
		Date:          r.ObservedOn,
		Region:        r.Region,
		Source:        r.Source,
	}
}

func MapStoreObservationsToDomainRaw(records []store.ObservationRecord) []domain.RawRecord {
	out := make([]domain.RawRecord, len(records))
	for i, r := range records {
		out[i] = MapStoreObservationToDomainRaw(r)
	}
	return out
}

// MapStoreOverrideToDomain reports false for records that cannot be used as
// a current price (bad date, non-positive price).
func MapStoreOverrideToDomain(r store.OverrideRecord) (domain.PriceOverride, bool) {
	date, err := domain.ParseDate(r.Date)
	if err != nil || !domain.ValidPrice(r.Price) {
		return domain.PriceOverride{}, false
	}
	return domain.PriceOverride{
		Key:   domain.NewCommodityKey(r.Commodity, r.Specification),
		Date:  date,
		Price: r.Price,
	}, true
}

func MapDomainOverrideToStore(o domain.PriceOverride, updatedAt time.Time) store.OverrideRecord {
	return store.OverrideRecord{
		Commodity:     o.Key.Commodity,
		Specification: o.Key.Specification,
		Date:          o.Date.Format(domain.DateLayout),
		Price:         o.Price,
		UpdatedAt:     updatedAt,
	}
}

func MapPriceQuoteDomainToApi(q *domain.PriceQuote) *api.PriceQuote {
	if q == nil {
		return nil
	}
	return &api.PriceQuote{
		Date:       q.Date.Format(domain.DateLayout),
		Price:      q.Price,
		Overridden: q.Overridden,
	}
}

func MapCommodityDomainToApi(c domain.CommoditySummary) api.Commodity {
	return api.Commodity{
		Commodity:     c.Commodity,
		Specification: c.Specification,
		Key:           c.Key.String(),
		Category:      c.Key.Category().String(),
		Samples:       c.Samples,
		Current:       MapPriceQuoteDomainToApi(c.Current),
	}
}

func MapForecastPointDomainToApi(p domain.ForecastPoint) api.ForecastPoint {
	factors := p.ExplanationFactors
	if factors == nil {
		factors = []string{}
	}
	return api.ForecastPoint{
		Date:                      p.Date.Format(domain.DateLayout),
		PredictedPrice:            p.PredictedPrice,
		ConfidencePercent:         p.ConfidencePercent,
		Trend:                     string(p.Trend),
		ExplanationFactors:        factors,
		SeasonalAdjustmentPercent: p.SeasonalAdjustmentPercent,
		HistoricalSampleCount:     p.HistoricalSampleCount,
	}
}

func MapForecastSeriesDomainToApi(
	key domain.CommodityKey,
	current *domain.PriceQuote,
	points []domain.ForecastPoint,
) api.ForecastSeries {
	series := api.ForecastSeries{
		Commodity: key.String(),
		Current:   MapPriceQuoteDomainToApi(current),
		Points:    make([]api.ForecastPoint, 0, len(points)),
	}
	for _, p := range points {
		series.Points = append(series.Points, MapForecastPointDomainToApi(p))
	}
	return series
}

func MapMonthValuesDomainToApi(values []domain.MonthValue) []api.MonthValue {
	out := make([]api.MonthValue, 0, len(values))
	for _, v := range values {
		out = append(out, api.MonthValue{
			Month:      int(v.Month),
			Label:      v.Label,
			Price:      v.Price,
			IsForecast: v.IsForecast,
		})
	}
	return out
}

func MapYearSeriesDomainToApi(s domain.YearSeries, chart bool) api.YearSeries {
	out := api.YearSeries{
		Commodity: s.Key.String(),
		Year:      s.Year,
	}
	if chart {
		out.View = "chart"
		out.Months = MapMonthValuesDomainToApi(s.Chart())
	} else {
		out.View = "table"
		out.Months = MapMonthValuesDomainToApi(s.Table())
	}
	return out
}
