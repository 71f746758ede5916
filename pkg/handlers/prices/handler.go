package prices

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/de-tools/price-atlas/pkg/adapters"
	"github.com/de-tools/price-atlas/pkg/models/api"
	"github.com/de-tools/price-atlas/pkg/models/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// NoSpecification is the path segment used for commodities without a
// specification.
const NoSpecification = "-"

const (
	viewTable = "table"
	viewChart = "chart"
)

type PriceService interface {
	Commodities() []domain.CommoditySummary
	CurrentPrice(key domain.CommodityKey) (domain.PriceQuote, bool)
	Forecast(key domain.CommodityKey, target time.Time) domain.ForecastPoint
	ForecastSeries(key domain.CommodityKey) []domain.ForecastPoint
	YearSeries(key domain.CommodityKey, year int) domain.YearSeries
	SetOverride(ctx context.Context, override domain.PriceOverride) error
	ClearOverride(ctx context.Context, key domain.CommodityKey) error
}

type Handler struct {
	service  PriceService
	validate *validator.Validate
	now      func() time.Time
}

func NewHandler(service PriceService, now func() time.Time) *Handler {
	if now == nil {
		now = time.Now
	}
	return &Handler{
		service:  service,
		validate: validator.New(),
		now:      now,
	}
}

func (h *Handler) ListCommodities(w http.ResponseWriter, r *http.Request) {
	summaries := h.service.Commodities()
	response := make([]api.Commodity, 0, len(summaries))
	for _, s := range summaries {
		response = append(response, adapters.MapCommodityDomainToApi(s))
	}
	h.writeJSON(w, r, http.StatusOK, response)
}

func (h *Handler) GetForecast(w http.ResponseWriter, r *http.Request) {
	key := commodityKey(r)

	target := domain.Day(h.now())
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse(domain.DateLayout, raw)
		if err != nil {
			h.writeError(w, r, http.StatusBadRequest, "invalid 'date' format. Expected format: YYYY-MM-DD")
			return
		}
		target = parsed
	}

	point := h.service.Forecast(key, target)
	h.writeJSON(w, r, http.StatusOK, adapters.MapForecastPointDomainToApi(point))
}

func (h *Handler) GetForecastSeries(w http.ResponseWriter, r *http.Request) {
	key := commodityKey(r)

	var current *domain.PriceQuote
	if q, ok := h.service.CurrentPrice(key); ok {
		current = &q
	}
	points := h.service.ForecastSeries(key)
	h.writeJSON(w, r, http.StatusOK, adapters.MapForecastSeriesDomainToApi(key, current, points))
}

func (h *Handler) GetYearSeries(w http.ResponseWriter, r *http.Request) {
	key := commodityKey(r)

	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || year < 1 || year > 9999 {
		h.writeError(w, r, http.StatusBadRequest, "invalid 'year'. Expected a four digit year")
		return
	}
	view := r.URL.Query().Get("view")
	if view == "" {
		view = viewTable
	}
	if view != viewTable && view != viewChart {
		h.writeError(w, r, http.StatusBadRequest, fmt.Sprintf("invalid 'view' %q. Expected table or chart", view))
		return
	}

	series := h.service.YearSeries(key, year)
	h.writeJSON(w, r, http.StatusOK, adapters.MapYearSeriesDomainToApi(series, view == viewChart))
}

func (h *Handler) PutOverride(w http.ResponseWriter, r *http.Request) {
	key := commodityKey(r)

	var req api.OverrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "price must be greater than zero")
		return
	}

	date := domain.Day(h.now())
	if req.Date != "" {
		parsed, err := time.Parse(domain.DateLayout, req.Date)
		if err != nil {
			h.writeError(w, r, http.StatusBadRequest, "invalid 'date' format. Expected format: YYYY-MM-DD")
			return
		}
		date = parsed
	}

	err := h.service.SetOverride(r.Context(), domain.PriceOverride{Key: key, Date: date, Price: req.Price})
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("commodity", key.String()).Msg("failed to set override")
		h.writeError(w, r, http.StatusInternalServerError, "failed to set override")
		return
	}

	q, _ := h.service.CurrentPrice(key)
	h.writeJSON(w, r, http.StatusOK, adapters.MapPriceQuoteDomainToApi(&q))
}

func (h *Handler) DeleteOverride(w http.ResponseWriter, r *http.Request) {
	key := commodityKey(r)

	if err := h.service.ClearOverride(r.Context(), key); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("commodity", key.String()).Msg("failed to clear override")
		h.writeError(w, r, http.StatusInternalServerError, "failed to clear override")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func commodityKey(r *http.Request) domain.CommodityKey {
	spec := pathParam(r, "specification")
	if spec == NoSpecification {
		spec = ""
	}
	return domain.NewCommodityKey(pathParam(r, "commodity"), spec)
}

func pathParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zerolog.Ctx(r.Context()).Error().
			Err(err).
			Str("path", r.URL.Path).
			Msg("failed to encode response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	h.writeJSON(w, r, status, api.ErrorResponse{Error: msg, Timestamp: h.now().UTC()})
}
