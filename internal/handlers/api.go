package handlers

import (
	stderrors "errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"pos-analytics/internal/errors"
	"pos-analytics/internal/observability"
	"pos-analytics/internal/services"
	"pos-analytics/internal/store"
)

type APIHandlers struct {
	engine *services.Engine
	logger *slog.Logger
}

func NewAPIHandlers(engine *services.Engine, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		engine: engine,
		logger: logger,
	}
}

// writeReport maps engine outcomes onto the response envelope. Sparse-data
// neutral results arrive here as plain values and go out as 200s; only store
// and lookup failures take the error path.
func (h *APIHandlers) writeReport(w http.ResponseWriter, r *http.Request, data any, err error) {
	requestID := observability.GetRequestID(r.Context())
	if err != nil {
		switch {
		case stderrors.Is(err, store.ErrNotFound):
			errors.WriteError(w, h.logger, errors.NotFound("Record not found"), requestID)
		case stderrors.Is(err, store.ErrInvalidCompany):
			errors.WriteError(w, h.logger, errors.BadRequest("Company id is required"), requestID)
		default:
			errors.WriteError(w, h.logger, errors.InternalWrap(err, "Report computation failed"), requestID)
		}
		return
	}

	headers := map[string]string{
		"Cache-Control": "public, max-age=30",
	}
	errors.WriteSuccessWithHeaders(w, data, headers)
}

// intQuery reads an optional positive integer query parameter, falling back
// to def when absent. A malformed or non-positive value is a client error.
func intQuery(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return 0, errors.Validation("Parameter " + name + " must be a positive integer")
	}
	return v, nil
}

func (h *APIHandlers) HandleSalesTrend(w http.ResponseWriter, r *http.Request) {
	days, err := intQuery(r, "days", 0)
	if err != nil {
		errors.WriteError(w, h.logger, err, observability.GetRequestID(r.Context()))
		return
	}

	data, err := h.engine.SalesTrend(r.Context(), r.PathValue("company"), days)
	h.writeReport(w, r, data, err)
}

func (h *APIHandlers) HandleMovingAverage(w http.ResponseWriter, r *http.Request) {
	period, err := intQuery(r, "period", 0)
	if err != nil {
		errors.WriteError(w, h.logger, err, observability.GetRequestID(r.Context()))
		return
	}

	data, err := h.engine.MovingAverage(r.Context(), r.PathValue("company"), period)
	h.writeReport(w, r, data, err)
}

func (h *APIHandlers) HandleABCClassification(w http.ResponseWriter, r *http.Request) {
	data, err := h.engine.ClassifyInventory(r.Context(), r.PathValue("company"))
	h.writeReport(w, r, data, err)
}

func (h *APIHandlers) HandleEOQ(w http.ResponseWriter, r *http.Request) {
	data, err := h.engine.EconomicOrderQuantity(r.Context(), r.PathValue("company"), r.PathValue("product"))
	h.writeReport(w, r, data, err)
}

func (h *APIHandlers) HandleDemandForecast(w http.ResponseWriter, r *http.Request) {
	periods, err := intQuery(r, "periods", 0)
	if err != nil {
		errors.WriteError(w, h.logger, err, observability.GetRequestID(r.Context()))
		return
	}

	data, err := h.engine.ForecastDemand(r.Context(), r.PathValue("company"), r.PathValue("product"), periods)
	h.writeReport(w, r, data, err)
}

func (h *APIHandlers) HandleRFMSegments(w http.ResponseWriter, r *http.Request) {
	data, err := h.engine.SegmentCustomers(r.Context(), r.PathValue("company"))
	h.writeReport(w, r, data, err)
}

func (h *APIHandlers) HandleCLV(w http.ResponseWriter, r *http.Request) {
	clv, err := h.engine.CustomerLifetimeValue(r.Context(), r.PathValue("company"), r.PathValue("customer"))
	h.writeReport(w, r, map[string]float64{"clv": clv}, err)
}

func (h *APIHandlers) HandleChurnRisk(w http.ResponseWriter, r *http.Request) {
	score, err := h.engine.ChurnRisk(r.Context(), r.PathValue("company"), r.PathValue("customer"))
	h.writeReport(w, r, map[string]int{"churn_risk": score}, err)
}

func (h *APIHandlers) HandleProfitability(w http.ResponseWriter, r *http.Request) {
	data, err := h.engine.ProfitMargins(r.Context(), r.PathValue("company"))
	h.writeReport(w, r, data, err)
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	healthData := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	}

	errors.WriteSuccess(w, healthData)
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, h.engine.Stats())
}
