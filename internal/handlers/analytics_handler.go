package handlers

import (
	"net/http"

	"aquagem-backend/internal/services"
	"aquagem-backend/internal/timeutil"
	"aquagem-backend/pkg/utils"
)

type AnalyticsHandler struct {
	Service *services.AnalyticsService
}

func NewAnalyticsHandler(s *services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{Service: s}
}

// period reads date_from/date_to. It writes the 400 itself on failure.
func (h *AnalyticsHandler) period(w http.ResponseWriter, r *http.Request, defaultDays int) (services.Period, bool) {
	q := r.URL.Query()
	p, err := h.Service.ResolvePeriod(q.Get("date_from"), q.Get("date_to"), defaultDays)
	if err != nil {
		writeServiceError(w, r, err)
		return services.Period{}, false
	}
	return p, true
}

func periodMeta(p services.Period) map[string]string {
	return map[string]string{
		"date_from": timeutil.FormatIST(p.From, timeutil.DateLayout),
		"date_to":   timeutil.FormatIST(p.To, timeutil.DateLayout),
	}
}

// ByRoute handles GET /api/admin/deliveries/analytics/by-route?include_empty=true
func (h *AnalyticsHandler) ByRoute(w http.ResponseWriter, r *http.Request) {
	p, ok := h.period(w, r, services.DefaultAnalyticsDays)
	if !ok {
		return
	}
	stats, err := h.Service.ByRoute(r.Context(), p, queryBool(r, "include_empty"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.JSONWithMeta(w, http.StatusOK, stats, periodMeta(p))
}

// ByAgent handles GET /api/admin/deliveries/analytics/by-delivery-boy
func (h *AnalyticsHandler) ByAgent(w http.ResponseWriter, r *http.Request) {
	p, ok := h.period(w, r, services.DefaultAnalyticsDays)
	if !ok {
		return
	}
	stats, err := h.Service.ByAgent(r.Context(), p)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.JSONWithMeta(w, http.StatusOK, stats, periodMeta(p))
}

// Daily handles GET /api/admin/deliveries/analytics/daily?days=30
func (h *AnalyticsHandler) Daily(w http.ResponseWriter, r *http.Request) {
	days, err := queryInt(r, "days", services.DefaultAnalyticsDays)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	stats, err := h.Service.Daily(r.Context(), days)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.JSONWithMeta(w, http.StatusOK, stats, map[string]int{"days": days})
}

// Stats handles GET /api/admin/deliveries/stats
func (h *AnalyticsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	p, ok := h.period(w, r, services.DefaultAnalyticsDays)
	if !ok {
		return
	}
	routeID, err := queryInt(r, "route_id", 0)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	agentID, err := queryInt(r, "delivery_boy_id", 0)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	stats, err := h.Service.Stats(r.Context(), services.StatsQuery{Period: p, RouteID: routeID, DeliveryBoyID: agentID})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.JSONWithMeta(w, http.StatusOK, stats, periodMeta(p))
}

// Performance handles GET /api/admin/delivery-boys/{id}/performance
func (h *AnalyticsHandler) Performance(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	p, ok := h.period(w, r, services.DefaultAnalyticsDays)
	if !ok {
		return
	}
	perf, err := h.Service.Performance(r.Context(), id, p)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.JSONWithMeta(w, http.StatusOK, perf, periodMeta(p))
}

// Undelivered handles GET /api/admin/operations/undelivered (defaults to today)
func (h *AnalyticsHandler) Undelivered(w http.ResponseWriter, r *http.Request) {
	p, ok := h.period(w, r, 1)
	if !ok {
		return
	}
	records, err := h.Service.Undelivered(r.Context(), p)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	meta := periodMeta(p)
	utils.JSONWithMeta(w, http.StatusOK, records, map[string]interface{}{
		"date_from": meta["date_from"],
		"date_to":   meta["date_to"],
		"total":     len(records),
	})
}

// Alerts handles GET /api/admin/operations/alerts
func (h *AnalyticsHandler) Alerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.Service.Alerts(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.JSONWithMeta(w, http.StatusOK, alerts, map[string]int{"total": len(alerts)})
}
