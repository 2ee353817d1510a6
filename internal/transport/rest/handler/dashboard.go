package handler

import (
	"net/http"
	"strconv"
	"wellbeing/internal/service"
)

// DashboardHandler serves statistics and chart data
type DashboardHandler struct {
	historySvc   *service.HistoryService
	dashboardSvc *service.DashboardService
	chartPoints  int
	trendDays    int
}

// NewDashboardHandler creates a new dashboard handler. chartPoints and
// trendDays are used when the request does not name its own.
func NewDashboardHandler(historySvc *service.HistoryService, dashboardSvc *service.DashboardService, chartPoints, trendDays int) *DashboardHandler {
	return &DashboardHandler{
		historySvc:   historySvc,
		dashboardSvc: dashboardSvc,
		chartPoints:  chartPoints,
		trendDays:    trendDays,
	}
}

// Stats handles GET /v1/stats
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.historySvc.Stats(r.Context()))
}

// Dashboard handles GET /v1/dashboard
func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.dashboardSvc.Dashboard(r.Context()))
}

// ScoreChart handles GET /v1/charts/scores?points=
func (h *DashboardHandler) ScoreChart(w http.ResponseWriter, r *http.Request) {
	points, ok := positiveParam(w, r, "points", h.chartPoints)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"points": h.dashboardSvc.ScoreChart(r.Context(), points),
	})
}

// PersonaChart handles GET /v1/charts/personas
func (h *DashboardHandler) PersonaChart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"personas": h.dashboardSvc.PersonaChart(r.Context()),
	})
}

// Trends handles GET /v1/trends?days=
func (h *DashboardHandler) Trends(w http.ResponseWriter, r *http.Request) {
	days, ok := positiveParam(w, r, "days", h.trendDays)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"days":   days,
		"trends": h.dashboardSvc.Trends(r.Context(), days),
	})
}

// positiveParam reads an optional positive integer query parameter and
// writes a 400 when it is malformed.
func positiveParam(w http.ResponseWriter, r *http.Request, name string, fallback int) (int, bool) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return fallback, true
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		writeError(w, http.StatusBadRequest, name+" must be a positive integer")
		return 0, false
	}
	return n, true
}
