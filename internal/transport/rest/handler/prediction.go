package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"
	"wellbeing/internal/analytics"
	"wellbeing/internal/model"
	"wellbeing/internal/repository"
	"wellbeing/internal/service"

	"github.com/gorilla/mux"
)

const maxImportBytes = 32 << 20

// PredictionHandler handles the assessment history endpoints
type PredictionHandler struct {
	historySvc   *service.HistoryService
	dashboardSvc *service.DashboardService
}

// NewPredictionHandler creates a new prediction handler
func NewPredictionHandler(historySvc *service.HistoryService, dashboardSvc *service.DashboardService) *PredictionHandler {
	return &PredictionHandler{
		historySvc:   historySvc,
		dashboardSvc: dashboardSvc,
	}
}

// PredictionView is a record decorated with display times
type PredictionView struct {
	model.PredictionRecord
	When model.FormattedTime `json:"when"`
}

func (h *PredictionHandler) view(rec model.PredictionRecord) PredictionView {
	return PredictionView{PredictionRecord: rec, When: h.dashboardSvc.FormatTime(rec.Timestamp)}
}

func (h *PredictionHandler) views(records []model.PredictionRecord) []PredictionView {
	out := make([]PredictionView, 0, len(records))
	for _, rec := range records {
		out = append(out, h.view(rec))
	}
	return out
}

// Create handles POST /v1/predictions
func (h *PredictionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreatePredictionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rec, err := h.historySvc.Create(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save prediction")
		return
	}

	writeJSON(w, http.StatusCreated, h.view(*rec))
}

// List handles GET /v1/predictions?persona=&sort=&from=&to=
func (h *PredictionHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	from, err := parseTimeParam(q.Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "from must be an RFC 3339 timestamp")
		return
	}
	to, err := parseTimeParam(q.Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "to must be an RFC 3339 timestamp")
		return
	}

	records := h.historySvc.List(r.Context(), model.Query{
		PersonaFilter: q.Get("persona"),
		SortKey:       analytics.ParseSortKey(q.Get("sort")),
	})
	if !from.IsZero() || !to.IsZero() {
		if to.IsZero() {
			to = time.Now()
		}
		records = analytics.FilterByDateRange(records, from, to)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"predictions": h.views(records),
		"count":       len(records),
	})
}

// Recent handles GET /v1/predictions/recent?count=
func (h *PredictionHandler) Recent(w http.ResponseWriter, r *http.Request) {
	count := repository.DefaultRecentCount
	if s := r.URL.Query().Get("count"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "count must be a non-negative integer")
			return
		}
		count = n
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"predictions": h.views(h.historySvc.Recent(r.Context(), count)),
	})
}

// Personas handles GET /v1/predictions/personas
func (h *PredictionHandler) Personas(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"personas": h.historySvc.Personas(r.Context()),
	})
}

// Get handles GET /v1/predictions/{id}
func (h *PredictionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	rec, found := h.historySvc.Get(r.Context(), id)
	if !found {
		writeError(w, http.StatusNotFound, "prediction not found")
		return
	}

	writeJSON(w, http.StatusOK, h.view(*rec))
}

// Delete handles DELETE /v1/predictions/{id}. Unknown ids succeed.
func (h *PredictionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	removed, err := h.historySvc.Delete(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete prediction")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"deleted": removed})
}

// DeleteAll handles DELETE /v1/predictions
func (h *PredictionHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	if err := h.historySvc.DeleteAll(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to clear history")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Export handles GET /v1/predictions/export
func (h *PredictionHandler) Export(w http.ResponseWriter, r *http.Request) {
	data, err := h.historySvc.Export(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to export history")
		return
	}

	filename := "wellbeing-history-" + time.Now().UTC().Format("2006-01-02") + ".json"
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// Import handles POST /v1/predictions/import with a JSON array body
func (h *PredictionHandler) Import(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	n, err := h.historySvc.Import(r.Context(), payload)
	if errors.Is(err, repository.ErrInvalidImport) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to import history")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"imported": n})
}

func parseTimeParam(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, s)
}
