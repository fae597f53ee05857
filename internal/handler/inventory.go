package handler

import (
	"net/http"
	"strconv"

	"bakerybot/internal/service"
	"bakerybot/pkg/apierror"
	"bakerybot/pkg/response"
)

const maxHistoryLimit = 500

// InventoryHandler serves read-only inventory views.
type InventoryHandler struct {
	reporter *service.Reporter
}

// NewInventoryHandler creates a new inventory handler.
func NewInventoryHandler(reporter *service.Reporter) *InventoryHandler {
	return &InventoryHandler{reporter: reporter}
}

// GetSnapshot handles GET /api/v1/inventory
func (h *InventoryHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.reporter.Snapshot(r.Context())
	if err != nil {
		response.Error(w, apierror.ServiceUnavailable("inventory unavailable"))
		return
	}
	response.OK(w, snap)
}

// GetReport handles GET /api/v1/inventory/report
func (h *InventoryHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.reporter.Render(r.Context())
	if err != nil {
		response.Error(w, apierror.ServiceUnavailable("inventory unavailable"))
		return
	}
	response.Text(w, http.StatusOK, report)
}

// GetPredictions handles GET /api/v1/inventory/predictions
func (h *InventoryHandler) GetPredictions(w http.ResponseWriter, r *http.Request) {
	preds, err := h.reporter.Predict(r.Context())
	if err != nil {
		response.Error(w, apierror.ServiceUnavailable("inventory unavailable"))
		return
	}
	response.OK(w, preds)
}

// GetHistory handles GET /api/v1/inventory/history?limit=n
func (h *InventoryHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			response.Error(w, apierror.ValidationError("invalid query",
				apierror.FieldError{Field: "limit", Message: "must be a positive integer"}))
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	entries, err := h.reporter.History(r.Context(), limit)
	if err != nil {
		response.Error(w, apierror.ServiceUnavailable("inventory unavailable"))
		return
	}
	response.JSONWithMeta(w, http.StatusOK, entries, 1, limit, int64(len(entries)))
}
