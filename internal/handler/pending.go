package handler

import (
	"net/http"
	"time"

	"bakerybot/internal/model"
	"bakerybot/internal/service"
	"bakerybot/pkg/apierror"
	"bakerybot/pkg/response"
	"bakerybot/pkg/uid"

	"github.com/go-chi/chi/v5"
)

// PendingHandler exposes clarifications and reminders.
type PendingHandler struct {
	engine  *service.Engine
	pending *service.Pending
}

// NewPendingHandler creates a new pending-actions handler.
func NewPendingHandler(engine *service.Engine) *PendingHandler {
	return &PendingHandler{engine: engine, pending: engine.Pending}
}

// GetClarification handles GET /api/v1/clarifications/{requester_id}
func (h *PendingHandler) GetClarification(w http.ResponseWriter, r *http.Request) {
	requesterID := chi.URLParam(r, "requester_id")
	if requesterID == "" {
		response.Error(w, apierror.BadRequest("requester_id is required"))
		return
	}

	c, err := h.pending.GetClarification(r.Context(), requesterID)
	if err != nil {
		response.Error(w, apierror.ServiceUnavailable("pending actions unavailable"))
		return
	}
	if c == nil {
		response.Error(w, apierror.NotFound("no open clarification"))
		return
	}
	response.OK(w, c)
}

// DeleteClarification handles DELETE /api/v1/clarifications/{requester_id}
func (h *PendingHandler) DeleteClarification(w http.ResponseWriter, r *http.Request) {
	requesterID := chi.URLParam(r, "requester_id")
	if requesterID == "" {
		response.Error(w, apierror.BadRequest("requester_id is required"))
		return
	}

	removed, err := h.pending.ResolveClarification(r.Context(), requesterID)
	if err != nil {
		response.Error(w, apierror.ServiceUnavailable("pending actions unavailable"))
		return
	}
	response.OK(w, map[string]interface{}{
		"resolved": removed != nil,
	})
}

// GetDueReminders handles GET /api/v1/reminders/due
func (h *PendingHandler) GetDueReminders(w http.ResponseWriter, r *http.Request) {
	due, err := h.pending.DueReminders(r.Context(), h.clock())
	if err != nil {
		response.Error(w, apierror.ServiceUnavailable("pending actions unavailable"))
		return
	}
	response.OK(w, nonNil(due))
}

// ResolveDueReminders handles POST /api/v1/reminders/due/resolve
func (h *PendingHandler) ResolveDueReminders(w http.ResponseWriter, r *http.Request) {
	due, err := h.pending.MarkDue(r.Context(), h.clock())
	if err != nil {
		response.Error(w, apierror.ServiceUnavailable("pending actions unavailable"))
		return
	}
	response.OK(w, nonNil(due))
}

// ResolveReminder handles POST /api/v1/reminders/{id}/resolve
func (h *PendingHandler) ResolveReminder(w http.ResponseWriter, r *http.Request) {
	id, err := uid.Normalize(chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, apierror.BadRequest("invalid reminder id"))
		return
	}

	ok, err := h.pending.ResolveReminder(r.Context(), id)
	if err != nil {
		response.Error(w, apierror.ServiceUnavailable("pending actions unavailable"))
		return
	}
	if !ok {
		response.Error(w, apierror.NotFound("no open reminder with that id"))
		return
	}
	response.OK(w, map[string]interface{}{
		"id":       id,
		"resolved": true,
	})
}

func (h *PendingHandler) clock() time.Time {
	if h.engine.Now == nil {
		return time.Now()
	}
	return h.engine.Now()
}

func nonNil(rs []model.Reminder) []model.Reminder {
	if rs == nil {
		return []model.Reminder{}
	}
	return rs
}
