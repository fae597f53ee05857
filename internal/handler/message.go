package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"bakerybot/internal/service"
	"bakerybot/pkg/apierror"
	"bakerybot/pkg/response"
)

const maxMessageBytes = 16 << 10

// MessageHandler accepts chat messages relayed by the chat bridge.
type MessageHandler struct {
	assistant *service.Assistant
}

// NewMessageHandler creates a new message handler.
func NewMessageHandler(assistant *service.Assistant) *MessageHandler {
	return &MessageHandler{assistant: assistant}
}

// MessageRequest is one inbound chat message.
type MessageRequest struct {
	Text        string `json:"text"`
	RequesterID string `json:"requester_id"`
}

// MessageResponse carries the bot's answer. Replied is false when the bot
// stays silent.
type MessageResponse struct {
	Reply   string `json:"reply"`
	Replied bool   `json:"replied"`
}

// PostMessage handles POST /api/v1/messages
func (h *MessageHandler) PostMessage(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxMessageBytes+1))
	if err != nil {
		response.Error(w, apierror.BadRequest("failed to read request body"))
		return
	}
	if len(body) > maxMessageBytes {
		response.Error(w, apierror.BadRequest("message too large"))
		return
	}

	var req MessageRequest
	if err := json.Unmarshal(body, &req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}
	if strings.TrimSpace(req.RequesterID) == "" {
		response.Error(w, apierror.ValidationError("invalid message",
			apierror.FieldError{Field: "requester_id", Message: "is required"}))
		return
	}

	reply, ok := h.assistant.ProcessMessage(r.Context(), req.Text, req.RequesterID)
	response.OK(w, MessageResponse{Reply: reply, Replied: ok})
}
