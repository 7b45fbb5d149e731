package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dfarias/chaperone/internal/service"
	"github.com/google/uuid"
)

type ConversationHandler struct {
	svc  *service.ConversationService
	gate *service.GateService
}

func NewConversationHandler(svc *service.ConversationService, gate *service.GateService) *ConversationHandler {
	return &ConversationHandler{svc: svc, gate: gate}
}

type createConversationRequest struct {
	CounterpartyID string `json:"counterparty_id"`
}

func (h *ConversationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	counterpartyID, err := uuid.Parse(req.CounterpartyID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid counterparty_id")
		return
	}

	conv, err := h.svc.Create(r.Context(), counterpartyID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create conversation")
		return
	}
	writeJSON(w, http.StatusCreated, conv)
}

func (h *ConversationHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid conversation id")
		return
	}

	conv, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeConversationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, conv)
}

func (h *ConversationHandler) Pause(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.svc.PauseForOperator)
}

func (h *ConversationHandler) Resume(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.svc.Resume)
}

func (h *ConversationHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.svc.Complete)
}

// RecordReply stores a reply the agent actually sent so screening sees it on
// the next turn.
func (h *ConversationHandler) RecordReply(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid conversation id")
		return
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	if err := h.gate.RecordReply(r.Context(), id, req.Text); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to record reply")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "recorded"})
}

func (h *ConversationHandler) transition(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, id uuid.UUID) error) {
	id, ok := uuidParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid conversation id")
		return
	}

	if err := fn(r.Context(), id); err != nil {
		writeConversationError(w, err)
		return
	}

	conv, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeConversationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, conv)
}

func writeConversationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrConversationNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrConversationCompleted):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidTransition):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "conversation operation failed")
	}
}
