package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dfarias/chaperone/internal/domain"
	"github.com/dfarias/chaperone/internal/service"
	"github.com/google/uuid"
)

type HandoffHandler struct {
	svc      *service.HandoffService
	handoffs domain.HandoffStore
}

func NewHandoffHandler(svc *service.HandoffService, handoffs domain.HandoffStore) *HandoffHandler {
	return &HandoffHandler{svc: svc, handoffs: handoffs}
}

type initiateHandoffRequest struct {
	Reason           string `json:"reason"`
	TriggerType      string `json:"trigger_type"`
	PolicyDecisionID string `json:"policy_decision_id,omitempty"`
}

// Initiate escalates a conversation to a human operator.
func (h *HandoffHandler) Initiate(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid conversation id")
		return
	}

	var req initiateHandoffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Reason == "" {
		writeError(w, http.StatusBadRequest, "reason is required")
		return
	}
	trigger := domain.TriggerType(req.TriggerType)
	if req.TriggerType == "" {
		trigger = domain.TriggerManual
	} else if !domain.ValidTriggerType(trigger) {
		writeError(w, http.StatusBadRequest, "invalid trigger_type")
		return
	}

	var decisionID *uuid.UUID
	if req.PolicyDecisionID != "" {
		parsed, err := uuid.Parse(req.PolicyDecisionID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid policy_decision_id")
			return
		}
		decisionID = &parsed
	}

	record, err := h.svc.Initiate(r.Context(), id, req.Reason, trigger, decisionID)
	if err != nil {
		writeHandoffError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

type finalizeHandoffRequest struct {
	Notes      string `json:"notes"`
	ResolvedBy string `json:"resolved_by"`
}

// Finalize returns control of a conversation to the automated agent.
func (h *HandoffHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid conversation id")
		return
	}

	var req finalizeHandoffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ResolvedBy == "" {
		writeError(w, http.StatusBadRequest, "resolved_by is required")
		return
	}

	if err := h.svc.Finalize(r.Context(), id, req.Notes, req.ResolvedBy); err != nil {
		writeHandoffError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "finalized"})
}

func (h *HandoffHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid handoff id")
		return
	}

	record, err := h.handoffs.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "handoff not found")
		return
	}
	writeJSON(w, http.StatusOK, record)
}

type resolveHandoffRequest struct {
	ResolvedBy string `json:"resolved_by"`
	Notes      string `json:"notes"`
}

// Resolve closes a single handoff record.
func (h *HandoffHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid handoff id")
		return
	}

	var req resolveHandoffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ResolvedBy == "" {
		writeError(w, http.StatusBadRequest, "resolved_by is required")
		return
	}

	record, err := h.svc.Resolve(r.Context(), id, req.ResolvedBy, req.Notes)
	if err != nil {
		writeHandoffError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// ListPending returns handoffs that have sat unresolved longer than min_age
// (default zero, i.e. all pending).
func (h *HandoffHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	minAge := time.Duration(0)
	if raw := r.URL.Query().Get("min_age"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid min_age duration")
			return
		}
		minAge = parsed
	}

	records, err := h.handoffs.ListPendingOlderThan(r.Context(), minAge)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list pending handoffs")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"handoffs": records,
		"count":    len(records),
	})
}

type transferRequest struct {
	ConversationID string `json:"conversation_id"`
	FromAgent      string `json:"from_agent"`
	ToAgent        string `json:"to_agent"`
}

// Transfer moves a conversation between registered automated roles.
func (h *HandoffHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	id, err := uuid.Parse(req.ConversationID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid conversation_id")
		return
	}
	if req.FromAgent == "" || req.ToAgent == "" {
		writeError(w, http.StatusBadRequest, "from_agent and to_agent are required")
		return
	}

	if err := h.svc.Transfer(r.Context(), id, req.FromAgent, req.ToAgent); err != nil {
		writeHandoffError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "transferred"})
}

func writeHandoffError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrConversationNotFound),
		errors.Is(err, service.ErrCounterpartyNotFound),
		errors.Is(err, service.ErrHandoffNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrContactMissing),
		errors.Is(err, service.ErrAgentNotRegistered):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, service.ErrHandoffResolved),
		errors.Is(err, service.ErrConversationCompleted):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "handoff operation failed")
	}
}
