package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/dfarias/chaperone/internal/service"
)

type ScreenHandler struct {
	gate *service.GateService
}

func NewScreenHandler(gate *service.GateService) *ScreenHandler {
	return &ScreenHandler{gate: gate}
}

type screenInboundRequest struct {
	Text               string   `json:"text"`
	ShiftConfidence    *float64 `json:"shift_confidence,omitempty"`
	FacilityConfidence *float64 `json:"facility_confidence,omitempty"`
	MemorySimilarity   *float64 `json:"memory_similarity,omitempty"`
	ProfileComplete    bool     `json:"profile_complete"`
}

// Inbound screens a counterparty message before the agent drafts a reply.
func (h *ScreenHandler) Inbound(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid conversation id")
		return
	}

	var req screenInboundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	decision, err := h.gate.ScreenInbound(r.Context(), id, req.Text, service.InboundSignals{
		ShiftConfidence:    req.ShiftConfidence,
		FacilityConfidence: req.FacilityConfidence,
		MemorySimilarity:   req.MemorySimilarity,
		ProfileComplete:    req.ProfileComplete,
	})
	if err != nil {
		writeConversationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, decision)
}

type screenOutboundRequest struct {
	Candidate        string `json:"candidate"`
	MaxLines         int    `json:"max_lines,omitempty"`
	CheckInformality *bool  `json:"check_informality,omitempty"`
}

// Outbound vets a candidate agent reply before it is sent.
func (h *ScreenHandler) Outbound(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid conversation id")
		return
	}

	var req screenOutboundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Candidate == "" {
		writeError(w, http.StatusBadRequest, "candidate is required")
		return
	}

	opts := service.DefaultPersonaOptions()
	if req.MaxLines > 0 {
		opts.MaxLines = req.MaxLines
	}
	if req.CheckInformality != nil {
		opts.CheckInformality = *req.CheckInformality
	}

	verdict, err := h.gate.ScreenOutbound(r.Context(), id, req.Candidate, opts)
	if err != nil {
		writeConversationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, verdict)
}
