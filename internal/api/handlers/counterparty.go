package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dfarias/chaperone/internal/domain"
	"github.com/dfarias/chaperone/internal/store"
)

type CounterpartyHandler struct {
	parties domain.CounterpartyStore
}

func NewCounterpartyHandler(parties domain.CounterpartyStore) *CounterpartyHandler {
	return &CounterpartyHandler{parties: parties}
}

type createCounterpartyRequest struct {
	Name      string `json:"name"`
	Contact   string `json:"contact"`
	Specialty string `json:"specialty"`
}

func (h *CounterpartyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createCounterpartyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	party := &domain.Counterparty{
		Name:      req.Name,
		Contact:   req.Contact,
		Specialty: req.Specialty,
	}
	if err := h.parties.Create(r.Context(), party); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create counterparty")
		return
	}
	writeJSON(w, http.StatusCreated, party)
}

func (h *CounterpartyHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid counterparty id")
		return
	}

	party, err := h.parties.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "counterparty not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get counterparty")
		return
	}
	writeJSON(w, http.StatusOK, party)
}
