package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"versebattle/internal/game"
)

// VerseHandler handles verse lookup endpoints
type VerseHandler struct {
	svc *game.Service
}

// NewVerseHandler creates a new verse handler
func NewVerseHandler(svc *game.Service) *VerseHandler {
	return &VerseHandler{svc: svc}
}

// Get handles GET /v1/verses/{id}
func (h *VerseHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	verse, err := h.svc.Verse(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if verse == nil {
		writeError(w, http.StatusNotFound, "verse not found")
		return
	}

	writeJSON(w, http.StatusOK, verse)
}
