package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"versebattle/internal/game"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps the typed game failures onto HTTP statuses.
// Validation and not-found failures are recoverable; the caller re-prompts.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrRoomNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, game.ErrInvalidRoomCode):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, game.ErrRoomFull),
		errors.Is(err, game.ErrGameInProgress),
		errors.Is(err, game.ErrRoundNotActive):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, game.ErrNotHost),
		errors.Is(err, game.ErrNotInRoom):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, game.ErrStoreUnavailable):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
