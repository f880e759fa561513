package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"versebattle/internal/game"
	"versebattle/internal/transport/rest/middleware"
)

// RoomHandler handles room endpoints
type RoomHandler struct {
	svc    *game.Service
	tokens *game.TokenService
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(svc *game.Service, tokens *game.TokenService) *RoomHandler {
	return &RoomHandler{svc: svc, tokens: tokens}
}

func newPlayerID() string {
	return "p_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
}

// CreateRoomRequest is the request body for creating a room
type CreateRoomRequest struct {
	Name string `json:"name"`
}

// Create handles POST /v1/rooms
func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	playerID := newPlayerID()
	room, err := h.svc.CreateRoom(r.Context(), playerID, strings.TrimSpace(req.Name))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	token, err := h.tokens.GeneratePlayerToken(room.Code, playerID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"roomCode": room.Code,
		"playerId": playerID,
		"token":    token,
		"room":     room,
	})
}

// JoinRequest is the request body for joining a room
type JoinRequest struct {
	Name string `json:"name"`
}

// Join handles POST /v1/rooms/{code}/join
func (h *RoomHandler) Join(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	var req JoinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	playerID := newPlayerID()
	room, err := h.svc.JoinRoom(r.Context(), code, playerID, strings.TrimSpace(req.Name))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	token, err := h.tokens.GeneratePlayerToken(room.Code, playerID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"roomCode": room.Code,
		"playerId": playerID,
		"token":    token,
		"room":     room,
	})
}

// Get handles GET /v1/rooms/{code}
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	room, err := h.svc.GetRoom(r.Context(), code)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, room)
}

// ReadyRequest is the request body for toggling readiness
type ReadyRequest struct {
	Ready bool `json:"ready"`
}

// Ready handles POST /v1/rooms/{code}/ready
func (h *RoomHandler) Ready(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	playerID := middleware.GetPlayerID(r.Context())

	req := ReadyRequest{Ready: true}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	room, err := h.svc.SetReady(r.Context(), code, playerID, req.Ready)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, room)
}

// AnswerRequest is the request body for submitting an answer
type AnswerRequest struct {
	Answer             string   `json:"answer"`
	ProgressiveAnswers []string `json:"progressiveAnswers"`
}

// SubmitAnswer handles POST /v1/rooms/{code}/answers
func (h *RoomHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	playerID := middleware.GetPlayerID(r.Context())

	var req AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.svc.SubmitAnswer(r.Context(), code, playerID, req.Answer, req.ProgressiveAnswers)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Advance handles POST /v1/rooms/{code}/advance
func (h *RoomHandler) Advance(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	playerID := middleware.GetPlayerID(r.Context())

	room, err := h.svc.AdvanceRound(r.Context(), code, playerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, room)
}

// Leave handles POST /v1/rooms/{code}/leave
func (h *RoomHandler) Leave(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	playerID := middleware.GetPlayerID(r.Context())

	if err := h.svc.LeaveRoom(r.Context(), code, playerID); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "left"})
}
