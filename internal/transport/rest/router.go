package rest

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"versebattle/internal/game"
	"versebattle/internal/transport/rest/handler"
	"versebattle/internal/transport/rest/middleware"
	"versebattle/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	GameService  *game.Service
	TokenService *game.TokenService
	WSHub        *ws.Hub
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	roomHandler := handler.NewRoomHandler(c.GameService, c.TokenService)
	verseHandler := handler.NewVerseHandler(c.GameService)
	wsHandler := ws.NewHandler(c.WSHub, c.TokenService)

	authMW := middleware.NewAuthMiddleware(c.TokenService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware)

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes: joining issues the token used everywhere else
	v1.HandleFunc("/rooms", roomHandler.Create).Methods("POST", "OPTIONS")
	v1.HandleFunc("/rooms/{code}/join", roomHandler.Join).Methods("POST", "OPTIONS")
	v1.HandleFunc("/verses/{id}", verseHandler.Get).Methods("GET", "OPTIONS")

	// WebSocket route (token in query param)
	v1.HandleFunc("/ws/rooms/{code}", wsHandler.RoomWS).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Player routes (require player auth)
	playerRoutes := v1.NewRoute().Subrouter()
	playerRoutes.Use(authMW.RequirePlayer)

	playerRoutes.HandleFunc("/rooms/{code}", roomHandler.Get).Methods("GET", "OPTIONS")
	playerRoutes.HandleFunc("/rooms/{code}/ready", roomHandler.Ready).Methods("POST", "OPTIONS")
	playerRoutes.HandleFunc("/rooms/{code}/answers", roomHandler.SubmitAnswer).Methods("POST", "OPTIONS")
	playerRoutes.HandleFunc("/rooms/{code}/advance", roomHandler.Advance).Methods("POST", "OPTIONS")
	playerRoutes.HandleFunc("/rooms/{code}/leave", roomHandler.Leave).Methods("POST", "OPTIONS")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
