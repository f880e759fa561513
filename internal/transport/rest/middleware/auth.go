package middleware

import (
	"context"
	"net/http"
	"strings"

	"versebattle/internal/game"
)

type contextKey string

const (
	playerIDKey contextKey = "playerID"
	roomCodeKey contextKey = "roomCode"
)

// AuthMiddleware validates player session tokens
type AuthMiddleware struct {
	tokens *game.TokenService
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(tokens *game.TokenService) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// RequirePlayer validates the bearer token and stashes the player identity
// in the request context.
func (m *AuthMiddleware) RequirePlayer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		auth := r.Header.Get("Authorization")
		token := strings.TrimPrefix(auth, "Bearer ")
		if token == "" || token == auth {
			http.Error(w, "missing bearer token", http.StatusUnauthorized)
			return
		}

		claims, err := m.tokens.ValidatePlayerToken(token)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), playerIDKey, claims.PlayerID)
		ctx = context.WithValue(ctx, roomCodeKey, claims.RoomCode)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetPlayerID extracts the authenticated player id from the context
func GetPlayerID(ctx context.Context) string {
	if v, ok := ctx.Value(playerIDKey).(string); ok {
		return v
	}
	return ""
}

// GetRoomCode extracts the token's room code from the context
func GetRoomCode(ctx context.Context) string {
	if v, ok := ctx.Value(roomCodeKey).(string); ok {
		return v
	}
	return ""
}
