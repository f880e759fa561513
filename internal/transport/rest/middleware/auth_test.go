package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"versebattle/internal/game"
)

func TestRequirePlayer(t *testing.T) {
	tokens := game.NewTokenService("test-secret")
	mw := NewAuthMiddleware(tokens)

	var gotPlayer, gotRoom string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPlayer = GetPlayerID(r.Context())
		gotRoom = GetRoomCode(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	token, err := tokens.GeneratePlayerToken("ABC234", "p_1234")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/v1/rooms/ABC234", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	mw.RequirePlayer(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "p_1234", gotPlayer)
	assert.Equal(t, "ABC234", gotRoom)
}

func TestRequirePlayerMissingToken(t *testing.T) {
	mw := NewAuthMiddleware(game.NewTokenService("test-secret"))
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/rooms/ABC234", nil)
	rec := httptest.NewRecorder()
	mw.RequirePlayer(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequirePlayerRejectsForeignToken(t *testing.T) {
	mw := NewAuthMiddleware(game.NewTokenService("test-secret"))
	other := game.NewTokenService("another-secret")
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	})

	token, err := other.GeneratePlayerToken("ABC234", "p_1234")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/v1/rooms/ABC234", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	mw.RequirePlayer(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
