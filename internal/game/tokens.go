package game

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"versebattle/internal/model"
)

// ErrInvalidToken is returned for expired or malformed session tokens.
var ErrInvalidToken = errors.New("invalid or expired token")

// TokenService issues room-scoped session tokens so a player can reconnect
// either adapter surface as the same identity.
type TokenService struct {
	secret []byte
}

func NewTokenService(secret string) *TokenService {
	return &TokenService{secret: []byte(secret)}
}

// GeneratePlayerToken creates a token bound to one room and player.
func (s *TokenService) GeneratePlayerToken(roomCode, playerID string) (string, error) {
	claims := &model.PlayerClaims{
		RoomCode: roomCode,
		PlayerID: playerID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidatePlayerToken parses a token and returns its claims.
func (s *TokenService) ValidatePlayerToken(tokenString string) (*model.PlayerClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.PlayerClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*model.PlayerClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
