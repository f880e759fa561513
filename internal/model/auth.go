package model

import "github.com/golang-jwt/jwt/v5"

// PlayerClaims is the room-scoped session token carried by both adapters.
type PlayerClaims struct {
	RoomCode string `json:"roomCode"`
	PlayerID string `json:"playerId"`
	jwt.RegisteredClaims
}
