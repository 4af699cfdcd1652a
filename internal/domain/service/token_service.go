package service

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the minimal identity assertion carried by a session token.
type Claims struct {
	UserID uuid.UUID `json:"-"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies signed session tokens.
type TokenService interface {
	// IssueToken signs a token for the user, valid for the configured lifetime.
	IssueToken(userID uuid.UUID) (string, error)

	// ValidateToken checks signature and expiry and returns the claims.
	ValidateToken(tokenString string) (*Claims, error)
}
