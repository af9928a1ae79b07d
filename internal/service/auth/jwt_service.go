// Package auth issues and verifies session tokens and hashes passwords.
package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// JWTService defines operations for managing signed session tokens.
type JWTService interface {
	// GenerateToken creates a signed token embedding the user's ID.
	// Every call yields a distinct token, even within the same second.
	GenerateToken(ctx context.Context, userID uuid.UUID) (string, error)

	// ValidateToken verifies signature and time claims and extracts the claims.
	// Returns ErrInvalidToken, ErrExpiredToken or ErrTokenNotYetValid on failure.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims represents the verified contents of a session token.
type Claims struct {
	// UserID is the unique identifier of the user the token was issued for.
	UserID uuid.UUID `json:"uid,omitempty"`

	Subject  string    `json:"sub,omitempty"`
	IssuedAt time.Time `json:"iat,omitempty"`
	// ExpiresAt is zero for tokens issued without a lifetime.
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
