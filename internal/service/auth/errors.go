package auth

import "errors"

// Common authentication service errors
var (
	// ErrInvalidToken indicates the token format is invalid or signature doesn't match
	ErrInvalidToken = errors.New("invalid authentication token")

	// ErrExpiredToken indicates the token has expired
	ErrExpiredToken = errors.New("authentication token has expired")

	// ErrTokenNotYetValid indicates the token is not yet valid (nbf or iat claim in the future)
	ErrTokenNotYetValid = errors.New("authentication token not yet valid")

	// ErrPasswordMismatch indicates a plaintext password does not match the stored hash.
	ErrPasswordMismatch = errors.New("password does not match")
)
