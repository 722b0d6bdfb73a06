package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// Errors returned by the token boundary. The pipeline maps all of them to a
// 401 without distinguishing detail to the caller.
var (
	// ErrNoToken is returned when the request carries no bearer token.
	ErrNoToken = errors.New("missing bearer token")

	// ErrInvalidToken is returned when the token fails validation.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired is returned when the token is expired.
	ErrTokenExpired = errors.New("token expired")
)

// TokenValidator verifies a bearer token and yields its claim set. Signature,
// issuer, audience, and lifetime checks all live behind this boundary.
type TokenValidator interface {
	Validate(ctx context.Context, token string) (Claims, error)
}

// BearerToken extracts the bearer token from the Authorization header.
func BearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", ErrNoToken
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", ErrNoToken
	}
	return strings.TrimSpace(token), nil
}
