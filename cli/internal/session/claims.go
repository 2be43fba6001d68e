package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoToken is returned by Describe for an empty token.
var ErrNoToken = errors.New("no session token")

// Identity is what the stored token claims about its holder. The claims are
// read without verifying the signature; the server remains the authority.
type Identity struct {
	Subject   string     `json:"subject"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// Expired reports whether the token carries an expiry before now.
func (i Identity) Expired(now time.Time) bool {
	return i.ExpiresAt != nil && now.After(*i.ExpiresAt)
}

// Describe decodes the registered claims of a JWT session token.
func Describe(token string) (*Identity, error) {
	if token == "" {
		return nil, ErrNoToken
	}

	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return nil, fmt.Errorf("failed to decode token: %w", err)
	}

	id := &Identity{Subject: claims.Subject}
	if claims.ExpiresAt != nil {
		exp := claims.ExpiresAt.Time
		id.ExpiresAt = &exp
	}
	return id, nil
}
