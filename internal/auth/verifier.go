package auth

import (
	"context" // Verification is a network call
	"errors"  // Sentinel errors

	"google.golang.org/api/idtoken" // Google ID token validation
)

// ErrInvalidToken is returned for any token that fails verification.
var ErrInvalidToken = errors.New("invalid id token")

// Identity is the verified result of a sign-in token: an opaque external
// subject plus the claims the profile is seeded from.
type Identity struct {
	Subject  string // Stable external id (Google "sub")
	Email    string
	FullName string
}

// TokenVerifier turns a raw sign-in token into a verified identity. The
// handler layer treats it as a black box so tests can stub it.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// GoogleVerifier validates Google ID tokens against the configured OAuth
// client id.
type GoogleVerifier struct {
	ClientID string // Audience the token must be issued for
}

// Verify checks signature, expiry and audience, then extracts the identity
// claims.
func (g *GoogleVerifier) Verify(ctx context.Context, token string) (*Identity, error) {
	payload, err := idtoken.Validate(ctx, token, g.ClientID)
	if err != nil {
		return nil, ErrInvalidToken
	}
	identity := &Identity{Subject: payload.Subject}
	if email, ok := payload.Claims["email"].(string); ok {
		identity.Email = email
	}
	if name, ok := payload.Claims["name"].(string); ok {
		identity.FullName = name
	}
	if identity.Email == "" {
		return nil, ErrInvalidToken // An identity without an email cannot own a profile
	}
	return identity, nil
}
