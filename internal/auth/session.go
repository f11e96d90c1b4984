package auth

import (
	"context" // Context for Redis operations
	"errors"  // Sentinel errors
	"time"    // Token expiration and record TTL

	"github.com/golang-jwt/jwt/v5"   // JWT library
	"github.com/google/uuid"         // Session and customer ids
	"github.com/redis/go-redis/v9"   // Redis client
)

// SessionCookieName is the cookie the signed session token travels in.
const SessionCookieName = "session_token"

// SessionTTL bounds both the signed token and the Redis record.
const SessionTTL = 24 * time.Hour

// sessionKeyPrefix namespaces session records in Redis.
const sessionKeyPrefix = "session:"

// ErrSessionInvalid is returned for a missing, expired, revoked or
// tampered session token.
var ErrSessionInvalid = errors.New("invalid or expired session")

// SessionClaims are carried by the session cookie token
type SessionClaims struct {
	SessionID            string `json:"session_id"`  // Redis record key suffix
	CustomerID           string `json:"customer_id"` // Authenticated user
	jwt.RegisteredClaims        // Standard JWT claims
}

// Sessions issues and resolves session cookie tokens. The cookie value is a
// signed HS256 token; the authoritative record lives in Redis so that
// logout actually revokes and expiry is enforced server-side.
type Sessions struct {
	rdb    *redis.Client // Session record store
	secret []byte        // HMAC signing secret
}

// NewSessions builds a session manager
func NewSessions(rdb *redis.Client, secret string) *Sessions {
	return &Sessions{rdb: rdb, secret: []byte(secret)}
}

// Issue creates a session for a user and returns the cookie token
func (s *Sessions) Issue(ctx context.Context, customerID uuid.UUID) (string, error) {
	sessionID := uuid.NewString() // Fresh record key per sign-in
	// Store the authoritative record first; an orphaned record just expires
	if err := s.rdb.Set(ctx, sessionKeyPrefix+sessionID, customerID.String(), SessionTTL).Err(); err != nil {
		return "", err
	}
	claims := SessionClaims{
		SessionID:  sessionID,
		CustomerID: customerID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(SessionTTL)), // Token expires with the record
			IssuedAt:  jwt.NewNumericDate(time.Now()),                 // Issued at current time
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims) // Create token with claims
	return token.SignedString(s.secret)                        // Sign the token with the secret
}

// Resolve validates a cookie token and returns the customer id it belongs
// to. The token must parse, and its session record must still exist in
// Redis and agree on the customer id.
func (s *Sessions) Resolve(ctx context.Context, token string) (uuid.UUID, error) {
	claims, err := s.parse(token)
	if err != nil {
		return uuid.Nil, ErrSessionInvalid
	}
	stored, err := s.rdb.Get(ctx, sessionKeyPrefix+claims.SessionID).Result()
	if err == redis.Nil {
		return uuid.Nil, ErrSessionInvalid // Revoked or expired server-side
	} else if err != nil {
		return uuid.Nil, err
	}
	if stored != claims.CustomerID {
		return uuid.Nil, ErrSessionInvalid
	}
	customerID, err := uuid.Parse(claims.CustomerID)
	if err != nil {
		return uuid.Nil, ErrSessionInvalid
	}
	return customerID, nil
}

// Revoke deletes the session record behind a cookie token. Revoking an
// already-dead session is not an error.
func (s *Sessions) Revoke(ctx context.Context, token string) error {
	claims, err := s.parse(token)
	if err != nil {
		return nil // Nothing to revoke
	}
	return s.rdb.Del(ctx, sessionKeyPrefix+claims.SessionID).Err()
}

// parse validates the signature and expiry of a session token
func (s *Sessions) parse(token string) (*SessionClaims, error) {
	parsed, err := jwt.ParseWithClaims(token, &SessionClaims{}, func(t *jwt.Token) (any, error) {
		return s.secret, nil // Return the secret key for validation
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := parsed.Claims.(*SessionClaims); ok && parsed.Valid {
		return claims, nil
	}
	return nil, jwt.ErrSignatureInvalid
}
