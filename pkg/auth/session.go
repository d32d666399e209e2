package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionCookie is the name of the cookie carrying the session token
const SessionCookie = "user_session"

// Session lifetimes; rememberMe extends the session to a year
const (
	SessionTTL    = 24 * time.Hour
	RememberMeTTL = 365 * 24 * time.Hour
)

// ErrInvalidSession covers every verification failure: bad signature,
// malformed payload, or expired token
var ErrInvalidSession = errors.New("invalid or expired session")

// SessionManager signs and verifies session tokens. Tokens are HS256 JWTs
// carrying the user ID as subject plus issued-at and expiry claims.
type SessionManager struct {
	secret []byte
	now    func() time.Time
}

// NewSessionManager creates a session manager. An empty secret is a
// misconfiguration and fails here, at startup, rather than per request.
func NewSessionManager(secret string) (*SessionManager, error) {
	if secret == "" {
		return nil, errors.New("session secret must not be empty")
	}
	return &SessionManager{
		secret: []byte(secret),
		now:    time.Now,
	}, nil
}

// TTL returns the session lifetime for the given rememberMe choice
func (m *SessionManager) TTL(rememberMe bool) time.Duration {
	if rememberMe {
		return RememberMeTTL
	}
	return SessionTTL
}

// Issue signs a session token for a user and returns it with its expiry
func (m *SessionManager) Issue(userID string, rememberMe bool) (string, time.Time, error) {
	issuedAt := m.now()
	expiresAt := issuedAt.Add(m.TTL(rememberMe))

	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign session token: %w", err)
	}
	return token, expiresAt, nil
}

// Verify validates a session token and returns the user ID it carries
func (m *SessionManager) Verify(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			return m.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid || claims.Subject == "" {
		return "", ErrInvalidSession
	}
	return claims.Subject, nil
}
