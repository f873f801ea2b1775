package backend

import (
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session holds the bearer token for the lifetime of the console process.
// The backend issues JWTs; the expiry claim is read without verification
// (the backend verifies, we only need to know when to log in again).
type Session struct {
	mu     sync.RWMutex
	token  string
	expiry time.Time
}

func NewSession() *Session {
	return &Session{}
}

// SetToken stores a bearer token and records its expiry when the token is a
// parseable JWT. Opaque tokens are kept with no expiry.
func (s *Session) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token
	s.expiry = time.Time{}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err == nil {
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			s.expiry = exp.Time
		}
	}
}

// Token returns the current bearer token, empty when no session exists.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Valid reports whether the session can still authenticate requests. A
// 30-second margin avoids sending a token that expires in flight.
func (s *Session) Valid() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.token == "" {
		return false
	}
	if s.expiry.IsZero() {
		return true
	}
	return time.Now().Add(30 * time.Second).Before(s.expiry)
}

// Clear drops the session token.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.expiry = time.Time{}
}
