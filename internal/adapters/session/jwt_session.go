// Package session tracks whether a network-authenticated session is usable.
// The client only needs the remote's opinion of the token at a glance, so
// the adapter reads the expiry claim without verifying the signature; the
// remote remains the authority and still rejects bad tokens with 401.
package session

import (
	"log"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type JWTSession struct {
	mu      sync.RWMutex
	token   string
	expiry  time.Time
	now     func() time.Time
	resumed chan struct{}
}

func NewJWTSession(now func() time.Time) *JWTSession {
	if now == nil {
		now = time.Now
	}
	return &JWTSession{
		now: now,
		// Buffered so SetToken never blocks when nobody is waiting.
		resumed: make(chan struct{}, 1),
	}
}

// SetToken installs a fresh token after sign-in or refresh and wakes any
// drain loop paused on authentication.
func (s *JWTSession) SetToken(token string) {
	expiry := tokenExpiry(token)

	s.mu.Lock()
	s.token = token
	s.expiry = expiry
	s.mu.Unlock()

	select {
	case s.resumed <- struct{}{}:
	default:
	}
}

// ClearToken forgets the session (sign-out).
func (s *JWTSession) ClearToken() {
	s.mu.Lock()
	s.token = ""
	s.expiry = time.Time{}
	s.mu.Unlock()
}

// Token returns the current bearer token, possibly empty.
func (s *JWTSession) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// IsAuthenticated reports whether a token is present and not yet expired.
func (s *JWTSession) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.token == "" {
		return false
	}
	if s.expiry.IsZero() {
		// No expiry claim; let the remote decide.
		return true
	}
	return s.now().Before(s.expiry)
}

// Resumed signals when a usable session was installed after a pause.
func (s *JWTSession) Resumed() <-chan struct{} {
	return s.resumed
}

// tokenExpiry extracts the exp claim without verifying the signature.
func tokenExpiry(token string) time.Time {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		log.Printf("[Session] Failed to parse token: %v", err)
		return time.Time{}
	}

	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
