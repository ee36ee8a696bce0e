package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidToken indicates the presented session token is unknown or expired.
var ErrInvalidToken = errors.New("invalid session token")

// Service allocates and validates anonymous session tokens. Carts for
// not-yet-authenticated visitors are keyed by these tokens.
type Service struct {
	mu      sync.RWMutex
	tokens  map[string]time.Time
	ttl     time.Duration
	now     func() time.Time
}

func New() *Service {
	return &Service{
		tokens: make(map[string]time.Time),
		ttl:    30 * 24 * time.Hour,
		now:    time.Now,
	}
}

// Issue allocates a fresh session token.
func (s *Service) Issue() string {
	token := uuid.NewString()
	s.mu.Lock()
	s.tokens[token] = s.now().Add(s.ttl)
	s.mu.Unlock()
	return token
}

// Validate reports whether token is live, pruning it when expired.
func (s *Service) Validate(token string) bool {
	s.mu.RLock()
	expiresAt, ok := s.tokens[token]
	s.mu.RUnlock()
	if !ok {
		return false
	}
	if s.now().After(expiresAt) {
		s.mu.Lock()
		delete(s.tokens, token)
		s.mu.Unlock()
		return false
	}
	return true
}
