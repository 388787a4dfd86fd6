package memstore

import (
	"context"
	"sync"
	"time"
)

type oauthState struct {
	returnURL string
	expiresAt time.Time
}

// OAuthStates holds one-time OAuth2 state tokens.
type OAuthStates struct {
	mu     sync.Mutex
	states map[string]oauthState
	now    func() time.Time
}

func NewOAuthStates() *OAuthStates {
	return &OAuthStates{states: map[string]oauthState{}, now: time.Now}
}

func (s *OAuthStates) Save(_ context.Context, state, returnURL string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[state] = oauthState{returnURL: returnURL, expiresAt: expiresAt}
	return nil
}

// Validate consumes state. valid is false for unknown or expired tokens.
func (s *OAuthStates) Validate(_ context.Context, state string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[state]
	if !ok {
		return "", false, nil
	}
	delete(s.states, state)
	if !st.expiresAt.After(s.now()) {
		return "", false, nil
	}
	return st.returnURL, true, nil
}

func (s *OAuthStates) CleanupExpired(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	var n int64
	for k, st := range s.states {
		if !st.expiresAt.After(now) {
			delete(s.states, k)
			n++
		}
	}
	return n, nil
}
