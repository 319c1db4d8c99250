package session

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ErrExpired reports that the session could not be refreshed and has been
// cleared. Callers should send the user back to the login view.
var ErrExpired = errors.New("session expired")

var refreshTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "portal_token_refresh_total",
	Help: "Token refresh attempts by outcome.",
}, []string{"outcome"})

// RefreshFunc exchanges a refresh token for a new access token against the
// remote token-refresh endpoint.
type RefreshFunc func(ctx context.Context, refreshToken string) (string, error)

// Store is the single source of truth for who is logged in. It hydrates from
// durable storage on construction and is mutated only by Login, Logout and
// Refresh.
type Store struct {
	mu      sync.Mutex
	state   State
	backend Backend
	refresh RefreshFunc
}

// NewStore hydrates the store from the backend. A stored access token counts
// as authenticated without verification; staleness is discovered on the first
// API call that returns 401.
func NewStore(ctx context.Context, backend Backend, refresh RefreshFunc) (*Store, error) {
	state, err := backend.Load(ctx)
	if err != nil {
		return nil, err
	}
	return &Store{state: state, backend: backend, refresh: refresh}, nil
}

// Current returns a point-in-time snapshot of the session.
func (s *Store) Current() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.session()
}

// Login adopts the token pair, role and profile exactly as the login endpoint
// returned them, and persists everything wholesale.
func (s *Store) Login(ctx context.Context, access, refresh string, role Role, profile Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = State{
		AccessToken:  access,
		RefreshToken: refresh,
		UserType:     string(role),
		Profile:      profile,
	}
	return s.backend.Save(ctx, s.state)
}

// Logout clears durable storage and in-memory state. Idempotent; a failed
// backend delete is logged but never surfaced, the in-memory session is gone
// either way.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logoutLocked(ctx)
}

func (s *Store) logoutLocked(ctx context.Context) {
	s.state = State{}
	if err := s.backend.Clear(ctx); err != nil {
		log.Printf("session: clearing durable state: %v", err)
	}
}

// Refresh exchanges the stored refresh token for a new access token and
// adopts it, keeping the refresh token and role unchanged. Any failure clears
// the session and returns ErrExpired.
//
// staleAccess is the access token the caller was using when it hit 401. If
// another caller already refreshed in the meantime, the current token is
// returned without a second round trip.
func (s *Store) Refresh(ctx context.Context, staleAccess string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.AccessToken == "" || s.state.RefreshToken == "" {
		return "", ErrExpired
	}
	if s.state.AccessToken != staleAccess {
		return s.state.AccessToken, nil
	}

	access, err := s.refresh(ctx, s.state.RefreshToken)
	if err != nil {
		refreshTotal.WithLabelValues("failure").Inc()
		log.Printf("session: refresh failed, logging out: %v", err)
		s.logoutLocked(ctx)
		return "", ErrExpired
	}
	refreshTotal.WithLabelValues("success").Inc()

	s.state.AccessToken = access
	if err := s.backend.Save(ctx, s.state); err != nil {
		log.Printf("session: persisting refreshed token: %v", err)
	}
	return access, nil
}
