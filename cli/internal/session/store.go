// Package session holds the operator's authentication token for the
// lifetime of the process and persists it between invocations.
package session

import (
	"context"
	"fmt"
	"sync"
)

// View is a screen the operator can be sent to.
type View int

const (
	// ViewLogin is the unauthenticated entry view.
	ViewLogin View = iota
	// ViewDashboard is the protected admin dashboard.
	ViewDashboard
)

func (v View) String() string {
	switch v {
	case ViewLogin:
		return "login"
	case ViewDashboard:
		return "dashboard"
	default:
		return fmt.Sprintf("view(%d)", int(v))
	}
}

// Navigator moves the operator to another view. It is implemented by the
// presentation layer.
type Navigator interface {
	Navigate(view View)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(View)

func (f NavigatorFunc) Navigate(view View) { f(view) }

// Backend persists the token between processes. Load returns "" when
// nothing is stored.
type Backend interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Delete(ctx context.Context) error
}

// Store is the single session of the process. Reads may happen from
// concurrent requests, so access is guarded.
type Store struct {
	mu      sync.RWMutex
	token   string
	backend Backend
	nav     Navigator
}

// Open loads the persisted token from backend. nav may be nil when nothing
// needs to react to navigation.
func Open(ctx context.Context, backend Backend, nav Navigator) (*Store, error) {
	if backend == nil {
		backend = NewMemoryBackend()
	}
	token, err := backend.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return &Store{token: token, backend: backend, nav: nav}, nil
}

// SetToken replaces the current token and persists it.
func (s *Store) SetToken(ctx context.Context, token string) error {
	if err := s.backend.Save(ctx, token); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return nil
}

// Token returns the current token, and false when there is none.
func (s *Store) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != ""
}

// Clear forgets the token and sends the operator to the login view. The
// in-memory token is dropped even if the backend cannot be updated.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()

	err := s.backend.Delete(ctx)
	s.navigate(ViewLogin)
	if err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// RequireAuth reports whether a token is present. Without one the operator
// is sent to the login view.
func (s *Store) RequireAuth() bool {
	if _, ok := s.Token(); ok {
		return true
	}
	s.navigate(ViewLogin)
	return false
}

// Navigate forwards to the configured Navigator.
func (s *Store) Navigate(view View) {
	s.navigate(view)
}

func (s *Store) navigate(view View) {
	if s.nav != nil {
		s.nav.Navigate(view)
	}
}
