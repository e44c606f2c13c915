// Package session owns the authentication state machine. A session is
// derived state: it holds the verified user and the current lifecycle
// phase, while the credential itself lives in the credential store.
//
// "Token accepted by login" and "identity verified" are deliberately
// separate: a login response may omit full user data, so the verify
// round-trip against /auth/me is the single source of truth for what
// authenticated means, both at startup and after login.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/claimhub/claimctl/internal/api"
	"github.com/claimhub/claimctl/internal/credstore"
	"github.com/claimhub/claimctl/internal/model"
)

// State is the authentication lifecycle phase
type State string

const (
	// StateUnauthenticated means no credential is stored
	StateUnauthenticated State = "unauthenticated"
	// StateVerifying means a credential exists and the identity check
	// is in flight
	StateVerifying State = "verifying"
	// StateAuthenticated means the verify round-trip confirmed the user
	StateAuthenticated State = "authenticated"
	// StateFailed means an explicit login attempt was rejected before
	// verification started
	StateFailed State = "failed"
)

// Session is a snapshot of the derived authentication state
type Session struct {
	State     State
	User      *model.User
	LastError string
}

// Manager drives the session state machine over the dispatcher and the
// credential store
type Manager struct {
	client *api.Client
	creds  credstore.Store

	mu        sync.Mutex
	state     State
	user      *model.User
	lastError string
	subs      []func(Session)
}

// NewManager creates a session manager and registers it as the
// dispatcher's invalidation hook, so a 401 observed anywhere tears the
// session down.
func NewManager(client *api.Client, creds credstore.Store) *Manager {
	m := &Manager{
		client: client,
		creds:  creds,
		state:  StateUnauthenticated,
	}
	client.OnSessionInvalidated(m.handleInvalidated)
	return m
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string      `json:"accessToken"`
	User        *model.User `json:"user,omitempty"`
}

type meResponse struct {
	User *model.User `json:"user"`
}

// Login authenticates against the backend. On success the returned
// credential is stored and the verify round-trip runs immediately; true
// is returned only once the session is Authenticated. The login response
// is never trusted for identity on its own.
func (m *Manager) Login(ctx context.Context, username, password string) (bool, error) {
	// Re-entering login clears a previous failure
	m.transition(func(s *sessionState) {
		s.lastError = ""
		if s.state == StateFailed {
			s.state = StateUnauthenticated
		}
	})

	var resp loginResponse
	err := m.client.DoJSON(ctx, http.MethodPost, "/auth/login",
		loginRequest{Username: username, Password: password}, &resp)
	if err != nil {
		msg := loginFailureMessage(err)
		m.transition(func(s *sessionState) {
			s.state = StateFailed
			s.user = nil
			s.lastError = msg
		})
		return false, err
	}

	if resp.AccessToken == "" {
		err := &api.AuthError{Message: "authentication failed"}
		m.transition(func(s *sessionState) {
			s.state = StateFailed
			s.user = nil
			s.lastError = err.Error()
		})
		return false, err
	}

	if err := m.creds.Set(resp.AccessToken); err != nil {
		return false, fmt.Errorf("store credential: %w", err)
	}

	return m.verify(ctx)
}

// Restore resumes a previous session at startup: a stored credential
// enters Verifying and runs the identity check; no credential leaves the
// session Unauthenticated.
func (m *Manager) Restore(ctx context.Context) (bool, error) {
	if _, ok := m.creds.Get(); !ok {
		m.transition(func(s *sessionState) {
			s.state = StateUnauthenticated
			s.user = nil
		})
		return false, nil
	}
	return m.verify(ctx)
}

// verify dispatches the authoritative identity check. Any failure,
// including Unauthorized, erases the credential and lands in
// Unauthenticated.
func (m *Manager) verify(ctx context.Context) (bool, error) {
	m.transition(func(s *sessionState) {
		s.state = StateVerifying
		s.user = nil
	})

	var resp meResponse
	if err := m.client.DoJSON(ctx, http.MethodGet, "/auth/me", nil, &resp); err != nil {
		// The dispatcher already erased the credential on 401; do the
		// same for every other failure so state and store agree.
		_ = m.creds.Clear()
		m.transition(func(s *sessionState) {
			s.state = StateUnauthenticated
			s.user = nil
		})
		return false, err
	}

	if resp.User == nil {
		_ = m.creds.Clear()
		m.transition(func(s *sessionState) {
			s.state = StateUnauthenticated
			s.user = nil
		})
		return false, &api.ServerError{Message: "identity response missing user"}
	}

	user := resp.User
	m.transition(func(s *sessionState) {
		s.state = StateAuthenticated
		s.user = user
		s.lastError = ""
	})
	return true, nil
}

// Logout erases the credential and clears the user. It is unconditional
// and idempotent: regardless of prior state the session ends
// Unauthenticated.
func (m *Manager) Logout() {
	_ = m.creds.Clear()
	m.transition(func(s *sessionState) {
		s.state = StateUnauthenticated
		s.user = nil
		s.lastError = ""
	})
}

// Register creates a new account. Input is validated client-side before
// any request is sent; registration does not log the user in.
func (m *Manager) Register(ctx context.Context, username, email, password string) error {
	if username == "" || email == "" || password == "" {
		return &api.ValidationError{Message: "all fields are required"}
	}
	if len(password) < 6 {
		return &api.ValidationError{Field: "password", Message: "must be at least 6 characters"}
	}

	return m.client.DoJSON(ctx, http.MethodPost, "/auth/register", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	}, nil)
}

// CurrentUser returns the verified user, or nil outside Authenticated
func (m *Manager) CurrentUser() *model.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.user
}

// IsAuthenticated reports whether the session is Authenticated
func (m *Manager) IsAuthenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == StateAuthenticated
}

// Current returns a snapshot of the session
func (m *Manager) Current() Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Session{State: m.state, User: m.user, LastError: m.lastError}
}

// Subscribe registers a read-only observer of state changes. Observers
// are called synchronously after each transition, outside the manager's
// lock.
func (m *Manager) Subscribe(fn func(Session)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs = append(m.subs, fn)
}

// TokenExpiry reports when the stored credential expires, when it carries
// a readable expiry claim. Informational only; the verify round-trip
// stays authoritative.
func (m *Manager) TokenExpiry() (string, bool) {
	token, ok := m.creds.Get()
	if !ok {
		return "", false
	}
	exp, ok := tokenExpiry(token)
	if !ok {
		return "", false
	}
	return exp.Format("2006-01-02 15:04:05 MST"), true
}

// handleInvalidated is the dispatcher's session-invalidated signal: the
// credential is already erased, only derived state remains to tear down.
func (m *Manager) handleInvalidated() {
	m.transition(func(s *sessionState) {
		s.state = StateUnauthenticated
		s.user = nil
		s.lastError = "session expired, log in again"
	})
}

type sessionState struct {
	state     State
	user      *model.User
	lastError string
}

// transition applies a mutation under the lock, then notifies observers
// without holding it. Network calls never happen inside transition, so
// the dispatcher's invalidation hook cannot deadlock against it.
func (m *Manager) transition(mutate func(*sessionState)) {
	m.mu.Lock()
	s := sessionState{state: m.state, user: m.user, lastError: m.lastError}
	mutate(&s)
	m.state, m.user, m.lastError = s.state, s.user, s.lastError
	snapshot := Session{State: s.state, User: s.user, LastError: s.lastError}
	subs := make([]func(Session), len(m.subs))
	copy(subs, m.subs)
	m.mu.Unlock()

	for _, fn := range subs {
		fn(snapshot)
	}
}

func loginFailureMessage(err error) string {
	var authErr *api.AuthError
	if errors.As(err, &authErr) && authErr.Message != "" {
		return authErr.Message
	}
	if api.IsTimeout(err) {
		return "login timed out, try again"
	}
	return "login failed, please check credentials"
}
