// Package console is the client-side shell of the admin application: the
// process-wide session context, the access gate guarding protected views, the
// page permission table and the navigation menu filter.
package console

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/helios-energy/helios-admin/internal/shared"
)

// Storage keys for the persisted session. Both are cleared together; a token
// without a readable user record is treated as no session at all.
const (
	StorageKeyToken = "auth_token"
	StorageKeyUser  = "user"
)

// ErrNoSession is returned by Refresh when there is no token to refresh with.
var ErrNoSession = errors.New("console: no active session")

// State is the lifecycle of the session context.
type State int

const (
	StateUninitialized State = iota
	StateLoading
	StateAuthenticated
	StateAnonymous
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoading:
		return "loading"
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// CredentialStore persists the token and the cached principal between runs.
type CredentialStore interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Delete(key string) error
}

// PrincipalFetcher re-fetches the authenticated principal from the API.
type PrincipalFetcher func(ctx context.Context) (*shared.Principal, error)

// Session is the single process-wide session context. The principal is
// replaced wholesale on every login, refresh and logout; consumers read it by
// reference and never mutate it.
type Session struct {
	store  CredentialStore
	fetch  PrincipalFetcher
	logger *slog.Logger

	mu        sync.RWMutex
	state     State
	token     string
	principal *shared.Principal

	group singleflight.Group
}

// NewSession constructs an uninitialized session context.
func NewSession(store CredentialStore, fetch PrincipalFetcher, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{store: store, fetch: fetch, logger: logger, state: StateUninitialized}
}

// Init restores the persisted session, moving the context from uninitialized
// to authenticated or anonymous. Corrupt stored data is purged silently and
// treated as no session.
func (s *Session) Init() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateLoading

	token, haveToken := s.store.Get(StorageKeyToken)
	rawUser, haveUser := s.store.Get(StorageKeyUser)
	if !haveToken || token == "" || !haveUser {
		s.purgeLocked()
		return
	}

	var principal shared.Principal
	if err := json.Unmarshal([]byte(rawUser), &principal); err != nil || principal.ID == 0 {
		s.logger.Warn("stored session unreadable, clearing", slog.Any("error", err))
		s.purgeLocked()
		return
	}

	s.token = token
	s.principal = &principal
	s.state = StateAuthenticated
}

// Login installs a fresh session and persists it.
func (s *Session) Login(token string, principal *shared.Principal) error {
	raw, err := json.Marshal(principal)
	if err != nil {
		return fmt.Errorf("console: encode principal: %w", err)
	}
	if err := s.store.Set(StorageKeyToken, token); err != nil {
		return fmt.Errorf("console: persist token: %w", err)
	}
	if err := s.store.Set(StorageKeyUser, string(raw)); err != nil {
		return fmt.Errorf("console: persist principal: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.principal = principal
	s.state = StateAuthenticated
	return nil
}

// Logout clears the session and its persisted credentials.
func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.purgeLocked()
}

// Refresh re-fetches the principal and replaces it atomically. Concurrent
// callers share a single in-flight fetch. A failed refresh clears the whole
// session: a principal we cannot verify is no principal.
func (s *Session) Refresh(ctx context.Context) (*shared.Principal, error) {
	s.mu.RLock()
	token := s.token
	s.mu.RUnlock()
	if token == "" {
		return nil, ErrNoSession
	}

	v, err, _ := s.group.Do("refresh", func() (interface{}, error) {
		principal, err := s.fetch(ctx)
		if err != nil {
			return nil, err
		}
		if principal == nil {
			return nil, errors.New("console: refresh returned no principal")
		}

		raw, err := json.Marshal(principal)
		if err != nil {
			return nil, fmt.Errorf("console: encode principal: %w", err)
		}
		if err := s.store.Set(StorageKeyUser, string(raw)); err != nil {
			s.logger.Warn("persist refreshed principal", slog.Any("error", err))
		}

		s.mu.Lock()
		s.principal = principal
		s.state = StateAuthenticated
		s.mu.Unlock()
		return principal, nil
	})
	if err != nil {
		s.logger.Warn("principal refresh failed, clearing session", slog.Any("error", err))
		s.mu.Lock()
		s.purgeLocked()
		s.mu.Unlock()
		return nil, err
	}
	return v.(*shared.Principal), nil
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Token returns the current bearer token, empty when anonymous. Usable
// directly as an apiclient.TokenSource.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Principal returns the current principal, nil when not authenticated.
func (s *Session) Principal() *shared.Principal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.principal
}

// purgeLocked drops the in-memory session and deletes the stored keys.
// Callers hold s.mu.
func (s *Session) purgeLocked() {
	s.token = ""
	s.principal = nil
	s.state = StateAnonymous
	if err := s.store.Delete(StorageKeyToken); err != nil {
		s.logger.Warn("clear stored token", slog.Any("error", err))
	}
	if err := s.store.Delete(StorageKeyUser); err != nil {
		s.logger.Warn("clear stored principal", slog.Any("error", err))
	}
}
