// Package session holds the current user, bearer token and active section,
// persisted to durable client storage between runs.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/evcraddock/nearby/internal/localstore"
	"github.com/evcraddock/nearby/internal/page"
	"github.com/evcraddock/nearby/internal/user"
)

// Storage keys. Both are present or both are absent.
const (
	TokenKey = "token"
	UserKey  = "user"
)

// ErrNoSession is returned when an operation needs a logged-in user.
var ErrNoSession = errors.New("not logged in")

// Session is a point-in-time copy of the session state.
type Session struct {
	User           *user.User   `json:"user,omitempty"`
	Token          string       `json:"-"`
	CurrentSection page.Section `json:"current_section"`
}

// Authenticated reports whether a user is logged in.
func (s Session) Authenticated() bool {
	return s.User != nil && s.Token != ""
}

// Store is the process-wide session. It is safe for concurrent use.
type Store struct {
	mu        sync.RWMutex
	storage   localstore.Store
	user      *user.User
	token     string
	section   page.Section
	observers []func(*user.User)
}

// New creates an empty session backed by storage.
func New(storage localstore.Store) *Store {
	return &Store{storage: storage, section: page.Home}
}

// OnChange registers fn to run after login and logout with the new user
// (nil after logout).
func (s *Store) OnChange(fn func(*user.User)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// Load populates the session from storage. Missing or corrupt entries leave
// the session empty; only storage failures are returned.
func (s *Store) Load() error {
	token, hasToken, err := s.storage.GetItem(TokenKey)
	if err != nil {
		return fmt.Errorf("loading session: %w", err)
	}
	raw, hasUser, err := s.storage.GetItem(UserKey)
	if err != nil {
		return fmt.Errorf("loading session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.user, s.token = nil, ""

	if !hasToken || !hasUser || token == "" {
		return nil
	}

	var u user.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		slog.Warn("ignoring corrupt stored user", "error", err)
		return nil
	}

	s.user = &u
	s.token = token
	return nil
}

// Save writes the token and user when both are present.
func (s *Store) Save() error {
	s.mu.RLock()
	token, u := s.token, s.user
	s.mu.RUnlock()

	if token == "" || u == nil {
		return nil
	}

	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("marshaling user: %w", err)
	}
	if err := s.storage.SetItem(TokenKey, token); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	if err := s.storage.SetItem(UserKey, string(data)); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

// Clear removes both entries from storage.
func (s *Store) Clear() error {
	if err := s.storage.RemoveItem(TokenKey); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	if err := s.storage.RemoveItem(UserKey); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}

// Login replaces the session with token and u, persists it and notifies observers.
func (s *Store) Login(token string, u *user.User) error {
	if token == "" || u == nil {
		return fmt.Errorf("login response missing token or user")
	}

	cp := *u
	s.mu.Lock()
	s.token = token
	s.user = &cp
	s.mu.Unlock()

	if err := s.Save(); err != nil {
		return err
	}
	s.notify(&cp)
	return nil
}

// Logout empties the session, clears storage and notifies observers.
func (s *Store) Logout() error {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.section = page.Home
	s.mu.Unlock()

	err := s.Clear()
	s.notify(nil)
	return err
}

func (s *Store) notify(u *user.User) {
	s.mu.RLock()
	observers := append([]func(*user.User){}, s.observers...)
	s.mu.RUnlock()

	for _, fn := range observers {
		if u == nil {
			fn(nil)
			continue
		}
		cp := *u
		fn(&cp)
	}
}

// Token returns the bearer token, empty for guests.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns a copy of the current user, nil for guests.
func (s *Store) User() *user.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	cp := *s.user
	return &cp
}

// Authenticated reports whether a user is logged in.
func (s *Store) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil && s.token != ""
}

// SetSection records the active section.
func (s *Store) SetSection(sec page.Section) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.section = sec
}

// Snapshot returns a copy of the session state.
func (s *Store) Snapshot() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Session{Token: s.token, CurrentSection: s.section}
	if s.user != nil {
		cp := *s.user
		snap.User = &cp
	}
	return snap
}
