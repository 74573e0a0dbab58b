// Package session holds the logged-in identity of a client process and
// persists it across runs.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/stemsi/srms/internal/client"
	"github.com/stemsi/srms/internal/model"
)

// StorageKey is the entry the session is persisted under.
const StorageKey = "auth-storage"

// Authenticator performs the login call and carries the bearer token used
// by later requests. *client.Client satisfies it.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*client.LoginResult, error)
	SetToken(token string)
}

type persistedState struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

type persisted struct {
	State   persistedState `json:"state"`
	Version int            `json:"version"`
}

// Store is the session of one client process.
type Store struct {
	api     Authenticator
	storage Storage
	log     zerolog.Logger

	mu    sync.RWMutex
	user  *model.User
	token string
}

func New(api Authenticator, storage Storage, log zerolog.Logger) *Store {
	return &Store{
		api:     api,
		storage: storage,
		log:     log.With().Str("component", "session").Logger(),
	}
}

// Load restores the persisted session. A missing or malformed entry leaves
// the store logged out; only storage failures are returned.
func (s *Store) Load() error {
	raw, ok, err := s.storage.Get(StorageKey)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if !ok {
		return nil
	}

	var p persisted
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		s.log.Warn().Err(err).Msg("Ignoring malformed stored session")
		return nil
	}

	s.mu.Lock()
	s.user = p.State.User
	s.token = p.State.Token
	s.mu.Unlock()

	if p.State.Token != "" {
		s.api.SetToken(p.State.Token)
	}
	return nil
}

// IsAuthenticated reports whether both a user and a token are held.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil && s.token != ""
}

// User returns a copy of the current user, or nil.
func (s *Store) User() *model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Login authenticates once, without retry. It reports whether the store is
// now holding the returned identity.
func (s *Store) Login(ctx context.Context, email, password string) bool {
	res, err := s.api.Login(ctx, email, password)
	if err != nil {
		s.log.Debug().Err(err).Str("email", email).Msg("Login failed")
		return false
	}
	if !res.Success || res.Data == nil {
		s.log.Debug().Str("message", res.Message).Msg("Login rejected")
		return false
	}

	user := res.Data.User
	s.mu.Lock()
	s.user = &user
	s.token = res.Data.Token
	s.mu.Unlock()

	s.api.SetToken(res.Data.Token)
	s.persist()
	return true
}

// Logout forgets the identity locally and removes the stored entry. The
// server-side session is ended separately by the API client.
func (s *Store) Logout() {
	s.mu.Lock()
	s.user = nil
	s.token = ""
	s.mu.Unlock()

	s.api.SetToken("")
	if err := s.storage.Remove(StorageKey); err != nil {
		s.log.Error().Err(err).Msg("Failed to remove stored session")
	}
}

func (s *Store) SetUser(user *model.User) {
	s.mu.Lock()
	if user == nil {
		s.user = nil
	} else {
		u := *user
		s.user = &u
	}
	s.mu.Unlock()
	s.persist()
}

func (s *Store) SetToken(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	s.api.SetToken(token)
	s.persist()
}

func (s *Store) persist() {
	s.mu.RLock()
	p := persisted{State: persistedState{User: s.user, Token: s.token}}
	s.mu.RUnlock()

	raw, err := json.Marshal(p)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to encode session")
		return
	}
	if err := s.storage.Set(StorageKey, string(raw)); err != nil {
		s.log.Error().Err(err).Msg("Failed to persist session")
	}
}
