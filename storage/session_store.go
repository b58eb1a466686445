package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jrsteele09/resume-matcher-client/authapi"
)

// DefaultPrefix namespaces the session keys from other data on the same backend.
const DefaultPrefix = "smart_resume_"

// Keys are the three backend keys holding a session.
type Keys struct {
	Access  string
	Refresh string
	User    string
}

// KeysWithPrefix builds the session keys under prefix.
func KeysWithPrefix(prefix string) Keys {
	return Keys{
		Access:  prefix + "access_token",
		Refresh: prefix + "refresh_token",
		User:    prefix + "user_data",
	}
}

// All returns the keys as a slice.
func (k Keys) All() []string {
	return []string{k.Access, k.Refresh, k.User}
}

// SessionStore keeps the token pair and the cached user in a Backend.
type SessionStore struct {
	backend Backend
	keys    Keys
}

// NewSessionStore stores the session under prefix (DefaultPrefix when empty).
func NewSessionStore(backend Backend, prefix string) *SessionStore {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &SessionStore{backend: backend, keys: KeysWithPrefix(prefix)}
}

// NewMemorySessionStore is a SessionStore over a fresh MemoryBackend.
func NewMemorySessionStore() *SessionStore {
	return NewSessionStore(NewMemoryBackend(), DefaultPrefix)
}

// Keys returns the backend keys in use.
func (s *SessionStore) Keys() Keys {
	return s.keys
}

// Tokens returns the stored pair. Missing tokens are empty strings.
func (s *SessionStore) Tokens(ctx context.Context) (authapi.TokenPair, error) {
	access, _, err := s.backend.Get(ctx, s.keys.Access)
	if err != nil {
		return authapi.TokenPair{}, fmt.Errorf("[SessionStore Tokens] access: %w", err)
	}
	refresh, _, err := s.backend.Get(ctx, s.keys.Refresh)
	if err != nil {
		return authapi.TokenPair{}, fmt.Errorf("[SessionStore Tokens] refresh: %w", err)
	}
	return authapi.TokenPair{Access: access, Refresh: refresh}, nil
}

// SetTokens writes the pair. An empty Refresh leaves the stored one untouched.
func (s *SessionStore) SetTokens(ctx context.Context, pair authapi.TokenPair) error {
	if err := s.backend.Set(ctx, s.keys.Access, pair.Access); err != nil {
		return fmt.Errorf("[SessionStore SetTokens] access: %w", err)
	}
	if pair.Refresh == "" {
		return nil
	}
	if err := s.backend.Set(ctx, s.keys.Refresh, pair.Refresh); err != nil {
		return fmt.Errorf("[SessionStore SetTokens] refresh: %w", err)
	}
	return nil
}

// User returns the cached user, or nil when none is stored.
func (s *SessionStore) User(ctx context.Context) (authapi.User, error) {
	raw, ok, err := s.backend.Get(ctx, s.keys.User)
	if err != nil {
		return nil, fmt.Errorf("[SessionStore User] %w", err)
	}
	if !ok || raw == "" || raw == "null" {
		return nil, nil
	}
	var user authapi.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, fmt.Errorf("[SessionStore User] decode: %w", err)
	}
	return user, nil
}

// SetUser serializes user into the backend.
func (s *SessionStore) SetUser(ctx context.Context, user authapi.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("[SessionStore SetUser] encode: %w", err)
	}
	if err := s.backend.Set(ctx, s.keys.User, string(raw)); err != nil {
		return fmt.Errorf("[SessionStore SetUser] %w", err)
	}
	return nil
}

// Clear removes tokens and user.
func (s *SessionStore) Clear(ctx context.Context) error {
	if err := s.backend.Delete(ctx, s.keys.All()...); err != nil {
		return fmt.Errorf("[SessionStore Clear] %w", err)
	}
	return nil
}
