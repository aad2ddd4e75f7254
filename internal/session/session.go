// Package session owns the credential used for authenticated calls.
package session

import (
	"context"
	"fmt"
	"sync"

	"agriwise-client/internal/common/logger"
	"agriwise-client/internal/models"
)

// Session is shared by every component of one client. Reads are concurrent;
// writes happen only on login and logout.
type Session struct {
	mu      sync.RWMutex
	cred    *models.Credential
	store   models.CredentialStore
	profile string
	logger  logger.Logger
}

// New creates an empty session. store may be nil for a purely in-memory session.
func New(store models.CredentialStore, profile string, log logger.Logger) *Session {
	if profile == "" {
		profile = "default"
	}
	return &Session{
		store:   store,
		profile: profile,
		logger:  log.WithFields(map[string]interface{}{"component": "session", "profile": profile}),
	}
}

// Restore loads a persisted credential. A missing or expired one leaves the
// session logged out without error.
func (s *Session) Restore(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	cred, err := s.store.Load(ctx, s.profile)
	if err != nil {
		return fmt.Errorf("restore session: %w", err)
	}
	if !cred.Valid() {
		if cred != nil {
			s.logger.Info("stored credential expired", nil)
		}
		return nil
	}

	s.mu.Lock()
	s.cred = cred
	s.mu.Unlock()

	s.logger.Debug("session restored", map[string]interface{}{"username": cred.Username})
	return nil
}

// Login installs cred and persists it.
func (s *Session) Login(ctx context.Context, cred *models.Credential) error {
	if !cred.Valid() {
		return fmt.Errorf("login: credential has no usable token")
	}
	c := *cred

	s.mu.Lock()
	s.cred = &c
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.Save(ctx, s.profile, &c); err != nil {
			return fmt.Errorf("persist session: %w", err)
		}
	}
	s.logger.Info("logged in", map[string]interface{}{"username": c.Username})
	return nil
}

// Logout clears the credential in memory and in the store.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.cred = nil
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.Delete(ctx, s.profile); err != nil {
			return fmt.Errorf("clear session: %w", err)
		}
	}
	s.logger.Info("logged out", nil)
	return nil
}

// Credential returns a copy of the current credential, or false when there is
// none or it has expired.
func (s *Session) Credential() (*models.Credential, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.cred.Valid() {
		return nil, false
	}
	c := *s.cred
	return &c, true
}

func (s *Session) Username() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cred == nil {
		return ""
	}
	return s.cred.Username
}

func (s *Session) Profile() string {
	return s.profile
}
