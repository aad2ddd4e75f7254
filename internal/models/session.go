// internal/models/session.go
package models

import (
	"context"
	"strings"
	"time"
)

// Credential is the token issued by the service at login.
type Credential struct {
	Token     string    `json:"token"`
	Username  string    `json:"username,omitempty"`
	UserID    int       `json:"user_id,omitempty"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Valid reports whether the credential can be attached to a request.
func (c *Credential) Valid() bool {
	if c == nil || strings.TrimSpace(c.Token) == "" {
		return false
	}
	return !c.IsExpired()
}

// IsExpired is false for credentials without an expiry.
func (c *Credential) IsExpired() bool {
	return !c.ExpiresAt.IsZero() && time.Now().After(c.ExpiresAt)
}

// CredentialStore persists one credential per profile.
type CredentialStore interface {
	Load(ctx context.Context, profile string) (*Credential, error)
	Save(ctx context.Context, profile string, cred *Credential) error
	Delete(ctx context.Context, profile string) error
}
