package repository

import (
	"context"
	"time"
)

// Session es la sesión de browser referenciada por la cookie {tenant}-auth-token.
type Session struct {
	ID        string
	TenantID  string
	ClientID  string
	UserID    string
	CreatedAt time.Time
	ExpiresAt time.Time
	UsedAt    *time.Time
	DeletedAt *time.Time
}

// Active: no borrada y no expirada en now.
func (s *Session) Active(now time.Time) bool {
	return s != nil && s.DeletedAt == nil && now.Before(s.ExpiresAt)
}

type SessionRepository interface {
	Create(ctx context.Context, s *Session) error
	Get(ctx context.Context, tenantID, id string) (*Session, error)
	// Touch actualiza used_at.
	Touch(ctx context.Context, tenantID, id string, at time.Time) error
	// Remove hace soft delete (deleted_at).
	Remove(ctx context.Context, tenantID, id string) error
}
