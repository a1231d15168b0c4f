package repository

import (
	"context"
	"time"
)

// Ticket es el handoff de un solo uso entre /co/authenticate y /authorize.
type Ticket struct {
	ID         string     `json:"id"`
	TenantID   string     `json:"tenant_id"`
	ClientID   string     `json:"client_id"`
	Email      string     `json:"email"`
	AuthParams AuthParams `json:"auth_params"`
	CreatedAt  time.Time  `json:"created_at"`
	ExpiresAt  time.Time  `json:"expires_at"`
}

type TicketRepository interface {
	Create(ctx context.Context, t *Ticket) error
	Get(ctx context.Context, tenantID, id string) (*Ticket, error)
	// Remove es el consumo atómico: ErrNotFound si ya no existe.
	Remove(ctx context.Context, tenantID, id string) error
}

// Send de un OTP.
const (
	OTPSendCode = "code"
	OTPSendLink = "link"
)

// OTP es un código passwordless.
type OTP struct {
	ID         string
	TenantID   string
	ClientID   string
	Email      string
	Code       string
	Send       string // code | link
	AuthParams AuthParams
	IP         string
	CreatedAt  time.Time
	ExpiresAt  time.Time
}

type OTPRepository interface {
	Create(ctx context.Context, o *OTP) error
	// List devuelve los OTP de (tenant, email); el caller filtra expirados.
	List(ctx context.Context, tenantID, email string) ([]OTP, error)
	// Remove es el consumo atómico: ErrNotFound si ya no existe.
	Remove(ctx context.Context, tenantID, id string) error
}

// Tipos de Code.
const (
	CodeTypePasswordReset     = "password_reset"
	CodeTypeEmailVerification = "email_verification"
)

// Code es un token tipado atado a un usuario. ID es el valor que viaja en el link.
type Code struct {
	ID        string
	TenantID  string
	UserID    string
	Type      string
	CreatedAt time.Time
	ExpiresAt time.Time
}

type CodeRepository interface {
	Create(ctx context.Context, c *Code) error
	// List devuelve los codes de un usuario.
	List(ctx context.Context, tenantID, userID string) ([]Code, error)
	// Remove es el consumo atómico: ErrNotFound si ya no existe.
	Remove(ctx context.Context, tenantID, id string) error
}

// UniversalLoginSession es el estado del login hosteado (/u/*), keyed por state.
type UniversalLoginSession struct {
	ID          string     `json:"id"`
	TenantID    string     `json:"tenant_id"`
	ClientID    string     `json:"client_id"`
	AuthParams  AuthParams `json:"auth_params"`
	VendorID    string     `json:"vendor_id,omitempty"`
	Auth0Client string     `json:"auth0_client,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	ExpiresAt   time.Time  `json:"expires_at"`
}

type UniversalLoginSessionRepository interface {
	Create(ctx context.Context, s *UniversalLoginSession) error
	Get(ctx context.Context, tenantID, id string) (*UniversalLoginSession, error)
	Update(ctx context.Context, s *UniversalLoginSession) error
}
