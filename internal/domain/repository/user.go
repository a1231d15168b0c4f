package repository

import (
	"context"
	"time"
)

// Providers internos.
const (
	ProviderPassword = "auth2"
	ProviderEmail    = "email"

	// Realm → provider en /co/authenticate y login_ticket.
	RealmPassword = "Username-Password-Authentication"
	RealmEmail    = "email"
)

// User es una identidad. Varias identidades pueden compartir email; las
// secundarias apuntan a la primaria via LinkedTo (profundidad 1).
type User struct {
	ID            string         `json:"user_id"`
	TenantID      string         `json:"-"`
	Email         string         `json:"email"`
	EmailVerified bool           `json:"email_verified"`
	Provider      string         `json:"provider"`
	Connection    string         `json:"connection"`
	IsSocial      bool           `json:"is_social"`
	Name          string         `json:"name,omitempty"`
	GivenName     string         `json:"given_name,omitempty"`
	FamilyName    string         `json:"family_name,omitempty"`
	Nickname      string         `json:"nickname,omitempty"`
	Picture       string         `json:"picture,omitempty"`
	Locale        string         `json:"locale,omitempty"`
	ProfileData   map[string]any `json:"profile_data,omitempty"`
	LoginCount    int            `json:"login_count"`
	LastLogin     *time.Time     `json:"last_login,omitempty"`
	LastIP        string         `json:"last_ip,omitempty"`
	LinkedTo      string         `json:"linked_to,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// IsUnverifiedPassword: cuentas auth2 sin verificar nunca son primarias.
func (u *User) IsUnverifiedPassword() bool {
	return u.Provider == ProviderPassword && !u.EmailVerified
}

// UserUpdate: nil = no tocar.
type UserUpdate struct {
	Email         *string
	EmailVerified *bool
	LinkedTo      *string
	Name          *string
	Picture       *string
	ProfileData   map[string]any
	LoginCount    *int
	LastLogin     *time.Time
	LastIP        *string
}

// ListUsersFilter filtra por igualdad; campos vacíos no filtran.
type ListUsersFilter struct {
	Email    string
	Provider string
	LinkedTo string
	Limit    int
}

// UserRepository es el adapter de usuarios.
type UserRepository interface {
	// Create retorna ErrConflict si el id ya existe en el tenant.
	Create(ctx context.Context, u *User) error
	Get(ctx context.Context, tenantID, id string) (*User, error)
	// GetByEmail devuelve todas las identidades con ese email (cualquier provider).
	GetByEmail(ctx context.Context, tenantID, email string) ([]User, error)
	List(ctx context.Context, tenantID string, f ListUsersFilter) ([]User, error)
	Update(ctx context.Context, tenantID, id string, upd UserUpdate) error
	// Unlink limpia linked_to.
	Unlink(ctx context.Context, tenantID, id string) error
}

// Password guarda el hash bcrypt de una identidad auth2.
type Password struct {
	TenantID  string
	UserID    string
	Hash      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type PasswordRepository interface {
	Create(ctx context.Context, p Password) error
	Get(ctx context.Context, tenantID, userID string) (*Password, error)
	Update(ctx context.Context, p Password) error
}
