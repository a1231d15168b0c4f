package repository

import (
	"context"
	"strings"
	"time"
)

// Políticas de validación de email por aplicación.
const (
	EmailValidationEnabled  = "enabled"
	EmailValidationDisabled = "disabled"
	EmailValidationEnforced = "enforced"
)

// Tenant es la frontera de aislamiento.
type Tenant struct {
	ID           string
	Name         string
	Audience     string // audience por defecto de los access tokens
	Language     string // "en", "es"
	SenderEmail  string
	SenderName   string
	LogoURL      string
	PrimaryColor string
	SupportURL   string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Application es una aplicación OAuth registrada en un tenant.
type Application struct {
	ID                string // client_id público
	TenantID          string
	Name              string
	ClientSecret      string
	Callbacks         []string
	AllowedLogoutURLs []string
	WebOrigins        []string
	EmailValidation   string // enabled | disabled | enforced
	DisableSignUps    bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Connection es un IdP federado. Strategy "apple" usa Options.TeamID/KeyID/PrivateKey
// en vez de ClientSecret.
type Connection struct {
	ID        string
	TenantID  string
	Name      string
	Strategy  string // oauth2 | oidc | google-oauth2 | apple | facebook ...
	Options   ConnectionOptions
	CreatedAt time.Time
	UpdatedAt time.Time
}

type ConnectionOptions struct {
	ClientID              string `json:"client_id,omitempty"`
	ClientSecret          string `json:"client_secret,omitempty"`
	AuthorizationEndpoint string `json:"authorization_endpoint,omitempty"`
	TokenEndpoint         string `json:"token_endpoint,omitempty"`
	UserinfoEndpoint      string `json:"userinfo_endpoint,omitempty"`
	Scope                 string `json:"scope,omitempty"`
	ResponseType          string `json:"response_type,omitempty"`
	ResponseMode          string `json:"response_mode,omitempty"`
	TeamID                string `json:"team_id,omitempty"`
	KeyID                 string `json:"kid,omitempty"`
	PrivateKey            string `json:"app_secret,omitempty"`
}

// Client es el agregado read-mostly que resuelve un client_id: la aplicación,
// su tenant y las conexiones habilitadas.
type Client struct {
	Application
	Tenant      Tenant
	Connections []Connection
}

// Connection busca una conexión por nombre (case-insensitive).
func (c *Client) Connection(name string) (*Connection, bool) {
	for i := range c.Connections {
		if strings.EqualFold(c.Connections[i].Name, name) {
			return &c.Connections[i], true
		}
	}
	return nil, false
}

// LogoutURLs devuelve allowed_logouts o, si está vacío, los callbacks.
func (c *Client) LogoutURLs() []string {
	if len(c.AllowedLogoutURLs) > 0 {
		return c.AllowedLogoutURLs
	}
	return c.Callbacks
}

// ClientRepository resuelve el agregado de un client_id.
type ClientRepository interface {
	Get(ctx context.Context, clientID string) (*Client, error)
}

// TenantAdmin es la escritura mínima usada por el seeder del CLI; la API de
// administración completa vive fuera de este servicio.
type TenantAdmin interface {
	UpsertTenant(ctx context.Context, t Tenant) error
	UpsertApplication(ctx context.Context, a Application) error
	UpsertConnection(ctx context.Context, c Connection) error
}

// SplitURLs parsea una lista de URLs separadas por comas.
func SplitURLs(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// JoinURLs es la inversa de SplitURLs.
func JoinURLs(urls []string) string { return strings.Join(urls, ",") }
