// Package bootstrap carga un archivo de seed (tenants, aplicaciones,
// conexiones y usuarios de password) en el store. Es idempotente: tenants,
// aplicaciones y conexiones se upsertean; los usuarios que ya existen por
// email se saltean.
package bootstrap

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/dropDatabas3/authhero/internal/domain/repository"
	"github.com/dropDatabas3/authhero/internal/observability/logger"
	"github.com/dropDatabas3/authhero/internal/security/password"
)

// File es el formato YAML del seed.
type File struct {
	Tenants []Tenant `yaml:"tenants"`
}

type Tenant struct {
	ID           string        `yaml:"id"`
	Name         string        `yaml:"name"`
	Audience     string        `yaml:"audience"`
	Language     string        `yaml:"language"`
	SenderEmail  string        `yaml:"sender_email"`
	SenderName   string        `yaml:"sender_name"`
	LogoURL      string        `yaml:"logo_url"`
	PrimaryColor string        `yaml:"primary_color"`
	SupportURL   string        `yaml:"support_url"`
	Applications []Application `yaml:"applications"`
	Connections  []Connection  `yaml:"connections"`
	Users        []User        `yaml:"users"`
}

type Application struct {
	ClientID          string   `yaml:"client_id"`
	Name              string   `yaml:"name"`
	ClientSecret      string   `yaml:"client_secret"`
	Callbacks         []string `yaml:"callbacks"`
	AllowedLogoutURLs []string `yaml:"allowed_logout_urls"`
	WebOrigins        []string `yaml:"web_origins"`
	EmailValidation   string   `yaml:"email_validation"`
	DisableSignUps    bool     `yaml:"disable_sign_ups"`
}

type Connection struct {
	Name     string            `yaml:"name"`
	Strategy string            `yaml:"strategy"`
	Options  ConnectionOptions `yaml:"options"`
}

type ConnectionOptions struct {
	ClientID              string `yaml:"client_id"`
	ClientSecret          string `yaml:"client_secret"`
	AuthorizationEndpoint string `yaml:"authorization_endpoint"`
	TokenEndpoint         string `yaml:"token_endpoint"`
	UserinfoEndpoint      string `yaml:"userinfo_endpoint"`
	Scope                 string `yaml:"scope"`
	TeamID                string `yaml:"team_id"`
	KeyID                 string `yaml:"kid"`
	PrivateKey            string `yaml:"private_key"`
}

type User struct {
	Email         string `yaml:"email"`
	Password      string `yaml:"password"`
	EmailVerified bool   `yaml:"email_verified"`
}

// Target es lo que el seed escribe.
type Target struct {
	Admin     repository.TenantAdmin
	Users     repository.UserRepository
	Passwords repository.PasswordRepository
}

// Result cuenta lo escrito.
type Result struct {
	Tenants, Applications, Connections, Users, SkippedUsers int
}

// Load parsea un seed desde path ("-" = stdin).
func Load(path string) (*File, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("seed: %w", err)
		}
		defer f.Close()
		r = f
	}
	var sf File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&sf); err != nil {
		return nil, fmt.Errorf("seed: parse: %w", err)
	}
	return &sf, sf.validate()
}

func (f *File) validate() error {
	for i, t := range f.Tenants {
		if strings.TrimSpace(t.ID) == "" {
			return fmt.Errorf("seed: tenants[%d]: id is required", i)
		}
		// el id de la login session es "{tenant}.{uuid}"; el punto no puede
		// aparecer en el tenant_id para no romper el parseo
		if strings.Contains(t.ID, ".") {
			return fmt.Errorf("seed: tenant %q: id cannot contain '.'", t.ID)
		}
		for j, a := range t.Applications {
			if a.ClientID == "" {
				return fmt.Errorf("seed: tenant %q applications[%d]: client_id is required", t.ID, j)
			}
			switch a.EmailValidation {
			case "", repository.EmailValidationEnabled, repository.EmailValidationDisabled, repository.EmailValidationEnforced:
			default:
				return fmt.Errorf("seed: application %q: bad email_validation %q", a.ClientID, a.EmailValidation)
			}
		}
		for j, u := range t.Users {
			if u.Email == "" || u.Password == "" {
				return fmt.Errorf("seed: tenant %q users[%d]: email and password are required", t.ID, j)
			}
		}
	}
	return nil
}

// Apply escribe f en dst.
func Apply(ctx context.Context, dst Target, f *File) (Result, error) {
	log := logger.From(ctx).With(logger.Component("bootstrap"), logger.Op("Apply"))
	var res Result
	now := time.Now().UTC()

	for _, t := range f.Tenants {
		if err := dst.Admin.UpsertTenant(ctx, repository.Tenant{
			ID: t.ID, Name: t.Name, Audience: t.Audience, Language: t.Language,
			SenderEmail: t.SenderEmail, SenderName: t.SenderName, LogoURL: t.LogoURL,
			PrimaryColor: t.PrimaryColor, SupportURL: t.SupportURL,
			CreatedAt: now, UpdatedAt: now,
		}); err != nil {
			return res, fmt.Errorf("seed: tenant %s: %w", t.ID, err)
		}
		res.Tenants++

		for _, a := range t.Applications {
			ev := a.EmailValidation
			if ev == "" {
				ev = repository.EmailValidationEnabled
			}
			if err := dst.Admin.UpsertApplication(ctx, repository.Application{
				ID: a.ClientID, TenantID: t.ID, Name: a.Name, ClientSecret: a.ClientSecret,
				Callbacks: a.Callbacks, AllowedLogoutURLs: a.AllowedLogoutURLs, WebOrigins: a.WebOrigins,
				EmailValidation: ev, DisableSignUps: a.DisableSignUps,
				CreatedAt: now, UpdatedAt: now,
			}); err != nil {
				return res, fmt.Errorf("seed: application %s: %w", a.ClientID, err)
			}
			res.Applications++
		}

		for _, c := range t.Connections {
			o := c.Options
			if err := dst.Admin.UpsertConnection(ctx, repository.Connection{
				ID: t.ID + ":" + c.Name, TenantID: t.ID, Name: c.Name, Strategy: c.Strategy,
				Options: repository.ConnectionOptions{
					ClientID: o.ClientID, ClientSecret: o.ClientSecret,
					AuthorizationEndpoint: o.AuthorizationEndpoint, TokenEndpoint: o.TokenEndpoint,
					UserinfoEndpoint: o.UserinfoEndpoint, Scope: o.Scope,
					TeamID: o.TeamID, KeyID: o.KeyID, PrivateKey: o.PrivateKey,
				},
				CreatedAt: now, UpdatedAt: now,
			}); err != nil {
				return res, fmt.Errorf("seed: connection %s: %w", c.Name, err)
			}
			res.Connections++
		}

		for _, u := range t.Users {
			created, err := seedUser(ctx, dst, t.ID, u, now)
			if err != nil {
				return res, err
			}
			if created {
				res.Users++
			} else {
				res.SkippedUsers++
			}
		}
	}
	log.Info("seed applied",
		logger.Int("tenants", res.Tenants),
		logger.Int("applications", res.Applications),
		logger.Int("connections", res.Connections),
		logger.Int("users", res.Users),
	)
	return res, nil
}

func seedUser(ctx context.Context, dst Target, tenantID string, su User, now time.Time) (bool, error) {
	email := strings.ToLower(strings.TrimSpace(su.Email))
	existing, err := dst.Users.GetByEmail(ctx, tenantID, email)
	if err != nil {
		return false, fmt.Errorf("seed: user %s: %w", email, err)
	}
	for _, e := range existing {
		if e.Provider == repository.ProviderPassword {
			return false, nil
		}
	}
	hash, err := password.Hash(su.Password)
	if err != nil {
		return false, fmt.Errorf("seed: hash: %w", err)
	}
	u := &repository.User{
		ID:            repository.ProviderPassword + "|" + uuid.NewString(),
		TenantID:      tenantID,
		Email:         email,
		EmailVerified: su.EmailVerified,
		Provider:      repository.ProviderPassword,
		Connection:    repository.RealmPassword,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := dst.Users.Create(ctx, u); err != nil {
		return false, fmt.Errorf("seed: user %s: %w", email, err)
	}
	if err := dst.Passwords.Create(ctx, repository.Password{
		TenantID: tenantID, UserID: u.ID, Hash: hash, CreatedAt: now, UpdatedAt: now,
	}); err != nil {
		return false, fmt.Errorf("seed: password %s: %w", email, err)
	}
	return true, nil
}
