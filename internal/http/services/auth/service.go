// Package auth implementa los flujos de autenticación: resolución de
// identidades, password, passwordless, tickets cross-origin, social, login
// universal, signup, verificación de email, reset de password, silent auth y
// logout. Todos terminan en handleLogin, que crea la sesión y delega la
// respuesta al Response Applier de services/common.
package auth

import (
	"context"
	"time"

	"github.com/dropDatabas3/authhero/internal/audit"
	"github.com/dropDatabas3/authhero/internal/domain/repository"
	"github.com/dropDatabas3/authhero/internal/email"
	"github.com/dropDatabas3/authhero/internal/http/services/common"
	"github.com/dropDatabas3/authhero/internal/i18n"
	"github.com/dropDatabas3/authhero/internal/oauth/connection"
	"github.com/dropDatabas3/authhero/internal/oauth/state"
	"github.com/dropDatabas3/authhero/internal/security/password"
)

// Connections es el cliente de IdPs federados (internal/oauth/connection).
type Connections interface {
	AuthCodeURL(conn *repository.Connection, redirectURI, state string) (string, error)
	Exchange(ctx context.Context, conn *repository.Connection, redirectURI, code string) (*connection.Profile, error)
}

type Config struct {
	BaseURL        string // issuer, con "/" final
	SessionTTL     time.Duration
	TicketTTL      time.Duration
	OTPTTL         time.Duration
	LoginTTL       time.Duration // universal login session
	CodeTTL        time.Duration // password_reset / email_verification
	SocialStateTTL time.Duration
	PasswordPolicy password.Policy
}

type Deps struct {
	Clients       repository.ClientRepository
	Users         repository.UserRepository
	Passwords     repository.PasswordRepository
	Sessions      repository.SessionRepository
	Tickets       repository.TicketRepository
	OTPs          repository.OTPRepository
	Codes         repository.CodeRepository
	LoginSessions repository.UniversalLoginSessionRepository

	Email       email.Sender
	Audit       audit.Emitter
	Minter      *common.Minter
	States      *state.Codec
	Connections Connections

	Config Config
	Now    func() time.Time
}

// Service es stateless: todo el estado vive en los adapters.
type Service struct {
	d        Deps
	resolver *Resolver
}

func NewService(d Deps) *Service {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Audit == nil {
		d.Audit = audit.Nop{}
	}
	c := &d.Config
	if c.SessionTTL <= 0 {
		c.SessionTTL = 30 * 24 * time.Hour
	}
	if c.TicketTTL <= 0 {
		c.TicketTTL = 5 * time.Minute
	}
	if c.OTPTTL <= 0 {
		c.OTPTTL = 30 * time.Minute
	}
	if c.LoginTTL <= 0 {
		c.LoginTTL = 24 * time.Hour
	}
	if c.CodeTTL <= 0 {
		c.CodeTTL = 24 * time.Hour
	}
	if c.SocialStateTTL <= 0 {
		c.SocialStateTTL = 15 * time.Minute
	}
	if c.PasswordPolicy.MinLength == 0 {
		c.PasswordPolicy = password.DefaultPolicy
	}
	return &Service{d: d, resolver: NewResolver(d.Users)}
}

// Resolver expone el Identity Resolver (lo usan oidc/userinfo y el grant).
func (s *Service) Resolver() *Resolver { return s.resolver }

// Meta son los datos del request que los flujos usan para auditoría,
// last_ip e idioma.
type Meta struct {
	IP             string
	UserAgent      string
	AcceptLanguage string
	// SessionID es el valor de la cookie {tenant}-auth-token, si vino.
	SessionID string
}

func (s *Service) now() time.Time { return s.d.Now().UTC() }

// lang elige el idioma: ui_locales, Accept-Language, idioma del tenant.
func (s *Service) lang(client *repository.Client, p repository.AuthParams, m Meta) string {
	return i18n.Match(p.UILocales, m.AcceptLanguage, client.Tenant.Language)
}

func (s *Service) emit(ctx context.Context, client *repository.Client, m Meta, typ, desc string, u *repository.User, extra func(*audit.Event)) {
	ev := audit.Event{
		Type:        typ,
		Description: desc,
		IP:          m.IP,
		UserAgent:   m.UserAgent,
	}
	if client != nil {
		ev.TenantID = client.TenantID
		ev.ClientID = client.ID
	}
	if u != nil {
		ev.UserID = u.ID
		ev.UserName = u.Email
		ev.Connection = u.Connection
	}
	if extra != nil {
		extra(&ev)
	}
	s.d.Audit.Emit(ctx, ev)
}

// client resuelve client_id → agregado; ErrNotFound → ClientNotFound.
func (s *Service) client(ctx context.Context, clientID string) (*repository.Client, error) {
	if clientID == "" {
		return nil, newErr(KindClientNotFound, "client_id is required")
	}
	c, err := s.d.Clients.Get(ctx, clientID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, newErr(KindClientNotFound, "client not found")
		}
		return nil, err
	}
	return c, nil
}

// Client es client() para los controllers.
func (s *Service) Client(ctx context.Context, clientID string) (*repository.Client, error) {
	return s.client(ctx, clientID)
}
