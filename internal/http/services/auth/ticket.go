package auth

import (
	"context"
	"net/http"

	"github.com/dropDatabas3/authhero/internal/audit"
	"github.com/dropDatabas3/authhero/internal/domain/repository"
	"github.com/dropDatabas3/authhero/internal/http/render"
	"github.com/dropDatabas3/authhero/internal/http/services/common"
	"github.com/dropDatabas3/authhero/internal/i18n"
	"github.com/dropDatabas3/authhero/internal/observability/logger"
	tokens "github.com/dropDatabas3/authhero/internal/security/token"
)

const ticketBytes = 24

// CORequest es el body de /co/authenticate.
type CORequest struct {
	Username string
	Password string
	OTP      string
	Realm    string
}

// COResult es la respuesta de /co/authenticate; login_ticket se canjea en
// /authorize.
type COResult struct {
	LoginTicket string `json:"login_ticket"`
	COVerifier  string `json:"co_verifier"`
	COID        string `json:"co_id"`
}

// CrossOriginAuthenticate verifica la credencial (password u OTP según realm)
// y emite un ticket de un solo uso. El login se cuenta al canjear el ticket.
func (s *Service) CrossOriginAuthenticate(ctx context.Context, client *repository.Client, req CORequest, m Meta) (*COResult, error) {
	email := normEmail(req.Username)
	fail := func(err error) (*COResult, error) {
		s.emit(ctx, client, m, audit.FailedCrossOriginAuth, "Cross-origin authentication failed", nil, func(e *audit.Event) {
			e.UserName = email
			e.Details = map[string]any{"realm": req.Realm, "reason": string(KindOf(err))}
		})
		return nil, err
	}

	switch req.Realm {
	case repository.RealmEmail:
		code := req.OTP
		if code == "" {
			code = req.Password
		}
		if _, err := s.consumeOTP(ctx, client, email, code); err != nil {
			return fail(err)
		}
	case "", repository.RealmPassword:
		if _, err := s.verifyPassword(ctx, client, email, req.Password, m); err != nil {
			return fail(err)
		}
	default:
		return fail(newErr(KindConnectionNotFound, "unknown realm: "+req.Realm))
	}

	id, err := tokens.GenerateOpaqueToken(ticketBytes)
	if err != nil {
		return nil, err
	}
	verifier, err := tokens.GenerateOpaqueToken(ticketBytes)
	if err != nil {
		return nil, err
	}
	now := s.now()
	tk := &repository.Ticket{
		ID:         id,
		TenantID:   client.TenantID,
		ClientID:   client.ID,
		Email:      email,
		AuthParams: repository.AuthParams{ClientID: client.ID, Username: email},
		CreatedAt:  now,
		ExpiresAt:  now.Add(s.d.Config.TicketTTL),
	}
	if err := s.d.Tickets.Create(ctx, tk); err != nil {
		return nil, err
	}
	s.emit(ctx, client, m, audit.SuccessCrossOriginAuth, "Successful cross-origin authentication", nil, func(e *audit.Event) {
		e.UserName = email
	})
	return &COResult{LoginTicket: id, COVerifier: verifier, COID: id[:12]}, nil
}

// TicketLogin canjea un login_ticket en /authorize. realm decide el provider
// (email → identidad email, si no auth2).
func (s *Service) TicketLogin(ctx context.Context, client *repository.Client, ticketID, realm string, p repository.AuthParams, m Meta) (*common.Outcome, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("TicketLogin"), logger.TenantID(client.TenantID))

	if err := checkRedirect(client, p.RedirectURI); err != nil {
		return nil, err
	}
	tk, err := s.d.Tickets.Get(ctx, client.TenantID, ticketID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, newErr(KindTicketNotFound, "ticket not found")
		}
		return nil, err
	}
	if tk.ClientID != client.ID || !s.now().Before(tk.ExpiresAt) {
		return nil, newErr(KindTicketNotFound, "ticket not found")
	}
	if err := s.d.Tickets.Remove(ctx, client.TenantID, tk.ID); err != nil {
		if repository.IsNotFound(err) {
			return nil, newErr(KindTicketNotFound, "ticket already used")
		}
		return nil, err
	}

	var u *repository.User
	strategy := strategyPassword
	if realm == repository.RealmEmail {
		strategy = strategyEmail
		if u, err = s.ensureEmailUser(ctx, client, tk.Email, m); err != nil {
			return nil, err
		}
	} else {
		identity, err := s.resolver.UserByEmailAndProvider(ctx, client.TenantID, tk.Email, repository.ProviderPassword)
		if err != nil {
			return nil, err
		}
		if identity == nil {
			return nil, newErr(KindUserNotFound, "user not found")
		}
		if identity.IsUnverifiedPassword() {
			lang := s.lang(client, p, m)
			if err := s.sendValidationEmail(ctx, client, identity, lang); err != nil {
				log.Error("send verification email failed", logger.UserID(identity.ID), logger.Err(err))
			}
			return common.PageOf(http.StatusOK, render.Page{
				Name:        render.PageInfo,
				Lang:        lang,
				Tenant:      client.Tenant,
				Message:     i18n.MsgVerifyEmailSent,
				MessageArgs: []any{identity.Email},
			}), nil
		}
		if u, err = s.resolver.Principal(ctx, identity); err != nil {
			return nil, err
		}
	}

	s.recordLogin(ctx, u, m.IP)
	return s.handleLogin(ctx, client, u, p, m, strategy, nil)
}
