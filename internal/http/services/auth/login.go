package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/dropDatabas3/authhero/internal/audit"
	"github.com/dropDatabas3/authhero/internal/domain/repository"
	"github.com/dropDatabas3/authhero/internal/http/render"
	"github.com/dropDatabas3/authhero/internal/http/services/common"
	"github.com/dropDatabas3/authhero/internal/i18n"
	"github.com/dropDatabas3/authhero/internal/metrics"
	"github.com/dropDatabas3/authhero/internal/observability/logger"
	"github.com/dropDatabas3/authhero/internal/validation"
)

// checkRedirect valida redirect_uri contra los callbacks del client. Vacío
// es válido.
func checkRedirect(client *repository.Client, redirectURI string) error {
	ok, err := validation.RedirectAllowed(client.Callbacks, redirectURI)
	if err != nil {
		return wrapErr(KindInvalidRedirectURI, err, "malformed redirect_uri")
	}
	if !ok {
		return newErr(KindInvalidRedirectURI, "redirect_uri is not in the allowed callbacks")
	}
	return nil
}

// CheckRedirect es checkRedirect para el dispatcher de /authorize.
func CheckRedirect(client *repository.Client, redirectURI string) error {
	return checkRedirect(client, redirectURI)
}

// recordLogin suma login_count y fija last_login/last_ip. Lo llama el paso
// que verificó la credencial, una vez por login.
func (s *Service) recordLogin(ctx context.Context, u *repository.User, ip string) {
	now := s.now()
	count := u.LoginCount + 1
	upd := repository.UserUpdate{LoginCount: &count, LastLogin: &now}
	if ip != "" {
		upd.LastIP = &ip
	}
	if err := s.d.Users.Update(ctx, u.TenantID, u.ID, upd); err != nil {
		logger.From(ctx).Warn("login stats update failed",
			logger.Layer("service"), logger.Op("recordLogin"), logger.UserID(u.ID), logger.Err(err))
		return
	}
	u.LoginCount, u.LastLogin = count, &now
	if ip != "" {
		u.LastIP = ip
	}
}

func (s *Service) newSession(ctx context.Context, client *repository.Client, u *repository.User) (*repository.Session, error) {
	now := s.now()
	sess := &repository.Session{
		ID:        uuid.NewString(),
		TenantID:  client.TenantID,
		ClientID:  client.ID,
		UserID:    u.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.d.Config.SessionTTL),
	}
	if err := s.d.Sessions.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return sess, nil
}

// activeSession devuelve la sesión si existe y está vigente; nil si no.
func (s *Service) activeSession(ctx context.Context, tenantID, id string) (*repository.Session, error) {
	if id == "" {
		return nil, nil
	}
	sess, err := s.d.Sessions.Get(ctx, tenantID, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if !sess.Active(s.now()) {
		return nil, nil
	}
	return sess, nil
}

// handleLogin es el final común de todos los flujos: crea (o reusa) la
// sesión, audita el login y, si hay redirect_uri, emite la respuesta con el
// Response Applier; sin redirect_uri renderiza "logged in".
func (s *Service) handleLogin(ctx context.Context, client *repository.Client, u *repository.User, p repository.AuthParams, m Meta, strategy string, sess *repository.Session) (*common.Outcome, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("handleLogin"),
		logger.TenantID(client.TenantID), logger.ClientID(client.ID), logger.UserID(u.ID))

	if err := checkRedirect(client, p.RedirectURI); err != nil {
		return nil, err
	}
	if sess == nil {
		var err error
		if sess, err = s.newSession(ctx, client, u); err != nil {
			return nil, err
		}
	}

	s.emit(ctx, client, m, audit.SuccessLogin, "Successful login", u, func(e *audit.Event) {
		e.Details = map[string]any{"strategy": strategy}
	})
	metrics.Login(strategy, true)

	if p.RedirectURI == "" {
		out := common.PageOf(http.StatusOK, render.Page{
			Name:    render.PageInfo,
			Lang:    s.lang(client, p, m),
			Tenant:  client.Tenant,
			Message: i18n.MsgLoggedIn,
		})
		out.Session = sess
		return out, nil
	}

	toks, err := s.d.Minter.ForLogin(ctx, client, u, p, sess.ID)
	if err != nil {
		log.Error("token issuance failed", logger.Err(err))
		return nil, err
	}
	out, err := common.Apply(toks, p)
	if err != nil {
		if errors.Is(err, common.ErrNoRedirectURI) {
			return nil, newErr(KindInvalidRedirectURI, "redirect_uri is required")
		}
		return nil, err
	}
	out.Session = sess
	log.Debug("login completed", logger.String("strategy", strategy), logger.SessionID(sess.ID))
	return out, nil
}

// FailProtocol audita un error de protocolo (redirect_uri, conexión) como
// login fallido con el Kind en Details y devuelve err.
func (s *Service) FailProtocol(ctx context.Context, client *repository.Client, m Meta, err error) error {
	s.emit(ctx, client, m, audit.FailedLogin, err.Error(), nil, func(e *audit.Event) {
		e.Details = map[string]any{"kind": string(KindOf(err))}
	})
	return err
}

func (s *Service) failLogin(ctx context.Context, client *repository.Client, m Meta, typ, desc, strategy, username string) {
	s.emit(ctx, client, m, typ, desc, nil, func(e *audit.Event) {
		e.UserName = username
		e.Details = map[string]any{"strategy": strategy}
	})
	metrics.Login(strategy, false)
}
