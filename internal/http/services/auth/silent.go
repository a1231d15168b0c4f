package auth

import (
	"context"
	"errors"

	"github.com/dropDatabas3/authhero/internal/audit"
	"github.com/dropDatabas3/authhero/internal/domain/repository"
	"github.com/dropDatabas3/authhero/internal/http/services/common"
	"github.com/dropDatabas3/authhero/internal/metrics"
	"github.com/dropDatabas3/authhero/internal/observability/logger"
)

const strategySilent = "silent"

// Silent es prompt=none: con una sesión vigente emite tokens sin UI; si no,
// responde login_required al redirect_uri (o por web_message).
func (s *Service) Silent(ctx context.Context, client *repository.Client, p repository.AuthParams, m Meta) (*common.Outcome, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("Silent"),
		logger.TenantID(client.TenantID), logger.ClientID(client.ID))

	if err := checkRedirect(client, p.RedirectURI); err != nil {
		return nil, err
	}
	u, sess, err := s.silentUser(ctx, client, m.SessionID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		s.emit(ctx, client, m, audit.FailedSilentAuth, "Login required", nil, nil)
		metrics.Login(strategySilent, false)
		out, err := common.ApplyError(p, "login_required", "Login required")
		if errors.Is(err, common.ErrNoRedirectURI) {
			return nil, newErr(KindInvalidRedirectURI, "redirect_uri is required")
		}
		return out, err
	}

	if err := s.d.Sessions.Touch(ctx, client.TenantID, sess.ID, s.now()); err != nil {
		log.Warn("session touch failed", logger.SessionID(sess.ID), logger.Err(err))
	}
	toks, err := s.d.Minter.ForLogin(ctx, client, u, p, sess.ID)
	if err != nil {
		return nil, err
	}
	out, err := common.Apply(toks, p)
	if err != nil {
		if errors.Is(err, common.ErrNoRedirectURI) {
			return nil, newErr(KindInvalidRedirectURI, "redirect_uri is required")
		}
		return nil, err
	}
	s.emit(ctx, client, m, audit.SuccessSilentAuth, "Successful silent authentication", u, nil)
	metrics.Login(strategySilent, true)
	return out, nil
}

func (s *Service) silentUser(ctx context.Context, client *repository.Client, sessionID string) (*repository.User, *repository.Session, error) {
	sess, err := s.activeSession(ctx, client.TenantID, sessionID)
	if err != nil || sess == nil {
		return nil, nil, err
	}
	u, err := s.d.Users.Get(ctx, client.TenantID, sess.UserID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, nil, nil
		}
		return nil, nil, err
	}
	if u, err = s.resolver.Principal(ctx, u); err != nil {
		return nil, nil, err
	}
	return u, sess, nil
}
