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
	"github.com/dropDatabas3/authhero/internal/validation"
)

// Logout borra (soft) la sesión de la cookie y vuelve a returnTo, que tiene
// que estar en los logout URLs del client.
func (s *Service) Logout(ctx context.Context, client *repository.Client, returnTo string, m Meta) (*common.Outcome, error) {
	ok, err := validation.RedirectAllowed(client.LogoutURLs(), returnTo)
	if err != nil || !ok {
		return nil, newErr(KindInvalidRedirectURI, "returnTo is not in the allowed logout urls")
	}

	var u *repository.User
	if m.SessionID != "" {
		sess, err := s.d.Sessions.Get(ctx, client.TenantID, m.SessionID)
		switch {
		case err == nil:
			if err := s.d.Sessions.Remove(ctx, client.TenantID, sess.ID); err != nil && !repository.IsNotFound(err) {
				return nil, err
			}
			u = &repository.User{ID: sess.UserID}
		case !repository.IsNotFound(err):
			return nil, err
		}
	}
	s.emit(ctx, client, m, audit.SuccessLogout, "User successfully logged out", u, nil)
	logger.From(ctx).Debug("logout", logger.Layer("service"), logger.Op("Logout"),
		logger.TenantID(client.TenantID), logger.SessionID(m.SessionID))

	out := common.RedirectTo(returnTo)
	if returnTo == "" {
		out = common.PageOf(http.StatusOK, render.Page{
			Name:    render.PageInfo,
			Lang:    s.lang(client, repository.AuthParams{}, m),
			Tenant:  client.Tenant,
			Message: i18n.MsgLoggedOut,
		})
	}
	out.ClearSessionOf = client.TenantID
	return out, nil
}
