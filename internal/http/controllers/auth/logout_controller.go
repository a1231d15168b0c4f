package auth

import (
	"net/http"

	"github.com/dropDatabas3/authhero/internal/http/controllers/respond"
	httperrors "github.com/dropDatabas3/authhero/internal/http/errors"
	svc "github.com/dropDatabas3/authhero/internal/http/services/auth"
	"github.com/dropDatabas3/authhero/internal/observability/logger"
)

// LogoutController maneja GET /v2/logout.
type LogoutController struct {
	service *svc.Service
	out     *respond.Writer
}

func NewLogoutController(s *svc.Service, out *respond.Writer) *LogoutController {
	return &LogoutController{service: s, out: out}
}

func (c *LogoutController) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("LogoutController.Logout"))

	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
		return
	}
	q := r.URL.Query()
	client, err := c.service.Client(ctx, q.Get("client_id"))
	if err != nil {
		c.out.OAuthError(w, r, err)
		return
	}
	returnTo := q.Get("returnTo")
	if returnTo == "" {
		returnTo = q.Get("post_logout_redirect_uri")
	}

	out, err := c.service.Logout(ctx, client, returnTo, respond.Meta(r, client.TenantID))
	if err != nil {
		c.out.OAuthError(w, r, err)
		return
	}
	log.Debug("logged out", logger.TenantID(client.TenantID), logger.ClientID(client.ID))
	c.out.Outcome(w, r, out)
}
