package oauth

import (
	"net/http"
	"strings"

	"github.com/dropDatabas3/authhero/internal/http/controllers/respond"
	httperrors "github.com/dropDatabas3/authhero/internal/http/errors"
	"github.com/dropDatabas3/authhero/internal/http/helpers"
	"github.com/dropDatabas3/authhero/internal/http/services/auth"
	svc "github.com/dropDatabas3/authhero/internal/http/services/oauth"
	"github.com/dropDatabas3/authhero/internal/observability/logger"
)

// AuthorizeController maneja GET /authorize.
type AuthorizeController struct {
	service *svc.Service
	auth    *auth.Service
	out     *respond.Writer
}

func NewAuthorizeController(service *svc.Service, authSvc *auth.Service, out *respond.Writer) *AuthorizeController {
	return &AuthorizeController{service: service, auth: authSvc, out: out}
}

// Authorize despacha al flujo que corresponda. Los errores previos a tener
// un redirect_uri válido se devuelven como JSON; los posteriores los
// entrega el service al redirect_uri.
func (c *AuthorizeController) Authorize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("AuthorizeController.Authorize"))

	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	p := helpers.AuthParams(q, "")

	// el tenant sale del client; sin él no sabemos qué cookie leer
	client, err := c.auth.Client(ctx, p.ClientID)
	if err != nil {
		c.out.OAuthError(w, r, err)
		return
	}
	log = log.With(logger.TenantID(client.TenantID), logger.ClientID(client.ID))
	ctx = logger.ToContext(ctx, log)

	req := svc.AuthorizeRequest{
		Params:      p,
		Connection:  strings.TrimSpace(q.Get("connection")),
		LoginTicket: strings.TrimSpace(q.Get("login_ticket")),
		Realm:       strings.TrimSpace(q.Get("realm")),
	}
	out, err := c.service.Authorize(ctx, req, respond.Meta(r, client.TenantID))
	if err != nil {
		c.out.OAuthError(w, r.WithContext(ctx), err)
		return
	}
	c.out.Outcome(w, r, out)
}
