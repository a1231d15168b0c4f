package auth

import (
	"net/http"
	"strings"

	"github.com/dropDatabas3/authhero/internal/http/controllers/respond"
	httperrors "github.com/dropDatabas3/authhero/internal/http/errors"
	"github.com/dropDatabas3/authhero/internal/http/helpers"
	svc "github.com/dropDatabas3/authhero/internal/http/services/auth"
	"github.com/dropDatabas3/authhero/internal/observability/logger"
)

// CrossOriginController maneja POST /co/authenticate: el SDK embebido
// verifica credenciales y recibe un login_ticket que después canjea en
// /authorize.
type CrossOriginController struct {
	service *svc.Service
	out     *respond.Writer
}

func NewCrossOriginController(s *svc.Service, out *respond.Writer) *CrossOriginController {
	return &CrossOriginController{service: s, out: out}
}

func (c *CrossOriginController) Authenticate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("CrossOriginController.Authenticate"))

	if !post(w, r) {
		return
	}
	v, err := helpers.ReadParams(w, r)
	if err != nil {
		log.Debug("bad body", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInvalidJSON)
		return
	}
	client, err := c.service.Client(ctx, v.Get("client_id"))
	if err != nil {
		c.out.OAuthError(w, r, err)
		return
	}
	if !allowCORS(w, r, client) {
		return
	}

	res, err := c.service.CrossOriginAuthenticate(ctx, client, svc.CORequest{
		Username: strings.ToLower(strings.TrimSpace(v.Get("username"))),
		Password: v.Get("password"),
		OTP:      strings.TrimSpace(v.Get("otp")),
		Realm:    v.Get("realm"),
	}, respond.Meta(r, client.TenantID))
	if err != nil {
		c.out.OAuthError(w, r, err)
		return
	}
	helpers.NoStore(w)
	helpers.WriteJSON(w, http.StatusOK, res)
}
