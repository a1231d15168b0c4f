package oauth

import (
	"net/http"

	"github.com/dropDatabas3/authhero/internal/http/controllers/respond"
	httperrors "github.com/dropDatabas3/authhero/internal/http/errors"
	"github.com/dropDatabas3/authhero/internal/http/helpers"
	"github.com/dropDatabas3/authhero/internal/http/middlewares"
	"github.com/dropDatabas3/authhero/internal/http/services/auth"
	svc "github.com/dropDatabas3/authhero/internal/http/services/oauth"
	"github.com/dropDatabas3/authhero/internal/observability/logger"
)

// TokenController maneja POST /oauth/token.
type TokenController struct {
	service *svc.Service
	auth    *auth.Service
	out     *respond.Writer
}

func NewTokenController(service *svc.Service, authSvc *auth.Service, out *respond.Writer) *TokenController {
	return &TokenController{service: service, auth: authSvc, out: out}
}

func (c *TokenController) Token(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("TokenController.Token"))

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
		return
	}

	v, err := helpers.ReadParams(w, r)
	if err != nil {
		log.Debug("bad body", logger.Err(err))
		httperrors.WriteOAuthError(w, http.StatusBadRequest, "invalid_request", "malformed body")
		return
	}

	req := svc.TokenRequest{
		GrantType:    v.Get("grant_type"),
		ClientID:     v.Get("client_id"),
		ClientSecret: v.Get("client_secret"),
		Code:         v.Get("code"),
		RedirectURI:  v.Get("redirect_uri"),
		CodeVerifier: v.Get("code_verifier"),
		Audience:     v.Get("audience"),
		Scope:        v.Get("scope"),
	}
	// client_secret_basic pisa lo del body
	if id, secret, ok := helpers.BasicAuth(r); ok {
		req.ClientID, req.ClientSecret = id, secret
	}

	// SPAs con PKCE llaman al token endpoint desde el browser
	if origin := r.Header.Get("Origin"); origin != "" {
		if client, err := c.auth.Client(ctx, req.ClientID); err == nil && middlewares.OriginAllowed(client.WebOrigins, origin) {
			middlewares.AllowOrigin(w, origin)
		}
	}

	tokens, err := c.service.Token(ctx, req, respond.Meta(r, ""))
	if err != nil {
		c.out.OAuthError(w, r, err)
		return
	}
	helpers.NoStore(w)
	helpers.WriteJSON(w, http.StatusOK, tokens)
}
