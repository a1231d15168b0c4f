package auth

import (
	"net/http"
	"strings"

	"github.com/dropDatabas3/authhero/internal/domain/repository"
	"github.com/dropDatabas3/authhero/internal/http/controllers/respond"
	httperrors "github.com/dropDatabas3/authhero/internal/http/errors"
	"github.com/dropDatabas3/authhero/internal/http/helpers"
	svc "github.com/dropDatabas3/authhero/internal/http/services/auth"
	"github.com/dropDatabas3/authhero/internal/observability/logger"
)

// PasswordlessController maneja /passwordless/start y
// /passwordless/verify_redirect.
type PasswordlessController struct {
	service *svc.Service
	out     *respond.Writer
}

func NewPasswordlessController(s *svc.Service, out *respond.Writer) *PasswordlessController {
	return &PasswordlessController{service: s, out: out}
}

type startResponse struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
}

func (c *PasswordlessController) Start(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("PasswordlessController.Start"))

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
	if conn := v.Get("connection"); conn != "" && conn != repository.RealmEmail {
		c.out.OAuthError(w, r, svc.NewError(svc.KindConnectionNotFound, "passwordless connection "+conn))
		return
	}

	email := strings.ToLower(strings.TrimSpace(v.Get("email")))
	req := svc.StartRequest{
		Email:      email,
		Send:       v.Get("send"),
		AuthParams: helpers.AuthParams(v, "authParams."),
	}
	if req.AuthParams.ClientID == "" {
		req.AuthParams.ClientID = client.ID
	}
	if err := c.service.StartPasswordless(ctx, client, req, respond.Meta(r, client.TenantID)); err != nil {
		c.out.OAuthError(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, startResponse{Email: email})
}

// VerifyRedirect es el destino del magic link.
func (c *PasswordlessController) VerifyRedirect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

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
	out, err := c.service.VerifyRedirect(ctx, client,
		strings.ToLower(strings.TrimSpace(q.Get("email"))),
		strings.TrimSpace(q.Get("verification_code")),
		helpers.AuthParams(q, ""),
		respond.Meta(r, client.TenantID))
	if err != nil {
		c.out.OAuthError(w, r, err)
		return
	}
	c.out.Outcome(w, r, out)
}
