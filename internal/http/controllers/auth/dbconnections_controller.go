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

// DBConnectionsController maneja /dbconnections/signup y
// /dbconnections/change_password.
type DBConnectionsController struct {
	service *svc.Service
	out     *respond.Writer
}

func NewDBConnectionsController(s *svc.Service, out *respond.Writer) *DBConnectionsController {
	return &DBConnectionsController{service: s, out: out}
}

type signupResponse struct {
	ID            string `json:"_id"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
}

func (c *DBConnectionsController) Signup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("DBConnectionsController.Signup"))

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

	u, err := c.service.Signup(ctx, client, svc.SignupRequest{
		Email:      strings.TrimSpace(v.Get("email")),
		Password:   v.Get("password"),
		Connection: v.Get("connection"),
		AuthParams: helpers.AuthParams(v, "authParams."),
	}, respond.Meta(r, client.TenantID))
	if err != nil {
		c.out.OAuthError(w, r, err)
		return
	}
	// los SDKs esperan el id sin el prefijo del provider
	id := u.ID
	if i := strings.IndexByte(id, '|'); i >= 0 {
		id = id[i+1:]
	}
	helpers.WriteJSON(w, http.StatusOK, signupResponse{ID: id, Email: u.Email, EmailVerified: u.EmailVerified})
}

func (c *DBConnectionsController) ChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("DBConnectionsController.ChangePassword"))

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

	if err := c.service.RequestPasswordReset(ctx, client, strings.TrimSpace(v.Get("email")), helpers.AuthParams(v, "authParams."), respond.Meta(r, client.TenantID)); err != nil {
		c.out.OAuthError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("We've just sent you an email to reset your password."))
}
