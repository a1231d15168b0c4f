// Package oidc contiene discovery, JWKS y userinfo.
package oidc

import (
	"errors"
	"net/http"

	"github.com/dropDatabas3/authhero/internal/http/controllers/respond"
	httperrors "github.com/dropDatabas3/authhero/internal/http/errors"
	"github.com/dropDatabas3/authhero/internal/http/helpers"
	svc "github.com/dropDatabas3/authhero/internal/http/services/oidc"
	"github.com/dropDatabas3/authhero/internal/observability/logger"
)

// Controller agrupa los endpoints OIDC.
type Controller struct {
	service *svc.Service
}

func NewController(s *svc.Service) *Controller { return &Controller{service: s} }

// Discovery maneja GET /.well-known/openid-configuration.
func (c *Controller) Discovery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, c.service.Discovery())
}

// JWKS maneja GET /.well-known/jwks.json.
func (c *Controller) JWKS(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("Controller.JWKS"))

	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
		return
	}
	body, err := c.service.JWKS(ctx)
	if err != nil {
		log.Error("jwks failed", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// Userinfo maneja GET/POST /userinfo
func (c *Controller) Userinfo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("Controller.Userinfo"))

	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		w.Header().Set("Allow", "GET, POST")
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
		return
	}

	bearer := respond.Bearer(r)
	if bearer == "" {
		writeAuthError(w, "missing bearer token")
		return
	}
	info, err := c.service.Userinfo(ctx, bearer)
	if err != nil {
		if !errors.Is(err, svc.ErrInvalidToken) {
			log.Error("userinfo failed", logger.Err(err))
			httperrors.WriteError(w, httperrors.ErrInternalServerError)
			return
		}
		log.Debug("userinfo rejected", logger.Err(err))
		writeAuthError(w, "token invalid or expired")
		return
	}

	helpers.NoStore(w)
	w.Header().Add("Vary", "Authorization")
	helpers.WriteJSON(w, http.StatusOK, info)
}

func writeAuthError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="userinfo", error="invalid_token", error_description="`+desc+`"`)
	httperrors.WriteError(w, httperrors.ErrUnauthorized.WithDetail(desc))
}
