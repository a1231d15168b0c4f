// Package universal sirve el login hosteado (/u/*).
package universal

import (
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/authhero/internal/http/controllers/respond"
	httperrors "github.com/dropDatabas3/authhero/internal/http/errors"
	"github.com/dropDatabas3/authhero/internal/http/render"
	svc "github.com/dropDatabas3/authhero/internal/http/services/auth"
	"github.com/dropDatabas3/authhero/internal/http/services/common"
	"github.com/dropDatabas3/authhero/internal/observability/logger"
)

// Controller maneja GET y POST de /u/{page}, más /u/social y
// /u/validate-email.
type Controller struct {
	service *svc.Service
	out     *respond.Writer
}

func NewController(s *svc.Service, out *respond.Writer) *Controller {
	return &Controller{service: s, out: out}
}

// tenantOf: el id de la login session es "{tenant}.{uuid}".
func tenantOf(state string) string {
	if i := strings.LastIndex(state, "."); i > 0 {
		return state[:i]
	}
	return ""
}

type step func(r *http.Request, state string, m svc.Meta) (*common.Outcome, error)

// Page es el GET de un paso; el nombre sale de la ruta.
func (c *Controller) Page(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "page")
	c.run(w, r, "Controller.Page", func(r *http.Request, state string, m svc.Meta) (*common.Outcome, error) {
		return c.service.UniversalPage(r.Context(), state, name, r.URL.Query().Get("code"), m)
	})
}

// Submit es el POST de un paso. Las rutas con rate limit se montan
// estáticas, sin {page}.
func (c *Controller) Submit(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "page")
	if name == "" {
		name = path.Base(r.URL.Path)
	}
	var fn step
	switch name {
	case render.PageEnterEmail:
		fn = func(r *http.Request, state string, m svc.Meta) (*common.Outcome, error) {
			return c.service.EnterEmail(r.Context(), state, email(r), m)
		}
	case render.PageEnterPassword:
		fn = func(r *http.Request, state string, m svc.Meta) (*common.Outcome, error) {
			return c.service.EnterPassword(r.Context(), state, email(r), r.PostFormValue("password"), m)
		}
	case render.PageEnterCode:
		fn = func(r *http.Request, state string, m svc.Meta) (*common.Outcome, error) {
			return c.service.EnterCode(r.Context(), state, strings.TrimSpace(r.PostFormValue("code")), m)
		}
	case render.PageSignup:
		fn = func(r *http.Request, state string, m svc.Meta) (*common.Outcome, error) {
			return c.service.SignupStep(r.Context(), state, email(r), r.PostFormValue("password"), r.PostFormValue("re-password"), m)
		}
	case render.PageForgotPassword:
		fn = func(r *http.Request, state string, m svc.Meta) (*common.Outcome, error) {
			return c.service.ForgotPassword(r.Context(), state, email(r), m)
		}
	case render.PageResetPassword:
		fn = func(r *http.Request, state string, m svc.Meta) (*common.Outcome, error) {
			return c.service.ResetPasswordStep(r.Context(), state, r.URL.Query().Get("code"), r.PostFormValue("password"), r.PostFormValue("re-password"), m)
		}
	case render.PageCheckAccount:
		fn = func(r *http.Request, state string, m svc.Meta) (*common.Outcome, error) {
			return c.service.CheckAccount(r.Context(), state, m)
		}
	default:
		httperrors.WriteError(w, httperrors.ErrNotFound)
		return
	}
	if err := r.ParseForm(); err != nil {
		httperrors.WriteError(w, httperrors.ErrBadRequest)
		return
	}
	c.run(w, r, "Controller.Submit", fn)
}

// ValidateEmail es el link del email de verificación.
func (c *Controller) ValidateEmail(w http.ResponseWriter, r *http.Request) {
	c.run(w, r, "Controller.ValidateEmail", func(r *http.Request, state string, m svc.Meta) (*common.Outcome, error) {
		return c.service.ValidateEmailStep(r.Context(), state, r.URL.Query().Get("code"), m)
	})
}

// Social arranca el login con un IdP desde los botones del login hosteado.
func (c *Controller) Social(w http.ResponseWriter, r *http.Request) {
	c.run(w, r, "Controller.Social", func(r *http.Request, state string, m svc.Meta) (*common.Outcome, error) {
		return c.service.SocialFromUniversal(r.Context(), state, r.URL.Query().Get("connection"), m)
	})
}

func (c *Controller) run(w http.ResponseWriter, r *http.Request, op string, fn step) {
	state := strings.TrimSpace(r.URL.Query().Get("state"))
	tenant := tenantOf(state)
	log := logger.From(r.Context()).With(logger.Layer("controller"), logger.Op(op), logger.TenantID(tenant))
	r = r.WithContext(logger.ToContext(r.Context(), log))

	if state == "" {
		c.out.PageError(w, r, svc.ErrInvalidState)
		return
	}
	out, err := fn(r, state, respond.Meta(r, tenant))
	if err != nil {
		c.out.PageError(w, r, err)
		return
	}
	c.out.Outcome(w, r, out)
}

func email(r *http.Request) string {
	return strings.ToLower(strings.TrimSpace(r.PostFormValue("username")))
}
