// Package respond traduce los resultados de los services a HTTP: Outcome →
// cookie + redirect/página/web_message/JSON, y errores → OAuth JSON o
// página del login hosteado.
package respond

import (
	"net/http"
	"strings"
	"time"

	httperrors "github.com/dropDatabas3/authhero/internal/http/errors"
	"github.com/dropDatabas3/authhero/internal/http/helpers"
	"github.com/dropDatabas3/authhero/internal/http/render"
	"github.com/dropDatabas3/authhero/internal/http/services/auth"
	"github.com/dropDatabas3/authhero/internal/http/services/common"
	"github.com/dropDatabas3/authhero/internal/i18n"
	"github.com/dropDatabas3/authhero/internal/observability/logger"
)

type Writer struct {
	Renderer render.Renderer
	Cookie   helpers.CookieConfig
	Now      func() time.Time
}

func New(r render.Renderer, cookie helpers.CookieConfig) *Writer {
	return &Writer{Renderer: r, Cookie: cookie, Now: time.Now}
}

// Meta arma el auth.Meta del request; tenantID decide qué cookie de sesión
// se lee.
func Meta(r *http.Request, tenantID string) auth.Meta {
	return auth.Meta{
		IP:             helpers.ClientIP(r),
		UserAgent:      r.UserAgent(),
		AcceptLanguage: r.Header.Get("Accept-Language"),
		SessionID:      helpers.SessionID(r, tenantID),
	}
}

// Outcome escribe out.
func (wr *Writer) Outcome(w http.ResponseWriter, r *http.Request, out *common.Outcome) {
	log := logger.From(r.Context())

	if out.ClearSessionOf != "" {
		http.SetCookie(w, helpers.BuildDeletionCookie(helpers.SessionCookieName(out.ClearSessionOf), wr.Cookie))
	}
	if s := out.Session; s != nil {
		cfg := wr.Cookie
		cfg.TTL = s.ExpiresAt.Sub(wr.Now())
		http.SetCookie(w, helpers.BuildCookie(helpers.SessionCookieName(s.TenantID), s.ID, cfg))
	}

	status := out.Status
	if status == 0 {
		status = http.StatusOK
	}
	switch {
	case out.Redirect != "":
		helpers.NoStore(w)
		http.Redirect(w, r, out.Redirect, http.StatusFound)
	case out.Page != nil:
		if err := wr.Renderer.Render(w, status, *out.Page); err != nil {
			log.Error("render failed", logger.String("page", out.Page.Name), logger.Err(err))
			httperrors.WriteError(w, httperrors.ErrInternalServerError)
		}
	case out.WebMessage != nil:
		if err := render.RenderWebMessage(w, *out.WebMessage); err != nil {
			log.Error("web_message render failed", logger.Err(err))
			httperrors.WriteError(w, httperrors.ErrInternalServerError)
		}
	case out.JSON != nil:
		helpers.NoStore(w)
		helpers.WriteJSON(w, status, out.JSON)
	default:
		w.WriteHeader(status)
	}
}

// OAuthError escribe err como {"error","error_description"}.
func (wr *Writer) OAuthError(w http.ResponseWriter, r *http.Request, err error) {
	code, desc, status := auth.OAuth(err)
	logError(r, err, status)
	httperrors.WriteOAuthError(w, status, code, desc)
}

// PageError es el error de un paso de /u/*: login session vencida →
// "session expired"; el resto, página genérica con el status del error.
func (wr *Writer) PageError(w http.ResponseWriter, r *http.Request, err error) {
	_, _, status := auth.OAuth(err)
	logError(r, err, status)
	p := render.Page{
		Name:  render.PageInfo,
		Lang:  i18n.Match(r.URL.Query().Get("ui_locales"), r.Header.Get("Accept-Language"), ""),
		Error: i18n.MsgSomethingWentWrong,
	}
	if auth.KindOf(err) == auth.KindInvalidState {
		p.Error = i18n.MsgSessionExpired
	}
	if rerr := wr.Renderer.Render(w, status, p); rerr != nil {
		httperrors.WriteError(w, httperrors.ErrInternalServerError)
	}
}

func logError(r *http.Request, err error, status int) {
	log := logger.From(r.Context()).With(logger.Layer("controller"))
	if status >= 500 {
		log.Error("request failed", logger.Err(err))
		return
	}
	log.Info("request rejected", logger.String("kind", string(auth.KindOf(err))), logger.Err(err))
}

// Bearer extrae el token de "Authorization: Bearer".
func Bearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
