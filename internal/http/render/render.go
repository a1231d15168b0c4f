// Package render dibuja las páginas del login hosteado (/u/*) y la página
// web_message del silent auth. Los services sólo deciden qué Page y con qué
// datos; cómo se dibuja vive acá.
package render

import (
	"bytes"
	"embed"
	"encoding/json"
	"html/template"
	"net/http"
	"net/url"

	"github.com/dropDatabas3/authhero/internal/domain/repository"
	"github.com/dropDatabas3/authhero/internal/i18n"
)

// Nombres de página.
const (
	PageEnterEmail     = "enter-email"
	PageEnterPassword  = "enter-password"
	PageEnterCode      = "enter-code"
	PageSignup         = "signup"
	PageForgotPassword = "forgot-password"
	PageResetPassword  = "reset-password"
	PageCheckAccount   = "check-account"
	PageInfo           = "info"
)

var titles = map[string]string{
	PageEnterEmail:     i18n.MsgTitleEnterEmail,
	PageEnterPassword:  i18n.MsgTitleEnterPassword,
	PageEnterCode:      i18n.MsgTitleEnterCode,
	PageSignup:         i18n.MsgTitleSignup,
	PageForgotPassword: i18n.MsgTitleForgotPassword,
	PageResetPassword:  i18n.MsgTitleResetPassword,
	PageCheckAccount:   i18n.MsgTitleCheckAccount,
	PageInfo:           i18n.MsgTitleInfo,
}

// Page es lo que decide el core: qué pantalla y con qué datos. Error y
// Message son claves i18n (con MessageArgs opcionales).
type Page struct {
	Name        string
	Lang        string
	Tenant      repository.Tenant
	State       string
	Email       string
	Code        string
	Error       string
	Message     string
	MessageArgs []any
	Connections []string
}

// Renderer es el colaborador que dibuja Pages.
type Renderer interface {
	Render(w http.ResponseWriter, status int, p Page) error
}

//go:embed templates/*.html
var templateFS embed.FS

// HTML es el Renderer por defecto: html/template embebido.
type HTML struct {
	t *template.Template
}

func New() (*HTML, error) {
	t, err := template.New("").Funcs(template.FuncMap{
		"t": i18n.T,
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &HTML{t: t}, nil
}

// MustNew es New para el wiring de main y tests.
func MustNew() *HTML {
	h, err := New()
	if err != nil {
		panic(err)
	}
	return h
}

type pageData struct {
	Page
	Title   string
	ErrText string
	MsgText string
	Color   string
}

func (h *HTML) Render(w http.ResponseWriter, status int, p Page) error {
	if p.Lang == "" {
		p.Lang = "en"
	}
	data := pageData{
		Page:  p,
		Title: i18n.T(p.Lang, titles[p.Name]),
		Color: p.Tenant.PrimaryColor,
	}
	if p.Name == PageCheckAccount {
		data.Title = i18n.T(p.Lang, titles[p.Name], p.Email)
	}
	if data.Color == "" {
		data.Color = "#0a66c2"
	}
	if p.Error != "" {
		data.ErrText = i18n.T(p.Lang, p.Error)
	}
	if p.Message != "" {
		data.MsgText = i18n.T(p.Lang, p.Message, p.MessageArgs...)
	}
	// render a buffer: si el template falla no queda una respuesta a medias
	var buf bytes.Buffer
	if err := h.t.ExecuteTemplate(&buf, p.Name+".html", data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, err := w.Write(buf.Bytes())
	return err
}

// WebMessage es la respuesta response_mode=web_message: se postea al
// parent/opener con targetOrigin = origin del redirect_uri.
type WebMessage struct {
	Origin   string
	Response map[string]string
}

var webMessageTpl = template.Must(template.New("wm").Parse(`<!DOCTYPE html>
<html><head><title>Authorization Response</title></head>
<body><script type="text/javascript">
(function (window, document) {
  var targetOrigin = {{.Origin}};
  var authorizationResponse = {type: "authorization_response", response: {{.Response}}};
  var mainWin = (window.opener) ? window.opener : window.parent;
  mainWin.postMessage(authorizationResponse, targetOrigin);
})(this, this.document);
</script></body></html>`))

// RenderWebMessage escribe la página postMessage. El JSON de Response va
// escapado por el contexto JS de html/template.
func RenderWebMessage(w http.ResponseWriter, m WebMessage) error {
	resp := json.RawMessage("{}")
	if len(m.Response) > 0 {
		b, err := json.Marshal(m.Response)
		if err != nil {
			return err
		}
		resp = b
	}
	var buf bytes.Buffer
	if err := webMessageTpl.Execute(&buf, struct {
		Origin   string
		Response template.JS
	}{m.Origin, template.JS(resp)}); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, err := w.Write(buf.Bytes())
	return err
}

// Origin devuelve scheme://host de raw, o "" si no es absoluta.
func Origin(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}
