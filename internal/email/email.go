// Package email implementa el EmailSender del engine: códigos OTP, magic
// links, reset de password y verificación de email. El transporte (SMTP o
// log) es intercambiable.
package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/dropDatabas3/authhero/internal/domain/repository"
	"github.com/dropDatabas3/authhero/internal/i18n"
)

// Sender es el colaborador que consumen los flows.
type Sender interface {
	SendCode(ctx context.Context, tenant repository.Tenant, lang, to, code string, ttl time.Duration) error
	SendLink(ctx context.Context, tenant repository.Tenant, lang, to, code, link string) error
	SendResetPassword(ctx context.Context, tenant repository.Tenant, lang, to, link string) error
	SendValidateEmailAddress(ctx context.Context, tenant repository.Tenant, lang, to, link string) error
}

// Message es un email ya renderizado.
type Message struct {
	From    string
	To      string
	Subject string
	HTML    string
	Text    string
}

// Transport entrega un Message.
type Transport interface {
	Deliver(ctx context.Context, m Message) error
}

// TemplateSender renderiza los mensajes con el branding del tenant y los
// entrega por Transport.
type TemplateSender struct {
	transport   Transport
	defaultFrom string
}

func NewTemplateSender(t Transport, defaultFrom string) *TemplateSender {
	return &TemplateSender{transport: t, defaultFrom: defaultFrom}
}

var layout = template.Must(template.New("email").Parse(`<!doctype html>
<html><body style="font-family:sans-serif">
{{if .Logo}}<img src="{{.Logo}}" alt="{{.Tenant}}" height="48">{{end}}
<p>{{.Body}}</p>
{{if .Link}}<p><a href="{{.Link}}" style="color:{{.Color}}">{{.Link}}</a></p>{{end}}
{{if .Code}}<p style="font-size:24px;letter-spacing:4px"><strong>{{.Code}}</strong></p>{{end}}
</body></html>`))

type layoutData struct {
	Tenant string
	Logo   string
	Color  string
	Body   string
	Link   string
	Code   string
}

func (s *TemplateSender) send(ctx context.Context, tenant repository.Tenant, to, subject, body, link, code string) error {
	var buf bytes.Buffer
	color := tenant.PrimaryColor
	if color == "" {
		color = "#0a66c2"
	}
	if err := layout.Execute(&buf, layoutData{
		Tenant: tenant.Name, Logo: tenant.LogoURL, Color: color, Body: body, Link: link, Code: code,
	}); err != nil {
		return fmt.Errorf("email: render: %w", err)
	}
	return s.transport.Deliver(ctx, Message{
		From:    s.from(tenant),
		To:      to,
		Subject: subject,
		HTML:    buf.String(),
		Text:    body,
	})
}

func (s *TemplateSender) from(t repository.Tenant) string {
	if t.SenderEmail == "" {
		return s.defaultFrom
	}
	if t.SenderName != "" {
		return fmt.Sprintf("%s <%s>", t.SenderName, t.SenderEmail)
	}
	return t.SenderEmail
}

func (s *TemplateSender) SendCode(ctx context.Context, tenant repository.Tenant, lang, to, code string, ttl time.Duration) error {
	return s.send(ctx, tenant, to,
		i18n.T(lang, i18n.MsgSubjectCode, tenant.Name),
		i18n.T(lang, i18n.MsgBodyCode, code, int(ttl.Minutes())),
		"", code)
}

func (s *TemplateSender) SendLink(ctx context.Context, tenant repository.Tenant, lang, to, code, link string) error {
	return s.send(ctx, tenant, to,
		i18n.T(lang, i18n.MsgSubjectLink, tenant.Name),
		i18n.T(lang, i18n.MsgBodyLink, link, code),
		link, "")
}

func (s *TemplateSender) SendResetPassword(ctx context.Context, tenant repository.Tenant, lang, to, link string) error {
	return s.send(ctx, tenant, to,
		i18n.T(lang, i18n.MsgSubjectReset, tenant.Name),
		i18n.T(lang, i18n.MsgBodyReset, link),
		link, "")
}

func (s *TemplateSender) SendValidateEmailAddress(ctx context.Context, tenant repository.Tenant, lang, to, link string) error {
	return s.send(ctx, tenant, to,
		i18n.T(lang, i18n.MsgSubjectValidate, tenant.Name),
		i18n.T(lang, i18n.MsgBodyValidate, link),
		link, "")
}
