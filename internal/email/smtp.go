package email

import (
	"context"
	"crypto/tls"
	"fmt"

	mail "github.com/go-mail/mail"
	"go.uber.org/zap"

	"github.com/dropDatabas3/authhero/internal/observability/logger"
)

// SMTP entrega por go-mail.
type SMTP struct {
	Host               string
	Port               int
	User               string
	Pass               string
	TLSMode            string // "auto" | "starttls" | "ssl" | "none"
	InsecureSkipVerify bool
}

func (s *SMTP) Deliver(ctx context.Context, msg Message) error {
	log := logger.From(ctx).With(logger.Component("email"), logger.Op("smtp.Deliver"))

	m := mail.NewMessage()
	m.SetHeader("From", msg.From)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	if msg.Text != "" {
		m.SetBody("text/plain", msg.Text)
	}
	if msg.HTML != "" {
		if msg.Text == "" {
			m.SetBody("text/html", msg.HTML)
		} else {
			m.AddAlternative("text/html", msg.HTML)
		}
	}

	d := mail.NewDialer(s.Host, s.Port, s.User, s.Pass)
	d.TLSConfig = &tls.Config{
		ServerName:         s.Host,
		InsecureSkipVerify: s.InsecureSkipVerify, // sólo dev
	}
	switch s.TLSMode {
	case "ssl":
		d.SSL = true
	case "none":
		d.TLSConfig = &tls.Config{InsecureSkipVerify: s.InsecureSkipVerify}
	default:
		// auto/starttls: go-mail negocia STARTTLS si el server lo ofrece
	}

	if err := d.DialAndSend(m); err != nil {
		log.Error("smtp send failed", logger.Email(msg.To), logger.Err(err))
		return fmt.Errorf("email: smtp send: %w", err)
	}
	log.Info("smtp sent", logger.Email(msg.To))
	return nil
}

// LogTransport sólo loguea. ShowBody expone códigos y links: sólo en dev.
type LogTransport struct {
	ShowBody bool
}

func (t LogTransport) Deliver(ctx context.Context, msg Message) error {
	fields := []zap.Field{
		logger.Component("email"),
		logger.Email(msg.To),
		logger.String("subject", msg.Subject),
	}
	if t.ShowBody {
		fields = append(fields, logger.String("body", msg.Text))
	}
	logger.From(ctx).Info("email (log transport)", fields...)
	return nil
}
