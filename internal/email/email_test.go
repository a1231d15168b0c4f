package email

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/authhero/internal/domain/repository"
	"github.com/dropDatabas3/authhero/internal/i18n"
)

type captureTransport struct {
	mu   sync.Mutex
	msgs []Message
}

func (c *captureTransport) Deliver(_ context.Context, m Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, m)
	return nil
}

func TestSendCodeUsesTenantBranding(t *testing.T) {
	ct := &captureTransport{}
	s := NewTemplateSender(ct, "noreply@authhero.dev")
	tenant := repository.Tenant{Name: "Acme", SenderEmail: "login@acme.com", SenderName: "Acme", LogoURL: "https://acme/logo.png"}

	require.NoError(t, s.SendCode(context.Background(), tenant, i18n.English, "u@x.com", "123456", 30*time.Minute))
	require.Len(t, ct.msgs, 1)
	m := ct.msgs[0]
	assert.Equal(t, "Acme <login@acme.com>", m.From)
	assert.Equal(t, "u@x.com", m.To)
	assert.Equal(t, "Your login code for Acme", m.Subject)
	assert.Contains(t, m.Text, "123456")
	assert.Contains(t, m.Text, "30 minutes")
	assert.Contains(t, m.HTML, "https://acme/logo.png")
}

func TestSendLinkEscapesHTML(t *testing.T) {
	ct := &captureTransport{}
	s := NewTemplateSender(ct, "noreply@authhero.dev")
	link := "https://auth/passwordless/verify_redirect?a=1&b=<x>"
	require.NoError(t, s.SendLink(context.Background(), repository.Tenant{Name: "T"}, i18n.Spanish, "u@x.com", "111111", link))
	m := ct.msgs[0]
	assert.Equal(t, "noreply@authhero.dev", m.From)
	assert.Equal(t, "Ingresá a T", m.Subject)
	assert.NotContains(t, m.HTML, "<x>")
}

func TestLogTransport(t *testing.T) {
	require.NoError(t, LogTransport{}.Deliver(context.Background(), Message{To: "a@b"}))
}
