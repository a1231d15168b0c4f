package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/authhero/internal/domain/repository"
	"github.com/dropDatabas3/authhero/internal/security/password"
	"github.com/dropDatabas3/authhero/internal/store/memory"
)

const seedYAML = `
tenants:
  - id: acme
    name: Acme
    language: es
    applications:
      - client_id: app1
        name: Web
        callbacks: ["https://app.example.com/callback"]
        web_origins: ["https://app.example.com"]
    connections:
      - name: google-oauth2
        strategy: google-oauth2
        options:
          client_id: gid
          client_secret: gsecret
    users:
      - email: Admin@Example.com
        password: Secret123!
        email_verified: true
`

func writeSeed(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestApplyIsIdempotent(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	dst := Target{Admin: st.Admin(), Users: st.Users(), Passwords: st.Passwords()}

	f, err := Load(writeSeed(t, seedYAML))
	require.NoError(t, err)

	res, err := Apply(ctx, dst, f)
	require.NoError(t, err)
	assert.Equal(t, Result{Tenants: 1, Applications: 1, Connections: 1, Users: 1}, res)

	client, err := st.Clients().Get(ctx, "app1")
	require.NoError(t, err)
	assert.Equal(t, "acme", client.TenantID)
	assert.Equal(t, repository.EmailValidationEnabled, client.EmailValidation)
	conn, ok := client.Connection("google-oauth2")
	require.True(t, ok)
	assert.Equal(t, "gid", conn.Options.ClientID)

	users, err := st.Users().GetByEmail(ctx, "acme", "admin@example.com")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.True(t, users[0].EmailVerified)
	assert.Equal(t, repository.RealmPassword, users[0].Connection)
	pw, err := st.Passwords().Get(ctx, "acme", users[0].ID)
	require.NoError(t, err)
	assert.True(t, password.Verify("Secret123!", pw.Hash))

	res, err = Apply(ctx, dst, f)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Users)
	assert.Equal(t, 1, res.SkippedUsers)
}

func TestLoadRejects(t *testing.T) {
	cases := map[string]string{
		"dotted tenant":     "tenants:\n  - id: a.b\n",
		"missing id":        "tenants:\n  - name: x\n",
		"unknown field":     "tenants:\n  - id: a\n    colour: red\n",
		"bad validation":    "tenants:\n  - id: a\n    applications:\n      - client_id: c\n        email_validation: sometimes\n",
		"user w/o password": "tenants:\n  - id: a\n    users:\n      - email: x@example.com\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeSeed(t, body))
			assert.Error(t, err)
		})
	}
}
