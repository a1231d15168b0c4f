package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "memory", c.Storage.Driver)
	assert.Equal(t, "sql", c.Storage.Ephemeral)
	assert.Equal(t, 24*time.Hour, c.JWT.AccessTTL)
	assert.Equal(t, 5*time.Minute, c.Auth.TicketTTL)
	assert.Equal(t, ":8080", c.Server.Addr)
}

func TestLoadYAMLAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yml := `
app:
  issuer: https://auth.example.com/
storage:
  driver: postgres
  dsn: postgres://u:p@localhost/db
jwt:
  access_ttl: 1h
auth:
  otp_ttl: 90s
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))
	t.Setenv("AUTHHERO_ADDR", ":9999")
	t.Setenv("AUTHHERO_ACCESS_TTL", "2h")

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://auth.example.com/", c.App.Issuer)
	assert.Equal(t, "postgres", c.Storage.Driver)
	assert.Equal(t, 2*time.Hour, c.JWT.AccessTTL)
	assert.Equal(t, 90*time.Second, c.Auth.OTPTTL)
	assert.Equal(t, ":9999", c.Server.Addr)
}

func TestValidate(t *testing.T) {
	t.Run("postgres without dsn", func(t *testing.T) {
		t.Setenv("AUTHHERO_STORAGE_DRIVER", "postgres")
		_, err := Load("")
		assert.Error(t, err)
	})
	t.Run("redis without addr", func(t *testing.T) {
		t.Setenv("AUTHHERO_CACHE_KIND", "redis")
		_, err := Load("")
		assert.Error(t, err)
	})
	t.Run("prod requires state secret", func(t *testing.T) {
		t.Setenv("AUTHHERO_ENV", "prod")
		_, err := Load("")
		assert.Error(t, err)

		t.Setenv("AUTHHERO_STATE_SECRET", "0123456789abcdef0123456789abcdef")
		c, err := Load("")
		require.NoError(t, err)
		assert.True(t, c.Auth.Cookie.Secure)
	})
}
