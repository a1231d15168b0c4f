package oidc

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/authhero/internal/domain/repository"
	"github.com/dropDatabas3/authhero/internal/http/services/auth"
	"github.com/dropDatabas3/authhero/internal/jwt"
	"github.com/dropDatabas3/authhero/internal/store/memory"
)

const base = "https://auth.example.com/"

func setup(t *testing.T) (*Service, *jwt.Issuer) {
	t.Helper()
	ctx := context.Background()
	st := memory.New()
	users := st.Users()
	require.NoError(t, users.Create(ctx, &repository.User{ID: "auth2|A", TenantID: "acme", Email: "a@example.com", EmailVerified: true, Name: "Ann", Provider: "auth2"}))
	require.NoError(t, users.Create(ctx, &repository.User{ID: "google|1", TenantID: "acme", Email: "a@example.com", Provider: "google", LinkedTo: "auth2|A"}))

	ks := jwt.NewKeystore(st.Keys())
	require.NoError(t, ks.EnsureBootstrap(ctx))
	iss := jwt.NewIssuer(ks, time.Hour, time.Hour)
	return NewService(iss, users, auth.NewResolver(users), base), iss
}

func access(t *testing.T, iss *jwt.Issuer, sub, tenant string) string {
	t.Helper()
	tok, err := iss.CreateAccessToken(context.Background(), jwt.AccessTokenParams{
		Issuer: base, Subject: sub, Audience: "https://api.acme", AZP: "app1", TenantID: tenant,
	})
	require.NoError(t, err)
	return tok
}

func TestUserinfoReturnsPrincipal(t *testing.T) {
	svc, iss := setup(t)
	info, err := svc.Userinfo(context.Background(), access(t, iss, "google|1", "acme"))
	require.NoError(t, err)
	assert.Equal(t, "auth2|A", info.Sub)
	assert.Equal(t, "Ann", info.Name)
	assert.True(t, info.EmailVerified)
	assert.NotEmpty(t, info.UpdatedAt)
}

func TestUserinfoRejects(t *testing.T) {
	svc, iss := setup(t)
	ctx := context.Background()

	for name, tok := range map[string]string{
		"empty":        "",
		"garbage":      "not.a.jwt",
		"no tenant":    access(t, iss, "auth2|A", ""),
		"unknown user": access(t, iss, "auth2|ghost", "acme"),
		"client token": access(t, iss, "app1", "acme"),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Userinfo(ctx, tok)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}

	iss.Now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired := access(t, iss, "auth2|A", "acme")
	iss.Now = time.Now
	_, err := svc.Userinfo(ctx, expired)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestDiscoveryAndJWKS(t *testing.T) {
	svc, _ := setup(t)
	doc := svc.Discovery()
	assert.Equal(t, base, doc.Issuer)
	assert.Equal(t, base+".well-known/jwks.json", doc.JWKSURI)
	assert.Contains(t, doc.CodeChallengeMethodsSupported, "S256")

	raw, err := svc.JWKS(context.Background())
	require.NoError(t, err)
	var set struct {
		Keys []map[string]any `json:"keys"`
	}
	require.NoError(t, json.Unmarshal(raw, &set))
	require.NotEmpty(t, set.Keys)
	assert.Equal(t, "RS256", set.Keys[0]["alg"])
}
