package connection

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/authhero/internal/domain/repository"
)

func fakeIdP(t *testing.T, withUserinfo bool) (*httptest.Server, *repository.Connection) {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.Form.Get("code") != "good" {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid_grant"})
			return
		}
		idt := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, jwtv5.MapClaims{
			"sub": "idt-sub", "email": "From@IDToken.com", "email_verified": "true", "name": "Id Token",
		})
		raw, _ := idt.SignedString([]byte("upstream"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "at-1", "token_type": "Bearer", "expires_in": 3600, "id_token": raw,
		})
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer at-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id": 42.0, "email": "user@example.com", "email_verified": true, "avatar_url": "https://img/x.png",
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	conn := &repository.Connection{
		Name:     "demo",
		Strategy: "oauth2",
		Options: repository.ConnectionOptions{
			ClientID:              "cid",
			ClientSecret:          "csecret",
			AuthorizationEndpoint: srv.URL + "/authorize",
			TokenEndpoint:         srv.URL + "/token",
			Scope:                 "openid email",
		},
	}
	if withUserinfo {
		conn.Options.UserinfoEndpoint = srv.URL + "/userinfo"
	}
	return srv, conn
}

func TestAuthCodeURL(t *testing.T) {
	_, conn := fakeIdP(t, false)
	conn.Options.ResponseMode = "form_post"
	u, err := New(nil).AuthCodeURL(conn, "https://auth.example.com/callback", "st")
	require.NoError(t, err)

	parsed, err := url.Parse(u)
	require.NoError(t, err)
	q := parsed.Query()
	assert.Equal(t, "cid", q.Get("client_id"))
	assert.Equal(t, "st", q.Get("state"))
	assert.Equal(t, "openid email", q.Get("scope"))
	assert.Equal(t, "form_post", q.Get("response_mode"))
	assert.Equal(t, "https://auth.example.com/callback", q.Get("redirect_uri"))
}

func TestExchangeUsesIDTokenClaims(t *testing.T) {
	srv, conn := fakeIdP(t, false)
	p, err := New(srv.Client()).Exchange(context.Background(), conn, "https://auth/cb", "good")
	require.NoError(t, err)
	assert.Equal(t, "idt-sub", p.Sub)
	assert.Equal(t, "from@idtoken.com", p.Email)
	assert.True(t, p.EmailVerified)
}

func TestExchangePrefersUserinfo(t *testing.T) {
	srv, conn := fakeIdP(t, true)
	p, err := New(srv.Client()).Exchange(context.Background(), conn, "https://auth/cb", "good")
	require.NoError(t, err)
	assert.Equal(t, "42", p.Sub)
	assert.Equal(t, "user@example.com", p.Email)
	assert.Equal(t, "https://img/x.png", p.Picture)
}

func TestExchangeBadCode(t *testing.T) {
	srv, conn := fakeIdP(t, false)
	_, err := New(srv.Client()).Exchange(context.Background(), conn, "https://auth/cb", "bad")
	require.Error(t, err)
}

func TestMisconfiguredConnection(t *testing.T) {
	_, err := New(nil).AuthCodeURL(&repository.Connection{Name: "x"}, "cb", "st")
	require.ErrorIs(t, err, ErrMisconfigured)
}

func TestAppleClientSecret(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	der, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)
	pemKey := string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}))

	now := time.Now()
	secret, err := AppleClientSecret(repository.ConnectionOptions{
		ClientID: "com.example.web", TeamID: "TEAM", KeyID: "KID1", PrivateKey: pemKey,
	}, now)
	require.NoError(t, err)

	tok, err := jwtv5.Parse(secret, func(tk *jwtv5.Token) (any, error) {
		assert.Equal(t, "KID1", tk.Header["kid"])
		return &key.PublicKey, nil
	}, jwtv5.WithValidMethods([]string{"ES256"}), jwtv5.WithAudience(appleAudience), jwtv5.WithIssuer("TEAM"))
	require.NoError(t, err)
	sub, _ := tok.Claims.GetSubject()
	assert.Equal(t, "com.example.web", sub)

	_, err = AppleClientSecret(repository.ConnectionOptions{ClientID: "x"}, now)
	require.ErrorIs(t, err, ErrMisconfigured)
}

func TestGooglePresetFillsEndpoints(t *testing.T) {
	conn := &repository.Connection{Name: "google-oauth2", Strategy: StrategyGoogle,
		Options: repository.ConnectionOptions{ClientID: "gid"}}
	u, err := New(nil).AuthCodeURL(conn, "https://auth/cb", "st")
	require.NoError(t, err)
	parsed, err := url.Parse(u)
	require.NoError(t, err)
	assert.Equal(t, "accounts.google.com", parsed.Host)
	assert.Equal(t, "openid email profile", parsed.Query().Get("scope"))
}

func TestGitHubFetchesPrimaryEmail(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/login/oauth/access_token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "gh-at", "token_type": "bearer"})
	})
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"id": 7.0, "login": "octo", "email": nil})
	})
	mux.HandleFunc("/user/emails", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer gh-at", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode([]githubEmail{
			{Email: "old@example.com", Verified: false, Primary: false},
			{Email: "Octo@Example.com", Verified: true, Primary: true},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	orig := presets[StrategyGitHub]
	gh := orig
	gh.AuthorizationEndpoint = srv.URL + "/login/oauth/authorize"
	gh.TokenEndpoint = srv.URL + "/login/oauth/access_token"
	gh.UserinfoEndpoint = srv.URL + "/user"
	gh.EmailsEndpoint = srv.URL + "/user/emails"
	presets[StrategyGitHub] = gh
	t.Cleanup(func() { presets[StrategyGitHub] = orig })

	conn := &repository.Connection{Name: "github", Strategy: StrategyGitHub,
		Options: repository.ConnectionOptions{ClientID: "ghid", ClientSecret: "ghsecret"}}
	p, err := New(srv.Client()).Exchange(context.Background(), conn, "https://auth/cb", "c")
	require.NoError(t, err)
	assert.Equal(t, "7", p.Sub)
	assert.Equal(t, "octo@example.com", p.Email)
	assert.True(t, p.EmailVerified)
	assert.Equal(t, "octo", p.Nickname)
}
