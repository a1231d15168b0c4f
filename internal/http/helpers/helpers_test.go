package helpers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.1:5555"
	assert.Equal(t, "10.0.0.1", ClientIP(r))

	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	assert.Equal(t, "203.0.113.7", ClientIP(r))
}

func TestBasicAuthUnescapes(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/oauth/token", nil)
	r.SetBasicAuth("app%3A1", "s%2Bcret")
	id, secret, ok := BasicAuth(r)
	require.True(t, ok)
	assert.Equal(t, "app:1", id)
	assert.Equal(t, "s+cret", secret)
}

func TestReadParamsFormAndJSON(t *testing.T) {
	form := url.Values{"client_id": {"abc"}, "grant_type": {"authorization_code"}}
	r := httptest.NewRequest(http.MethodPost, "/oauth/token", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	v, err := ReadParams(httptest.NewRecorder(), r)
	require.NoError(t, err)
	assert.Equal(t, "abc", v.Get("client_id"))

	body := `{"client_id":"abc","send":"code","authParams":{"redirect_uri":"https://app/cb","state":"xyz"}}`
	r = httptest.NewRequest(http.MethodPost, "/passwordless/start", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	v, err = ReadParams(httptest.NewRecorder(), r)
	require.NoError(t, err)
	assert.Equal(t, "code", v.Get("send"))

	p := AuthParams(v, "authParams.")
	assert.Equal(t, "abc", p.ClientID)
	assert.Equal(t, "https://app/cb", p.RedirectURI)
	assert.Equal(t, "xyz", p.State)
}

func TestAuthParamsLoginHint(t *testing.T) {
	p := AuthParams(url.Values{"login_hint": {"Foo@Example.com"}}, "")
	assert.Equal(t, "foo@example.com", p.Username)
}

func TestSessionCookie(t *testing.T) {
	ck := BuildCookie(SessionCookieName("acme"), "sid-1", CookieConfig{SameSite: "None"})
	assert.Equal(t, "acme-auth-token", ck.Name)
	assert.True(t, ck.HttpOnly)
	assert.True(t, ck.Secure, "SameSite=None forces Secure")

	r := httptest.NewRequest(http.MethodGet, "/authorize", nil)
	r.AddCookie(ck)
	assert.Equal(t, "sid-1", SessionID(r, "acme"))
	assert.Equal(t, "", SessionID(r, "other"))

	del := BuildDeletionCookie(ck.Name, CookieConfig{SameSite: "lax"})
	assert.Equal(t, -1, del.MaxAge)
}
