package respond

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/authhero/internal/domain/repository"
	"github.com/dropDatabas3/authhero/internal/http/helpers"
	"github.com/dropDatabas3/authhero/internal/http/render"
	"github.com/dropDatabas3/authhero/internal/http/services/auth"
	"github.com/dropDatabas3/authhero/internal/http/services/common"
	"github.com/dropDatabas3/authhero/internal/i18n"
)

type recRenderer struct {
	status int
	page   render.Page
}

func (r *recRenderer) Render(w http.ResponseWriter, status int, p render.Page) error {
	r.status, r.page = status, p
	w.WriteHeader(status)
	return nil
}

func newWriter() (*Writer, *recRenderer) {
	rr := &recRenderer{}
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	wr := New(rr, helpers.CookieConfig{SameSite: "None"})
	wr.Now = func() time.Time { return now }
	return wr, rr
}

func TestOutcomeRedirectSetsSessionCookie(t *testing.T) {
	wr, _ := newWriter()
	out := common.RedirectTo("https://app.example.com/cb?code=abc")
	out.Session = &repository.Session{ID: "sid-1", TenantID: "acme", ExpiresAt: wr.Now().Add(time.Hour)}

	w := httptest.NewRecorder()
	wr.Outcome(w, httptest.NewRequest(http.MethodGet, "/u/enter-password", nil), out)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://app.example.com/cb?code=abc", w.Header().Get("Location"))
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "acme-auth-token", cookies[0].Name)
	assert.Equal(t, "sid-1", cookies[0].Value)
	assert.Equal(t, 3600, cookies[0].MaxAge)
	assert.True(t, cookies[0].Secure)
}

func TestOutcomeClearsSessionAndRendersPage(t *testing.T) {
	wr, rr := newWriter()
	out := common.PageOf(http.StatusOK, render.Page{Name: render.PageInfo, Message: i18n.MsgLoggedOut})
	out.ClearSessionOf = "acme"

	w := httptest.NewRecorder()
	wr.Outcome(w, httptest.NewRequest(http.MethodGet, "/v2/logout", nil), out)

	assert.Equal(t, http.StatusOK, rr.status)
	assert.Equal(t, i18n.MsgLoggedOut, rr.page.Message)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestOutcomeJSON(t *testing.T) {
	wr, _ := newWriter()
	w := httptest.NewRecorder()
	wr.Outcome(w, httptest.NewRequest(http.MethodPost, "/", nil), &common.Outcome{JSON: map[string]string{"ok": "1"}, Status: http.StatusCreated})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"ok":"1"}`, w.Body.String())
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}

func TestOAuthErrorHidesInternals(t *testing.T) {
	wr, _ := newWriter()
	w := httptest.NewRecorder()
	wr.OAuthError(w, httptest.NewRequest(http.MethodPost, "/oauth/token", nil), errors.New("pg: connection refused"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"server_error","error_description":"internal error"}`, w.Body.String())

	w = httptest.NewRecorder()
	wr.OAuthError(w, httptest.NewRequest(http.MethodPost, "/oauth/token", nil), auth.NewError(auth.KindInvalidGrant, "code expired"))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"error":"invalid_grant","error_description":"code expired"}`, w.Body.String())
}

func TestPageError(t *testing.T) {
	wr, rr := newWriter()
	r := httptest.NewRequest(http.MethodGet, "/u/enter-email?state=x", nil)
	r.Header.Set("Accept-Language", "es-AR,es;q=0.9")

	wr.PageError(httptest.NewRecorder(), r, auth.ErrInvalidState)
	assert.Equal(t, http.StatusBadRequest, rr.status)
	assert.Equal(t, i18n.MsgSessionExpired, rr.page.Error)
	assert.Equal(t, "es", rr.page.Lang)

	wr.PageError(httptest.NewRecorder(), r, errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, rr.status)
	assert.Equal(t, i18n.MsgSomethingWentWrong, rr.page.Error)
}

func TestBearer(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/userinfo", nil)
	assert.Equal(t, "", Bearer(r))
	r.Header.Set("Authorization", "bearer abc.def")
	assert.Equal(t, "abc.def", Bearer(r))
	r.Header.Set("Authorization", "Basic Zm9v")
	assert.Equal(t, "", Bearer(r))
}
