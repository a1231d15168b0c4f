package auth

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/authhero/internal/audit"
	"github.com/dropDatabas3/authhero/internal/domain/repository"
	"github.com/dropDatabas3/authhero/internal/http/services/common"
	"github.com/dropDatabas3/authhero/internal/jwt"
	"github.com/dropDatabas3/authhero/internal/oauth/connection"
	"github.com/dropDatabas3/authhero/internal/oauth/state"
	"github.com/dropDatabas3/authhero/internal/store/memory"
)

const (
	testBase     = "https://auth.example.com/"
	testTenant   = "acme"
	testClientID = "app1"
	testCallback = "https://app.example.com/callback"
)

type sentMail struct {
	Kind string
	To   string
	Code string
	Link string
}

type fakeSender struct {
	mu   sync.Mutex
	sent []sentMail
}

func (f *fakeSender) add(m sentMail) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, m)
	return nil
}

func (f *fakeSender) SendCode(_ context.Context, _ repository.Tenant, _, to, code string, _ time.Duration) error {
	return f.add(sentMail{Kind: "code", To: to, Code: code})
}

func (f *fakeSender) SendLink(_ context.Context, _ repository.Tenant, _, to, code, link string) error {
	return f.add(sentMail{Kind: "link", To: to, Code: code, Link: link})
}

func (f *fakeSender) SendResetPassword(_ context.Context, _ repository.Tenant, _, to, link string) error {
	return f.add(sentMail{Kind: "reset", To: to, Link: link})
}

func (f *fakeSender) SendValidateEmailAddress(_ context.Context, _ repository.Tenant, _, to, link string) error {
	return f.add(sentMail{Kind: "validate", To: to, Link: link})
}

func (f *fakeSender) last(t *testing.T) sentMail {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.sent, "no email sent")
	return f.sent[len(f.sent)-1]
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type recordingAudit struct {
	mu     sync.Mutex
	events []audit.Event
}

func (r *recordingAudit) Emit(_ context.Context, e audit.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingAudit) last(t *testing.T) audit.Event {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.events, "no audit event")
	return r.events[len(r.events)-1]
}

func (r *recordingAudit) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

// fakeConnections devuelve profile en Exchange y guarda el último state.
type fakeConnections struct {
	profile   *connection.Profile
	err       error
	lastState string
}

func (f *fakeConnections) AuthCodeURL(conn *repository.Connection, redirectURI, st string) (string, error) {
	f.lastState = st
	return "https://idp.example.com/authorize?state=" + url.QueryEscape(st) +
		"&redirect_uri=" + url.QueryEscape(redirectURI) + "&client_id=" + conn.Options.ClientID, nil
}

func (f *fakeConnections) Exchange(context.Context, *repository.Connection, string, string) (*connection.Profile, error) {
	return f.profile, f.err
}

type harness struct {
	svc   *Service
	store *memory.Store
	mail  *fakeSender
	audit *recordingAudit
	conns *fakeConnections
	codes *state.Codec
}

func newHarness(t *testing.T, app func(*repository.Application)) *harness {
	t.Helper()
	ctx := context.Background()
	st := memory.New()
	require.NoError(t, st.Admin().UpsertTenant(ctx, repository.Tenant{ID: testTenant, Name: "Acme", Audience: "https://api.acme", Language: "en"}))
	a := repository.Application{
		ID:              testClientID,
		TenantID:        testTenant,
		ClientSecret:    "s3cret",
		Callbacks:       []string{testCallback},
		WebOrigins:      []string{"https://app.example.com"},
		EmailValidation: repository.EmailValidationDisabled,
	}
	if app != nil {
		app(&a)
	}
	require.NoError(t, st.Admin().UpsertApplication(ctx, a))
	require.NoError(t, st.Admin().UpsertConnection(ctx, repository.Connection{
		ID: "con1", TenantID: testTenant, Name: "google-oauth2", Strategy: "google-oauth2",
		Options: repository.ConnectionOptions{ClientID: "gid"},
	}))

	ks := jwt.NewKeystore(st.Keys())
	require.NoError(t, ks.EnsureBootstrap(ctx))
	codec, err := state.New([]byte(strings.Repeat("k", 32)), testBase)
	require.NoError(t, err)

	h := &harness{store: st, mail: &fakeSender{}, audit: &recordingAudit{}, conns: &fakeConnections{}, codes: codec}
	h.svc = NewService(Deps{
		Clients:       st.Clients(),
		Users:         st.Users(),
		Passwords:     st.Passwords(),
		Sessions:      st.Sessions(),
		Tickets:       st.Tickets(),
		OTPs:          st.OTPs(),
		Codes:         st.Codes(),
		LoginSessions: st.LoginSessions(),
		Email:         h.mail,
		Audit:         h.audit,
		Minter: &common.Minter{
			Issuer:  jwt.NewIssuer(ks, time.Hour, time.Hour),
			Codes:   codec,
			BaseURL: testBase,
			CodeTTL: time.Minute,
		},
		States:      codec,
		Connections: h.conns,
		Config:      Config{BaseURL: testBase},
	})
	return h
}

func (h *harness) client(t *testing.T) *repository.Client {
	t.Helper()
	c, err := h.svc.Client(context.Background(), testClientID)
	require.NoError(t, err)
	return c
}

// addPasswordUser crea una identidad auth2 con password.
func (h *harness) addPasswordUser(t *testing.T, id, email, pw string, verified bool) *repository.User {
	t.Helper()
	ctx := context.Background()
	u := &repository.User{
		ID: id, TenantID: testTenant, Email: email, EmailVerified: verified,
		Provider: repository.ProviderPassword, Connection: repository.RealmPassword,
	}
	require.NoError(t, h.store.Users().Create(ctx, u))
	require.NoError(t, h.svc.setPassword(ctx, testTenant, id, pw))
	return u
}

func (h *harness) user(t *testing.T, id string) *repository.User {
	t.Helper()
	u, err := h.store.Users().Get(context.Background(), testTenant, id)
	require.NoError(t, err)
	return u
}

func codeParams() repository.AuthParams {
	return repository.AuthParams{
		ClientID:     testClientID,
		RedirectURI:  testCallback,
		ResponseType: "code",
		Scope:        "openid",
		State:        "st4te",
	}
}

// redirectQuery parsea el query del redirect del Outcome.
func redirectQuery(t *testing.T, out *common.Outcome) url.Values {
	t.Helper()
	require.NotNil(t, out)
	require.NotEmpty(t, out.Redirect)
	u, err := url.Parse(out.Redirect)
	require.NoError(t, err)
	return u.Query()
}

// linkParams devuelve state y code de un link /u/*.
func linkParams(t *testing.T, link string) (string, string) {
	t.Helper()
	u, err := url.Parse(link)
	require.NoError(t, err)
	return u.Query().Get("state"), u.Query().Get("code")
}
