package pg

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/authhero/internal/domain/repository"
	"github.com/dropDatabas3/authhero/migrations/postgres"
)

func TestMapErr(t *testing.T) {
	require.NoError(t, mapErr("x", nil))
	require.ErrorIs(t, mapErr("x", pgx.ErrNoRows), repository.ErrNotFound)
	require.ErrorIs(t, mapErr("x", &pgconn.PgError{Code: "23505"}), repository.ErrConflict)
	require.ErrorIs(t, mapErr("x", &pgconn.PgError{Code: "23503"}), repository.ErrInvalidInput)
	other := errors.New("boom")
	require.ErrorIs(t, mapErr("x", other), other)
}

// Integración: requiere AUTHHERO_TEST_DSN apuntando a una base descartable.
func openTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("AUTHHERO_TEST_DSN")
	if dsn == "" {
		t.Skip("AUTHHERO_TEST_DSN not set")
	}
	ctx := context.Background()
	pool, err := Connect(ctx, dsn, PoolConfig{MaxConns: 4})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, migrations.Up(ctx, pool))
	return New(pool)
}

func seedTenant(t *testing.T, s *Store) (tenantID, clientID string) {
	t.Helper()
	ctx := context.Background()
	tenantID = "t-" + uuid.NewString()[:8]
	clientID = "c-" + uuid.NewString()[:8]
	require.NoError(t, s.Admin().UpsertTenant(ctx, repository.Tenant{ID: tenantID, Name: "Test", Language: "en"}))
	require.NoError(t, s.Admin().UpsertApplication(ctx, repository.Application{
		ID: clientID, TenantID: tenantID, Name: "app",
		Callbacks: []string{"https://app.example.com/cb"},
	}))
	require.NoError(t, s.Admin().UpsertConnection(ctx, repository.Connection{
		ID: uuid.NewString(), TenantID: tenantID, Name: "google-oauth2", Strategy: "google-oauth2",
		Options: repository.ConnectionOptions{ClientID: "gid", Scope: "openid email"},
	}))
	return tenantID, clientID
}

func TestClientAggregate(t *testing.T) {
	s := openTestStore(t)
	tenantID, clientID := seedTenant(t, s)

	c, err := s.Clients().Get(context.Background(), clientID)
	require.NoError(t, err)
	require.Equal(t, tenantID, c.Tenant.ID)
	require.Equal(t, []string{"https://app.example.com/cb"}, c.Callbacks)
	conn, ok := c.Connection("GOOGLE-OAUTH2")
	require.True(t, ok)
	require.Equal(t, "gid", conn.Options.ClientID)

	_, err = s.Clients().Get(context.Background(), "missing")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUsersLinkAndFilter(t *testing.T) {
	s := openTestStore(t)
	tenantID, _ := seedTenant(t, s)
	ctx := context.Background()

	primary := &repository.User{TenantID: tenantID, ID: "email|1", Email: "A@x.com", EmailVerified: true, Provider: "email", Connection: "email"}
	require.NoError(t, s.Users().Create(ctx, primary))
	require.ErrorIs(t, s.Users().Create(ctx, primary), repository.ErrConflict)

	sec := &repository.User{TenantID: tenantID, ID: "google-oauth2|9", Email: "a@x.com", Provider: "google-oauth2", Connection: "google-oauth2", IsSocial: true, LinkedTo: primary.ID}
	require.NoError(t, s.Users().Create(ctx, sec))

	all, err := s.Users().GetByEmail(ctx, tenantID, "a@X.com")
	require.NoError(t, err)
	require.Len(t, all, 2)

	linked, err := s.Users().List(ctx, tenantID, repository.ListUsersFilter{LinkedTo: primary.ID})
	require.NoError(t, err)
	require.Len(t, linked, 1)

	require.NoError(t, s.Users().Unlink(ctx, tenantID, sec.ID))
	got, err := s.Users().Get(ctx, tenantID, sec.ID)
	require.NoError(t, err)
	require.Empty(t, got.LinkedTo)
}

func TestTicketRemoveIsSingleUse(t *testing.T) {
	s := openTestStore(t)
	tenantID, clientID := seedTenant(t, s)
	ctx := context.Background()
	now := time.Now().UTC()

	tk := &repository.Ticket{ID: uuid.NewString(), TenantID: tenantID, ClientID: clientID, Email: "a@x.com",
		AuthParams: repository.AuthParams{ClientID: clientID, Scope: "openid"}, CreatedAt: now, ExpiresAt: now.Add(time.Minute)}
	require.NoError(t, s.Tickets().Create(ctx, tk))

	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.Tickets().Remove(ctx, tenantID, tk.ID); err == nil {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	wg.Wait()
	require.EqualValues(t, 1, wins)
}

func TestKeysRevoke(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	kid := uuid.NewString()
	require.NoError(t, s.Keys().Create(ctx, &repository.SigningKey{KID: kid, PrivateKey: "p", PublicKey: "q", CreatedAt: time.Now(), ActivateAt: time.Now()}))
	require.NoError(t, s.Keys().Revoke(ctx, kid, time.Now()))
	require.ErrorIs(t, s.Keys().Revoke(ctx, "nope", time.Now()), repository.ErrNotFound)
}
