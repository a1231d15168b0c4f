package kv

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/authhero/internal/cache"
	"github.com/dropDatabas3/authhero/internal/domain/repository"
)

func redisClient(t *testing.T) (cache.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := cache.DialRedis(cache.Config{Addr: mr.Addr(), Prefix: "ah:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestTicketsSingleUse(t *testing.T) {
	c, _ := redisClient(t)
	tickets := NewTickets(c)
	ctx := context.Background()

	tk := &repository.Ticket{
		ID: "tk1", TenantID: "ten", ClientID: "app", Email: "a@example.com",
		AuthParams: repository.AuthParams{ClientID: "app", Scope: "openid"},
		ExpiresAt:  time.Now().Add(time.Minute),
	}
	require.NoError(t, tickets.Create(ctx, tk))
	assert.ErrorIs(t, tickets.Create(ctx, tk), repository.ErrConflict)

	got, err := tickets.Get(ctx, "ten", "tk1")
	require.NoError(t, err)
	assert.Equal(t, "openid", got.AuthParams.Scope)

	require.NoError(t, tickets.Remove(ctx, "ten", "tk1"))
	assert.ErrorIs(t, tickets.Remove(ctx, "ten", "tk1"), repository.ErrNotFound)
	_, err = tickets.Get(ctx, "ten", "tk1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestTicketsExpireWithTTL(t *testing.T) {
	c, mr := redisClient(t)
	tickets := NewTickets(c)
	ctx := context.Background()
	require.NoError(t, tickets.Create(ctx, &repository.Ticket{ID: "tk", TenantID: "ten", ExpiresAt: time.Now().Add(30 * time.Second)}))
	mr.FastForward(time.Minute)
	_, err := tickets.Get(ctx, "ten", "tk")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestLoginSessionsUpdate(t *testing.T) {
	ls := NewLoginSessions(cache.NewMemory(""))
	ctx := context.Background()
	s := &repository.UniversalLoginSession{ID: "st", TenantID: "ten", ClientID: "app", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, ls.Create(ctx, s))

	s.AuthParams.Username = "a@example.com"
	require.NoError(t, ls.Update(ctx, s))
	got, err := ls.Get(ctx, "ten", "st")
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", got.AuthParams.Username)

	missing := &repository.UniversalLoginSession{ID: "nope", TenantID: "ten", ExpiresAt: time.Now().Add(time.Hour)}
	assert.ErrorIs(t, ls.Update(ctx, missing), repository.ErrNotFound)
}

func TestReplayGuard(t *testing.T) {
	g := NewReplayGuard(cache.NewMemory(""))
	ctx := context.Background()
	first, err := g.Consume(ctx, "jti-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, first)
	again, err := g.Consume(ctx, "jti-1", time.Minute)
	require.NoError(t, err)
	assert.False(t, again)
}
