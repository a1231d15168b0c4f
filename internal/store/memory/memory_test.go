package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/authhero/internal/domain/repository"
)

func TestTicketRemoveIsSingleUse(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.Tickets().Create(ctx, &repository.Ticket{ID: "t1", TenantID: "ten", ExpiresAt: time.Now().Add(time.Minute)}))

	var ok int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.Tickets().Remove(ctx, "ten", "t1") == nil {
				atomic.AddInt32(&ok, 1)
			}
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 1, ok)
}

func TestOTPAndCodeRemove(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.OTPs().Create(ctx, &repository.OTP{ID: "o1", TenantID: "ten", Email: "A@example.com", Code: "111111"}))
	list, err := s.OTPs().List(ctx, "ten", "a@example.com")
	require.NoError(t, err)
	assert.Len(t, list, 1)
	require.NoError(t, s.OTPs().Remove(ctx, "ten", "o1"))
	assert.ErrorIs(t, s.OTPs().Remove(ctx, "ten", "o1"), repository.ErrNotFound)

	require.NoError(t, s.Codes().Create(ctx, &repository.Code{ID: "c1", TenantID: "ten", UserID: "u1"}))
	require.NoError(t, s.Codes().Remove(ctx, "ten", "c1"))
	assert.ErrorIs(t, s.Codes().Remove(ctx, "ten", "c1"), repository.ErrNotFound)
}

func TestUsersFilterAndUpdate(t *testing.T) {
	ctx := context.Background()
	s := New()
	u1 := &repository.User{ID: "auth2|1", TenantID: "ten", Email: "x@example.com", Provider: "auth2"}
	u2 := &repository.User{ID: "email|2", TenantID: "ten", Email: "x@example.com", Provider: "email", LinkedTo: "auth2|1"}
	other := &repository.User{ID: "email|3", TenantID: "other", Email: "x@example.com", Provider: "email"}
	for _, u := range []*repository.User{u1, u2, other} {
		require.NoError(t, s.Users().Create(ctx, u))
	}
	assert.ErrorIs(t, s.Users().Create(ctx, u1), repository.ErrConflict)

	all, err := s.Users().GetByEmail(ctx, "ten", "X@example.com")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	byProvider, err := s.Users().List(ctx, "ten", repository.ListUsersFilter{Email: "x@example.com", Provider: "email"})
	require.NoError(t, err)
	require.Len(t, byProvider, 1)
	assert.Equal(t, "email|2", byProvider[0].ID)

	verified := true
	count := 3
	require.NoError(t, s.Users().Update(ctx, "ten", "auth2|1", repository.UserUpdate{EmailVerified: &verified, LoginCount: &count}))
	got, err := s.Users().Get(ctx, "ten", "auth2|1")
	require.NoError(t, err)
	assert.True(t, got.EmailVerified)
	assert.Equal(t, 3, got.LoginCount)

	require.NoError(t, s.Users().Unlink(ctx, "ten", "email|2"))
	got, err = s.Users().Get(ctx, "ten", "email|2")
	require.NoError(t, err)
	assert.Empty(t, got.LinkedTo)
}

func TestClientAggregate(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.Admin().UpsertTenant(ctx, repository.Tenant{ID: "ten", Name: "Tenant"}))
	require.NoError(t, s.Admin().UpsertApplication(ctx, repository.Application{ID: "app", TenantID: "ten", Callbacks: []string{"https://a/cb"}}))
	require.NoError(t, s.Admin().UpsertConnection(ctx, repository.Connection{ID: "c1", TenantID: "ten", Name: "google-oauth2"}))

	c, err := s.Clients().Get(ctx, "app")
	require.NoError(t, err)
	assert.Equal(t, "Tenant", c.Tenant.Name)
	assert.Len(t, c.Connections, 1)

	_, err = s.Clients().Get(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, s.Admin().UpsertApplication(ctx, repository.Application{ID: "x", TenantID: "nope"}), repository.ErrInvalidInput)
}

func TestSessionSoftDelete(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.Sessions().Create(ctx, &repository.Session{ID: "s1", TenantID: "ten", ExpiresAt: time.Now().Add(time.Hour)}))
	require.NoError(t, s.Sessions().Remove(ctx, "ten", "s1"))
	got, err := s.Sessions().Get(ctx, "ten", "s1")
	require.NoError(t, err)
	assert.NotNil(t, got.DeletedAt)
	assert.False(t, got.Active(time.Now()))
	assert.ErrorIs(t, s.Sessions().Remove(ctx, "ten", "s1"), repository.ErrNotFound)
}
