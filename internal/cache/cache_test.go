package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/authhero/internal/domain/repository"
)

func backends(t *testing.T) map[string]Client {
	t.Helper()
	mr := miniredis.RunT(t)
	r, err := DialRedis(Config{Addr: mr.Addr(), Prefix: "test:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return map[string]Client{"memory": NewMemory("test:"), "redis": r}
}

func TestClientContract(t *testing.T) {
	ctx := context.Background()
	for name, c := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := c.Get(ctx, "missing")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
			got, err := c.Get(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, "v", string(got))

			ok, err := c.Add(ctx, "k", []byte("other"), time.Minute)
			require.NoError(t, err)
			assert.False(t, ok)
			ok, err = c.Add(ctx, "fresh", []byte("x"), time.Minute)
			require.NoError(t, err)
			assert.True(t, ok)

			got, err = c.Take(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, "v", string(got))
			_, err = c.Take(ctx, "k")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, c.Delete(ctx, "fresh"))
			_, err = c.Get(ctx, "fresh")
			assert.ErrorIs(t, err, ErrNotFound)
			assert.NoError(t, c.Ping(ctx))
		})
	}
}

func TestTakeConcurrentSingleWinner(t *testing.T) {
	ctx := context.Background()
	for name, c := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, c.Set(ctx, "once", []byte("1"), time.Minute))
			var wins int32
			var wg sync.WaitGroup
			for i := 0; i < 16; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					if _, err := c.Take(ctx, "once"); err == nil {
						atomic.AddInt32(&wins, 1)
					}
				}()
			}
			wg.Wait()
			assert.EqualValues(t, 1, wins)
		})
	}
}

func TestRedisTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	r, err := DialRedis(Config{Addr: mr.Addr()})
	require.NoError(t, err)
	defer r.Close()
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "k", []byte("v"), time.Second))
	mr.FastForward(2 * time.Second)
	_, err = r.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

type countingClients struct {
	calls int32
}

func (c *countingClients) Get(_ context.Context, id string) (*repository.Client, error) {
	atomic.AddInt32(&c.calls, 1)
	if id == "missing" {
		return nil, repository.ErrNotFound
	}
	return &repository.Client{Application: repository.Application{ID: id}}, nil
}

func TestCachedClients(t *testing.T) {
	next := &countingClients{}
	cc := NewCachedClients(next, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		c, err := cc.Get(ctx, "app")
		require.NoError(t, err)
		assert.Equal(t, "app", c.ID)
	}
	assert.EqualValues(t, 1, atomic.LoadInt32(&next.calls))

	_, err := cc.Get(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, _ = cc.Get(ctx, "missing")
	assert.EqualValues(t, 3, atomic.LoadInt32(&next.calls))

	cc.Invalidate("app")
	_, err = cc.Get(ctx, "app")
	require.NoError(t, err)
	assert.EqualValues(t, 4, atomic.LoadInt32(&next.calls))
}
