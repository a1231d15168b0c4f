package cache

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Memory implementa Client sobre patrickmn/go-cache.
type Memory struct {
	prefix string
	c      *gocache.Cache
	// take serializa Get+Delete; go-cache no tiene GETDEL.
	take sync.Mutex
}

// NewMemory crea un cache in-process con barrido de expirados cada minuto.
func NewMemory(prefix string) *Memory {
	return &Memory{prefix: prefix, c: gocache.New(gocache.NoExpiration, time.Minute)}
}

func (m *Memory) k(key string) string { return m.prefix + key }

func ttlOf(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return gocache.NoExpiration
	}
	return ttl
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := m.c.Get(m.k(key))
	if !ok {
		return nil, ErrNotFound
	}
	return v.([]byte), nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.c.Set(m.k(key), append([]byte(nil), value...), ttlOf(ttl))
	return nil
}

func (m *Memory) Add(_ context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	if err := m.c.Add(m.k(key), append([]byte(nil), value...), ttlOf(ttl)); err != nil {
		return false, nil
	}
	return true, nil
}

func (m *Memory) Take(_ context.Context, key string) ([]byte, error) {
	m.take.Lock()
	defer m.take.Unlock()
	v, ok := m.c.Get(m.k(key))
	if !ok {
		return nil, ErrNotFound
	}
	m.c.Delete(m.k(key))
	return v.([]byte), nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.c.Delete(m.k(key))
	return nil
}

func (m *Memory) Ping(context.Context) error { return nil }

func (m *Memory) Close() error {
	m.c.Flush()
	return nil
}
