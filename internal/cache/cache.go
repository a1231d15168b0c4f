// Package cache es el key-value con TTL del servidor: caches de lectura y
// estado efímero (tickets, universal login sessions, replay de codes).
//
// Backends: go-cache (in-process) y Redis.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound: la key no existe o expiró.
var ErrNotFound = errors.New("cache: key not found")

// Client define las operaciones KV.
type Client interface {
	// Get devuelve ErrNotFound si la key no existe.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set guarda value; ttl 0 = sin expiración.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Add guarda sólo si la key no existe. false = ya existía.
	Add(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
	// Take lee y borra atómicamente. ErrNotFound si no existía.
	Take(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

// Config para New.
type Config struct {
	Kind     string // memory | redis
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// New construye el Client según cfg.Kind.
func New(cfg Config) (Client, error) {
	switch cfg.Kind {
	case "redis":
		return DialRedis(cfg)
	default:
		return NewMemory(cfg.Prefix), nil
	}
}

// IsNotFound verifica si el error es ErrNotFound.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
