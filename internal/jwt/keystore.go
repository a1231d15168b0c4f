package jwt

import (
	"context"
	"crypto/rsa"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/dropDatabas3/authhero/internal/domain/repository"
	"github.com/dropDatabas3/authhero/internal/observability/logger"
)

var (
	ErrNoActiveKey = errors.New("jwt: no active signing key")
	ErrUnknownKID  = errors.New("jwt: unknown kid")
)

// Keystore resuelve la clave de firma activa y las claves publicadas a partir
// del KeyRepository, con un cache corto en memoria.
//
// Activa = la más reciente (created_at) sin revoked_at y con activate_at <= now.
// Publicada = sin revoked_at o con revoked_at todavía en el futuro (gracia).
type Keystore struct {
	repo repository.KeyRepository
	now  func() time.Time

	cacheTTL time.Duration

	mu         sync.RWMutex
	activeKID  string
	activePriv *rsa.PrivateKey
	cacheUntil time.Time

	jwks      []byte
	jwksUntil time.Time
}

func NewKeystore(repo repository.KeyRepository) *Keystore {
	return &Keystore{repo: repo, now: time.Now, cacheTTL: 30 * time.Second}
}

// WithClock reemplaza el reloj (tests).
func (k *Keystore) WithClock(now func() time.Time) *Keystore {
	k.now = now
	return k
}

// EnsureBootstrap crea una primera clave si no hay ninguna firmable.
func (k *Keystore) EnsureBootstrap(ctx context.Context) error {
	keys, err := k.repo.List(ctx)
	if err != nil {
		return err
	}
	if pickActive(keys, k.now()) != nil {
		return nil
	}
	nk, err := GenerateSigningKey(k.now().UTC())
	if err != nil {
		return err
	}
	if err := k.repo.Create(ctx, nk); err != nil {
		return err
	}
	logger.From(ctx).Info("signing key bootstrapped", logger.Component("keystore"), logger.KeyID(nk.KID))
	k.Invalidate()
	return nil
}

// Active devuelve kid + clave privada de firma.
func (k *Keystore) Active(ctx context.Context) (string, *rsa.PrivateKey, error) {
	now := k.now()
	k.mu.RLock()
	if k.activePriv != nil && now.Before(k.cacheUntil) {
		kid, priv := k.activeKID, k.activePriv
		k.mu.RUnlock()
		return kid, priv, nil
	}
	k.mu.RUnlock()

	keys, err := k.repo.List(ctx)
	if err != nil {
		return "", nil, err
	}
	rec := pickActive(keys, now)
	if rec == nil {
		return "", nil, ErrNoActiveKey
	}
	priv, err := ParsePrivateKey(rec.PrivateKey)
	if err != nil {
		return "", nil, err
	}

	k.mu.Lock()
	k.activeKID = rec.KID
	k.activePriv = priv
	k.cacheUntil = now.Add(k.cacheTTL)
	k.mu.Unlock()
	return rec.KID, priv, nil
}

// Published devuelve las claves verificables en este momento, más nueva primero.
func (k *Keystore) Published(ctx context.Context) ([]repository.SigningKey, error) {
	keys, err := k.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	now := k.now()
	out := make([]repository.SigningKey, 0, len(keys))
	for _, key := range keys {
		if key.RevokedAt == nil || key.RevokedAt.After(now) {
			key.PrivateKey = ""
			out = append(out, key)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// PublicKey busca una clave publicada por kid.
func (k *Keystore) PublicKey(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	keys, err := k.Published(ctx)
	if err != nil {
		return nil, err
	}
	for _, key := range keys {
		if key.KID == kid {
			return ParsePublicKey(key.PublicKey)
		}
	}
	return nil, ErrUnknownKID
}

// JWKS devuelve el documento JWKS (cache 15s).
func (k *Keystore) JWKS(ctx context.Context) ([]byte, error) {
	now := k.now()
	k.mu.RLock()
	if len(k.jwks) > 0 && now.Before(k.jwksUntil) {
		b := k.jwks
		k.mu.RUnlock()
		return b, nil
	}
	k.mu.RUnlock()

	keys, err := k.Published(ctx)
	if err != nil {
		return nil, err
	}
	b, err := buildJWKS(keys)
	if err != nil {
		return nil, err
	}
	k.mu.Lock()
	k.jwks = b
	k.jwksUntil = now.Add(15 * time.Second)
	k.mu.Unlock()
	return b, nil
}

// Rotate marca todas las claves vigentes como revocadas en now+grace y crea
// una nueva, que pasa a ser la activa. Durante grace ambas verifican.
func (k *Keystore) Rotate(ctx context.Context, grace time.Duration) (*repository.SigningKey, error) {
	now := k.now().UTC()
	keys, err := k.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	retireAt := now.Add(grace)
	for _, key := range keys {
		if key.RevokedAt != nil && !key.RevokedAt.After(retireAt) {
			continue
		}
		if err := k.repo.Revoke(ctx, key.KID, retireAt); err != nil {
			return nil, err
		}
	}
	nk, err := GenerateSigningKey(now)
	if err != nil {
		return nil, err
	}
	if err := k.repo.Create(ctx, nk); err != nil {
		return nil, err
	}
	k.Invalidate()
	logger.From(ctx).Info("signing keys rotated",
		logger.Component("keystore"), logger.KeyID(nk.KID), logger.Count(len(keys)))
	return nk, nil
}

// Revoke revoca kid inmediatamente.
func (k *Keystore) Revoke(ctx context.Context, kid string) error {
	if err := k.repo.Revoke(ctx, kid, k.now().UTC()); err != nil {
		return err
	}
	k.Invalidate()
	return nil
}

// Invalidate descarta los caches locales.
func (k *Keystore) Invalidate() {
	k.mu.Lock()
	k.activePriv = nil
	k.activeKID = ""
	k.cacheUntil = time.Time{}
	k.jwks = nil
	k.jwksUntil = time.Time{}
	k.mu.Unlock()
}

func pickActive(keys []repository.SigningKey, now time.Time) *repository.SigningKey {
	var best *repository.SigningKey
	for i := range keys {
		key := &keys[i]
		if key.RevokedAt != nil || key.ActivateAt.After(now) {
			continue
		}
		if best == nil || key.CreatedAt.After(best.CreatedAt) {
			best = key
		}
	}
	return best
}
