package repository

import (
	"context"
	"time"
)

// SigningKey es un par RSA en PEM. RevokedAt futuro = todavía publicado
// (ventana de gracia) pero ya no firma.
type SigningKey struct {
	KID        string
	PrivateKey string // PKCS#8 PEM
	PublicKey  string // PKIX PEM
	CreatedAt  time.Time
	ActivateAt time.Time
	RevokedAt  *time.Time
}

type KeyRepository interface {
	List(ctx context.Context) ([]SigningKey, error)
	Create(ctx context.Context, k *SigningKey) error
	// Revoke fija revoked_at = at (puede ser futuro).
	Revoke(ctx context.Context, kid string, at time.Time) error
}
