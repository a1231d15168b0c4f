// Package kv implementa los registros efímeros (tickets, universal login
// sessions) y el guard anti-replay de authorization codes sobre un
// cache.Client con TTL nativo. Reemplaza a la tabla SQL cuando
// storage.ephemeral = kv.
package kv

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dropDatabas3/authhero/internal/cache"
	"github.com/dropDatabas3/authhero/internal/domain/repository"
)

func ttlUntil(exp time.Time) time.Duration {
	d := time.Until(exp)
	if d <= 0 {
		// ya expirado: igual se guarda un instante para que el Get lazy falle por expires_at
		return time.Second
	}
	return d
}

func notFound(err error) error {
	if cache.IsNotFound(err) {
		return repository.ErrNotFound
	}
	return err
}

// ─── Tickets ───

type Tickets struct{ c cache.Client }

func NewTickets(c cache.Client) *Tickets { return &Tickets{c: c} }

func ticketKey(tenantID, id string) string { return "ticket:" + tenantID + ":" + id }

func (t *Tickets) Create(ctx context.Context, tk *repository.Ticket) error {
	b, err := json.Marshal(tk)
	if err != nil {
		return err
	}
	ok, err := t.c.Add(ctx, ticketKey(tk.TenantID, tk.ID), b, ttlUntil(tk.ExpiresAt))
	if err != nil {
		return fmt.Errorf("kv: create ticket: %w", err)
	}
	if !ok {
		return repository.ErrConflict
	}
	return nil
}

func (t *Tickets) Get(ctx context.Context, tenantID, id string) (*repository.Ticket, error) {
	b, err := t.c.Get(ctx, ticketKey(tenantID, id))
	if err != nil {
		return nil, notFound(err)
	}
	var out repository.Ticket
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("kv: decode ticket: %w", err)
	}
	return &out, nil
}

// Remove usa Take (GETDEL): sólo un caller concurrente gana.
func (t *Tickets) Remove(ctx context.Context, tenantID, id string) error {
	_, err := t.c.Take(ctx, ticketKey(tenantID, id))
	return notFound(err)
}

// ─── Universal login sessions ───

type LoginSessions struct{ c cache.Client }

func NewLoginSessions(c cache.Client) *LoginSessions { return &LoginSessions{c: c} }

func loginKey(tenantID, id string) string { return "uls:" + tenantID + ":" + id }

func (l *LoginSessions) Create(ctx context.Context, s *repository.UniversalLoginSession) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return l.c.Set(ctx, loginKey(s.TenantID, s.ID), b, ttlUntil(s.ExpiresAt))
}

func (l *LoginSessions) Get(ctx context.Context, tenantID, id string) (*repository.UniversalLoginSession, error) {
	b, err := l.c.Get(ctx, loginKey(tenantID, id))
	if err != nil {
		return nil, notFound(err)
	}
	var out repository.UniversalLoginSession
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("kv: decode login session: %w", err)
	}
	return &out, nil
}

func (l *LoginSessions) Update(ctx context.Context, s *repository.UniversalLoginSession) error {
	if _, err := l.c.Get(ctx, loginKey(s.TenantID, s.ID)); err != nil {
		return notFound(err)
	}
	s.UpdatedAt = time.Now().UTC()
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return l.c.Set(ctx, loginKey(s.TenantID, s.ID), b, ttlUntil(s.ExpiresAt))
}

// ─── Replay guard ───

// ReplayGuard registra ids (jti) consumidos por su TTL.
type ReplayGuard struct{ c cache.Client }

func NewReplayGuard(c cache.Client) *ReplayGuard { return &ReplayGuard{c: c} }

// Consume devuelve true la primera vez que se ve id; false las siguientes.
func (g *ReplayGuard) Consume(ctx context.Context, id string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return g.c.Add(ctx, "jti:"+id, []byte{1}, ttl)
}
