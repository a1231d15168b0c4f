// Package pg implementa los adapters de repository sobre PostgreSQL (pgx v5).
package pg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/authhero/internal/domain/repository"
)

// PoolConfig ajusta el pool; ceros = defaults de pgx.
type PoolConfig struct {
	MaxConns        int32
	MinConns        int32
	ConnMaxLifetime time.Duration
}

// Connect abre un pool y hace ping.
func Connect(ctx context.Context, dsn string, pc PoolConfig) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("pg: parse dsn: %w", err)
	}
	if pc.MaxConns > 0 {
		cfg.MaxConns = pc.MaxConns
	}
	if pc.MinConns > 0 {
		cfg.MinConns = pc.MinConns
	}
	if pc.ConnMaxLifetime > 0 {
		cfg.MaxConnLifetime = pc.ConnMaxLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("pg: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg: ping: %w", err)
	}
	return pool, nil
}

// Store agrupa los adapters sobre un mismo pool.
type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store { return &Store{pool: pool} }

func (s *Store) Pool() *pgxpool.Pool { return s.pool }

func (s *Store) Clients() repository.ClientRepository     { return &clientRepo{pool: s.pool} }
func (s *Store) Admin() repository.TenantAdmin            { return &clientRepo{pool: s.pool} }
func (s *Store) Users() repository.UserRepository         { return &userRepo{pool: s.pool} }
func (s *Store) Passwords() repository.PasswordRepository { return &passwordRepo{pool: s.pool} }
func (s *Store) Sessions() repository.SessionRepository   { return &sessionRepo{pool: s.pool} }
func (s *Store) Tickets() repository.TicketRepository     { return &ticketRepo{pool: s.pool} }
func (s *Store) OTPs() repository.OTPRepository           { return &otpRepo{pool: s.pool} }
func (s *Store) Codes() repository.CodeRepository         { return &codeRepo{pool: s.pool} }
func (s *Store) LoginSessions() repository.UniversalLoginSessionRepository {
	return &loginRepo{pool: s.pool}
}
func (s *Store) Keys() repository.KeyRepository { return &keyRepo{pool: s.pool} }
func (s *Store) Logs() repository.LogRepository { return &logRepo{pool: s.pool} }

// mapErr traduce errores de pgx a los sentinels del dominio.
func mapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return fmt.Errorf("%s: %w", op, repository.ErrConflict)
		case "23503", "23502", "22P02":
			return fmt.Errorf("%s: %w", op, repository.ErrInvalidInput)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// deleteOne ejecuta un DELETE y reporta ErrNotFound si no borró nada. Es el
// consumo atómico de tickets/otps/codes: sólo un caller concurrente gana.
func deleteOne(ctx context.Context, pool *pgxpool.Pool, op, query string, args ...any) error {
	tag, err := pool.Exec(ctx, query, args...)
	if err != nil {
		return mapErr(op, err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func toJSON(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}
