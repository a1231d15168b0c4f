// Package store arma la capa de datos: elige el driver (memory | postgres),
// dónde viven los registros efímeros (sql | kv) y expone todos los adapters
// como un único DataAccessLayer.
package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dropDatabas3/authhero/internal/cache"
	"github.com/dropDatabas3/authhero/internal/domain/repository"
	"github.com/dropDatabas3/authhero/internal/observability/logger"
	"github.com/dropDatabas3/authhero/internal/store/kv"
	"github.com/dropDatabas3/authhero/internal/store/memory"
	"github.com/dropDatabas3/authhero/internal/store/pg"
	migrations "github.com/dropDatabas3/authhero/migrations/postgres"
)

type Config struct {
	Driver    string // memory | postgres
	DSN       string
	Ephemeral string // sql | kv
	Migrate   bool
	Postgres  pg.PoolConfig
	// ClientTTL > 0 activa el cache de lectura de clients.
	ClientTTL time.Duration
}

// DataAccessLayer agrupa los adapters que consume el engine.
type DataAccessLayer struct {
	Clients       repository.ClientRepository
	Admin         repository.TenantAdmin
	Users         repository.UserRepository
	Passwords     repository.PasswordRepository
	Sessions      repository.SessionRepository
	Tickets       repository.TicketRepository
	OTPs          repository.OTPRepository
	Codes         repository.CodeRepository
	LoginSessions repository.UniversalLoginSessionRepository
	Keys          repository.KeyRepository
	Logs          repository.LogRepository

	// Replay marca authorization codes consumidos.
	Replay *kv.ReplayGuard

	closers []func()
}

// Close libera pools y conexiones en orden inverso.
func (d *DataAccessLayer) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
}

type adapters interface {
	Clients() repository.ClientRepository
	Admin() repository.TenantAdmin
	Users() repository.UserRepository
	Passwords() repository.PasswordRepository
	Sessions() repository.SessionRepository
	Tickets() repository.TicketRepository
	OTPs() repository.OTPRepository
	Codes() repository.CodeRepository
	LoginSessions() repository.UniversalLoginSessionRepository
	Keys() repository.KeyRepository
	Logs() repository.LogRepository
}

// FromAdapters construye el DAL a partir de un backend ya abierto; kvc se usa
// para el replay guard y, si ephemeralKV, para tickets y login sessions.
func FromAdapters(a adapters, kvc cache.Client, ephemeralKV bool) *DataAccessLayer {
	d := &DataAccessLayer{
		Clients:       a.Clients(),
		Admin:         a.Admin(),
		Users:         a.Users(),
		Passwords:     a.Passwords(),
		Sessions:      a.Sessions(),
		Tickets:       a.Tickets(),
		OTPs:          a.OTPs(),
		Codes:         a.Codes(),
		LoginSessions: a.LoginSessions(),
		Keys:          a.Keys(),
		Logs:          a.Logs(),
		Replay:        kv.NewReplayGuard(kvc),
	}
	if ephemeralKV {
		d.Tickets = kv.NewTickets(kvc)
		d.LoginSessions = kv.NewLoginSessions(kvc)
	}
	return d
}

// Open abre el backend configurado.
func Open(ctx context.Context, cfg Config, kvc cache.Client) (*DataAccessLayer, error) {
	log := logger.From(ctx).With(logger.Layer("store"), logger.Op("Open"))
	ephemeralKV := strings.EqualFold(cfg.Ephemeral, "kv")

	var d *DataAccessLayer
	switch strings.ToLower(cfg.Driver) {
	case "", "memory":
		d = FromAdapters(memory.New(), kvc, ephemeralKV)
	case "postgres", "pg", "postgresql":
		pool, err := pg.Connect(ctx, cfg.DSN, cfg.Postgres)
		if err != nil {
			return nil, err
		}
		if cfg.Migrate {
			if err := migrations.Up(ctx, pool); err != nil {
				pool.Close()
				return nil, err
			}
		}
		d = FromAdapters(pg.New(pool), kvc, ephemeralKV)
		d.closers = append(d.closers, pool.Close)
	default:
		return nil, fmt.Errorf("store: unsupported driver %q", cfg.Driver)
	}

	if cfg.ClientTTL > 0 {
		d.Clients = cache.NewCachedClients(d.Clients, cfg.ClientTTL)
	}
	log.Info("store ready",
		logger.String("driver", cfg.Driver),
		logger.String("ephemeral", cfg.Ephemeral),
	)
	return d, nil
}
