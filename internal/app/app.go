// Package app arma el grafo de dependencias del servicio a partir de la
// config: cache, store, keystore, services, controllers y router.
package app

import (
	"context"
	"crypto/rand"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dropDatabas3/authhero/internal/audit"
	"github.com/dropDatabas3/authhero/internal/cache"
	"github.com/dropDatabas3/authhero/internal/config"
	"github.com/dropDatabas3/authhero/internal/email"
	authctrl "github.com/dropDatabas3/authhero/internal/http/controllers/auth"
	"github.com/dropDatabas3/authhero/internal/http/controllers/health"
	oauthctrl "github.com/dropDatabas3/authhero/internal/http/controllers/oauth"
	oidcctrl "github.com/dropDatabas3/authhero/internal/http/controllers/oidc"
	"github.com/dropDatabas3/authhero/internal/http/controllers/respond"
	"github.com/dropDatabas3/authhero/internal/http/controllers/universal"
	"github.com/dropDatabas3/authhero/internal/http/helpers"
	"github.com/dropDatabas3/authhero/internal/http/render"
	"github.com/dropDatabas3/authhero/internal/http/router"
	"github.com/dropDatabas3/authhero/internal/http/services/auth"
	"github.com/dropDatabas3/authhero/internal/http/services/common"
	"github.com/dropDatabas3/authhero/internal/http/services/oauth"
	"github.com/dropDatabas3/authhero/internal/http/services/oidc"
	"github.com/dropDatabas3/authhero/internal/jwt"
	"github.com/dropDatabas3/authhero/internal/metrics"
	"github.com/dropDatabas3/authhero/internal/oauth/connection"
	"github.com/dropDatabas3/authhero/internal/oauth/state"
	"github.com/dropDatabas3/authhero/internal/observability/logger"
	"github.com/dropDatabas3/authhero/internal/rate"
	"github.com/dropDatabas3/authhero/internal/store"
	"github.com/dropDatabas3/authhero/internal/store/pg"
)

// Container es el servicio armado.
type Container struct {
	Config  *config.Config
	Cache   cache.Client
	Store   *store.DataAccessLayer
	Keys    *jwt.Keystore
	Issuer  *jwt.Issuer
	Audit   *audit.Dispatcher
	Handler http.Handler
}

// OpenStore abre cache + store; lo usan serve y los subcomandos del CLI.
func OpenStore(ctx context.Context, cfg *config.Config) (cache.Client, *store.DataAccessLayer, error) {
	kvc, err := cache.New(cache.Config{
		Kind:     cfg.Cache.Kind,
		Addr:     cfg.Cache.Redis.Addr,
		Password: cfg.Cache.Redis.Password,
		DB:       cfg.Cache.Redis.DB,
		Prefix:   cfg.Cache.Redis.Prefix,
	})
	if err != nil {
		return nil, nil, err
	}
	dal, err := store.Open(ctx, store.Config{
		Driver:    cfg.Storage.Driver,
		DSN:       cfg.Storage.DSN,
		Ephemeral: cfg.Storage.Ephemeral,
		Migrate:   cfg.Storage.Migrate,
		Postgres: pg.PoolConfig{
			MaxConns:        cfg.Storage.Postgres.MaxConns,
			MinConns:        cfg.Storage.Postgres.MinConns,
			ConnMaxLifetime: cfg.Storage.Postgres.ConnMaxLifetime,
		},
		ClientTTL: cfg.Cache.ClientTTL,
	}, kvc)
	if err != nil {
		_ = kvc.Close()
		return nil, nil, err
	}
	return kvc, dal, nil
}

// Build arma el Container completo. Close libera lo abierto.
func Build(ctx context.Context, cfg *config.Config) (*Container, error) {
	log := logger.From(ctx).With(logger.Component("app"), logger.Op("Build"))

	kvc, dal, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	c := &Container{Config: cfg, Cache: kvc, Store: dal}

	c.Keys = jwt.NewKeystore(dal.Keys)
	if err := c.Keys.EnsureBootstrap(ctx); err != nil {
		c.Close()
		return nil, fmt.Errorf("app: signing keys: %w", err)
	}
	c.Issuer = jwt.NewIssuer(c.Keys, cfg.JWT.AccessTTL, cfg.JWT.IDTTL)

	secret := []byte(cfg.Auth.StateSecret)
	if len(secret) == 0 {
		// codes y social states no sobreviven a un restart
		log.Warn("auth.state_secret not set, using an ephemeral secret")
		secret = make([]byte, state.MinSecretLen)
		if _, err := rand.Read(secret); err != nil {
			c.Close()
			return nil, err
		}
	}
	codec, err := state.New(secret, cfg.App.Issuer)
	if err != nil {
		c.Close()
		return nil, err
	}

	c.Audit = audit.NewDispatcher(dal.Logs, audit.Config{})
	if cfg.Metrics.Enabled {
		if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
			c.Close()
			return nil, err
		}
	}

	var transport email.Transport = email.LogTransport{ShowBody: cfg.App.Env == "dev"}
	if cfg.SMTP.Host != "" {
		transport = &email.SMTP{
			Host:               cfg.SMTP.Host,
			Port:               cfg.SMTP.Port,
			User:               cfg.SMTP.Username,
			Pass:               cfg.SMTP.Password,
			TLSMode:            cfg.SMTP.TLS,
			InsecureSkipVerify: cfg.SMTP.InsecureSkipVerify,
		}
	}

	minter := &common.Minter{Issuer: c.Issuer, Codes: codec, BaseURL: cfg.App.Issuer, CodeTTL: cfg.Auth.AuthCodeTTL}
	authSvc := auth.NewService(auth.Deps{
		Clients:       dal.Clients,
		Users:         dal.Users,
		Passwords:     dal.Passwords,
		Sessions:      dal.Sessions,
		Tickets:       dal.Tickets,
		OTPs:          dal.OTPs,
		Codes:         dal.Codes,
		LoginSessions: dal.LoginSessions,
		Email:         email.NewTemplateSender(transport, cfg.SMTP.From),
		Audit:         c.Audit,
		Minter:        minter,
		States:        codec,
		Connections:   connection.New(&http.Client{Timeout: 10 * time.Second}),
		Config: auth.Config{
			BaseURL:    cfg.App.Issuer,
			SessionTTL: cfg.Auth.SessionTTL,
			TicketTTL:  cfg.Auth.TicketTTL,
			OTPTTL:     cfg.Auth.OTPTTL,
			LoginTTL:   cfg.Auth.LoginTTL,
			CodeTTL:    cfg.Auth.CodeTTL,
		},
	})
	oauthSvc := oauth.NewService(oauth.Deps{
		Auth:   authSvc,
		Users:  dal.Users,
		Minter: minter,
		Replay: dal.Replay,
		Audit:  c.Audit,
	})
	oidcSvc := oidc.NewService(c.Issuer, dal.Users, authSvc.Resolver(), cfg.App.Issuer)

	out := respond.New(render.MustNew(), helpers.CookieConfig{
		SameSite: cfg.Auth.Cookie.SameSite,
		Secure:   cfg.Auth.Cookie.Secure,
		Domain:   cfg.Auth.Cookie.Domain,
	})

	deps := router.Deps{
		OAuth:     oauthctrl.NewControllers(oauthSvc, authSvc, out),
		Auth:      authctrl.NewControllers(authSvc, out),
		Universal: universal.NewController(authSvc, out),
		OIDC:      oidcctrl.NewController(oidcSvc),
		Health: health.NewHealthController(cfg.App.Version, map[string]health.Check{
			"cache": kvc.Ping,
			"keys": func(ctx context.Context) error {
				_, _, err := c.Keys.Active(ctx)
				return err
			},
		}),
		CORSOrigins: []string{"*"},
	}
	if cfg.Metrics.Enabled {
		deps.Metrics = metrics.Handler()
	}
	if cfg.Rate.Enabled {
		deps.LoginLimiter = newLimiter(cfg, kvc)
	}
	c.Handler = router.New(deps)

	log.Info("service wired",
		logger.String("issuer", cfg.App.Issuer),
		logger.String("storage", cfg.Storage.Driver),
		logger.String("cache", cfg.Cache.Kind),
		logger.Bool("rate_limit", cfg.Rate.Enabled),
	)
	return c, nil
}

// newLimiter usa redis si el cache es redis (límite compartido entre
// réplicas); si no, memoria local.
func newLimiter(cfg *config.Config, kvc cache.Client) rate.Limiter {
	if r, ok := kvc.(*cache.Redis); ok && strings.EqualFold(cfg.Cache.Kind, "redis") {
		return rate.NewRedisLimiter(r.Raw(), cfg.Cache.Redis.Prefix+"rl:", cfg.Rate.Limit, cfg.Rate.Window)
	}
	return rate.NewMemoryLimiter(cfg.Rate.Limit, cfg.Rate.Window)
}

// Close drena auditoría y cierra store y cache, en ese orden.
func (c *Container) Close() {
	if c.Audit != nil {
		c.Audit.Close()
	}
	if c.Store != nil {
		c.Store.Close()
	}
	if c.Cache != nil {
		_ = c.Cache.Close()
	}
}
