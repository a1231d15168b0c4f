// Package config carga la configuración del servidor desde YAML con
// overrides por variables de entorno (AUTHHERO_*).
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		Env     string `yaml:"env"` // dev | staging | prod
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
		// Issuer es la URL pública del servidor; se usa como iss y como base
		// para /callback, /u/* y links de email.
		Issuer string `yaml:"issuer"`
	} `yaml:"app"`

	Server struct {
		Addr            string        `yaml:"addr"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`

	Storage struct {
		Driver string `yaml:"driver"` // postgres | memory
		DSN    string `yaml:"dsn"`
		// Ephemeral decide dónde viven tickets y universal login sessions:
		// "sql" (misma base) o "kv" (cache/redis con TTL nativo).
		Ephemeral string `yaml:"ephemeral"`
		Postgres  struct {
			MaxConns        int32         `yaml:"max_conns"`
			MinConns        int32         `yaml:"min_conns"`
			ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
		} `yaml:"postgres"`
		Migrate bool `yaml:"migrate"`
	} `yaml:"storage"`

	Cache struct {
		Kind  string `yaml:"kind"` // memory | redis
		Redis struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
		ClientTTL time.Duration `yaml:"client_ttl"`
	} `yaml:"cache"`

	JWT struct {
		AccessTTL time.Duration `yaml:"access_ttl"`
		IDTTL     time.Duration `yaml:"id_ttl"`
		KeyGrace  time.Duration `yaml:"key_grace"`
	} `yaml:"jwt"`

	Auth struct {
		SessionTTL  time.Duration `yaml:"session_ttl"`
		TicketTTL   time.Duration `yaml:"ticket_ttl"`
		OTPTTL      time.Duration `yaml:"otp_ttl"`
		LoginTTL    time.Duration `yaml:"universal_login_ttl"`
		CodeTTL     time.Duration `yaml:"code_ttl"`      // password_reset / email_verification
		AuthCodeTTL time.Duration `yaml:"auth_code_ttl"` // authorization_code
		StateSecret string        `yaml:"state_secret"`
		Cookie      struct {
			SameSite string `yaml:"samesite"`
			Secure   bool   `yaml:"secure"`
			Domain   string `yaml:"domain"`
		} `yaml:"cookie"`
	} `yaml:"auth"`

	SMTP struct {
		Host               string `yaml:"host"`
		Port               int    `yaml:"port"`
		Username           string `yaml:"username"`
		Password           string `yaml:"password"`
		From               string `yaml:"from"`
		TLS                string `yaml:"tls"` // auto | starttls | ssl | none
		InsecureSkipVerify bool   `yaml:"insecure_skip_verify"`
	} `yaml:"smtp"`

	Rate struct {
		Enabled bool          `yaml:"enabled"`
		Limit   int           `yaml:"limit"`
		Window  time.Duration `yaml:"window"`
	} `yaml:"rate"`

	Metrics struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"metrics"`
}

// Load lee path (si existe), aplica defaults, env y valida.
// Un path inexistente no es error: se usan defaults + env.
func Load(path string) (*Config, error) {
	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, &c); err != nil {
				return nil, fmt.Errorf("config: parse %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}
	c.applyDefaults()
	c.applyEnvOverrides()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	setStr(&c.App.Env, "dev")
	setStr(&c.App.Name, "authhero")
	setStr(&c.App.Issuer, "http://localhost:8080/")
	setStr(&c.Server.Addr, ":8080")
	setDur(&c.Server.ReadTimeout, 15*time.Second)
	setDur(&c.Server.WriteTimeout, 30*time.Second)
	setDur(&c.Server.ShutdownTimeout, 10*time.Second)
	setStr(&c.Log.Level, "info")

	setStr(&c.Storage.Driver, "memory")
	setStr(&c.Storage.Ephemeral, "sql")
	if c.Storage.Postgres.MaxConns == 0 {
		c.Storage.Postgres.MaxConns = 10
	}

	setStr(&c.Cache.Kind, "memory")
	setStr(&c.Cache.Redis.Prefix, "authhero:")
	setDur(&c.Cache.ClientTTL, 30*time.Second)

	setDur(&c.JWT.AccessTTL, 24*time.Hour)
	setDur(&c.JWT.IDTTL, 24*time.Hour)
	setDur(&c.JWT.KeyGrace, 24*time.Hour)

	setDur(&c.Auth.SessionTTL, 30*24*time.Hour)
	setDur(&c.Auth.TicketTTL, 5*time.Minute)
	setDur(&c.Auth.OTPTTL, 30*time.Minute)
	setDur(&c.Auth.LoginTTL, 24*time.Hour)
	setDur(&c.Auth.CodeTTL, 24*time.Hour)
	setDur(&c.Auth.AuthCodeTTL, 10*time.Minute)
	setStr(&c.Auth.Cookie.SameSite, "None")

	setStr(&c.SMTP.TLS, "auto")
	if c.SMTP.Port == 0 {
		c.SMTP.Port = 587
	}

	if c.Rate.Limit == 0 {
		c.Rate.Limit = 10
	}
	setDur(&c.Rate.Window, time.Minute)
}

// applyEnvOverrides pisa valores con AUTHHERO_* (y algunos alias comunes).
func (c *Config) applyEnvOverrides() {
	envStr("AUTHHERO_ENV", &c.App.Env)
	envStr("APP_ENV", &c.App.Env)
	envStr("AUTHHERO_ISSUER", &c.App.Issuer)
	envStr("AUTHHERO_ADDR", &c.Server.Addr)
	envStr("LOG_LEVEL", &c.Log.Level)

	envStr("AUTHHERO_STORAGE_DRIVER", &c.Storage.Driver)
	envStr("AUTHHERO_STORAGE_DSN", &c.Storage.DSN)
	envStr("DATABASE_URL", &c.Storage.DSN)
	envStr("AUTHHERO_STORAGE_EPHEMERAL", &c.Storage.Ephemeral)
	envBool("AUTHHERO_STORAGE_MIGRATE", &c.Storage.Migrate)

	envStr("AUTHHERO_CACHE_KIND", &c.Cache.Kind)
	envStr("REDIS_ADDR", &c.Cache.Redis.Addr)
	envStr("REDIS_PASSWORD", &c.Cache.Redis.Password)
	envInt("REDIS_DB", &c.Cache.Redis.DB)
	envStr("REDIS_PREFIX", &c.Cache.Redis.Prefix)

	envDur("AUTHHERO_ACCESS_TTL", &c.JWT.AccessTTL)
	envDur("AUTHHERO_KEY_GRACE", &c.JWT.KeyGrace)

	envStr("AUTHHERO_STATE_SECRET", &c.Auth.StateSecret)
	envDur("AUTHHERO_SESSION_TTL", &c.Auth.SessionTTL)
	envDur("AUTHHERO_OTP_TTL", &c.Auth.OTPTTL)
	envStr("AUTHHERO_COOKIE_SAMESITE", &c.Auth.Cookie.SameSite)
	envBool("AUTHHERO_COOKIE_SECURE", &c.Auth.Cookie.Secure)

	envStr("SMTP_HOST", &c.SMTP.Host)
	envInt("SMTP_PORT", &c.SMTP.Port)
	envStr("SMTP_USERNAME", &c.SMTP.Username)
	envStr("SMTP_PASSWORD", &c.SMTP.Password)
	envStr("SMTP_FROM", &c.SMTP.From)
	envStr("SMTP_TLS", &c.SMTP.TLS)

	envBool("AUTHHERO_RATE_ENABLED", &c.Rate.Enabled)
	envInt("AUTHHERO_RATE_LIMIT", &c.Rate.Limit)
	envDur("AUTHHERO_RATE_WINDOW", &c.Rate.Window)
	envBool("AUTHHERO_METRICS_ENABLED", &c.Metrics.Enabled)

	c.App.Env = strings.ToLower(strings.TrimSpace(c.App.Env))
	// fuera de dev la cookie de sesión siempre es Secure
	if c.App.Env != "dev" {
		c.Auth.Cookie.Secure = true
	}
}

// Validate rechaza combinaciones que no pueden arrancar.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.App.Issuer) == "" {
		return errors.New("config: app.issuer is required")
	}
	switch c.Storage.Driver {
	case "memory":
	case "postgres":
		if c.Storage.DSN == "" {
			return errors.New("config: storage.dsn is required for postgres")
		}
	default:
		return fmt.Errorf("config: unknown storage.driver %q", c.Storage.Driver)
	}
	if c.Storage.Ephemeral != "sql" && c.Storage.Ephemeral != "kv" {
		return fmt.Errorf("config: storage.ephemeral must be sql or kv, got %q", c.Storage.Ephemeral)
	}
	switch c.Cache.Kind {
	case "memory":
	case "redis":
		if c.Cache.Redis.Addr == "" {
			return errors.New("config: cache.redis.addr is required for redis cache")
		}
	default:
		return fmt.Errorf("config: unknown cache.kind %q", c.Cache.Kind)
	}
	if c.App.Env == "prod" && len(c.Auth.StateSecret) < 32 {
		return errors.New("config: auth.state_secret must be at least 32 bytes in prod")
	}
	return nil
}

// ---- helpers ----

func setStr(p *string, def string) {
	if strings.TrimSpace(*p) == "" {
		*p = def
	}
}

func setDur(p *time.Duration, def time.Duration) {
	if *p == 0 {
		*p = def
	}
}

func envStr(key string, dst *string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func envInt(key string, dst *int) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			*dst = i
		}
	}
}

func envBool(key string, dst *bool) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func envDur(key string, dst *time.Duration) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
