// Package router arma el chi.Router con todas las rutas del servicio.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	authctrl "github.com/dropDatabas3/authhero/internal/http/controllers/auth"
	"github.com/dropDatabas3/authhero/internal/http/controllers/health"
	oauthctrl "github.com/dropDatabas3/authhero/internal/http/controllers/oauth"
	oidcctrl "github.com/dropDatabas3/authhero/internal/http/controllers/oidc"
	"github.com/dropDatabas3/authhero/internal/http/controllers/universal"
	httperrors "github.com/dropDatabas3/authhero/internal/http/errors"
	mw "github.com/dropDatabas3/authhero/internal/http/middlewares"
	"github.com/dropDatabas3/authhero/internal/rate"
)

// Deps contiene los controllers y middlewares que se montan.
type Deps struct {
	OAuth     *oauthctrl.Controllers
	Auth      *authctrl.Controllers
	Universal *universal.Controller
	OIDC      *oidcctrl.Controller
	Health    *health.HealthController

	// Metrics se monta en /metrics si no es nil.
	Metrics http.Handler

	// LoginLimiter limita los endpoints que verifican credenciales u OTPs.
	// nil = sin límite.
	LoginLimiter rate.Limiter
	// CORSOrigins para discovery/JWKS/userinfo ("*" = cualquiera).
	CORSOrigins []string
}

// New devuelve el handler raíz.
func New(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(mw.Use(
		mw.WithRequestID(),
		mw.WithLogging(),
		mw.WithRecover(),
	)...)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
	})

	limited := mw.WithRateLimit(mw.RateLimitConfig{Limiter: d.LoginLimiter, KeyFunc: mw.IPPathRateKey})

	registerHealthRoutes(r, d)
	registerOIDCRoutes(r, d)
	registerOAuthRoutes(r, d)
	registerAuthRoutes(r, d, limited)
	registerUniversalRoutes(r, d, limited)
	return r
}
