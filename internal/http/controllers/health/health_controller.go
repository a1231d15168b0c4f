// Package health contiene el controller para health checks.
package health

import (
	"context"
	"net/http"
	"sort"
	"time"

	httperrors "github.com/dropDatabas3/authhero/internal/http/errors"
	"github.com/dropDatabas3/authhero/internal/http/helpers"
	"github.com/dropDatabas3/authhero/internal/observability/logger"
)

// Check es un componente del readiness (cache, signing key, ...).
type Check func(ctx context.Context) error

type Response struct {
	Status     string            `json:"status"`
	Version    string            `json:"version,omitempty"`
	Components map[string]string `json:"components,omitempty"`
}

// HealthController maneja /healthz y /readyz.
type HealthController struct {
	checks  map[string]Check
	version string
	timeout time.Duration
}

func NewHealthController(version string, checks map[string]Check) *HealthController {
	return &HealthController{checks: checks, version: version, timeout: 2 * time.Second}
}

// Healthz es liveness: responde mientras el proceso atienda requests.
func (c *HealthController) Healthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, Response{Status: "ok", Version: c.version})
}

// Readyz maneja GET /readyz
func (c *HealthController) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("HealthController.Readyz"))

	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	names := make([]string, 0, len(c.checks))
	for n := range c.checks {
		names = append(names, n)
	}
	sort.Strings(names)

	resp := Response{Status: "ready", Version: c.version, Components: map[string]string{}}
	status := http.StatusOK
	for _, n := range names {
		if err := c.checks[n](ctx); err != nil {
			log.Warn("component not ready", logger.Component(n), logger.Err(err))
			resp.Components[n] = "down"
			resp.Status = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Components[n] = "ok"
	}

	if c.version != "" {
		w.Header().Set("X-Service-Version", c.version)
	}
	helpers.NoStore(w)
	helpers.WriteJSON(w, status, resp)
}
