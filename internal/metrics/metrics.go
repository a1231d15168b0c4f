package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collectors del servidor. Se definen en un paquete aparte para que audit,
// services y middlewares los usen sin ciclos de import.

var (
	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "authhero_http_requests_total",
		Help: "Requests HTTP por ruta, método y status",
	}, []string{"route", "method", "status"})

	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "authhero_http_request_duration_seconds",
		Help:    "Latencia de requests HTTP",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})

	Logins = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "authhero_logins_total",
		Help: "Intentos de login por estrategia y resultado",
	}, []string{"strategy", "result"})

	TokensIssued = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "authhero_tokens_issued_total",
		Help: "Tokens emitidos por grant type",
	}, []string{"grant_type"})

	AuditDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "authhero_audit_dropped_total",
		Help: "Eventos de auditoría descartados por cola llena",
	})
)

// Resultados de login.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

func all() []prometheus.Collector {
	return []prometheus.Collector{HTTPRequests, HTTPDuration, Logins, TokensIssued, AuditDropped}
}

// Register registra los collectors en reg (o el default si es nil).
// Registrar dos veces no es error.
func Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range all() {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	return nil
}

// Handler expone /metrics del registry default.
func Handler() http.Handler { return promhttp.Handler() }

// Login incrementa authhero_logins_total.
func Login(strategy string, ok bool) {
	result := ResultSuccess
	if !ok {
		result = ResultFailure
	}
	Logins.WithLabelValues(strategy, result).Inc()
}

// TokenIssued incrementa authhero_tokens_issued_total.
func TokenIssued(grantType string) { TokensIssued.WithLabelValues(grantType).Inc() }
