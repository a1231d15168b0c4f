package middlewares

import (
	"net/http"
	"strings"
)

const (
	corsMethods = "GET,POST,OPTIONS"
	corsHeaders = "Content-Type, Authorization, X-Request-ID, Auth0-Client"
)

// WithCORS habilita CORS para una lista fija de orígenes ("*" = cualquiera).
// Se usa en discovery, JWKS y userinfo.
func WithCORS(allowed []string) Middleware {
	alist := make([]string, len(allowed))
	for i, v := range allowed {
		alist[i] = trimOrigin(v)
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := trimOrigin(r.Header.Get("Origin"))
			w.Header().Add("Vary", "Origin")
			for _, a := range alist {
				if origin != "" && (a == "*" || strings.EqualFold(origin, a)) {
					AllowOrigin(w, origin)
					break
				}
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithPreflight contesta los OPTIONS reflejando el Origin. Los endpoints
// cross-origin con credenciales (/co/authenticate, /passwordless/start)
// deciden en el controller, contra los web_origins del client, si el request
// real lleva Access-Control-Allow-Origin.
func WithPreflight() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add("Vary", "Origin")
			if r.Method != http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			if origin := trimOrigin(r.Header.Get("Origin")); origin != "" {
				AllowOrigin(w, origin)
			}
			w.WriteHeader(http.StatusNoContent)
		})
	}
}

// AllowOrigin escribe los headers CORS para origin.
func AllowOrigin(w http.ResponseWriter, origin string) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", origin)
	h.Set("Access-Control-Allow-Credentials", "true")
	h.Set("Access-Control-Allow-Methods", corsMethods)
	h.Set("Access-Control-Allow-Headers", corsHeaders)
	h.Set("Access-Control-Max-Age", "600")
}

// OriginAllowed compara contra web_origins (sin trailing slash, case-insensitive).
func OriginAllowed(webOrigins []string, origin string) bool {
	origin = trimOrigin(origin)
	if origin == "" {
		return false
	}
	for _, o := range webOrigins {
		if strings.EqualFold(trimOrigin(o), origin) {
			return true
		}
	}
	return false
}

func trimOrigin(s string) string { return strings.TrimRight(strings.TrimSpace(s), "/") }
