package helpers

import (
	"net/http"
	"strings"
	"time"
)

// SessionCookieSuffix: la cookie de sesión es "{tenant_id}-auth-token".
const SessionCookieSuffix = "-auth-token"

func SessionCookieName(tenantID string) string { return tenantID + SessionCookieSuffix }

// CookieConfig viene de auth.cookie en la config.
type CookieConfig struct {
	SameSite string
	Secure   bool
	Domain   string
	TTL      time.Duration
}

func ParseSameSite(s string) http.SameSite {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "lax":
		return http.SameSiteLaxMode
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

func BuildCookie(name, value string, cfg CookieConfig) *http.Cookie {
	ck := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: ParseSameSite(cfg.SameSite),
	}
	// SameSite=None sin Secure lo descartan los browsers
	if ck.SameSite == http.SameSiteNoneMode {
		ck.Secure = true
	}
	if strings.TrimSpace(cfg.Domain) != "" {
		ck.Domain = cfg.Domain
	}
	if cfg.TTL > 0 {
		ck.Expires = time.Now().Add(cfg.TTL).UTC()
		ck.MaxAge = int(cfg.TTL.Seconds())
	}
	return ck
}

func BuildDeletionCookie(name string, cfg CookieConfig) *http.Cookie {
	ck := BuildCookie(name, "", CookieConfig{SameSite: cfg.SameSite, Secure: cfg.Secure, Domain: cfg.Domain})
	ck.Expires = time.Unix(0, 0).UTC()
	ck.MaxAge = -1
	return ck
}

// SessionID lee la cookie de sesión del tenant; "" si no hay.
func SessionID(r *http.Request, tenantID string) string {
	if tenantID == "" {
		return ""
	}
	ck, err := r.Cookie(SessionCookieName(tenantID))
	if err != nil {
		return ""
	}
	return ck.Value
}
