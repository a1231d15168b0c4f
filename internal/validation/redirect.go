package validation

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrInvalidRedirect se devuelve sólo cuando la URL candidata no se puede
// parsear como URL absoluta. Un no-match contra la lista es (false, nil).
var ErrInvalidRedirect = errors.New("invalid redirect url")

// RedirectAllowed reporta si candidate coincide con alguna entrada de allowed.
//
// Reglas de match: scheme y puerto exactos, path exacto ("" == "/"), query y
// fragment ignorados. El host puede usar "*" como label completo, que matchea
// exactamente un label; nunca en las dos últimas posiciones (evita *.com).
// Un candidate vacío es válido.
func RedirectAllowed(allowed []string, candidate string) (bool, error) {
	if strings.TrimSpace(candidate) == "" {
		return true, nil
	}
	cu, err := parseAbsolute(candidate)
	if err != nil {
		return false, err
	}
	for _, entry := range allowed {
		au, err := parseAbsolute(strings.TrimSpace(entry))
		if err != nil {
			// entradas rotas en la config del client no matchean nada
			continue
		}
		if matchURL(au, cu) {
			return true, nil
		}
	}
	return false, nil
}

func parseAbsolute(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRedirect, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q is not absolute", ErrInvalidRedirect, raw)
	}
	return u, nil
}

func matchURL(pattern, u *url.URL) bool {
	if !strings.EqualFold(pattern.Scheme, u.Scheme) {
		return false
	}
	if pattern.Port() != u.Port() {
		return false
	}
	if normPath(pattern.EscapedPath()) != normPath(u.EscapedPath()) {
		return false
	}
	return matchHost(strings.ToLower(pattern.Hostname()), strings.ToLower(u.Hostname()))
}

func normPath(p string) string {
	if p == "" {
		return "/"
	}
	return p
}

func matchHost(pattern, host string) bool {
	if !strings.Contains(pattern, "*") {
		return pattern == host
	}
	pl := strings.Split(pattern, ".")
	hl := strings.Split(host, ".")
	if len(pl) != len(hl) {
		return false
	}
	for i := range pl {
		if pl[i] == "*" {
			// TLD y second-level nunca pueden ser comodín
			if i >= len(pl)-2 {
				return false
			}
			if hl[i] == "" {
				return false
			}
			continue
		}
		if pl[i] != hl[i] {
			return false
		}
	}
	return true
}
