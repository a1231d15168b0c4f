package validation

import (
	"regexp"
	"strings"
)

// Un scope: minúsculas, empieza y termina alfanumérico, admite ":_.-" en el
// medio, 1..64 chars. Ej: openid, read:users, offline_access.
var scopeNameRe = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9:_\.-]{0,62}[a-z0-9])?$`)

// ValidScopeName reporta si name es un nombre de scope aceptable.
func ValidScopeName(name string) bool {
	return scopeNameRe.MatchString(name)
}

// NormalizeScope separa por espacios, descarta inválidos y duplicados y
// preserva el orden de aparición.
func NormalizeScope(scope string) string {
	seen := make(map[string]struct{})
	out := make([]string, 0, 4)
	for _, s := range strings.Fields(scope) {
		if !ValidScopeName(s) {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return strings.Join(out, " ")
}

// HasScope reporta si scope (separado por espacios) incluye want.
func HasScope(scope, want string) bool {
	for _, s := range strings.Fields(scope) {
		if s == want {
			return true
		}
	}
	return false
}
