package validation

import (
	"strings"
	"testing"
)

func TestValidScopeName(t *testing.T) {
	for _, v := range []string{"a", "openid", "read:users", "offline_access", "a_b-c.d:scope2", "a" + strings.Repeat("b", 62) + "c"} {
		if !ValidScopeName(v) {
			t.Fatalf("expected valid: %q", v)
		}
	}
	for _, v := range []string{"", ":lead", "trail:", "bad space", "UPPER", "semicolon;hack", strings.Repeat("a", 65)} {
		if ValidScopeName(v) {
			t.Fatalf("expected invalid: %q", v)
		}
	}
}

func TestNormalizeScope(t *testing.T) {
	got := NormalizeScope("openid  profile openid BAD email")
	if got != "openid profile email" {
		t.Fatalf("got %q", got)
	}
	if !HasScope(got, "email") || HasScope(got, "offline_access") {
		t.Fatal("HasScope mismatch")
	}
}
