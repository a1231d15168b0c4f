package password

import "unicode"

// Policy es la política mínima aplicada en signup y reset.
type Policy struct {
	MinLength            int
	RequireUpper         bool
	RequireLower         bool
	RequireDigit         bool
	RequireSymbol        bool
	RequireDigitOrSymbol bool
}

// DefaultPolicy: 8 chars con minúscula, mayúscula y dígito o símbolo.
var DefaultPolicy = Policy{MinLength: 8, RequireLower: true, RequireUpper: true, RequireDigitOrSymbol: true}

// Validate devuelve los motivos de rechazo (vacío = ok).
func (p Policy) Validate(s string) []string {
	var reasons []string
	if len([]rune(s)) < p.MinLength {
		reasons = append(reasons, "too_short")
	}
	var hasU, hasL, hasD, hasS bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			hasU = true
		case unicode.IsLower(r):
			hasL = true
		case unicode.IsDigit(r):
			hasD = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasS = true
		}
	}
	if p.RequireUpper && !hasU {
		reasons = append(reasons, "missing_upper")
	}
	if p.RequireLower && !hasL {
		reasons = append(reasons, "missing_lower")
	}
	if p.RequireDigit && !hasD {
		reasons = append(reasons, "missing_digit")
	}
	if p.RequireSymbol && !hasS {
		reasons = append(reasons, "missing_symbol")
	}
	if p.RequireDigitOrSymbol && !hasD && !hasS {
		reasons = append(reasons, "missing_digit_or_symbol")
	}
	return reasons
}
