// Package tokens genera los valores aleatorios del servidor (ids de sesión,
// tickets, códigos OTP) y calcula challenges PKCE.
package tokens

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"math/big"

	"golang.org/x/oauth2"
)

// GenerateOpaqueToken genera nBytes aleatorios en base64url sin padding.
func GenerateOpaqueToken(nBytes int) (string, error) {
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// GenerateNumericCode devuelve un código decimal de digits dígitos (OTP).
func GenerateNumericCode(digits int) (string, error) {
	if digits <= 0 || digits > 18 {
		return "", fmt.Errorf("tokens: invalid digits %d", digits)
	}
	max := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", digits, n), nil
}

// Métodos PKCE.
const (
	PKCEPlain = "plain"
	PKCES256  = "S256"
)

// ComputeCodeChallenge aplica method a verifier. Método vacío = plain.
func ComputeCodeChallenge(verifier, method string) (string, error) {
	switch method {
	case "", PKCEPlain:
		return verifier, nil
	case PKCES256:
		return oauth2.S256ChallengeFromVerifier(verifier), nil
	default:
		return "", fmt.Errorf("tokens: unsupported code_challenge_method %q", method)
	}
}

// Equal compara en tiempo constante.
func Equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
