package connection

import (
	"crypto/ecdsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"

	"github.com/dropDatabas3/authhero/internal/domain/repository"
)

const (
	appleAudience  = "https://appleid.apple.com"
	appleSecretTTL = 5 * time.Minute
)

// AppleClientSecret firma el client_secret ES256 que exige Sign in with Apple:
// iss=team_id, sub=client_id (services id), kid en el header.
func AppleClientSecret(o repository.ConnectionOptions, now time.Time) (string, error) {
	if o.TeamID == "" || o.KeyID == "" || o.PrivateKey == "" {
		return "", fmt.Errorf("%w: apple requires team_id, kid and app_secret", ErrMisconfigured)
	}
	key, err := parseECKey(o.PrivateKey)
	if err != nil {
		return "", err
	}
	claims := jwtv5.RegisteredClaims{
		Issuer:    o.TeamID,
		Subject:   o.ClientID,
		Audience:  jwtv5.ClaimStrings{appleAudience},
		IssuedAt:  jwtv5.NewNumericDate(now),
		ExpiresAt: jwtv5.NewNumericDate(now.Add(appleSecretTTL)),
	}
	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodES256, claims)
	tk.Header["kid"] = o.KeyID
	return tk.SignedString(key)
}

func parseECKey(p string) (*ecdsa.PrivateKey, error) {
	block, _ := pem.Decode([]byte(p))
	if block == nil {
		return nil, fmt.Errorf("%w: apple key is not PEM", ErrMisconfigured)
	}
	if k, err := x509.ParsePKCS8PrivateKey(block.Bytes); err == nil {
		if ec, ok := k.(*ecdsa.PrivateKey); ok {
			return ec, nil
		}
		return nil, fmt.Errorf("%w: apple key is not ECDSA", ErrMisconfigured)
	}
	ec, err := x509.ParseECPrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%w: apple key: %v", ErrMisconfigured, err)
	}
	return ec, nil
}
