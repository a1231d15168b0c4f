package jwt

import (
	"context"
	"errors"
	"fmt"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("jwt: invalid token")

// VerifyOptions restringe iss/aud; vacío = no chequear.
type VerifyOptions struct {
	Issuer   string
	Audience string
}

// Verify valida firma RS256 contra las claves publicadas (por kid), exp/nbf
// y opcionalmente iss/aud. Devuelve los claims.
func (i *Issuer) Verify(ctx context.Context, token string, opts VerifyOptions) (jwtv5.MapClaims, error) {
	parserOpts := []jwtv5.ParserOption{
		jwtv5.WithValidMethods([]string{jwtv5.SigningMethodRS256.Alg()}),
		jwtv5.WithTimeFunc(i.Now),
		jwtv5.WithExpirationRequired(),
	}
	if opts.Issuer != "" {
		parserOpts = append(parserOpts, jwtv5.WithIssuer(opts.Issuer))
	}
	if opts.Audience != "" {
		parserOpts = append(parserOpts, jwtv5.WithAudience(opts.Audience))
	}

	claims := jwtv5.MapClaims{}
	_, err := jwtv5.ParseWithClaims(token, claims, func(t *jwtv5.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("kid missing")
		}
		return i.Keys.PublicKey(ctx, kid)
	}, parserOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims, nil
}
