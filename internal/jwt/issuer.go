// Package jwt es la fábrica de tokens: firma access e ID tokens RS256 con la
// clave activa del Keystore y los verifica contra las claves publicadas.
package jwt

import (
	"context"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// DefaultAccessTTL es el TTL de access e ID tokens si no se configura otro.
const DefaultAccessTTL = 24 * time.Hour

// Issuer firma tokens.
type Issuer struct {
	Keys      *Keystore
	AccessTTL time.Duration
	IDTTL     time.Duration
	Now       func() time.Time
}

func NewIssuer(keys *Keystore, accessTTL, idTTL time.Duration) *Issuer {
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTTL
	}
	if idTTL <= 0 {
		idTTL = accessTTL
	}
	return &Issuer{Keys: keys, AccessTTL: accessTTL, IDTTL: idTTL, Now: time.Now}
}

// AccessTokenParams son los claims de un access token.
type AccessTokenParams struct {
	Issuer      string
	Subject     string
	Audience    string
	Scope       string
	AZP         string
	TenantID    string
	Permissions []string
}

// IDTokenParams son los claims de un ID token; Audience es el client_id.
type IDTokenParams struct {
	Issuer        string
	Subject       string
	Audience      string
	SID           string
	Nonce         string
	Email         string
	EmailVerified bool
	Name          string
	Nickname      string
	GivenName     string
	FamilyName    string
	Picture       string
	Locale        string
	UpdatedAt     time.Time
}

// CreateAccessToken firma un access token; exp - iat == AccessTTL.
func (i *Issuer) CreateAccessToken(ctx context.Context, p AccessTokenParams) (string, error) {
	now := i.Now().UTC()
	claims := jwtv5.MapClaims{
		"iss": p.Issuer,
		"aud": p.Audience,
		"iat": now.Unix(),
		"exp": now.Add(i.AccessTTL).Unix(),
	}
	if p.Subject != "" {
		claims["sub"] = p.Subject
	}
	if p.Scope != "" {
		claims["scope"] = p.Scope
	}
	if p.AZP != "" {
		claims["azp"] = p.AZP
	}
	if p.TenantID != "" {
		claims["tenant_id"] = p.TenantID
	}
	if len(p.Permissions) > 0 {
		claims["permissions"] = p.Permissions
	}
	return i.sign(ctx, claims)
}

// CreateIDToken firma un ID token OIDC.
func (i *Issuer) CreateIDToken(ctx context.Context, p IDTokenParams) (string, error) {
	now := i.Now().UTC()
	claims := jwtv5.MapClaims{
		"iss":            p.Issuer,
		"sub":            p.Subject,
		"aud":            p.Audience,
		"iat":            now.Unix(),
		"exp":            now.Add(i.IDTTL).Unix(),
		"email":          p.Email,
		"email_verified": p.EmailVerified,
	}
	optional := map[string]string{
		"sid":         p.SID,
		"nonce":       p.Nonce,
		"name":        p.Name,
		"nickname":    p.Nickname,
		"given_name":  p.GivenName,
		"family_name": p.FamilyName,
		"picture":     p.Picture,
		"locale":      p.Locale,
	}
	for k, v := range optional {
		if v != "" {
			claims[k] = v
		}
	}
	if !p.UpdatedAt.IsZero() {
		claims["updated_at"] = p.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return i.sign(ctx, claims)
}

func (i *Issuer) sign(ctx context.Context, claims jwtv5.MapClaims) (string, error) {
	kid, priv, err := i.Keys.Active(ctx)
	if err != nil {
		return "", err
	}
	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodRS256, claims)
	tk.Header["kid"] = kid
	tk.Header["typ"] = "JWT"
	return tk.SignedString(priv)
}
