// Package oidc sirve discovery, JWKS y userinfo.
package oidc

import (
	"context"
	"errors"
	"time"

	"github.com/dropDatabas3/authhero/internal/domain/repository"
	"github.com/dropDatabas3/authhero/internal/http/services/auth"
	"github.com/dropDatabas3/authhero/internal/jwt"
	"github.com/dropDatabas3/authhero/internal/observability/logger"
)

// ErrInvalidToken: bearer ausente, inválido, vencido o de un usuario que ya
// no existe. El controller responde 401.
var ErrInvalidToken = errors.New("oidc: invalid token")

type Service struct {
	issuer   *jwt.Issuer
	users    repository.UserRepository
	resolver *auth.Resolver
	baseURL  string
}

func NewService(issuer *jwt.Issuer, users repository.UserRepository, resolver *auth.Resolver, baseURL string) *Service {
	return &Service{issuer: issuer, users: users, resolver: resolver, baseURL: baseURL}
}

// Document es /.well-known/openid-configuration.
type Document struct {
	Issuer                            string   `json:"issuer"`
	AuthorizationEndpoint             string   `json:"authorization_endpoint"`
	TokenEndpoint                     string   `json:"token_endpoint"`
	UserinfoEndpoint                  string   `json:"userinfo_endpoint"`
	JWKSURI                           string   `json:"jwks_uri"`
	EndSessionEndpoint                string   `json:"end_session_endpoint"`
	ResponseTypesSupported            []string `json:"response_types_supported"`
	ResponseModesSupported            []string `json:"response_modes_supported"`
	GrantTypesSupported               []string `json:"grant_types_supported"`
	SubjectTypesSupported             []string `json:"subject_types_supported"`
	IDTokenSigningAlgValuesSupported  []string `json:"id_token_signing_alg_values_supported"`
	ScopesSupported                   []string `json:"scopes_supported"`
	TokenEndpointAuthMethodsSupported []string `json:"token_endpoint_auth_methods_supported"`
	ClaimsSupported                   []string `json:"claims_supported"`
	CodeChallengeMethodsSupported     []string `json:"code_challenge_methods_supported"`
	RequestURIParameterSupported      bool     `json:"request_uri_parameter_supported"`
}

func (s *Service) Discovery() Document {
	b := s.baseURL
	return Document{
		Issuer:                            b,
		AuthorizationEndpoint:             b + "authorize",
		TokenEndpoint:                     b + "oauth/token",
		UserinfoEndpoint:                  b + "userinfo",
		JWKSURI:                           b + ".well-known/jwks.json",
		EndSessionEndpoint:                b + "v2/logout",
		ResponseTypesSupported:            []string{"code", "token", "id_token", "token id_token"},
		ResponseModesSupported:            []string{"query", "fragment", "web_message"},
		GrantTypesSupported:               []string{"authorization_code", "client_credentials"},
		SubjectTypesSupported:             []string{"public"},
		IDTokenSigningAlgValuesSupported:  []string{"RS256"},
		ScopesSupported:                   []string{"openid", "profile", "email", "offline_access"},
		TokenEndpointAuthMethodsSupported: []string{"client_secret_basic", "client_secret_post", "none"},
		ClaimsSupported: []string{"sub", "iss", "aud", "exp", "iat", "sid", "nonce", "email", "email_verified",
			"name", "nickname", "given_name", "family_name", "picture", "locale", "updated_at"},
		CodeChallengeMethodsSupported: []string{"S256", "plain"},
	}
}

// JWKS devuelve el set de claves publicadas ya serializado.
func (s *Service) JWKS(ctx context.Context) ([]byte, error) { return s.issuer.Keys.JWKS(ctx) }

// UserInfo es la respuesta de /userinfo.
type UserInfo struct {
	Sub           string `json:"sub"`
	Email         string `json:"email,omitempty"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name,omitempty"`
	GivenName     string `json:"given_name,omitempty"`
	FamilyName    string `json:"family_name,omitempty"`
	Nickname      string `json:"nickname,omitempty"`
	Picture       string `json:"picture,omitempty"`
	Locale        string `json:"locale,omitempty"`
	UpdatedAt     string `json:"updated_at,omitempty"`
}

// Userinfo verifica el access token (firma, exp, iss) y devuelve el perfil
// del principal. Sólo acepta access tokens de usuario: tenant_id y sub.
func (s *Service) Userinfo(ctx context.Context, bearer string) (*UserInfo, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("Userinfo"))
	if bearer == "" {
		return nil, ErrInvalidToken
	}
	claims, err := s.issuer.Verify(ctx, bearer, jwt.VerifyOptions{Issuer: s.baseURL})
	if err != nil {
		log.Debug("bearer rejected", logger.Err(err))
		return nil, ErrInvalidToken
	}
	tenantID, _ := claims["tenant_id"].(string)
	sub, _ := claims["sub"].(string)
	azp, _ := claims["azp"].(string)
	if tenantID == "" || sub == "" || sub == azp {
		return nil, ErrInvalidToken
	}

	u, err := s.users.Get(ctx, tenantID, sub)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if u, err = s.resolver.Principal(ctx, u); err != nil {
		return nil, err
	}
	info := &UserInfo{
		Sub:           u.ID,
		Email:         u.Email,
		EmailVerified: u.EmailVerified,
		Name:          u.Name,
		GivenName:     u.GivenName,
		FamilyName:    u.FamilyName,
		Nickname:      u.Nickname,
		Picture:       u.Picture,
		Locale:        u.Locale,
	}
	if !u.UpdatedAt.IsZero() {
		info.UpdatedAt = u.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return info, nil
}
