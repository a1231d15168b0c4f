package oauth

import (
	"context"
	"time"

	"github.com/dropDatabas3/authhero/internal/audit"
	"github.com/dropDatabas3/authhero/internal/domain/repository"
	"github.com/dropDatabas3/authhero/internal/http/services/auth"
	"github.com/dropDatabas3/authhero/internal/http/services/common"
	"github.com/dropDatabas3/authhero/internal/metrics"
	"github.com/dropDatabas3/authhero/internal/oauth/state"
	"github.com/dropDatabas3/authhero/internal/observability/logger"
	tokens "github.com/dropDatabas3/authhero/internal/security/token"
)

// Grant types soportados.
const (
	GrantAuthorizationCode = "authorization_code"
	GrantClientCredentials = "client_credentials"
)

// TokenRequest es el body de /oauth/token (form o JSON, credenciales por
// body o Basic).
type TokenRequest struct {
	GrantType    string
	ClientID     string
	ClientSecret string
	Code         string
	RedirectURI  string
	CodeVerifier string
	Audience     string
	Scope        string
}

// Token despacha por grant_type.
func (s *Service) Token(ctx context.Context, req TokenRequest, m auth.Meta) (*common.Tokens, error) {
	switch req.GrantType {
	case GrantAuthorizationCode:
		return s.authorizationCode(ctx, req, m)
	case GrantClientCredentials:
		return s.clientCredentials(ctx, req, m)
	case "":
		return nil, auth.NewError(auth.KindInvalidRequest, "grant_type is required")
	default:
		return nil, auth.NewError(auth.KindUnsupportedGrantType, "unsupported grant_type: "+req.GrantType)
	}
}

// authorizationCode canjea el code firmado. Con code_verifier exige PKCE;
// sin él exige client_secret. Cada code se canjea una sola vez (jti).
func (s *Service) authorizationCode(ctx context.Context, req TokenRequest, m auth.Meta) (*common.Tokens, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("authorizationCode"), logger.GrantType(GrantAuthorizationCode))

	client, err := s.d.Auth.Client(ctx, req.ClientID)
	if err != nil {
		return nil, err
	}
	fail := func(err error) (*common.Tokens, error) {
		s.emit(ctx, client, m, audit.FailedExchangeCode, "Failed exchange of authorization code", "")
		return nil, err
	}

	code, err := s.d.Minter.Codes.DecodeCode(req.Code)
	if err != nil {
		return fail(auth.WrapError(auth.KindInvalidGrant, err, "invalid authorization code"))
	}
	if code.AuthParams.ClientID != client.ID || code.TenantID != client.TenantID {
		return fail(auth.NewError(auth.KindInvalidGrant, "code was issued to another client"))
	}
	if req.RedirectURI != "" && code.AuthParams.RedirectURI != "" && req.RedirectURI != code.AuthParams.RedirectURI {
		return fail(auth.NewError(auth.KindInvalidGrant, "redirect_uri mismatch"))
	}
	if err := checkPKCE(client, code, req); err != nil {
		return fail(err)
	}

	fresh, err := s.d.Replay.Consume(ctx, code.JTI, s.ttlUntil(code))
	if err != nil {
		return nil, err
	}
	if !fresh {
		log.Warn("authorization code replay", logger.ClientID(client.ID))
		return fail(auth.NewError(auth.KindInvalidGrant, "authorization code already used"))
	}

	u, err := s.d.Users.Get(ctx, client.TenantID, code.UserID)
	if err != nil {
		if repository.IsNotFound(err) {
			return fail(auth.NewError(auth.KindInvalidGrant, "user no longer exists"))
		}
		return nil, err
	}
	toks, err := s.d.Minter.ForCode(ctx, client, u, code)
	if err != nil {
		return nil, err
	}
	s.emit(ctx, client, m, audit.SuccessExchangeCode, "Authorization Code for Access Token", u.ID)
	metrics.TokenIssued(GrantAuthorizationCode)
	return toks, nil
}

// ttlUntil es lo que le queda de vida al code; el replay guard lo recuerda
// ese tiempo.
func (s *Service) ttlUntil(code *state.Code) time.Duration {
	if d := code.ExpiresAt.Sub(s.d.Now()); d > 0 {
		return d
	}
	return time.Minute
}

func checkPKCE(client *repository.Client, code *state.Code, req TokenRequest) error {
	p := code.AuthParams
	if req.CodeVerifier != "" {
		if p.CodeChallenge == "" {
			return auth.NewError(auth.KindInvalidCodeChallenge, "code was issued without code_challenge")
		}
		got, err := tokens.ComputeCodeChallenge(req.CodeVerifier, p.CodeChallengeMethod)
		if err != nil || !tokens.Equal(got, p.CodeChallenge) {
			return auth.NewError(auth.KindInvalidCodeChallenge, "code_verifier does not match")
		}
		return nil
	}
	if p.CodeChallenge != "" {
		return auth.NewError(auth.KindInvalidCodeChallenge, "code_verifier is required")
	}
	if client.ClientSecret == "" || !tokens.Equal(req.ClientSecret, client.ClientSecret) {
		return auth.NewError(auth.KindInvalidClientSecret, "invalid client_secret")
	}
	return nil
}

func (s *Service) clientCredentials(ctx context.Context, req TokenRequest, m auth.Meta) (*common.Tokens, error) {
	client, err := s.d.Auth.Client(ctx, req.ClientID)
	if err != nil {
		return nil, err
	}
	if client.ClientSecret == "" || !tokens.Equal(req.ClientSecret, client.ClientSecret) {
		s.emit(ctx, client, m, audit.FailedClientCredentials, "Failed client credentials exchange", "")
		return nil, auth.NewError(auth.KindInvalidClientSecret, "invalid client_secret")
	}
	toks, err := s.d.Minter.ForClient(ctx, client, req.Audience, req.Scope)
	if err != nil {
		return nil, err
	}
	s.emit(ctx, client, m, audit.SuccessClientCredentials, "Client Credentials for Access Token", "")
	metrics.TokenIssued(GrantClientCredentials)
	return toks, nil
}
