package common

import (
	"context"
	"fmt"
	"time"

	"github.com/dropDatabas3/authhero/internal/domain/repository"
	"github.com/dropDatabas3/authhero/internal/jwt"
	"github.com/dropDatabas3/authhero/internal/oauth/state"
	"github.com/dropDatabas3/authhero/internal/validation"
)

// Tokens es el resultado de emisión, para el Response Applier o /oauth/token.
type Tokens struct {
	AccessToken string `json:"access_token,omitempty"`
	IDToken     string `json:"id_token,omitempty"`
	Code        string `json:"-"`
	Scope       string `json:"scope,omitempty"`
	ExpiresIn   int64  `json:"expires_in,omitempty"`
	TokenType   string `json:"token_type"`
}

// Minter emite access/ID tokens con el Issuer y authorization codes con el
// codec de state.
type Minter struct {
	Issuer  *jwt.Issuer
	Codes   *state.Codec
	BaseURL string // iss
	CodeTTL time.Duration
}

// ForLogin emite lo que pide response_type después de un login exitoso:
// code → authorization code; token / id_token / "token id_token" → tokens.
func (m *Minter) ForLogin(ctx context.Context, client *repository.Client, user *repository.User, p repository.AuthParams, sid string) (*Tokens, error) {
	out := &Tokens{TokenType: "Bearer", Scope: p.Scope}
	switch p.NormalizedResponseType() {
	case repository.ResponseTypeCode:
		code, err := m.Codes.EncodeCode(state.CodePayload{
			TenantID:   client.TenantID,
			UserID:     user.ID,
			AuthParams: p,
			Nonce:      p.Nonce,
			State:      p.State,
			SID:        sid,
			User:       user,
		}, m.CodeTTL)
		if err != nil {
			return nil, fmt.Errorf("encode code: %w", err)
		}
		out.Code = code
		return out, nil
	case repository.ResponseTypeToken:
		at, err := m.accessToken(ctx, client, user.ID, p.Audience, p.Scope)
		if err != nil {
			return nil, err
		}
		out.AccessToken, out.ExpiresIn = at, m.expiresIn()
	case repository.ResponseTypeIDToken:
		it, err := m.idToken(ctx, client, user, sid, p.Nonce)
		if err != nil {
			return nil, err
		}
		out.IDToken, out.ExpiresIn = it, m.expiresIn()
	case repository.ResponseTypeTokenIDToken:
		at, err := m.accessToken(ctx, client, user.ID, p.Audience, p.Scope)
		if err != nil {
			return nil, err
		}
		it, err := m.idToken(ctx, client, user, sid, p.Nonce)
		if err != nil {
			return nil, err
		}
		out.AccessToken, out.IDToken, out.ExpiresIn = at, it, m.expiresIn()
	default:
		return nil, fmt.Errorf("unsupported response_type %q", p.ResponseType)
	}
	return out, nil
}

// ForCode emite los tokens del authorization_code grant. El ID token sólo
// sale con scope openid.
func (m *Minter) ForCode(ctx context.Context, client *repository.Client, user *repository.User, code *state.Code) (*Tokens, error) {
	p := code.AuthParams
	at, err := m.accessToken(ctx, client, user.ID, p.Audience, p.Scope)
	if err != nil {
		return nil, err
	}
	out := &Tokens{AccessToken: at, TokenType: "Bearer", Scope: p.Scope, ExpiresIn: m.expiresIn()}
	if validation.HasScope(p.Scope, "openid") {
		nonce := code.Nonce
		if nonce == "" {
			nonce = p.Nonce
		}
		if out.IDToken, err = m.idToken(ctx, client, user, code.SID, nonce); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ForClient emite el access token de client_credentials: sin usuario, el
// sub es el propio client_id.
func (m *Minter) ForClient(ctx context.Context, client *repository.Client, audience, scope string) (*Tokens, error) {
	at, err := m.accessToken(ctx, client, client.ID, audience, scope)
	if err != nil {
		return nil, err
	}
	return &Tokens{AccessToken: at, TokenType: "Bearer", Scope: scope, ExpiresIn: m.expiresIn()}, nil
}

func (m *Minter) accessToken(ctx context.Context, client *repository.Client, sub, audience, scope string) (string, error) {
	if audience == "" {
		audience = client.Tenant.Audience
	}
	tok, err := m.Issuer.CreateAccessToken(ctx, jwt.AccessTokenParams{
		Issuer:   m.BaseURL,
		Subject:  sub,
		Audience: audience,
		Scope:    validation.NormalizeScope(scope),
		AZP:      client.ID,
		TenantID: client.TenantID,
	})
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return tok, nil
}

func (m *Minter) idToken(ctx context.Context, client *repository.Client, u *repository.User, sid, nonce string) (string, error) {
	tok, err := m.Issuer.CreateIDToken(ctx, jwt.IDTokenParams{
		Issuer:        m.BaseURL,
		Subject:       u.ID,
		Audience:      client.ID,
		SID:           sid,
		Nonce:         nonce,
		Email:         u.Email,
		EmailVerified: u.EmailVerified,
		Name:          u.Name,
		Nickname:      u.Nickname,
		GivenName:     u.GivenName,
		FamilyName:    u.FamilyName,
		Picture:       u.Picture,
		Locale:        u.Locale,
		UpdatedAt:     u.UpdatedAt,
	})
	if err != nil {
		return "", fmt.Errorf("sign id token: %w", err)
	}
	return tok, nil
}

func (m *Minter) expiresIn() int64 { return int64(m.Issuer.AccessTTL / time.Second) }
