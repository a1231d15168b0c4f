// Package connection habla con los IdP federados configurados como
// Connection: arma la URL de autorización, intercambia el code y extrae el
// perfil del id_token o del userinfo_endpoint.
package connection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"

	"github.com/dropDatabas3/authhero/internal/domain/repository"
)

const StrategyApple = "apple"

var (
	ErrMisconfigured = errors.New("connection: misconfigured")
	ErrNoProfile     = errors.New("connection: no id_token or userinfo_endpoint")
)

// Profile son los claims normalizados del usuario federado.
type Profile struct {
	Sub           string
	Email         string
	EmailVerified bool
	Name          string
	GivenName     string
	FamilyName    string
	Nickname      string
	Picture       string
	Locale        string
	Raw           map[string]any
}

// Client es stateless; un mismo Client sirve a todas las conexiones.
type Client struct {
	http *http.Client
	now  func() time.Time
}

func New(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{http: httpClient, now: time.Now}
}

func (c *Client) config(conn *repository.Connection, redirectURI string) (*oauth2.Config, error) {
	o := withPreset(conn.Strategy, conn.Options)
	if o.ClientID == "" || o.AuthorizationEndpoint == "" || o.TokenEndpoint == "" {
		return nil, fmt.Errorf("%w: %s", ErrMisconfigured, conn.Name)
	}
	cfg := &oauth2.Config{
		ClientID:     o.ClientID,
		ClientSecret: o.ClientSecret,
		RedirectURL:  redirectURI,
		Endpoint: oauth2.Endpoint{
			AuthURL:  o.AuthorizationEndpoint,
			TokenURL: o.TokenEndpoint,
		},
		Scopes: strings.Fields(o.Scope),
	}
	if conn.Strategy == StrategyApple {
		secret, err := AppleClientSecret(o, c.now())
		if err != nil {
			return nil, err
		}
		cfg.ClientSecret = secret
		cfg.Endpoint.AuthStyle = oauth2.AuthStyleInParams
	}
	return cfg, nil
}

// AuthCodeURL devuelve la URL del IdP a la que se redirige el browser.
func (c *Client) AuthCodeURL(conn *repository.Connection, redirectURI, state string) (string, error) {
	cfg, err := c.config(conn, redirectURI)
	if err != nil {
		return "", err
	}
	var opts []oauth2.AuthCodeOption
	if rt := conn.Options.ResponseType; rt != "" && rt != "code" {
		opts = append(opts, oauth2.SetAuthURLParam("response_type", rt))
	}
	if rm := conn.Options.ResponseMode; rm != "" {
		opts = append(opts, oauth2.SetAuthURLParam("response_mode", rm))
	}
	return cfg.AuthCodeURL(state, opts...), nil
}

// Exchange canjea code y devuelve el perfil. Si la conexión tiene
// userinfo_endpoint se usa; si no, los claims del id_token.
func (c *Client) Exchange(ctx context.Context, conn *repository.Connection, redirectURI, code string) (*Profile, error) {
	cfg, err := c.config(conn, redirectURI)
	if err != nil {
		return nil, err
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.http)
	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("connection: exchange %s: %w", conn.Name, err)
	}

	if ep := withPreset(conn.Strategy, conn.Options).UserinfoEndpoint; ep != "" {
		p, err := c.userinfo(ctx, ep, tok.AccessToken)
		if err != nil {
			return nil, err
		}
		// /user de GitHub no trae email_verified
		if strings.EqualFold(conn.Strategy, StrategyGitHub) && !p.EmailVerified {
			p.Email = ""
			if err := c.fillGitHubEmail(ctx, p, tok.AccessToken); err != nil {
				return nil, err
			}
		}
		return p, nil
	}
	if raw, _ := tok.Extra("id_token").(string); raw != "" {
		return profileFromIDToken(raw)
	}
	return nil, ErrNoProfile
}

func (c *Client) userinfo(ctx context.Context, endpoint, accessToken string) (*Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("connection: userinfo: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("connection: userinfo http %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	var m map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		return nil, fmt.Errorf("connection: userinfo decode: %w", err)
	}
	return profileFromClaims(m), nil
}

// El id_token llega por back-channel TLS directo del token endpoint, así que
// sólo se leen los claims (OIDC Core 3.1.3.7).
func profileFromIDToken(raw string) (*Profile, error) {
	claims := jwtv5.MapClaims{}
	if _, _, err := jwtv5.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil, fmt.Errorf("connection: id_token: %w", err)
	}
	return profileFromClaims(claims), nil
}

func profileFromClaims(m map[string]any) *Profile {
	p := &Profile{
		Sub:        str(m, "sub"),
		Email:      strings.ToLower(str(m, "email")),
		Name:       str(m, "name"),
		GivenName:  str(m, "given_name"),
		FamilyName: str(m, "family_name"),
		Nickname:   str(m, "nickname"),
		Picture:    str(m, "picture"),
		Locale:     str(m, "locale"),
		Raw:        m,
	}
	if p.Sub == "" {
		// Algunos IdP OAuth2 (no OIDC) exponen "id" numérico.
		switch v := m["id"].(type) {
		case string:
			p.Sub = v
		case float64:
			p.Sub = fmt.Sprintf("%.0f", v)
		}
	}
	switch v := m["email_verified"].(type) {
	case bool:
		p.EmailVerified = v
	case string:
		// Apple lo manda como string.
		p.EmailVerified = v == "true"
	}
	if p.Picture == "" {
		p.Picture = str(m, "avatar_url")
	}
	if p.Nickname == "" {
		p.Nickname = str(m, "login")
	}
	return p
}

func str(m map[string]any, k string) string {
	s, _ := m[k].(string)
	return s
}
