package connection

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/dropDatabas3/authhero/internal/domain/repository"
)

const (
	StrategyGoogle = "google-oauth2"
	StrategyGitHub = "github"
)

// preset son los endpoints de un IdP conocido; las conexiones con esa
// strategy sólo necesitan client_id/client_secret.
type preset struct {
	AuthorizationEndpoint string
	TokenEndpoint         string
	UserinfoEndpoint      string
	Scope                 string
	// EmailsEndpoint: GitHub no devuelve el email en /user si es privado.
	EmailsEndpoint string
}

var presets = map[string]preset{
	StrategyGoogle: {
		AuthorizationEndpoint: "https://accounts.google.com/o/oauth2/v2/auth",
		TokenEndpoint:         "https://oauth2.googleapis.com/token",
		Scope:                 "openid email profile",
	},
	StrategyGitHub: {
		AuthorizationEndpoint: "https://github.com/login/oauth/authorize",
		TokenEndpoint:         "https://github.com/login/oauth/access_token",
		UserinfoEndpoint:      "https://api.github.com/user",
		Scope:                 "read:user user:email",
		EmailsEndpoint:        "https://api.github.com/user/emails",
	},
}

// withPreset completa los campos vacíos de o con el preset de strategy.
func withPreset(strategy string, o repository.ConnectionOptions) repository.ConnectionOptions {
	p, ok := presets[strings.ToLower(strategy)]
	if !ok {
		return o
	}
	if o.AuthorizationEndpoint == "" {
		o.AuthorizationEndpoint = p.AuthorizationEndpoint
	}
	if o.TokenEndpoint == "" {
		o.TokenEndpoint = p.TokenEndpoint
	}
	if o.UserinfoEndpoint == "" {
		o.UserinfoEndpoint = p.UserinfoEndpoint
	}
	if o.Scope == "" {
		o.Scope = p.Scope
	}
	return o
}

type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

// fillGitHubEmail busca el email primario verificado; si no hay, cualquiera
// verificado. Un email no verificado no se usa.
func (c *Client) fillGitHubEmail(ctx context.Context, p *Profile, accessToken string) error {
	endpoint := presets[StrategyGitHub].EmailsEndpoint
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("connection: github emails: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("connection: github emails http %d", resp.StatusCode)
	}
	var emails []githubEmail
	if err := json.NewDecoder(resp.Body).Decode(&emails); err != nil {
		return fmt.Errorf("connection: github emails decode: %w", err)
	}
	pick := func(primary bool) bool {
		for _, e := range emails {
			if e.Verified && (!primary || e.Primary) {
				p.Email, p.EmailVerified = strings.ToLower(e.Email), true
				return true
			}
		}
		return false
	}
	if !pick(true) {
		pick(false)
	}
	return nil
}
