package repository

import "strings"

// Response types aceptados en /authorize.
const (
	ResponseTypeCode         = "code"
	ResponseTypeToken        = "token"
	ResponseTypeIDToken      = "id_token"
	ResponseTypeTokenIDToken = "token id_token"
)

// Response modes.
const (
	ResponseModeQuery      = "query"
	ResponseModeFragment   = "fragment"
	ResponseModeWebMessage = "web_message"
)

// AuthParams son los parámetros del /authorize original. Viajan dentro de
// tickets, OTPs, universal login sessions y del authorization code.
type AuthParams struct {
	ClientID            string `json:"client_id"`
	RedirectURI         string `json:"redirect_uri,omitempty"`
	ResponseType        string `json:"response_type,omitempty"`
	ResponseMode        string `json:"response_mode,omitempty"`
	Audience            string `json:"audience,omitempty"`
	Scope               string `json:"scope,omitempty"`
	State               string `json:"state,omitempty"`
	Nonce               string `json:"nonce,omitempty"`
	CodeChallenge       string `json:"code_challenge,omitempty"`
	CodeChallengeMethod string `json:"code_challenge_method,omitempty"`
	Prompt              string `json:"prompt,omitempty"`
	Username            string `json:"username,omitempty"`
	VendorID            string `json:"vendor_id,omitempty"`
	UILocales           string `json:"ui_locales,omitempty"`
}

// NormalizedResponseType ordena "id_token token" → "token id_token" y aplica
// "code" como default.
func (p AuthParams) NormalizedResponseType() string {
	fields := strings.Fields(p.ResponseType)
	if len(fields) == 0 {
		return ResponseTypeCode
	}
	hasToken, hasID, hasCode := false, false, false
	for _, f := range fields {
		switch f {
		case "token":
			hasToken = true
		case "id_token":
			hasID = true
		case "code":
			hasCode = true
		}
	}
	switch {
	case hasCode:
		return ResponseTypeCode
	case hasToken && hasID:
		return ResponseTypeTokenIDToken
	case hasID:
		return ResponseTypeIDToken
	case hasToken:
		return ResponseTypeToken
	}
	return p.ResponseType
}

// Merge completa los campos vacíos de p con los de other.
func (p AuthParams) Merge(other AuthParams) AuthParams {
	fill := func(dst *string, src string) {
		if *dst == "" {
			*dst = src
		}
	}
	fill(&p.ClientID, other.ClientID)
	fill(&p.RedirectURI, other.RedirectURI)
	fill(&p.ResponseType, other.ResponseType)
	fill(&p.ResponseMode, other.ResponseMode)
	fill(&p.Audience, other.Audience)
	fill(&p.Scope, other.Scope)
	fill(&p.State, other.State)
	fill(&p.Nonce, other.Nonce)
	fill(&p.CodeChallenge, other.CodeChallenge)
	fill(&p.CodeChallengeMethod, other.CodeChallengeMethod)
	fill(&p.Prompt, other.Prompt)
	fill(&p.Username, other.Username)
	fill(&p.VendorID, other.VendorID)
	fill(&p.UILocales, other.UILocales)
	return p
}
