package helpers

import (
	"net/url"
	"strings"

	"github.com/dropDatabas3/authhero/internal/domain/repository"
)

// AuthParams arma los parámetros de /authorize desde v. prefix permite leer
// los anidados ("authParams.") que mandan los SDKs en /co/authenticate y
// /passwordless/start; los de nivel superior tienen prioridad.
func AuthParams(v url.Values, prefix string) repository.AuthParams {
	get := func(keys ...string) string {
		for _, k := range keys {
			if s := strings.TrimSpace(v.Get(k)); s != "" {
				return s
			}
			if prefix != "" {
				if s := strings.TrimSpace(v.Get(prefix + k)); s != "" {
					return s
				}
			}
		}
		return ""
	}
	return repository.AuthParams{
		ClientID:            get("client_id"),
		RedirectURI:         get("redirect_uri"),
		ResponseType:        get("response_type"),
		ResponseMode:        get("response_mode"),
		Audience:            get("audience"),
		Scope:               get("scope"),
		State:               get("state"),
		Nonce:               get("nonce"),
		CodeChallenge:       get("code_challenge"),
		CodeChallengeMethod: get("code_challenge_method"),
		Prompt:              get("prompt"),
		Username:            strings.ToLower(get("username", "login_hint")),
		VendorID:            get("vendor_id"),
		UILocales:           get("ui_locales"),
	}
}
