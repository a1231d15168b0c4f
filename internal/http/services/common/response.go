package common

import (
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/dropDatabas3/authhero/internal/domain/repository"
	"github.com/dropDatabas3/authhero/internal/http/render"
)

var ErrNoRedirectURI = errors.New("response: redirect_uri is required")

// ResponseMode resuelve el modo efectivo: el pedido explícito, si no query
// para code y fragment para token/id_token.
func ResponseMode(p repository.AuthParams) string {
	switch p.ResponseMode {
	case repository.ResponseModeQuery, repository.ResponseModeFragment, repository.ResponseModeWebMessage:
		return p.ResponseMode
	}
	if p.NormalizedResponseType() == repository.ResponseTypeCode {
		return repository.ResponseModeQuery
	}
	return repository.ResponseModeFragment
}

// Apply es el Response Applier: redirect con query, redirect con fragment o
// web_message. Siempre incluye token_type=Bearer y state; scope sólo va en
// fragment.
func Apply(t *Tokens, p repository.AuthParams) (*Outcome, error) {
	mode := ResponseMode(p)
	v := url.Values{}
	v.Set("token_type", "Bearer")
	if t.AccessToken != "" {
		v.Set("access_token", t.AccessToken)
	}
	if t.IDToken != "" {
		v.Set("id_token", t.IDToken)
	}
	if t.Code != "" {
		v.Set("code", t.Code)
	}
	if t.ExpiresIn > 0 && (t.AccessToken != "" || t.IDToken != "") {
		v.Set("expires_in", strconv.FormatInt(t.ExpiresIn, 10))
	}
	v.Set("state", p.State)
	if mode == repository.ResponseModeFragment && t.Scope != "" {
		v.Set("scope", t.Scope)
	}
	return deliver(mode, p, v)
}

// ApplyError devuelve un error OAuth al client por el mismo canal que
// usaría la respuesta exitosa (login_required del silent auth, access_denied
// del IdP).
func ApplyError(p repository.AuthParams, code, description string) (*Outcome, error) {
	v := url.Values{}
	v.Set("error", code)
	if description != "" {
		v.Set("error_description", description)
	}
	v.Set("state", p.State)
	return deliver(ResponseMode(p), p, v)
}

func deliver(mode string, p repository.AuthParams, v url.Values) (*Outcome, error) {
	if strings.TrimSpace(p.RedirectURI) == "" {
		return nil, ErrNoRedirectURI
	}
	if mode == repository.ResponseModeWebMessage {
		origin := render.Origin(p.RedirectURI)
		if origin == "" {
			return nil, ErrNoRedirectURI
		}
		resp := make(map[string]string, len(v))
		for k := range v {
			resp[k] = v.Get(k)
		}
		return &Outcome{WebMessage: &render.WebMessage{Origin: origin, Response: resp}}, nil
	}
	u, err := url.Parse(p.RedirectURI)
	if err != nil {
		return nil, err
	}
	if mode == repository.ResponseModeFragment {
		u.Fragment, u.RawFragment = "", ""
		return RedirectTo(u.String() + "#" + v.Encode()), nil
	}
	q := u.Query()
	for k := range v {
		q.Set(k, v.Get(k))
	}
	u.RawQuery = q.Encode()
	return RedirectTo(u.String()), nil
}
