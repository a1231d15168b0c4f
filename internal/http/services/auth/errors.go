package auth

import (
	"errors"
	"net/http"

	"github.com/dropDatabas3/authhero/internal/i18n"
)

// Kind clasifica los errores de los flujos.
type Kind string

const (
	KindClientNotFound         Kind = "client_not_found"
	KindTenantNotFound         Kind = "tenant_not_found"
	KindConnectionNotFound     Kind = "connection_not_found"
	KindInvalidRedirectURI     Kind = "invalid_redirect_uri"
	KindInvalidClientSecret    Kind = "invalid_client_secret"
	KindInvalidCodeChallenge   Kind = "invalid_code_challenge"
	KindInvalidGrant           Kind = "invalid_grant"
	KindUserNotFound           Kind = "user_not_found"
	KindInvalidPassword        Kind = "invalid_password"
	KindEmailNotVerified       Kind = "email_not_verified"
	KindCodeNotFoundOrExpired  Kind = "code_not_found_or_expired"
	KindTicketNotFound         Kind = "ticket_not_found"
	KindPublicSignupDisabled   Kind = "public_signup_disabled"
	KindUserExists             Kind = "user_exists"
	KindPrimaryAccountNotFound Kind = "primary_account_not_found"
	KindInvalidState           Kind = "invalid_state"
	KindUpstream               Kind = "upstream_error"
	KindInvalidRequest         Kind = "invalid_request"
	KindPasswordPolicy         Kind = "password_policy"
	KindUnsupportedGrantType   Kind = "unsupported_grant_type"
)

// Error es el error tipado de los flujos. errors.Is compara por Kind, así
// que los sentinels de abajo matchean cualquier *Error del mismo Kind.
type Error struct {
	Kind    Kind
	Message string
	Err     error

	ui string // clave i18n específica, pisa la del Kind
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func newErr(kind Kind, msg string) *Error { return &Error{Kind: kind, Message: msg} }

func wrapErr(kind Kind, err error, msg string) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// NewError y WrapError son newErr/wrapErr para los grants (services/oauth).
func NewError(kind Kind, msg string) *Error { return newErr(kind, msg) }

func WrapError(kind Kind, err error, msg string) *Error { return wrapErr(kind, err, msg) }

// formErr es un InvalidRequest con mensaje propio en el login hosteado.
func formErr(uiKey, msg string) *Error {
	return &Error{Kind: KindInvalidRequest, Message: msg, ui: uiKey}
}

var (
	ErrClientNotFound         = &Error{Kind: KindClientNotFound}
	ErrConnectionNotFound     = &Error{Kind: KindConnectionNotFound}
	ErrInvalidRedirectURI     = &Error{Kind: KindInvalidRedirectURI}
	ErrInvalidClientSecret    = &Error{Kind: KindInvalidClientSecret}
	ErrInvalidCodeChallenge   = &Error{Kind: KindInvalidCodeChallenge}
	ErrInvalidGrant           = &Error{Kind: KindInvalidGrant}
	ErrUserNotFound           = &Error{Kind: KindUserNotFound}
	ErrInvalidPassword        = &Error{Kind: KindInvalidPassword}
	ErrEmailNotVerified       = &Error{Kind: KindEmailNotVerified}
	ErrCodeNotFoundOrExpired  = &Error{Kind: KindCodeNotFoundOrExpired}
	ErrTicketNotFound         = &Error{Kind: KindTicketNotFound}
	ErrPublicSignupDisabled   = &Error{Kind: KindPublicSignupDisabled}
	ErrUserExists             = &Error{Kind: KindUserExists}
	ErrPrimaryAccountNotFound = &Error{Kind: KindPrimaryAccountNotFound}
	ErrInvalidState           = &Error{Kind: KindInvalidState}
	ErrInvalidRequest         = &Error{Kind: KindInvalidRequest}
	ErrPasswordPolicy         = &Error{Kind: KindPasswordPolicy}
	ErrUnsupportedGrantType   = &Error{Kind: KindUnsupportedGrantType}
)

// KindOf devuelve el Kind de err, o "" si no es un *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

type oauthMapping struct {
	code   string
	status int
}

var oauthByKind = map[Kind]oauthMapping{
	KindClientNotFound:         {"invalid_client", http.StatusForbidden},
	KindTenantNotFound:         {"invalid_request", http.StatusNotFound},
	KindConnectionNotFound:     {"invalid_request", http.StatusBadRequest},
	KindInvalidRedirectURI:     {"invalid_request", http.StatusBadRequest},
	KindInvalidClientSecret:    {"invalid_client", http.StatusForbidden},
	KindInvalidCodeChallenge:   {"invalid_grant", http.StatusForbidden},
	KindInvalidGrant:           {"invalid_grant", http.StatusForbidden},
	KindUserNotFound:           {"invalid_grant", http.StatusForbidden},
	KindInvalidPassword:        {"invalid_grant", http.StatusForbidden},
	KindEmailNotVerified:       {"invalid_grant", http.StatusForbidden},
	KindCodeNotFoundOrExpired:  {"invalid_grant", http.StatusForbidden},
	KindTicketNotFound:         {"invalid_request", http.StatusForbidden},
	KindPublicSignupDisabled:   {"access_denied", http.StatusBadRequest},
	KindUserExists:             {"invalid_signup", http.StatusBadRequest},
	KindPrimaryAccountNotFound: {"server_error", http.StatusInternalServerError},
	KindInvalidState:           {"invalid_request", http.StatusBadRequest},
	KindUpstream:               {"access_denied", http.StatusBadRequest},
	KindInvalidRequest:         {"invalid_request", http.StatusBadRequest},
	KindPasswordPolicy:         {"invalid_password", http.StatusBadRequest},
	KindUnsupportedGrantType:   {"unsupported_grant_type", http.StatusBadRequest},
}

// OAuth devuelve el par (error, status) RFC 6749 para err. Lo que no es un
// *Error es server_error/500.
func OAuth(err error) (code, description string, status int) {
	var e *Error
	if !errors.As(err, &e) {
		return "server_error", "internal error", http.StatusInternalServerError
	}
	m, ok := oauthByKind[e.Kind]
	if !ok {
		return "server_error", "internal error", http.StatusInternalServerError
	}
	description = e.Message
	if description == "" {
		description = string(e.Kind)
	}
	if m.status >= 500 {
		description = "internal error"
	}
	return m.code, description, m.status
}

var uiMessages = map[Kind]string{
	KindUserNotFound:          i18n.MsgUserNotFound,
	KindInvalidPassword:       i18n.MsgInvalidPassword,
	KindEmailNotVerified:      i18n.MsgEmailNotVerified,
	KindCodeNotFoundOrExpired: i18n.MsgCodeExpired,
	KindPublicSignupDisabled:  i18n.MsgSignupDisabled,
	KindUserExists:            i18n.MsgUserExists,
	KindPasswordPolicy:        i18n.MsgPasswordPolicy,
	KindInvalidRequest:        i18n.MsgSomethingWentWrong,
}

// UIMessage devuelve la clave i18n si err es un error de usuario que el login
// hosteado re-renderiza como formulario (400); ok=false para el resto.
func UIMessage(err error) (key string, ok bool) {
	var e *Error
	if !errors.As(err, &e) {
		return "", false
	}
	if e.ui != "" {
		return e.ui, true
	}
	key, ok = uiMessages[e.Kind]
	return key, ok
}
