// Package oauth contiene los controllers de /authorize, /oauth/token y
// /callback.
package oauth

import (
	"github.com/dropDatabas3/authhero/internal/http/controllers/respond"
	"github.com/dropDatabas3/authhero/internal/http/services/auth"
	svc "github.com/dropDatabas3/authhero/internal/http/services/oauth"
)

// Controllers agrupa los controllers del dominio OAuth.
type Controllers struct {
	Authorize *AuthorizeController
	Token     *TokenController
	Callback  *CallbackController
}

func NewControllers(oauth *svc.Service, authSvc *auth.Service, out *respond.Writer) *Controllers {
	return &Controllers{
		Authorize: NewAuthorizeController(oauth, authSvc, out),
		Token:     NewTokenController(oauth, authSvc, out),
		Callback:  NewCallbackController(authSvc, out),
	}
}
