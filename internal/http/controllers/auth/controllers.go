// Package auth contiene los endpoints "Auth0 API" que usan los SDKs:
// dbconnections, passwordless, cross-origin authentication y logout.
package auth

import (
	"net/http"

	"github.com/dropDatabas3/authhero/internal/domain/repository"
	"github.com/dropDatabas3/authhero/internal/http/controllers/respond"
	httperrors "github.com/dropDatabas3/authhero/internal/http/errors"
	"github.com/dropDatabas3/authhero/internal/http/middlewares"
	svc "github.com/dropDatabas3/authhero/internal/http/services/auth"
)

// Controllers agrupa los controllers del dominio auth.
type Controllers struct {
	DBConnections *DBConnectionsController
	Passwordless  *PasswordlessController
	CrossOrigin   *CrossOriginController
	Logout        *LogoutController
}

func NewControllers(s *svc.Service, out *respond.Writer) *Controllers {
	return &Controllers{
		DBConnections: NewDBConnectionsController(s, out),
		Passwordless:  NewPasswordlessController(s, out),
		CrossOrigin:   NewCrossOriginController(s, out),
		Logout:        NewLogoutController(s, out),
	}
}

// allowCORS refleja el Origin si está en los web_origins del client. Un
// Origin ajeno recibe 403; sin Origin (server-to-server) se deja pasar.
func allowCORS(w http.ResponseWriter, r *http.Request, client *repository.Client) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if !middlewares.OriginAllowed(client.WebOrigins, origin) {
		httperrors.WriteOAuthError(w, http.StatusForbidden, "access_denied", "Origin "+origin+" is not allowed")
		return false
	}
	middlewares.AllowOrigin(w, origin)
	return true
}

func post(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodPost {
		return true
	}
	w.Header().Set("Allow", "POST")
	httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
	return false
}
