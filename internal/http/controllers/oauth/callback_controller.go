package oauth

import (
	"net/http"

	"github.com/dropDatabas3/authhero/internal/http/controllers/respond"
	httperrors "github.com/dropDatabas3/authhero/internal/http/errors"
	"github.com/dropDatabas3/authhero/internal/http/helpers"
	"github.com/dropDatabas3/authhero/internal/http/services/auth"
	"github.com/dropDatabas3/authhero/internal/observability/logger"
)

// CallbackController recibe la vuelta de los IdPs sociales, por query (GET)
// o form_post (POST).
type CallbackController struct {
	auth *auth.Service
	out  *respond.Writer
}

func NewCallbackController(authSvc *auth.Service, out *respond.Writer) *CallbackController {
	return &CallbackController{auth: authSvc, out: out}
}

func (c *CallbackController) Callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("CallbackController.Callback"))

	var src interface{ Get(string) string }
	switch r.Method {
	case http.MethodGet:
		src = r.URL.Query()
	case http.MethodPost:
		v, err := helpers.ReadParams(w, r)
		if err != nil {
			log.Debug("bad form_post body", logger.Err(err))
			httperrors.WriteError(w, httperrors.ErrBadRequest)
			return
		}
		src = v
	default:
		w.Header().Set("Allow", "GET, POST")
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
		return
	}

	cb := auth.CallbackParams{
		State:            src.Get("state"),
		Code:             src.Get("code"),
		Error:            src.Get("error"),
		ErrorDescription: src.Get("error_description"),
	}
	// la cookie de sesión no aplica acá: el login social siempre crea una nueva
	out, err := c.auth.SocialCallback(ctx, cb, respond.Meta(r, ""))
	if err != nil {
		c.out.OAuthError(w, r, err)
		return
	}
	c.out.Outcome(w, r, out)
}
