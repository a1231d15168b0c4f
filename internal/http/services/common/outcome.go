// Package common reúne lo que comparten los flujos de login y los grants:
// la emisión de tokens/codes, el Response Applier y el Outcome que el
// controller traduce a HTTP.
package common

import (
	"github.com/dropDatabas3/authhero/internal/domain/repository"
	"github.com/dropDatabas3/authhero/internal/http/render"
)

// Outcome es el resultado de un flujo; exactamente uno de Redirect, Page,
// WebMessage o JSON viene seteado.
type Outcome struct {
	Redirect   string
	Page       *render.Page
	Status     int // status de Page/JSON; 0 = 200
	WebMessage *render.WebMessage
	JSON       any

	// Session != nil: el controller setea la cookie {tenant}-auth-token.
	Session *repository.Session
	// ClearSessionOf != "": borrar la cookie de ese tenant.
	ClearSessionOf string
}

func RedirectTo(u string) *Outcome { return &Outcome{Redirect: u} }

func PageOf(status int, p render.Page) *Outcome { return &Outcome{Status: status, Page: &p} }
