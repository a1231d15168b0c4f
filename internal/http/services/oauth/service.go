// Package oauth es la superficie OAuth2 del engine: el dispatcher de
// /authorize y los grants de /oauth/token.
package oauth

import (
	"context"
	"time"

	"github.com/dropDatabas3/authhero/internal/audit"
	"github.com/dropDatabas3/authhero/internal/domain/repository"
	"github.com/dropDatabas3/authhero/internal/http/services/auth"
	"github.com/dropDatabas3/authhero/internal/http/services/common"
	"github.com/dropDatabas3/authhero/internal/observability/logger"
)

// Replay marca jti de authorization codes ya canjeados (store/kv.ReplayGuard).
type Replay interface {
	Consume(ctx context.Context, id string, ttl time.Duration) (bool, error)
}

type Deps struct {
	Auth   *auth.Service
	Users  repository.UserRepository
	Minter *common.Minter
	Replay Replay
	Audit  audit.Emitter
	Now    func() time.Time
}

type Service struct{ d Deps }

func NewService(d Deps) *Service {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Audit == nil {
		d.Audit = audit.Nop{}
	}
	return &Service{d: d}
}

// AuthorizeRequest es el query de /authorize.
type AuthorizeRequest struct {
	Params      repository.AuthParams
	Connection  string
	LoginTicket string
	Realm       string
}

// Authorize resuelve el client, valida redirect_uri y elige el flujo:
// prompt=none → silent; connection → social; login_ticket → ticket; si no,
// login universal.
func (s *Service) Authorize(ctx context.Context, req AuthorizeRequest, m auth.Meta) (*common.Outcome, error) {
	p := req.Params
	client, err := s.d.Auth.Client(ctx, p.ClientID)
	if err != nil {
		return nil, err
	}
	if err := auth.CheckRedirect(client, p.RedirectURI); err != nil {
		return nil, s.d.Auth.FailProtocol(ctx, client, m, err)
	}
	switch p.NormalizedResponseType() {
	case repository.ResponseTypeCode, repository.ResponseTypeToken,
		repository.ResponseTypeIDToken, repository.ResponseTypeTokenIDToken:
	default:
		return nil, auth.NewError(auth.KindInvalidRequest, "unsupported response_type")
	}

	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("Authorize"),
		logger.TenantID(client.TenantID), logger.ClientID(client.ID))

	switch {
	case p.Prompt == "none":
		log.Debug("silent auth")
		return s.d.Auth.Silent(ctx, client, p, m)
	case req.Connection != "":
		log.Debug("social login", logger.Connection(req.Connection))
		return s.d.Auth.SocialStart(ctx, client, req.Connection, p, "", m)
	case req.LoginTicket != "":
		log.Debug("ticket login")
		return s.d.Auth.TicketLogin(ctx, client, req.LoginTicket, req.Realm, p, m)
	default:
		return s.d.Auth.StartUniversal(ctx, client, p, m)
	}
}

func (s *Service) emit(ctx context.Context, client *repository.Client, m auth.Meta, typ, desc, userID string) {
	ev := audit.Event{Type: typ, Description: desc, IP: m.IP, UserAgent: m.UserAgent, UserID: userID}
	if client != nil {
		ev.TenantID, ev.ClientID = client.TenantID, client.ID
	}
	s.d.Audit.Emit(ctx, ev)
}
