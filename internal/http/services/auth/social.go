package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/dropDatabas3/authhero/internal/audit"
	"github.com/dropDatabas3/authhero/internal/domain/repository"
	"github.com/dropDatabas3/authhero/internal/http/render"
	"github.com/dropDatabas3/authhero/internal/http/services/common"
	"github.com/dropDatabas3/authhero/internal/i18n"
	"github.com/dropDatabas3/authhero/internal/metrics"
	"github.com/dropDatabas3/authhero/internal/oauth/connection"
	"github.com/dropDatabas3/authhero/internal/oauth/state"
	"github.com/dropDatabas3/authhero/internal/observability/logger"
)

func (s *Service) callbackURL() string { return s.d.Config.BaseURL + "callback" }

// SocialStart redirige al IdP de la conexión. Los authParams viajan firmados
// en el state; loginState es la login session si el flujo viene de /u/*.
func (s *Service) SocialStart(ctx context.Context, client *repository.Client, connName string, p repository.AuthParams, loginState string, m Meta) (*common.Outcome, error) {
	conn, ok := client.Connection(connName)
	if !ok {
		return nil, s.FailProtocol(ctx, client, m, newErr(KindConnectionNotFound, "connection not found: "+connName))
	}
	if err := checkRedirect(client, p.RedirectURI); err != nil {
		return nil, s.FailProtocol(ctx, client, m, err)
	}
	p.ClientID = client.ID
	st, err := s.d.States.EncodeSocial(state.SocialPayload{
		TenantID:   client.TenantID,
		Connection: conn.Name,
		AuthParams: p,
		LoginState: loginState,
	}, s.d.Config.SocialStateTTL)
	if err != nil {
		return nil, err
	}
	u, err := s.d.Connections.AuthCodeURL(conn, s.callbackURL(), st)
	if err != nil {
		return nil, wrapErr(KindConnectionNotFound, err, "connection misconfigured")
	}
	return common.RedirectTo(u), nil
}

// CallbackParams es el query (o form_post) que devuelve el IdP en /callback.
type CallbackParams struct {
	State            string
	Code             string
	Error            string
	ErrorDescription string
}

// SocialCallback completa el login social: valida el state, intercambia el
// code, resuelve o crea la identidad {connection}|{sub} y termina en
// handleLogin.
func (s *Service) SocialCallback(ctx context.Context, cb CallbackParams, m Meta) (*common.Outcome, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("SocialCallback"))

	sp, err := s.d.States.DecodeSocial(cb.State)
	if err != nil {
		return nil, wrapErr(KindInvalidState, err, "invalid social state")
	}
	client, err := s.client(ctx, sp.AuthParams.ClientID)
	if err != nil {
		return nil, err
	}
	if client.TenantID != sp.TenantID {
		return nil, newErr(KindInvalidState, "state tenant mismatch")
	}
	p := sp.AuthParams
	if err := checkRedirect(client, p.RedirectURI); err != nil {
		return nil, s.FailProtocol(ctx, client, m, err)
	}
	conn, ok := client.Connection(sp.Connection)
	if !ok {
		return nil, s.FailProtocol(ctx, client, m, newErr(KindConnectionNotFound, "connection not found: "+sp.Connection))
	}
	log = log.With(logger.TenantID(client.TenantID), logger.ClientID(client.ID), logger.Connection(conn.Name))

	if cb.Error != "" {
		log.Info("upstream denied", logger.String("error", cb.Error))
		s.failLogin(ctx, client, m, audit.FailedLogin, "Upstream error: "+cb.Error, conn.Name, "")
		out, err := common.ApplyError(p, cb.Error, cb.ErrorDescription)
		if errors.Is(err, common.ErrNoRedirectURI) {
			return nil, newErr(KindUpstream, cb.Error)
		}
		return out, err
	}

	profile, err := s.d.Connections.Exchange(ctx, conn, s.callbackURL(), cb.Code)
	if err != nil {
		log.Warn("upstream exchange failed", logger.Err(err))
		s.failLogin(ctx, client, m, audit.FailedLogin, "Upstream exchange failed", conn.Name, "")
		return nil, wrapErr(KindUpstream, err, "upstream exchange failed")
	}
	if profile.Sub == "" {
		return nil, newErr(KindUpstream, "upstream profile without sub")
	}

	u, err := s.socialUser(ctx, client, conn, profile)
	if err != nil {
		return nil, err
	}
	if u == nil {
		if client.DisableSignUps && sp.LoginState == "" {
			s.emit(ctx, client, m, audit.FailedSignup, "Public signup is disabled", nil, func(e *audit.Event) {
				e.UserName = normEmail(profile.Email)
				e.Connection = conn.Name
			})
			metrics.Login(conn.Name, false)
			return info(render.Page{
				Lang:   s.lang(client, p, m),
				Tenant: client.Tenant,
			}, http.StatusBadRequest, i18n.MsgUserNotFound), nil
		}
		if u, err = s.createSocialUser(ctx, client, conn, profile, m); err != nil {
			return nil, err
		}
	} else if u, err = s.resolver.Principal(ctx, u); err != nil {
		return nil, err
	}

	s.recordLogin(ctx, u, m.IP)
	return s.handleLogin(ctx, client, u, p, m, conn.Name, nil)
}

// socialUser busca la identidad existente de (email, connection) y, si no
// está, por id {connection}|{sub}: el IdP puede haber cambiado el email. En
// ese caso se actualizan email y perfil guardados.
func (s *Service) socialUser(ctx context.Context, client *repository.Client, conn *repository.Connection, profile *connection.Profile) (*repository.User, error) {
	email := normEmail(profile.Email)
	if email != "" {
		u, err := s.resolver.UserByEmailAndProvider(ctx, client.TenantID, email, conn.Name)
		if err != nil || u != nil {
			return u, err
		}
	}
	u, err := s.d.Users.Get(ctx, client.TenantID, conn.Name+"|"+profile.Sub)
	if repository.IsNotFound(err) {
		return nil, nil
	}
	if err != nil || email == "" || email == u.Email {
		return u, err
	}

	logger.From(ctx).Info("upstream email changed", logger.Layer("service"), logger.Op("socialUser"),
		logger.TenantID(client.TenantID), logger.UserID(u.ID))
	upd := repository.UserUpdate{
		Email:         &email,
		EmailVerified: &profile.EmailVerified,
		ProfileData:   profile.Raw,
	}
	if profile.Name != "" {
		upd.Name = &profile.Name
	}
	if profile.Picture != "" {
		upd.Picture = &profile.Picture
	}
	if err := s.d.Users.Update(ctx, client.TenantID, u.ID, upd); err != nil {
		return nil, err
	}
	u.Email, u.EmailVerified = email, profile.EmailVerified
	return u, nil
}

// createSocialUser crea la identidad y la linkea a la primaria del email si
// existe. Devuelve el principal.
func (s *Service) createSocialUser(ctx context.Context, client *repository.Client, conn *repository.Connection, profile *connection.Profile, m Meta) (*repository.User, error) {
	email := normEmail(profile.Email)
	u := &repository.User{
		ID:            conn.Name + "|" + profile.Sub,
		TenantID:      client.TenantID,
		Email:         email,
		EmailVerified: profile.EmailVerified,
		Provider:      conn.Name,
		Connection:    conn.Name,
		IsSocial:      true,
		Name:          profile.Name,
		GivenName:     profile.GivenName,
		FamilyName:    profile.FamilyName,
		Nickname:      profile.Nickname,
		Picture:       profile.Picture,
		Locale:        profile.Locale,
		ProfileData:   profile.Raw,
	}

	var primary *repository.User
	if email != "" {
		var err error
		if primary, err = s.resolver.PrimaryUserByEmail(ctx, client.TenantID, email); err != nil {
			return nil, err
		}
	}
	if primary != nil {
		u.LinkedTo = primary.ID
	}
	if err := s.d.Users.Create(ctx, u); err != nil {
		return nil, err
	}
	s.emit(ctx, client, m, audit.SuccessSignup, "Successful signup", u, nil)
	if primary != nil {
		return primary, nil
	}
	return u, nil
}
