package auth

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/dropDatabas3/authhero/internal/domain/repository"
	"github.com/dropDatabas3/authhero/internal/http/render"
	"github.com/dropDatabas3/authhero/internal/http/services/common"
	"github.com/dropDatabas3/authhero/internal/i18n"
	"github.com/dropDatabas3/authhero/internal/observability/logger"
)

// newLoginSession crea la universal login session. El id lleva el tenant
// como prefijo ("{tenant}.{uuid}") para poder resolverla sólo con el state.
func (s *Service) newLoginSession(ctx context.Context, client *repository.Client, p repository.AuthParams) (*repository.UniversalLoginSession, error) {
	now := s.now()
	p.ClientID = client.ID
	ls := &repository.UniversalLoginSession{
		ID:         client.TenantID + "." + uuid.NewString(),
		TenantID:   client.TenantID,
		ClientID:   client.ID,
		AuthParams: p,
		VendorID:   p.VendorID,
		CreatedAt:  now,
		UpdatedAt:  now,
		ExpiresAt:  now.Add(s.d.Config.LoginTTL),
	}
	if err := s.d.LoginSessions.Create(ctx, ls); err != nil {
		return nil, err
	}
	return ls, nil
}

// LoginSession carga la login session del state y su client. Inexistente o
// vencida es InvalidState.
func (s *Service) LoginSession(ctx context.Context, stateID string) (*repository.UniversalLoginSession, *repository.Client, error) {
	i := strings.LastIndex(stateID, ".")
	if i <= 0 {
		return nil, nil, newErr(KindInvalidState, "invalid state")
	}
	ls, err := s.d.LoginSessions.Get(ctx, stateID[:i], stateID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, nil, newErr(KindInvalidState, "login session not found")
		}
		return nil, nil, err
	}
	if !s.now().Before(ls.ExpiresAt) {
		return nil, nil, newErr(KindInvalidState, "login session expired")
	}
	client, err := s.client(ctx, ls.ClientID)
	if err != nil {
		return nil, nil, err
	}
	return ls, client, nil
}

func (s *Service) saveLoginSession(ctx context.Context, ls *repository.UniversalLoginSession) error {
	ls.UpdatedAt = s.now()
	return s.d.LoginSessions.Update(ctx, ls)
}

func (s *Service) uPath(page, stateID string) string {
	return s.d.Config.BaseURL + "u/" + page + "?state=" + url.QueryEscape(stateID)
}

func (s *Service) page(client *repository.Client, ls *repository.UniversalLoginSession, m Meta, name string) render.Page {
	p := render.Page{
		Name:   name,
		Lang:   s.lang(client, ls.AuthParams, m),
		Tenant: client.Tenant,
		State:  ls.ID,
		Email:  ls.AuthParams.Username,
	}
	for _, c := range client.Connections {
		p.Connections = append(p.Connections, c.Name)
	}
	return p
}

// formError re-renderiza el form con el mensaje localizado si err es un
// error de usuario; si no, lo devuelve.
func formError(err error, p render.Page) (*common.Outcome, error) {
	key, ok := UIMessage(err)
	if !ok {
		return nil, err
	}
	p.Error = key
	return common.PageOf(http.StatusBadRequest, p), nil
}

func info(p render.Page, status int, msg string, args ...any) *common.Outcome {
	p.Name = render.PageInfo
	p.Message = msg
	p.MessageArgs = args
	return common.PageOf(status, p)
}

// StartUniversal arranca el login hosteado: con una sesión vigente ofrece
// continuar con esa cuenta, si no pide el email.
func (s *Service) StartUniversal(ctx context.Context, client *repository.Client, p repository.AuthParams, m Meta) (*common.Outcome, error) {
	ls, err := s.newLoginSession(ctx, client, p)
	if err != nil {
		return nil, err
	}
	sess, err := s.activeSession(ctx, client.TenantID, m.SessionID)
	if err != nil {
		return nil, err
	}
	if sess != nil {
		return common.RedirectTo(s.uPath(render.PageCheckAccount, ls.ID)), nil
	}
	return common.RedirectTo(s.uPath(render.PageEnterEmail, ls.ID)), nil
}

// UniversalPage es el GET de un paso de /u/*.
func (s *Service) UniversalPage(ctx context.Context, stateID, name, code string, m Meta) (*common.Outcome, error) {
	ls, client, err := s.LoginSession(ctx, stateID)
	if err != nil {
		return nil, err
	}
	p := s.page(client, ls, m, name)
	switch name {
	case render.PageCheckAccount:
		u, err := s.sessionUser(ctx, client, m.SessionID)
		if err != nil {
			return nil, err
		}
		if u == nil {
			return common.RedirectTo(s.uPath(render.PageEnterEmail, ls.ID)), nil
		}
		p.Email = u.Email
	case render.PageEnterEmail, render.PageEnterPassword, render.PageEnterCode,
		render.PageSignup, render.PageForgotPassword:
	case render.PageResetPassword:
		p.Code = code
	default:
		return nil, newErr(KindInvalidRequest, "unknown page")
	}
	return common.PageOf(http.StatusOK, p), nil
}

// sessionUser devuelve el principal de la sesión vigente o nil.
func (s *Service) sessionUser(ctx context.Context, client *repository.Client, sessionID string) (*repository.User, error) {
	sess, err := s.activeSession(ctx, client.TenantID, sessionID)
	if err != nil || sess == nil {
		return nil, err
	}
	u, err := s.d.Users.Get(ctx, client.TenantID, sess.UserID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return s.resolver.Principal(ctx, u)
}

// EnterEmail guarda el email en la login session. Con una cuenta de password
// pide el password; si no, manda un código y lo pide.
func (s *Service) EnterEmail(ctx context.Context, stateID, email string, m Meta) (*common.Outcome, error) {
	ls, client, err := s.LoginSession(ctx, stateID)
	if err != nil {
		return nil, err
	}
	email = normEmail(email)
	ls.AuthParams.Username = email
	p := s.page(client, ls, m, render.PageEnterEmail)
	if !validEmail(email) {
		return formError(formErr(i18n.MsgInvalidEmail, "invalid email"), p)
	}
	if err := s.saveLoginSession(ctx, ls); err != nil {
		return nil, err
	}

	u, err := s.resolver.UserByEmailAndProvider(ctx, client.TenantID, email, repository.ProviderPassword)
	if err != nil {
		return nil, err
	}
	if u != nil {
		return common.RedirectTo(s.uPath(render.PageEnterPassword, ls.ID)), nil
	}
	if client.DisableSignUps {
		existing, err := s.d.Users.GetByEmail(ctx, client.TenantID, email)
		if err != nil {
			return nil, err
		}
		if len(existing) == 0 {
			return formError(formErr(i18n.MsgUserNotFound, "user not found"), p)
		}
	}
	if _, err := s.createOTP(ctx, client, email, repository.OTPSendCode, ls.AuthParams, m); err != nil {
		return nil, err
	}
	return common.RedirectTo(s.uPath(render.PageEnterCode, ls.ID)), nil
}

func (s *Service) EnterPassword(ctx context.Context, stateID, email, plain string, m Meta) (*common.Outcome, error) {
	ls, client, err := s.LoginSession(ctx, stateID)
	if err != nil {
		return nil, err
	}
	if email = normEmail(email); email == "" {
		email = ls.AuthParams.Username
	}
	p := s.page(client, ls, m, render.PageEnterPassword)
	p.Email = email
	u, err := s.LoginWithPassword(ctx, client, email, plain, m)
	if err != nil {
		if KindOf(err) == KindEmailNotVerified {
			return info(p, http.StatusBadRequest, i18n.MsgVerifyEmailSent, email), nil
		}
		return formError(err, p)
	}
	return s.handleLogin(ctx, client, u, ls.AuthParams, m, strategyPassword, nil)
}

func (s *Service) EnterCode(ctx context.Context, stateID, code string, m Meta) (*common.Outcome, error) {
	ls, client, err := s.LoginSession(ctx, stateID)
	if err != nil {
		return nil, err
	}
	p := s.page(client, ls, m, render.PageEnterCode)
	u, _, err := s.LoginWithOTP(ctx, client, ls.AuthParams.Username, strings.TrimSpace(code), m)
	if err != nil {
		return formError(err, p)
	}
	return s.handleLogin(ctx, client, u, ls.AuthParams, m, strategyEmail, nil)
}

func (s *Service) SignupStep(ctx context.Context, stateID, email, plain, repeat string, m Meta) (*common.Outcome, error) {
	ls, client, err := s.LoginSession(ctx, stateID)
	if err != nil {
		return nil, err
	}
	email = normEmail(email)
	ls.AuthParams.Username = email
	p := s.page(client, ls, m, render.PageSignup)
	if plain != repeat {
		return formError(formErr(i18n.MsgPasswordsDontMatch, "passwords don't match"), p)
	}
	u, err := s.Signup(ctx, client, SignupRequest{Email: email, Password: plain, AuthParams: ls.AuthParams}, m)
	if err != nil {
		return formError(err, p)
	}
	if err := s.saveLoginSession(ctx, ls); err != nil {
		return nil, err
	}
	if client.EmailValidation == repository.EmailValidationEnforced {
		return info(p, http.StatusOK, i18n.MsgVerifyEmailSent, email), nil
	}
	s.recordLogin(ctx, u, m.IP)
	return s.handleLogin(ctx, client, u, ls.AuthParams, m, strategyPassword, nil)
}

func (s *Service) ForgotPassword(ctx context.Context, stateID, email string, m Meta) (*common.Outcome, error) {
	ls, client, err := s.LoginSession(ctx, stateID)
	if err != nil {
		return nil, err
	}
	email = normEmail(email)
	ls.AuthParams.Username = email
	p := s.page(client, ls, m, render.PageForgotPassword)
	if err := s.RequestPasswordReset(ctx, client, email, ls.AuthParams, m); err != nil {
		return formError(err, p)
	}
	return info(p, http.StatusOK, i18n.MsgResetSent), nil
}

func (s *Service) ResetPasswordStep(ctx context.Context, stateID, code, plain, repeat string, m Meta) (*common.Outcome, error) {
	ls, client, err := s.LoginSession(ctx, stateID)
	if err != nil {
		return nil, err
	}
	p := s.page(client, ls, m, render.PageResetPassword)
	p.Code = code
	if plain != repeat {
		return formError(formErr(i18n.MsgPasswordsDontMatch, "passwords don't match"), p)
	}
	if err := s.ResetPassword(ctx, client, ls.AuthParams.Username, code, plain, m); err != nil {
		return formError(err, p)
	}
	return info(p, http.StatusOK, i18n.MsgPasswordChanged), nil
}

func (s *Service) ValidateEmailStep(ctx context.Context, stateID, code string, m Meta) (*common.Outcome, error) {
	ls, client, err := s.LoginSession(ctx, stateID)
	if err != nil {
		return nil, err
	}
	p := s.page(client, ls, m, render.PageInfo)
	if _, err := s.ValidateEmail(ctx, client, ls.AuthParams.Username, code, m); err != nil {
		return formError(err, p)
	}
	return info(p, http.StatusOK, i18n.MsgEmailVerified), nil
}

// CheckAccount completa el login con el usuario de la sesión vigente,
// reusando la sesión. No cuenta como un login nuevo.
func (s *Service) CheckAccount(ctx context.Context, stateID string, m Meta) (*common.Outcome, error) {
	ls, client, err := s.LoginSession(ctx, stateID)
	if err != nil {
		return nil, err
	}
	sess, err := s.activeSession(ctx, client.TenantID, m.SessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return common.RedirectTo(s.uPath(render.PageEnterEmail, ls.ID)), nil
	}
	u, err := s.sessionUser(ctx, client, sess.ID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return common.RedirectTo(s.uPath(render.PageEnterEmail, ls.ID)), nil
	}
	if err := s.d.Sessions.Touch(ctx, client.TenantID, sess.ID, s.now()); err != nil {
		logger.From(ctx).Warn("session touch failed", logger.Layer("service"), logger.Op("CheckAccount"),
			logger.SessionID(sess.ID), logger.Err(err))
	}
	return s.handleLogin(ctx, client, u, ls.AuthParams, m, "session", sess)
}

// SocialFromUniversal arranca el login social desde un botón del login
// hosteado; el callback sabe que viene de /u/* por LoginState.
func (s *Service) SocialFromUniversal(ctx context.Context, stateID, connection string, m Meta) (*common.Outcome, error) {
	ls, client, err := s.LoginSession(ctx, stateID)
	if err != nil {
		return nil, err
	}
	return s.SocialStart(ctx, client, connection, ls.AuthParams, ls.ID, m)
}
