package auth

import (
	"context"
	"net/mail"
	"net/url"

	"github.com/google/uuid"

	"github.com/dropDatabas3/authhero/internal/audit"
	"github.com/dropDatabas3/authhero/internal/domain/repository"
	"github.com/dropDatabas3/authhero/internal/http/services/common"
	"github.com/dropDatabas3/authhero/internal/i18n"
	"github.com/dropDatabas3/authhero/internal/observability/logger"
	tokens "github.com/dropDatabas3/authhero/internal/security/token"
)

const (
	otpDigits     = 6
	strategyEmail = "email"
)

func validEmail(e string) bool {
	a, err := mail.ParseAddress(e)
	return err == nil && a.Address == e
}

// StartRequest es el body de /passwordless/start.
type StartRequest struct {
	Email      string
	Send       string // code | link
	AuthParams repository.AuthParams
}

// StartPasswordless crea un OTP de 6 dígitos y lo envía como código o como
// magic link (/passwordless/verify_redirect).
func (s *Service) StartPasswordless(ctx context.Context, client *repository.Client, req StartRequest, m Meta) error {
	email := normEmail(req.Email)
	if !validEmail(email) {
		return formErr(i18n.MsgInvalidEmail, "invalid email")
	}
	send := req.Send
	if send == "" {
		send = repository.OTPSendCode
	}
	if send != repository.OTPSendCode && send != repository.OTPSendLink {
		return newErr(KindInvalidRequest, "send must be code or link")
	}
	if err := checkRedirect(client, req.AuthParams.RedirectURI); err != nil {
		return err
	}
	if err := s.checkEmailSignup(ctx, client, email, m); err != nil {
		return err
	}
	req.AuthParams.ClientID = client.ID
	_, err := s.createOTP(ctx, client, email, send, req.AuthParams, m)
	return err
}

func (s *Service) createOTP(ctx context.Context, client *repository.Client, email, send string, p repository.AuthParams, m Meta) (*repository.OTP, error) {
	code, err := tokens.GenerateNumericCode(otpDigits)
	if err != nil {
		return nil, err
	}
	now := s.now()
	otp := &repository.OTP{
		ID:         uuid.NewString(),
		TenantID:   client.TenantID,
		ClientID:   client.ID,
		Email:      email,
		Code:       code,
		Send:       send,
		AuthParams: p,
		IP:         m.IP,
		CreatedAt:  now,
		ExpiresAt:  now.Add(s.d.Config.OTPTTL),
	}
	if err := s.d.OTPs.Create(ctx, otp); err != nil {
		return nil, err
	}

	lang := s.lang(client, p, m)
	if send == repository.OTPSendLink {
		err = s.d.Email.SendLink(ctx, client.Tenant, lang, email, code, s.magicLink(client, email, code, p))
		s.emit(ctx, client, m, audit.CodeLinkSent, "Link sent", nil, func(e *audit.Event) { e.UserName = email })
	} else {
		err = s.d.Email.SendCode(ctx, client.Tenant, lang, email, code, s.d.Config.OTPTTL)
		s.emit(ctx, client, m, audit.CodeSent, "Code sent", nil, func(e *audit.Event) { e.UserName = email })
	}
	if err != nil {
		logger.From(ctx).Error("send otp failed", logger.Layer("service"), logger.Op("createOTP"),
			logger.TenantID(client.TenantID), logger.Err(err))
		return nil, err
	}
	return otp, nil
}

func (s *Service) magicLink(client *repository.Client, email, code string, p repository.AuthParams) string {
	v := url.Values{}
	v.Set("verification_code", code)
	v.Set("connection", strategyEmail)
	v.Set("client_id", client.ID)
	v.Set("email", email)
	set := func(k, val string) {
		if val != "" {
			v.Set(k, val)
		}
	}
	set("redirect_uri", p.RedirectURI)
	set("response_type", p.ResponseType)
	set("response_mode", p.ResponseMode)
	set("scope", p.Scope)
	set("state", p.State)
	set("nonce", p.Nonce)
	set("audience", p.Audience)
	set("code_challenge", p.CodeChallenge)
	set("code_challenge_method", p.CodeChallengeMethod)
	return s.d.Config.BaseURL + "passwordless/verify_redirect?" + v.Encode()
}

// consumeOTP busca un OTP vigente con ese código y lo consume. Si otro
// request lo consumió primero, CodeNotFoundOrExpired.
func (s *Service) consumeOTP(ctx context.Context, client *repository.Client, email, code string) (*repository.OTP, error) {
	list, err := s.d.OTPs.List(ctx, client.TenantID, normEmail(email))
	if err != nil {
		return nil, err
	}
	now := s.now()
	for i := range list {
		o := list[i]
		if !now.Before(o.ExpiresAt) || !tokens.Equal(o.Code, code) {
			continue
		}
		if err := s.d.OTPs.Remove(ctx, client.TenantID, o.ID); err != nil {
			if repository.IsNotFound(err) {
				break
			}
			return nil, err
		}
		return &o, nil
	}
	return nil, newErr(KindCodeNotFoundOrExpired, "code not found or expired")
}

// ensureEmailUser devuelve el principal de la identidad email, creándola si
// no existe (linkeada a la primaria del email si hay una).
func (s *Service) ensureEmailUser(ctx context.Context, client *repository.Client, email string, m Meta) (*repository.User, error) {
	email = normEmail(email)
	u, err := s.resolver.UserByEmailAndProvider(ctx, client.TenantID, email, repository.ProviderEmail)
	if err != nil {
		return nil, err
	}
	if u != nil {
		return s.resolver.Principal(ctx, u)
	}
	if err := s.checkEmailSignup(ctx, client, email, m); err != nil {
		return nil, err
	}

	primary, err := s.resolver.PrimaryUserByEmail(ctx, client.TenantID, email)
	if err != nil {
		return nil, err
	}
	u = &repository.User{
		ID:            repository.ProviderEmail + "|" + uuid.NewString(),
		TenantID:      client.TenantID,
		Email:         email,
		EmailVerified: true,
		Provider:      repository.ProviderEmail,
		Connection:    strategyEmail,
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

// checkEmailSignup rechaza con disable_sign_ups un email sin ningún usuario
// en el tenant.
func (s *Service) checkEmailSignup(ctx context.Context, client *repository.Client, email string, m Meta) error {
	if !client.DisableSignUps {
		return nil
	}
	existing, err := s.d.Users.GetByEmail(ctx, client.TenantID, email)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	s.emit(ctx, client, m, audit.FailedSignup, "Public signup is disabled", nil, func(e *audit.Event) {
		e.UserName = email
		e.Connection = strategyEmail
	})
	return newErr(KindPublicSignupDisabled, "public signup is disabled")
}

// LoginWithOTP es la verificación passwordless: consume el OTP, resuelve o
// crea el usuario email y registra el login. Devuelve también el OTP para
// recuperar los authParams guardados.
func (s *Service) LoginWithOTP(ctx context.Context, client *repository.Client, email, code string, m Meta) (*repository.User, *repository.OTP, error) {
	otp, err := s.consumeOTP(ctx, client, email, code)
	if err != nil {
		s.failLogin(ctx, client, m, audit.FailedLogin, "Wrong email or verification code.", strategyEmail, normEmail(email))
		return nil, nil, err
	}
	u, err := s.ensureEmailUser(ctx, client, email, m)
	if err != nil {
		return nil, nil, err
	}
	s.recordLogin(ctx, u, m.IP)
	return u, otp, nil
}

// VerifyRedirect es el magic link: verifica y completa el login con los
// authParams guardados en el OTP (los del link sólo completan vacíos).
func (s *Service) VerifyRedirect(ctx context.Context, client *repository.Client, email, code string, p repository.AuthParams, m Meta) (*common.Outcome, error) {
	u, otp, err := s.LoginWithOTP(ctx, client, email, code, m)
	if err != nil {
		return nil, err
	}
	params := otp.AuthParams.Merge(p)
	params.ClientID = client.ID
	return s.handleLogin(ctx, client, u, params, m, strategyEmail, nil)
}
