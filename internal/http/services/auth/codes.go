package auth

import (
	"context"
	"net/url"

	"github.com/dropDatabas3/authhero/internal/audit"
	"github.com/dropDatabas3/authhero/internal/domain/repository"
	"github.com/dropDatabas3/authhero/internal/i18n"
	"github.com/dropDatabas3/authhero/internal/observability/logger"
	tokens "github.com/dropDatabas3/authhero/internal/security/token"
)

const codeBytes = 24

func (s *Service) createCode(ctx context.Context, u *repository.User, typ string) (string, error) {
	id, err := tokens.GenerateOpaqueToken(codeBytes)
	if err != nil {
		return "", err
	}
	now := s.now()
	c := &repository.Code{
		ID:        id,
		TenantID:  u.TenantID,
		UserID:    u.ID,
		Type:      typ,
		CreatedAt: now,
		ExpiresAt: now.Add(s.d.Config.CodeTTL),
	}
	if err := s.d.Codes.Create(ctx, c); err != nil {
		return "", err
	}
	return id, nil
}

// consumeCode consume un code vigente del tipo pedido. Igual que los OTP,
// un Remove perdido es CodeNotFoundOrExpired.
func (s *Service) consumeCode(ctx context.Context, u *repository.User, typ, code string) error {
	list, err := s.d.Codes.List(ctx, u.TenantID, u.ID)
	if err != nil {
		return err
	}
	now := s.now()
	for _, c := range list {
		if c.Type != typ || !now.Before(c.ExpiresAt) || !tokens.Equal(c.ID, code) {
			continue
		}
		if err := s.d.Codes.Remove(ctx, u.TenantID, c.ID); err != nil {
			if repository.IsNotFound(err) {
				break
			}
			return err
		}
		return nil
	}
	return newErr(KindCodeNotFoundOrExpired, "code not found or expired")
}

// userLink arma {base}u/{page}?state=&code= con una login session nueva
// para el email del usuario.
func (s *Service) userLink(ctx context.Context, client *repository.Client, page, email, code string, p repository.AuthParams) (string, error) {
	p.ClientID = client.ID
	p.Username = email
	ls, err := s.newLoginSession(ctx, client, p)
	if err != nil {
		return "", err
	}
	v := url.Values{}
	v.Set("state", ls.ID)
	v.Set("code", code)
	return s.d.Config.BaseURL + "u/" + page + "?" + v.Encode(), nil
}

// sendValidationEmail crea un code email_verification y manda el link.
func (s *Service) sendValidationEmail(ctx context.Context, client *repository.Client, u *repository.User, lang string) error {
	code, err := s.createCode(ctx, u, repository.CodeTypeEmailVerification)
	if err != nil {
		return err
	}
	link, err := s.userLink(ctx, client, "validate-email", u.Email, code, repository.AuthParams{})
	if err != nil {
		return err
	}
	return s.d.Email.SendValidateEmailAddress(ctx, client.Tenant, lang, u.Email, link)
}

// ValidateEmail consume el code de verificación, marca el email verificado
// y, si ya existe una primaria con ese email, linkea la identidad a ella.
func (s *Service) ValidateEmail(ctx context.Context, client *repository.Client, email, code string, m Meta) (*repository.User, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("ValidateEmail"), logger.TenantID(client.TenantID))
	email = normEmail(email)

	u, err := s.resolver.UserByEmailAndProvider(ctx, client.TenantID, email, repository.ProviderPassword)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, newErr(KindUserNotFound, "user not found")
	}
	if err := s.consumeCode(ctx, u, repository.CodeTypeEmailVerification, code); err != nil {
		s.emit(ctx, client, m, audit.FailedVerificationEmail, "Invalid verification code", u, nil)
		return nil, err
	}

	verified := true
	upd := repository.UserUpdate{EmailVerified: &verified}
	if u.LinkedTo == "" {
		primary, err := s.resolver.primaryExcluding(ctx, client.TenantID, email, u.ID)
		if err != nil {
			return nil, err
		}
		if primary != nil {
			upd.LinkedTo = &primary.ID
			log.Info("linking verified identity", logger.UserID(u.ID), logger.String("primary", primary.ID))
		}
	}
	if err := s.d.Users.Update(ctx, client.TenantID, u.ID, upd); err != nil {
		return nil, err
	}
	u.EmailVerified = true
	if upd.LinkedTo != nil {
		u.LinkedTo = *upd.LinkedTo
	}
	s.emit(ctx, client, m, audit.SuccessVerificationEmail, "Email verified", u, nil)
	return u, nil
}

// RequestPasswordReset manda el link de reset. Un email desconocido no es
// error: la respuesta no revela si la cuenta existe.
func (s *Service) RequestPasswordReset(ctx context.Context, client *repository.Client, email string, p repository.AuthParams, m Meta) error {
	email = normEmail(email)
	if !validEmail(email) {
		return formErr(i18n.MsgInvalidEmail, "invalid email")
	}
	u, err := s.resolver.UserByEmailAndProvider(ctx, client.TenantID, email, repository.ProviderPassword)
	if err != nil {
		return err
	}
	if u == nil {
		logger.From(ctx).Debug("password reset for unknown email", logger.Layer("service"),
			logger.Op("RequestPasswordReset"), logger.TenantID(client.TenantID))
		return nil
	}
	code, err := s.createCode(ctx, u, repository.CodeTypePasswordReset)
	if err != nil {
		return err
	}
	link, err := s.userLink(ctx, client, "reset-password", email, code, p)
	if err != nil {
		return err
	}
	if err := s.d.Email.SendResetPassword(ctx, client.Tenant, s.lang(client, p, m), email, link); err != nil {
		s.emit(ctx, client, m, audit.FailedChangePasswordReq, "Failed to send reset email", u, nil)
		return err
	}
	s.emit(ctx, client, m, audit.SuccessChangePasswordReq, "Change password request", u, nil)
	return nil
}

// ResetPassword valida la política, consume el code y guarda el password
// nuevo. Completar un reset prueba la posesión del email.
func (s *Service) ResetPassword(ctx context.Context, client *repository.Client, email, code, newPassword string, m Meta) error {
	if err := s.checkPolicy(newPassword); err != nil {
		return err
	}
	email = normEmail(email)
	u, err := s.resolver.UserByEmailAndProvider(ctx, client.TenantID, email, repository.ProviderPassword)
	if err != nil {
		return err
	}
	if u == nil {
		return newErr(KindUserNotFound, "user not found")
	}
	if err := s.consumeCode(ctx, u, repository.CodeTypePasswordReset, code); err != nil {
		return err
	}
	if err := s.setPassword(ctx, client.TenantID, u.ID, newPassword); err != nil {
		return err
	}
	if !u.EmailVerified {
		verified := true
		if err := s.d.Users.Update(ctx, client.TenantID, u.ID, repository.UserUpdate{EmailVerified: &verified}); err != nil {
			return err
		}
	}
	s.emit(ctx, client, m, audit.SuccessChangePassword, "Password changed", u, nil)
	return nil
}
