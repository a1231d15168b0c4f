package auth

import (
	"context"
	"fmt"

	"github.com/dropDatabas3/authhero/internal/audit"
	"github.com/dropDatabas3/authhero/internal/domain/repository"
	"github.com/dropDatabas3/authhero/internal/observability/logger"
	"github.com/dropDatabas3/authhero/internal/security/password"
)

const strategyPassword = "Username-Password-Authentication"

// verifyPassword valida email+password contra la identidad auth2 y devuelve
// el principal (la primaria si la identidad está linkeada). Sin efectos
// salvo auditoría de fallos y el re-envío del email de verificación.
func (s *Service) verifyPassword(ctx context.Context, client *repository.Client, email, plain string, m Meta) (*repository.User, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("verifyPassword"), logger.TenantID(client.TenantID))
	email = normEmail(email)

	u, err := s.resolver.UserByEmailAndProvider(ctx, client.TenantID, email, repository.ProviderPassword)
	if err != nil {
		return nil, err
	}
	if u == nil {
		s.failLogin(ctx, client, m, audit.FailedLoginUnknownUser, "Wrong email or password.", strategyPassword, email)
		return nil, newErr(KindUserNotFound, "user not found")
	}

	pw, err := s.d.Passwords.Get(ctx, client.TenantID, u.ID)
	if err != nil && !repository.IsNotFound(err) {
		return nil, err
	}
	if pw == nil || !password.Verify(plain, pw.Hash) {
		s.failLogin(ctx, client, m, audit.FailedLoginWrongPassword, "Wrong email or password.", strategyPassword, email)
		return nil, newErr(KindInvalidPassword, "invalid password")
	}

	if !u.EmailVerified && client.EmailValidation == repository.EmailValidationEnforced {
		if err := s.sendValidationEmail(ctx, client, u, s.lang(client, repository.AuthParams{}, m)); err != nil {
			log.Error("resend verification email failed", logger.UserID(u.ID), logger.Err(err))
		}
		s.failLogin(ctx, client, m, audit.FailedLogin, "Email not verified", strategyPassword, email)
		return nil, newErr(KindEmailNotVerified, "email not verified")
	}

	return s.resolver.Principal(ctx, u)
}

// LoginWithPassword es la verificación por password completa: valida y
// registra el login en el principal. No crea sesión ni emite tokens.
func (s *Service) LoginWithPassword(ctx context.Context, client *repository.Client, email, plain string, m Meta) (*repository.User, error) {
	u, err := s.verifyPassword(ctx, client, email, plain, m)
	if err != nil {
		return nil, err
	}
	s.recordLogin(ctx, u, m.IP)
	return u, nil
}

// setPassword guarda un hash nuevo (crea la fila si no existía).
func (s *Service) setPassword(ctx context.Context, tenantID, userID, plain string) error {
	hash, err := password.Hash(plain)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	now := s.now()
	p := repository.Password{TenantID: tenantID, UserID: userID, Hash: hash, CreatedAt: now, UpdatedAt: now}
	err = s.d.Passwords.Update(ctx, p)
	if repository.IsNotFound(err) {
		err = s.d.Passwords.Create(ctx, p)
	}
	return err
}

func (s *Service) checkPolicy(plain string) error {
	if reasons := s.d.Config.PasswordPolicy.Validate(plain); len(reasons) > 0 {
		return newErr(KindPasswordPolicy, fmt.Sprintf("password rejected: %v", reasons))
	}
	return nil
}
