package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/dropDatabas3/authhero/internal/audit"
	"github.com/dropDatabas3/authhero/internal/domain/repository"
	"github.com/dropDatabas3/authhero/internal/i18n"
	"github.com/dropDatabas3/authhero/internal/observability/logger"
)

// SignupRequest es el body de /dbconnections/signup.
type SignupRequest struct {
	Email      string
	Password   string
	Connection string
	AuthParams repository.AuthParams
}

// Signup crea una identidad auth2 sin verificar con su hash. No se linkea
// hasta verificar el email (ValidateEmail); según la política del client
// manda el email de verificación.
func (s *Service) Signup(ctx context.Context, client *repository.Client, req SignupRequest, m Meta) (*repository.User, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("Signup"), logger.TenantID(client.TenantID))
	email := normEmail(req.Email)
	fail := func(desc string, err error) (*repository.User, error) {
		s.emit(ctx, client, m, audit.FailedSignup, desc, nil, func(e *audit.Event) { e.UserName = email })
		return nil, err
	}

	if req.Connection != "" && req.Connection != repository.RealmPassword {
		return fail("Unknown connection", newErr(KindConnectionNotFound, "connection not found"))
	}
	if client.DisableSignUps {
		return fail("Public signup is disabled", newErr(KindPublicSignupDisabled, "public signup is disabled"))
	}
	if !validEmail(email) {
		return fail("Invalid email", formErr(i18n.MsgInvalidEmail, "invalid email"))
	}
	if err := s.checkPolicy(req.Password); err != nil {
		return fail("Password too weak", err)
	}

	existing, err := s.resolver.UserByEmailAndProvider(ctx, client.TenantID, email, repository.ProviderPassword)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return fail("User already exists", newErr(KindUserExists, "user already exists"))
	}

	u := &repository.User{
		ID:         repository.ProviderPassword + "|" + uuid.NewString(),
		TenantID:   client.TenantID,
		Email:      email,
		Provider:   repository.ProviderPassword,
		Connection: repository.RealmPassword,
	}
	if err := s.d.Users.Create(ctx, u); err != nil {
		if repository.IsConflict(err) {
			return fail("User already exists", newErr(KindUserExists, "user already exists"))
		}
		return nil, err
	}
	if err := s.setPassword(ctx, client.TenantID, u.ID, req.Password); err != nil {
		return nil, err
	}
	s.emit(ctx, client, m, audit.SuccessSignup, "Successful signup", u, nil)
	log.Info("user signed up", logger.UserID(u.ID))

	if client.EmailValidation != repository.EmailValidationDisabled {
		if err := s.sendValidationEmail(ctx, client, u, s.lang(client, req.AuthParams, m)); err != nil {
			log.Error("send verification email failed", logger.UserID(u.ID), logger.Err(err))
		}
	}
	return u, nil
}
