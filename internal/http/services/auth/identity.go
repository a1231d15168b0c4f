package auth

import (
	"context"
	"strings"

	"github.com/dropDatabas3/authhero/internal/domain/repository"
	"github.com/dropDatabas3/authhero/internal/observability/logger"
)

// Resolver es el Identity Resolver. Todas las búsquedas son por tenant y
// devuelven (nil, nil) cuando no hay usuario.
type Resolver struct {
	users repository.UserRepository
}

func NewResolver(users repository.UserRepository) *Resolver { return &Resolver{users: users} }

func normEmail(e string) string { return strings.ToLower(strings.TrimSpace(e)) }

// UserByEmailAndProvider: match exacto. Más de un resultado es una anomalía:
// se loguea y gana el primero.
func (r *Resolver) UserByEmailAndProvider(ctx context.Context, tenantID, email, provider string) (*repository.User, error) {
	users, err := r.users.List(ctx, tenantID, repository.ListUsersFilter{Email: normEmail(email), Provider: provider})
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, nil
	}
	if len(users) > 1 {
		logger.From(ctx).Warn("more than one user for email and provider",
			logger.Layer("service"), logger.Op("UserByEmailAndProvider"),
			logger.TenantID(tenantID), logger.Provider(provider), logger.Count(len(users)))
	}
	u := users[0]
	return &u, nil
}

// PrimaryUserByEmail devuelve la identidad primaria del email: se descartan
// las cuentas auth2 sin verificar; si queda alguna sin linked_to es esa (la
// primera, con warning si hay varias); si no, se sigue el linked_to. Un
// linked_to que apunta a un usuario inexistente es PrimaryAccountNotFound.
func (r *Resolver) PrimaryUserByEmail(ctx context.Context, tenantID, email string) (*repository.User, error) {
	return r.primaryExcluding(ctx, tenantID, email, "")
}

// PrimaryUserByEmailAndProvider resuelve por (email, provider) y, si ese
// usuario está linkeado, devuelve la primaria.
func (r *Resolver) PrimaryUserByEmailAndProvider(ctx context.Context, tenantID, email, provider string) (*repository.User, error) {
	u, err := r.UserByEmailAndProvider(ctx, tenantID, email, provider)
	if err != nil || u == nil {
		return u, err
	}
	return r.Principal(ctx, u)
}

// Principal devuelve u o, si está linkeado, su primaria.
func (r *Resolver) Principal(ctx context.Context, u *repository.User) (*repository.User, error) {
	if u.LinkedTo == "" {
		return u, nil
	}
	return r.fetchPrimary(ctx, u.TenantID, u.LinkedTo)
}

func (r *Resolver) primaryExcluding(ctx context.Context, tenantID, email, excludeID string) (*repository.User, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("PrimaryUserByEmail"), logger.TenantID(tenantID))

	all, err := r.users.GetByEmail(ctx, tenantID, normEmail(email))
	if err != nil {
		return nil, err
	}
	candidates := make([]repository.User, 0, len(all))
	for _, u := range all {
		if u.ID == excludeID || u.IsUnverifiedPassword() {
			continue
		}
		candidates = append(candidates, u)
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	var roots []repository.User
	for _, u := range candidates {
		if u.LinkedTo == "" {
			roots = append(roots, u)
		}
	}
	if len(roots) > 0 {
		if len(roots) > 1 {
			log.Warn("more than one primary user for email", logger.Count(len(roots)))
		}
		p := roots[0]
		return &p, nil
	}

	target := candidates[0].LinkedTo
	for _, u := range candidates[1:] {
		if u.LinkedTo != target {
			log.Warn("linked identities point to different primaries",
				logger.String("first", target), logger.String("other", u.LinkedTo))
			break
		}
	}
	return r.fetchPrimary(ctx, tenantID, target)
}

func (r *Resolver) fetchPrimary(ctx context.Context, tenantID, id string) (*repository.User, error) {
	p, err := r.users.Get(ctx, tenantID, id)
	if err != nil {
		if repository.IsNotFound(err) {
			logger.From(ctx).Error("primary account not found",
				logger.Layer("service"), logger.Op("fetchPrimary"),
				logger.TenantID(tenantID), logger.UserID(id))
			return nil, wrapErr(KindPrimaryAccountNotFound, err, "linked primary user "+id+" does not exist")
		}
		return nil, err
	}
	return p, nil
}
