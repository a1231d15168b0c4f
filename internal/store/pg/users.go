package pg

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/authhero/internal/domain/repository"
)

type userRepo struct {
	pool *pgxpool.Pool
}

const userColumns = `tenant_id, id, email, email_verified, provider, connection, is_social,
	name, given_name, family_name, nickname, picture, locale, profile_data,
	login_count, last_login, last_ip, linked_to, created_at, updated_at`

func scanUser(row pgx.Row) (*repository.User, error) {
	var u repository.User
	var profile []byte
	var linked *string
	err := row.Scan(&u.TenantID, &u.ID, &u.Email, &u.EmailVerified, &u.Provider, &u.Connection, &u.IsSocial,
		&u.Name, &u.GivenName, &u.FamilyName, &u.Nickname, &u.Picture, &u.Locale, &profile,
		&u.LoginCount, &u.LastLogin, &u.LastIP, &linked, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	u.LinkedTo = deref(linked)
	if len(profile) > 0 {
		if err := json.Unmarshal(profile, &u.ProfileData); err != nil {
			return nil, err
		}
	}
	return &u, nil
}

func (r *userRepo) Create(ctx context.Context, u *repository.User) error {
	var profile []byte
	if u.ProfileData != nil {
		b, err := toJSON(u.ProfileData)
		if err != nil {
			return err
		}
		profile = b
	}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO users (tenant_id, id, email, email_verified, provider, connection, is_social,
			name, given_name, family_name, nickname, picture, locale, profile_data,
			login_count, last_login, last_ip, linked_to)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
		RETURNING created_at, updated_at`,
		u.TenantID, u.ID, u.Email, u.EmailVerified, u.Provider, u.Connection, u.IsSocial,
		u.Name, u.GivenName, u.FamilyName, u.Nickname, u.Picture, u.Locale, profile,
		u.LoginCount, u.LastLogin, u.LastIP, nullIfEmpty(u.LinkedTo),
	).Scan(&u.CreatedAt, &u.UpdatedAt)
	return mapErr("create user", err)
}

func (r *userRepo) Get(ctx context.Context, tenantID, id string) (*repository.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE tenant_id = $1 AND id = $2`, tenantID, id))
	if err != nil {
		return nil, mapErr("get user", err)
	}
	return u, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, tenantID, email string) ([]repository.User, error) {
	return r.List(ctx, tenantID, repository.ListUsersFilter{Email: email})
}

func (r *userRepo) List(ctx context.Context, tenantID string, f repository.ListUsersFilter) ([]repository.User, error) {
	where := []string{"tenant_id = $1"}
	args := []any{tenantID}
	if f.Email != "" {
		args = append(args, f.Email)
		where = append(where, fmt.Sprintf("lower(email) = lower($%d)", len(args)))
	}
	if f.Provider != "" {
		args = append(args, f.Provider)
		where = append(where, fmt.Sprintf("provider = $%d", len(args)))
	}
	if f.LinkedTo != "" {
		args = append(args, f.LinkedTo)
		where = append(where, fmt.Sprintf("linked_to = $%d", len(args)))
	}
	q := `SELECT ` + userColumns + ` FROM users WHERE ` + strings.Join(where, " AND ") + ` ORDER BY created_at, id`
	if f.Limit > 0 {
		q += fmt.Sprintf(" LIMIT %d", f.Limit)
	}

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, mapErr("list users", err)
	}
	defer rows.Close()
	var out []repository.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, mapErr("scan user", err)
		}
		out = append(out, *u)
	}
	return out, mapErr("list users", rows.Err())
}

func (r *userRepo) Update(ctx context.Context, tenantID, id string, upd repository.UserUpdate) error {
	sets := []string{"updated_at = now()"}
	args := []any{tenantID, id}
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if upd.Email != nil {
		add("email", *upd.Email)
	}
	if upd.EmailVerified != nil {
		add("email_verified", *upd.EmailVerified)
	}
	if upd.LinkedTo != nil {
		add("linked_to", nullIfEmpty(*upd.LinkedTo))
	}
	if upd.Name != nil {
		add("name", *upd.Name)
	}
	if upd.Picture != nil {
		add("picture", *upd.Picture)
	}
	if upd.ProfileData != nil {
		b, err := toJSON(upd.ProfileData)
		if err != nil {
			return err
		}
		add("profile_data", b)
	}
	if upd.LoginCount != nil {
		add("login_count", *upd.LoginCount)
	}
	if upd.LastLogin != nil {
		add("last_login", *upd.LastLogin)
	}
	if upd.LastIP != nil {
		add("last_ip", *upd.LastIP)
	}
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET `+strings.Join(sets, ", ")+` WHERE tenant_id = $1 AND id = $2`, args...)
	if err != nil {
		return mapErr("update user", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *userRepo) Unlink(ctx context.Context, tenantID, id string) error {
	empty := ""
	return r.Update(ctx, tenantID, id, repository.UserUpdate{LinkedTo: &empty})
}

type passwordRepo struct {
	pool *pgxpool.Pool
}

func (r *passwordRepo) Create(ctx context.Context, p repository.Password) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO passwords (tenant_id, user_id, hash) VALUES ($1,$2,$3)`,
		p.TenantID, p.UserID, p.Hash)
	return mapErr("create password", err)
}

func (r *passwordRepo) Get(ctx context.Context, tenantID, userID string) (*repository.Password, error) {
	var p repository.Password
	err := r.pool.QueryRow(ctx, `
		SELECT tenant_id, user_id, hash, created_at, updated_at
		FROM passwords WHERE tenant_id = $1 AND user_id = $2`, tenantID, userID,
	).Scan(&p.TenantID, &p.UserID, &p.Hash, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, mapErr("get password", err)
	}
	return &p, nil
}

func (r *passwordRepo) Update(ctx context.Context, p repository.Password) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE passwords SET hash = $3, updated_at = now() WHERE tenant_id = $1 AND user_id = $2`,
		p.TenantID, p.UserID, p.Hash)
	if err != nil {
		return mapErr("update password", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
