package pg

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/authhero/internal/domain/repository"
)

// ─── Sessions ───

type sessionRepo struct {
	pool *pgxpool.Pool
}

func (r *sessionRepo) Create(ctx context.Context, s *repository.Session) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO sessions (tenant_id, id, client_id, user_id, created_at, expires_at)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		s.TenantID, s.ID, s.ClientID, s.UserID, s.CreatedAt, s.ExpiresAt)
	return mapErr("create session", err)
}

func (r *sessionRepo) Get(ctx context.Context, tenantID, id string) (*repository.Session, error) {
	var s repository.Session
	err := r.pool.QueryRow(ctx, `
		SELECT tenant_id, id, client_id, user_id, created_at, expires_at, used_at, deleted_at
		FROM sessions WHERE tenant_id = $1 AND id = $2`, tenantID, id,
	).Scan(&s.TenantID, &s.ID, &s.ClientID, &s.UserID, &s.CreatedAt, &s.ExpiresAt, &s.UsedAt, &s.DeletedAt)
	if err != nil {
		return nil, mapErr("get session", err)
	}
	return &s, nil
}

func (r *sessionRepo) Touch(ctx context.Context, tenantID, id string, at time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE sessions SET used_at = $3 WHERE tenant_id = $1 AND id = $2`, tenantID, id, at)
	if err != nil {
		return mapErr("touch session", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *sessionRepo) Remove(ctx context.Context, tenantID, id string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE sessions SET deleted_at = now() WHERE tenant_id = $1 AND id = $2 AND deleted_at IS NULL`,
		tenantID, id)
	if err != nil {
		return mapErr("remove session", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ─── Tickets ───

type ticketRepo struct {
	pool *pgxpool.Pool
}

func (r *ticketRepo) Create(ctx context.Context, t *repository.Ticket) error {
	params, err := json.Marshal(t.AuthParams)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO tickets (tenant_id, id, client_id, email, auth_params, created_at, expires_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		t.TenantID, t.ID, t.ClientID, t.Email, params, t.CreatedAt, t.ExpiresAt)
	return mapErr("create ticket", err)
}

func (r *ticketRepo) Get(ctx context.Context, tenantID, id string) (*repository.Ticket, error) {
	var t repository.Ticket
	var params []byte
	err := r.pool.QueryRow(ctx, `
		SELECT tenant_id, id, client_id, email, auth_params, created_at, expires_at
		FROM tickets WHERE tenant_id = $1 AND id = $2`, tenantID, id,
	).Scan(&t.TenantID, &t.ID, &t.ClientID, &t.Email, &params, &t.CreatedAt, &t.ExpiresAt)
	if err != nil {
		return nil, mapErr("get ticket", err)
	}
	if err := json.Unmarshal(params, &t.AuthParams); err != nil {
		return nil, mapErr("decode ticket", err)
	}
	return &t, nil
}

func (r *ticketRepo) Remove(ctx context.Context, tenantID, id string) error {
	return deleteOne(ctx, r.pool, "remove ticket",
		`DELETE FROM tickets WHERE tenant_id = $1 AND id = $2`, tenantID, id)
}

// ─── OTPs ───

type otpRepo struct {
	pool *pgxpool.Pool
}

func (r *otpRepo) Create(ctx context.Context, o *repository.OTP) error {
	params, err := json.Marshal(o.AuthParams)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO otps (tenant_id, id, client_id, email, code, send, auth_params, ip, created_at, expires_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		o.TenantID, o.ID, o.ClientID, o.Email, o.Code, o.Send, params, o.IP, o.CreatedAt, o.ExpiresAt)
	return mapErr("create otp", err)
}

func (r *otpRepo) List(ctx context.Context, tenantID, email string) ([]repository.OTP, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT tenant_id, id, client_id, email, code, send, auth_params, ip, created_at, expires_at
		FROM otps WHERE tenant_id = $1 AND lower(email) = lower($2)
		ORDER BY created_at`, tenantID, email)
	if err != nil {
		return nil, mapErr("list otps", err)
	}
	defer rows.Close()
	var out []repository.OTP
	for rows.Next() {
		var o repository.OTP
		var params []byte
		if err := rows.Scan(&o.TenantID, &o.ID, &o.ClientID, &o.Email, &o.Code, &o.Send, &params, &o.IP, &o.CreatedAt, &o.ExpiresAt); err != nil {
			return nil, mapErr("scan otp", err)
		}
		if err := json.Unmarshal(params, &o.AuthParams); err != nil {
			return nil, mapErr("decode otp", err)
		}
		out = append(out, o)
	}
	return out, mapErr("list otps", rows.Err())
}

func (r *otpRepo) Remove(ctx context.Context, tenantID, id string) error {
	return deleteOne(ctx, r.pool, "remove otp",
		`DELETE FROM otps WHERE tenant_id = $1 AND id = $2`, tenantID, id)
}

// ─── Codes ───

type codeRepo struct {
	pool *pgxpool.Pool
}

func (r *codeRepo) Create(ctx context.Context, c *repository.Code) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO codes (tenant_id, id, user_id, type, created_at, expires_at)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		c.TenantID, c.ID, c.UserID, c.Type, c.CreatedAt, c.ExpiresAt)
	return mapErr("create code", err)
}

func (r *codeRepo) List(ctx context.Context, tenantID, userID string) ([]repository.Code, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT tenant_id, id, user_id, type, created_at, expires_at
		FROM codes WHERE tenant_id = $1 AND user_id = $2 ORDER BY created_at`, tenantID, userID)
	if err != nil {
		return nil, mapErr("list codes", err)
	}
	defer rows.Close()
	var out []repository.Code
	for rows.Next() {
		var c repository.Code
		if err := rows.Scan(&c.TenantID, &c.ID, &c.UserID, &c.Type, &c.CreatedAt, &c.ExpiresAt); err != nil {
			return nil, mapErr("scan code", err)
		}
		out = append(out, c)
	}
	return out, mapErr("list codes", rows.Err())
}

func (r *codeRepo) Remove(ctx context.Context, tenantID, id string) error {
	return deleteOne(ctx, r.pool, "remove code",
		`DELETE FROM codes WHERE tenant_id = $1 AND id = $2`, tenantID, id)
}

// ─── Universal login sessions ───

type loginRepo struct {
	pool *pgxpool.Pool
}

func (r *loginRepo) Create(ctx context.Context, s *repository.UniversalLoginSession) error {
	params, err := json.Marshal(s.AuthParams)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO universal_login_sessions (tenant_id, id, client_id, auth_params, vendor_id, auth0_client, created_at, updated_at, expires_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		s.TenantID, s.ID, s.ClientID, params, s.VendorID, s.Auth0Client, s.CreatedAt, s.UpdatedAt, s.ExpiresAt)
	return mapErr("create login session", err)
}

func (r *loginRepo) Get(ctx context.Context, tenantID, id string) (*repository.UniversalLoginSession, error) {
	var s repository.UniversalLoginSession
	var params []byte
	err := r.pool.QueryRow(ctx, `
		SELECT tenant_id, id, client_id, auth_params, vendor_id, auth0_client, created_at, updated_at, expires_at
		FROM universal_login_sessions WHERE tenant_id = $1 AND id = $2`, tenantID, id,
	).Scan(&s.TenantID, &s.ID, &s.ClientID, &params, &s.VendorID, &s.Auth0Client, &s.CreatedAt, &s.UpdatedAt, &s.ExpiresAt)
	if err != nil {
		return nil, mapErr("get login session", err)
	}
	if err := json.Unmarshal(params, &s.AuthParams); err != nil {
		return nil, mapErr("decode login session", err)
	}
	return &s, nil
}

func (r *loginRepo) Update(ctx context.Context, s *repository.UniversalLoginSession) error {
	params, err := json.Marshal(s.AuthParams)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, `
		UPDATE universal_login_sessions
		SET auth_params = $3, vendor_id = $4, auth0_client = $5, updated_at = $6, expires_at = $7
		WHERE tenant_id = $1 AND id = $2`,
		s.TenantID, s.ID, params, s.VendorID, s.Auth0Client, s.UpdatedAt, s.ExpiresAt)
	if err != nil {
		return mapErr("update login session", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
