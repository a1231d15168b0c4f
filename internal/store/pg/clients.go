package pg

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/authhero/internal/domain/repository"
)

type clientRepo struct {
	pool *pgxpool.Pool
}

func (r *clientRepo) Get(ctx context.Context, clientID string) (*repository.Client, error) {
	const q = `
		SELECT a.id, a.tenant_id, a.name, a.client_secret, a.callbacks, a.allowed_logout_urls,
			a.web_origins, a.email_validation, a.disable_sign_ups, a.created_at, a.updated_at,
			t.id, t.name, t.audience, t.language, t.sender_email, t.sender_name,
			t.logo_url, t.primary_color, t.support_url, t.created_at, t.updated_at
		FROM applications a
		JOIN tenants t ON t.id = a.tenant_id
		WHERE a.id = $1`

	var c repository.Client
	var callbacks, logouts, origins string
	err := r.pool.QueryRow(ctx, q, clientID).Scan(
		&c.ID, &c.TenantID, &c.Name, &c.ClientSecret, &callbacks, &logouts,
		&origins, &c.EmailValidation, &c.DisableSignUps, &c.CreatedAt, &c.UpdatedAt,
		&c.Tenant.ID, &c.Tenant.Name, &c.Tenant.Audience, &c.Tenant.Language,
		&c.Tenant.SenderEmail, &c.Tenant.SenderName, &c.Tenant.LogoURL,
		&c.Tenant.PrimaryColor, &c.Tenant.SupportURL, &c.Tenant.CreatedAt, &c.Tenant.UpdatedAt,
	)
	if err != nil {
		return nil, mapErr("get client", err)
	}
	c.Callbacks = repository.SplitURLs(callbacks)
	c.AllowedLogoutURLs = repository.SplitURLs(logouts)
	c.WebOrigins = repository.SplitURLs(origins)

	rows, err := r.pool.Query(ctx, `
		SELECT id, tenant_id, name, strategy, options, created_at, updated_at
		FROM connections WHERE tenant_id = $1 ORDER BY name`, c.TenantID)
	if err != nil {
		return nil, mapErr("list connections", err)
	}
	defer rows.Close()
	for rows.Next() {
		var cn repository.Connection
		var opts []byte
		if err := rows.Scan(&cn.ID, &cn.TenantID, &cn.Name, &cn.Strategy, &opts, &cn.CreatedAt, &cn.UpdatedAt); err != nil {
			return nil, mapErr("scan connection", err)
		}
		if len(opts) > 0 {
			if err := json.Unmarshal(opts, &cn.Options); err != nil {
				return nil, mapErr("decode connection options", err)
			}
		}
		c.Connections = append(c.Connections, cn)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr("list connections", err)
	}
	return &c, nil
}

func (r *clientRepo) UpsertTenant(ctx context.Context, t repository.Tenant) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO tenants (id, name, audience, language, sender_email, sender_name, logo_url, primary_color, support_url)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, audience = EXCLUDED.audience, language = EXCLUDED.language,
			sender_email = EXCLUDED.sender_email, sender_name = EXCLUDED.sender_name,
			logo_url = EXCLUDED.logo_url, primary_color = EXCLUDED.primary_color,
			support_url = EXCLUDED.support_url, updated_at = now()`,
		t.ID, t.Name, t.Audience, t.Language, t.SenderEmail, t.SenderName, t.LogoURL, t.PrimaryColor, t.SupportURL)
	return mapErr("upsert tenant", err)
}

func (r *clientRepo) UpsertApplication(ctx context.Context, a repository.Application) error {
	ev := a.EmailValidation
	if ev == "" {
		ev = repository.EmailValidationEnabled
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO applications (id, tenant_id, name, client_secret, callbacks, allowed_logout_urls, web_origins, email_validation, disable_sign_ups)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (id) DO UPDATE SET
			tenant_id = EXCLUDED.tenant_id, name = EXCLUDED.name, client_secret = EXCLUDED.client_secret,
			callbacks = EXCLUDED.callbacks, allowed_logout_urls = EXCLUDED.allowed_logout_urls,
			web_origins = EXCLUDED.web_origins, email_validation = EXCLUDED.email_validation,
			disable_sign_ups = EXCLUDED.disable_sign_ups, updated_at = now()`,
		a.ID, a.TenantID, a.Name, a.ClientSecret,
		repository.JoinURLs(a.Callbacks), repository.JoinURLs(a.AllowedLogoutURLs), repository.JoinURLs(a.WebOrigins),
		ev, a.DisableSignUps)
	return mapErr("upsert application", err)
}

func (r *clientRepo) UpsertConnection(ctx context.Context, c repository.Connection) error {
	opts, err := json.Marshal(c.Options)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO connections (id, tenant_id, name, strategy, options)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (tenant_id, name) DO UPDATE SET
			strategy = EXCLUDED.strategy, options = EXCLUDED.options, updated_at = now()`,
		c.ID, c.TenantID, c.Name, c.Strategy, opts)
	return mapErr("upsert connection", err)
}
