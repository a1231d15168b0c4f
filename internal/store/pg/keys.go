package pg

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/authhero/internal/domain/repository"
)

type keyRepo struct {
	pool *pgxpool.Pool
}

func (r *keyRepo) List(ctx context.Context) ([]repository.SigningKey, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT kid, private_key, public_key, created_at, activate_at, revoked_at
		FROM keys ORDER BY created_at`)
	if err != nil {
		return nil, mapErr("list keys", err)
	}
	defer rows.Close()
	var out []repository.SigningKey
	for rows.Next() {
		var k repository.SigningKey
		if err := rows.Scan(&k.KID, &k.PrivateKey, &k.PublicKey, &k.CreatedAt, &k.ActivateAt, &k.RevokedAt); err != nil {
			return nil, mapErr("scan key", err)
		}
		out = append(out, k)
	}
	return out, mapErr("list keys", rows.Err())
}

func (r *keyRepo) Create(ctx context.Context, k *repository.SigningKey) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO keys (kid, private_key, public_key, created_at, activate_at, revoked_at)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		k.KID, k.PrivateKey, k.PublicKey, k.CreatedAt, k.ActivateAt, k.RevokedAt)
	return mapErr("create key", err)
}

func (r *keyRepo) Revoke(ctx context.Context, kid string, at time.Time) error {
	tag, err := r.pool.Exec(ctx, `UPDATE keys SET revoked_at = $2 WHERE kid = $1`, kid, at)
	if err != nil {
		return mapErr("revoke key", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

type logRepo struct {
	pool *pgxpool.Pool
}

func (r *logRepo) Create(ctx context.Context, e *repository.LogEntry) error {
	details, err := toJSON(e.Details)
	if err != nil {
		return err
	}
	if e.Details == nil {
		details = nil
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO logs (id, tenant_id, type, date, description, ip, user_agent, client_id, user_id, user_name, connection, details)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		e.ID, e.TenantID, e.Type, e.Date, e.Description, e.IP, e.UserAgent,
		e.ClientID, e.UserID, e.UserName, e.Connection, details)
	return mapErr("create log", err)
}
