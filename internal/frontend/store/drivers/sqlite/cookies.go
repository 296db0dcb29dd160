package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/spoutbreeze/internal/frontend/domain"
)

type cookiesRepo struct {
	q dbtx
}

func (r *cookiesRepo) ListCookies(ctx context.Context) ([]domain.Cookie, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT host, path, name, value, domain, origin, expires_at,
		       secure, http_only, same_site, created_at, updated_at
		FROM cookies
		ORDER BY created_at, host, path, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Cookie
	for rows.Next() {
		var (
			c                    domain.Cookie
			expires              sql.NullInt64
			createdAt, updatedAt int64
		)
		if err := rows.Scan(
			&c.Host, &c.Path, &c.Name, &c.Value, &c.Domain, &c.Origin, &expires,
			&c.Secure, &c.HTTPOnly, &c.SameSite, &createdAt, &updatedAt,
		); err != nil {
			return nil, err
		}
		c.Expires = mapNullTimePtr(expires)
		c.CreatedAt = fromMillis(createdAt)
		c.UpdatedAt = fromMillis(updatedAt)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *cookiesRepo) UpsertCookie(ctx context.Context, c domain.Cookie) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO cookies (
			host, path, name, value, domain, origin, expires_at,
			secure, http_only, same_site, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (host, path, name) DO UPDATE SET
			value = excluded.value,
			domain = excluded.domain,
			origin = excluded.origin,
			expires_at = excluded.expires_at,
			secure = excluded.secure,
			http_only = excluded.http_only,
			same_site = excluded.same_site,
			updated_at = excluded.updated_at`,
		c.Host, c.Path, c.Name, c.Value, c.Domain, c.Origin, mapOptionalTime(c.Expires),
		c.Secure, c.HTTPOnly, c.SameSite, toMillis(c.CreatedAt), toMillis(c.UpdatedAt),
	)
	return err
}

func (r *cookiesRepo) DeleteCookie(ctx context.Context, host, path, name string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM cookies WHERE host = ? AND path = ? AND name = ?`, host, path, name)
	return err
}

func (r *cookiesRepo) DeleteAllCookies(ctx context.Context) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM cookies`)
	return err
}

func (r *cookiesRepo) DeleteExpiredCookies(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx, `
		DELETE FROM cookies
		WHERE expires_at IS NOT NULL AND expires_at <= ?`,
		toMillis(now),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
