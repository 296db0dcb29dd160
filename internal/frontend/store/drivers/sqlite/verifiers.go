package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/spoutbreeze/internal/frontend/domain"
)

type verifiersRepo struct {
	q dbtx
}

func (r *verifiersRepo) PutVerifier(ctx context.Context, v domain.Verifier) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO pkce_verifiers (key, value, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET
			value = excluded.value,
			created_at = excluded.created_at`,
		v.Key, v.Value, toMillis(v.CreatedAt),
	)
	return err
}

func (r *verifiersRepo) TakeVerifier(ctx context.Context, key string) (domain.Verifier, error) {
	var (
		v         domain.Verifier
		createdAt int64
	)
	err := r.q.QueryRowContext(ctx, `
		DELETE FROM pkce_verifiers
		WHERE key = ?
		RETURNING key, value, created_at`,
		key,
	).Scan(&v.Key, &v.Value, &createdAt)
	if err != nil {
		return domain.Verifier{}, mapNotFound(err)
	}
	v.CreatedAt = fromMillis(createdAt)
	return v, nil
}

func (r *verifiersRepo) DeleteVerifier(ctx context.Context, key string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM pkce_verifiers WHERE key = ?`, key)
	return err
}

func (r *verifiersRepo) DeleteVerifiersBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx, `DELETE FROM pkce_verifiers WHERE created_at < ?`, toMillis(cutoff))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
