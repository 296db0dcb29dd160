package sqlite

import (
	"context"

	"github.com/aussiebroadwan/spoutbreeze/internal/frontend/domain"
)

type credentialsRepo struct {
	q dbtx
}

func (r *credentialsRepo) GetCredentials(ctx context.Context, profile string) (domain.SealedCredentials, error) {
	var (
		c         domain.SealedCredentials
		updatedAt int64
	)
	err := r.q.QueryRowContext(ctx, `
		SELECT profile, sealed, updated_at
		FROM credentials
		WHERE profile = ?`,
		profile,
	).Scan(&c.Profile, &c.Sealed, &updatedAt)
	if err != nil {
		return domain.SealedCredentials{}, mapNotFound(err)
	}
	c.UpdatedAt = fromMillis(updatedAt)
	return c, nil
}

func (r *credentialsRepo) PutCredentials(ctx context.Context, c domain.SealedCredentials) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO credentials (profile, sealed, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (profile) DO UPDATE SET
			sealed = excluded.sealed,
			updated_at = excluded.updated_at`,
		c.Profile, c.Sealed, toMillis(c.UpdatedAt),
	)
	return err
}

func (r *credentialsRepo) DeleteCredentials(ctx context.Context, profile string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM credentials WHERE profile = ?`, profile)
	return err
}
