package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/spoutbreeze/internal/frontend/domain"
	"github.com/aussiebroadwan/spoutbreeze/pkg/authflow"
)

// VerifierStore adapts a Store to authflow.VerifierStore. Verifiers older
// than TTL are treated as missing.
type VerifierStore struct {
	Store Store
	TTL   time.Duration
	Now   func() time.Time
}

var _ authflow.VerifierStore = (*VerifierStore)(nil)

// NewVerifierStore creates a verifier store with the given TTL.
func NewVerifierStore(s Store, ttl time.Duration) *VerifierStore {
	return &VerifierStore{Store: s, TTL: ttl, Now: time.Now}
}

func (v *VerifierStore) Put(ctx context.Context, key, verifier string) error {
	return v.Store.Verifiers().PutVerifier(ctx, domain.Verifier{
		Key:       key,
		Value:     verifier,
		CreatedAt: v.Now(),
	})
}

func (v *VerifierStore) Take(ctx context.Context, key string) (string, bool, error) {
	stored, err := v.Store.Verifiers().TakeVerifier(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	if stored.Expired(v.Now(), v.TTL) {
		return "", false, nil
	}
	return stored.Value, true, nil
}

func (v *VerifierStore) Delete(ctx context.Context, key string) error {
	return v.Store.Verifiers().DeleteVerifier(ctx, key)
}
