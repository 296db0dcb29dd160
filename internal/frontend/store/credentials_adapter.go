package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/spoutbreeze/internal/frontend/domain"
	"github.com/aussiebroadwan/spoutbreeze/pkg/authflow"
	"github.com/aussiebroadwan/spoutbreeze/pkg/cryptox"
)

// DefaultProfile is the profile used when none is configured.
const DefaultProfile = "default"

// SealedCredentialStore keeps token-variant credentials in the Store,
// encrypted with Sealer.
type SealedCredentialStore struct {
	Store   Store
	Sealer  *cryptox.Sealer
	Profile string
	Now     func() time.Time
}

var _ authflow.CredentialStore = (*SealedCredentialStore)(nil)

// NewSealedCredentialStore creates a credential store for profile.
func NewSealedCredentialStore(s Store, sealer *cryptox.Sealer, profile string) *SealedCredentialStore {
	if profile == "" {
		profile = DefaultProfile
	}
	return &SealedCredentialStore{Store: s, Sealer: sealer, Profile: profile, Now: time.Now}
}

// Get returns the stored credentials, or zero credentials when none are
// stored.
func (c *SealedCredentialStore) Get(ctx context.Context) (authflow.Credentials, error) {
	row, err := c.Store.Credentials().GetCredentials(ctx, c.Profile)
	if errors.Is(err, ErrNotFound) {
		return authflow.Credentials{}, nil
	}
	if err != nil {
		return authflow.Credentials{}, err
	}

	plain, err := c.Sealer.Open(row.Sealed)
	if err != nil {
		return authflow.Credentials{}, fmt.Errorf("open credentials: %w", err)
	}

	var creds authflow.Credentials
	if err := json.Unmarshal(plain, &creds); err != nil {
		return authflow.Credentials{}, fmt.Errorf("decode credentials: %w", err)
	}
	return creds, nil
}

func (c *SealedCredentialStore) Set(ctx context.Context, creds authflow.Credentials) error {
	if creds.IsZero() {
		return c.Clear(ctx)
	}

	plain, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}
	sealed, err := c.Sealer.Seal(plain)
	if err != nil {
		return fmt.Errorf("seal credentials: %w", err)
	}

	return c.Store.Credentials().PutCredentials(ctx, domain.SealedCredentials{
		Profile:   c.Profile,
		Sealed:    sealed,
		UpdatedAt: c.Now(),
	})
}

func (c *SealedCredentialStore) Clear(ctx context.Context) error {
	return c.Store.Credentials().DeleteCredentials(ctx, c.Profile)
}
