package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/spoutbreeze/internal/frontend/domain"
)

var (
	ErrNotFound = errors.New("store: not found")
)

// Store is the root data access interface for the local session state.
// Concrete drivers implement it; repositories hang off it so a transaction
// exposes the same surface.
type Store interface {
	Verifiers() Verifiers
	Credentials() Credentials
	Cookies() Cookies

	ApplyMigrations() error

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases the underlying database.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error

	// DataVersion changes whenever another connection, usually another
	// process, has committed to the database since the last call.
	DataVersion(ctx context.Context) (int64, error)
}

// Tx is a transactional store.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Verifiers interface {
	// PutVerifier stores a verifier, replacing any earlier one under the key.
	PutVerifier(ctx context.Context, v domain.Verifier) error

	// TakeVerifier returns and deletes the verifier in one statement.
	TakeVerifier(ctx context.Context, key string) (domain.Verifier, error)

	// DeleteVerifier removes the verifier; missing keys are not an error.
	DeleteVerifier(ctx context.Context, key string) error

	// DeleteVerifiersBefore removes verifiers created before cutoff.
	DeleteVerifiersBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type Credentials interface {
	GetCredentials(ctx context.Context, profile string) (domain.SealedCredentials, error)

	// PutCredentials inserts or replaces the profile's credentials.
	PutCredentials(ctx context.Context, c domain.SealedCredentials) error

	DeleteCredentials(ctx context.Context, profile string) error
}

type Cookies interface {
	// ListCookies returns every stored cookie, oldest first.
	ListCookies(ctx context.Context) ([]domain.Cookie, error)

	// UpsertCookie inserts or replaces the cookie identified by host, path and name.
	UpsertCookie(ctx context.Context, c domain.Cookie) error

	DeleteCookie(ctx context.Context, host, path, name string) error

	DeleteAllCookies(ctx context.Context) error

	// DeleteExpiredCookies removes cookies whose expiry is at or before now.
	DeleteExpiredCookies(ctx context.Context, now time.Time) (int64, error)
}
