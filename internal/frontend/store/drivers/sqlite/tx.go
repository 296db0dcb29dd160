package sqlite

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/spoutbreeze/internal/frontend/store"
)

type txStore struct {
	tx *sql.Tx
}

func newTx(tx *sql.Tx) *txStore {
	return &txStore{tx: tx}
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

func (t *txStore) Close() error { return nil } // the outer Store owns the database

// Ping is a no-op; the transaction already holds a live connection.
func (t *txStore) Ping(ctx context.Context) error {
	return nil
}

func (t *txStore) DataVersion(ctx context.Context) (int64, error) {
	return dataVersion(ctx, t.tx)
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	// Nested transactions are not supported.
	return sql.ErrTxDone
}

func (t *txStore) Verifiers() store.Verifiers     { return &verifiersRepo{q: t.tx} }
func (t *txStore) Credentials() store.Credentials { return &credentialsRepo{q: t.tx} }
func (t *txStore) Cookies() store.Cookies         { return &cookiesRepo{q: t.tx} }

func (t *txStore) ApplyMigrations() error { return nil } // applied before any transaction
