package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	pkgerrors "github.com/pkg/errors"
)

// KV keeps the handoff slots in the handoff table, one row per key.
type KV struct {
	db  *DB
	now func() time.Time
}

func (db *DB) KV() *KV {
	return &KV{db: db, now: time.Now}
}

func (kv *KV) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := kv.db.QueryRowContext(ctx, kv.db.rebind(`
		SELECT value FROM handoff
		WHERE key = ?`),
		key,
	).Scan(&value)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return "", false, nil
	case err != nil:
		return "", false, pkgerrors.Wrap(err, "db.kv.get")
	}
	return value, true, nil
}

func (kv *KV) Set(ctx context.Context, key, value string) error {
	_, err := kv.db.ExecContext(ctx, kv.db.rebind(`
		INSERT INTO handoff (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE
		SET value = excluded.value, updated_at = excluded.updated_at`),
		key,
		value,
		kv.now().UTC(),
	)
	return pkgerrors.Wrap(err, "db.kv.set")
}
