package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// SQLKV keeps records in the kv_store table. Queries use ? placeholders and
// are rebound for the connection's driver, so the same code serves
// Postgres (lib/pq, pgx) and SQLite.
type SQLKV struct {
	db *sqlx.DB
}

// NewSQLKV returns a SQLKV over db. The kv_store table must exist.
func NewSQLKV(db *sqlx.DB) *SQLKV {
	return &SQLKV{db: db}
}

func (s *SQLKV) Get(ctx context.Context, key string) (string, bool, error) {
	const selectQuery = `SELECT store_value FROM kv_store WHERE store_key = ?`

	var value string
	err := s.db.GetContext(ctx, &value, s.db.Rebind(selectQuery), key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("SQLKV.Get: %w", err)
	}
	return value, true, nil
}

func (s *SQLKV) Set(ctx context.Context, key, value string) error {
	const upsertQuery = `
		INSERT INTO kv_store (store_key, store_value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (store_key) DO UPDATE
		SET store_value = excluded.store_value, updated_at = excluded.updated_at
	`
	if _, err := s.db.ExecContext(ctx, s.db.Rebind(upsertQuery), key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("SQLKV.Set: %w", err)
	}
	return nil
}
