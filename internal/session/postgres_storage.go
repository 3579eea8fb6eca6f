package session

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStorage keeps profile storage in the profile_storage table created
// by cmd/migrate.
type PostgresStorage struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresStorage(db *pgxpool.Pool, timeout time.Duration) *PostgresStorage {
	return &PostgresStorage{db: db, timeout: timeout}
}

func (r *PostgresStorage) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func (r *PostgresStorage) Get(ctx context.Context, profileID, key string) (string, bool, error) {
	const query = `SELECT value FROM profile_storage WHERE profile_id = $1 AND key = $2`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	var value string
	err := r.db.QueryRow(timeoutCtx, query, profileID, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

func (r *PostgresStorage) Set(ctx context.Context, profileID, key, value string) error {
	const query = `
	INSERT INTO profile_storage (profile_id, key, value, updated_at)
	VALUES ($1, $2, $3, now())
	ON CONFLICT (profile_id, key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	_, err := r.db.Exec(timeoutCtx, query, profileID, key, value)
	return err
}

func (r *PostgresStorage) Delete(ctx context.Context, profileID string, keys ...string) error {
	const query = `DELETE FROM profile_storage WHERE profile_id = $1 AND key = ANY($2)`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	_, err := r.db.Exec(timeoutCtx, query, profileID, keys)
	return err
}

func (r *PostgresStorage) Ping(ctx context.Context) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.db.Ping(timeoutCtx)
}

func (r *PostgresStorage) Close() error {
	r.db.Close()
	return nil
}
