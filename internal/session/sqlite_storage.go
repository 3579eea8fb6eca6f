package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS profile_storage (
    profile_id TEXT NOT NULL,
    key        TEXT NOT NULL,
    value      TEXT NOT NULL,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (profile_id, key)
)`

// SQLiteStorage persists profile storage in a single SQLite file. It suits a
// single web process; use PostgresStorage when several share the state.
type SQLiteStorage struct {
	db      *sql.DB
	timeout time.Duration
}

// OpenSQLite opens (creating if needed) the database at path and makes sure
// the schema exists.
func OpenSQLite(path string, timeout time.Duration) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// sqlite serializes writers anyway
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init sqlite schema: %w", err)
	}
	return &SQLiteStorage{db: db, timeout: timeout}, nil
}

func (s *SQLiteStorage) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

func (s *SQLiteStorage) Get(ctx context.Context, profileID, key string) (string, bool, error) {
	const query = `SELECT value FROM profile_storage WHERE profile_id = ? AND key = ?`
	timeoutCtx, cancel := s.withTimeout(ctx)
	defer cancel()
	var value string
	err := s.db.QueryRowContext(timeoutCtx, query, profileID, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

func (s *SQLiteStorage) Set(ctx context.Context, profileID, key, value string) error {
	const query = `
	INSERT INTO profile_storage (profile_id, key, value, updated_at)
	VALUES (?, ?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT (profile_id, key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`
	timeoutCtx, cancel := s.withTimeout(ctx)
	defer cancel()
	_, err := s.db.ExecContext(timeoutCtx, query, profileID, key, value)
	return err
}

func (s *SQLiteStorage) Delete(ctx context.Context, profileID string, keys ...string) error {
	const query = `DELETE FROM profile_storage WHERE profile_id = ? AND key = ?`
	timeoutCtx, cancel := s.withTimeout(ctx)
	defer cancel()
	tx, err := s.db.BeginTx(timeoutCtx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, k := range keys {
		if _, err := tx.ExecContext(timeoutCtx, query, profileID, k); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteStorage) Ping(ctx context.Context) error {
	timeoutCtx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.db.PingContext(timeoutCtx)
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
