package session

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Open builds the Storage named by driver: memory, sqlite or postgres.
func Open(ctx context.Context, driver, dsn, sqlitePath string, timeout time.Duration) (Storage, error) {
	switch driver {
	case "", "memory":
		return NewMemoryStorage(), nil
	case "sqlite":
		return OpenSQLite(sqlitePath, timeout)
	case "postgres":
		pool, err := pgxpool.New(ctx, dsn)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		pingCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		if err := pool.Ping(pingCtx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		return NewPostgresStorage(pool, timeout), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}
