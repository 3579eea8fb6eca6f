package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"

	"bookshelf/internal/logger"
	"bookshelf/internal/session/migrations"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"github.com/sirupsen/logrus"
)

func main() {
	var (
		command = flag.String("command", "up", "Migration command: up, down, status, create")
		name    = flag.String("name", "", "Name for 'create' command")
	)
	flag.Parse()

	loadEnvFiles()

	log, err := logger.New(envOr("LOG_LEVEL", "info"), os.Getenv("LOG_FORMAT"))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	tgt, err := dbTarget()
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	db, closeDB, err := openDB(ctx, tgt)
	if err != nil {
		log.WithField("dialect", tgt.dialect).Fatalf("Failed to connect to database: %v", err)
	}
	defer closeDB()

	if err := migrate(db, tgt.dialect, migrationsDir(), *command, *name, log); err != nil {
		log.Fatal(err)
	}
}

func openDB(ctx context.Context, tgt target) (*sql.DB, func(), error) {
	if tgt.dialect == "sqlite3" {
		db, err := sql.Open("sqlite3", tgt.dsn)
		if err != nil {
			return nil, nil, err
		}
		return db, func() { _ = db.Close() }, nil
	}

	pool, err := pgxpool.New(ctx, tgt.dsn)
	if err != nil {
		return nil, nil, err
	}
	db := stdlib.OpenDBFromPool(pool)
	return db, func() {
		_ = db.Close()
		pool.Close()
	}, nil
}

// migrate runs one goose command. An empty dir uses the embedded migrations.
func migrate(db *sql.DB, dialect, dir, command, name string, log logrus.FieldLogger) error {
	if dir == "" {
		goose.SetBaseFS(migrations.FS)
		dir = "."
	} else {
		goose.SetBaseFS(nil)
	}
	if err := goose.SetDialect(dialect); err != nil {
		return err
	}

	switch command {
	case "up":
		if err := goose.Up(db, dir); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		log.Info("Migrations applied successfully")
	case "down":
		if err := goose.Down(db, dir); err != nil {
			return fmt.Errorf("roll back migration: %w", err)
		}
		log.Info("Migration rolled back successfully")
	case "status":
		if err := goose.Status(db, dir); err != nil {
			return fmt.Errorf("migration status: %w", err)
		}
	case "create":
		if name == "" {
			return fmt.Errorf("name is required for 'create' command")
		}
		if dir == "." {
			return fmt.Errorf("set MIGRATIONS_DIR to create a migration")
		}
		if err := goose.Create(nil, dir, name, "sql"); err != nil {
			return fmt.Errorf("create migration: %w", err)
		}
		log.WithField("name", name).Info("Migration created")
	default:
		return fmt.Errorf("unknown command: %s. Use: up, down, status, create", command)
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
