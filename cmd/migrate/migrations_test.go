package main

import (
	"database/sql"
	"path/filepath"
	"testing"

	"bookshelf/internal/session/migrations"

	"github.com/pressly/goose/v3"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectMigrations_ParsesEmbeddedFS(t *testing.T) {
	goose.SetBaseFS(migrations.FS)
	t.Cleanup(func() { goose.SetBaseFS(nil) })

	ms, err := goose.CollectMigrations(".", 0, goose.MaxVersion)
	require.NoError(t, err)
	assert.NotEmpty(t, ms)
}

func TestMigrate_SQLiteUpDown(t *testing.T) {
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "migrate.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	log, _ := logtest.NewNullLogger()

	require.NoError(t, migrate(db, "sqlite3", "", "up", "", log))
	_, err = db.Exec(`INSERT INTO profile_storage (profile_id, key, value) VALUES ('p1', 'auth_token', 't')`)
	require.NoError(t, err)

	require.NoError(t, migrate(db, "sqlite3", "", "down", "", log))
	_, err = db.Exec(`SELECT 1 FROM profile_storage`)
	assert.Error(t, err)
}

func TestMigrate_UnknownCommand(t *testing.T) {
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "migrate.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	log, _ := logtest.NewNullLogger()

	assert.Error(t, migrate(db, "sqlite3", "", "sideways", "", log))
	assert.Error(t, migrate(db, "sqlite3", "", "create", "", log))
}
