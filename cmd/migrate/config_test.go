package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsDir_EnvOverride(t *testing.T) {
	t.Setenv("MIGRATIONS_DIR", "/custom/migrations")

	assert.Equal(t, "/custom/migrations", migrationsDir())
}

func TestMigrationsDir_DefaultIsEmbedded(t *testing.T) {
	t.Setenv("MIGRATIONS_DIR", "")

	assert.Empty(t, migrationsDir())
}

func TestDBTarget(t *testing.T) {
	t.Run("sqlite default", func(t *testing.T) {
		t.Setenv("STORAGE_DRIVER", "")
		t.Setenv("SQLITE_PATH", "")

		tgt, err := dbTarget()
		require.NoError(t, err)
		assert.Equal(t, target{dialect: "sqlite3", dsn: "bookshelf.db"}, tgt)
	})

	t.Run("postgres", func(t *testing.T) {
		t.Setenv("STORAGE_DRIVER", "postgres")
		t.Setenv("DB_DSN", "postgres://u:p@db/bookshelf")

		tgt, err := dbTarget()
		require.NoError(t, err)
		assert.Equal(t, target{dialect: "postgres", dsn: "postgres://u:p@db/bookshelf"}, tgt)
	})

	t.Run("memory has nothing to migrate", func(t *testing.T) {
		t.Setenv("STORAGE_DRIVER", "memory")

		_, err := dbTarget()
		assert.Error(t, err)
	})
}

func TestLoadEnvFiles_DoesNotOverrideExistingEnv(t *testing.T) {
	tmp := t.TempDir()
	p := filepath.Join(tmp, ".env")
	require.NoError(t, os.WriteFile(p, []byte("DB_DSN=from_file\n"), 0644))

	t.Setenv("DB_DSN", "from_env")

	cwd, _ := os.Getwd()
	require.NoError(t, os.Chdir(tmp))
	t.Cleanup(func() { _ = os.Chdir(cwd) })

	loadEnvFiles()

	assert.Equal(t, "from_env", os.Getenv("DB_DSN"))
}
