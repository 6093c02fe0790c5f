package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cofrinho/cofrinho/internal/config"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectionUrl(t *testing.T) {
	t.Run("should escape credentials and carry schema", func(t *testing.T) {
		// given
		cfg := config.Database{Host: "db", Port: 5433, User: "app", Pass: "p@ss'word", Name: "savings", Schema: "cofrinho"}

		// when
		poolConfig, err := pgxpool.ParseConfig(ConnectionUrl(cfg))

		// then
		require.NoError(t, err)
		assert.Equal(t, "db", poolConfig.ConnConfig.Host)
		assert.Equal(t, uint16(5433), poolConfig.ConnConfig.Port)
		assert.Equal(t, "p@ss'word", poolConfig.ConnConfig.Password)
		assert.Equal(t, "savings", poolConfig.ConnConfig.Database)
		assert.Equal(t, "cofrinho", poolConfig.ConnConfig.RuntimeParams["search_path"])
	})

	t.Run("should default sslmode to disable", func(t *testing.T) {
		url := ConnectionUrl(config.Database{Host: "db", Port: 5432, User: "app", Name: "savings"})

		assert.Contains(t, url, "sslmode=disable")
		assert.NotContains(t, url, "search_path")
	})
}

func TestMigrationsPath(t *testing.T) {
	t.Run("should find repository migrations from a package directory", func(t *testing.T) {
		path, err := MigrationsPath(config.Database{})

		require.NoError(t, err)
		_, statErr := os.Stat(filepath.Join(path, "000001_init.up.sql"))
		assert.NoError(t, statErr)
	})

	t.Run("should prefer configured path", func(t *testing.T) {
		dir := t.TempDir()

		path, err := MigrationsPath(config.Database{MigrationsPath: dir})

		require.NoError(t, err)
		assert.Equal(t, dir, path)
	})
}
