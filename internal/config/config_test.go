package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("should use defaults when file does not exist", func(t *testing.T) {
		// when
		cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))

		// then
		require.NoError(t, err)
		assert.Equal(t, 8181, cfg.Port)
		assert.Equal(t, "BRL", cfg.Currency)
		assert.Equal(t, "local", cfg.Storage.Backend)
		assert.Equal(t, 24*time.Hour, cfg.Auth.TokenDuration)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, 50, cfg.Notifications.InboxSize)
	})

	t.Run("should override defaults with yaml file", func(t *testing.T) {
		// given
		path := filepath.Join(t.TempDir(), "application.yaml")
		content := []byte("port: 9000\ncurrency: EUR\ndb:\n  host: db.internal\n  name: savings\nauth:\n  tokenduration: 2h\n")
		require.NoError(t, os.WriteFile(path, content, 0o644))

		// when
		cfg, err := Load(path)

		// then
		require.NoError(t, err)
		assert.Equal(t, 9000, cfg.Port)
		assert.Equal(t, "EUR", cfg.Currency)
		assert.Equal(t, "db.internal", cfg.Database.Host)
		assert.Equal(t, "savings", cfg.Database.Name)
		assert.Equal(t, "cofrinho", cfg.Database.User)
		assert.Equal(t, 2*time.Hour, cfg.Auth.TokenDuration)
	})

	t.Run("should let environment win over file", func(t *testing.T) {
		// given
		path := filepath.Join(t.TempDir(), "application.yaml")
		require.NoError(t, os.WriteFile(path, []byte("db:\n  host: from-file\n"), 0o644))
		t.Setenv("COFRINHO_DB_HOST", "from-env")
		t.Setenv("COFRINHO_STORAGE_BACKEND", "gcs")

		// when
		cfg, err := Load(path)

		// then
		require.NoError(t, err)
		assert.Equal(t, "from-env", cfg.Database.Host)
		assert.Equal(t, "gcs", cfg.Storage.Backend)
	})
}
