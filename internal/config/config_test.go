package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoad(t *testing.T) {
	t.Run("Reads the YAML file", func(t *testing.T) {
		// Given: a config file with every section set
		path := writeConfig(t, `
log-level: debug
log-format: text
http-port: "8080"
storage:
  driver: redis
redis:
  host: cache
  port: "6380"
  db: 2
game:
  required-lineup: 0
websocket:
  write-timeout: 2s
  allowed-origins:
    - https://scores.example.com
rate-limit:
  refill-per-second: 1.5
  burst: 3
sentry:
  dsn: https://key@sentry.example.com/1
`)

		// When: it is loaded
		conf, err := Load(path)

		// Then: the values are taken from the file
		require.NoError(t, err)
		assert.Equal(t, "debug", conf.LogLevel)
		assert.Equal(t, LogFormatText, conf.LogFormat)
		assert.Equal(t, "8080", conf.HTTPPort)
		assert.Equal(t, StorageRedis, conf.Storage.Driver)
		assert.Equal(t, "cache:6380", conf.Redis.GetRedisAddr())
		assert.Equal(t, 2, conf.Redis.DB)
		assert.Zero(t, conf.Game.RequiredLineup)
		assert.Equal(t, 2*time.Second, conf.WebSocket.WriteTimeout)
		assert.Equal(t, []string{"https://scores.example.com"}, conf.WebSocket.AllowedOrigins)
		assert.InDelta(t, 1.5, conf.RateLimit.RefillPerSecond, 0)
		assert.Equal(t, 3, conf.RateLimit.Burst)
		assert.Equal(t, "https://key@sentry.example.com/1", conf.Sentry.DSN)
		assert.Equal(t, "development", conf.Sentry.Environment)
	})

	t.Run("Missing file falls back to defaults", func(t *testing.T) {
		conf, err := Load(filepath.Join(t.TempDir(), "missing.yml"))

		require.NoError(t, err)
		assert.Equal(t, StorageSQLite, conf.Storage.Driver)
		assert.Equal(t, "volleyball.db", conf.Storage.SQLitePath)
		assert.Equal(t, 6, conf.Game.RequiredLineup)
		assert.Equal(t, 5*time.Second, conf.WebSocket.WriteTimeout)
		assert.Equal(t, "localhost:6379", conf.Redis.GetRedisAddr())
	})

	t.Run("Environment overrides the file", func(t *testing.T) {
		path := writeConfig(t, "http-port: \"8080\"\n")
		t.Setenv("HTTP_PORT", "7070")
		t.Setenv("GAME_REQUIRED_LINEUP", "4")

		conf, err := Load(path)

		require.NoError(t, err)
		assert.Equal(t, "7070", conf.HTTPPort)
		assert.Equal(t, 4, conf.Game.RequiredLineup)
	})

	t.Run("Lineup keeps its default unless the file sets it", func(t *testing.T) {
		// Given: one file without a game section and one disabling the gate
		absent := writeConfig(t, "http-port: \"8080\"\n")
		disabled := writeConfig(t, "game:\n  required-lineup: 0\n")

		// When: both are loaded
		withDefault, err := Load(absent)
		require.NoError(t, err)
		withZero, err := Load(disabled)
		require.NoError(t, err)

		// Then: only the explicit zero turns the gate off
		assert.Equal(t, DefaultRequiredLineup, withDefault.Game.RequiredLineup)
		assert.Zero(t, withZero.Game.RequiredLineup)
	})

	t.Run("Rejects an unknown storage driver", func(t *testing.T) {
		path := writeConfig(t, "storage:\n  driver: postgres\n")

		_, err := Load(path)

		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("Rejects a lineup larger than the court", func(t *testing.T) {
		path := writeConfig(t, "game:\n  required-lineup: 7\n")

		_, err := Load(path)

		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("MustLoad panics on invalid config", func(t *testing.T) {
		path := writeConfig(t, "log-format: xml\n")

		assert.Panics(t, func() { MustLoad(path) })
	})
}
