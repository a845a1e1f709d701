package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "file", cfg.Pool.Source)
	assert.False(t, cfg.NATS.Enabled)
	assert.False(t, cfg.Archive.Enabled)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfig_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: "9000"
  shutdown_timeout: 3s
pool:
  path: pool.yaml
nats:
  enabled: true
  subject_prefix: league.auction
log:
  level: debug
`), 0o600))

	t.Setenv("PORT", "9100")
	t.Setenv("ARCHIVE_ENABLED", "true")
	t.Setenv("NATS_PUBLISH_TICKS", "not-a-bool")

	cfg, err := loadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "9100", cfg.Server.Port)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "pool.yaml", cfg.Pool.Path)
	assert.True(t, cfg.NATS.Enabled)
	assert.Equal(t, "league.auction", cfg.NATS.SubjectPrefix)
	assert.Equal(t, "AUCTION_EVENTS", cfg.NATS.StreamName)
	assert.False(t, cfg.NATS.PublishTicks)
	assert.True(t, cfg.Archive.Enabled)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadConfig_Invalid(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("server: [1, 2"), 0o600))
	_, err := loadConfig(bad)
	assert.Error(t, err)

	t.Setenv("POOL_SOURCE", "redis")
	_, err = loadConfig(filepath.Join(dir, "absent.yaml"))
	assert.ErrorContains(t, err, "invalid pool source")
}

func TestLoadConfig_NormalisesPoolSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pool:\n  source: File\nlog:\n  level: WARN\n"), 0o600))

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "file", cfg.Pool.Source)
	assert.Equal(t, "warn", cfg.Log.Level)

	t.Setenv("POOL_SOURCE", " Postgres ")
	cfg, err = loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Pool.Source)
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("AUCTION_INT", "12")
	t.Setenv("AUCTION_BAD_INT", "x")
	t.Setenv("AUCTION_BOOL", "1")

	assert.Equal(t, 12, getEnvAsInt("AUCTION_INT", 3))
	assert.Equal(t, 3, getEnvAsInt("AUCTION_BAD_INT", 3))
	assert.True(t, getEnvAsBool("AUCTION_BOOL", false))
	assert.Equal(t, "fallback", getEnv("AUCTION_UNSET", "fallback"))
}
