package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "./data", cfg.Storage.DataDir)
	assert.Equal(t, int64(1), cfg.Feed.Seed)
	assert.Equal(t, 40, cfg.Feed.MentionsPerDay)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.NoError(t, cfg.Validate())
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 9090
  mode: debug
storage:
  data_dir: /tmp/pulse
feed:
  seed: 42
  mentions_per_day: 25
cache:
  ttl: 2m
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.Mode)
	assert.Equal(t, "/tmp/pulse", cfg.Storage.DataDir)
	assert.Equal(t, int64(42), cfg.Feed.Seed)
	assert.Equal(t, 25, cfg.Feed.MentionsPerDay)
	assert.Equal(t, 2*time.Minute, cfg.Cache.TTL)

	// Fields the file omits keep defaults.
	assert.Equal(t, "dev-only-secret-change-me", cfg.Auth.JWTSecret)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not a map"), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "7070")
	t.Setenv("FEED_SEED", "99")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("CACHE_TTL", "90s")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, int64(99), cfg.Feed.Seed)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "test-secret", cfg.Auth.JWTSecret)
	assert.Equal(t, 90*time.Second, cfg.Cache.TTL)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port zero", func(c *Config) { c.Server.Port = 0 }},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }},
		{"empty data dir", func(c *Config) { c.Storage.DataDir = "" }},
		{"zero mentions per day", func(c *Config) { c.Feed.MentionsPerDay = 0 }},
		{"zero cache ttl", func(c *Config) { c.Cache.TTL = 0 }},
		{"empty jwt secret", func(c *Config) { c.Auth.JWTSecret = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestAddr(t *testing.T) {
	cfg := Default()
	cfg.Server.Port = 8081
	assert.Equal(t, ":8081", cfg.Addr())
}
