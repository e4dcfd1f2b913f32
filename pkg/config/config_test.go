package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFromDir(t *testing.T, yaml string) *Config {
	t.Helper()
	viper.Reset()

	dir := t.TempDir()
	if yaml != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))
	}

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		os.Chdir(wd)
		viper.Reset()
	})

	cfg, err := Load()
	require.NoError(t, err)
	return cfg
}

func TestLoadDefaults(t *testing.T) {
	cfg := loadFromDir(t, "")

	assert.Equal(t, "https://stardewvalleywiki.com", cfg.Wiki.BaseURL)
	assert.Equal(t, 10, cfg.Wiki.TimeoutSec)
	assert.Equal(t, 60, cfg.Wiki.IndexRefreshMinutes)
	assert.Equal(t, "/Special:AllPages?from=&to=z&namespace=0&hideredirects=1", cfg.Wiki.IndexStartPath)
	assert.Equal(t, 5, cfg.Cache.TTLHours)
	assert.Equal(t, 1, cfg.Discord.CooldownPerUser)
	assert.Equal(t, 5, cfg.Discord.CooldownWindow)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	cfg := loadFromDir(t, `
discord:
  token: test-token
  guildIDs:
    - "123"
    - "456"
wiki:
  baseURL: http://localhost:9999
cache:
  ttlHours: 1
redis:
  enabled: true
  host: redis.internal
`)

	assert.Equal(t, "test-token", cfg.Discord.Token)
	assert.Equal(t, []string{"123", "456"}, cfg.Discord.GuildIDs)
	assert.Equal(t, "http://localhost:9999", cfg.Wiki.BaseURL)
	assert.Equal(t, 1, cfg.Cache.TTLHours)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "redis.internal", cfg.Redis.Host)

	// untouched sections keep their defaults
	assert.Equal(t, 5, cfg.Discord.CooldownWindow)
	assert.Equal(t, 8080, cfg.Server.Port)
}
