package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("REBALANCER_DATA_DIR", dir)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.DataDir)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.LogPretty)
	assert.False(t, cfg.DevMode)
	assert.Empty(t, cfg.SectorLookupURL)
	assert.Equal(t, 10*time.Second, cfg.SectorLookupTimeout)
	assert.Equal(t, time.Duration(0), cfg.ClassificationCacheTTL)
	assert.Equal(t, "@every 1h", cfg.CacheSweepSchedule)
	assert.Equal(t, "@every 6h", cfg.DatabaseCheckSchedule)
	assert.Equal(t, 5*time.Second, cfg.PersistTimeout)
	assert.Equal(t, filepath.Join(dir, "rebalancer.db"), cfg.DatabasePath())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("REBALANCER_DATA_DIR", t.TempDir())
	t.Setenv("REBALANCER_PORT", "9100")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_PRETTY", "false")
	t.Setenv("DEV_MODE", "true")
	t.Setenv("SECTOR_LOOKUP_URL", "http://sectors.local")
	t.Setenv("SECTOR_LOOKUP_API_KEY", "secret")
	t.Setenv("CLASSIFICATION_CACHE_TTL", "30m")
	t.Setenv("CACHE_SWEEP_SCHEDULE", "*/5 * * * *")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.False(t, cfg.LogPretty)
	assert.True(t, cfg.DevMode)
	assert.Equal(t, "http://sectors.local", cfg.SectorLookupURL)
	assert.Equal(t, "secret", cfg.SectorLookupAPIKey)
	assert.Equal(t, 30*time.Minute, cfg.ClassificationCacheTTL)
	assert.Equal(t, "*/5 * * * *", cfg.CacheSweepSchedule)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("REBALANCER_DATA_DIR", t.TempDir())
	t.Setenv("REBALANCER_PORT", "not-a-number")
	t.Setenv("PERSIST_TIMEOUT", "soon")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 5*time.Second, cfg.PersistTimeout)
}

func TestValidate(t *testing.T) {
	valid := Config{Port: 8080, CacheSweepSchedule: "@every 1h", DatabaseCheckSchedule: "0 3 * * *"}
	require.NoError(t, valid.Validate())

	badPort := valid
	badPort.Port = 0
	assert.Error(t, badPort.Validate())

	badSchedule := valid
	badSchedule.CacheSweepSchedule = "every now and then"
	assert.Error(t, badSchedule.Validate())

	badCheck := valid
	badCheck.DatabaseCheckSchedule = ""
	assert.Error(t, badCheck.Validate())

	badTTL := valid
	badTTL.ClassificationCacheTTL = -time.Second
	assert.Error(t, badTTL.Validate())
}
