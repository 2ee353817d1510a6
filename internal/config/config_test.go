package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("WELLBEING_CONFIG", "")
	t.Setenv("STORE_DRIVER", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DriverBadger, cfg.Store.Driver)
	assert.Equal(t, 30, cfg.Analytics.TrendDays)
	assert.Equal(t, 10, cfg.Analytics.ChartPoints)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wellbeing.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
store:
  driver: redis
  redisAddr: cache:6379
analytics:
  trendDays: 14
  timeZone: Asia/Ho_Chi_Minh
auth:
  tokenTTL: 2h
`), 0600))

	t.Setenv("WELLBEING_CONFIG", path)
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("REDIS_URI", "redis://override:6380")
	t.Setenv("CHART_POINTS", "20")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DriverRedis, cfg.Store.Driver)
	assert.Equal(t, "override:6380", cfg.Store.RedisAddr)
	assert.Equal(t, 14, cfg.Analytics.TrendDays)
	assert.Equal(t, 20, cfg.Analytics.ChartPoints)
	assert.Equal(t, 7, cfg.Analytics.RecentDays)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Ho_Chi_Minh", loc.String())
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Store.Driver = "sqlite"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Analytics.TimeZone = "Nowhere/Special"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Store.BadgerPath = ""
	assert.Error(t, cfg.Validate())
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("WELLBEING_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))
	_, err := Load()
	assert.Error(t, err)
}
