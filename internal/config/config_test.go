package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, int64(10000), cfg.Lucky.DrawScale)
	assert.Equal(t, QuotaBackendPostgres, cfg.Lucky.QuotaBackend)
	assert.Equal(t, 24*time.Hour, cfg.Lucky.GracePeriod)
	assert.Equal(t, 20, cfg.Lucky.PageSize)
	assert.Equal(t, "lucky:", cfg.Redis.KeyPrefix)
	assert.Equal(t, 10*time.Second, cfg.Database.ConnectTimeout)
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	yaml := `
lucky:
  draw_scale: 1000000
  quota_backend: redis
  timezone: Asia/Shanghai
admin:
  ids: [42, 43]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))
	t.Setenv("LUCKY_QUOTA_BACKEND", "memory")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, int64(1000000), cfg.Lucky.DrawScale)
	assert.Equal(t, QuotaBackendMemory, cfg.Lucky.QuotaBackend)
	assert.True(t, cfg.IsAdmin(43))
	assert.False(t, cfg.IsAdmin(44))

	loc, err := cfg.Lucky.Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Shanghai", loc.String())
}

func TestValidate(t *testing.T) {
	cfg := &Config{Lucky: LuckyConfig{DrawScale: 10000, QuotaBackend: QuotaBackendMemory}}
	require.NoError(t, cfg.Validate())

	cfg.Lucky.DrawScale = MaxDrawScale + 1
	assert.Error(t, cfg.Validate())

	cfg.Lucky.DrawScale = 10000
	cfg.Lucky.QuotaBackend = "memcached"
	assert.Error(t, cfg.Validate())
}

func TestIsChatAllowed(t *testing.T) {
	cfg := &Config{}
	assert.True(t, cfg.IsChatAllowed(-100))

	cfg.Whitelist.Chats = []int64{-100}
	assert.True(t, cfg.IsChatAllowed(-100))
	assert.False(t, cfg.IsChatAllowed(-200))
}
