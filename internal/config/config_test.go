package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/galkit/pkg/types"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
	assert.Equal(t, types.DefaultLimits(), cfg.Limits())

	p := cfg.ArrayPolicy()
	assert.Equal(t, 1.5, p.Factor)
	assert.Equal(t, 256, p.Floor)
	assert.False(t, cfg.GlobalPool().Enabled)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "galkit.yaml")
	body := `
registry:
  max_properties: 16
pool:
  enabled: true
  block_size: 64
  initial_capacity: 100
log:
  enabled: true
  level: debug
  format: json
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 16, cfg.Registry.MaxProperties)
	assert.Equal(t, types.MaxModules, cfg.Registry.MaxModules, "unset keys keep defaults")

	gp := cfg.GlobalPool()
	assert.True(t, gp.Enabled)
	assert.Equal(t, 64, gp.BlockSize)
	assert.Equal(t, 100, gp.InitialCapacity)

	lo := cfg.LoggerOptions()
	assert.True(t, lo.Enabled)
	assert.Equal(t, slog.LevelDebug, lo.Level)
	assert.Equal(t, "json", lo.Format)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("GALKIT_POOL_BLOCK_SIZE", "32")
	t.Setenv("GALKIT_ARRAY_GROWTH_FACTOR", "2")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 32, cfg.Pool.BlockSize)
	assert.Equal(t, 2.0, cfg.Array.GrowthFactor)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, types.ErrNotFound)

	t.Setenv("GALKIT_ARRAY_GROWTH_FACTOR", "1.01")
	_, err = Load("")
	require.ErrorIs(t, err, types.ErrInvalidArgument)
}

func TestValidate(t *testing.T) {
	cfg := Defaults()
	cfg.Pool.BlockSize = 0
	cfg.Log.Format = "xml"
	err := cfg.Validate()
	require.ErrorIs(t, err, types.ErrInvalidArgument)
	assert.Contains(t, err.Error(), "block size")
	assert.Contains(t, err.Error(), "xml")
}
