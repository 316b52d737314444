// Package config loads galkit runtime settings from an optional YAML file
// and GALKIT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/joshuapare/galkit/galaxy/pool"
	"github.com/joshuapare/galkit/internal/grow"
	"github.com/joshuapare/galkit/internal/logger"
	"github.com/joshuapare/galkit/pkg/types"
)

// EnvPrefix is prepended to every environment override, e.g.
// GALKIT_POOL_BLOCK_SIZE.
const EnvPrefix = "GALKIT"

// Config holds all settings.
type Config struct {
	Registry RegistryConfig `mapstructure:"registry"`
	Array    ArrayConfig    `mapstructure:"array"`
	Pool     PoolConfig     `mapstructure:"pool"`
	Log      LogConfig      `mapstructure:"log"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// RegistryConfig sizes the property registry.
type RegistryConfig struct {
	MaxProperties int `mapstructure:"max_properties"`
	MaxModules    int `mapstructure:"max_modules"`
}

// ArrayConfig controls record array growth.
type ArrayConfig struct {
	GrowthFactor float64 `mapstructure:"growth_factor"`
	GrowthFloor  int     `mapstructure:"growth_floor"`
	MaxCapacity  int     `mapstructure:"max_capacity"`
}

// PoolConfig controls the global record pool.
type PoolConfig struct {
	Enabled         bool `mapstructure:"enabled"`
	InitialCapacity int  `mapstructure:"initial_capacity"`
	BlockSize       int  `mapstructure:"block_size"`
	MaxCapacity     int  `mapstructure:"max_capacity"`
}

// LogConfig configures internal/logger.
type LogConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Level   string `mapstructure:"level"`
	Format  string `mapstructure:"format"`
	Dir     string `mapstructure:"dir"`
}

// MetricsConfig configures the Prometheus collector.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
}

// Defaults returns the built-in settings.
func Defaults() Config {
	return Config{
		Registry: RegistryConfig{
			MaxProperties: types.MaxProperties,
			MaxModules:    types.MaxModules,
		},
		Array: ArrayConfig{
			GrowthFactor: types.DefaultGrowthFactor,
			GrowthFloor:  types.ArrayGrowthFloor,
		},
		Pool: PoolConfig{
			Enabled:         false,
			InitialCapacity: types.DefaultPoolCapacity,
			BlockSize:       types.DefaultPoolBlockSize,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Namespace: "galkit",
		},
	}
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("registry.max_properties", d.Registry.MaxProperties)
	v.SetDefault("registry.max_modules", d.Registry.MaxModules)
	v.SetDefault("array.growth_factor", d.Array.GrowthFactor)
	v.SetDefault("array.growth_floor", d.Array.GrowthFloor)
	v.SetDefault("array.max_capacity", d.Array.MaxCapacity)
	v.SetDefault("pool.enabled", d.Pool.Enabled)
	v.SetDefault("pool.initial_capacity", d.Pool.InitialCapacity)
	v.SetDefault("pool.block_size", d.Pool.BlockSize)
	v.SetDefault("pool.max_capacity", d.Pool.MaxCapacity)
	v.SetDefault("log.enabled", d.Log.Enabled)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.dir", d.Log.Dir)
	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.namespace", d.Metrics.Namespace)
}

// Load reads settings. An empty path uses defaults and the environment only;
// a non-empty path must exist.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v, Defaults())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("config: %s: %w", path, types.ErrNotFound)
		}
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	var errs []error
	if c.Registry.MaxProperties <= 0 || c.Registry.MaxModules <= 0 {
		errs = append(errs, fmt.Errorf("registry capacities must be positive"))
	}
	if c.Array.GrowthFactor < types.MinGrowthFactor {
		errs = append(errs, fmt.Errorf("array.growth_factor %v below %v", c.Array.GrowthFactor, types.MinGrowthFactor))
	}
	if c.Array.GrowthFloor <= 0 || c.Array.MaxCapacity < 0 {
		errs = append(errs, fmt.Errorf("array growth floor must be positive and max capacity non-negative"))
	}
	if c.Pool.BlockSize <= 0 || c.Pool.InitialCapacity < 0 || c.Pool.MaxCapacity < 0 {
		errs = append(errs, fmt.Errorf("pool sizes must be non-negative with a positive block size"))
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q is not text or json", c.Log.Format))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("config: %w: %w", types.ErrInvalidArgument, errors.Join(errs...))
}

// Limits returns the registry limits.
func (c Config) Limits() types.Limits {
	return types.Limits{MaxProperties: c.Registry.MaxProperties, MaxModules: c.Registry.MaxModules}
}

// ArrayPolicy returns the record array growth policy.
func (c Config) ArrayPolicy() grow.Policy {
	return grow.Policy{Factor: c.Array.GrowthFactor, Floor: c.Array.GrowthFloor, Limit: c.Array.MaxCapacity}
}

// GlobalPool returns the global pool settings.
func (c Config) GlobalPool() pool.GlobalConfig {
	return pool.GlobalConfig{
		Enabled: c.Pool.Enabled,
		Config: pool.Config{
			InitialCapacity: c.Pool.InitialCapacity,
			BlockSize:       c.Pool.BlockSize,
			MaxCapacity:     c.Pool.MaxCapacity,
		},
	}
}

// LoggerOptions returns internal/logger options.
func (c Config) LoggerOptions() logger.Options {
	return logger.Options{
		Enabled: c.Log.Enabled,
		LogDir:  c.Log.Dir,
		Format:  c.Log.Format,
		Level:   logger.ParseLevel(c.Log.Level),
	}
}
