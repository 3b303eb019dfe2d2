// Package config loads domgraph settings from a TOML file and DOMGRAPH_*
// environment variables.
//
// Precedence, highest first: environment, config file, built-in defaults.
// Nested keys map to variables by upper-casing and joining with "_", so
// layout.force.charge is DOMGRAPH_LAYOUT_FORCE_CHARGE.
package config

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"

	"github.com/matzehuels/domgraph/pkg/cache"
	"github.com/matzehuels/domgraph/pkg/community"
	"github.com/matzehuels/domgraph/pkg/export"
	"github.com/matzehuels/domgraph/pkg/layout"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "DOMGRAPH"

// Config holds all application configuration.
type Config struct {
	Layout    LayoutConfig    `mapstructure:"layout" toml:"layout"`
	Community CommunityConfig `mapstructure:"community" toml:"community"`
	Export    ExportConfig    `mapstructure:"export" toml:"export"`
	Cache     CacheConfig     `mapstructure:"cache" toml:"cache"`
	Server    ServerConfig    `mapstructure:"server" toml:"server"`
	Log       LogConfig       `mapstructure:"log" toml:"log"`
}

type LayoutConfig struct {
	Default string             `mapstructure:"default" toml:"default"`
	Width   float64            `mapstructure:"width" toml:"width"`
	Height  float64            `mapstructure:"height" toml:"height"`
	Force   layout.ForceParams `mapstructure:"force" toml:"force"`
}

type CommunityConfig struct {
	Enabled    bool    `mapstructure:"enabled" toml:"enabled"`
	Resolution float64 `mapstructure:"resolution" toml:"resolution"`
}

type ExportConfig struct {
	Dir    string `mapstructure:"dir" toml:"dir"`
	Format string `mapstructure:"format" toml:"format"`
	Scope  string `mapstructure:"scope" toml:"scope"`
}

// Cache backends.
const (
	CacheNone  = "none"
	CacheFile  = "file"
	CacheRedis = "redis"
)

type CacheConfig struct {
	Backend  string `mapstructure:"backend" toml:"backend"`
	Dir      string `mapstructure:"dir" toml:"dir"`
	RedisURL string `mapstructure:"redis_url" toml:"redis_url"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr" toml:"addr"`
}

type LogConfig struct {
	Level string `mapstructure:"level" toml:"level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Layout: LayoutConfig{
			Default: layout.DefaultName,
			Width:   960,
			Height:  720,
			Force:   layout.DefaultParams().Force,
		},
		Community: CommunityConfig{Resolution: community.DefaultResolution},
		Export:    ExportConfig{Dir: ".", Format: export.FormatSVG, Scope: string(export.ScopeFull)},
		Cache:     CacheConfig{Backend: CacheFile, Dir: DefaultCacheDir()},
		Server:    ServerConfig{Addr: "127.0.0.1:7070"},
		Log:       LogConfig{Level: "info"},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/domgraph/config.toml, or the
// platform equivalent.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(dir, "domgraph", "config.toml")
}

// DefaultCacheDir returns $XDG_CACHE_HOME/domgraph, or the platform
// equivalent.
func DefaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "domgraph")
	}
	return filepath.Join(dir, "domgraph")
}

// Load reads configuration from path and the environment. An empty path
// means DefaultPath; a missing file leaves the defaults in place.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults, err := Encode(Default())
	if err != nil {
		return nil, err
	}
	if err := v.ReadConfig(bytes.NewReader(defaults)); err != nil {
		return nil, fmt.Errorf("reading defaults: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	cfg.Layout.Force.SetDefaults()
	return &cfg, nil
}

// Validate returns human-readable warnings. Invalid values are reported,
// not corrected.
func (c *Config) Validate() []string {
	var warnings []string

	if !layout.Valid(c.Layout.Default) {
		warnings = append(warnings, fmt.Sprintf("layout.default %q is not one of %v", c.Layout.Default, layout.Names()))
	}
	if c.Layout.Width <= 0 || c.Layout.Height <= 0 {
		warnings = append(warnings, fmt.Sprintf("layout size %gx%g is not positive", c.Layout.Width, c.Layout.Height))
	}
	if g := c.Layout.Force.Gravity; g < 0 || g > 1 {
		warnings = append(warnings, fmt.Sprintf("layout.force.gravity %.2f is outside [0, 1]", g))
	}
	if err := export.ValidateFormat(c.Export.Format); err != nil {
		warnings = append(warnings, "export.format: "+err.Error())
	}
	if _, err := export.ParseScope(c.Export.Scope); err != nil {
		warnings = append(warnings, "export.scope: "+err.Error())
	}
	switch c.Cache.Backend {
	case CacheNone, CacheFile:
	case CacheRedis:
		if c.Cache.RedisURL == "" {
			warnings = append(warnings, "cache.backend is redis but cache.redis_url is empty")
		}
	default:
		warnings = append(warnings, fmt.Sprintf("cache.backend %q is not one of none, file, redis", c.Cache.Backend))
	}
	return warnings
}

// LayoutParams returns the layout parameters with defaults filled in.
func (c *Config) LayoutParams() layout.Params {
	p := layout.Params{Force: c.Layout.Force}
	p.Force.SetDefaults()
	return p
}

// Viewport returns the configured layout size.
func (c *Config) Viewport() layout.Viewport {
	return layout.Viewport{Width: c.Layout.Width, Height: c.Layout.Height}
}

// Encode renders cfg as TOML.
func Encode(cfg Config) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	return buf.Bytes(), nil
}

// Write saves cfg to path, creating parent directories. An existing file is
// only replaced when overwrite is set.
func Write(path string, cfg Config, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}
	}
	data, err := Encode(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// OpenCache connects the configured cache backend.
func (c *Config) OpenCache(ctx context.Context) (cache.Cache, error) {
	switch c.Cache.Backend {
	case CacheNone:
		return cache.NewNullCache(), nil
	case CacheRedis:
		return cache.NewRedisCache(ctx, c.Cache.RedisURL, "domgraph:")
	case CacheFile, "":
		dir := c.Cache.Dir
		if dir == "" {
			dir = DefaultCacheDir()
		}
		return cache.NewFileCache(dir)
	}
	return nil, fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
}
