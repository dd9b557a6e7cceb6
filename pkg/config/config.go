// Package config loads mindcanvas settings from a TOML file.
//
// Settings are layered: [Default] provides every value and a config file
// overrides any subset of them. The default location follows the XDG base
// directory convention:
//
//	$XDG_CONFIG_HOME/mindcanvas/config.toml   (or ~/.config/mindcanvas/config.toml)
//
// A minimal file:
//
//	[layout]
//	mode = "free-drag"
//	horizontal_spacing = 280
//
//	[metrics.leaf]
//	font_size = 13
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/mindcanvas/pkg/core/estimate"
	"github.com/matzehuels/mindcanvas/pkg/core/layout"
	"github.com/matzehuels/mindcanvas/pkg/core/settle"
	"github.com/matzehuels/mindcanvas/pkg/core/viewport"
	"github.com/matzehuels/mindcanvas/pkg/errors"
	"github.com/matzehuels/mindcanvas/pkg/geom"
)

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Config holds all mindcanvas settings.
type Config struct {
	Layout   LayoutConfig       `toml:"layout"`
	Metrics  estimate.Estimator `toml:"metrics"`
	Viewport viewport.Config    `toml:"viewport"`
	Settle   SettleConfig       `toml:"settle"`
	Input    InputConfig        `toml:"input"`
	Render   RenderConfig       `toml:"render"`
	Cache    CacheConfig        `toml:"cache"`
	Server   ServerConfig       `toml:"server"`
}

// LayoutConfig controls placement.
type LayoutConfig struct {
	Mode              string  `toml:"mode"`
	HorizontalSpacing float64 `toml:"horizontal_spacing"`
	VerticalSpacing   float64 `toml:"vertical_spacing"`
	TopOffset         float64 `toml:"top_offset"`
	Width             float64 `toml:"width"`
	Height            float64 `toml:"height"`
}

// SettleConfig controls the estimate/measure protocol.
type SettleConfig struct {
	Debounce Duration `toml:"debounce"`
}

// InputConfig controls gesture normalization.
type InputConfig struct {
	WheelRequiresModifier bool `toml:"wheel_requires_modifier"`
}

// RenderConfig controls output.
type RenderConfig struct {
	Format string  `toml:"format"`
	Theme  string  `toml:"theme"`
	Scale  float64 `toml:"scale"`
	Fit    bool    `toml:"fit"`
}

// CacheConfig selects and configures the result cache.
type CacheConfig struct {
	Backend       string `toml:"backend"`
	Dir           string `toml:"dir"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	RedisPrefix   string `toml:"redis_prefix"`
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Addr           string   `toml:"addr"`
	Metrics        bool     `toml:"metrics"`
	RequestTimeout Duration `toml:"request_timeout"`
	MaxBodyBytes   int64    `toml:"max_body_bytes"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

// Duration is a time.Duration written as a string such as "250ms".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Layout: LayoutConfig{
			Mode:              layout.ModeTree.String(),
			HorizontalSpacing: layout.DefaultHorizontalSpacing,
			VerticalSpacing:   layout.DefaultVerticalSpacing,
			TopOffset:         layout.DefaultTopOffset,
			Width:             1200,
			Height:            800,
		},
		Metrics:  *estimate.New(),
		Viewport: viewport.DefaultConfig(),
		Settle:   SettleConfig{Debounce: Duration{settle.DefaultDebounce}},
		Render:   RenderConfig{Format: "svg", Theme: "light", Scale: 2, Fit: true},
		Cache:    CacheConfig{Backend: CacheFile, RedisAddr: "localhost:6379", RedisPrefix: "mindcanvas:"},
		Server: ServerConfig{
			Addr:           ":8080",
			Metrics:        true,
			RequestTimeout: Duration{30 * time.Second},
			MaxBodyBytes:   1 << 20,
		},
	}
}

// Dir returns the mindcanvas config directory.
func Dir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "mindcanvas")
}

// Path returns the default config file path.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load reads path over the defaults and validates the result. An empty
// path reads the default location, where a missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = Path()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}

	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidConfig, "config %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg as TOML, creating parent directories.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}

// Validate checks every section.
func (c *Config) Validate() error {
	if _, ok := layout.ParseMode(c.Layout.Mode); !ok {
		return invalid("layout.mode %q must be tree or free-drag", c.Layout.Mode)
	}
	if c.Layout.HorizontalSpacing <= 0 || c.Layout.VerticalSpacing < 0 || c.Layout.TopOffset < 0 {
		return invalid("layout spacing must be positive")
	}
	if c.Layout.Width <= 0 || c.Layout.Height <= 0 {
		return invalid("layout canvas %gx%g is empty", c.Layout.Width, c.Layout.Height)
	}
	for name, m := range map[string]estimate.LevelMetrics{
		"root": c.Metrics.Root, "branch": c.Metrics.Branch, "leaf": c.Metrics.Leaf,
	} {
		if m != (estimate.LevelMetrics{}) && !m.Validate() {
			return invalid("metrics.%s cannot produce boxes", name)
		}
	}
	if err := c.Viewport.Validate(); err != nil {
		return err
	}
	if d := c.Settle.Debounce.Duration; d < settle.MinDebounce || d > settle.MaxDebounce {
		return invalid("settle.debounce %s outside [%s, %s]", d, settle.MinDebounce, settle.MaxDebounce)
	}
	if c.Render.Scale <= 0 {
		return invalid("render.scale must be positive")
	}
	if !slices.Contains([]string{CacheFile, CacheRedis, CacheNone}, c.Cache.Backend) {
		return invalid("cache.backend %q must be file, redis or none", c.Cache.Backend)
	}
	if c.Cache.Backend == CacheRedis && c.Cache.RedisAddr == "" {
		return invalid("cache.redis_addr is required for the redis backend")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return invalid("server.max_body_bytes must be positive")
	}
	return nil
}

func invalid(format string, args ...any) error {
	return errors.New(errors.ErrCodeInvalidConfig, format, args...)
}

// LayoutMode returns the parsed layout mode.
func (c *Config) LayoutMode() layout.Mode {
	m, _ := layout.ParseMode(c.Layout.Mode)
	return m
}

// Canvas returns the default canvas size.
func (c *Config) Canvas() geom.Size {
	return geom.Size{Width: c.Layout.Width, Height: c.Layout.Height}
}

// Estimator returns a copy of the configured metrics. Levels whose file
// section set only some fields keep the defaults for the rest.
func (c *Config) Estimator() *estimate.Estimator {
	e := c.Metrics
	return &e
}

// EngineOptions returns the layout engine options for this configuration.
func (c *Config) EngineOptions() []layout.Option {
	return []layout.Option{
		layout.WithEstimator(c.Estimator()),
		layout.WithHorizontalSpacing(c.Layout.HorizontalSpacing),
		layout.WithVerticalSpacing(c.Layout.VerticalSpacing),
		layout.WithTopOffset(c.Layout.TopOffset),
		layout.WithMode(c.LayoutMode()),
	}
}
