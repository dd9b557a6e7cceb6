package config

import (
	"context"

	"github.com/matzehuels/mindcanvas/pkg/cache"
	"github.com/matzehuels/mindcanvas/pkg/core/input"
	"github.com/matzehuels/mindcanvas/pkg/core/layout"
	"github.com/matzehuels/mindcanvas/pkg/core/settle"
	"github.com/matzehuels/mindcanvas/pkg/core/viewport"
	"github.com/matzehuels/mindcanvas/pkg/pipeline"
)

// OpenCache opens the configured cache backend, wrapped so its traffic
// reaches the observability hooks.
func (c *Config) OpenCache(ctx context.Context) (cache.Cache, error) {
	switch c.Cache.Backend {
	case CacheNone:
		return cache.NewNullCache(), nil
	case CacheRedis:
		rc, err := cache.NewRedisCache(ctx, c.Cache.RedisAddr, c.Cache.RedisPassword, c.Cache.RedisDB,
			cache.WithRedisPrefix(c.Cache.RedisPrefix))
		if err != nil {
			return nil, err
		}
		return cache.Observed(rc), nil
	default:
		dir := c.Cache.Dir
		if dir == "" {
			dir = cache.DefaultDir()
		}
		fc, err := cache.NewFileCache(dir)
		if err != nil {
			return nil, err
		}
		return cache.Observed(fc), nil
	}
}

// NewEngine returns a layout engine for this configuration.
func (c *Config) NewEngine() *layout.Engine {
	return layout.New(c.EngineOptions()...)
}

// SettleOptions returns the settler options for this configuration.
func (c *Config) SettleOptions() []settle.Option {
	return []settle.Option{settle.WithDebounce(c.Settle.Debounce.Duration)}
}

// NewController returns a viewport controller for this configuration.
func (c *Config) NewController(opts ...viewport.Option) *viewport.Controller {
	return viewport.New(c.Viewport, opts...)
}

// NewNormalizer returns an input normalizer for this configuration.
func (c *Config) NewNormalizer() *input.Normalizer {
	return input.NewNormalizer(c.Input.WheelRequiresModifier)
}

// PipelineOptions returns pipeline options seeded from this configuration.
// Callers override per-request fields on the returned value.
func (c *Config) PipelineOptions() pipeline.Options {
	opts := pipeline.Options{
		Mode:              c.Layout.Mode,
		Width:             c.Layout.Width,
		Height:            c.Layout.Height,
		HorizontalSpacing: c.Layout.HorizontalSpacing,
		VerticalSpacing:   c.Layout.VerticalSpacing,
		TopOffset:         c.Layout.TopOffset,
		Theme:             c.Render.Theme,
		Fit:               c.Render.Fit,
		Scale:             c.Render.Scale,
		Estimator:         c.Estimator(),
		Viewport:          c.Viewport,
	}
	if c.Render.Format != "" {
		opts.Formats = []string{c.Render.Format}
	}
	return opts
}
