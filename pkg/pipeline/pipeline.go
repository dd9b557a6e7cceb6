// Package pipeline provides the load → layout → settle → render pipeline
// shared by the CLI and the HTTP server.
//
// # Architecture
//
// A run goes through four stages:
//
//  1. Load: read a JSON or YAML tree and normalize it
//  2. Layout: place nodes and route connectors from estimated sizes
//  3. Settle: measure every label with the SVG text measurer and
//     re-route connectors against the measured boxes
//  4. Render: produce SVG, PNG, PDF, DOT, JSON or text artifacts,
//     optionally framed on the root node
//
// Layouts and artifacts are cached by content hash, so re-rendering an
// unchanged tree in another format skips the layout work.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.ExecuteFile(ctx, "plan.yaml", pipeline.Options{
//	    Formats: []string{"svg", "txt"},
//	    Fit:     true,
//	})
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mindcanvas/pkg/cache"
	"github.com/matzehuels/mindcanvas/pkg/core/estimate"
	"github.com/matzehuels/mindcanvas/pkg/core/layout"
	"github.com/matzehuels/mindcanvas/pkg/core/settle"
	"github.com/matzehuels/mindcanvas/pkg/core/viewport"
	"github.com/matzehuels/mindcanvas/pkg/errors"
	"github.com/matzehuels/mindcanvas/pkg/mindmap"
	"github.com/matzehuels/mindcanvas/pkg/render"
	"github.com/matzehuels/mindcanvas/pkg/render/svg"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultWidth is the default canvas width in pixels.
	DefaultWidth = 1200.0

	// DefaultHeight is the default canvas height in pixels.
	DefaultHeight = 800.0

	// DefaultScale is the default PNG scale factor.
	DefaultScale = 2.0

	// DefaultTheme is the default color theme.
	DefaultTheme = "light"
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Layout options
	Mode              string  `json:"mode,omitempty"`
	Width             float64 `json:"width,omitempty"`
	Height            float64 `json:"height,omitempty"`
	HorizontalSpacing float64 `json:"horizontal_spacing,omitempty"`
	VerticalSpacing   float64 `json:"vertical_spacing,omitempty"`
	TopOffset         float64 `json:"top_offset,omitempty"`
	EstimateOnly      bool    `json:"estimate_only,omitempty"` // Skip the measuring pass
	Refresh           bool    `json:"refresh,omitempty"`

	// Render options
	Formats []string `json:"formats,omitempty"`
	Theme   string   `json:"theme,omitempty"`
	Fit     bool     `json:"fit,omitempty"`
	Scale   float64  `json:"scale,omitempty"`

	// Runtime options (not serialized)
	Logger    *log.Logger         `json:"-"`
	Estimator *estimate.Estimator `json:"-"`
	Viewport  viewport.Config     `json:"-"`

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Tree is the normalized tree.
	Tree *mindmap.Node

	// TreeHash is the content hash of the normalized tree.
	TreeHash string

	// Issues lists the repairs made while normalizing.
	Issues []*errors.Error

	// Frame is the final layout generation.
	Frame settle.Frame

	// View is the viewport framing the root when Fit was requested, or
	// the identity otherwise.
	View viewport.State

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Scene returns the render scene of the final frame.
func (r *Result) Scene() render.Scene { return render.FromFrame(r.Frame) }

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount       int
	ConnectionCount int
	DroppedCount    int
	LoadTime        time.Duration
	LayoutTime      time.Duration
	RenderTime      time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks every option and applies defaults.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.Mode == "" {
		o.Mode = layout.ModeTree.String()
	}
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.HorizontalSpacing == 0 {
		o.HorizontalSpacing = layout.DefaultHorizontalSpacing
	}
	if o.VerticalSpacing == 0 {
		o.VerticalSpacing = layout.DefaultVerticalSpacing
	}
	if o.TopOffset == 0 {
		o.TopOffset = layout.DefaultTopOffset
	}
	if o.Estimator == nil {
		o.Estimator = estimate.New()
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if _, ok := layout.ParseMode(o.Mode); !ok {
		return errors.New(errors.ErrCodeInvalidInput, "invalid mode: %q (must be one of: tree, free-drag)", o.Mode)
	}
	if o.Width < 0 || o.Height < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "canvas %gx%g must not be negative", o.Width, o.Height)
	}
	if o.HorizontalSpacing < 0 || o.VerticalSpacing < 0 || o.TopOffset < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "spacing must not be negative")
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{string(render.FormatSVG)}
	}
	if o.Theme == "" {
		o.Theme = DefaultTheme
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	o.Viewport.SetDefaults()
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	for i, f := range o.Formats {
		parsed, err := render.ParseFormat(f)
		if err != nil {
			return err
		}
		o.Formats[i] = string(parsed)
	}
	if _, ok := svg.ThemeByName(o.Theme); !ok {
		return errors.New(errors.ErrCodeInvalidInput, "invalid theme: %q (must be one of: light, dark)", o.Theme)
	}
	if o.Scale < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "scale must be positive, got %g", o.Scale)
	}
	return o.Viewport.Validate()
}

// EngineOptions returns the layout engine options.
func (o *Options) EngineOptions() []layout.Option {
	mode, _ := layout.ParseMode(o.Mode)
	return []layout.Option{
		layout.WithEstimator(o.Estimator),
		layout.WithHorizontalSpacing(o.HorizontalSpacing),
		layout.WithVerticalSpacing(o.VerticalSpacing),
		layout.WithTopOffset(o.TopOffset),
		layout.WithMode(mode),
	}
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	metrics, _ := cache.HashJSON(o.Estimator)
	return cache.LayoutKeyOpts{
		Mode:       o.Mode,
		Width:      o.Width,
		Height:     o.Height,
		HSpacing:   o.HorizontalSpacing,
		VSpacing:   o.VerticalSpacing,
		TopOffset:  o.TopOffset,
		MetricsSum: metrics,
	}
}

// RenderKeyOpts returns cache key options for artifact rendering.
func (o *Options) RenderKeyOpts(format string) cache.RenderKeyOpts {
	return cache.RenderKeyOpts{
		Format:   format,
		Measured: !o.EstimateOnly,
		Fit:      o.Fit,
		FitZoom:  o.Viewport.FitZoom,
		Theme:    o.Theme,
		Scale:    o.Scale,
	}
}
