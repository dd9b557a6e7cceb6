package pipeline

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mindcanvas/pkg/cache"
	"github.com/matzehuels/mindcanvas/pkg/core/layout"
	"github.com/matzehuels/mindcanvas/pkg/core/route"
	"github.com/matzehuels/mindcanvas/pkg/core/settle"
	"github.com/matzehuels/mindcanvas/pkg/core/viewport"
	"github.com/matzehuels/mindcanvas/pkg/errors"
	"github.com/matzehuels/mindcanvas/pkg/geom"
	"github.com/matzehuels/mindcanvas/pkg/mindmap"
	"github.com/matzehuels/mindcanvas/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it so caching behaves the same everywhere.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
// If logger is nil, log output is discarded.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// ExecuteFile loads a tree file and runs the pipeline on it.
func (r *Runner) ExecuteFile(ctx context.Context, path string, opts Options) (*Result, error) {
	start := time.Now()
	root, err := r.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	loadTime := time.Since(start)

	result, err := r.Execute(ctx, root, opts)
	if err != nil {
		return nil, err
	}
	result.Stats.LoadTime = loadTime
	return result, nil
}

// Execute runs the normalize → layout → settle → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, root *mindmap.Node, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	tree, hash, issues := r.Prepare(root)
	result := &Result{
		Tree:     tree,
		TreeHash: hash,
		Issues:   issues,
	}

	// Stage 1: Layout and settle
	layoutStart := time.Now()
	frame, layoutKey, hit, err := r.LayoutWithCacheInfo(ctx, tree, hash, opts)
	if err != nil {
		return nil, err
	}
	frame.Issues = issues
	result.Frame = frame
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.NodeCount = len(frame.Positions)
	result.Stats.ConnectionCount = len(frame.Connections)
	result.Stats.DroppedCount = len(frame.Dropped)
	result.CacheInfo.LayoutHit = hit

	r.Logger.Info("computed layout",
		"nodes", result.Stats.NodeCount,
		"connections", result.Stats.ConnectionCount,
		"phase", frame.Phase,
		"cached", hit,
		"duration", result.Stats.LayoutTime)

	// Stage 2: Render
	renderStart := time.Now()
	artifacts, view, renderHit, err := r.RenderWithCacheInfo(ctx, frame, layoutKey, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.View = view
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Load reads a JSON or YAML tree file.
func (r *Runner) Load(ctx context.Context, path string) (*mindmap.Node, error) {
	start := time.Now()
	observability.Pipeline().OnLoadStart(ctx, path)
	root, err := mindmap.ReadTreeFile(path)
	observability.Pipeline().OnLoadComplete(ctx, path, mindmap.Count(root), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	r.Logger.Debug("loaded tree", "path", path, "nodes", mindmap.Count(root))
	return root, nil
}

// LoadBytes parses a tree payload.
func (r *Runner) LoadBytes(ctx context.Context, source string, data []byte, format mindmap.Format) (*mindmap.Node, error) {
	start := time.Now()
	observability.Pipeline().OnLoadStart(ctx, source)
	root, err := mindmap.UnmarshalTree(data, format)
	observability.Pipeline().OnLoadComplete(ctx, source, mindmap.Count(root), time.Since(start), err)
	return root, err
}

// Prepare normalizes the tree and hashes the result. Repairs are logged
// as warnings and returned.
func (r *Runner) Prepare(root *mindmap.Node) (*mindmap.Node, string, []*errors.Error) {
	tree, issues := mindmap.Normalize(root)
	for _, issue := range issues {
		r.Logger.Warn("repaired tree", "code", issue.Code, "detail", issue.Message)
	}
	data, err := mindmap.MarshalTree(tree)
	if err != nil {
		return tree, "", issues
	}
	return tree, cache.Hash(data), issues
}

// LayoutWithCacheInfo settles a normalized tree, using the cache when the
// same tree was laid out with the same options before. It returns the
// layout cache key for deriving artifact keys.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, tree *mindmap.Node, treeHash string, opts Options) (settle.Frame, string, bool, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return settle.Frame{}, "", false, err
	}
	r.applyLogger(&opts)

	canvas := geom.Size{Width: opts.Width, Height: opts.Height}
	key := r.Keyer.LayoutKey(treeHash, opts.LayoutKeyOpts())
	if !opts.EstimateOnly {
		key += ":measured"
	}

	if !opts.Refresh && treeHash != "" {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if frame, err := decodeLayout(data, tree, canvas); err == nil {
				return frame, key, true, nil
			}
		}
	}

	frame, err := Settle(ctx, tree, opts)
	if err != nil {
		return settle.Frame{}, "", false, err
	}

	if treeHash != "" {
		if data, err := encodeLayout(frame); err == nil {
			if err := r.Cache.Set(ctx, key, data, cache.LayoutTTL); err != nil {
				r.Logger.Debug("layout cache write failed", "error", err)
			}
		}
	}
	return frame, key, false, nil
}

// Layout is a convenience wrapper that normalizes, settles and discards
// the cache info.
func (r *Runner) Layout(ctx context.Context, root *mindmap.Node, opts Options) (settle.Frame, error) {
	tree, hash, issues := r.Prepare(root)
	frame, _, _, err := r.LayoutWithCacheInfo(ctx, tree, hash, opts)
	frame.Issues = issues
	return frame, err
}

// RenderWithCacheInfo renders every requested format, serving them from
// the cache only when all of them are cached.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, frame settle.Frame, layoutKey string, opts Options) (map[string][]byte, viewport.State, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, viewport.Identity, false, err
	}
	r.applyLogger(&opts)
	view := FitView(frame, opts)

	if layoutKey != "" && !opts.Refresh {
		artifacts := make(map[string][]byte, len(opts.Formats))
		for _, format := range opts.Formats {
			data, hit, err := r.Cache.Get(ctx, r.Keyer.RenderKey(layoutKey, opts.RenderKeyOpts(format)))
			if err != nil || !hit {
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			return artifacts, view, true, nil
		}
	}

	rendered, err := Render(ctx, frame, view, opts)
	if err != nil {
		return nil, view, false, err
	}

	if layoutKey != "" {
		for format, data := range rendered {
			_ = r.Cache.Set(ctx, r.Keyer.RenderKey(layoutKey, opts.RenderKeyOpts(format)), data, cache.RenderTTL)
		}
	}
	return rendered, view, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// Settle lays out a tree, measures every label with the SVG measurer and
// re-routes connectors against the measured boxes. With EstimateOnly the
// estimated frame is returned as is.
func Settle(ctx context.Context, tree *mindmap.Node, opts Options) (settle.Frame, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return settle.Frame{}, err
	}
	s := settle.New(layout.New(opts.EngineOptions()...), settle.WithLogger(opts.Logger))
	defer s.Close()

	frame := s.Load(tree, geom.Size{Width: opts.Width, Height: opts.Height})
	if opts.EstimateOnly {
		return frame, nil
	}
	if err := ctx.Err(); err != nil {
		return settle.Frame{}, err
	}

	measured, ok := s.Rendered(measurerFor(opts).Measure(frame.Root))
	if !ok {
		return settle.Frame{}, errors.New(errors.ErrCodeInternal, "layout generation %d superseded while measuring", frame.Generation)
	}
	return measured, nil
}

type cachedLayout struct {
	Measured    bool               `json:"measured"`
	Positions   layout.Positions   `json:"positions"`
	Sizes       layout.Sizes       `json:"sizes"`
	Connections []route.Connection `json:"connections"`
	Dropped     []cachedIssue      `json:"dropped,omitempty"`
}

type cachedIssue struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func encodeLayout(f settle.Frame) ([]byte, error) {
	c := cachedLayout{
		Measured:    f.Phase == settle.PhaseMeasured,
		Positions:   f.Positions,
		Sizes:       f.Sizes,
		Connections: f.Connections,
	}
	for _, d := range f.Dropped {
		c.Dropped = append(c.Dropped, cachedIssue{Code: d.Code, Message: d.Message})
	}
	return json.Marshal(c)
}

func decodeLayout(data []byte, tree *mindmap.Node, canvas geom.Size) (settle.Frame, error) {
	var c cachedLayout
	if err := json.Unmarshal(data, &c); err != nil {
		return settle.Frame{}, err
	}
	if len(c.Positions) != mindmap.Count(tree) {
		return settle.Frame{}, errors.New(errors.ErrCodeInternal, "cached layout does not match tree")
	}
	f := settle.Frame{
		Phase:       settle.PhaseEstimated,
		Root:        tree,
		Canvas:      canvas,
		Positions:   c.Positions,
		Sizes:       c.Sizes,
		Connections: c.Connections,
	}
	if c.Measured {
		f.Phase = settle.PhaseMeasured
	}
	for _, d := range c.Dropped {
		f.Dropped = append(f.Dropped, &errors.Error{Code: d.Code, Message: d.Message})
	}
	return f, nil
}
