package cli

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/mindcanvas/pkg/buildinfo"
	"github.com/matzehuels/mindcanvas/pkg/cache"
	"github.com/matzehuels/mindcanvas/pkg/config"
	"github.com/matzehuels/mindcanvas/pkg/pipeline"
	"github.com/matzehuels/mindcanvas/pkg/render"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "mindcanvas"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Config is loaded before any subcommand runs.
	Config     *config.Config
	configPath string
}

// New creates a new CLI instance with a default logger and configuration.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Mindcanvas lays out and renders mind maps",
		Long: `Mindcanvas turns a tree of labelled nodes into a top-down mind map.

Nodes are placed from estimated label sizes, measured, and connected with
orthogonal connectors. Results can be written as SVG, PNG, PDF, DOT, JSON or
text, explored in the terminal, or served over HTTP.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: "+config.Path()+")")

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.watchCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the configuration file. A missing default file is fine;
// a missing file named with --config is not.
func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.Config = cfg
	c.Logger.Debug("loaded config", "path", c.configFile(), "cache", cfg.Cache.Backend)
	return nil
}

func (c *CLI) configFile() string {
	if c.configPath != "" {
		return c.configPath
	}
	return config.Path()
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	store, err := c.openCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(store, nil, c.Logger), nil
}

// openCache opens the configured cache. A backend that cannot be reached
// degrades to no caching with a warning.
func (c *CLI) openCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	store, err := c.Config.OpenCache(ctx)
	if err != nil {
		c.Logger.Warn("cache unavailable, continuing without it", "backend", c.Config.Cache.Backend, "err", err)
		return cache.NewNullCache(), nil
	}
	return store, nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// pipelineOptions returns pipeline options seeded from the loaded config.
func (c *CLI) pipelineOptions() pipeline.Options {
	opts := c.Config.PipelineOptions()
	opts.Logger = c.Logger
	return opts
}

// mergeFlags replaces every option whose flag was not set on the command
// line with its value from base, so the config file supplies the defaults.
func mergeFlags(cmd *cobra.Command, opts *pipeline.Options, base pipeline.Options) {
	set := func(name string) bool {
		f := cmd.Flags().Lookup(name)
		return f != nil && f.Changed
	}
	merged := base
	if set("mode") {
		merged.Mode = opts.Mode
	}
	if set("width") {
		merged.Width = opts.Width
	}
	if set("height") {
		merged.Height = opts.Height
	}
	if set("hspace") {
		merged.HorizontalSpacing = opts.HorizontalSpacing
	}
	if set("vspace") {
		merged.VerticalSpacing = opts.VerticalSpacing
	}
	if set("estimate-only") {
		merged.EstimateOnly = opts.EstimateOnly
	}
	if set("refresh") {
		merged.Refresh = opts.Refresh
	}
	if set("theme") {
		merged.Theme = opts.Theme
	}
	if set("fit") {
		merged.Fit = opts.Fit
	}
	if set("scale") {
		merged.Scale = opts.Scale
	}
	*opts = merged
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{string(render.FormatSVG)}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input. If output carries a
// known format extension, that extension is stripped.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if _, err := render.ParseFormat(strings.TrimPrefix(ext, ".")); err == nil && ext != "" {
		return strings.TrimSuffix(output, ext)
	}
	return output
}
