package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mindcanvas/pkg/config"
	"github.com/matzehuels/mindcanvas/pkg/pipeline"
	"github.com/matzehuels/mindcanvas/pkg/render"
)

// renderFlags registers the output flags shared by render and watch.
func renderFlags(cmd *cobra.Command, opts *pipeline.Options, formats *string) {
	cmd.Flags().StringVarP(formats, "format", "f", "", "output format(s): svg (default), png, pdf, dot, json, txt (comma-separated)")
	cmd.Flags().StringVar(&opts.Theme, "theme", opts.Theme, "color theme: light, dark")
	cmd.Flags().BoolVar(&opts.Fit, "fit", opts.Fit, "center the root in the frame")
	cmd.Flags().Float64Var(&opts.Scale, "scale", opts.Scale, "raster scale for png")
}

// resolveFormats returns the formats named on the command line, or the
// configured default when --format was not given.
func resolveFormats(cmd *cobra.Command, flag string, opts pipeline.Options) []string {
	if f := cmd.Flags().Lookup("format"); f != nil && f.Changed {
		return parseFormats(flag)
	}
	if len(opts.Formats) > 0 {
		return opts.Formats
	}
	return parseFormats("")
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		output  string
		formats string
		noCache bool
	)
	opts := config.Default().PipelineOptions()

	cmd := &cobra.Command{
		Use:   "render [tree.json|tree.yaml]",
		Short: "Render a tree to SVG, PNG, PDF, DOT, JSON or text",
		Long: `Render a tree to one or more output formats.

With a single format, -o names the output file ("-" writes to stdout). With
several formats, -o is a base path and each format gets its own extension.`,
		Args: cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			mergeFlags(cmd, &opts, c.pipelineOptions())
			opts.Formats = resolveFormats(cmd, formats, opts)
			return opts.ValidateForRender()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), args[0], opts, output, noCache, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "recompute even when cached")
	renderFlags(cmd, &opts, &formats)
	layoutFlags(cmd, &opts)

	return cmd
}

// runRender executes the pipeline and writes every artifact.
func (c *CLI) runRender(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool, stdout io.Writer) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()
	return c.renderWith(ctx, runner, input, opts, output, stdout)
}

// renderWith runs one render with an open runner.
func (c *CLI) renderWith(ctx context.Context, runner *pipeline.Runner, input string, opts pipeline.Options, output string, stdout io.Writer) error {
	prog := newProgress(c.Logger)
	result, err := runner.ExecuteFile(ctx, input, opts)
	if err != nil {
		return err
	}

	if output == "-" {
		if len(opts.Formats) != 1 {
			return fmt.Errorf("stdout output needs exactly one format, got %d", len(opts.Formats))
		}
		_, err := stdout.Write(result.Artifacts[opts.Formats[0]])
		return err
	}

	paths, err := writeArtifacts(result, opts.Formats, input, output)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Rendered %d file(s)", len(paths)))

	printSuccess("Render complete")
	for _, p := range paths {
		printFile(p)
	}
	printStats(result.Stats, result.CacheInfo.LayoutHit && result.CacheInfo.RenderHit)
	printIssues(result)
	return nil
}

// writeArtifacts writes each rendered format and returns the paths written.
func writeArtifacts(result *pipeline.Result, formats []string, input, output string) ([]string, error) {
	var paths []string
	for _, f := range formats {
		data, ok := result.Artifacts[f]
		if !ok {
			continue
		}
		path := output
		if len(formats) > 1 || output == "" {
			path = basePath(output, input) + render.Format(f).Ext()
			if render.Format(f) == render.FormatJSON {
				path = basePath(output, input) + ".layout.json"
			}
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
