package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mindcanvas/pkg/config"
	"github.com/matzehuels/mindcanvas/pkg/pipeline"
	"github.com/matzehuels/mindcanvas/pkg/render"
)

// layoutFlags registers the layout flags shared by layout, render, view and
// watch on top of config-seeded options.
func layoutFlags(cmd *cobra.Command, opts *pipeline.Options) {
	cmd.Flags().StringVar(&opts.Mode, "mode", opts.Mode, "layout mode: tree, free-drag")
	cmd.Flags().Float64Var(&opts.Width, "width", opts.Width, "canvas width in pixels")
	cmd.Flags().Float64Var(&opts.Height, "height", opts.Height, "canvas height in pixels")
	cmd.Flags().Float64Var(&opts.HorizontalSpacing, "hspace", opts.HorizontalSpacing, "horizontal spacing between sibling columns")
	cmd.Flags().Float64Var(&opts.VerticalSpacing, "vspace", opts.VerticalSpacing, "vertical spacing between levels")
	cmd.Flags().BoolVar(&opts.EstimateOnly, "estimate-only", false, "skip measuring labels; keep estimated boxes")
}

// layoutCommand creates the layout command for computing positions.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noCache bool
	)
	opts := config.Default().PipelineOptions()

	cmd := &cobra.Command{
		Use:   "layout [tree.json|tree.yaml]",
		Short: "Compute node positions and connectors for a tree",
		Long: `Compute node positions and connectors for a tree.

The layout command reads a JSON or YAML tree, places every node, measures the
labels and routes the connectors. The result is written as a layout.json file
(same format as 'render -f json').

Results are cached for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			mergeFlags(cmd, &opts, c.pipelineOptions())
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "recompute even when cached")
	layoutFlags(cmd, &opts)

	return cmd
}

// runLayout loads the tree, computes the layout, and writes output.
func (c *CLI) runLayout(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Formats = []string{string(render.FormatJSON)}

	spinner := newSpinnerWithContext(ctx, "Computing layout...")
	spinner.Start()

	result, err := runner.ExecuteFile(ctx, input, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		outputPath = strings.TrimSuffix(input, filepath.Ext(input)) + ".layout.json"
	}
	if err := os.WriteFile(outputPath, result.Artifacts[string(render.FormatJSON)], 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(result.Stats, result.CacheInfo.LayoutHit)
	printIssues(result)
	printNewline()
	printNextStep("Render", appName+" render "+input)

	return nil
}
