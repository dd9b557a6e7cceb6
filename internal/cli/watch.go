package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/matzehuels/mindcanvas/pkg/config"
	"github.com/matzehuels/mindcanvas/pkg/pipeline"
)

// watchCommand creates the watch command.
func (c *CLI) watchCommand() *cobra.Command {
	var (
		output  string
		formats string
		noCache bool
	)
	opts := config.Default().PipelineOptions()

	cmd := &cobra.Command{
		Use:   "watch [tree.json|tree.yaml]",
		Short: "Re-render a tree whenever its file changes",
		Long: `Render a tree, then render it again after every save.

Bursts of file events are coalesced using the configured settle debounce, so
editors that write in several steps trigger one render. Render failures are
reported and watching continues. Stop with Ctrl-C.`,
		Args: cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if output == "-" {
				return errors.New("watch cannot write to stdout")
			}
			mergeFlags(cmd, &opts, c.pipelineOptions())
			opts.Formats = resolveFormats(cmd, formats, opts)
			return opts.ValidateForRender()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runWatch(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "recompute even when cached")
	renderFlags(cmd, &opts, &formats)
	layoutFlags(cmd, &opts)

	return cmd
}

func (c *CLI) runWatch(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	render := func() {
		if err := c.renderWith(ctx, runner, input, opts, output, nil); err != nil {
			printError("%v", err)
		}
	}
	render()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Editors often replace the file on save, so watch its directory.
	if err := watcher.Add(filepath.Dir(input)); err != nil {
		return fmt.Errorf("watch %s: %w", input, err)
	}
	printInfo("Watching %s", input)

	err = watchLoop(ctx, watcher.Events, watcher.Errors, input, c.Config.Settle.Debounce.Duration, func(err error) {
		c.Logger.Warn("watcher error", "err", err)
	}, render)
	if errors.Is(err, context.Canceled) {
		printNewline()
		printInfo("Stopped watching")
		return nil
	}
	return err
}

// watchLoop calls fn once per burst of writes to target, after the events
// have been quiet for debounce. It returns when ctx is done or the event
// channel closes.
func watchLoop(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error, target string, debounce time.Duration, onErr func(error), fn func()) error {
	target = filepath.Clean(target)

	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			timer.Reset(debounce)

		case err, ok := <-errs:
			if !ok {
				return nil
			}
			onErr(err)

		case <-timer.C:
			fn()
		}
	}
}
