package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mindcanvas/pkg/config"
)

// configCommand creates the config management command.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the configuration file",
	}

	cmd.AddCommand(c.configInitCommand())
	cmd.AddCommand(c.configPathCommand())
	cmd.AddCommand(c.configShowCommand())

	return cmd
}

func (c *CLI) configInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration",
		// The file may not exist yet, or may be the broken one being replaced.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			path := c.configFile()
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := config.Save(path, config.Default()); err != nil {
				return fmt.Errorf("write config: %w", err)
			}
			printSuccess("Wrote default configuration")
			printFile(path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func (c *CLI) configPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), c.configFile())
			return nil
		},
	}
}

func (c *CLI) configShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(StyleTitle.Render("Configuration"))
			for _, kv := range configRows(c.Config) {
				printKeyValue(kv[0], kv[1])
			}
			return nil
		},
	}
}

// configRows lists the settings most worth checking, as key/value pairs.
func configRows(cfg *config.Config) [][2]string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	origins := "any"
	if len(cfg.Server.AllowedOrigins) > 0 {
		origins = strings.Join(cfg.Server.AllowedOrigins, ", ")
	}
	return [][2]string{
		{"layout.mode", cfg.Layout.Mode},
		{"layout.canvas", f(cfg.Layout.Width) + "x" + f(cfg.Layout.Height)},
		{"layout.spacing", f(cfg.Layout.HorizontalSpacing) + " / " + f(cfg.Layout.VerticalSpacing)},
		{"viewport.zoom", f(cfg.Viewport.ZoomMin) + " - " + f(cfg.Viewport.ZoomMax)},
		{"viewport.fit", f(cfg.Viewport.FitZoom)},
		{"settle.debounce", cfg.Settle.Debounce.String()},
		{"render.format", cfg.Render.Format},
		{"render.theme", cfg.Render.Theme},
		{"cache", cfg.Cache.Backend + " " + cacheLocation(cfg)},
		{"server.addr", cfg.Server.Addr},
		{"server.origins", origins},
	}
}
