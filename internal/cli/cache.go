package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mindcanvas/pkg/cache"
	"github.com/matzehuels/mindcanvas/pkg/config"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the layout and render cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached layout and artifact",
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.Config.Cache.Backend == config.CacheNone {
				printInfo("Caching is disabled")
				return nil
			}

			store, err := c.Config.OpenCache(cmd.Context())
			if err != nil {
				return fmt.Errorf("open %s cache: %w", c.Config.Cache.Backend, err)
			}
			defer store.Close()

			if err := store.Clear(cmd.Context()); err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}
			printSuccess("Cache cleared")
			printDetail("%s", cacheLocation(c.Config))
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where the cache lives",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), cacheLocation(c.Config))
			return nil
		},
	}
}

// cacheLocation describes the configured backend: a directory for the
// file cache, a redis URL with the key prefix, or "disabled".
func cacheLocation(cfg *config.Config) string {
	switch cfg.Cache.Backend {
	case config.CacheNone:
		return "disabled"
	case config.CacheRedis:
		loc := "redis://" + cfg.Cache.RedisAddr
		if cfg.Cache.RedisDB != 0 {
			loc += fmt.Sprintf("/%d", cfg.Cache.RedisDB)
		}
		if p := strings.TrimSpace(cfg.Cache.RedisPrefix); p != "" {
			loc += " (prefix " + p + ")"
		}
		return loc
	}
	if cfg.Cache.Dir != "" {
		return cfg.Cache.Dir
	}
	return cache.DefaultDir()
}
