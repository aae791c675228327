package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/funcplot/pkg/cache"
)

func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the sample and render cache",
	}
	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())
	return cmd
}

func (c *CLI) cacheClearCommand() *cobra.Command {
	var url string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached series and rendered plot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ch, err := c.newCache(cmd.Context(), cacheFlags{url: url})
			if err != nil {
				return err
			}
			defer ch.Close()

			clearer, ok := ch.(cache.Clearer)
			if !ok {
				printWarning(cmd.OutOrStdout(), "Cache backend cannot be cleared")
				return nil
			}
			if err := clearer.Clear(cmd.Context()); err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}

			printSuccess(cmd.OutOrStdout(), "Cache cleared")
			switch ch := ch.(type) {
			case *cache.FileCache:
				printDetail(cmd.OutOrStdout(), "Directory: %s", ch.Dir())
			case *cache.RedisCache:
				printDetail(cmd.OutOrStdout(), "Redis: %s", url)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&url, "cache-url", "", "redis URL to clear instead of the local cache")
	return cmd
}

func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}
