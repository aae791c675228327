// Package cli implements the funcplot command-line interface.
//
// The commands are thin wrappers around pkg/pipeline (compile, sample,
// analyse, render), pkg/server (serve) and pkg/cache (cache). Output meant
// for humans is styled with lipgloss and written to the command's stdout;
// logs go to stderr through charmbracelet/log.
//
// # Commands
//
//   - eval: evaluate an expression at one or more points
//   - sample: print a table of samples
//   - analyze: roots, extrema, integral and statistics over a range
//   - root: bisect a single bracket
//   - render: write SVG, PNG, PDF or JSON plots
//   - explore: interactive terminal plot
//   - serve: run the HTTP API
//   - cache: manage the local result cache
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/funcplot/pkg/cache"
	"github.com/matzehuels/funcplot/pkg/pipeline"
)

// appName is used for the cache directory and in help text.
const appName = "funcplot"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a CLI logging to w at level.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// cacheFlags are shared by every command that goes through a runner.
type cacheFlags struct {
	noCache bool
	url     string
	prefix  string
}

func (f *cacheFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVar(&f.url, "cache-url", os.Getenv("FUNCPLOT_CACHE_URL"), "redis URL for a shared cache (default: local files)")
	cmd.Flags().StringVar(&f.prefix, "cache-prefix", os.Getenv("FUNCPLOT_CACHE_PREFIX"), "prefix for every cache key")
}

// keyer scopes cache keys when a prefix is set.
func (f cacheFlags) keyer() cache.Keyer {
	if f.prefix == "" {
		return nil
	}
	return cache.NewScopedKeyer(nil, f.prefix)
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, f cacheFlags) (*pipeline.Runner, error) {
	ch, err := c.newCache(ctx, f)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(ch, f.keyer(), c.Logger), nil
}

// newCache picks the cache backend. A redis URL wins over the file cache; a
// missing home directory silently disables caching.
func (c *CLI) newCache(ctx context.Context, f cacheFlags) (cache.Cache, error) {
	if f.noCache {
		return cache.NewNullCache(), nil
	}
	if f.url != "" {
		rc, err := cache.NewRedisCache(ctx, f.url)
		if err != nil {
			return nil, fmt.Errorf("connect cache: %w", err)
		}
		c.Logger.Debug("using redis cache", "url", f.url)
		return rc, nil
	}
	dir, err := cacheDir()
	if err != nil {
		c.Logger.Debug("no cache directory, caching disabled", "error", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// cacheDir returns the cache directory using the XDG convention
// ($XDG_CACHE_HOME/funcplot or ~/.cache/funcplot).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
