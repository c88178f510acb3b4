// Package cli implements the pageprint command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pageprint/pkg/buildinfo"
	"github.com/matzehuels/pageprint/pkg/cache"
	"github.com/matzehuels/pageprint/pkg/config"
	"github.com/matzehuels/pageprint/pkg/fonts"
	"github.com/matzehuels/pageprint/pkg/observability"
	"github.com/matzehuels/pageprint/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "pageprint"

	// configName is looked up in the config directory when --config is
	// not given.
	configName = "config.toml"
)

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

	configPath string
	cfg        *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level. Debug level also routes
// pipeline, cache and fetch events to the logger.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	if level <= log.DebugLevel {
		observability.NewLogHooks(c.Logger).Install()
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "pageprint turns rendered web pages into editable design documents",
		Long:         `pageprint captures a live page in one or more interaction states, extracts a canonical layout tree from each, merges them into one document and replays it as design-tool operations.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "config file (.toml, .yaml); defaults to ~/.config/pageprint/config.toml")

	root.AddCommand(c.captureCommand())
	root.AddCommand(c.extractCommand())
	root.AddCommand(c.mergeCommand())
	root.AddCommand(c.reconstructCommand())
	root.AddCommand(c.compactCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.versionCommand())
	root.AddCommand(c.completionCommand())
	c.registerCompletions(root)

	return root
}

// loadConfig reads the config once. An explicit path must exist.
func (c *CLI) loadConfig() error {
	if c.cfg != nil {
		return nil
	}
	path := c.configPath
	if path == "" {
		if dir, err := configDir(); err == nil {
			path = filepath.Join(dir, configName)
		}
	} else if _, err := os.Stat(path); err != nil {
		return err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.Logger.Debug("loaded config", "path", path, "cache", cfg.Cache.Backend, "store", cfg.Store.Backend)
	return nil
}

// config returns the loaded config, or the defaults outside a command run.
func (c *CLI) config() *config.Config {
	if c.cfg == nil {
		c.cfg = config.Default()
	}
	return c.cfg
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cache, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cache, nil, c.Logger), nil
}

// newCache opens the configured cache, falling back to none when the
// default directory cannot be determined.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		dir = ""
	}
	return c.config().OpenCache(ctx, dir)
}

// fontCatalog returns the catalog reconstruction resolves fonts against.
// Without a font directory every family is assumed available.
func (c *CLI) fontCatalog(dir string) fonts.Catalog {
	if dir == "" {
		dir = c.config().Reconstruct.FontDir
	}
	switch dir {
	case "":
		return fonts.Permissive{}
	case "system":
		return fonts.NewDir(c.Logger)
	}
	return fonts.NewDir(c.Logger, dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/pageprint/).
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

// configDir returns the config directory using XDG standard (~/.config/pageprint/).
func configDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}
