package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/domgraph/pkg/buildinfo"
	"github.com/matzehuels/domgraph/pkg/cache"
	"github.com/matzehuels/domgraph/pkg/config"
	"github.com/matzehuels/domgraph/pkg/extract"
	"github.com/matzehuels/domgraph/pkg/graph"
	"github.com/matzehuels/domgraph/pkg/observability"
	"github.com/matzehuels/domgraph/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "domgraph"

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

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "domgraph turns page structure into an interactive graph",
		Long: `domgraph extracts the elements of an HTML page grouped by tag, builds a
containment graph (document → tag → element), lays it out with a force or
radial layout, and renders or exports it.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: "+config.DefaultPath()+")")

	root.AddCommand(c.extractCommand())
	root.AddCommand(c.buildCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.watchCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file and installs logging hooks. The config
// level only ever raises verbosity; --verbose always wins.
func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	for _, w := range cfg.Validate() {
		c.Logger.Warn("config", "issue", w)
	}
	if lvl, err := log.ParseLevel(cfg.Log.Level); err == nil && lvl < c.Logger.GetLevel() {
		c.Logger.SetLevel(lvl)
	}
	c.cfg = cfg

	hooks := observability.NewLogHooks(c.Logger)
	observability.SetPipelineHooks(hooks)
	observability.SetCacheHooks(hooks)
	observability.SetServerHooks(hooks)
	return nil
}

// config returns the loaded configuration, falling back to defaults when a
// command runs without the root pre-run (as in tests).
func (c *CLI) config() *config.Config {
	if c.cfg == nil {
		cfg := config.Default()
		c.cfg = &cfg
	}
	return c.cfg
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cc, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cc, nil, c.Logger), nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	cc, err := c.config().OpenCache(ctx)
	if err != nil {
		c.Logger.Warn("cache unavailable, continuing without it", "err", err)
		return cache.NewNullCache(), nil
	}
	return cc, nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// defaultOptions seeds pipeline options from the config file.
func (c *CLI) defaultOptions() pipeline.Options {
	cfg := c.config()
	opts := pipeline.Options{
		Layout:     cfg.Layout.Default,
		Width:      cfg.Layout.Width,
		Height:     cfg.Layout.Height,
		Force:      cfg.Layout.Force,
		Community:  cfg.Community.Enabled,
		Resolution: cfg.Community.Resolution,
		Scope:      cfg.Export.Scope,
	}
	if cfg.Export.Format != "" {
		opts.Formats = []string{cfg.Export.Format}
	}
	opts.SetLayoutDefaults()
	opts.SetRenderDefaults()
	opts.Logger = c.Logger
	return opts
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// loadTagGroups reads a payload from a tag-groups JSON file or, for .html
// and .htm inputs, extracts it from the page.
func loadTagGroups(path string) (graph.TagGroups, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return extract.FromFile(path)
	}
	groups, err := graph.ReadTagGroupsFile(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return groups, nil
}

// outputBase strips the extension (and a trailing .tags) from input.
func outputBase(input string) string {
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return strings.TrimSuffix(base, ".tags")
}
