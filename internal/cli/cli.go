// Package cli implements the stateflow command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stateflow/pkg/buildinfo"
	"github.com/matzehuels/stateflow/pkg/cache"
	"github.com/matzehuels/stateflow/pkg/config"
	"github.com/matzehuels/stateflow/pkg/errors"
	sfio "github.com/matzehuels/stateflow/pkg/io"
	"github.com/matzehuels/stateflow/pkg/model"
	"github.com/matzehuels/stateflow/pkg/pipeline"
	"github.com/matzehuels/stateflow/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "stateflow"
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
	backend    string
	noColor    bool

	cfg   config.Config
	store store.Store
	now   func() time.Time
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		cfg:    config.Default(),
		now:    time.Now,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:               appName,
		Short:             "Stateflow lays out state-flow sequence diagrams",
		Long:              `Stateflow manages state-flow diagrams (actors, the state they own, and the flows between them) and projects them into sequence-diagram layouts rendered as SVG, PNG, JSON, or Graphviz DOT.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
		PersistentPostRun: func(*cobra.Command, []string) { c.closeStore() },
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/stateflow/config.toml)")
	flags.StringVar(&c.backend, "store", "", "store backend: file, memory, redis, mongo, postgres")
	flags.BoolVar(&c.noColor, "no-color", os.Getenv("NO_COLOR") != "", "disable colored output")

	root.AddCommand(c.newCommand())
	root.AddCommand(c.listCommand())
	root.AddCommand(c.showCommand())
	root.AddCommand(c.rmCommand())
	root.AddCommand(c.renameCommand())
	root.AddCommand(c.importCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.checkCommand())
	root.AddCommand(c.actorCommand())
	root.AddCommand(c.stateCommand())
	root.AddCommand(c.conditionCommand())
	root.AddCommand(c.flowCommand())
	root.AddCommand(c.stepCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// setup loads the configuration and applies flag overrides. It runs before
// every subcommand.
func (c *CLI) setup(cmd *cobra.Command, args []string) error {
	if c.noColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.backend != "" {
		cfg.Store.Backend = c.backend
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	c.cfg = cfg
	cmd.SetContext(withLogger(cmd.Context(), c.Logger))
	return nil
}

// =============================================================================
// Store & Runner Factories
// =============================================================================

// openStore returns the configured store. The store is opened once and
// shared by the commands of a single invocation.
func (c *CLI) openStore(ctx context.Context) (store.Store, error) {
	if c.store != nil {
		return c.store, nil
	}
	st, err := c.cfg.OpenStore(ctx)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("opened store", "backend", c.cfg.Store.Backend)
	c.store = st
	return st, nil
}

// closeStore releases the store opened by openStore.
func (c *CLI) closeStore() {
	if c.store == nil {
		return
	}
	if err := c.store.Close(); err != nil {
		c.Logger.Warn("close store", "error", err)
	}
}

// newRunner creates a pipeline runner for CLI use. Cache keys are scoped to
// the build so entries from other releases are never reused.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	ch, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), buildinfo.Version+":")
	return pipeline.NewRunner(ch, keyer, c.Logger), nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	ch, err := c.cfg.OpenCache(ctx)
	if err != nil {
		c.Logger.Warn("cache disabled", "error", err)
		return cache.NewNullCache(), nil
	}
	return ch, nil
}

// =============================================================================
// Diagram Loading
// =============================================================================

// loadDiagram resolves ref as a document file when one exists at that
// path, and as a stored diagram id otherwise.
func (c *CLI) loadDiagram(ctx context.Context, ref string) (*model.Diagram, error) {
	if info, err := os.Stat(ref); err == nil && !info.IsDir() {
		c.Logger.Debug("loading document", "path", ref)
		return sfio.ImportFile(ref, c.now())
	}
	if err := errors.ValidateID(ref); err != nil {
		return nil, errors.New(errors.ErrCodeDiagramNotFound, "no diagram or file named %q", ref)
	}
	st, err := c.openStore(ctx)
	if err != nil {
		return nil, err
	}
	return st.Get(ctx, ref)
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	parts := strings.Split(s, ",")
	formats := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			formats = append(formats, p)
		}
	}
	return formats
}
