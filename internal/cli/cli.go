package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/vfxgraph/pkg/buildinfo"
	"github.com/matzehuels/vfxgraph/pkg/cache"
	"github.com/matzehuels/vfxgraph/pkg/config"
	"github.com/matzehuels/vfxgraph/pkg/errors"
	"github.com/matzehuels/vfxgraph/pkg/serial"
	"github.com/matzehuels/vfxgraph/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "vfxgraph"

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
		Use:          appName,
		Short:        "vfxgraph reads, writes and inspects particle effect graphs",
		Long:         `vfxgraph converts particle effect graphs between their versioned XML document format and an in-memory model, upgrades old documents, renders graphs with Graphviz, and serves an HTTP API over an asset store.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/vfxgraph/config.toml)")

	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.upgradeCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.schemaCommand())
	root.AddCommand(c.storeCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Shared Dependencies
// =============================================================================

// config loads the configuration once per process.
func (c *CLI) config() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	c.cfg = cfg
	return cfg, nil
}

// serializer builds a serializer over the configured catalog.
func (c *CLI) serializer() (*serial.Serializer, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	cat, err := cfg.LoadCatalog()
	if err != nil {
		return nil, err
	}
	return serial.New(cat, serial.WithLogger(c.Logger)), nil
}

// openStore opens the configured asset store.
func (c *CLI) openStore(ctx context.Context) (store.Store, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("opening store", "backend", cfg.Store.Backend)
	return store.Open(ctx, cfg.Store)
}

// newCache returns the render cache, or a null cache when disabled or
// when no cache directory is available.
func (c *CLI) newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	dir := cfg.Cache.Dir
	if dir == "" {
		if dir, err = cacheDir(); err != nil {
			return cache.NewNullCache(), nil
		}
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/vfxgraph/).
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

// =============================================================================
// File I/O
// =============================================================================

// readInput reads a document from path, or from stdin when path is "-".
func readInput(path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeStorage, err, "read stdin")
		}
		return data, nil
	}
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeNotFound, err, "file %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "read %s", path)
	}
	return data, nil
}

// writeOutput writes data to path, or to w when path is empty or "-".
// Files are replaced atomically so a failed write keeps the old content.
func writeOutput(w io.Writer, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := w.Write(data)
		return err
	}
	if err := errors.ValidatePath(path); err != nil {
		return err
	}
	dir := filepath.Dir(path)
	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "write %s", path)
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return errors.Wrap(errors.ErrCodeStorage, err, "write %s", path)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return errors.Wrap(errors.ErrCodeStorage, err, "write %s", path)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return errors.Wrap(errors.ErrCodeStorage, err, "write %s", path)
	}
	return nil
}
