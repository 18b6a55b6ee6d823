// Package cli implements the orbitboard command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/orbitboard/pkg/board"
	"github.com/matzehuels/orbitboard/pkg/buildinfo"
	"github.com/matzehuels/orbitboard/pkg/cache"
	"github.com/matzehuels/orbitboard/pkg/config"
	"github.com/matzehuels/orbitboard/pkg/engine"
	"github.com/matzehuels/orbitboard/pkg/storage"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "orbitboard"

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
	cfg        config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		cfg:    config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// Config returns the loaded configuration.
func (c *CLI) Config() config.Config { return c.cfg }

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Orbitboard keeps a board of cards orbiting a central hub",
		Long:         `Orbitboard is a spatial card board: cards orbit a fixed hub, never overlap, and slide with momentum when thrown. Run it as a shared HTTP server, explore it in the terminal, or script it from the command line.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			c.cfg = cfg
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/orbitboard/config.toml)")

	root.AddCommand(c.serveCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.resolveCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.importCommand())
	root.AddCommand(c.cardsCommand())
	root.AddCommand(c.previewCommand())
	root.AddCommand(c.boardCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Board access
// =============================================================================

// openStorage opens the configured snapshot backend.
func (c *CLI) openStorage(ctx context.Context) (storage.Store, error) {
	st, err := storage.Open(ctx, c.cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", backendName(c.cfg.Storage.Backend), err)
	}
	return st, nil
}

// session is a board loaded from storage for one command.
type session struct {
	board   *board.Store
	store   storage.Store
	engine  *engine.Engine
	created bool
}

// openSession loads the saved board, or an empty one when nothing is saved.
func (c *CLI) openSession(ctx context.Context) (*session, error) {
	st, err := c.openStorage(ctx)
	if err != nil {
		return nil, err
	}
	snap, err := st.Load(ctx)
	created := false
	switch {
	case err == nil:
	case errors.Is(err, storage.ErrNotFound):
		created = true
	default:
		st.Close()
		return nil, fmt.Errorf("load board: %w", err)
	}

	b := board.New(board.WithParams(c.cfg.Params()))
	opts := c.cfg.Engine()
	opts.Logger = c.Logger
	e := engine.New(b, b, opts)

	// A new board stays uninitialized until its first layout.
	if !created {
		if err := e.Hydrate(snap); err != nil {
			st.Close()
			return nil, fmt.Errorf("hydrate board: %w", err)
		}
	}
	return &session{
		board:   b,
		store:   st,
		engine:  e,
		created: created,
	}, nil
}

func (s *session) save(ctx context.Context) error {
	if err := s.store.Save(ctx, s.board.Snapshot()); err != nil {
		return fmt.Errorf("save board: %w", err)
	}
	return nil
}

func (s *session) Close() error { return s.store.Close() }

// newPreviewCache opens the configured preview cache.
func (c *CLI) newPreviewCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	pc := c.cfg.Preview
	if noCache || pc.Cache == config.CacheNone {
		return cache.NewNullCache(), nil
	}
	if pc.Cache == config.CacheRedis {
		sc := c.cfg.Storage
		rc, err := cache.NewRedisCache(ctx, sc.RedisAddr, sc.RedisPassword, sc.RedisDB)
		if err != nil {
			return nil, err
		}
		return cache.Observed(rc, "preview"), nil
	}
	dir := pc.CacheDir
	if dir == "" {
		d, err := cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		dir = d
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, err
	}
	return cache.Observed(fc, "preview"), nil
}

func backendName(b string) string {
	if b == "" {
		return storage.BackendFile
	}
	return b
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/orbitboard/).
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
