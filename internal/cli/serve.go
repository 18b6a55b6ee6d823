package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/orbitboard/pkg/board"
	"github.com/matzehuels/orbitboard/pkg/httputil"
	"github.com/matzehuels/orbitboard/pkg/observability"
	"github.com/matzehuels/orbitboard/pkg/preview"
	"github.com/matzehuels/orbitboard/pkg/server"
	"github.com/matzehuels/orbitboard/pkg/storage"
)

// serveCommand creates the serve command for the shared board server.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the shared board over HTTP",
		Long: `Serve the shared board over HTTP.

Every client sees the same board. It is loaded from the configured storage
backend on first request and written back whenever a client saves.

Endpoints:
  GET  /api/tools/state         current board
  POST /api/tools/state         save board fields
  POST /api/bookmark-preview    fetch Open Graph preview for a URL
  GET  /healthz                 liveness probe`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = c.cfg.Server.Addr
			}
			return c.runServe(cmd.Context(), addr, noCache)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the bookmark preview cache")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string, noCache bool) error {
	logger := loggerFromContext(ctx)
	observability.SetStorageHooks(storageLogHooks{logger: logger})
	observability.SetLayoutHooks(layoutLogHooks{logger: logger})
	defer observability.Reset()

	st, err := c.openStorage(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	pc, err := c.newPreviewCache(ctx, noCache)
	if err != nil {
		printWarning("Preview cache unavailable, continuing without: %v", err)
		pc = nil
	}
	popts := []preview.Option{
		preview.WithLogger(logger),
		preview.WithClient(httputil.NewClient("preview", httputil.WithTimeout(c.cfg.Preview.Timeout))),
		preview.WithTTL(c.cfg.Preview.TTL),
		preview.WithRetry(c.cfg.Preview.Attempts, time.Second),
	}
	if pc != nil {
		defer pc.Close()
		popts = append(popts, preview.WithCache(pc))
	}

	srv := server.New(st,
		server.WithLogger(logger),
		server.WithPreviews(preview.NewFetcher(popts...)),
		server.WithRequestTimeout(c.cfg.Server.RequestTimeout),
		server.WithReadTimeout(c.cfg.Server.ReadTimeout),
		server.WithMaxBodyBytes(c.cfg.Server.MaxBodyBytes),
		server.WithOnSave(func(s board.Snapshot) {
			logger.Info("board saved", "cards", len(s.Cards), "cloud", s.CloudEnabled)
		}),
	)

	printSuccess("Serving board on %s", StyleHighlight.Render(addr))
	printDetail("Storage: %s", describeStorage(c.cfg.Storage))
	printNextStep("Fetch state", fmt.Sprintf("curl http://%s/api/tools/state", localAddr(addr)))

	if err := srv.ListenAndServe(ctx, addr); err != nil {
		return fmt.Errorf("serve %s: %w", addr, err)
	}
	printInfo("Server stopped")
	return nil
}

func describeStorage(cfg storage.Config) string {
	switch backendName(cfg.Backend) {
	case storage.BackendFile:
		if fs, err := storage.NewFileStore(cfg.Path); err == nil {
			return "file " + fs.Path()
		}
		return "file"
	case storage.BackendRedis:
		return "redis " + cfg.RedisAddr
	case storage.BackendMongo:
		return "mongo " + cfg.MongoDatabase
	default:
		return backendName(cfg.Backend)
	}
}

func localAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}

// =============================================================================
// Logging hooks
// =============================================================================

type storageLogHooks struct{ logger *log.Logger }

func (h storageLogHooks) OnLoad(_ context.Context, backend string, size int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("storage load", "backend", backend, "error", err)
		return
	}
	h.logger.Debug("storage load", "backend", backend, "bytes", size, "duration", d)
}

func (h storageLogHooks) OnSave(_ context.Context, backend string, size int, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("storage save", "backend", backend, "error", err)
		return
	}
	h.logger.Debug("storage save", "backend", backend, "bytes", size, "duration", d)
}

type layoutLogHooks struct{ logger *log.Logger }

func (h layoutLogHooks) OnResolve(cardID string, iterations int, converged bool, moved float64) {
	h.logger.Debug("resolve", "card", cardID, "iterations", iterations, "converged", converged, "moved", moved)
}

func (h layoutLogHooks) OnSlide(cardID string, speed float64) {
	h.logger.Debug("slide", "card", cardID, "speed", speed)
}

func (h layoutLogHooks) OnCommit(cardID string, x, y float64) {
	h.logger.Debug("commit", "card", cardID, "x", x, "y", y)
}
