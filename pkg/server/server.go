package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/orbitboard/pkg/board"
	orberrors "github.com/matzehuels/orbitboard/pkg/errors"
	"github.com/matzehuels/orbitboard/pkg/preview"
	"github.com/matzehuels/orbitboard/pkg/storage"
)

// Defaults.
const (
	DefaultRequestTimeout = 30 * time.Second
	DefaultMaxBodyBytes   = 4 << 20
	shutdownTimeout       = 5 * time.Second
)

// Response messages.
const (
	msgSaved       = "State saved. Visible to everyone."
	msgSaveFailed  = "Could not save state"
	msgURLRequired = "url is required"
)

// Server holds the global board and serves it over HTTP.
type Server struct {
	mu     sync.RWMutex
	state  board.Snapshot
	loaded bool

	store    storage.Store
	previews *preview.Fetcher
	logger   *log.Logger

	requestTimeout time.Duration
	readTimeout    time.Duration
	maxBodyBytes   int64
	onSave         func(board.Snapshot)
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option { return func(s *Server) { s.logger = l } }

// WithPreviews sets the bookmark preview fetcher.
func WithPreviews(f *preview.Fetcher) Option { return func(s *Server) { s.previews = f } }

// WithRequestTimeout bounds each request.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Server) { s.requestTimeout = d }
}

// WithReadTimeout bounds reading request headers.
func WithReadTimeout(d time.Duration) Option { return func(s *Server) { s.readTimeout = d } }

// WithMaxBodyBytes caps request bodies.
func WithMaxBodyBytes(n int64) Option { return func(s *Server) { s.maxBodyBytes = n } }

// WithOnSave registers fn to run after every accepted POST with the new
// state.
func WithOnSave(fn func(board.Snapshot)) Option { return func(s *Server) { s.onSave = fn } }

// New creates a server backed by store.
func New(store storage.Store, opts ...Option) *Server {
	s := &Server{
		state:          board.DefaultSnapshot(),
		store:          store,
		requestTimeout: DefaultRequestTimeout,
		readTimeout:    10 * time.Second,
		maxBodyBytes:   DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if s.previews == nil {
		s.previews = preview.NewFetcher(preview.WithLogger(s.logger))
	}
	return s
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.requestTimeout))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, "ok\n")
	})
	r.Route("/api", func(r chi.Router) {
		r.Get("/tools/state", s.getState)
		r.Post("/tools/state", s.postState)
		r.Post("/bookmark-preview", s.postPreview)
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: s.readTimeout,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// =============================================================================
// State
// =============================================================================

// State returns the current board, loading it first if needed.
func (s *Server) State(ctx context.Context) board.Snapshot {
	s.ensureLoaded(ctx)
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := s.state
	snap.Cards = slices.Clone(snap.Cards)
	return snap
}

// ensureLoaded reads the stored board once. A missing board counts as
// loaded; other failures are retried on the next request while the
// in-memory state keeps serving.
func (s *Server) ensureLoaded(ctx context.Context) {
	s.mu.RLock()
	loaded := s.loaded
	s.mu.RUnlock()
	if loaded {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return
	}
	snap, err := s.store.Load(ctx)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		s.loaded = true
	case err != nil:
		s.logger.Warn("load board failed, serving in-memory state", "error", err)
	default:
		s.state = snap
		s.loaded = true
		s.logger.Debug("board loaded", "cards", len(snap.Cards))
	}
}

func (s *Server) getState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.State(r.Context()))
}

type saveResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

func (s *Server) postState(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s.ensureLoaded(ctx)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, saveResponse{Message: msgSaveFailed})
		return
	}

	s.mu.Lock()
	next, applied, err := s.state.Patch(body)
	if err != nil {
		s.mu.Unlock()
		s.logger.Debug("rejected state", "error", err)
		writeJSON(w, http.StatusBadRequest, saveResponse{Message: msgSaveFailed})
		return
	}
	s.state = next
	s.mu.Unlock()

	// A failed write is logged; the in-memory board stays authoritative.
	if err := s.store.Save(ctx, next); err != nil {
		s.logger.Error("persist board failed", "error", err)
	}
	if s.onSave != nil {
		s.onSave(next)
	}
	s.logger.Debug("state saved", "fields", applied, "cards", len(next.Cards))
	writeJSON(w, http.StatusOK, saveResponse{OK: true, Message: msgSaved})
}

// =============================================================================
// Bookmark preview
// =============================================================================

type previewRequest struct {
	URL string `json:"url"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) postPreview(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(w, orberrors.Wrap(orberrors.ErrCodeInvalidInput, err, "invalid request body"))
		return
	}

	p, err := s.previews.Fetch(r.Context(), req.URL)
	if err != nil {
		s.logger.Debug("preview failed", "url", req.URL, "error", err)
		writeError(w, previewError(err))
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func previewError(err error) error {
	switch {
	case errors.Is(err, preview.ErrEmptyURL):
		return orberrors.New(orberrors.ErrCodeInvalidInput, msgURLRequired)
	case errors.Is(err, preview.ErrInvalidURL), errors.Is(err, preview.ErrNotHTML):
		return orberrors.Wrap(orberrors.ErrCodeInvalidInput, err, "%s", err.Error())
	case errors.Is(err, preview.ErrUpstream):
		return orberrors.Wrap(orberrors.ErrCodeNetwork, err, "%s", err.Error())
	default:
		return orberrors.Wrap(orberrors.ErrCodeInternal, err, "could not fetch preview")
	}
}

// =============================================================================
// Helpers
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, orberrors.HTTPStatus(err), errorResponse{Error: orberrors.UserMessage(err)})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).Round(time.Microsecond),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
