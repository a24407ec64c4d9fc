// Package web serves the browser chat widget. The API key stays on the
// server; browsers only see rendered transcripts.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/diogo/ideagen/internal/chat"
)

//go:embed templates/*.html
var templateFS embed.FS

// busyRefreshSeconds is how often the page reloads while a reply is pending
const busyRefreshSeconds = 2

// sweepInterval is how often idle sessions are dropped while serving
const sweepInterval = time.Minute

// Server is the web widget
type Server struct {
	store  *Store
	logger zerolog.Logger
	tmpl   *template.Template

	// ctx outlives requests so replies finish after the redirect
	ctx context.Context

	storeOpts []StoreOption
}

// ServerOption configures a Server
type ServerOption func(*Server)

// WithLogger sets the request and lifecycle logger
func WithLogger(logger zerolog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithBaseContext sets the context model calls run under
func WithBaseContext(ctx context.Context) ServerOption {
	return func(s *Server) {
		s.ctx = ctx
	}
}

// WithSessionLimits bounds the in-memory session store
func WithSessionLimits(maxSessions int, idleTTL time.Duration) ServerOption {
	return func(s *Server) {
		s.storeOpts = append(s.storeOpts, WithMaxSessions(maxSessions), WithIdleTTL(idleTTL))
	}
}

// NewServer creates the widget server. newSession builds the session for
// each new browser.
func NewServer(newSession func() *chat.Session, opts ...ServerOption) (*Server, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	s := &Server{
		logger: zerolog.Nop(),
		tmpl:   tmpl,
		ctx:    context.Background(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.store = NewStore(newSession, s.storeOpts...)
	return s, nil
}

// Store exposes the session store
func (s *Server) Store() *Store {
	return s.store
}

// Router builds the HTTP handler
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))

	// only the page and the profile form start a conversation
	r.Group(func(r chi.Router) {
		r.Use(s.store.Middleware)
		r.Get("/", s.handleIndex)
		r.Post("/profile", s.handleProfile)
	})
	r.Group(func(r chi.Router) {
		r.Use(s.store.Lookup)
		r.Post("/messages", s.handleMessage)
		r.Get("/api/transcript", s.handleTranscript)
	})

	return r
}

// requestLogger logs one line per request with zerolog
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			s.logger.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Str("request_id", chiMiddleware.GetReqID(r.Context())).
				Dur("elapsed", time.Since(start)).
				Msg("request")
		}()
		next.ServeHTTP(ww, r)
	})
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go s.store.RunSweeper(sweepCtx, sweepInterval)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info().Msg("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}
