// Package server provides the base HTTP server, middleware chain and response
// helpers for the starjar API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Config holds the server settings.
type Config struct {
	Name    string // service name for logging
	Port    int    // 0 picks a free port
	Verbose bool
}

// Server wraps a chi router with the common middleware and lifecycle.
type Server struct {
	Config *Config
	Router *chi.Mux
	Logger *slog.Logger
	mw     *Middleware
}

// NewLogger returns a JSON logger writing to w, at debug level when verbose.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// New creates a Server. A nil logger logs JSON to stdout.
func New(cfg *Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = NewLogger(os.Stdout, cfg.Verbose)
	}

	r := chi.NewRouter()
	mw := NewMiddleware(cfg, logger)

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(mw.CORS)
	r.Use(mw.RequestLog)

	return &Server{
		Config: cfg,
		Router: r,
		Logger: logger,
		mw:     mw,
	}
}

// Middleware returns the middleware instance for the admin plane and handlers.
func (s *Server) Middleware() *Middleware {
	return s.mw
}

// Serve listens on the configured port and blocks until ctx is cancelled, then
// shuts down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.Config.Port))
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	return s.ServeListener(ctx, ln)
}

// ServeListener serves on ln until ctx is cancelled.
func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.Router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
		// Cancelling ctx also ends long-lived event streams.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		s.Logger.Info("starting server", "name", s.Config.Name, "addr", ln.Addr().String())
		errc <- srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	s.Logger.Info("shutting down server", "name", s.Config.Name)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// ServeHTTP implements http.Handler so a Server can be used directly in tests.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	ErrorReason(w, status, "", message)
}

// ErrorReason writes a JSON error response carrying a machine-readable reason.
func ErrorReason(w http.ResponseWriter, status int, reason, message string) {
	body := map[string]any{
		"message": message,
		"type":    http.StatusText(status),
		"code":    status,
	}
	if reason != "" {
		body["reason"] = reason
	}
	JSON(w, status, map[string]any{"error": body})
}
