// Package server exposes the N3Logic parser over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/aleksaelezovic/n3logic/pkg/n3"
	"github.com/aleksaelezovic/n3logic/pkg/store"
)

// DefaultMaxBodyBytes bounds the size of a document posted to /parse
const DefaultMaxBodyBytes = 4 << 20

// Config configures the HTTP server
type Config struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// MaxBodyBytes limits request bodies (DefaultMaxBodyBytes if zero)
	MaxBodyBytes int64

	// Options are passed to every parse call
	Options n3.Options

	// Cache is optional
	Cache *store.ParseCache

	Logger *slog.Logger
}

// Server represents the HTTP parse endpoint
type Server struct {
	config  Config
	logger  *slog.Logger
	catalog []n3.Builtin
}

// NewServer creates a new parse server
func NewServer(config Config) *Server {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.MaxBodyBytes <= 0 {
		config.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if config.ReadTimeout <= 0 {
		config.ReadTimeout = 15 * time.Second
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = 15 * time.Second
	}

	return &Server{
		config:  config,
		logger:  config.Logger,
		catalog: n3.DefaultCatalog(),
	}
}

// Handler returns the routing handler
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/parse", s.handleParse)
	mux.HandleFunc("/builtins", s.handleBuiltins)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:         s.config.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("Starting parse endpoint", slog.String("addr", s.config.Addr))
		errc <- server.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("Parse endpoint stopped")
	return nil
}
