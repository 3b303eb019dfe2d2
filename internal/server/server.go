// Package server exposes visualizer sessions over HTTP.
//
// The server plays the coordinator role: it opens (or focuses) the single
// visualizer tab, relays payloads to it, and forwards interaction commands
// to the session's [visualizer.Controller]. Replies are JSON envelopes of
// the form {"success": true, "data": ...} or {"success": false, "error": "..."}.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/domgraph/pkg/session"
)

// DefaultAddr is the listen address used when none is configured.
const DefaultAddr = "127.0.0.1:7070"

// MaxPayloadBytes bounds request bodies.
const MaxPayloadBytes = 32 << 20

// Config holds server settings.
type Config struct {
	Addr            string
	CleanupInterval time.Duration
	Logger          *log.Logger
}

func (c *Config) setDefaults() {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.CleanupInterval == 0 {
		c.CleanupInterval = time.Minute
	}
	if c.Logger == nil {
		c.Logger = log.Default()
	}
}

// Server is the visualizer HTTP API.
type Server struct {
	cfg    Config
	store  session.Store
	router chi.Router
	http   *http.Server
	logger *log.Logger
}

// New returns a server backed by store.
func New(cfg Config, store session.Store) *Server {
	cfg.setDefaults()
	s := &Server{
		cfg:    cfg,
		store:  store,
		logger: cfg.Logger,
	}
	s.router = s.routes()
	s.http = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/api/health", s.handleHealth)
	r.Post("/api/visualize", s.handleVisualizeActive)

	r.Route("/api/visualizer", func(r chi.Router) {
		r.Post("/", s.handleOpen)
		r.Route("/{id}", func(r chi.Router) {
			r.Use(s.withSession)
			r.Delete("/", s.handleClose)
			r.Get("/", s.handleSummary)
			r.Post("/visualize", s.handleVisualize)
			r.Put("/layout", s.handleLayout)
			r.Put("/search", s.handleSearch)
			r.Put("/forces", s.handleForces)
			r.Post("/select", s.handleSelect)
			r.Delete("/select", s.handleClearSelection)
			r.Put("/viewport", s.handleViewport)
			r.Post("/zoom", s.handleZoom)
			r.Post("/fit", s.handleFit)
			r.Post("/drag", s.handleDrag)
			r.Get("/frame", s.handleFrame)
			r.Get("/export/{format}", s.handleExport)
		})
	})
	return r
}

// observe reports every request to the server hooks after it completes.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		hooks().OnRequest(r.Context(), r.Method, route, status, time.Since(start))
	})
}

// ListenAndServe serves until ctx is canceled, then shuts down gracefully
// and closes every session.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr)
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	ticker := time.NewTicker(s.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case err, ok := <-errCh:
			if ok {
				return fmt.Errorf("serve: %w", err)
			}
			return nil
		case <-ticker.C:
			if n, _ := s.store.Cleanup(ctx); n > 0 {
				s.logger.Debug("expired sessions", "count", n)
			}
		case <-ctx.Done():
			return s.Shutdown()
		}
	}
}

// Shutdown stops the listener and closes every session.
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := s.http.Shutdown(ctx)
	if cerr := s.store.Close(); err == nil {
		err = cerr
	}
	s.logger.Info("server stopped")
	return err
}
