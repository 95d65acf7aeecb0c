// Package api exposes the journal over HTTP for the desktop UI and
// companion sensor bridges. The surface mirrors the library layer: capture
// ingestion, entry reads and generation, the context-window export, and
// backend mode/lifecycle management.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/kelseyhightower/envconfig"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/bodypress/bodypress/internal/backend"
	"github.com/bodypress/bodypress/internal/generate"
	"github.com/bodypress/bodypress/internal/journal"
	"github.com/bodypress/bodypress/internal/window"
)

// ServerConfig carries the server-only knobs, read from the environment.
type ServerConfig struct {
	Addr            string        `envconfig:"HTTP_ADDR" default:"127.0.0.1:7690"`
	ReadTimeout     time.Duration `envconfig:"HTTP_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"HTTP_WRITE_TIMEOUT" default:"90s"`
	IdleTimeout     time.Duration `envconfig:"HTTP_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	HealthInterval  time.Duration `envconfig:"HEALTH_INTERVAL" default:"30s"`
}

// LoadServerConfig reads ServerConfig from BODYPRESS_* environment
// variables, falling back to the defaults.
func LoadServerConfig() (ServerConfig, error) {
	var cfg ServerConfig
	if err := envconfig.Process("bodypress", &cfg); err != nil {
		return cfg, fmt.Errorf("api: load server config: %w", err)
	}
	return cfg, nil
}

// Server wires the journal store, the backend router and the generator
// behind a gorilla/mux route table.
type Server struct {
	cfg      ServerConfig
	store    *journal.Store
	backends *backend.Router
	windows  *window.Builder
	gen      *generate.Generator
	log      zerolog.Logger

	health healthState
}

// NewServer creates a Server. All collaborators are owned by the caller.
func NewServer(cfg ServerConfig, store *journal.Store, backends *backend.Router, windows *window.Builder, gen *generate.Generator, log zerolog.Logger) *Server {
	s := &Server{
		cfg:      cfg,
		store:    store,
		backends: backends,
		windows:  windows,
		gen:      gen,
		log:      log,
	}
	s.health.init()
	return s
}

// Router builds the route table. Exposed separately from Run so tests can
// drive the handlers through httptest.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()
	r.Use(s.recoverMiddleware, s.requestIDMiddleware, s.accessLogMiddleware)

	r.HandleFunc("/health", s.handleHealth).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	r.HandleFunc("/v1/captures", s.handleCreateCapture).Methods("POST")
	r.HandleFunc("/v1/captures", s.handleListCaptures).Methods("GET")
	r.HandleFunc("/v1/captures/{id}", s.handleGetCapture).Methods("GET")

	r.HandleFunc("/v1/entries/recent", s.handleRecentEntries).Methods("GET")
	r.HandleFunc("/v1/entries/{date}", s.handleGetEntry).Methods("GET")
	r.HandleFunc("/v1/entries/{date}", s.handleDeleteEntry).Methods("DELETE")
	r.HandleFunc("/v1/entries/{date}/generate", s.handleGenerateEntry).Methods("POST")
	r.HandleFunc("/v1/entries/{date}/annotations", s.handleAnnotateEntry).Methods("PUT")

	r.HandleFunc("/v1/context", s.handleContext).Methods("GET")
	r.HandleFunc("/v1/stats", s.handleStats).Methods("GET")

	r.HandleFunc("/v1/model", s.handleModelStatus).Methods("GET")
	r.HandleFunc("/v1/model/download", s.handleModelDownload).Methods("POST")
	r.HandleFunc("/v1/model/activate", s.handleModelActivate).Methods("POST")
	r.HandleFunc("/v1/model/deactivate", s.handleModelDeactivate).Methods("POST")
	r.HandleFunc("/v1/model/delete", s.handleModelDelete).Methods("POST")

	r.HandleFunc("/v1/mode", s.handleGetMode).Methods("GET")
	r.HandleFunc("/v1/mode", s.handleSetMode).Methods("PUT")

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.Router(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}

	s.StartHealthMonitor(ctx, s.cfg.HealthInterval)

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.cfg.Addr).Msg("http server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("api: serve: %w", err)
	case <-ctx.Done():
	}

	s.log.Info().Msg("http server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("api: shutdown: %w", err)
	}
	return nil
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.Stats()
	if err != nil {
		s.log.Error().Err(err).Msg("stats query failed")
		s.writeInternalError(w, "failed to read stats")
		return
	}
	s.writeJSON(w, http.StatusOK, statsResponse{
		Captures:    stats.Captures,
		Unprocessed: stats.Unprocessed,
		Entries:     stats.Entries,
		FirstEntry:  stats.FirstEntry,
		LastEntry:   stats.LastEntry,
		DBSizeBytes: stats.DBSizeBytes,
	})
}

type statsResponse struct {
	Captures    int    `json:"captures"`
	Unprocessed int    `json:"unprocessed"`
	Entries     int    `json:"entries"`
	FirstEntry  string `json:"first_entry,omitempty"`
	LastEntry   string `json:"last_entry,omitempty"`
	DBSizeBytes int64  `json:"db_size_bytes"`
}
