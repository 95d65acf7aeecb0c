package backend

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/bodypress/bodypress/internal/platform/metrics"
)

// Router is the single request surface for generation calls. It dispatches
// to the remote backend or the local lifecycle according to the current
// mode and never falls back: once local mode is selected, no journal data
// leaves the device, even when the local model fails.
type Router struct {
	remote Asker
	local  *LocalModel
	logger zerolog.Logger

	mu   sync.Mutex
	mode Mode
}

// NewRouter creates a Router owned by the caller. Mode switching is
// unguarded and does not touch lifecycle state.
func NewRouter(remote Asker, local *LocalModel, mode Mode, logger zerolog.Logger) *Router {
	return &Router{
		remote: remote,
		local:  local,
		logger: logger,
		mode:   mode,
	}
}

// Mode returns the current routing mode.
func (r *Router) Mode() Mode {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mode
}

// SetMode switches the routing mode.
func (r *Router) SetMode(m Mode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mode = m
}

// Local exposes the lifecycle for model management surfaces.
func (r *Router) Local() *LocalModel {
	return r.local
}

// Ask dispatches one generation call to the active backend. In local mode a
// not-ready lifecycle fails immediately with a *ServiceError; the remote
// backend is never consulted.
func (r *Router) Ask(ctx context.Context, req AskRequest) (string, error) {
	mode := r.Mode()

	var target Asker = r.remote
	if mode == ModeLocal {
		target = r.local
	}

	text, err := target.Ask(ctx, req)
	if err != nil {
		metrics.BackendAsksTotal.WithLabelValues(string(mode), "error").Inc()
		r.logger.Debug().Str("mode", string(mode)).Err(err).Msg("backend ask failed")
		return "", err
	}
	metrics.BackendAsksTotal.WithLabelValues(string(mode), "ok").Inc()
	return text, nil
}

// CheckHealth probes the active backend: remote reachability in remote
// mode, lifecycle readiness in local mode.
func (r *Router) CheckHealth(ctx context.Context) bool {
	switch r.Mode() {
	case ModeLocal:
		return r.local.CheckHealth(ctx)
	default:
		return r.remote.CheckHealth(ctx)
	}
}

// Config snapshots the router and lifecycle state for display layers.
func (r *Router) Config() Config {
	return r.local.Config(r.Mode())
}
