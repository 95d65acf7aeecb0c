package api

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// healthState caches the active backend's reachability so /health answers
// without blocking on a network probe.
type healthState struct {
	mu        sync.Mutex
	backendOK bool
	lastCheck time.Time
}

func (h *healthState) init() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.backendOK = false
	h.lastCheck = time.Time{}
}

func (h *healthState) set(ok bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.backendOK = ok
	h.lastCheck = time.Now()
}

func (h *healthState) get() (bool, time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.backendOK, h.lastCheck
}

// StartHealthMonitor probes the active backend every interval until ctx is
// cancelled. The first probe runs immediately so /health is meaningful as
// soon as the server is up.
func (s *Server) StartHealthMonitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	probe := func() {
		probeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		s.health.set(s.backends.CheckHealth(probeCtx))
	}

	go func() {
		probe()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				probe()
			}
		}
	}()
}

type healthResponse struct {
	Status  string        `json:"status"`
	Backend backendHealth `json:"backend"`
}

type backendHealth struct {
	Mode      string `json:"mode"`
	Healthy   bool   `json:"healthy"`
	LastCheck string `json:"last_check,omitempty"`
}

// handleHealth reports the server's own liveness plus the cached health of
// the active backend. The endpoint itself always answers 200; an unhealthy
// backend is data, not an error.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ok, checked := s.health.get()

	resp := healthResponse{
		Status: "ok",
		Backend: backendHealth{
			Mode:    string(s.backends.Mode()),
			Healthy: ok,
		},
	}
	if !checked.IsZero() {
		resp.Backend.LastCheck = checked.Format(time.RFC3339)
	}
	s.writeJSON(w, http.StatusOK, resp)
}
