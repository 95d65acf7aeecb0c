package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/bodypress/bodypress/internal/backend"
	"github.com/bodypress/bodypress/internal/journal"
)

func (s *Server) handleModelStatus(w http.ResponseWriter, r *http.Request) {
	s.backends.Local().Resolve(r.Context())
	s.writeJSON(w, http.StatusOK, s.backends.Config())
}

// downloadRequest optionally switches the lifecycle to another model before
// the pull starts.
type downloadRequest struct {
	Model string `json:"model,omitempty"`
}

// handleModelDownload starts a pull in the background and answers 202 with
// the current snapshot. Clients poll GET /v1/model for progress; there is
// no cancellation, the pull runs to success or error.
func (s *Server) handleModelDownload(w http.ResponseWriter, r *http.Request) {
	var req downloadRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeBadRequest(w, "invalid JSON")
			return
		}
	}

	local := s.backends.Local()
	if req.Model != "" {
		local.SetModel(req.Model)
		if err := s.store.SetSetting(journal.SettingLocalModel, req.Model); err != nil {
			s.log.Warn().Err(err).Msg("persist model name failed")
		}
	}
	if local.Status() == backend.StatusDownloading {
		s.writeError(w, http.StatusConflict, "download already in progress")
		return
	}

	go func() {
		// Detached from the request: the pull outlives this HTTP exchange.
		if err := local.Download(context.Background(), nil); err != nil {
			s.log.Warn().Err(err).Msg("model download failed")
		}
	}()

	s.writeJSON(w, http.StatusAccepted, s.backends.Config())
}

func (s *Server) handleModelActivate(w http.ResponseWriter, r *http.Request) {
	s.backends.Local().Activate(r.Context())
	s.writeJSON(w, http.StatusOK, s.backends.Config())
}

func (s *Server) handleModelDeactivate(w http.ResponseWriter, r *http.Request) {
	s.backends.Local().Deactivate(r.Context())
	s.writeJSON(w, http.StatusOK, s.backends.Config())
}

func (s *Server) handleModelDelete(w http.ResponseWriter, r *http.Request) {
	s.backends.Local().Delete(r.Context())
	if err := s.store.SetSetting(journal.SettingLocalModel, ""); err != nil {
		s.log.Warn().Err(err).Msg("clear model name failed")
	}
	s.writeJSON(w, http.StatusOK, s.backends.Config())
}

func (s *Server) handleGetMode(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"mode": string(s.backends.Mode())})
}

type modeRequest struct {
	Mode string `json:"mode"`
}

// handleSetMode switches the routing mode and persists it. Switching is
// unguarded: it never touches lifecycle state, and a local mode with a
// not-ready model simply fails asks until the model is readied.
func (s *Server) handleSetMode(w http.ResponseWriter, r *http.Request) {
	var req modeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeBadRequest(w, "invalid JSON")
		return
	}

	mode := backend.Mode(req.Mode)
	if mode != backend.ModeRemote && mode != backend.ModeLocal {
		s.writeBadRequest(w, `mode must be "remote" or "local"`)
		return
	}

	s.backends.SetMode(mode)
	if err := s.store.SetSetting(journal.SettingMode, string(mode)); err != nil {
		s.log.Warn().Err(err).Msg("persist mode failed")
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"mode": string(mode)})
}
