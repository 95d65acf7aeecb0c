package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/bodypress/bodypress/internal/journal"
	"github.com/bodypress/bodypress/internal/platform/metrics"
)

// captureRequest is the POST /v1/captures body: the sensor payload a
// companion bridge or the UI has already collected.
type captureRequest struct {
	Timestamp      *time.Time           `json:"timestamp,omitempty"`
	Note           string               `json:"note,omitempty"`
	Mood           string               `json:"mood,omitempty"`
	Tags           []string             `json:"tags,omitempty"`
	Health         *journal.Health      `json:"health,omitempty"`
	Environment    *journal.Environment `json:"environment,omitempty"`
	Location       *journal.Location    `json:"location,omitempty"`
	CalendarTitles []string             `json:"calendar_titles,omitempty"`
	Source         string               `json:"source,omitempty"`
	Trigger        string               `json:"trigger,omitempty"`
	DurationMs     int                  `json:"duration_ms,omitempty"`
	Errors         []string             `json:"errors,omitempty"`
	Battery        *int                 `json:"battery,omitempty"`
}

func (s *Server) handleCreateCapture(w http.ResponseWriter, r *http.Request) {
	var req captureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeBadRequest(w, "invalid JSON")
		return
	}

	source := journal.CaptureSource(req.Source)
	if source == "" {
		source = journal.SourceManual
	}
	if !journal.ValidCaptureSource(source) {
		s.writeBadRequest(w, "invalid source "+req.Source)
		return
	}
	trigger := journal.CaptureTrigger(req.Trigger)
	if trigger == "" {
		trigger = journal.TriggerNone
	}
	if !journal.ValidCaptureTrigger(trigger) {
		s.writeBadRequest(w, "invalid trigger "+req.Trigger)
		return
	}

	c := journal.Capture{
		Note:           req.Note,
		Mood:           req.Mood,
		Tags:           req.Tags,
		Health:         req.Health,
		Environment:    req.Environment,
		Location:       req.Location,
		CalendarTitles: req.CalendarTitles,
		Source:         source,
		Trigger:        trigger,
		DurationMs:     req.DurationMs,
		Errors:         req.Errors,
		Battery:        req.Battery,
	}
	if req.Timestamp != nil {
		c.Timestamp = *req.Timestamp
	}

	id, err := s.store.InsertCapture(c)
	if err != nil {
		s.log.Error().Err(err).Msg("capture insert failed")
		s.writeInternalError(w, "failed to store capture")
		return
	}
	metrics.CapturesTotal.WithLabelValues(string(source)).Inc()

	stored, err := s.store.GetCapture(id)
	if err != nil {
		s.writeJSON(w, http.StatusCreated, map[string]string{"id": id})
		return
	}
	s.writeJSON(w, http.StatusCreated, stored)
}

// handleListCaptures serves GET /v1/captures. With ?day=YYYY-MM-DD it lists
// that calendar day oldest first; otherwise the most recent ?limit captures
// (default 20), newest first.
func (s *Server) handleListCaptures(w http.ResponseWriter, r *http.Request) {
	if day := r.URL.Query().Get("day"); day != "" {
		if _, err := time.Parse(journal.DateLayout, day); err != nil {
			s.writeBadRequest(w, "invalid day, want YYYY-MM-DD")
			return
		}
		captures, err := s.store.ListCapturesByDay(day)
		if err != nil {
			s.log.Error().Err(err).Str("day", day).Msg("capture list failed")
			s.writeInternalError(w, "failed to list captures")
			return
		}
		s.writeCaptureList(w, captures)
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.writeBadRequest(w, "invalid limit")
			return
		}
		limit = n
	}
	captures, err := s.store.ListRecentCaptures(limit)
	if err != nil {
		s.log.Error().Err(err).Msg("capture list failed")
		s.writeInternalError(w, "failed to list captures")
		return
	}
	s.writeCaptureList(w, captures)
}

func (s *Server) writeCaptureList(w http.ResponseWriter, captures []journal.Capture) {
	if captures == nil {
		captures = []journal.Capture{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"captures": captures,
		"count":    len(captures),
	})
}

func (s *Server) handleGetCapture(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	c, err := s.store.GetCapture(id)
	if err != nil {
		if errors.Is(err, journal.ErrNotFound) {
			s.writeNotFound(w, "capture "+id+" not found")
			return
		}
		s.log.Error().Err(err).Str("id", id).Msg("capture read failed")
		s.writeInternalError(w, "failed to read capture")
		return
	}
	s.writeJSON(w, http.StatusOK, c)
}
