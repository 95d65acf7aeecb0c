package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/bodypress/bodypress/internal/generate"
	"github.com/bodypress/bodypress/internal/journal"
	"github.com/bodypress/bodypress/internal/window"
)

func (s *Server) handleRecentEntries(w http.ResponseWriter, r *http.Request) {
	days := window.DefaultDays
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.writeBadRequest(w, "invalid days")
			return
		}
		days = n
	}

	entries, err := s.store.ListRecentEntries(days)
	if err != nil {
		s.log.Error().Err(err).Msg("entry list failed")
		s.writeInternalError(w, "failed to list entries")
		return
	}
	if entries == nil {
		entries = []journal.Entry{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"entries": entries,
		"count":   len(entries),
	})
}

func (s *Server) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	date, ok := s.entryDate(w, r)
	if !ok {
		return
	}
	e, err := s.store.GetEntry(date)
	if err != nil {
		if errors.Is(err, journal.ErrNotFound) {
			s.writeNotFound(w, "no entry for "+date)
			return
		}
		s.log.Error().Err(err).Str("date", date).Msg("entry read failed")
		s.writeInternalError(w, "failed to read entry")
		return
	}
	s.writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	date, ok := s.entryDate(w, r)
	if !ok {
		return
	}
	if err := s.store.DeleteEntry(date); err != nil {
		if errors.Is(err, journal.ErrNotFound) {
			s.writeNotFound(w, "no entry for "+date)
			return
		}
		s.log.Error().Err(err).Str("date", date).Msg("entry delete failed")
		s.writeInternalError(w, "failed to delete entry")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// generateRequest is the POST /v1/entries/{date}/generate body. All fields
// are optional; annotations ride along into the generated entry.
type generateRequest struct {
	UserNote string `json:"user_note,omitempty"`
	UserMood string `json:"user_mood,omitempty"`
}

// generateResponse reports the outcome without ever being an error: the
// generation boundary returns an entry or a reason, nothing else.
type generateResponse struct {
	Generated bool           `json:"generated"`
	Reason    string         `json:"reason,omitempty"`
	Entry     *journal.Entry `json:"entry,omitempty"`
}

// handleGenerateEntry writes (or rewrites) the entry for a date from that
// day's captures. When the day has no captures but an entry already exists,
// its stored daily snapshot serves as the fallback aggregate, so a
// regeneration still has data to write from.
func (s *Server) handleGenerateEntry(w http.ResponseWriter, r *http.Request) {
	date, ok := s.entryDate(w, r)
	if !ok {
		return
	}

	var req generateRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeBadRequest(w, "invalid JSON")
			return
		}
	}

	captures, err := s.store.ListCapturesByDay(date)
	if err != nil {
		s.log.Error().Err(err).Str("date", date).Msg("capture list failed")
		s.writeInternalError(w, "failed to load captures")
		return
	}

	var fallback *journal.DailySnapshot
	if existing, err := s.store.GetEntry(date); err == nil {
		snap := existing.Snapshot
		fallback = &snap
		if req.UserNote == "" {
			req.UserNote = existing.UserNote
		}
		if req.UserMood == "" {
			req.UserMood = existing.UserMood
		}
	}

	result := s.gen.Generate(r.Context(), generate.Request{
		Date:     date,
		Captures: captures,
		Fallback: fallback,
		UserNote: req.UserNote,
		UserMood: req.UserMood,
	})
	if !result.OK() {
		s.writeJSON(w, http.StatusOK, generateResponse{
			Generated: false,
			Reason:    string(result.Skipped),
		})
		return
	}

	if err := s.store.UpsertEntry(*result.Entry); err != nil {
		s.log.Error().Err(err).Str("date", date).Msg("entry upsert failed")
		s.writeInternalError(w, "failed to store entry")
		return
	}
	for _, c := range captures {
		if c.Processed {
			continue
		}
		if err := s.store.MarkCaptureProcessed(c.ID, nil); err != nil {
			s.log.Warn().Err(err).Str("id", c.ID).Msg("mark processed failed")
		}
	}

	stored, err := s.store.GetEntry(date)
	if err != nil {
		stored = *result.Entry
	}
	s.writeJSON(w, http.StatusOK, generateResponse{Generated: true, Entry: &stored})
}

// annotateRequest is the PUT /v1/entries/{date}/annotations body. An empty
// field is left untouched; the literal "-" clears it.
type annotateRequest struct {
	UserNote string `json:"user_note,omitempty"`
	UserMood string `json:"user_mood,omitempty"`
}

func (s *Server) handleAnnotateEntry(w http.ResponseWriter, r *http.Request) {
	date, ok := s.entryDate(w, r)
	if !ok {
		return
	}

	var req annotateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeBadRequest(w, "invalid JSON")
		return
	}

	if err := s.store.AnnotateEntry(date, req.UserNote, req.UserMood); err != nil {
		if errors.Is(err, journal.ErrNotFound) {
			s.writeNotFound(w, "no entry for "+date)
			return
		}
		s.log.Error().Err(err).Str("date", date).Msg("entry annotate failed")
		s.writeInternalError(w, "failed to annotate entry")
		return
	}

	e, err := s.store.GetEntry(date)
	if err != nil {
		s.writeInternalError(w, "failed to read entry")
		return
	}
	s.writeJSON(w, http.StatusOK, e)
}

// handleContext serves the rendered context window as text/plain: the same
// block the generator grounds on, exported for humans.
func (s *Server) handleContext(w http.ResponseWriter, r *http.Request) {
	days := 0
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.writeBadRequest(w, "invalid days")
			return
		}
		days = n
	}

	win, err := s.windows.Build(days)
	if err != nil {
		s.log.Error().Err(err).Msg("context window build failed")
		s.writeInternalError(w, "failed to build context window")
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Context-Tokens", strconv.Itoa(win.Tokens))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(win.Text))
}

// entryDate extracts and validates the {date} path variable.
func (s *Server) entryDate(w http.ResponseWriter, r *http.Request) (string, bool) {
	date := mux.Vars(r)["date"]
	if _, err := time.Parse(journal.DateLayout, date); err != nil {
		s.writeBadRequest(w, "invalid date, want YYYY-MM-DD")
		return "", false
	}
	return date, true
}
