// Package spool ingests capture files dropped by companion sensor bridges.
// A bridge that cannot reach the HTTP API writes one JSON file per capture
// into the spool directory; the watcher picks them up, stores them as
// background-triggered captures and removes them.
package spool

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/bodypress/bodypress/internal/journal"
	"github.com/bodypress/bodypress/internal/platform/metrics"
)

// DefaultDebounce batches rapid file drops into one ingest pass.
const DefaultDebounce = 500 * time.Millisecond

// capturePayload is the JSON shape of a spooled capture file. It mirrors the
// HTTP capture body; source is not accepted, spooled files are always
// background-triggered.
type capturePayload struct {
	Timestamp      *time.Time           `json:"timestamp,omitempty"`
	Note           string               `json:"note,omitempty"`
	Mood           string               `json:"mood,omitempty"`
	Tags           []string             `json:"tags,omitempty"`
	Health         *journal.Health      `json:"health,omitempty"`
	Environment    *journal.Environment `json:"environment,omitempty"`
	Location       *journal.Location    `json:"location,omitempty"`
	CalendarTitles []string             `json:"calendar_titles,omitempty"`
	Trigger        string               `json:"trigger,omitempty"`
	Errors         []string             `json:"errors,omitempty"`
	Battery        *int                 `json:"battery,omitempty"`
}

// Watcher ingests spooled capture files as they appear.
type Watcher struct {
	dir      string
	store    *journal.Store
	log      zerolog.Logger
	debounce time.Duration
}

// NewWatcher creates a Watcher over dir. A non-positive debounce uses
// DefaultDebounce.
func NewWatcher(dir string, store *journal.Store, log zerolog.Logger, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{dir: dir, store: store, log: log, debounce: debounce}
}

// Drain ingests every spooled file currently in the directory and returns
// how many captures were stored. Files that fail to decode are set aside
// with a .bad suffix so they are not retried.
func (w *Watcher) Drain() (int, error) {
	paths, err := filepath.Glob(filepath.Join(w.dir, "*.json"))
	if err != nil {
		return 0, fmt.Errorf("spool: glob: %w", err)
	}

	stored := 0
	for _, path := range paths {
		if err := w.ingest(path); err != nil {
			w.log.Warn().Str("file", filepath.Base(path)).Err(err).Msg("spool file rejected")
			continue
		}
		stored++
	}
	return stored, nil
}

// Run watches the spool directory until ctx is canceled. Pre-existing files
// are drained first; new drops are debounced, then ingested in a batch.
func (w *Watcher) Run(ctx context.Context) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("spool: mkdir: %w", err)
	}

	if n, err := w.Drain(); err != nil {
		return err
	} else if n > 0 {
		w.log.Info().Int("captures", n).Msg("drained pre-existing spool files")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("spool: create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("spool: watch %s: %w", w.dir, err)
	}
	w.log.Info().Str("dir", w.dir).Dur("debounce", w.debounce).Msg("spool watcher started")

	pending := make(map[string]struct{})
	timer := time.NewTimer(w.debounce)
	timer.Stop() // Don't fire immediately.

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("spool watcher stopped")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if filepath.Ext(event.Name) != ".json" {
				continue
			}
			pending[event.Name] = struct{}{}
			timer.Reset(w.debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warn().Err(err).Msg("spool watch error")

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			batch := pending
			pending = make(map[string]struct{})

			for path := range batch {
				if err := w.ingest(path); err != nil {
					w.log.Warn().Str("file", filepath.Base(path)).Err(err).Msg("spool file rejected")
				}
			}
		}
	}
}

// ingest stores one spooled file as a capture and removes it. A file that
// cannot be decoded or validated is renamed with a .bad suffix.
func (w *Watcher) ingest(path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil // Already ingested by an earlier batch.
	}
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}

	var payload capturePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		w.setAside(path)
		return fmt.Errorf("decode: %w", err)
	}

	trigger := journal.CaptureTrigger(payload.Trigger)
	if trigger == "" {
		trigger = journal.TriggerNone
	}
	if !journal.ValidCaptureTrigger(trigger) {
		w.setAside(path)
		return fmt.Errorf("invalid trigger %q", payload.Trigger)
	}

	c := journal.Capture{
		Note:           payload.Note,
		Mood:           payload.Mood,
		Tags:           payload.Tags,
		Health:         payload.Health,
		Environment:    payload.Environment,
		Location:       payload.Location,
		CalendarTitles: payload.CalendarTitles,
		Source:         journal.SourceTriggered,
		Trigger:        trigger,
		Errors:         payload.Errors,
		Battery:        payload.Battery,
	}
	if payload.Timestamp != nil {
		c.Timestamp = *payload.Timestamp
	}

	id, err := w.store.InsertCapture(c)
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}
	metrics.CapturesTotal.WithLabelValues(string(journal.SourceTriggered)).Inc()
	w.log.Info().Str("id", id).Str("file", filepath.Base(path)).Msg("spooled capture stored")

	if err := os.Remove(path); err != nil {
		w.log.Warn().Str("file", filepath.Base(path)).Err(err).Msg("removing ingested spool file failed")
	}
	return nil
}

// setAside renames a rejected file so the watcher never retries it. The
// .bad suffix takes it out of the *.json pattern.
func (w *Watcher) setAside(path string) {
	if err := os.Rename(path, path+".bad"); err != nil {
		w.log.Warn().Str("file", filepath.Base(path)).Err(err).Msg("setting aside rejected spool file failed")
	}
}
