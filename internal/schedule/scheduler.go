// Package schedule drives the background daemon: periodic captures inside a
// configurable day window, and one entry generation per day after the day
// has closed.
package schedule

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/bodypress/bodypress/internal/config"
	"github.com/bodypress/bodypress/internal/generate"
	"github.com/bodypress/bodypress/internal/journal"
	"github.com/bodypress/bodypress/internal/notify"
	"github.com/bodypress/bodypress/internal/platform/metrics"
)

// NextCapture computes the next capture tick: one interval from now, clamped
// into the [DayStartHour, DayEndHour) window. Outside the window the next
// tick is the following window start; captures never fire at night.
func NextCapture(now time.Time, cfg config.CaptureConfig) time.Time {
	interval := time.Duration(cfg.IntervalMinutes) * time.Minute
	if interval <= 0 {
		interval = 2 * time.Hour
	}
	start, end := cfg.DayStartHour, cfg.DayEndHour
	if start < 0 || start > 23 || end <= start || end > 24 {
		start, end = 7, 22
	}

	cand := now.Add(interval)
	dayStart := time.Date(cand.Year(), cand.Month(), cand.Day(), start, 0, 0, 0, cand.Location())
	dayEnd := time.Date(cand.Year(), cand.Month(), cand.Day(), end, 0, 0, 0, cand.Location())

	if cand.Before(dayStart) {
		return dayStart
	}
	if !cand.Before(dayEnd) {
		return dayStart.Add(24 * time.Hour)
	}
	return cand
}

// NextGeneration computes the next daily generation tick at hour:00 local
// time. A tick writes the entry for the previous calendar day.
func NextGeneration(now time.Time, hour int) time.Time {
	if hour < 0 || hour > 23 {
		hour = 6
	}
	cand := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !now.Before(cand) {
		cand = cand.Add(24 * time.Hour)
	}
	return cand
}

// Scheduler runs the capture and generation timers until its context ends.
type Scheduler struct {
	cfg       config.Config
	store     *journal.Store
	providers journal.Providers
	gen       *generate.Generator
	log       zerolog.Logger
}

// New creates a Scheduler.
func New(cfg config.Config, store *journal.Store, providers journal.Providers, gen *generate.Generator, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cfg:       cfg,
		store:     store,
		providers: providers,
		gen:       gen,
		log:       log,
	}
}

// Run blocks, firing capture ticks and the daily generation tick, until ctx
// is canceled. It always returns nil after a clean shutdown.
func (s *Scheduler) Run(ctx context.Context) error {
	now := time.Now()
	nextCap := NextCapture(now, s.cfg.Capture)
	nextGen := NextGeneration(now, s.cfg.Generate.Hour)

	s.log.Info().
		Time("next_capture", nextCap).
		Time("next_generation", nextGen).
		Msg("scheduler started")

	capTimer := time.NewTimer(time.Until(nextCap))
	genTimer := time.NewTimer(time.Until(nextGen))
	defer capTimer.Stop()
	defer genTimer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("scheduler stopped")
			return nil

		case <-capTimer.C:
			s.captureTick(ctx)
			nextCap = NextCapture(time.Now(), s.cfg.Capture)
			capTimer.Reset(time.Until(nextCap))

		case <-genTimer.C:
			s.generateTick(ctx)
			nextGen = NextGeneration(time.Now(), s.cfg.Generate.Hour)
			genTimer.Reset(time.Until(nextGen))
		}
	}
}

// captureTick takes and stores one scheduled capture.
func (s *Scheduler) captureTick(ctx context.Context) {
	c := journal.TakeCapture(ctx, s.providers, journal.CaptureOptions{
		Source:  journal.SourceScheduled,
		Trigger: journal.TriggerTime,
	})

	if _, err := s.store.InsertCapture(c); err != nil {
		s.log.Error().Err(err).Msg("scheduled capture insert failed")
		return
	}
	metrics.CapturesTotal.WithLabelValues(string(journal.SourceScheduled)).Inc()
	s.log.Info().Str("id", c.ID).Int("sensor_errors", len(c.Errors)).Msg("scheduled capture stored")

	if s.cfg.Capture.Notify {
		if err := notify.CaptureStored(len(c.Errors)); err != nil {
			s.log.Debug().Err(err).Msg("capture notification failed")
		}
	}
}

// generateTick writes yesterday's entry if it has not been written yet.
func (s *Scheduler) generateTick(ctx context.Context) {
	date := time.Now().AddDate(0, 0, -1).Format(journal.DateLayout)

	if existing, err := s.store.GetEntry(date); err == nil && existing.HasNarrative() {
		s.log.Debug().Str("date", date).Msg("entry already written, skipping generation")
		return
	}

	captures, err := s.store.ListCapturesByDay(date)
	if err != nil {
		s.log.Error().Str("date", date).Err(err).Msg("loading captures for generation failed")
		return
	}

	res := s.gen.Generate(ctx, generate.Request{Date: date, Captures: captures})
	if !res.OK() {
		s.log.Info().Str("date", date).Str("reason", string(res.Skipped)).Msg("daily generation skipped")
		if res.Skipped == generate.SkipBackend && s.cfg.Capture.Notify {
			if err := notify.Problem("Journal entry for " + date + " not written: AI backend unavailable."); err != nil {
				s.log.Debug().Err(err).Msg("backend alert failed")
			}
		}
		return
	}

	if err := s.store.UpsertEntry(*res.Entry); err != nil {
		s.log.Error().Str("date", date).Err(err).Msg("storing generated entry failed")
		return
	}
	for _, c := range captures {
		if c.Processed {
			continue
		}
		var insights *journal.CaptureMetadata
		if s.cfg.Generate.Insights {
			insights = s.gen.Insights(ctx, c)
		}
		if err := s.store.MarkCaptureProcessed(c.ID, insights); err != nil {
			s.log.Warn().Str("capture", c.ID).Err(err).Msg("marking capture processed failed")
		}
	}

	s.log.Info().Str("date", date).Str("headline", res.Entry.Headline).Msg("daily entry written")

	if s.cfg.Capture.Notify {
		if err := notify.EntryReady(date, res.Entry.Headline); err != nil {
			s.log.Debug().Err(err).Msg("entry notification failed")
		}
	}
}
