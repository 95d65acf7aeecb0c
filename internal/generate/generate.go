// Package generate turns a day of captures into a validated journal entry.
// It is the error boundary of the AI pipeline: backends raise, this package
// swallows. Callers receive a Result that either carries an entry or names
// why there is none; no generation failure ever propagates as an error.
package generate

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/bodypress/bodypress/internal/backend"
	"github.com/bodypress/bodypress/internal/journal"
	"github.com/bodypress/bodypress/internal/platform/metrics"
	"github.com/bodypress/bodypress/internal/window"
)

// FallbackHeadline is used when the backend returns an entry without one.
const FallbackHeadline = "A quiet day"

// Backend is the slice of the router the generator needs.
type Backend interface {
	Ask(ctx context.Context, req backend.AskRequest) (string, error)
}

// WindowSource builds the grounding context block.
type WindowSource interface {
	Build(days int) (*window.Window, error)
}

// Request describes one entry generation.
type Request struct {
	Date     string // journal.DateLayout
	Captures []journal.Capture
	Fallback *journal.DailySnapshot
	UserNote string
	UserMood string
}

// SkipReason names why a generation produced no entry.
type SkipReason string

const (
	SkipNone    SkipReason = ""
	SkipNoData  SkipReason = "no-data"
	SkipBackend SkipReason = "backend-error"
	SkipDecode  SkipReason = "bad-response"
)

// Result is the outcome of one generation: an entry, or a skip reason with
// the underlying error (if any) for logging.
type Result struct {
	Entry   *journal.Entry
	Skipped SkipReason
	Err     error
}

// OK reports whether the generation produced an entry.
func (r Result) OK() bool { return r.Entry != nil }

// Options tunes the generator.
type Options struct {
	Temperature float32 // zero means 0.7
	MaxTokens   int     // zero means 1024
	ContextDays int     // zero means window.DefaultDays
}

// Generator orchestrates prompt construction, the backend call and the
// parse/validate pipeline. It holds no mutable state and is safe to use
// concurrently for distinct dates.
type Generator struct {
	backend     Backend
	windows     WindowSource
	logger      zerolog.Logger
	temperature float32
	maxTokens   int
	contextDays int
}

// New creates a Generator.
func New(b Backend, w WindowSource, logger zerolog.Logger, opts Options) *Generator {
	if opts.Temperature <= 0 {
		opts.Temperature = 0.7
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 1024
	}
	if opts.ContextDays <= 0 {
		opts.ContextDays = window.DefaultDays
	}
	return &Generator{
		backend:     b,
		windows:     w,
		logger:      logger,
		temperature: opts.Temperature,
		maxTokens:   opts.MaxTokens,
		contextDays: opts.ContextDays,
	}
}

// Generate produces the entry for req.Date, or a skip. With no captures and
// an absent or all-empty fallback snapshot it skips immediately: an entry
// is never fabricated from nothing.
func (g *Generator) Generate(ctx context.Context, req Request) (res Result) {
	start := time.Now()
	defer func() {
		metrics.GenerationSeconds.Observe(time.Since(start).Seconds())
		outcome := "ok"
		if !res.OK() {
			outcome = string(res.Skipped)
		}
		metrics.GenerationsTotal.WithLabelValues(outcome).Inc()
	}()

	if len(req.Captures) == 0 && (req.Fallback == nil || req.Fallback.IsEmpty()) {
		return Result{Skipped: SkipNoData}
	}

	contextText := ""
	if g.windows != nil {
		win, err := g.windows.Build(g.contextDays)
		if err != nil {
			g.logger.Warn().Err(err).Msg("context window build failed, generating without grounding")
		} else {
			contextText = win.Text
		}
	}

	prompt := buildPrompt(req, contextText)
	raw, err := g.backend.Ask(ctx, backend.AskRequest{
		Prompt:       prompt,
		SystemPrompt: systemPrompt,
		Temperature:  g.temperature,
		MaxTokens:    g.maxTokens,
	})
	if err != nil {
		g.logger.Warn().Str("date", req.Date).Err(err).Msg("generation backend call failed")
		return Result{Skipped: SkipBackend, Err: err}
	}

	payload, ok := decodeEntryPayload(raw)
	if !ok {
		g.logger.Warn().Str("date", req.Date).Msg("generation response not decodable")
		return Result{Skipped: SkipDecode}
	}

	entry := payload.toEntry(req)
	return Result{Entry: &entry}
}

// entryPayload is the JSON shape the backend is instructed to return.
// Defaulting and mood validation happen here, on the decoder side, so no
// partially-trusted value leaks past this type.
type entryPayload struct {
	Headline  string   `json:"headline"`
	Summary   string   `json:"summary"`
	FullBody  string   `json:"full_body"`
	Mood      string   `json:"mood"`
	MoodEmoji string   `json:"mood_emoji"`
	Tags      []string `json:"tags"`
}

// decodeEntryPayload strips an optional surrounding markdown fence and
// decodes. A failed decode returns ok=false; there is no partial result.
func decodeEntryPayload(raw string) (entryPayload, bool) {
	var p entryPayload
	cleaned := stripFences(raw)
	if cleaned == "" {
		return p, false
	}
	if err := json.Unmarshal([]byte(cleaned), &p); err != nil {
		return p, false
	}
	return p, true
}

// toEntry applies the defaulting rules and produces the validated entry.
func (p entryPayload) toEntry(req Request) journal.Entry {
	headline := strings.TrimSpace(p.Headline)
	if headline == "" {
		headline = FallbackHeadline
	}
	mood := journal.NormalizeMood(p.Mood)
	emoji := strings.TrimSpace(p.MoodEmoji)
	if emoji == "" {
		emoji = journal.DefaultEmoji(mood)
	}
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}

	snapshot := journal.AggregateDay(req.Captures)
	if len(req.Captures) == 0 && req.Fallback != nil {
		snapshot = *req.Fallback
	}

	now := time.Now()
	return journal.Entry{
		Date:        req.Date,
		Headline:    headline,
		Summary:     p.Summary,
		Body:        p.FullBody,
		Mood:        mood,
		MoodEmoji:   emoji,
		Tags:        tags,
		Snapshot:    snapshot,
		UserNote:    req.UserNote,
		UserMood:    req.UserMood,
		AIGenerated: true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Insights annotates one capture with AI metadata, normalized to the
// closed-vocabulary contract. Any failure returns nil; insights are a
// cache, never worth failing a pipeline over.
func (g *Generator) Insights(ctx context.Context, c journal.Capture) *journal.CaptureMetadata {
	raw, err := g.backend.Ask(ctx, backend.AskRequest{
		Prompt:       buildInsightsPrompt(c),
		SystemPrompt: insightsPrompt,
		Temperature:  0.2,
		MaxTokens:    512,
	})
	if err != nil {
		g.logger.Debug().Str("capture", c.ID).Err(err).Msg("insights call failed")
		return nil
	}

	cleaned := stripFences(raw)
	if cleaned == "" {
		return nil
	}
	var m journal.CaptureMetadata
	if err := json.Unmarshal([]byte(cleaned), &m); err != nil {
		g.logger.Debug().Str("capture", c.ID).Msg("insights response not decodable")
		return nil
	}
	m.GeneratedAt = time.Now().UTC()
	m.Normalize()

	// Clock-derived buckets come from the capture, not the model.
	tod := journal.TimeOfDayFor(c.Timestamp)
	dayType := journal.DayTypeFor(c.Timestamp)
	m.TimeOfDay = &tod
	m.DayType = &dayType
	return &m
}

// stripFences removes an optional surrounding markdown code fence
// (``` or ```json) so fenced responses decode identically to bare ones.
func stripFences(s string) string {
	out := strings.TrimSpace(s)
	if !strings.HasPrefix(out, "```") {
		return out
	}
	out = strings.TrimPrefix(out, "```")
	if idx := strings.Index(out, "\n"); idx >= 0 {
		// Drop the info string ("json", "JSON", ...) on the opening fence.
		first := strings.TrimSpace(out[:idx])
		if len(first) <= 8 {
			out = out[idx+1:]
		}
	}
	out = strings.TrimSpace(out)
	out = strings.TrimSuffix(out, "```")
	return strings.TrimSpace(out)
}
