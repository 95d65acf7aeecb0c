package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/bodypress/bodypress/internal/generate"
	"github.com/bodypress/bodypress/internal/journal"
	"github.com/bodypress/bodypress/internal/platform/metrics"
	"github.com/bodypress/bodypress/internal/window"
)

func (s *Server) handleLogCapture(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	note, err := req.RequireString("note")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: note"), nil
	}
	mood := req.GetString("mood", "")

	var tags []string
	for _, t := range strings.Split(req.GetString("tags", ""), ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}

	c := journal.Capture{
		Note:    note,
		Mood:    mood,
		Tags:    tags,
		Source:  journal.SourceManual,
		Trigger: journal.TriggerManual,
	}
	id, insertErr := s.store.InsertCapture(c)
	if insertErr != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to store capture: %v", insertErr)), nil
	}
	metrics.CapturesTotal.WithLabelValues(string(journal.SourceManual)).Inc()
	s.log.Info().Str("id", id).Msg("capture logged via mcp")

	day := time.Now().Format(journal.DateLayout)
	return mcp.NewToolResultText(fmt.Sprintf("Captured (id: %s). It will be woven into the entry for %s.", id, day)), nil
}

func (s *Server) handleGetContextWindow(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	days := req.GetInt("days", window.DefaultDays)
	if days <= 0 {
		days = window.DefaultDays
	}

	win, err := s.windows.Build(days)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to build context window: %v", err)), nil
	}
	return mcp.NewToolResultText(win.Text), nil
}

func (s *Server) handleComposeEntry(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	date, err := req.RequireString("date")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: date"), nil
	}
	if _, err := time.Parse(journal.DateLayout, date); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid date %q, want YYYY-MM-DD", date)), nil
	}
	userNote := req.GetString("user_note", "")
	userMood := req.GetString("user_mood", "")

	captures, listErr := s.store.ListCapturesByDay(date)
	if listErr != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load captures: %v", listErr)), nil
	}

	// A regeneration keeps the old snapshot as data source and inherits
	// annotations the caller did not override.
	var fallback *journal.DailySnapshot
	if existing, err := s.store.GetEntry(date); err == nil {
		snap := existing.Snapshot
		fallback = &snap
		if userNote == "" {
			userNote = existing.UserNote
		}
		if userMood == "" {
			userMood = existing.UserMood
		}
	}

	result := s.gen.Generate(ctx, generate.Request{
		Date:     date,
		Captures: captures,
		Fallback: fallback,
		UserNote: userNote,
		UserMood: userMood,
	})
	if !result.OK() {
		return mcp.NewToolResultText(fmt.Sprintf("No entry written for %s (%s).", date, result.Skipped)), nil
	}

	if err := s.store.UpsertEntry(*result.Entry); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to store entry: %v", err)), nil
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
	b, _ := json.MarshalIndent(stored, "", "  ")
	return mcp.NewToolResultText(string(b)), nil
}

func (s *Server) handleGetEntry(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	date, err := req.RequireString("date")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: date"), nil
	}
	if _, err := time.Parse(journal.DateLayout, date); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid date %q, want YYYY-MM-DD", date)), nil
	}

	e, getErr := s.store.GetEntry(date)
	if getErr != nil {
		if errors.Is(getErr, journal.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("no entry for %s", date)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("failed to read entry: %v", getErr)), nil
	}

	b, _ := json.MarshalIndent(e, "", "  ")
	return mcp.NewToolResultText(string(b)), nil
}
