package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog"

	"github.com/bodypress/bodypress/internal/backend"
	"github.com/bodypress/bodypress/internal/db"
	"github.com/bodypress/bodypress/internal/generate"
	"github.com/bodypress/bodypress/internal/journal"
	"github.com/bodypress/bodypress/internal/window"
)

// stubBackend answers every ask with a canned response.
type stubBackend struct {
	response string
	err      error
	asks     int
}

func (s *stubBackend) Ask(ctx context.Context, req backend.AskRequest) (string, error) {
	s.asks++
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func entryJSON() string {
	return `{"headline":"Sunny miles","summary":"A long walk.","full_body":"You walked far today.","mood":"energised","mood_emoji":"⚡","tags":["walking"]}`
}

func setupTestMCP(t *testing.T) (*Server, *journal.Store, *stubBackend) {
	t.Helper()

	database, err := db.Open(filepath.Join(t.TempDir(), "mcp.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	store := journal.NewStore(database)
	stub := &stubBackend{response: entryJSON()}
	windows := window.NewBuilder(store, nil)
	gen := generate.New(stub, windows, zerolog.Nop(), generate.Options{})

	return NewServer(store, windows, gen, zerolog.Nop(), "test"), store, stub
}

// makeRequest creates a CallToolRequest with the given arguments.
func makeRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("result has no content")
	}
	tc, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("result content is %T, want TextContent", res.Content[0])
	}
	return tc.Text
}

func TestHandleLogCapture(t *testing.T) {
	s, store, _ := setupTestMCP(t)

	res, err := s.handleLogCapture(context.Background(), makeRequest(map[string]any{
		"note": "coffee with Ana",
		"mood": "happy",
		"tags": "social, coffee",
	}))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected error result: %s", resultText(t, res))
	}
	if !strings.Contains(resultText(t, res), "Captured") {
		t.Errorf("result text = %q", resultText(t, res))
	}

	captures, err := store.ListRecentCaptures(5)
	if err != nil {
		t.Fatal(err)
	}
	if len(captures) != 1 {
		t.Fatalf("expected 1 capture, got %d", len(captures))
	}
	c := captures[0]
	if c.Note != "coffee with Ana" {
		t.Errorf("note = %q", c.Note)
	}
	if c.Trigger != journal.TriggerManual {
		t.Errorf("trigger = %q, want %q", c.Trigger, journal.TriggerManual)
	}
	if len(c.Tags) != 2 || c.Tags[0] != "social" || c.Tags[1] != "coffee" {
		t.Errorf("tags = %v", c.Tags)
	}
}

func TestHandleLogCapture_MissingNote(t *testing.T) {
	s, _, _ := setupTestMCP(t)

	res, err := s.handleLogCapture(context.Background(), makeRequest(map[string]any{}))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !res.IsError {
		t.Error("expected error result for missing note")
	}
}

func TestHandleGetContextWindow_Empty(t *testing.T) {
	s, _, _ := setupTestMCP(t)

	res, err := s.handleGetContextWindow(context.Background(), makeRequest(map[string]any{}))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected error result: %s", resultText(t, res))
	}

	text := resultText(t, res)
	if !strings.Contains(text, "7-DAY CONTEXT WINDOW") {
		t.Errorf("missing header in %q", text)
	}
	if !strings.Contains(text, "no entries stored yet") {
		t.Errorf("missing empty marker in %q", text)
	}
	if !strings.Contains(text, window.Footer) {
		t.Errorf("missing footer in %q", text)
	}
}

func TestHandleGetContextWindow_Days(t *testing.T) {
	s, store, _ := setupTestMCP(t)

	if err := store.UpsertEntry(journal.Entry{
		Date:     "2026-03-02",
		Headline: "A long walk",
		Mood:     journal.MoodEnergised,
	}); err != nil {
		t.Fatal(err)
	}

	res, err := s.handleGetContextWindow(context.Background(), makeRequest(map[string]any{
		"days": 3,
	}))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}

	text := resultText(t, res)
	if !strings.Contains(text, "3-DAY CONTEXT WINDOW") {
		t.Errorf("missing 3-day header in %q", text)
	}
	if !strings.Contains(text, "1 entry") {
		t.Errorf("missing count line in %q", text)
	}
	if !strings.Contains(text, "2026-03-02") {
		t.Errorf("missing entry date in %q", text)
	}
}

func TestHandleComposeEntry(t *testing.T) {
	s, store, _ := setupTestMCP(t)

	day := time.Now().Format(journal.DateLayout)
	id, err := store.InsertCapture(journal.Capture{
		Note:   "long walk",
		Health: &journal.Health{Steps: 9000},
	})
	if err != nil {
		t.Fatal(err)
	}

	res, err := s.handleComposeEntry(context.Background(), makeRequest(map[string]any{
		"date": day,
	}))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected error result: %s", resultText(t, res))
	}

	var e journal.Entry
	if err := json.Unmarshal([]byte(resultText(t, res)), &e); err != nil {
		t.Fatalf("result is not an entry: %v", err)
	}
	if e.Date != day {
		t.Errorf("entry date = %q, want %q", e.Date, day)
	}
	if e.Headline != "Sunny miles" {
		t.Errorf("headline = %q", e.Headline)
	}
	if e.Snapshot.Steps != 9000 {
		t.Errorf("snapshot steps = %d", e.Snapshot.Steps)
	}

	stored, err := store.GetCapture(id)
	if err != nil {
		t.Fatal(err)
	}
	if !stored.Processed {
		t.Error("capture should be marked processed after compose")
	}
}

func TestHandleComposeEntry_NoData(t *testing.T) {
	s, _, stub := setupTestMCP(t)

	res, err := s.handleComposeEntry(context.Background(), makeRequest(map[string]any{
		"date": "2026-03-02",
	}))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if res.IsError {
		t.Fatal("a data-less day is a skip, not an error")
	}
	if !strings.Contains(resultText(t, res), "no-data") {
		t.Errorf("result text = %q", resultText(t, res))
	}
	if stub.asks != 0 {
		t.Errorf("backend should not be asked with no data, asks = %d", stub.asks)
	}
}

func TestHandleComposeEntry_BackendFailure(t *testing.T) {
	s, store, stub := setupTestMCP(t)
	stub.err = errors.New("boom")

	day := time.Now().Format(journal.DateLayout)
	if _, err := store.InsertCapture(journal.Capture{Note: "walk"}); err != nil {
		t.Fatal(err)
	}

	res, err := s.handleComposeEntry(context.Background(), makeRequest(map[string]any{
		"date": day,
	}))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if res.IsError {
		t.Fatal("a backend failure is a skip, not an error")
	}
	if !strings.Contains(resultText(t, res), "backend-error") {
		t.Errorf("result text = %q", resultText(t, res))
	}
}

func TestHandleComposeEntry_InvalidDate(t *testing.T) {
	s, _, _ := setupTestMCP(t)

	res, err := s.handleComposeEntry(context.Background(), makeRequest(map[string]any{
		"date": "yesterday",
	}))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !res.IsError {
		t.Error("expected error result for malformed date")
	}
}

func TestHandleGetEntry(t *testing.T) {
	s, store, _ := setupTestMCP(t)

	res, err := s.handleGetEntry(context.Background(), makeRequest(map[string]any{
		"date": "2026-03-02",
	}))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !res.IsError {
		t.Error("expected error result for missing entry")
	}

	if err := store.UpsertEntry(journal.Entry{
		Date:     "2026-03-02",
		Headline: "Quiet day",
		Mood:     journal.MoodCalm,
	}); err != nil {
		t.Fatal(err)
	}

	res, err = s.handleGetEntry(context.Background(), makeRequest(map[string]any{
		"date": "2026-03-02",
	}))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected error result: %s", resultText(t, res))
	}

	var e journal.Entry
	if err := json.Unmarshal([]byte(resultText(t, res)), &e); err != nil {
		t.Fatalf("result is not an entry: %v", err)
	}
	if e.Headline != "Quiet day" {
		t.Errorf("headline = %q", e.Headline)
	}
}
