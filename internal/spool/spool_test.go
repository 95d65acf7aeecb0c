package spool

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/bodypress/bodypress/internal/db"
	"github.com/bodypress/bodypress/internal/journal"
)

func setupWatcher(t *testing.T) (*Watcher, *journal.Store, string) {
	t.Helper()
	dir := t.TempDir()
	database, err := db.Open(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	store := journal.NewStore(database)
	spoolDir := filepath.Join(dir, "spool")
	if err := os.MkdirAll(spoolDir, 0o755); err != nil {
		t.Fatal(err)
	}
	return NewWatcher(spoolDir, store, zerolog.Nop(), time.Millisecond), store, spoolDir
}

func dropFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDrain_IngestsAndRemoves(t *testing.T) {
	w, store, dir := setupWatcher(t)

	dropFile(t, dir, "a.json", `{
		"note": "bridge drop",
		"trigger": "location",
		"health": {"steps": 3200, "heart_rate": 71},
		"tags": ["bridge"]
	}`)

	n, err := w.Drain()
	if err != nil {
		t.Fatalf("Drain error: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 ingested capture, got %d", n)
	}

	if _, err := os.Stat(filepath.Join(dir, "a.json")); !os.IsNotExist(err) {
		t.Error("ingested file should have been removed")
	}

	captures, err := store.ListRecentCaptures(5)
	if err != nil {
		t.Fatal(err)
	}
	if len(captures) != 1 {
		t.Fatalf("expected 1 stored capture, got %d", len(captures))
	}
	c := captures[0]
	if c.Source != journal.SourceTriggered {
		t.Errorf("source = %q, want %q", c.Source, journal.SourceTriggered)
	}
	if c.Trigger != journal.TriggerLocation {
		t.Errorf("trigger = %q, want %q", c.Trigger, journal.TriggerLocation)
	}
	if c.Note != "bridge drop" {
		t.Errorf("note = %q", c.Note)
	}
	if c.Health == nil || c.Health.Steps != 3200 {
		t.Errorf("health not preserved: %+v", c.Health)
	}
}

func TestDrain_UsesPayloadTimestamp(t *testing.T) {
	w, store, dir := setupWatcher(t)

	dropFile(t, dir, "b.json", `{"note": "old moment", "timestamp": "2026-03-01T09:30:00Z"}`)

	if _, err := w.Drain(); err != nil {
		t.Fatal(err)
	}

	captures, err := store.ListCapturesByDay("2026-03-01")
	if err != nil {
		t.Fatal(err)
	}
	if len(captures) != 1 {
		t.Fatalf("expected the capture on 2026-03-01, got %d captures", len(captures))
	}
}

func TestDrain_SetsAsideMalformed(t *testing.T) {
	w, store, dir := setupWatcher(t)

	dropFile(t, dir, "broken.json", `{not json`)
	dropFile(t, dir, "ok.json", `{"note": "fine"}`)

	n, err := w.Drain()
	if err != nil {
		t.Fatalf("Drain error: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 ingested capture, got %d", n)
	}

	if _, err := os.Stat(filepath.Join(dir, "broken.json.bad")); err != nil {
		t.Error("malformed file should have been renamed with .bad suffix")
	}
	if _, err := os.Stat(filepath.Join(dir, "broken.json")); !os.IsNotExist(err) {
		t.Error("malformed file should no longer match the spool pattern")
	}

	captures, _ := store.ListRecentCaptures(5)
	if len(captures) != 1 {
		t.Errorf("expected only the valid capture stored, got %d", len(captures))
	}
}

func TestDrain_RejectsInvalidTrigger(t *testing.T) {
	w, store, dir := setupWatcher(t)

	dropFile(t, dir, "c.json", `{"note": "bad trigger", "trigger": "earthquake"}`)

	n, err := w.Drain()
	if err != nil {
		t.Fatalf("Drain error: %v", err)
	}
	if n != 0 {
		t.Errorf("expected 0 ingested captures, got %d", n)
	}
	if _, err := os.Stat(filepath.Join(dir, "c.json.bad")); err != nil {
		t.Error("invalid file should have been set aside")
	}
	captures, _ := store.ListRecentCaptures(5)
	if len(captures) != 0 {
		t.Errorf("expected no stored captures, got %d", len(captures))
	}
}

func TestDrain_EmptyDir(t *testing.T) {
	w, _, _ := setupWatcher(t)
	n, err := w.Drain()
	if err != nil {
		t.Fatalf("Drain error: %v", err)
	}
	if n != 0 {
		t.Errorf("expected 0, got %d", n)
	}
}
