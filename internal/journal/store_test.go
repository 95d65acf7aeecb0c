package journal

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/bodypress/bodypress/internal/db"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	database, err := db.Open(dbPath)
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewStore(database)
}

func TestNewCaptureID(t *testing.T) {
	a := NewCaptureID()
	b := NewCaptureID()
	if a == "" || b == "" {
		t.Fatal("expected non-empty capture IDs")
	}
	if a == b {
		t.Error("expected distinct capture IDs")
	}
}

func TestStore_InsertAndGetCapture(t *testing.T) {
	store := setupTestStore(t)

	battery := 82
	c := Capture{
		Timestamp: time.Date(2025, 6, 15, 8, 30, 0, 0, time.UTC),
		Note:      "morning walk",
		Mood:      "energised",
		Tags:      []string{"outdoors"},
		Health:    &Health{Steps: 4200, HeartRate: 72, SleepHours: 7.5},
		Environment: &Environment{
			TempC:       floatp(18.5),
			WeatherDesc: strp("sunny"),
		},
		Location:       &Location{Latitude: 45.5, Longitude: -73.6, City: "Montreal"},
		CalendarTitles: []string{"Standup"},
		Battery:        &battery,
	}
	id, err := store.InsertCapture(c)
	if err != nil {
		t.Fatalf("InsertCapture: %v", err)
	}
	if id == "" {
		t.Fatal("expected non-empty ID")
	}

	got, err := store.GetCapture(id)
	if err != nil {
		t.Fatalf("GetCapture: %v", err)
	}
	if got.Note != "morning walk" {
		t.Errorf("note: got %q", got.Note)
	}
	if got.Mood != "energised" {
		t.Errorf("mood: got %q", got.Mood)
	}
	if got.Health == nil || got.Health.Steps != 4200 {
		t.Error("health reading did not round-trip")
	}
	if got.Environment == nil || got.Environment.TempC == nil || *got.Environment.TempC != 18.5 {
		t.Error("environment reading did not round-trip")
	}
	if got.Location == nil || got.Location.City != "Montreal" {
		t.Error("location did not round-trip")
	}
	if got.Battery == nil || *got.Battery != 82 {
		t.Error("battery did not round-trip")
	}
	if got.Processed {
		t.Error("new capture should be unprocessed")
	}
	if got.Source != SourceManual {
		t.Errorf("default source: got %q, want %q", got.Source, SourceManual)
	}
	if got.Trigger != TriggerNone {
		t.Errorf("default trigger: got %q, want %q", got.Trigger, TriggerNone)
	}
}

func TestStore_InsertCapture_MinimalFields(t *testing.T) {
	store := setupTestStore(t)

	id, err := store.InsertCapture(Capture{})
	if err != nil {
		t.Fatalf("InsertCapture: %v", err)
	}

	got, err := store.GetCapture(id)
	if err != nil {
		t.Fatalf("GetCapture: %v", err)
	}
	if got.Health != nil || got.Environment != nil || got.Location != nil || got.Battery != nil {
		t.Error("absent sensor payloads should stay nil")
	}
	if got.Tags == nil || got.CalendarTitles == nil || got.Errors == nil {
		t.Error("list fields should come back non-nil")
	}
	if got.Timestamp.IsZero() {
		t.Error("timestamp should be defaulted")
	}
}

func TestStore_GetCapture_NotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.GetCapture("nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_ListCapturesByDay(t *testing.T) {
	store := setupTestStore(t)

	store.InsertCapture(Capture{Timestamp: time.Date(2025, 6, 15, 8, 0, 0, 0, time.UTC), Note: "first"})
	store.InsertCapture(Capture{Timestamp: time.Date(2025, 6, 15, 20, 0, 0, 0, time.UTC), Note: "second"})
	store.InsertCapture(Capture{Timestamp: time.Date(2025, 6, 16, 8, 0, 0, 0, time.UTC), Note: "other day"})

	captures, err := store.ListCapturesByDay("2025-06-15")
	if err != nil {
		t.Fatalf("ListCapturesByDay: %v", err)
	}
	if len(captures) != 2 {
		t.Fatalf("expected 2 captures, got %d", len(captures))
	}
	// Oldest first.
	if captures[0].Note != "first" || captures[1].Note != "second" {
		t.Errorf("order: got %q, %q", captures[0].Note, captures[1].Note)
	}
}

func TestStore_ListCapturesByDay_BadDate(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.ListCapturesByDay("June 15th")
	if err == nil {
		t.Error("expected error for malformed date")
	}
}

func TestStore_MarkCaptureProcessed(t *testing.T) {
	store := setupTestStore(t)

	id, _ := store.InsertCapture(Capture{Note: "walk"})

	bad := EnergyLevel("extreme")
	insights := &CaptureMetadata{
		Summary:     "an energetic walk",
		EnergyLevel: &bad, // must be dropped by normalization
	}
	if err := store.MarkCaptureProcessed(id, insights); err != nil {
		t.Fatalf("MarkCaptureProcessed: %v", err)
	}

	got, _ := store.GetCapture(id)
	if !got.Processed {
		t.Error("capture should be processed")
	}
	if got.ProcessedAt == nil {
		t.Error("processed_at should be set")
	}
	if got.Insights == nil {
		t.Fatal("insights should be stored")
	}
	if got.Insights.Summary != "an energetic walk" {
		t.Errorf("insights summary: got %q", got.Insights.Summary)
	}
	if got.Insights.EnergyLevel != nil {
		t.Error("invalid energy level should have been normalized away")
	}
}

func TestStore_MarkCaptureProcessed_NotFound(t *testing.T) {
	store := setupTestStore(t)

	err := store.MarkCaptureProcessed("missing", nil)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_ListUnprocessedCaptures(t *testing.T) {
	store := setupTestStore(t)

	a, _ := store.InsertCapture(Capture{Note: "a"})
	store.InsertCapture(Capture{Note: "b"})
	store.MarkCaptureProcessed(a, nil)

	unprocessed, err := store.ListUnprocessedCaptures()
	if err != nil {
		t.Fatalf("ListUnprocessedCaptures: %v", err)
	}
	if len(unprocessed) != 1 {
		t.Fatalf("expected 1 unprocessed, got %d", len(unprocessed))
	}
	if unprocessed[0].Note != "b" {
		t.Errorf("got %q", unprocessed[0].Note)
	}
}

func TestStore_ListRecentCaptures(t *testing.T) {
	store := setupTestStore(t)

	store.InsertCapture(Capture{Timestamp: time.Date(2025, 6, 14, 8, 0, 0, 0, time.UTC), Note: "old"})
	store.InsertCapture(Capture{Timestamp: time.Date(2025, 6, 15, 8, 0, 0, 0, time.UTC), Note: "new"})

	recent, err := store.ListRecentCaptures(1)
	if err != nil {
		t.Fatalf("ListRecentCaptures: %v", err)
	}
	if len(recent) != 1 || recent[0].Note != "new" {
		t.Errorf("expected newest capture only, got %v", recent)
	}
}

func TestStore_UpsertAndGetEntry(t *testing.T) {
	store := setupTestStore(t)

	e := Entry{
		Date:      "2025-06-15",
		Headline:  "Sunshine and nine thousand steps",
		Summary:   "A bright day mostly on foot.",
		Body:      "The morning opened clear...",
		Mood:      MoodEnergised,
		MoodEmoji: "⚡",
		Tags:      []string{"walking", "sunny"},
		Snapshot:  DailySnapshot{Steps: 9000, SleepHours: 7.5},
	}
	if err := store.UpsertEntry(e); err != nil {
		t.Fatalf("UpsertEntry: %v", err)
	}

	got, err := store.GetEntry("2025-06-15")
	if err != nil {
		t.Fatalf("GetEntry: %v", err)
	}
	if got.Headline != e.Headline {
		t.Errorf("headline: got %q", got.Headline)
	}
	if got.Mood != MoodEnergised {
		t.Errorf("mood: got %q", got.Mood)
	}
	if got.Snapshot.Steps != 9000 {
		t.Errorf("snapshot steps: got %d", got.Snapshot.Steps)
	}
	if len(got.Tags) != 2 {
		t.Errorf("tags: got %d, want 2", len(got.Tags))
	}
}

func TestStore_UpsertEntry_BadDate(t *testing.T) {
	store := setupTestStore(t)

	if err := store.UpsertEntry(Entry{Date: "15/06/2025"}); err == nil {
		t.Error("expected error for malformed date")
	}
}

func TestStore_UpsertEntry_Replaces(t *testing.T) {
	store := setupTestStore(t)

	store.UpsertEntry(Entry{Date: "2025-06-15", Headline: "v1"})
	store.UpsertEntry(Entry{Date: "2025-06-15", Headline: "v2"})

	got, _ := store.GetEntry("2025-06-15")
	if got.Headline != "v2" {
		t.Errorf("expected replaced headline, got %q", got.Headline)
	}

	entries, _ := store.ListRecentEntries(10)
	if len(entries) != 1 {
		t.Errorf("expected 1 entry after upsert, got %d", len(entries))
	}
}

func TestStore_UpsertEntry_PreservesAnnotations(t *testing.T) {
	store := setupTestStore(t)

	store.UpsertEntry(Entry{Date: "2025-06-15", Headline: "v1", UserNote: "felt great", UserMood: "happy"})

	// Regeneration carries no annotations of its own.
	store.UpsertEntry(Entry{Date: "2025-06-15", Headline: "v2"})

	got, _ := store.GetEntry("2025-06-15")
	if got.UserNote != "felt great" {
		t.Errorf("user note should survive regeneration, got %q", got.UserNote)
	}
	if got.UserMood != "happy" {
		t.Errorf("user mood should survive regeneration, got %q", got.UserMood)
	}
}

func TestStore_GetEntry_NotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.GetEntry("2025-01-01")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_ListRecentEntries(t *testing.T) {
	store := setupTestStore(t)

	store.UpsertEntry(Entry{Date: "2025-06-13", Headline: "a"})
	store.UpsertEntry(Entry{Date: "2025-06-14", Headline: "b"})
	store.UpsertEntry(Entry{Date: "2025-06-15", Headline: "c"})

	entries, err := store.ListRecentEntries(2)
	if err != nil {
		t.Fatalf("ListRecentEntries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	// Newest first.
	if entries[0].Date != "2025-06-15" || entries[1].Date != "2025-06-14" {
		t.Errorf("order: got %s, %s", entries[0].Date, entries[1].Date)
	}
}

func TestStore_ListEntriesRange(t *testing.T) {
	store := setupTestStore(t)

	store.UpsertEntry(Entry{Date: "2025-06-10", Headline: "out"})
	store.UpsertEntry(Entry{Date: "2025-06-14", Headline: "in"})
	store.UpsertEntry(Entry{Date: "2025-06-15", Headline: "in"})

	entries, err := store.ListEntriesRange("2025-06-14", "2025-06-15")
	if err != nil {
		t.Fatalf("ListEntriesRange: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("expected 2 entries in range, got %d", len(entries))
	}
}

func TestStore_AnnotateEntry(t *testing.T) {
	store := setupTestStore(t)

	store.UpsertEntry(Entry{Date: "2025-06-15", Headline: "day"})

	if err := store.AnnotateEntry("2025-06-15", "long lunch outside", "content"); err != nil {
		t.Fatalf("AnnotateEntry: %v", err)
	}
	got, _ := store.GetEntry("2025-06-15")
	if got.UserNote != "long lunch outside" || got.UserMood != "content" {
		t.Errorf("annotations: got note %q mood %q", got.UserNote, got.UserMood)
	}

	// Empty argument leaves the field untouched.
	store.AnnotateEntry("2025-06-15", "", "tired")
	got, _ = store.GetEntry("2025-06-15")
	if got.UserNote != "long lunch outside" {
		t.Errorf("note should be untouched, got %q", got.UserNote)
	}
	if got.UserMood != "tired" {
		t.Errorf("mood should be updated, got %q", got.UserMood)
	}

	// "-" clears a field.
	store.AnnotateEntry("2025-06-15", "-", "")
	got, _ = store.GetEntry("2025-06-15")
	if got.UserNote != "" {
		t.Errorf("note should be cleared, got %q", got.UserNote)
	}
}

func TestStore_AnnotateEntry_NotFound(t *testing.T) {
	store := setupTestStore(t)

	err := store.AnnotateEntry("2025-01-01", "note", "")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_DeleteEntry(t *testing.T) {
	store := setupTestStore(t)

	store.UpsertEntry(Entry{Date: "2025-06-15", Headline: "gone soon"})
	if err := store.DeleteEntry("2025-06-15"); err != nil {
		t.Fatalf("DeleteEntry: %v", err)
	}
	if _, err := store.GetEntry("2025-06-15"); !errors.Is(err, ErrNotFound) {
		t.Error("entry should be gone")
	}

	if err := store.DeleteEntry("2025-06-15"); !errors.Is(err, ErrNotFound) {
		t.Errorf("deleting again should report ErrNotFound, got %v", err)
	}
}

func TestStore_Settings(t *testing.T) {
	store := setupTestStore(t)

	if _, err := store.Setting(SettingMode); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unset key, got %v", err)
	}
	if got := store.SettingOr(SettingMode, "remote"); got != "remote" {
		t.Errorf("SettingOr fallback: got %q", got)
	}

	if err := store.SetSetting(SettingMode, "local"); err != nil {
		t.Fatalf("SetSetting: %v", err)
	}
	if got, _ := store.Setting(SettingMode); got != "local" {
		t.Errorf("setting: got %q", got)
	}

	// Overwrite.
	store.SetSetting(SettingMode, "remote")
	if got, _ := store.Setting(SettingMode); got != "remote" {
		t.Errorf("overwritten setting: got %q", got)
	}
}

func TestStore_Stats(t *testing.T) {
	store := setupTestStore(t)

	a, _ := store.InsertCapture(Capture{Note: "a"})
	store.InsertCapture(Capture{Note: "b"})
	store.MarkCaptureProcessed(a, nil)
	store.UpsertEntry(Entry{Date: "2025-06-14", Headline: "x"})
	store.UpsertEntry(Entry{Date: "2025-06-15", Headline: "y"})

	st, err := store.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.Captures != 2 {
		t.Errorf("captures: got %d, want 2", st.Captures)
	}
	if st.Unprocessed != 1 {
		t.Errorf("unprocessed: got %d, want 1", st.Unprocessed)
	}
	if st.Entries != 2 {
		t.Errorf("entries: got %d, want 2", st.Entries)
	}
	if st.FirstEntry != "2025-06-14" || st.LastEntry != "2025-06-15" {
		t.Errorf("entry range: got %s..%s", st.FirstEntry, st.LastEntry)
	}
}
