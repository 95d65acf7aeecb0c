package journal

import (
	"crypto/rand"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/bodypress/bodypress/internal/db"
)

// Settings keys consumed by the backend router and lifecycle.
const (
	SettingMode         = "ai_mode"
	SettingLocalModel   = "ai_local_model_name"
	SettingLocalBackend = "ai_local_backend"
)

// ErrNotFound is returned when a requested capture, entry or setting does
// not exist.
var ErrNotFound = errors.New("not found")

// Store provides read/write access to the Bodypress SQLite database.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given DB.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Conn exposes the underlying *sql.DB for low-level queries.
func (s *Store) Conn() *sql.DB {
	return s.db.Conn()
}

// NewCaptureID mints an opaque, time-sortable capture identifier.
func NewCaptureID() string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// ---- Captures ----

// InsertCapture persists a new capture and returns its ID. If c.ID is empty
// a fresh one is assigned.
func (s *Store) InsertCapture(c Capture) (string, error) {
	if c.ID == "" {
		c.ID = NewCaptureID()
	}
	if c.Timestamp.IsZero() {
		c.Timestamp = time.Now()
	}
	if c.Source == "" {
		c.Source = SourceManual
	}
	if c.Trigger == "" {
		c.Trigger = TriggerNone
	}

	_, err := s.db.Conn().Exec(`
		INSERT INTO captures (id, timestamp, note, mood, tags, health, environment, location,
		                      calendar_titles, source, trigger_kind, duration_ms, errors, battery)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Timestamp.UTC().Format(time.RFC3339), c.Note, c.Mood,
		jsonList(c.Tags), jsonOrNull(c.Health), jsonOrNull(c.Environment), jsonOrNull(c.Location),
		jsonList(c.CalendarTitles), string(c.Source), string(c.Trigger),
		c.DurationMs, jsonList(c.Errors), c.Battery,
	)
	if err != nil {
		return "", fmt.Errorf("store: insert capture: %w", err)
	}
	return c.ID, nil
}

// GetCapture returns a single capture by ID.
func (s *Store) GetCapture(id string) (Capture, error) {
	row := s.db.Conn().QueryRow(captureSelect+` WHERE id = ?`, id)
	c, err := scanCapture(row)
	if errors.Is(err, sql.ErrNoRows) {
		return c, fmt.Errorf("store: capture %q: %w", id, ErrNotFound)
	}
	return c, err
}

// ListCapturesByDay returns all captures whose timestamp falls on the given
// calendar date (DateLayout), oldest first.
func (s *Store) ListCapturesByDay(day string) ([]Capture, error) {
	start, err := time.Parse(DateLayout, day)
	if err != nil {
		return nil, fmt.Errorf("store: bad date %q: %w", day, err)
	}
	end := start.AddDate(0, 0, 1)

	rows, err := s.db.Conn().Query(
		captureSelect+` WHERE timestamp >= ? AND timestamp < ? ORDER BY timestamp ASC`,
		start.UTC().Format(time.RFC3339), end.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("store: list captures by day: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return scanCaptures(rows)
}

// ListUnprocessedCaptures returns every capture not yet folded into an
// entry, oldest first.
func (s *Store) ListUnprocessedCaptures() ([]Capture, error) {
	rows, err := s.db.Conn().Query(captureSelect + ` WHERE processed = 0 ORDER BY timestamp ASC`)
	if err != nil {
		return nil, fmt.Errorf("store: list unprocessed: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return scanCaptures(rows)
}

// ListRecentCaptures returns the n most recent captures, newest first.
func (s *Store) ListRecentCaptures(n int) ([]Capture, error) {
	if n <= 0 {
		return nil, nil
	}
	rows, err := s.db.Conn().Query(captureSelect+` ORDER BY timestamp DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("store: list recent captures: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return scanCaptures(rows)
}

// MarkCaptureProcessed flags a capture as folded into an entry, attaching
// normalized AI insights when present.
func (s *Store) MarkCaptureProcessed(id string, insights *CaptureMetadata) error {
	if insights != nil {
		insights.Normalize()
	}
	res, err := s.db.Conn().Exec(`
		UPDATE captures SET processed = 1, processed_at = CURRENT_TIMESTAMP, insights = ?
		WHERE id = ?`,
		jsonOrNull(insights), id,
	)
	if err != nil {
		return fmt.Errorf("store: mark processed: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("store: capture %q: %w", id, ErrNotFound)
	}
	return nil
}

// ---- Entries ----

// UpsertEntry inserts or replaces the entry for e.Date. User annotations on
// an existing row survive unless e carries its own.
func (s *Store) UpsertEntry(e Entry) error {
	if _, err := time.Parse(DateLayout, e.Date); err != nil {
		return fmt.Errorf("store: bad entry date %q: %w", e.Date, err)
	}
	if e.Mood == "" {
		e.Mood = MoodCalm
	}

	_, err := s.db.Conn().Exec(`
		INSERT INTO entries (date, headline, summary, body, mood, mood_emoji, tags, snapshot,
		                     user_note, user_mood, ai_generated, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(date) DO UPDATE SET
		    headline     = excluded.headline,
		    summary      = excluded.summary,
		    body         = excluded.body,
		    mood         = excluded.mood,
		    mood_emoji   = excluded.mood_emoji,
		    tags         = excluded.tags,
		    snapshot     = excluded.snapshot,
		    user_note    = CASE WHEN excluded.user_note != '' THEN excluded.user_note ELSE entries.user_note END,
		    user_mood    = CASE WHEN excluded.user_mood != '' THEN excluded.user_mood ELSE entries.user_mood END,
		    ai_generated = excluded.ai_generated,
		    updated_at   = CURRENT_TIMESTAMP`,
		e.Date, e.Headline, e.Summary, e.Body, string(e.Mood), e.MoodEmoji,
		jsonList(e.Tags), jsonValue(e.Snapshot), e.UserNote, e.UserMood, e.AIGenerated,
	)
	if err != nil {
		return fmt.Errorf("store: upsert entry: %w", err)
	}
	return nil
}

// GetEntry returns the entry for the given date.
func (s *Store) GetEntry(date string) (Entry, error) {
	row := s.db.Conn().QueryRow(entrySelect+` WHERE date = ?`, date)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return e, fmt.Errorf("store: entry %s: %w", date, ErrNotFound)
	}
	return e, err
}

// ListRecentEntries returns up to days entries, newest first.
func (s *Store) ListRecentEntries(days int) ([]Entry, error) {
	if days <= 0 {
		return nil, nil
	}
	rows, err := s.db.Conn().Query(entrySelect+` ORDER BY date DESC LIMIT ?`, days)
	if err != nil {
		return nil, fmt.Errorf("store: list recent entries: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return scanEntries(rows)
}

// ListEntriesRange returns entries with from <= date <= to, newest first.
func (s *Store) ListEntriesRange(from, to string) ([]Entry, error) {
	rows, err := s.db.Conn().Query(
		entrySelect+` WHERE date >= ? AND date <= ? ORDER BY date DESC`, from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("store: list entries range: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return scanEntries(rows)
}

// AnnotateEntry sets the user note and/or mood on an existing entry.
// Empty arguments leave the corresponding field untouched; "-" clears it.
func (s *Store) AnnotateEntry(date, userNote, userMood string) error {
	note, noteSet := annotationValue(userNote)
	mood, moodSet := annotationValue(userMood)
	if !noteSet && !moodSet {
		return nil
	}

	res, err := s.db.Conn().Exec(`
		UPDATE entries SET
		    user_note  = CASE WHEN ? THEN ? ELSE user_note END,
		    user_mood  = CASE WHEN ? THEN ? ELSE user_mood END,
		    updated_at = CURRENT_TIMESTAMP
		WHERE date = ?`,
		noteSet, note, moodSet, mood, date,
	)
	if err != nil {
		return fmt.Errorf("store: annotate entry: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("store: entry %s: %w", date, ErrNotFound)
	}
	return nil
}

// DeleteEntry removes the entry for a date.
func (s *Store) DeleteEntry(date string) error {
	res, err := s.db.Conn().Exec(`DELETE FROM entries WHERE date = ?`, date)
	if err != nil {
		return fmt.Errorf("store: delete entry: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("store: entry %s: %w", date, ErrNotFound)
	}
	return nil
}

// ---- Settings ----

// Setting returns the value stored under key.
func (s *Store) Setting(key string) (string, error) {
	var v string
	err := s.db.Conn().QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("store: setting %q: %w", key, ErrNotFound)
	}
	return v, err
}

// SettingOr returns the value stored under key, or fallback when unset.
func (s *Store) SettingOr(key, fallback string) string {
	v, err := s.Setting(key)
	if err != nil {
		return fallback
	}
	return v
}

// SetSetting stores value under key, replacing any previous value.
func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Conn().Exec(`
		INSERT INTO settings (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("store: set setting %q: %w", key, err)
	}
	return nil
}

// ---- Stats ----

// Stats summarises what's stored in the journal database.
func (s *Store) Stats() (Stats, error) {
	var st Stats
	conn := s.db.Conn()
	if err := conn.QueryRow(`SELECT COUNT(*) FROM captures`).Scan(&st.Captures); err != nil {
		return st, fmt.Errorf("store: stats: %w", err)
	}
	if err := conn.QueryRow(`SELECT COUNT(*) FROM captures WHERE processed = 0`).Scan(&st.Unprocessed); err != nil {
		return st, fmt.Errorf("store: stats: %w", err)
	}
	if err := conn.QueryRow(`SELECT COUNT(*) FROM entries`).Scan(&st.Entries); err != nil {
		return st, fmt.Errorf("store: stats: %w", err)
	}
	_ = conn.QueryRow(`SELECT COALESCE(MIN(date),''), COALESCE(MAX(date),'') FROM entries`).
		Scan(&st.FirstEntry, &st.LastEntry)
	st.DBSizeBytes = s.db.SizeBytes()
	return st, nil
}

// ---- Helpers ----

const captureSelect = `SELECT id, timestamp, processed, processed_at, note, mood, tags,
	health, environment, location, calendar_titles, source, trigger_kind,
	duration_ms, errors, battery, insights FROM captures`

const entrySelect = `SELECT date, headline, summary, body, mood, mood_emoji, tags, snapshot,
	user_note, user_mood, ai_generated, created_at, updated_at FROM entries`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCapture(row rowScanner) (Capture, error) {
	var c Capture
	var ts string
	var processedAt, health, environment, location, insights sql.NullString
	var tags, calendar, errList, source, trigger string
	var battery sql.NullInt64

	err := row.Scan(&c.ID, &ts, &c.Processed, &processedAt, &c.Note, &c.Mood, &tags,
		&health, &environment, &location, &calendar, &source, &trigger,
		&c.DurationMs, &errList, &battery, &insights)
	if err != nil {
		return c, err
	}

	c.Timestamp = parseTime(ts)
	if processedAt.Valid {
		t := parseTime(processedAt.String)
		c.ProcessedAt = &t
	}
	c.Tags = parseList(tags)
	c.CalendarTitles = parseList(calendar)
	c.Errors = parseList(errList)
	c.Source = CaptureSource(source)
	c.Trigger = CaptureTrigger(trigger)
	if battery.Valid {
		b := int(battery.Int64)
		c.Battery = &b
	}
	if health.Valid && health.String != "" {
		c.Health = &Health{}
		_ = json.Unmarshal([]byte(health.String), c.Health)
	}
	if environment.Valid && environment.String != "" {
		c.Environment = &Environment{}
		_ = json.Unmarshal([]byte(environment.String), c.Environment)
	}
	if location.Valid && location.String != "" {
		c.Location = &Location{}
		_ = json.Unmarshal([]byte(location.String), c.Location)
	}
	if insights.Valid && insights.String != "" {
		c.Insights = &CaptureMetadata{}
		_ = json.Unmarshal([]byte(insights.String), c.Insights)
	}
	return c, nil
}

func scanCaptures(rows *sql.Rows) ([]Capture, error) {
	var out []Capture
	for rows.Next() {
		c, err := scanCapture(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanEntry(row rowScanner) (Entry, error) {
	var e Entry
	var mood, tags, snapshot, createdAt, updatedAt string

	err := row.Scan(&e.Date, &e.Headline, &e.Summary, &e.Body, &mood, &e.MoodEmoji,
		&tags, &snapshot, &e.UserNote, &e.UserMood, &e.AIGenerated, &createdAt, &updatedAt)
	if err != nil {
		return e, err
	}

	e.Mood = Mood(mood)
	e.Tags = parseList(tags)
	if snapshot != "" && snapshot != "{}" {
		_ = json.Unmarshal([]byte(snapshot), &e.Snapshot)
	}
	e.CreatedAt = parseTime(createdAt)
	e.UpdatedAt = parseTime(updatedAt)
	return e, nil
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// parseTime tries multiple SQLite timestamp layouts.
// go-sqlite3 may return RFC3339 or the plain "2006-01-02 15:04:05" format
// depending on the connection string and platform.
func parseTime(s string) time.Time {
	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05Z",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func jsonList(items []string) string {
	if len(items) == 0 {
		return "[]"
	}
	b, _ := json.Marshal(items)
	return string(b)
}

func parseList(s string) []string {
	if s == "" || s == "[]" {
		return []string{}
	}
	var out []string
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return []string{}
	}
	return out
}

// jsonOrNull marshals v, returning SQL NULL for nil pointers.
func jsonOrNull(v any) any {
	switch x := v.(type) {
	case *Health:
		if x == nil {
			return nil
		}
	case *Environment:
		if x == nil {
			return nil
		}
	case *Location:
		if x == nil {
			return nil
		}
	case *CaptureMetadata:
		if x == nil {
			return nil
		}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return string(b)
}

func jsonValue(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// annotationValue interprets CLI/API annotation input: empty leaves the
// field untouched, "-" clears it, anything else is the new value.
func annotationValue(s string) (value string, set bool) {
	switch s {
	case "":
		return "", false
	case "-":
		return "", true
	default:
		return s, true
	}
}
