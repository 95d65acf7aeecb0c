// Package journal defines Bodypress's data entities: capture records,
// daily journal entries and the aggregate snapshot that links them.
package journal

import "time"

// DateLayout is the calendar-date key format for daily entries.
const DateLayout = "2006-01-02"

// HeadlineUnwritten marks an entry whose narrative has not been generated yet.
const HeadlineUnwritten = "Not yet written"

// CaptureSource records how a capture was initiated.
type CaptureSource string

const (
	SourceManual    CaptureSource = "manual"
	SourceScheduled CaptureSource = "background-scheduled"
	SourceTriggered CaptureSource = "background-triggered"
)

// ValidCaptureSource returns true if s is a recognised capture source.
func ValidCaptureSource(s CaptureSource) bool {
	switch s {
	case SourceManual, SourceScheduled, SourceTriggered:
		return true
	}
	return false
}

// CaptureTrigger records what prompted a capture.
type CaptureTrigger string

const (
	TriggerTime     CaptureTrigger = "time"
	TriggerLocation CaptureTrigger = "location"
	TriggerActivity CaptureTrigger = "activity"
	TriggerManual   CaptureTrigger = "manual"
	TriggerNone     CaptureTrigger = "none"
)

// ValidCaptureTrigger returns true if t is a recognised capture trigger.
func ValidCaptureTrigger(t CaptureTrigger) bool {
	switch t {
	case TriggerTime, TriggerLocation, TriggerActivity, TriggerManual, TriggerNone:
		return true
	}
	return false
}

// Health is one sensor reading of activity and body metrics.
// Counters (steps, calories, distance, workouts) are cumulative for the day
// at the moment of capture; sleep covers the previous night.
type Health struct {
	Steps          int     `json:"steps"`
	ActiveCalories int     `json:"active_calories"`
	DistanceKm     float64 `json:"distance_km"`
	HeartRate      int     `json:"heart_rate"`
	SleepHours     float64 `json:"sleep_hours"`
	Workouts       int     `json:"workouts"`
}

// Environment is one reading of outdoor conditions. Fields are pointers
// because providers report them independently; nil means "not collected".
type Environment struct {
	TempC       *float64 `json:"temp_c,omitempty"`
	WeatherDesc *string  `json:"weather_desc,omitempty"`
	HumidityPct *int     `json:"humidity_pct,omitempty"`
	WindKph     *float64 `json:"wind_kph,omitempty"`
	PressureHPa *float64 `json:"pressure_hpa,omitempty"`
	AQI         *int     `json:"aqi,omitempty"`
	UVIndex     *int     `json:"uv_index,omitempty"`
}

// Location is one position fix with reverse-geocoded place names.
type Location struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	AltitudeM *float64 `json:"altitude_m,omitempty"`
	AccuracyM *float64 `json:"accuracy_m,omitempty"`
	City      string   `json:"city,omitempty"`
	Region    string   `json:"region,omitempty"`
	Country   string   `json:"country,omitempty"`
}

// Capture is a single timestamped multi-sensor snapshot. Captures are
// immutable once stored; only Processed, ProcessedAt and Insights are set
// later, when the capture has been folded into a daily entry.
type Capture struct {
	ID          string     `json:"id"`
	Timestamp   time.Time  `json:"timestamp"`
	Processed   bool       `json:"processed"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`

	Note string   `json:"note,omitempty"`
	Mood string   `json:"mood,omitempty"`
	Tags []string `json:"tags"`

	Health         *Health      `json:"health,omitempty"`
	Environment    *Environment `json:"environment,omitempty"`
	Location       *Location    `json:"location,omitempty"`
	CalendarTitles []string     `json:"calendar_titles"`

	Source     CaptureSource  `json:"source"`
	Trigger    CaptureTrigger `json:"trigger"`
	DurationMs int            `json:"duration_ms"`
	Errors     []string       `json:"errors"`
	Battery    *int           `json:"battery,omitempty"`

	Insights *CaptureMetadata `json:"insights,omitempty"`
}

// Day returns the capture's calendar date in DateLayout.
func (c Capture) Day() string {
	return c.Timestamp.Format(DateLayout)
}

// DailySnapshot aggregates one day's captures into the figures shown in a
// journal entry and rendered into the context window. Pointer fields carry
// the not-collected/measured distinction through to the renderer.
type DailySnapshot struct {
	Steps          int     `json:"steps"`
	ActiveCalories int     `json:"active_calories"`
	DistanceKm     float64 `json:"distance_km"`
	SleepHours     float64 `json:"sleep_hours"`
	AvgHeartRate   int     `json:"avg_heart_rate"`
	Workouts       int     `json:"workouts"`

	TempC       *float64 `json:"temp_c,omitempty"`
	WeatherDesc *string  `json:"weather_desc,omitempty"`
	City        *string  `json:"city,omitempty"`
	AQI         *int     `json:"aqi,omitempty"`
	UVIndex     *int     `json:"uv_index,omitempty"`

	CalendarTitles []string `json:"calendar_titles"`
}

// IsEmpty reports whether the snapshot carries no measured data at all.
func (s DailySnapshot) IsEmpty() bool {
	return s.Steps == 0 && s.ActiveCalories == 0 && s.DistanceKm == 0 &&
		s.SleepHours == 0 && s.AvgHeartRate == 0 && s.Workouts == 0 &&
		s.TempC == nil && s.WeatherDesc == nil && s.City == nil &&
		s.AQI == nil && s.UVIndex == nil && len(s.CalendarTitles) == 0
}

// Entry is the per-day narrative record. At most one exists per calendar
// date. Regeneration replaces the narrative fields but preserves user
// annotations unless explicitly cleared.
type Entry struct {
	Date      string        `json:"date"` // DateLayout key
	Headline  string        `json:"headline"`
	Summary   string        `json:"summary"`
	Body      string        `json:"body"`
	Mood      Mood          `json:"mood"`
	MoodEmoji string        `json:"mood_emoji"`
	Tags      []string      `json:"tags"`
	Snapshot  DailySnapshot `json:"snapshot"`

	UserNote string `json:"user_note,omitempty"`
	UserMood string `json:"user_mood,omitempty"`

	AIGenerated bool      `json:"ai_generated"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// HasNarrative reports whether the entry's narrative has been written.
func (e Entry) HasNarrative() bool {
	return e.Headline != "" && e.Headline != HeadlineUnwritten
}

// Stats summarises what's stored in the journal.
type Stats struct {
	Captures    int
	Unprocessed int
	Entries     int
	FirstEntry  string
	LastEntry   string
	DBSizeBytes int64
}
