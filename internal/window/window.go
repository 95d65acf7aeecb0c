// Package window renders recent journal entries into the canonical
// multi-day context block. The block doubles as grounding text for the
// generation backend and as a human export, so its layout is a strict
// compatibility contract: field order is fixed, and a value that was never
// collected is omitted or marked "no data", never written as a zero.
package window

import (
	"fmt"
	"strings"

	"github.com/bodypress/bodypress/internal/journal"
)

// DefaultDays is the window span when the caller does not choose one.
const DefaultDays = 7

// Footer closes every rendered window.
const Footer = "END CONTEXT WINDOW"

const emptyMarker = "no entries stored yet"

// EntrySource supplies the most recent entries, newest first.
type EntrySource interface {
	ListRecentEntries(days int) ([]journal.Entry, error)
}

// Window is one built context window.
type Window struct {
	Days    int
	Entries []journal.Entry
	Text    string
	Tokens  int
}

// Builder assembles context windows from stored entries.
type Builder struct {
	source    EntrySource
	tokenizer *Tokenizer
}

// NewBuilder creates a Builder. tokenizer may be nil; token counts then
// fall back to an estimate.
func NewBuilder(source EntrySource, tokenizer *Tokenizer) *Builder {
	return &Builder{source: source, tokenizer: tokenizer}
}

// Build loads the last days entries and renders them. days <= 0 means
// DefaultDays.
func (b *Builder) Build(days int) (*Window, error) {
	if days <= 0 {
		days = DefaultDays
	}
	entries, err := b.source.ListRecentEntries(days)
	if err != nil {
		return nil, fmt.Errorf("window: load entries: %w", err)
	}
	text := Render(entries, days)
	return &Window{
		Days:    days,
		Entries: entries,
		Text:    text,
		Tokens:  b.tokenizer.Count(text),
	}, nil
}

// Render serializes entries (expected newest first) into the canonical
// window text. It is pure: same entries, same text.
func Render(entries []journal.Entry, days int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d-DAY CONTEXT WINDOW\n", days)
	b.WriteString(countLine(len(entries)))
	b.WriteString("\n\n")

	if len(entries) == 0 {
		b.WriteString(emptyMarker)
		b.WriteString("\n\n")
	} else {
		for _, e := range entries {
			writeEntry(&b, e)
			b.WriteString("\n")
		}
	}

	b.WriteString(Footer)
	b.WriteString("\n")
	return b.String()
}

func countLine(n int) string {
	if n == 1 {
		return "1 entry"
	}
	return fmt.Sprintf("%d entries", n)
}

// writeEntry renders one day's section. Field order is fixed; optional
// lines are dropped entirely when their value was not collected.
func writeEntry(b *strings.Builder, e journal.Entry) {
	b.WriteString(e.Date)
	b.WriteString("\n")

	mood := string(e.Mood)
	if mood == "" {
		mood = string(journal.MoodCalm)
	}
	if e.MoodEmoji != "" {
		fmt.Fprintf(b, "Mood: %s %s\n", mood, e.MoodEmoji)
	} else {
		fmt.Fprintf(b, "Mood: %s\n", mood)
	}

	s := e.Snapshot
	if s.SleepHours > 0 {
		fmt.Fprintf(b, "Sleep: %.1f h\n", s.SleepHours)
	} else {
		b.WriteString("Sleep: no data\n")
	}

	if line := movementLine(s); line != "" {
		fmt.Fprintf(b, "Movement: %s\n", line)
	} else {
		b.WriteString("Movement: no data\n")
	}

	if s.Workouts > 0 {
		fmt.Fprintf(b, "Workouts: %d session(s)\n", s.Workouts)
	}
	if s.AvgHeartRate > 0 {
		fmt.Fprintf(b, "Heart rate: %d bpm\n", s.AvgHeartRate)
	}
	if line := environmentLine(s); line != "" {
		fmt.Fprintf(b, "Environment: %s\n", line)
	}
	if len(s.CalendarTitles) > 0 {
		fmt.Fprintf(b, "Calendar: %d event(s): %s\n",
			len(s.CalendarTitles), strings.Join(s.CalendarTitles, ", "))
	}

	if e.HasNarrative() {
		fmt.Fprintf(b, "Headline: %s\n", e.Headline)
		if e.Summary != "" {
			fmt.Fprintf(b, "Summary: %s\n", e.Summary)
		}
	}
	if e.UserMood != "" {
		fmt.Fprintf(b, "User mood: %s\n", e.UserMood)
	}
	if e.UserNote != "" {
		fmt.Fprintf(b, "User note: %s\n", e.UserNote)
	}
}

// movementLine combines the day's activity counters, skipping zeros.
// Returns "" when nothing was measured.
func movementLine(s journal.DailySnapshot) string {
	var parts []string
	if s.Steps > 0 {
		parts = append(parts, fmt.Sprintf("%d steps", s.Steps))
	}
	if s.DistanceKm > 0 {
		parts = append(parts, fmt.Sprintf("%.1f km", s.DistanceKm))
	}
	if s.ActiveCalories > 0 {
		parts = append(parts, fmt.Sprintf("%d kcal", s.ActiveCalories))
	}
	return strings.Join(parts, ", ")
}

// environmentLine combines whichever environment fields were collected.
// The city renders as a "(City)" suffix on the weather description, or on
// its own when no description exists. A present pointer with value zero is
// a real measurement and is rendered.
func environmentLine(s journal.DailySnapshot) string {
	var parts []string
	if s.TempC != nil {
		parts = append(parts, fmt.Sprintf("%.1f°C", *s.TempC))
	}

	place := ""
	if s.WeatherDesc != nil && *s.WeatherDesc != "" {
		place = *s.WeatherDesc
	}
	if s.City != nil && *s.City != "" {
		if place != "" {
			place += " (" + *s.City + ")"
		} else {
			place = "(" + *s.City + ")"
		}
	}
	if place != "" {
		parts = append(parts, place)
	}

	if s.AQI != nil {
		parts = append(parts, fmt.Sprintf("AQI %d", *s.AQI))
	}
	if s.UVIndex != nil {
		parts = append(parts, fmt.Sprintf("UV %d", *s.UVIndex))
	}
	return strings.Join(parts, ", ")
}
