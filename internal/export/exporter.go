// Package export renders journal entries into shareable formats.
package export

import (
	"fmt"
	"strings"

	"github.com/bodypress/bodypress/internal/journal"
)

// ExportData is passed to every Exporter. Entries are expected newest
// first, the order the store returns them in.
type ExportData struct {
	Title   string
	Entries []journal.Entry
}

// Exporter renders ExportData to a string in a specific format.
type Exporter interface {
	Export(data ExportData) (string, error)
}

// registry maps format names to Exporter implementations.
var registry = map[string]Exporter{
	"markdown": &MarkdownExporter{},
	"json":     &JSONExporter{},
	"html":     &HTMLExporter{},
}

// Get returns the Exporter registered under name, and whether it was found.
func Get(name string) (Exporter, bool) {
	e, ok := registry[name]
	return e, ok
}

// ValidFormats returns the list of supported export format names.
func ValidFormats() []string {
	formats := make([]string, 0, len(registry))
	for k := range registry {
		formats = append(formats, k)
	}
	return formats
}

// statLine summarises an entry's daily snapshot in one line, skipping
// anything that was never measured.
func statLine(s journal.DailySnapshot) string {
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
	if s.SleepHours > 0 {
		parts = append(parts, fmt.Sprintf("%.1f h sleep", s.SleepHours))
	}
	if s.AvgHeartRate > 0 {
		parts = append(parts, fmt.Sprintf("%d bpm", s.AvgHeartRate))
	}
	if s.Workouts > 0 {
		parts = append(parts, fmt.Sprintf("%d workout(s)", s.Workouts))
	}
	return strings.Join(parts, " · ")
}
