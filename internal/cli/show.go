package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/bodypress/bodypress/internal/journal"
)

func newShowCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show [date]",
		Short: "Print a day's journal entry",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date := time.Now().Format(journal.DateLayout)
			if len(args) == 1 {
				if _, err := time.Parse(journal.DateLayout, args[0]); err != nil {
					return fmt.Errorf("invalid date %q, want YYYY-MM-DD", args[0])
				}
				date = args[0]
			}

			store, closeStore, err := openJournal()
			if err != nil {
				return err
			}
			defer closeStore()

			e, err := store.GetEntry(date)
			if err != nil {
				if errors.Is(err, journal.ErrNotFound) {
					return fmt.Errorf("no entry for %s. Run `bodypress generate %s` to write one", date, date)
				}
				return fmt.Errorf("read entry: %w", err)
			}

			if asJSON {
				b, err := json.MarshalIndent(e, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(b))
				return nil
			}

			fmt.Print(renderEntry(e))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the entry as JSON")

	return cmd
}

// renderEntry formats one entry for the terminal.
func renderEntry(e journal.Entry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n%s — %s\n", e.Date, e.Headline)
	fmt.Fprintf(&b, "%s %s\n", e.MoodEmoji, e.Mood)

	if line := snapshotLine(e.Snapshot); line != "" {
		fmt.Fprintf(&b, "%s\n", line)
	}
	b.WriteString("\n")

	if e.Summary != "" {
		fmt.Fprintf(&b, "%s\n\n", e.Summary)
	}
	if e.Body != "" {
		fmt.Fprintf(&b, "%s\n\n", e.Body)
	}

	if len(e.Tags) > 0 {
		tags := make([]string, len(e.Tags))
		for i, t := range e.Tags {
			tags[i] = "#" + t
		}
		fmt.Fprintf(&b, "%s\n", strings.Join(tags, " "))
	}
	if e.UserNote != "" {
		fmt.Fprintf(&b, "Note: %s\n", e.UserNote)
	}
	if e.UserMood != "" {
		fmt.Fprintf(&b, "Felt: %s\n", e.UserMood)
	}
	return b.String()
}

// snapshotLine summarises measured daily figures, skipping zeros.
func snapshotLine(s journal.DailySnapshot) string {
	var parts []string
	if s.Steps > 0 {
		parts = append(parts, fmt.Sprintf("%d steps", s.Steps))
	}
	if s.DistanceKm > 0 {
		parts = append(parts, fmt.Sprintf("%.1f km", s.DistanceKm))
	}
	if s.SleepHours > 0 {
		parts = append(parts, fmt.Sprintf("%.1f h sleep", s.SleepHours))
	}
	if s.Workouts > 0 {
		parts = append(parts, fmt.Sprintf("%d workout(s)", s.Workouts))
	}
	if s.TempC != nil {
		parts = append(parts, fmt.Sprintf("%.1f°C", *s.TempC))
	}
	if s.City != nil && *s.City != "" {
		parts = append(parts, *s.City)
	}
	return strings.Join(parts, " · ")
}
