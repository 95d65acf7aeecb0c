package export

import (
	"fmt"
	"strings"

	"github.com/bodypress/bodypress/internal/journal"
)

// MarkdownExporter renders journal entries as generic markdown.
type MarkdownExporter struct{}

func (e *MarkdownExporter) Export(data ExportData) (string, error) {
	title := data.Title
	if title == "" {
		title = "Journal"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)

	if len(data.Entries) == 0 {
		b.WriteString("_No entries._\n")
		return b.String(), nil
	}

	for _, entry := range data.Entries {
		b.WriteString(renderEntryMarkdown(entry))
	}

	return b.String(), nil
}

func renderEntryMarkdown(entry journal.Entry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s — %s\n\n", entry.Date, entry.Headline)

	if entry.Mood != "" {
		fmt.Fprintf(&b, "%s %s\n\n", entry.MoodEmoji, entry.Mood)
	}
	if line := statLine(entry.Snapshot); line != "" {
		fmt.Fprintf(&b, "> %s\n\n", line)
	}
	if entry.Summary != "" {
		fmt.Fprintf(&b, "_%s_\n\n", entry.Summary)
	}
	if entry.Body != "" {
		b.WriteString(entry.Body)
		b.WriteString("\n\n")
	}
	if len(entry.Snapshot.CalendarTitles) > 0 {
		b.WriteString("**Calendar:** ")
		b.WriteString(strings.Join(entry.Snapshot.CalendarTitles, ", "))
		b.WriteString("\n\n")
	}
	if len(entry.Tags) > 0 {
		tags := make([]string, len(entry.Tags))
		for i, t := range entry.Tags {
			tags[i] = "#" + t
		}
		b.WriteString(strings.Join(tags, " "))
		b.WriteString("\n\n")
	}
	if entry.UserNote != "" {
		fmt.Fprintf(&b, "**Note:** %s\n\n", entry.UserNote)
	}
	if entry.UserMood != "" {
		fmt.Fprintf(&b, "**Felt:** %s\n\n", entry.UserMood)
	}
	return b.String()
}
