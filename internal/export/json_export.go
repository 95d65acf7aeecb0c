package export

import (
	"encoding/json"

	"github.com/bodypress/bodypress/internal/journal"
)

// JSONExporter renders ExportData as structured JSON.
type JSONExporter struct{}

type jsonOutput struct {
	Title   string          `json:"title"`
	Count   int             `json:"count"`
	Entries []journal.Entry `json:"entries"`
}

func (e *JSONExporter) Export(data ExportData) (string, error) {
	title := data.Title
	if title == "" {
		title = "Journal"
	}

	out := jsonOutput{
		Title:   title,
		Count:   len(data.Entries),
		Entries: data.Entries,
	}
	// Marshal nil slice as [] so consumers always see an array.
	if out.Entries == nil {
		out.Entries = []journal.Entry{}
	}

	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b) + "\n", nil
}
