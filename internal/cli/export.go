package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/bodypress/bodypress/internal/export"
	"github.com/bodypress/bodypress/internal/journal"
)

func newExportCmd() *cobra.Command {
	var (
		format  string
		days    int
		from    string
		to      string
		outPath string
		title   string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export journal entries to markdown, JSON or HTML",
		Long: `Export stored entries to a portable format. By default the last 7
days are exported to stdout; use --out to write a file and --from/--to
to select an explicit date range.

Examples:
  bodypress export --format markdown --days 30 --out march.md
  bodypress export --format html --from 2026-03-01 --to 2026-03-31 --out march.html
  bodypress export --format json | jq .count`,
		RunE: func(cmd *cobra.Command, args []string) error {
			exp, ok := export.Get(format)
			if !ok {
				return fmt.Errorf("unknown format %q; valid formats: %s",
					format, strings.Join(export.ValidFormats(), ", "))
			}
			if (from == "") != (to == "") {
				return fmt.Errorf("--from and --to must be used together")
			}
			for _, d := range []string{from, to} {
				if d == "" {
					continue
				}
				if _, err := time.Parse(journal.DateLayout, d); err != nil {
					return fmt.Errorf("invalid date %q, want YYYY-MM-DD", d)
				}
			}

			store, closeStore, err := openJournal()
			if err != nil {
				return err
			}
			defer closeStore()

			var entries []journal.Entry
			if from != "" {
				entries, err = store.ListEntriesRange(from, to)
			} else {
				entries, err = store.ListRecentEntries(days)
			}
			if err != nil {
				return fmt.Errorf("load entries: %w", err)
			}

			out, err := exp.Export(export.ExportData{Title: title, Entries: entries})
			if err != nil {
				return fmt.Errorf("export: %w", err)
			}

			if outPath == "" {
				fmt.Print(string(out))
				return nil
			}
			if err := os.WriteFile(outPath, out, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", outPath, err)
			}
			fmt.Printf("Exported %d entr%s to %s\n", len(entries), plural(len(entries), "y", "ies"), outPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "markdown", "output format (markdown, json, html)")
	cmd.Flags().IntVar(&days, "days", 7, "number of most recent days to export")
	cmd.Flags().StringVar(&from, "from", "", "start date (YYYY-MM-DD, inclusive)")
	cmd.Flags().StringVar(&to, "to", "", "end date (YYYY-MM-DD, inclusive)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write to file instead of stdout")
	cmd.Flags().StringVar(&title, "title", "", "document title")

	return cmd
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
