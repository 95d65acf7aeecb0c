package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/bodypress/bodypress/internal/journal"
)

func newAnnotateCmd() *cobra.Command {
	var (
		userNote string
		userMood string
	)

	cmd := &cobra.Command{
		Use:   "annotate <date>",
		Short: "Attach your own note or mood to an entry",
		Long: `Set the user annotations on an existing entry. Annotations survive
regeneration. An omitted flag leaves the field untouched; pass "-" to
clear it.

Examples:
  bodypress annotate 2026-03-02 --note "best walk in weeks"
  bodypress annotate 2026-03-02 --mood content
  bodypress annotate 2026-03-02 --note -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date := args[0]
			if _, err := time.Parse(journal.DateLayout, date); err != nil {
				return fmt.Errorf("invalid date %q, want YYYY-MM-DD", date)
			}
			if userNote == "" && userMood == "" {
				return fmt.Errorf("nothing to change; pass --note or --mood")
			}

			store, closeStore, err := openJournal()
			if err != nil {
				return err
			}
			defer closeStore()

			if err := store.AnnotateEntry(date, userNote, userMood); err != nil {
				if errors.Is(err, journal.ErrNotFound) {
					return fmt.Errorf("no entry for %s", date)
				}
				return fmt.Errorf("annotate entry: %w", err)
			}

			e, err := store.GetEntry(date)
			if err != nil {
				return fmt.Errorf("read entry: %w", err)
			}

			fmt.Printf("%s — %s\n", e.Date, e.Headline)
			fmt.Printf("Note: %s\n", orNone(e.UserNote))
			fmt.Printf("Felt: %s\n", orNone(e.UserMood))
			return nil
		},
	}

	cmd.Flags().StringVar(&userNote, "note", "", `your note ("-" clears it)`)
	cmd.Flags().StringVar(&userMood, "mood", "", `your mood ("-" clears it)`)

	return cmd
}
