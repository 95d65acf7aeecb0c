package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/bodypress/bodypress/internal/backend"
	"github.com/bodypress/bodypress/internal/config"
	"github.com/bodypress/bodypress/internal/generate"
	"github.com/bodypress/bodypress/internal/journal"
)

func newGenerateCmd() *cobra.Command {
	var (
		userNote string
		userMood string
	)

	cmd := &cobra.Command{
		Use:   "generate [date]",
		Short: "Write (or rewrite) the journal entry for a day",
		Long: `Turn a day's captures into a narrated journal entry using the configured
AI backend. Without a date, today's entry is generated. Regenerating an
existing entry keeps its user annotations unless new ones are given.

A day with no data is skipped, never invented. In local mode a failing
on-device model skips the day too — nothing is ever sent remotely.`,
		Args: cobra.MaximumNArgs(1),
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

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			log := cliLogger()
			router := buildRouter(cfg, store, log)
			gen, _ := buildGenerator(cfg, router, store, log)

			captures, err := store.ListCapturesByDay(date)
			if err != nil {
				return fmt.Errorf("load captures: %w", err)
			}

			var fallback *journal.DailySnapshot
			if existing, err := store.GetEntry(date); err == nil {
				snap := existing.Snapshot
				fallback = &snap
				if userNote == "" {
					userNote = existing.UserNote
				}
				if userMood == "" {
					userMood = existing.UserMood
				}
			}

			fmt.Printf("Generating entry for %s (%d captures, %s mode)...\n",
				date, len(captures), router.Mode())

			result := gen.Generate(cmd.Context(), generate.Request{
				Date:     date,
				Captures: captures,
				Fallback: fallback,
				UserNote: userNote,
				UserMood: userMood,
			})
			if !result.OK() {
				switch result.Skipped {
				case generate.SkipNoData:
					fmt.Println("Nothing captured that day — no entry written.")
				case generate.SkipBackend:
					reason := fmt.Sprint(result.Err)
					if se, ok := backend.AsServiceError(result.Err); ok {
						reason = se.Message
					}
					fmt.Printf("Backend unavailable — no entry written (%s).\n", reason)
				default:
					fmt.Println("Backend answer was not usable — no entry written.")
				}
				return nil
			}

			if err := store.UpsertEntry(*result.Entry); err != nil {
				return fmt.Errorf("store entry: %w", err)
			}
			for _, c := range captures {
				if c.Processed {
					continue
				}
				if err := store.MarkCaptureProcessed(c.ID, nil); err != nil {
					log.Warn().Err(err).Str("id", c.ID).Msg("mark processed failed")
				}
			}

			e := *result.Entry
			fmt.Println()
			fmt.Printf("%s — %s\n", e.Date, e.Headline)
			fmt.Printf("%s %s\n", e.MoodEmoji, e.Mood)
			if e.Summary != "" {
				fmt.Println(e.Summary)
			}
			fmt.Println()
			fmt.Printf(`Full entry: "bodypress show %s"`+"\n", e.Date)
			return nil
		},
	}

	cmd.Flags().StringVar(&userNote, "note", "", "annotation to carry into the entry")
	cmd.Flags().StringVar(&userMood, "mood", "", "your own mood for the day")

	return cmd
}
