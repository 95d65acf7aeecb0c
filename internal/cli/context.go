package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bodypress/bodypress/internal/config"
	"github.com/bodypress/bodypress/internal/window"
)

func newContextCmd() *cobra.Command {
	var (
		days  int
		stats bool
	)

	cmd := &cobra.Command{
		Use:   "context",
		Short: "Print the multi-day context window",
		Long: `Render recent entries into the exact context block the AI backend is
grounded with. The output is stable and copy-pasteable: the same entries
always produce the same text.

Examples:
  bodypress context
  bodypress context --days 14 > window.txt
  bodypress context --stats`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeStore, err := openJournal()
			if err != nil {
				return err
			}
			defer closeStore()

			if days <= 0 {
				cfg, err := config.Load()
				if err != nil {
					return err
				}
				days = cfg.Context.Days
			}

			tokenizer, err := window.NewTokenizer()
			if err != nil {
				tokenizer = nil
			}
			builder := window.NewBuilder(store, tokenizer)

			win, err := builder.Build(days)
			if err != nil {
				return fmt.Errorf("build context window: %w", err)
			}

			fmt.Print(win.Text)

			if stats {
				fmt.Fprintf(os.Stderr, "\n--- %d day(s), %d entr%s, ~%d tokens ---\n",
					win.Days, len(win.Entries), plural(len(win.Entries), "y", "ies"), win.Tokens)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&days, "days", "d", 0, "window span in days (default from config)")
	cmd.Flags().BoolVar(&stats, "stats", false, "print window size stats to stderr")

	return cmd
}
