package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/bodypress/bodypress/internal/journal"
	"github.com/bodypress/bodypress/internal/platform/metrics"
)

func newCaptureCmd() *cobra.Command {
	var (
		mood   string
		tags   string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "capture [note]",
		Short: "Log a moment into today's journal",
		Long: `Store a capture: a timestamped note with optional mood and tags. Captures
accumulate during the day and are woven into the day's entry by
'bodypress generate' or the run daemon.

Examples:
  bodypress capture "long walk along the river" --mood happy --tags outdoors
  bodypress capture                      # prompts for the note
  echo "coffee with Ana" | bodypress capture`,
		RunE: func(cmd *cobra.Command, args []string) error {
			note := strings.Join(args, " ")

			if note == "" {
				if term.IsTerminal(int(os.Stdin.Fd())) {
					fmt.Print("What's happening? > ")
					reader := bufio.NewReader(os.Stdin)
					line, _ := reader.ReadString('\n')
					note = strings.TrimSpace(line)
				} else {
					data, err := io.ReadAll(os.Stdin)
					if err != nil {
						return fmt.Errorf("read stdin: %w", err)
					}
					note = strings.TrimSpace(string(data))
				}
			}

			if note == "" && mood == "" && tags == "" {
				return fmt.Errorf("nothing to capture; pass a note, --mood or --tags")
			}

			store, closeStore, err := openJournal()
			if err != nil {
				return err
			}
			defer closeStore()

			c := journal.TakeCapture(cmd.Context(), journal.Providers{}, journal.CaptureOptions{
				Note:    note,
				Mood:    mood,
				Tags:    parseTags(tags),
				Source:  journal.SourceManual,
				Trigger: journal.TriggerManual,
			})

			id, err := store.InsertCapture(c)
			if err != nil {
				return fmt.Errorf("store capture: %w", err)
			}
			metrics.CapturesTotal.WithLabelValues(string(journal.SourceManual)).Inc()

			stored, err := store.GetCapture(id)
			if err != nil {
				return fmt.Errorf("read back capture: %w", err)
			}

			if asJSON {
				b, err := json.MarshalIndent(stored, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(b))
				return nil
			}

			fmt.Printf("Captured %s (%s)\n", shortID(id), stored.Timestamp.Format("15:04"))
			return nil
		},
	}

	cmd.Flags().StringVarP(&mood, "mood", "m", "", "how this moment feels, free-form")
	cmd.Flags().StringVarP(&tags, "tags", "t", "", "comma-separated tags")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the stored capture as JSON")

	return cmd
}

// shortID trims a capture ID for display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
