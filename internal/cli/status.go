package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bodypress/bodypress/internal/backend"
	"github.com/bodypress/bodypress/internal/config"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show journal and backend state",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			store, closeStore, err := openJournal()
			if err != nil {
				return err
			}
			defer closeStore()

			stats, err := store.Stats()
			if err != nil {
				return err
			}

			router := buildRouter(cfg, store, cliLogger())
			router.Local().Resolve(cmd.Context())
			bc := router.Config()

			span := "-"
			if stats.FirstEntry != "" {
				span = fmt.Sprintf("%s to %s", stats.FirstEntry, stats.LastEntry)
			}

			dir, _ := config.DataDir()

			fmt.Printf("\nData dir:    %s\n", dir)
			fmt.Printf("Captures:    %d (%d awaiting an entry)\n", stats.Captures, stats.Unprocessed)
			fmt.Printf("Entries:     %d\n", stats.Entries)
			fmt.Printf("Span:        %s\n", span)
			fmt.Printf("DB size:     %s\n", formatBytes(stats.DBSizeBytes))
			fmt.Printf("Mode:        %s\n", bc.Mode)
			if bc.Mode == backend.ModeLocal {
				fmt.Printf("Local model: %s (%s, %s)\n", orNone(bc.ModelName), bc.BackendKind, bc.Status)
			} else {
				fmt.Printf("Remote:      %s\n", cfg.Remote.Model)
			}
			fmt.Println()

			return nil
		},
	}
}

func formatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}
