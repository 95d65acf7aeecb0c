package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bodypress/bodypress/internal/backend"
	"github.com/bodypress/bodypress/internal/config"
	"github.com/bodypress/bodypress/internal/journal"
)

func newModeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mode [remote|local]",
		Short: "Show or switch the AI backend mode",
		Long: `Without an argument, show the active backend mode. With one, switch it.

In local mode every generation runs on-device; a failing local model skips
the day rather than falling back to the remote service. The choice persists
in the journal database and survives restarts.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeStore, err := openJournal()
			if err != nil {
				return err
			}
			defer closeStore()

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			if len(args) == 0 {
				log := cliLogger()
				router := buildRouter(cfg, store, log)
				router.Local().Resolve(cmd.Context())
				bc := router.Config()

				fmt.Printf("Mode:   %s\n", bc.Mode)
				fmt.Printf("Remote: %s\n", cfg.Remote.Model)
				fmt.Printf("Local:  %s (%s)\n", bc.ModelName, bc.Status)
				if bc.LastError != "" {
					fmt.Printf("        last error: %s\n", bc.LastError)
				}
				return nil
			}

			mode := backend.Mode(args[0])
			if mode != backend.ModeRemote && mode != backend.ModeLocal {
				return fmt.Errorf("invalid mode %q; valid: remote, local", args[0])
			}

			if err := store.SetSetting(journal.SettingMode, string(mode)); err != nil {
				return fmt.Errorf("persist mode: %w", err)
			}

			fmt.Printf("Backend mode set to %s.\n", mode)
			if mode == backend.ModeLocal {
				fmt.Println(`Check the on-device model with "bodypress model status".`)
			}
			return nil
		},
	}
}
