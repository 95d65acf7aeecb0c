package cli

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/bodypress/bodypress/internal/backend"
	"github.com/bodypress/bodypress/internal/config"
	"github.com/bodypress/bodypress/internal/journal"
)

func newModelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "model",
		Short: "Manage the on-device model",
		Long: `Inspect and drive the local model lifecycle: download it from the
runtime's registry, load it into memory, unload it, or remove it.

The runtime daemon (e.g. Ollama) must be running for these commands.`,
	}

	cmd.AddCommand(
		newModelStatusCmd(),
		newModelDownloadCmd(),
		newModelActivateCmd(),
		newModelDeactivateCmd(),
		newModelDeleteCmd(),
	)
	return cmd
}

func newModelStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the local model's lifecycle state",
		RunE: func(cmd *cobra.Command, args []string) error {
			local, store, cleanup, err := openLocal(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			local.Resolve(cmd.Context())
			mode := backend.ParseMode(store.SettingOr(journal.SettingMode, ""))
			printModelConfig(local.Config(mode))
			return nil
		},
	}
}

func newModelDownloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "download [name]",
		Short: "Download the local model",
		Long: `Pull the model from the runtime's registry. With a name argument the
configured model is switched first; the choice persists.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			local, store, cleanup, err := openLocal(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			if len(args) == 1 {
				local.SetModel(args[0])
				if err := store.SetSetting(journal.SettingLocalModel, args[0]); err != nil {
					return fmt.Errorf("persist model name: %w", err)
				}
			}

			bar := progressbar.NewOptions(100,
				progressbar.OptionSetDescription(fmt.Sprintf("  Downloading %s", local.ModelName())),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionClearOnFinish(),
			)

			err = local.Download(cmd.Context(), func(p float64) {
				_ = bar.Set(int(p * 100))
			})
			_ = bar.Finish()
			if err != nil {
				return fmt.Errorf("download failed: %s", local.LastError())
			}

			fmt.Printf("%s downloaded.\n", local.ModelName())
			fmt.Println(`Load it with "bodypress model activate".`)
			return nil
		},
	}
}

func newModelActivateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "activate",
		Short: "Load the downloaded model into memory",
		RunE: func(cmd *cobra.Command, args []string) error {
			local, _, cleanup, err := openLocal(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			local.Resolve(cmd.Context())
			status := local.Activate(cmd.Context())
			return reportLifecycle(local, status, backend.StatusReady, "ready for on-device generation")
		},
	}
}

func newModelDeactivateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deactivate",
		Short: "Unload the model from memory",
		RunE: func(cmd *cobra.Command, args []string) error {
			local, _, cleanup, err := openLocal(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			local.Resolve(cmd.Context())
			status := local.Deactivate(cmd.Context())
			return reportLifecycle(local, status, backend.StatusDownloaded, "unloaded, still on disk")
		},
	}
}

func newModelDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete",
		Short: "Remove the model from disk",
		RunE: func(cmd *cobra.Command, args []string) error {
			local, store, cleanup, err := openLocal(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			local.Resolve(cmd.Context())
			status := local.Delete(cmd.Context())
			if status == backend.StatusNotDownloaded {
				if err := store.SetSetting(journal.SettingLocalModel, ""); err != nil {
					return fmt.Errorf("clear model name: %w", err)
				}
			}
			return reportLifecycle(local, status, backend.StatusNotDownloaded, "removed")
		},
	}
}

// openLocal assembles the local lifecycle for the model subcommands.
func openLocal(cmd *cobra.Command) (*backend.LocalModel, *journal.Store, func(), error) {
	store, closeStore, err := openJournal()
	if err != nil {
		return nil, nil, nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		closeStore()
		return nil, nil, nil, err
	}
	return buildLocal(cfg, store, cliLogger()), store, closeStore, nil
}

// reportLifecycle prints the outcome of a non-raising lifecycle call.
func reportLifecycle(local *backend.LocalModel, got, want backend.Status, doneMsg string) error {
	if got == want {
		fmt.Printf("%s %s.\n", local.ModelName(), doneMsg)
		return nil
	}
	if msg := local.LastError(); msg != "" {
		return fmt.Errorf("%s (state: %s)", msg, got)
	}
	return fmt.Errorf("unexpected state: %s", got)
}

func printModelConfig(c backend.Config) {
	fmt.Printf("Backend: %s\n", c.BackendKind)
	fmt.Printf("Model:   %s\n", orNone(c.ModelName))
	fmt.Printf("State:   %s\n", c.Status)
	if c.Status == backend.StatusDownloading {
		fmt.Printf("Progress: %.0f%%\n", c.Progress*100)
	}
	if c.LastError != "" {
		fmt.Printf("Last error: %s\n", c.LastError)
	}
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
