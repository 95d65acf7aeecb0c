package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bodypress/bodypress/internal/config"
	"github.com/bodypress/bodypress/internal/db"
)

func newInitCmd() *cobra.Command {
	var skipPrompt bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Set up the Bodypress data directory",
		Long: `Create ~/.bodypress with its SQLite database, spool directory and a
default config.toml. Safe to re-run; existing data and config are kept.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := config.DataDir()
			if err != nil {
				return fmt.Errorf("resolve data directory: %w", err)
			}
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create data directory: %w", err)
			}

			spoolDir, err := config.SpoolDir()
			if err != nil {
				return err
			}
			if err := os.MkdirAll(spoolDir, 0o755); err != nil {
				return fmt.Errorf("create spool directory: %w", err)
			}

			dbPath, err := config.DBPath()
			if err != nil {
				return err
			}
			database, err := db.Open(dbPath)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			database.Close()

			cfgPath, err := config.Path()
			if err != nil {
				return err
			}
			freshConfig := false
			if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
				freshConfig = true
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			// First run: offer to store the remote API key right away.
			if freshConfig && !skipPrompt {
				fmt.Println("Optional: API key for the remote AI service?")
				fmt.Println("  (press Enter to skip — you can set BODYPRESS_API_KEY instead)")
				fmt.Print("> ")

				reader := bufio.NewReader(os.Stdin)
				line, _ := reader.ReadString('\n')
				if line = strings.TrimSpace(line); line != "" {
					cfg.Remote.APIKey = line
				}
			}

			if freshConfig {
				if err := config.Save(cfg); err != nil {
					return fmt.Errorf("write config: %w", err)
				}
			}

			fmt.Printf("Bodypress initialized in %s\n", dir)
			fmt.Printf("  database: %s\n", dbPath)
			fmt.Printf("  config:   %s\n", cfgPath)
			fmt.Printf("  spool:    %s\n", spoolDir)
			fmt.Println()
			fmt.Println(`Tip: log your first moment with "bodypress capture".`)
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipPrompt, "no-prompt", false, "Skip the interactive API key prompt")

	return cmd
}
