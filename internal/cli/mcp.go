package cli

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/bodypress/bodypress/internal/config"
	"github.com/bodypress/bodypress/internal/mcp"
	"github.com/bodypress/bodypress/internal/platform/logger"
)

func newMCPCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve journal tools over the Model Context Protocol (stdio)",
		Long: `Start an MCP server on stdin/stdout so agent hosts can log captures,
read context windows and compose entries.

Example client configuration:

  {
    "mcpServers": {
      "bodypress": {
        "command": "bodypress",
        "args": ["mcp"]
      }
    }
  }

Logs are discarded by default to keep the stdio transport clean; pass
--verbose to log JSON to stderr.`,
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

			log := logger.Discard()
			if verbose {
				log = logger.New("mcp", zerolog.DebugLevel)
			}

			router := buildRouter(cfg, store, log)
			gen, windows := buildGenerator(cfg, router, store, log)

			srv := mcp.NewServer(store, windows, gen, log, version)
			return srv.Run()
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log JSON to stderr")

	return cmd
}
