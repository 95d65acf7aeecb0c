// Package cli defines the Cobra command tree for the bodypress CLI.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// version, commit, date are set via -ldflags at build time.
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "bodypress",
	Short: "AI-narrated journal of your days, captured as you live them",
	Long: `Bodypress keeps a daily journal you don't have to write.

Captures — notes, mood, health metrics, weather, places — accumulate during
the day, and an AI backend (remote service or a fully on-device model) turns
each day into a narrated entry grounded in your recent history.

Run 'bodypress init' to set up ~/.bodypress, then 'bodypress capture' to log
your first moment.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute(v, c, d string) {
	version, commit, date = v, c, d
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(
		newInitCmd(),
		newCaptureCmd(),
		newGenerateCmd(),
		newShowCmd(),
		newContextCmd(),
		newModeCmd(),
		newModelCmd(),
		newAnnotateCmd(),
		newExportCmd(),
		newRunCmd(),
		newWatchCmd(),
		newServeCmd(),
		newMCPCmd(),
		newStatusCmd(),
		newVersionCmd(),
	)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("bodypress %s (commit %s, built %s)\n", version, commit, date)
		},
	}
}
