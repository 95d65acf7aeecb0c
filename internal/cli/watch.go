package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bodypress/bodypress/internal/config"
	"github.com/bodypress/bodypress/internal/spool"
)

func newWatchCmd() *cobra.Command {
	var (
		debounceMs int
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch the spool directory and ingest dropped captures",
		Long: `Start a long-running watcher over the spool directory. Sensor bridges
(phone shortcuts, wearable sync jobs, cron scripts) drop capture JSON
files there; the watcher ingests each file into the journal and
removes it.

Drops are debounced so a bridge syncing several files at once is
batched into a single ingest pass. Malformed files are set aside with
a .bad suffix instead of being retried forever.

Press Ctrl-C to stop.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeStore, err := openJournal()
			if err != nil {
				return err
			}
			defer closeStore()

			spoolDir, err := config.SpoolDir()
			if err != nil {
				return err
			}

			log := daemonLogger("watch", verbose)
			debounce := time.Duration(debounceMs) * time.Millisecond

			watcher := spool.NewWatcher(spoolDir, store, log, debounce)

			fmt.Printf("Watching %s for captures (debounce %s). Press Ctrl-C to stop.\n",
				spoolDir, debounce)

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			// Handle Ctrl-C gracefully.
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				<-sigCh
				fmt.Println("\nStopping watcher.")
				cancel()
			}()

			return watcher.Run(ctx)
		},
	}

	cmd.Flags().IntVar(&debounceMs, "debounce", 500, "debounce interval in milliseconds")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log at debug level")

	return cmd
}
