// Package cmd provides CLI commands for the pool monitor.
package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// daemonCmd represents the daemon command.
var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run continuous monitoring",
	Long: `Run the monitor as a long-lived process. A full check cycle runs
at the configured interval; alert state persists across cycles and
across restarts. SIGINT or SIGTERM stops the loop after the cycle in
flight completes.

Examples:
  # Run with the default config
  zpoolmon daemon -c config.yaml

  # Run with debug logging
  zpoolmon daemon -c config.yaml --log-level debug`,
	Run: runDaemon,
}

func init() {
	rootCmd.AddCommand(daemonCmd)
}

// runDaemon starts the monitoring loop and blocks until a stop signal.
func runDaemon(cmd *cobra.Command, args []string) {
	cfg, logger := mustLoadConfig()

	_, d := buildDaemon(cfg, logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := d.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("daemon exited with error")
		fmt.Fprintf(os.Stderr, "daemon failed: %v\n", err)
		os.Exit(1)
	}
}
