// Package cmd provides CLI commands for the pool monitor.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"zpoolmon/internal/config"
)

// validateCmd represents the validate command.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration",
	Long:  "Load and validate the config file, including thresholds, required fields, value ranges and the channel definitions it references.",
	Run:   runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

// runValidate executes the validate command logic.
func runValidate(cmd *cobra.Command, args []string) {
	configPath := GetConfigFile()

	// Load internally calls Validate
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config validation failed: %v\n", err)
		os.Exit(1)
	}

	if cfg.Alerting.ChannelsFile != "" {
		channels, err := config.LoadChannels(cfg.Alerting.ChannelsFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "channel validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("channels file ok: %s (%d enabled)\n", cfg.Alerting.ChannelsFile, config.CountEnabledChannels(channels))
	}

	fmt.Printf("config ok: %s\n", configPath)
}
