// Package cmd provides CLI commands for the pool monitor.
package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"zpoolmon/internal/alertstore"
	"zpoolmon/internal/client/zpool"
	"zpoolmon/internal/config"
	"zpoolmon/internal/daemon"
	"zpoolmon/internal/model"
	"zpoolmon/internal/notify"
	"zpoolmon/internal/report"
	"zpoolmon/internal/service"
)

// Command flags
var (
	outputDir string   // Output directory for reports
	formats   []string // Output formats (excel, html)
	noReport  bool     // Skip report generation
)

// runCmd represents the run command.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one check cycle",
	Long: `Run a single complete check cycle:
1. Fetch pool list and status from the configured source command
2. Parse snapshots and evaluate thresholds
3. Reconcile issues against the persistent alert state
4. Dispatch new alerts and recovery notices
5. Optionally generate Excel and HTML reports

The exit code reflects the overall severity: 0 for ok or info,
1 for warning, 2 for critical.

Examples:
  # Run a check with the default config
  zpoolmon run -c config.yaml

  # Run a check and write reports
  zpoolmon run -c config.yaml -f excel,html -o ./reports

  # Run a check without reports
  zpoolmon run -c config.yaml --no-report`,
	Run: runCheck,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringSliceVarP(&formats, "format", "f", nil, "output formats (excel,html), comma separated")
	runCmd.Flags().StringVarP(&outputDir, "output", "o", "", "output directory for reports")
	runCmd.Flags().BoolVar(&noReport, "no-report", false, "skip report generation")
}

// runCheck executes a single check cycle.
func runCheck(cmd *cobra.Command, args []string) {
	cfg, logger := mustLoadConfig()

	store, d := buildDaemon(cfg, logger)
	store.Load()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Source.Timeout+30*time.Second)
	defer cancel()

	result, err := d.RunCycle(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "check failed: %v\n", err)
		os.Exit(1)
	}

	printSummary(result)

	if !noReport {
		if err := generateReports(cfg, result, logger); err != nil {
			logger.Error().Err(err).Msg("report generation failed")
			fmt.Fprintf(os.Stderr, "report generation failed: %v\n", err)
			os.Exit(1)
		}
	}

	os.Exit(exitCodeFor(result.OverallSeverity))
}

// mustLoadConfig loads the configuration and builds the root logger, or
// exits. The command line --log-level overrides the config file setting.
func mustLoadConfig() (*config.Config, zerolog.Logger) {
	configPath := GetConfigFile()
	cfg, err := config.Load(configPath)
	if err != nil {
		tmpLogger := setupLogger("error", "console")
		tmpLogger.Error().Err(err).Str("path", configPath).Msg("failed to load config")
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logLevel := cfg.Logging.Level
	if GetLogLevel() != "info" {
		logLevel = GetLogLevel()
	}
	logger := setupLogger(logLevel, cfg.Logging.Format)
	logger.Debug().
		Str("config_path", configPath).
		Str("log_level", logLevel).
		Str("log_format", cfg.Logging.Format).
		Msg("configuration loaded")

	return cfg, logger
}

// buildDaemon wires the full check pipeline from configuration.
func buildDaemon(cfg *config.Config, logger zerolog.Logger) (*alertstore.Store, *daemon.Daemon) {
	client := zpool.NewClient(&cfg.Source, logger)
	parser := service.NewParser(logger)
	monitor := service.NewMonitor(&cfg.Thresholds, logger)
	checker := service.NewChecker(client, parser, monitor, logger)

	store := alertstore.New(cfg.Alerting.StatePath, cfg.Alerting.ResendInterval, logger)

	channels, err := config.LoadChannels(cfg.Alerting.ChannelsFile)
	if err != nil {
		logger.Error().Err(err).Str("path", cfg.Alerting.ChannelsFile).Msg("failed to load channels, using console only")
		channels = nil
	}
	dispatcher := notify.NewDispatcher(channels, cfg.HTTP.Retry, logger)

	d := daemon.New(checker, store, dispatcher, cfg.Daemon.Interval, logger)
	return store, d
}

// generateReports writes the check result in each configured format.
func generateReports(cfg *config.Config, result *model.CheckResult, logger zerolog.Logger) error {
	selected := resolveFormats(cfg)
	if len(selected) == 0 {
		return nil
	}

	dir := resolveOutputDir(cfg)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	timezone := resolveTimezone(cfg, logger)
	registry := report.NewRegistry(timezone)

	baseName := "zpool_check_" + result.Timestamp.In(timezone).Format("20060102_150405")

	for _, format := range selected {
		writer, err := registry.Get(format)
		if err != nil {
			return err
		}

		outputPath := filepath.Join(dir, baseName)
		if err := writer.Write(result, outputPath); err != nil {
			return fmt.Errorf("failed to write %s report: %w", format, err)
		}

		logger.Info().Str("format", format).Str("path", outputPath).Msg("report generated")
		fmt.Printf("report written: %s (%s)\n", outputPath, format)
	}

	return nil
}

// printSummary prints the check result summary to stdout.
func printSummary(result *model.CheckResult) {
	fmt.Println("-----------------------------------")
	fmt.Printf("Overall: %s\n", result.OverallSeverity)
	if result.Summary != nil {
		fmt.Printf("  Pools:    %d (%d healthy)\n", result.Summary.TotalPools, result.Summary.HealthyPools)
		fmt.Printf("  Issues:   %d\n", result.Summary.TotalIssues)
		fmt.Printf("  Info:     %d\n", result.Summary.InfoCount)
		fmt.Printf("  Warning:  %d\n", result.Summary.WarningCount)
		fmt.Printf("  Critical: %d\n", result.Summary.CriticalCount)
	}
	for _, issue := range result.Issues {
		fmt.Printf("  [%s] %s: %s\n", issue.Severity, issue.PoolName, issue.Message)
	}
}

// exitCodeFor maps the overall severity to a process exit code.
func exitCodeFor(severity model.Severity) int {
	switch severity {
	case model.SeverityCritical:
		return 2
	case model.SeverityWarning:
		return 1
	default:
		return 0
	}
}

// resolveFormats determines the output formats to use.
// Command line flags take precedence over config file.
func resolveFormats(cfg *config.Config) []string {
	if len(formats) > 0 {
		return formats
	}
	return cfg.Report.Formats
}

// resolveOutputDir determines the output directory to use.
// Command line flags take precedence over config file.
func resolveOutputDir(cfg *config.Config) string {
	if outputDir != "" {
		return outputDir
	}
	if cfg.Report.OutputDir != "" {
		return cfg.Report.OutputDir
	}
	return "."
}

// resolveTimezone loads the report timezone from configuration.
func resolveTimezone(cfg *config.Config, logger zerolog.Logger) *time.Location {
	if cfg.Report.Timezone == "" {
		return time.UTC
	}
	tz, err := time.LoadLocation(cfg.Report.Timezone)
	if err != nil {
		logger.Warn().Err(err).Str("timezone", cfg.Report.Timezone).Msg("invalid timezone, falling back to UTC")
		return time.UTC
	}
	return tz
}
