// Package config provides configuration management for the pool monitor.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Load reads configuration from the specified YAML file and environment
// variables. Environment variables take precedence over file values.
// Environment variable format: ZPOOLMON_<SECTION>_<KEY>
// (e.g., ZPOOLMON_ALERTING_RESEND_INTERVAL).
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults first
	setDefaults(v)

	// Configure environment variable binding
	v.SetEnvPrefix("ZPOOLMON")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath == "" {
		return nil, fmt.Errorf("config file path is required")
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", configPath)
	}

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults sets default values for all configuration options.
func setDefaults(v *viper.Viper) {
	// Source defaults
	v.SetDefault("source.command", "zpool")
	v.SetDefault("source.timeout", 30*time.Second)

	// Threshold defaults
	v.SetDefault("thresholds.capacity.warning", 80.0)
	v.SetDefault("thresholds.capacity.critical", 90.0)
	v.SetDefault("thresholds.errors.read", 1)
	v.SetDefault("thresholds.errors.write", 1)
	v.SetDefault("thresholds.errors.checksum", 1)
	v.SetDefault("thresholds.scrub_max_age_days", 30)

	// Alerting defaults
	v.SetDefault("alerting.resend_interval", 24*time.Hour)
	v.SetDefault("alerting.state_path", "/var/lib/zpoolmon/alerts.json")
	v.SetDefault("alerting.channels_file", "")

	// Daemon defaults
	v.SetDefault("daemon.interval", 5*time.Minute)

	// Report defaults
	v.SetDefault("report.output_dir", "./reports")
	v.SetDefault("report.formats", []string{})
	v.SetDefault("report.timezone", "UTC")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// HTTP retry defaults
	v.SetDefault("http.retry.max_retries", 3)
	v.SetDefault("http.retry.base_delay", 1*time.Second)
}
