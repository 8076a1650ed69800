// Package config provides configuration management for the pool monitor.
package config

import "time"

// Config is the root configuration structure for the pool monitor.
type Config struct {
	Source     SourceConfig     `mapstructure:"source"`
	Thresholds ThresholdsConfig `mapstructure:"thresholds"`
	Alerting   AlertingConfig   `mapstructure:"alerting"`
	Daemon     DaemonConfig     `mapstructure:"daemon"`
	Report     ReportConfig     `mapstructure:"report"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	HTTP       HTTPConfig       `mapstructure:"http"`
}

// SourceConfig configures the external pool administration tool invocation.
type SourceConfig struct {
	// Command is the pool administration binary. Resolved via PATH when
	// not absolute.
	Command string `mapstructure:"command" validate:"required"`
	// Timeout bounds one invocation of the tool; exceeding it fails the
	// whole cycle.
	Timeout time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

// ThresholdsConfig contains the threshold values issues are evaluated against.
type ThresholdsConfig struct {
	Capacity    ThresholdPair   `mapstructure:"capacity"`
	Errors      ErrorThresholds `mapstructure:"errors"`
	ScrubMaxAge int             `mapstructure:"scrub_max_age_days" validate:"gte=1"`
}

// ThresholdPair defines warning and critical thresholds for a percentage
// metric. Boundaries are inclusive on the lower edge of each band.
type ThresholdPair struct {
	Warning  float64 `mapstructure:"warning" validate:"gte=0,lte=100"`
	Critical float64 `mapstructure:"critical" validate:"gte=0,lte=100"`
}

// ErrorThresholds defines per-error-type warning counts. A vdev error
// counter reaching its threshold yields a warning issue for that type.
type ErrorThresholds struct {
	Read     int64 `mapstructure:"read" validate:"gte=0"`
	Write    int64 `mapstructure:"write" validate:"gte=0"`
	Checksum int64 `mapstructure:"checksum" validate:"gte=0"`
}

// ScrubMaxAgeDuration returns the scrub age limit as a duration.
func (t *ThresholdsConfig) ScrubMaxAgeDuration() time.Duration {
	return time.Duration(t.ScrubMaxAge) * 24 * time.Hour
}

// AlertingConfig configures the alert deduplication state machine.
type AlertingConfig struct {
	// ResendInterval is the minimum time between repeated notifications
	// for the same unresolved (pool, category) issue.
	ResendInterval time.Duration `mapstructure:"resend_interval" validate:"gt=0"`
	// StatePath is the on-disk location of the alert state document.
	StatePath string `mapstructure:"state_path" validate:"required"`
	// ChannelsFile is the notification channel definition file.
	ChannelsFile string `mapstructure:"channels_file"`
}

// DaemonConfig configures the continuous monitoring loop.
type DaemonConfig struct {
	// Interval is the time between check cycles.
	Interval time.Duration `mapstructure:"interval" validate:"gt=0"`
}

// ReportConfig contains configurations for one-shot report generation.
type ReportConfig struct {
	OutputDir string   `mapstructure:"output_dir"`
	Formats   []string `mapstructure:"formats" validate:"dive,oneof=excel html"`
	Timezone  string   `mapstructure:"timezone"`
}

// LoggingConfig contains configurations for logging.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json console"`
}

// HTTPConfig contains HTTP client configurations including retry settings.
type HTTPConfig struct {
	Retry RetryConfig `mapstructure:"retry"`
}

// RetryConfig defines retry behavior for webhook requests.
type RetryConfig struct {
	MaxRetries int           `mapstructure:"max_retries" validate:"gte=0,lte=10"`
	BaseDelay  time.Duration `mapstructure:"base_delay"`
}
