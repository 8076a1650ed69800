package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createValidConfig returns a config that passes validation.
func createValidConfig() *Config {
	return &Config{
		Source: SourceConfig{
			Command: "zpool",
			Timeout: 30 * time.Second,
		},
		Thresholds: ThresholdsConfig{
			Capacity:    ThresholdPair{Warning: 80, Critical: 90},
			Errors:      ErrorThresholds{Read: 1, Write: 1, Checksum: 1},
			ScrubMaxAge: 30,
		},
		Alerting: AlertingConfig{
			ResendInterval: 24 * time.Hour,
			StatePath:      "/var/lib/zpoolmon/alerts.json",
		},
		Daemon: DaemonConfig{
			Interval: 5 * time.Minute,
		},
		Report: ReportConfig{
			Formats:  []string{"excel", "html"},
			Timezone: "UTC",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		HTTP: HTTPConfig{
			Retry: RetryConfig{MaxRetries: 3, BaseDelay: time.Second},
		},
	}
}

// =============================================================================
// Validate Tests
// =============================================================================

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, Validate(createValidConfig()))
}

func TestValidate_MissingCommand(t *testing.T) {
	cfg := createValidConfig()
	cfg.Source.Command = ""

	err := Validate(cfg)
	require.Error(t, err)

	errs, ok := err.(ValidationErrors)
	require.True(t, ok)
	assert.Equal(t, "source.command", errs[0].Field)
	assert.Equal(t, "required", errs[0].Tag)
}

func TestValidate_ZeroTimeout(t *testing.T) {
	cfg := createValidConfig()
	cfg.Source.Timeout = 0

	assert.Error(t, Validate(cfg))
}

func TestValidate_WarningEqualsCritical(t *testing.T) {
	cfg := createValidConfig()
	cfg.Thresholds.Capacity.Warning = 90
	cfg.Thresholds.Capacity.Critical = 90

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be less than critical")
}

func TestValidate_WarningAboveCritical(t *testing.T) {
	cfg := createValidConfig()
	cfg.Thresholds.Capacity.Warning = 95
	cfg.Thresholds.Capacity.Critical = 85

	assert.Error(t, Validate(cfg))
}

func TestValidate_CapacityOutOfRange(t *testing.T) {
	cfg := createValidConfig()
	cfg.Thresholds.Capacity.Critical = 150

	assert.Error(t, Validate(cfg))
}

func TestValidate_NegativeErrorThreshold(t *testing.T) {
	cfg := createValidConfig()
	cfg.Thresholds.Errors.Read = -1

	assert.Error(t, Validate(cfg))
}

func TestValidate_ZeroScrubMaxAge(t *testing.T) {
	cfg := createValidConfig()
	cfg.Thresholds.ScrubMaxAge = 0

	assert.Error(t, Validate(cfg))
}

func TestValidate_MissingStatePath(t *testing.T) {
	cfg := createValidConfig()
	cfg.Alerting.StatePath = ""

	assert.Error(t, Validate(cfg))
}

func TestValidate_InvalidTimezone(t *testing.T) {
	cfg := createValidConfig()
	cfg.Report.Timezone = "Mars/Olympus_Mons"

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid timezone")
}

func TestValidate_EmptyTimezoneAllowed(t *testing.T) {
	cfg := createValidConfig()
	cfg.Report.Timezone = ""

	assert.NoError(t, Validate(cfg))
}

func TestValidate_CollectsMultipleErrors(t *testing.T) {
	cfg := createValidConfig()
	cfg.Source.Command = ""
	cfg.Alerting.StatePath = ""
	cfg.Thresholds.Capacity.Warning = 95
	cfg.Thresholds.Capacity.Critical = 90

	err := Validate(cfg)
	require.Error(t, err)

	errs, ok := err.(ValidationErrors)
	require.True(t, ok)
	assert.GreaterOrEqual(t, len(errs), 3)
}
