// Package service provides the core monitoring pipeline: parsing raw pool
// payloads, evaluating thresholds, and orchestrating one check cycle.
package service

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"zpoolmon/internal/config"
	"zpoolmon/internal/model"
)

// Monitor evaluates pool snapshots against configured thresholds.
// It is pure: it never errors for a validly typed snapshot, and the
// threshold configuration is validated before any cycle runs.
type Monitor struct {
	thresholds *config.ThresholdsConfig
	logger     zerolog.Logger
}

// NewMonitor creates a new threshold monitor.
func NewMonitor(thresholds *config.ThresholdsConfig, logger zerolog.Logger) *Monitor {
	return &Monitor{
		thresholds: thresholds,
		logger:     logger.With().Str("component", "monitor").Logger(),
	}
}

// EvaluateAll evaluates every snapshot and aggregates the outcome into a
// CheckResult. Pools are processed in name order so issue ordering is
// deterministic across cycles.
func (m *Monitor) EvaluateAll(snapshots map[string]model.PoolSnapshot, now time.Time) *model.CheckResult {
	result := model.NewCheckResult(now)
	result.Snapshots = snapshots

	names := make([]string, 0, len(snapshots))
	for name := range snapshots {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		snap := snapshots[name]
		result.AddIssues(m.Evaluate(&snap, now))
	}

	result.Finalize()

	m.logger.Info().
		Int("total_pools", result.Summary.TotalPools).
		Int("total_issues", result.Summary.TotalIssues).
		Int("warning_count", result.Summary.WarningCount).
		Int("critical_count", result.Summary.CriticalCount).
		Str("overall_severity", string(result.OverallSeverity)).
		Msg("evaluation completed")

	return result
}

// Evaluate runs all checks against one snapshot. Issue order within a pool
// is fixed: health, capacity, errors (read, write, checksum), scrub.
func (m *Monitor) Evaluate(snap *model.PoolSnapshot, now time.Time) []model.Issue {
	issues := make([]model.Issue, 0, 4)

	if issue := m.checkHealth(snap); issue != nil {
		issues = append(issues, *issue)
	}
	if issue := m.checkCapacity(snap); issue != nil {
		issues = append(issues, *issue)
	}
	issues = append(issues, m.checkErrors(snap)...)
	if issue := m.checkScrub(snap, now); issue != nil {
		issues = append(issues, *issue)
	}

	m.logger.Debug().
		Str("pool", snap.Name).
		Int("issues", len(issues)).
		Msg("pool evaluated")

	return issues
}

// checkHealth maps the pool health state to an issue severity.
func (m *Monitor) checkHealth(snap *model.PoolSnapshot) *model.Issue {
	var severity model.Severity
	switch snap.Health {
	case model.HealthOnline:
		return nil
	case model.HealthDegraded, model.HealthOffline:
		severity = model.SeverityWarning
	case model.HealthFaulted, model.HealthUnavailable, model.HealthRemoved:
		severity = model.SeverityCritical
	default:
		// The parser folds unknown states into OFFLINE, so this branch is
		// unreachable through normal flow; treat it like OFFLINE anyway.
		severity = model.SeverityWarning
	}

	return &model.Issue{
		PoolName: snap.Name,
		Severity: severity,
		Category: model.CategoryHealth,
		Message:  fmt.Sprintf("pool %s health is %s", snap.Name, snap.Health),
		Details: map[string]string{
			"health": string(snap.Health),
		},
	}
}

// checkCapacity compares used capacity against the warning and critical
// bands. Both boundaries are inclusive on the lower edge.
func (m *Monitor) checkCapacity(snap *model.PoolSnapshot) *model.Issue {
	t := m.thresholds.Capacity

	var severity model.Severity
	var threshold float64
	switch {
	case snap.CapacityPercent >= t.Critical:
		severity = model.SeverityCritical
		threshold = t.Critical
	case snap.CapacityPercent >= t.Warning:
		severity = model.SeverityWarning
		threshold = t.Warning
	default:
		return nil
	}

	return &model.Issue{
		PoolName: snap.Name,
		Severity: severity,
		Category: model.CategoryCapacity,
		Message:  fmt.Sprintf("pool %s capacity %.1f%% reached %.1f%% threshold", snap.Name, snap.CapacityPercent, threshold),
		Details: map[string]string{
			"capacity_percent": strconv.FormatFloat(snap.CapacityPercent, 'f', 1, 64),
			"threshold":        strconv.FormatFloat(threshold, 'f', 1, 64),
		},
	}
}

// checkErrors compares each vdev error counter against its own threshold,
// producing up to three warning issues in read, write, checksum order.
func (m *Monitor) checkErrors(snap *model.PoolSnapshot) []model.Issue {
	t := m.thresholds.Errors

	counters := []struct {
		kind      string
		count     uint64
		threshold int64
	}{
		{"read", snap.ReadErrors, t.Read},
		{"write", snap.WriteErrors, t.Write},
		{"checksum", snap.ChecksumErrors, t.Checksum},
	}

	var issues []model.Issue
	for _, c := range counters {
		if c.threshold <= 0 || c.count < uint64(c.threshold) {
			continue
		}
		issues = append(issues, model.Issue{
			PoolName: snap.Name,
			Severity: model.SeverityWarning,
			Category: model.CategoryErrors,
			Message:  fmt.Sprintf("pool %s has %d %s errors (threshold: %d)", snap.Name, c.count, c.kind, c.threshold),
			Details: map[string]string{
				"error_type": c.kind,
				"count":      strconv.FormatUint(c.count, 10),
				"threshold":  strconv.FormatInt(c.threshold, 10),
			},
		})
	}

	return issues
}

// checkScrub reports scrub errors, or a stale/never-run scrub when the
// pool is not currently scrubbing.
func (m *Monitor) checkScrub(snap *model.PoolSnapshot, now time.Time) *model.Issue {
	if snap.ScrubErrors > 0 {
		return &model.Issue{
			PoolName: snap.Name,
			Severity: model.SeverityWarning,
			Category: model.CategoryScrub,
			Message:  fmt.Sprintf("pool %s last scrub found %d errors", snap.Name, snap.ScrubErrors),
			Details: map[string]string{
				"scrub_errors": strconv.FormatUint(snap.ScrubErrors, 10),
			},
		}
	}

	if snap.ScrubInProgress {
		return nil
	}

	maxAge := m.thresholds.ScrubMaxAgeDuration()

	age, scrubbed := snap.ScrubAge(now)
	if !scrubbed {
		return &model.Issue{
			PoolName: snap.Name,
			Severity: model.SeverityInfo,
			Category: model.CategoryScrub,
			Message:  fmt.Sprintf("pool %s has never completed a scrub", snap.Name),
			Details: map[string]string{
				"max_age_days": strconv.Itoa(m.thresholds.ScrubMaxAge),
			},
		}
	}

	if age > maxAge {
		return &model.Issue{
			PoolName: snap.Name,
			Severity: model.SeverityInfo,
			Category: model.CategoryScrub,
			Message:  fmt.Sprintf("pool %s last scrub was %d days ago (maximum: %d days)", snap.Name, int(age.Hours()/24), m.thresholds.ScrubMaxAge),
			Details: map[string]string{
				"age_days":     strconv.Itoa(int(age.Hours() / 24)),
				"max_age_days": strconv.Itoa(m.thresholds.ScrubMaxAge),
			},
		}
	}

	return nil
}
