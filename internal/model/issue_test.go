package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Severity Tests
// =============================================================================

func TestSeverity_Ordering(t *testing.T) {
	assert.True(t, SeverityCritical.AtLeast(SeverityWarning))
	assert.True(t, SeverityWarning.AtLeast(SeverityInfo))
	assert.True(t, SeverityInfo.AtLeast(SeverityOk))
	assert.False(t, SeverityOk.AtLeast(SeverityInfo))
}

func TestSeverity_UnknownRanksBelowOk(t *testing.T) {
	unknown := Severity("bogus")
	assert.Equal(t, -1, unknown.Rank())
	assert.False(t, unknown.AtLeast(SeverityOk))
}

func TestMaxSeverity(t *testing.T) {
	assert.Equal(t, SeverityCritical, MaxSeverity(SeverityWarning, SeverityCritical))
	assert.Equal(t, SeverityCritical, MaxSeverity(SeverityCritical, SeverityInfo))
	assert.Equal(t, SeverityOk, MaxSeverity(SeverityOk, SeverityOk))
}

// =============================================================================
// Issue and AlertRecord Key Tests
// =============================================================================

func TestIssue_Key(t *testing.T) {
	issue := Issue{PoolName: "tank", Category: CategoryCapacity}
	assert.Equal(t, "tank:capacity", issue.Key())
}

func TestAlertRecord_KeyMatchesIssueKey(t *testing.T) {
	issue := Issue{PoolName: "data", Category: CategoryScrub}
	rec := AlertRecord{PoolName: "data", IssueCategory: CategoryScrub}
	assert.Equal(t, issue.Key(), rec.Key())
}

// =============================================================================
// CheckResult Tests
// =============================================================================

func TestCheckResult_AddIssuesRaisesSeverity(t *testing.T) {
	result := NewCheckResult(time.Now())
	assert.Equal(t, SeverityOk, result.OverallSeverity)

	result.AddIssues([]Issue{{PoolName: "tank", Severity: SeverityInfo, Category: CategoryScrub}})
	assert.Equal(t, SeverityInfo, result.OverallSeverity)

	result.AddIssues([]Issue{{PoolName: "tank", Severity: SeverityCritical, Category: CategoryHealth}})
	assert.Equal(t, SeverityCritical, result.OverallSeverity)

	// Lower severities never drag the overall back down.
	result.AddIssues([]Issue{{PoolName: "data", Severity: SeverityWarning, Category: CategoryCapacity}})
	assert.Equal(t, SeverityCritical, result.OverallSeverity)
}

func TestCheckResult_TimestampIsUTC(t *testing.T) {
	local := time.Date(2025, 7, 14, 12, 0, 0, 0, time.FixedZone("CST", 8*3600))
	result := NewCheckResult(local)

	assert.Equal(t, time.UTC, result.Timestamp.Location())
	assert.True(t, result.Timestamp.Equal(local))
}

func TestCheckResult_Finalize(t *testing.T) {
	result := NewCheckResult(time.Now())
	result.Snapshots = map[string]PoolSnapshot{
		"tank": {Name: "tank"},
		"data": {Name: "data"},
	}
	result.AddIssues([]Issue{
		{PoolName: "tank", Severity: SeverityWarning, Category: CategoryCapacity},
		{PoolName: "tank", Severity: SeverityCritical, Category: CategoryHealth},
	})

	result.Finalize()

	require.NotNil(t, result.Summary)
	assert.Equal(t, 2, result.Summary.TotalPools)
	assert.Equal(t, 1, result.Summary.HealthyPools)
	assert.Equal(t, 2, result.Summary.TotalIssues)
	assert.Equal(t, 1, result.Summary.WarningCount)
	assert.Equal(t, 1, result.Summary.CriticalCount)
}

// =============================================================================
// HealthState Tests
// =============================================================================

func TestParseHealthState_KnownStates(t *testing.T) {
	known := map[string]HealthState{
		"ONLINE":   HealthOnline,
		"DEGRADED": HealthDegraded,
		"FAULTED":  HealthFaulted,
		"OFFLINE":  HealthOffline,
		"UNAVAIL":  HealthUnavailable,
		"REMOVED":  HealthRemoved,
	}

	for raw, expected := range known {
		state, ok := ParseHealthState(raw)
		assert.True(t, ok, "state %q", raw)
		assert.Equal(t, expected, state)
	}
}

func TestParseHealthState_Unknown(t *testing.T) {
	_, ok := ParseHealthState("online") // case-sensitive
	assert.False(t, ok)

	_, ok = ParseHealthState("RESILVERING")
	assert.False(t, ok)
}

func TestPoolSnapshot_ScrubAge(t *testing.T) {
	now := time.Date(2025, 7, 14, 12, 0, 0, 0, time.UTC)
	scrubbed := now.Add(-72 * time.Hour)

	snap := PoolSnapshot{Name: "tank", LastScrubTime: &scrubbed}

	age, ok := snap.ScrubAge(now)
	require.True(t, ok)
	assert.Equal(t, 72*time.Hour, age)

	never := PoolSnapshot{Name: "data"}
	_, ok = never.ScrubAge(now)
	assert.False(t, ok)
}
