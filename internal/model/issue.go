// Package model provides data models for the pool monitor.
package model

// Severity represents the ordered alert level of an issue.
type Severity string

const (
	SeverityOk       Severity = "ok"
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// severityRank orders severities for comparison: Ok < Info < Warning < Critical.
var severityRank = map[Severity]int{
	SeverityOk:       0,
	SeverityInfo:     1,
	SeverityWarning:  2,
	SeverityCritical: 3,
}

// Rank returns the numeric order of this severity. Unknown values rank
// below Ok so they never mask a real issue.
func (s Severity) Rank() int {
	if r, ok := severityRank[s]; ok {
		return r
	}
	return -1
}

// AtLeast returns true if this severity is equal to or more severe than other.
func (s Severity) AtLeast(other Severity) bool {
	return s.Rank() >= other.Rank()
}

// MaxSeverity returns the more severe of two severities.
func MaxSeverity(a, b Severity) Severity {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

// IssueCategory classifies what kind of problem an issue describes.
// The (pool, category) pair is the deduplication key for alerting.
type IssueCategory string

const (
	CategoryHealth   IssueCategory = "health"
	CategoryCapacity IssueCategory = "capacity"
	CategoryErrors   IssueCategory = "errors"
	CategoryScrub    IssueCategory = "scrub"
)

// Issue represents a single detected threshold breach for one pool.
// Issues are ephemeral: they live for one check cycle only.
type Issue struct {
	PoolName string            `json:"pool_name"`
	Severity Severity          `json:"severity"`
	Category IssueCategory     `json:"category"`
	Message  string            `json:"message"`
	Details  map[string]string `json:"details,omitempty"`
}

// Key returns the deduplication key for this issue.
func (i *Issue) Key() string {
	return i.PoolName + ":" + string(i.Category)
}

// IsWarning returns true if this issue is at warning severity.
func (i *Issue) IsWarning() bool {
	return i.Severity == SeverityWarning
}

// IsCritical returns true if this issue is at critical severity.
func (i *Issue) IsCritical() bool {
	return i.Severity == SeverityCritical
}
