// Package model provides data models for the pool monitor.
package model

import "time"

// CheckSummary provides aggregated statistics for one check cycle.
type CheckSummary struct {
	TotalPools    int `json:"total_pools"`
	HealthyPools  int `json:"healthy_pools"`
	TotalIssues   int `json:"total_issues"`
	InfoCount     int `json:"info_count"`
	WarningCount  int `json:"warning_count"`
	CriticalCount int `json:"critical_count"`
}

// CheckResult is the aggregate outcome of evaluating all pools in one cycle.
type CheckResult struct {
	Timestamp       time.Time               `json:"timestamp"` // UTC
	Snapshots       map[string]PoolSnapshot `json:"snapshots"`
	Issues          []Issue                 `json:"issues"`
	OverallSeverity Severity                `json:"overall_severity"`
	Summary         *CheckSummary           `json:"summary"`
}

// NewCheckResult creates an empty CheckResult stamped with the given time.
func NewCheckResult(ts time.Time) *CheckResult {
	return &CheckResult{
		Timestamp:       ts.UTC(),
		Snapshots:       make(map[string]PoolSnapshot),
		Issues:          make([]Issue, 0),
		OverallSeverity: SeverityOk,
	}
}

// AddIssues appends issues and raises the overall severity accordingly.
func (r *CheckResult) AddIssues(issues []Issue) {
	for _, issue := range issues {
		r.Issues = append(r.Issues, issue)
		r.OverallSeverity = MaxSeverity(r.OverallSeverity, issue.Severity)
	}
}

// IssuesForPool returns the issues recorded for the named pool, in the
// deterministic order they were evaluated.
func (r *CheckResult) IssuesForPool(name string) []Issue {
	var out []Issue
	for _, issue := range r.Issues {
		if issue.PoolName == name {
			out = append(out, issue)
		}
	}
	return out
}

// HasIssues returns true if any issue was detected this cycle.
func (r *CheckResult) HasIssues() bool {
	return len(r.Issues) > 0
}

// Finalize computes the summary. Call after all snapshots and issues are added.
func (r *CheckResult) Finalize() {
	summary := &CheckSummary{
		TotalPools:  len(r.Snapshots),
		TotalIssues: len(r.Issues),
	}

	issuesByPool := make(map[string]int)
	for _, issue := range r.Issues {
		issuesByPool[issue.PoolName]++
		switch issue.Severity {
		case SeverityInfo:
			summary.InfoCount++
		case SeverityWarning:
			summary.WarningCount++
		case SeverityCritical:
			summary.CriticalCount++
		}
	}

	for name := range r.Snapshots {
		if issuesByPool[name] == 0 {
			summary.HealthyPools++
		}
	}

	r.Summary = summary
}
