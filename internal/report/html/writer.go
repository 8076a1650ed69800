// Package html provides HTML report generation for check results.
// It implements the report.ReportWriter interface to generate .html files
// with the check summary, per-pool data, and detected issues.
package html

import (
	"embed"
	"fmt"
	"html/template"
	"os"
	"sort"
	"strings"
	"time"

	"zpoolmon/internal/model"
)

//go:embed templates/*.html
var embeddedTemplates embed.FS

// Writer implements report.ReportWriter for HTML format.
type Writer struct {
	timezone *time.Location
}

// TemplateData holds all data passed to the HTML template.
type TemplateData struct {
	Title           string
	CheckTime       string
	OverallSeverity string
	SeverityClass   string
	Summary         *model.CheckSummary
	Pools           []*PoolData
	Issues          []*IssueData
	GeneratedAt     string
}

// PoolData represents pool snapshot data formatted for template rendering.
type PoolData struct {
	Name        string
	Health      string
	HealthClass string
	Capacity    string
	Size        string
	Allocated   string
	Free        string
	ReadErrs    uint64
	WriteErrs   uint64
	CksumErrs   uint64
	LastScrub   string
	ScrubErrs   uint64
	Scrubbing   bool
	IssueCount  int
}

// IssueData represents issue data formatted for template rendering.
type IssueData struct {
	Pool          string
	Category      string
	Severity      string
	SeverityClass string
	Message       string
}

// NewWriter creates a new HTML report writer. A nil timezone defaults to UTC.
func NewWriter(timezone *time.Location) *Writer {
	if timezone == nil {
		timezone = time.UTC
	}
	return &Writer{
		timezone: timezone,
	}
}

// Format returns the format identifier for this writer.
func (w *Writer) Format() string {
	return "html"
}

// Write generates an HTML report from the check result.
func (w *Writer) Write(result *model.CheckResult, outputPath string) error {
	if result == nil {
		return fmt.Errorf("check result is nil")
	}

	if !strings.HasSuffix(strings.ToLower(outputPath), ".html") {
		outputPath = outputPath + ".html"
	}

	tmpl, err := w.loadTemplate()
	if err != nil {
		return fmt.Errorf("failed to load template: %w", err)
	}

	data := w.prepareTemplateData(result)

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := tmpl.Execute(file, data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	return nil
}

// loadTemplate parses the embedded report template.
func (w *Writer) loadTemplate() (*template.Template, error) {
	tmpl, err := template.New("report.html").ParseFS(embeddedTemplates, "templates/report.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse embedded template: %w", err)
	}
	return tmpl, nil
}

// prepareTemplateData converts a CheckResult to TemplateData for rendering.
func (w *Writer) prepareTemplateData(result *model.CheckResult) *TemplateData {
	names := make([]string, 0, len(result.Snapshots))
	for name := range result.Snapshots {
		names = append(names, name)
	}
	sort.Strings(names)

	pools := make([]*PoolData, 0, len(names))
	for _, name := range names {
		snap := result.Snapshots[name]
		pools = append(pools, w.convertPoolData(snap, len(result.IssuesForPool(name))))
	}

	issues := w.convertIssues(result.Issues)

	return &TemplateData{
		Title:           "Storage Pool Check Report",
		CheckTime:       result.Timestamp.In(w.timezone).Format("2006-01-02 15:04:05 MST"),
		OverallSeverity: strings.ToUpper(string(result.OverallSeverity)),
		SeverityClass:   severityClass(result.OverallSeverity),
		Summary:         result.Summary,
		Pools:           pools,
		Issues:          issues,
		GeneratedAt:     time.Now().In(w.timezone).Format("2006-01-02 15:04:05"),
	}
}

// convertPoolData converts a PoolSnapshot to PoolData for rendering.
func (w *Writer) convertPoolData(snap model.PoolSnapshot, issueCount int) *PoolData {
	lastScrub := "never"
	if snap.LastScrubTime != nil {
		lastScrub = snap.LastScrubTime.In(w.timezone).Format("2006-01-02 15:04:05")
	}

	return &PoolData{
		Name:        snap.Name,
		Health:      string(snap.Health),
		HealthClass: healthClass(snap.Health),
		Capacity:    fmt.Sprintf("%.1f%%", snap.CapacityPercent),
		Size:        formatSize(snap.SizeBytes),
		Allocated:   formatSize(snap.AllocatedBytes),
		Free:        formatSize(snap.FreeBytes),
		ReadErrs:    snap.ReadErrors,
		WriteErrs:   snap.WriteErrors,
		CksumErrs:   snap.ChecksumErrors,
		LastScrub:   lastScrub,
		ScrubErrs:   snap.ScrubErrors,
		Scrubbing:   snap.ScrubInProgress,
		IssueCount:  issueCount,
	}
}

// convertIssues converts and sorts issues for rendering (critical first).
func (w *Writer) convertIssues(issues []model.Issue) []*IssueData {
	sorted := make([]model.Issue, len(issues))
	copy(sorted, issues)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Severity.Rank() > sorted[j].Severity.Rank()
	})

	result := make([]*IssueData, 0, len(sorted))
	for _, issue := range sorted {
		result = append(result, &IssueData{
			Pool:          issue.PoolName,
			Category:      string(issue.Category),
			Severity:      strings.ToUpper(string(issue.Severity)),
			SeverityClass: severityClass(issue.Severity),
			Message:       issue.Message,
		})
	}
	return result
}

// Helper functions

// formatSize formats bytes to human-readable size.
func formatSize(bytes uint64) string {
	const (
		KB = uint64(1) << 10
		MB = uint64(1) << 20
		GB = uint64(1) << 30
		TB = uint64(1) << 40
	)

	switch {
	case bytes >= TB:
		return fmt.Sprintf("%.2f TB", float64(bytes)/float64(TB))
	case bytes >= GB:
		return fmt.Sprintf("%.2f GB", float64(bytes)/float64(GB))
	case bytes >= MB:
		return fmt.Sprintf("%.2f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.2f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// severityClass returns the CSS class for a severity.
func severityClass(severity model.Severity) string {
	switch severity {
	case model.SeverityOk:
		return "sev-ok"
	case model.SeverityInfo:
		return "sev-info"
	case model.SeverityWarning:
		return "sev-warning"
	case model.SeverityCritical:
		return "sev-critical"
	default:
		return ""
	}
}

// healthClass returns the CSS class for a pool health state.
func healthClass(health model.HealthState) string {
	switch health {
	case model.HealthOnline:
		return "health-online"
	case model.HealthDegraded:
		return "health-degraded"
	case model.HealthFaulted, model.HealthUnavailable, model.HealthRemoved:
		return "health-faulted"
	case model.HealthOffline:
		return "health-offline"
	default:
		return ""
	}
}
