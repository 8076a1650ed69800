// Package excel provides Excel report generation for check results.
// It implements the report.ReportWriter interface to generate .xlsx files
// with a summary, per-pool data, and the detected issues.
package excel

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"zpoolmon/internal/model"
)

const (
	// Sheet names
	sheetSummary = "Summary"
	sheetPools   = "Pools"
	sheetIssues  = "Issues"

	// Default sheet to remove
	defaultSheet = "Sheet1"

	// Colors for conditional formatting (RGB without #)
	colorWarningBg  = "FFEB9C"
	colorWarningFg  = "9C6500"
	colorCriticalBg = "FFC7CE"
	colorCriticalFg = "9C0006"
	colorHeaderBg   = "4472C4"
	colorHeaderFg   = "FFFFFF"
	colorNormalBg   = "C6EFCE"
	colorNormalFg   = "006100"
)

// Writer implements report.ReportWriter for Excel format.
type Writer struct {
	timezone *time.Location
}

// NewWriter creates a new Excel report writer. A nil timezone defaults to UTC.
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
	return "excel"
}

// Write generates an Excel report from the check result.
func (w *Writer) Write(result *model.CheckResult, outputPath string) error {
	if result == nil {
		return fmt.Errorf("check result is nil")
	}

	if !strings.HasSuffix(strings.ToLower(outputPath), ".xlsx") {
		outputPath = outputPath + ".xlsx"
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := w.writeSummarySheet(f, result); err != nil {
		return fmt.Errorf("failed to write summary sheet: %w", err)
	}
	if err := w.writePoolsSheet(f, result); err != nil {
		return fmt.Errorf("failed to write pools sheet: %w", err)
	}
	if err := w.writeIssuesSheet(f, result); err != nil {
		return fmt.Errorf("failed to write issues sheet: %w", err)
	}

	f.DeleteSheet(defaultSheet)

	if idx, err := f.GetSheetIndex(sheetSummary); err == nil {
		f.SetActiveSheet(idx)
	}

	if err := f.SaveAs(outputPath); err != nil {
		return fmt.Errorf("failed to save Excel file: %w", err)
	}

	return nil
}

// headerStyle builds the shared header cell style.
func (w *Writer) headerStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: colorHeaderFg},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{colorHeaderBg}},
	})
}

// severityStyle returns the fill style for a severity value.
func (w *Writer) severityStyle(f *excelize.File, severity model.Severity) (int, error) {
	bg, fg := colorNormalBg, colorNormalFg
	switch severity {
	case model.SeverityWarning:
		bg, fg = colorWarningBg, colorWarningFg
	case model.SeverityCritical:
		bg, fg = colorCriticalBg, colorCriticalFg
	}
	return f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Color: fg},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{bg}},
	})
}

// writeSummarySheet writes the cycle overview.
func (w *Writer) writeSummarySheet(f *excelize.File, result *model.CheckResult) error {
	if _, err := f.NewSheet(sheetSummary); err != nil {
		return err
	}

	rows := [][]any{
		{"Check Time", result.Timestamp.In(w.timezone).Format("2006-01-02 15:04:05 MST")},
		{"Overall Severity", string(result.OverallSeverity)},
	}
	if result.Summary != nil {
		rows = append(rows,
			[]any{"Total Pools", result.Summary.TotalPools},
			[]any{"Healthy Pools", result.Summary.HealthyPools},
			[]any{"Total Issues", result.Summary.TotalIssues},
			[]any{"Info", result.Summary.InfoCount},
			[]any{"Warning", result.Summary.WarningCount},
			[]any{"Critical", result.Summary.CriticalCount},
		)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetSummary, cell, &row); err != nil {
			return err
		}
	}

	return f.SetColWidth(sheetSummary, "A", "B", 25)
}

// writePoolsSheet writes one row per pool snapshot.
func (w *Writer) writePoolsSheet(f *excelize.File, result *model.CheckResult) error {
	if _, err := f.NewSheet(sheetPools); err != nil {
		return err
	}

	headers := []any{"Pool", "Health", "Capacity %", "Size", "Allocated", "Free",
		"Read Errors", "Write Errors", "Checksum Errors", "Last Scrub", "Scrub Errors", "Scrubbing"}
	if err := f.SetSheetRow(sheetPools, "A1", &headers); err != nil {
		return err
	}
	if style, err := w.headerStyle(f); err == nil {
		f.SetCellStyle(sheetPools, "A1", "L1", style)
	}

	names := make([]string, 0, len(result.Snapshots))
	for name := range result.Snapshots {
		names = append(names, name)
	}
	sort.Strings(names)

	for i, name := range names {
		snap := result.Snapshots[name]

		lastScrub := "never"
		if snap.LastScrubTime != nil {
			lastScrub = snap.LastScrubTime.In(w.timezone).Format("2006-01-02 15:04:05")
		}

		row := []any{
			snap.Name,
			string(snap.Health),
			snap.CapacityPercent,
			formatBytes(snap.SizeBytes),
			formatBytes(snap.AllocatedBytes),
			formatBytes(snap.FreeBytes),
			snap.ReadErrors,
			snap.WriteErrors,
			snap.ChecksumErrors,
			lastScrub,
			snap.ScrubErrors,
			snap.ScrubInProgress,
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetPools, cell, &row); err != nil {
			return err
		}
	}

	return f.SetColWidth(sheetPools, "A", "L", 15)
}

// writeIssuesSheet writes one row per detected issue, colored by severity.
func (w *Writer) writeIssuesSheet(f *excelize.File, result *model.CheckResult) error {
	if _, err := f.NewSheet(sheetIssues); err != nil {
		return err
	}

	headers := []any{"Pool", "Category", "Severity", "Message"}
	if err := f.SetSheetRow(sheetIssues, "A1", &headers); err != nil {
		return err
	}
	if style, err := w.headerStyle(f); err == nil {
		f.SetCellStyle(sheetIssues, "A1", "D1", style)
	}

	for i, issue := range result.Issues {
		row := []any{
			issue.PoolName,
			string(issue.Category),
			string(issue.Severity),
			issue.Message,
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetIssues, cell, &row); err != nil {
			return err
		}

		if style, err := w.severityStyle(f, issue.Severity); err == nil {
			sevCell, _ := excelize.CoordinatesToCellName(3, i+2)
			f.SetCellStyle(sheetIssues, sevCell, sevCell, style)
		}
	}

	f.SetColWidth(sheetIssues, "A", "C", 15)
	return f.SetColWidth(sheetIssues, "D", "D", 60)
}

// formatBytes formats bytes to human-readable size.
func formatBytes(bytes uint64) string {
	const (
		KB = 1 << 10
		MB = 1 << 20
		GB = 1 << 30
		TB = 1 << 40
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
