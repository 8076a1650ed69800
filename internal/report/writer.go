// Package report provides report generation for check results. It defines
// the ReportWriter interface and a registry for the supported formats.
package report

import (
	"zpoolmon/internal/model"
)

// ReportWriter defines the interface for generating check reports.
type ReportWriter interface {
	// Write renders the check result to the specified output path. The
	// path should include the file extension appropriate for the format.
	Write(result *model.CheckResult, outputPath string) error

	// Format returns the format identifier for this writer.
	// Common values are "excel" and "html".
	Format() string
}
