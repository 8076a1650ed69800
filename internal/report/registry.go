// Package report provides report generation for check results.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"zpoolmon/internal/report/excel"
	"zpoolmon/internal/report/html"
)

// Registry manages report writers for different formats.
type Registry struct {
	writers map[string]ReportWriter
}

// NewRegistry creates a registry with the Excel and HTML writers
// pre-registered. A nil timezone defaults to UTC.
func NewRegistry(timezone *time.Location) *Registry {
	if timezone == nil {
		timezone = time.UTC
	}

	excelWriter := excel.NewWriter(timezone)
	htmlWriter := html.NewWriter(timezone)

	r := &Registry{
		writers: make(map[string]ReportWriter),
	}

	r.writers[excelWriter.Format()] = excelWriter
	r.writers[htmlWriter.Format()] = htmlWriter

	return r
}

// Get returns a writer for the specified format. Format names are
// case-insensitive.
func (r *Registry) Get(format string) (ReportWriter, error) {
	normalized := strings.ToLower(strings.TrimSpace(format))

	writer, ok := r.writers[normalized]
	if !ok {
		supported := r.GetAll()
		return nil, fmt.Errorf("unsupported report format %q, supported formats: %s",
			format, strings.Join(supported, ", "))
	}

	return writer, nil
}

// GetAll returns all supported format names in sorted order.
func (r *Registry) GetAll() []string {
	formats := make([]string, 0, len(r.writers))
	for format := range r.writers {
		formats = append(formats, format)
	}
	sort.Strings(formats)
	return formats
}

// Has checks if the specified format is supported.
func (r *Registry) Has(format string) bool {
	normalized := strings.ToLower(strings.TrimSpace(format))
	_, ok := r.writers[normalized]
	return ok
}
