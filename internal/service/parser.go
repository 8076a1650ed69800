// Package service provides the core monitoring pipeline: parsing raw pool
// payloads, evaluating thresholds, and orchestrating one check cycle.
package service

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"zpoolmon/internal/client/zpool"
	"zpoolmon/internal/model"
)

// ParseError reports a malformed or missing field in a pool's payload.
// It is scoped to the offending pool; other pools continue through the cycle.
type ParseError struct {
	Pool  string
	Field string
	Err   error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("pool %q field %q: %v", e.Pool, e.Field, e.Err)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// binary-unit multipliers for size strings, 1024-based.
var sizeMultipliers = map[byte]float64{
	'K': 1 << 10,
	'M': 1 << 20,
	'G': 1 << 30,
	'T': 1 << 40,
	'P': 1 << 50,
}

// ParseSize converts a size value to bytes. Accepts a plain number or a
// number with a binary-unit suffix (K/M/G/T/P, case-insensitive,
// 1024-based multipliers). Anything else is an error.
func ParseSize(raw any) (uint64, error) {
	switch v := raw.(type) {
	case nil:
		return 0, fmt.Errorf("size is missing")
	case json.Number:
		return parseSizeString(v.String())
	case float64:
		if v < 0 {
			return 0, fmt.Errorf("size is negative: %v", v)
		}
		return uint64(v), nil
	case string:
		return parseSizeString(v)
	default:
		return 0, fmt.Errorf("unsupported size type %T", raw)
	}
}

// parseSizeString parses the textual size forms.
func parseSizeString(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("size is empty")
	}

	// Plain number, integer or fractional
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("size is negative: %s", s)
		}
		return uint64(n), nil
	}

	// Number with binary-unit suffix
	suffix := s[len(s)-1]
	if suffix >= 'a' && suffix <= 'z' {
		suffix -= 'a' - 'A'
	}
	mult, ok := sizeMultipliers[suffix]
	if !ok {
		return 0, fmt.Errorf("invalid size %q", s)
	}

	n, err := strconv.ParseFloat(strings.TrimSpace(s[:len(s)-1]), 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid size %q", s)
	}

	return uint64(math.Round(n * mult)), nil
}

// scrubTimeStrategy is one (field-name, parse-form) pair tried in order
// when locating a scrub completion time. Producer versions disagree on
// both the field name and the value form.
type scrubTimeStrategy struct {
	name  string
	field string
	parse func(any) (time.Time, error)
}

// scrubTimeStrategies is tried in order; the first success wins.
var scrubTimeStrategies = []scrubTimeStrategy{
	{name: "scrub_end/epoch", field: "scrub_end", parse: parseEpoch},
	{name: "scrub_end/text", field: "scrub_end", parse: parseTextTime},
	{name: "end_time/epoch", field: "end_time", parse: parseEpoch},
	{name: "end_time/text", field: "end_time", parse: parseTextTime},
	{name: "scan_end/epoch", field: "scan_end", parse: parseEpoch},
	{name: "scan_end/text", field: "scan_end", parse: parseTextTime},
}

// parseEpoch interprets the value as integer seconds since the Unix epoch.
func parseEpoch(raw any) (time.Time, error) {
	var secs int64
	switch v := raw.(type) {
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return time.Time{}, err
		}
		secs = n
	case float64:
		secs = int64(v)
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return time.Time{}, err
		}
		secs = n
	default:
		return time.Time{}, fmt.Errorf("not an epoch value: %T", raw)
	}
	if secs <= 0 {
		return time.Time{}, fmt.Errorf("epoch value out of range: %d", secs)
	}
	return time.Unix(secs, 0).UTC(), nil
}

// textTimeLayouts are the textual forms seen across producer versions.
var textTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	time.ANSIC, // e.g. "Sun Jul 13 10:11:12 2025", the tool's classic format
}

// parseTextTime interprets the value as a textual timestamp.
func parseTextTime(raw any) (time.Time, error) {
	s, ok := raw.(string)
	if !ok {
		return time.Time{}, fmt.Errorf("not a textual timestamp: %T", raw)
	}
	s = strings.TrimSpace(s)
	for _, layout := range textTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// Parser transforms raw pool payloads into typed pool snapshots.
type Parser struct {
	logger zerolog.Logger
}

// NewParser creates a new status parser.
func NewParser(logger zerolog.Logger) *Parser {
	return &Parser{
		logger: logger.With().Str("component", "parser").Logger(),
	}
}

// Parse merges the enumeration and detail payloads into one snapshot per
// pool. A malformed pool yields a ParseError and is skipped; the remaining
// pools are still returned.
func (p *Parser) Parse(list zpool.ListPayload, status zpool.StatusPayload) (map[string]model.PoolSnapshot, []*ParseError) {
	snapshots := make(map[string]model.PoolSnapshot, len(list))
	var failures []*ParseError

	for name, entry := range list {
		snap, err := p.parsePool(name, entry, status)
		if err != nil {
			p.logger.Warn().
				Str("pool", err.Pool).
				Str("field", err.Field).
				Err(err.Err).
				Msg("skipping unparseable pool")
			failures = append(failures, err)
			continue
		}
		snapshots[snap.Name] = snap
	}

	return snapshots, failures
}

// parsePool builds the snapshot for one pool from both payloads.
func (p *Parser) parsePool(name string, entry zpool.ListEntry, status zpool.StatusPayload) (model.PoolSnapshot, *ParseError) {
	if entry.Name != "" {
		name = entry.Name
	}
	if name == "" {
		return model.PoolSnapshot{}, &ParseError{Pool: name, Field: "name", Err: fmt.Errorf("pool name is missing")}
	}
	if entry.Health == "" {
		return model.PoolSnapshot{}, &ParseError{Pool: name, Field: "state", Err: fmt.Errorf("health state is missing")}
	}

	health, known := model.ParseHealthState(entry.Health)
	if !known {
		// Unknown states fold into OFFLINE so they still alert; the raw
		// value is logged for the operator.
		p.logger.Warn().
			Str("pool", name).
			Str("health", entry.Health).
			Msg("unrecognized health state, treating pool as offline")
		health = model.HealthOffline
	}

	size, err := ParseSize(entry.Size)
	if err != nil {
		return model.PoolSnapshot{}, &ParseError{Pool: name, Field: "size", Err: err}
	}
	allocated, err := ParseSize(entry.Allocated)
	if err != nil {
		return model.PoolSnapshot{}, &ParseError{Pool: name, Field: "allocated", Err: err}
	}
	free, err := ParseSize(entry.Free)
	if err != nil {
		return model.PoolSnapshot{}, &ParseError{Pool: name, Field: "free", Err: err}
	}
	capacity, err := parseCapacity(entry.Capacity)
	if err != nil {
		return model.PoolSnapshot{}, &ParseError{Pool: name, Field: "capacity", Err: err}
	}

	snap := model.PoolSnapshot{
		Name:            name,
		Health:          health,
		CapacityPercent: capacity,
		SizeBytes:       size,
		AllocatedBytes:  allocated,
		FreeBytes:       free,
	}

	// Detail payload is optional per pool; absent counters default to zero.
	if detail, ok := status[name]; ok {
		p.mergeDetail(&snap, detail)
	}

	return snap, nil
}

// mergeDetail folds the detail entry's vdev counters and scan object into
// the snapshot. Counter fields that fail to coerce default to zero rather
// than failing the pool.
func (p *Parser) mergeDetail(snap *model.PoolSnapshot, detail zpool.StatusEntry) {
	for _, vdev := range detail.Vdevs {
		snap.ReadErrors += coerceCount(vdev.ReadErrors)
		snap.WriteErrors += coerceCount(vdev.WriteErrors)
		snap.ChecksumErrors += coerceCount(vdev.ChecksumErrors)
	}

	if detail.Scan == nil {
		return
	}

	snap.ScrubErrors = coerceCount(detail.Scan["errors"])
	snap.ScrubInProgress = scanInProgress(detail.Scan)

	for _, strategy := range scrubTimeStrategies {
		raw, ok := detail.Scan[strategy.field]
		if !ok || raw == nil {
			continue
		}
		t, err := strategy.parse(raw)
		if err != nil {
			continue
		}
		p.logger.Debug().
			Str("pool", snap.Name).
			Str("strategy", strategy.name).
			Time("scrub_end", t).
			Msg("scrub completion time resolved")
		snap.LastScrubTime = &t
		return
	}

	// No strategy matched. Legitimate while a scrub is still running;
	// otherwise the pool simply has no recorded scrub.
}

// scanInProgress interprets the scan object's progress indicators.
func scanInProgress(scan map[string]any) bool {
	if v, ok := scan["in_progress"].(bool); ok {
		return v
	}
	if s, ok := scan["state"].(string); ok {
		switch strings.ToLower(s) {
		case "in_progress", "scanning", "scrubbing":
			return true
		}
	}
	return false
}

// parseCapacity converts a capacity value to a percentage, accepting a
// plain number or a string with a trailing percent sign.
func parseCapacity(raw any) (float64, error) {
	switch v := raw.(type) {
	case nil:
		return 0, fmt.Errorf("capacity is missing")
	case json.Number:
		return v.Float64()
	case float64:
		return v, nil
	case string:
		s := strings.TrimSuffix(strings.TrimSpace(v), "%")
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid capacity %q", v)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("unsupported capacity type %T", raw)
	}
}

// coerceCount converts a loosely typed counter to uint64, defaulting to
// zero on any failure. Error counters are optional fields.
func coerceCount(raw any) uint64 {
	switch v := raw.(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil && n >= 0 {
			return uint64(n)
		}
	case float64:
		if v >= 0 {
			return uint64(v)
		}
	case string:
		if n, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64); err == nil {
			return n
		}
	}
	return 0
}
