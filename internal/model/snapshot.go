// Package model provides data models for the pool monitor.
package model

import "time"

// HealthState represents the reported health of a storage pool.
type HealthState string

const (
	HealthOnline      HealthState = "ONLINE"
	HealthDegraded    HealthState = "DEGRADED"
	HealthFaulted     HealthState = "FAULTED"
	HealthOffline     HealthState = "OFFLINE"
	HealthUnavailable HealthState = "UNAVAIL"
	HealthRemoved     HealthState = "REMOVED"
)

// knownHealthStates maps the exact strings the pool tool emits to their
// health state. Lookup is case-sensitive.
var knownHealthStates = map[string]HealthState{
	"ONLINE":   HealthOnline,
	"DEGRADED": HealthDegraded,
	"FAULTED":  HealthFaulted,
	"OFFLINE":  HealthOffline,
	"UNAVAIL":  HealthUnavailable,
	"REMOVED":  HealthRemoved,
}

// ParseHealthState maps a raw health string to a HealthState.
// Returns ok=false for strings outside the six known states; callers fold
// those into HealthOffline and log the original value.
func ParseHealthState(raw string) (HealthState, bool) {
	state, ok := knownHealthStates[raw]
	return state, ok
}

// IsOnline returns true if the pool reports fully healthy.
func (h HealthState) IsOnline() bool {
	return h == HealthOnline
}

// PoolSnapshot is an immutable point-in-time view of a single pool,
// built fresh each cycle from the raw payloads and discarded at cycle end.
type PoolSnapshot struct {
	Name            string      `json:"name"`
	Health          HealthState `json:"health"`
	CapacityPercent float64     `json:"capacity_percent"`
	SizeBytes       uint64      `json:"size_bytes"`
	AllocatedBytes  uint64      `json:"allocated_bytes"`
	FreeBytes       uint64      `json:"free_bytes"`

	ReadErrors     uint64 `json:"read_errors"`
	WriteErrors    uint64 `json:"write_errors"`
	ChecksumErrors uint64 `json:"checksum_errors"`

	LastScrubTime   *time.Time `json:"last_scrub_time,omitempty"` // UTC, nil if never scrubbed
	ScrubErrors     uint64     `json:"scrub_errors"`
	ScrubInProgress bool       `json:"scrub_in_progress"`
}

// HasScrubbed returns true if a scrub has ever completed on this pool.
func (s *PoolSnapshot) HasScrubbed() bool {
	return s.LastScrubTime != nil
}

// ScrubAge returns the time elapsed since the last completed scrub.
// Returns 0, false if no scrub has ever completed.
func (s *PoolSnapshot) ScrubAge(now time.Time) (time.Duration, bool) {
	if s.LastScrubTime == nil {
		return 0, false
	}
	return now.UTC().Sub(s.LastScrubTime.UTC()), true
}
