// Package zpool invokes the external pool administration tool and decodes
// its JSON output into the raw payloads consumed by the status parser.
package zpool

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ListEntry is one pool's row in the enumeration payload. Numeric fields
// are kept loosely typed because producer versions emit them either as
// plain numbers or as strings with a binary-unit suffix.
type ListEntry struct {
	Name      string `json:"name"`
	Health    string `json:"state"`
	Size      any    `json:"size"`
	Allocated any    `json:"allocated"`
	Free      any    `json:"free"`
	Capacity  any    `json:"capacity"`
}

// ListPayload maps pool name to its enumeration entry.
type ListPayload map[string]ListEntry

// VdevStats carries the error counters of one constituent device.
type VdevStats struct {
	Name           string `json:"name"`
	ReadErrors     any    `json:"read_errors"`
	WriteErrors    any    `json:"write_errors"`
	ChecksumErrors any    `json:"checksum_errors"`
}

// StatusEntry is one pool's row in the detail payload. The scan object is
// kept as a raw map because the completion-time field name varies across
// producer versions.
type StatusEntry struct {
	Name  string         `json:"name"`
	Vdevs []VdevStats    `json:"vdevs"`
	Scan  map[string]any `json:"scan"`
}

// StatusPayload maps pool name to its detail entry.
type StatusPayload map[string]StatusEntry

// listEnvelope is the outer document newer tool versions wrap the
// enumeration in. Older versions emit the bare map.
type listEnvelope struct {
	Pools ListPayload `json:"pools"`
}

type statusEnvelope struct {
	Pools StatusPayload `json:"pools"`
}

// decodeListPayload decodes enumeration output, accepting both the
// enveloped and the bare document shape.
func decodeListPayload(data []byte) (ListPayload, error) {
	var env listEnvelope
	if err := unmarshalUseNumber(data, &env); err == nil && len(env.Pools) > 0 {
		return env.Pools, nil
	}

	var bare ListPayload
	if err := unmarshalUseNumber(data, &bare); err != nil {
		return nil, fmt.Errorf("failed to decode pool enumeration: %w", err)
	}
	return bare, nil
}

// decodeStatusPayload decodes detail output, accepting both the enveloped
// and the bare document shape.
func decodeStatusPayload(data []byte) (StatusPayload, error) {
	var env statusEnvelope
	if err := unmarshalUseNumber(data, &env); err == nil && len(env.Pools) > 0 {
		return env.Pools, nil
	}

	var bare StatusPayload
	if err := unmarshalUseNumber(data, &bare); err != nil {
		return nil, fmt.Errorf("failed to decode pool status: %w", err)
	}
	return bare, nil
}

// unmarshalUseNumber decodes JSON keeping numbers as json.Number so large
// byte counts survive without float rounding.
func unmarshalUseNumber(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}
