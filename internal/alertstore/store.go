// Package alertstore implements the persistent deduplication state machine
// that decides whether an issue triggers a new notification, a resend, or a
// recovery notice.
package alertstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"zpoolmon/internal/model"
)

// documentVersion identifies the on-disk state format.
const documentVersion = 1

// document is the single versioned file the store persists.
type document struct {
	Version int                           `json:"version"`
	Alerts  map[string]*model.AlertRecord `json:"alerts"`
}

// Store tracks one AlertRecord per unresolved (pool, category) issue.
// It is touched only by the daemon loop's thread of control; callers
// wanting concurrent access must serialize at their own boundary.
type Store struct {
	path           string
	resendInterval time.Duration
	records        map[string]*model.AlertRecord
	logger         zerolog.Logger
}

// New creates a store backed by the given file path. Call Load before the
// first cycle to restore persisted records.
func New(path string, resendInterval time.Duration, logger zerolog.Logger) *Store {
	return &Store{
		path:           path,
		resendInterval: resendInterval,
		records:        make(map[string]*model.AlertRecord),
		logger:         logger.With().Str("component", "alertstore").Logger(),
	}
}

// Load restores records from disk. Any failure (missing file, truncated or
// invalid content, unsupported version) resets to an empty store with a
// logged warning; it never aborts startup.
func (s *Store) Load() {
	s.records = make(map[string]*model.AlertRecord)

	// Clean up a crash artifact from an interrupted save.
	_ = os.Remove(s.path + ".tmp")

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Debug().Str("path", s.path).Msg("no alert state file, starting empty")
			return
		}
		s.logger.Warn().Err(err).Str("path", s.path).Msg("failed to read alert state, starting empty")
		return
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		s.logger.Warn().Err(err).Str("path", s.path).Msg("alert state is corrupt, starting empty")
		return
	}

	if doc.Version != documentVersion {
		s.logger.Warn().
			Int("version", doc.Version).
			Int("expected", documentVersion).
			Str("path", s.path).
			Msg("unsupported alert state version, starting empty")
		return
	}

	for key, rec := range doc.Alerts {
		if rec == nil {
			continue
		}
		// Timestamps are compared as UTC instants regardless of the zone
		// they were serialized in.
		rec.FirstSeen = rec.FirstSeen.UTC()
		if rec.LastAlerted != nil {
			t := rec.LastAlerted.UTC()
			rec.LastAlerted = &t
		}
		s.records[key] = rec
	}

	s.logger.Info().Int("records", len(s.records)).Str("path", s.path).Msg("alert state loaded")
}

// Save writes the store to disk atomically: the document goes to a
// temporary file which is fsynced and renamed into place, so a crash can
// never leave a half-written state file.
func (s *Store) Save() error {
	doc := document{
		Version: documentVersion,
		Alerts:  s.records,
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal alert state: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	tmp := s.path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("failed to create temp state file: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to write alert state: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to sync alert state: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to close alert state: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace alert state: %w", err)
	}

	if d, err := os.Open(dir); err == nil {
		_ = d.Sync()
		_ = d.Close()
	}

	s.logger.Debug().Int("records", len(s.records)).Str("path", s.path).Msg("alert state saved")
	return nil
}

// Reconcile compares the cycle's issues against existing records and
// returns one decision per (pool, category) key:
//
//   - Absent -> Active: record created, SendAlert
//   - Active, inside the resend window: no mutation, Suppress
//   - Active, window elapsed: last_alerted refreshed, count incremented, SendAlert
//   - Active -> Absent: record removed, exactly one SendRecovery
//
// Multiple issues sharing a key this cycle collapse into the first one in
// evaluation order; the record tracks that issue's message.
func (s *Store) Reconcile(issues []model.Issue, now time.Time) []model.AlertDecision {
	now = now.UTC()

	current := make(map[string]model.Issue, len(issues))
	order := make([]string, 0, len(issues))
	for _, issue := range issues {
		key := issue.Key()
		if _, seen := current[key]; seen {
			continue
		}
		current[key] = issue
		order = append(order, key)
	}

	decisions := make([]model.AlertDecision, 0, len(order))

	for _, key := range order {
		issue := current[key]
		rec, active := s.records[key]

		if !active {
			alerted := now
			s.records[key] = &model.AlertRecord{
				PoolName:      issue.PoolName,
				IssueCategory: issue.Category,
				FirstSeen:     now,
				LastAlerted:   &alerted,
				AlertCount:    1,
				Message:       issue.Message,
			}
			decisions = append(decisions, model.AlertDecision{Issue: issue, Action: model.ActionSendAlert})
			s.logger.Info().Str("key", key).Str("severity", string(issue.Severity)).Msg("new alert")
			continue
		}

		if s.shouldResend(rec, now) {
			alerted := now
			rec.LastAlerted = &alerted
			rec.AlertCount++
			rec.Message = issue.Message
			decisions = append(decisions, model.AlertDecision{Issue: issue, Action: model.ActionSendAlert})
			s.logger.Info().Str("key", key).Int("alert_count", rec.AlertCount).Msg("resending alert")
			continue
		}

		decisions = append(decisions, model.AlertDecision{Issue: issue, Action: model.ActionSuppress})
	}

	// Records whose issue disappeared this cycle are cleared with exactly
	// one recovery decision, in stable key order.
	var cleared []string
	for key := range s.records {
		if _, stillPresent := current[key]; !stillPresent {
			cleared = append(cleared, key)
		}
	}
	sort.Strings(cleared)

	for _, key := range cleared {
		rec := s.records[key]
		delete(s.records, key)
		decisions = append(decisions, model.AlertDecision{
			Issue: model.Issue{
				PoolName: rec.PoolName,
				Severity: model.SeverityOk,
				Category: rec.IssueCategory,
				Message:  fmt.Sprintf("pool %s %s issue resolved", rec.PoolName, rec.IssueCategory),
			},
			Action: model.ActionSendRecovery,
		})
		s.logger.Info().
			Str("key", key).
			Time("first_seen", rec.FirstSeen).
			Int("alert_count", rec.AlertCount).
			Msg("alert recovered")
	}

	return decisions
}

// shouldResend reports whether the record's resend window has elapsed.
// A record without a last-alerted timestamp is due immediately.
func (s *Store) shouldResend(rec *model.AlertRecord, now time.Time) bool {
	if rec.LastAlerted == nil {
		return true
	}
	return now.Sub(rec.LastAlerted.UTC()) >= s.resendInterval
}

// Get returns the record for a key, or nil if the key is absent.
func (s *Store) Get(key string) *model.AlertRecord {
	return s.records[key]
}

// Len returns the number of active records.
func (s *Store) Len() int {
	return len(s.records)
}

// Records returns a copy of the active records keyed by "<pool>:<category>".
func (s *Store) Records() map[string]model.AlertRecord {
	out := make(map[string]model.AlertRecord, len(s.records))
	for key, rec := range s.records {
		out[key] = *rec
	}
	return out
}
