package daemon

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zpoolmon/internal/alertstore"
	"zpoolmon/internal/model"
)

// stubChecker returns a canned result or error and counts invocations.
type stubChecker struct {
	result *model.CheckResult
	err    error
	calls  int
}

func (s *stubChecker) Run(ctx context.Context) (*model.CheckResult, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

// stubDispatcher records the decisions handed to it.
type stubDispatcher struct {
	dispatched [][]model.AlertDecision
}

func (s *stubDispatcher) Dispatch(ctx context.Context, decisions []model.AlertDecision) {
	s.dispatched = append(s.dispatched, decisions)
}

// createTestResult builds a result carrying one warning issue.
func createTestResult(now time.Time) *model.CheckResult {
	result := model.NewCheckResult(now)
	result.AddIssues([]model.Issue{
		{
			PoolName: "tank",
			Severity: model.SeverityWarning,
			Category: model.CategoryCapacity,
			Message:  "pool tank capacity 85.0% reached 80.0% threshold",
		},
	})
	result.Finalize()
	return result
}

// createTestDaemon wires a daemon with a fresh temp-backed store.
func createTestDaemon(t *testing.T, checker CycleRunner, dispatcher DecisionDispatcher) (*Daemon, *alertstore.Store) {
	t.Helper()
	store := alertstore.New(filepath.Join(t.TempDir(), "alerts.json"), 24*time.Hour, zerolog.Nop())
	d := New(checker, store, dispatcher, 10*time.Millisecond, zerolog.Nop())
	return d, store
}

// =============================================================================
// RunCycle Tests
// =============================================================================

func TestDaemon_RunCycle_AlertFlow(t *testing.T) {
	now := time.Date(2025, 7, 14, 12, 0, 0, 0, time.UTC)
	checker := &stubChecker{result: createTestResult(now)}
	dispatcher := &stubDispatcher{}
	d, store := createTestDaemon(t, checker, dispatcher)

	result, err := d.RunCycle(context.Background())

	require.NoError(t, err)
	require.NotNil(t, result)

	// The issue became an active record and its decision was dispatched.
	assert.Equal(t, 1, store.Len())
	require.Len(t, dispatcher.dispatched, 1)
	require.Len(t, dispatcher.dispatched[0], 1)
	assert.Equal(t, model.ActionSendAlert, dispatcher.dispatched[0][0].Action)
}

func TestDaemon_RunCycle_FailureSkipsStateMutation(t *testing.T) {
	now := time.Date(2025, 7, 14, 12, 0, 0, 0, time.UTC)

	// Seed one active record through a successful cycle.
	checker := &stubChecker{result: createTestResult(now)}
	dispatcher := &stubDispatcher{}
	d, store := createTestDaemon(t, checker, dispatcher)
	_, err := d.RunCycle(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, store.Len())

	// A failed cycle must not clear the record or emit a recovery.
	checker.err = errors.New("source unavailable")
	result, err := d.RunCycle(context.Background())

	require.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, 1, store.Len())
	assert.Len(t, dispatcher.dispatched, 1) // unchanged
}

func TestDaemon_RunCycle_RecoveryAfterClear(t *testing.T) {
	now := time.Date(2025, 7, 14, 12, 0, 0, 0, time.UTC)
	checker := &stubChecker{result: createTestResult(now)}
	dispatcher := &stubDispatcher{}
	d, store := createTestDaemon(t, checker, dispatcher)

	_, err := d.RunCycle(context.Background())
	require.NoError(t, err)

	// Next cycle comes back clean.
	clean := model.NewCheckResult(now.Add(time.Hour))
	clean.Finalize()
	checker.result = clean

	_, err = d.RunCycle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, store.Len())
	require.Len(t, dispatcher.dispatched, 2)
	require.Len(t, dispatcher.dispatched[1], 1)
	assert.Equal(t, model.ActionSendRecovery, dispatcher.dispatched[1][0].Action)
}

// =============================================================================
// Run Loop Tests
// =============================================================================

func TestDaemon_Run_StopsOnCancel(t *testing.T) {
	checker := &stubChecker{result: createTestResult(time.Now().UTC())}
	dispatcher := &stubDispatcher{}

	store := alertstore.New(filepath.Join(t.TempDir(), "alerts.json"), 24*time.Hour, zerolog.Nop())
	d := New(checker, store, dispatcher, time.Hour, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- d.Run(ctx)
	}()

	// Give the first cycle a moment, then request shutdown. Despite the
	// one-hour interval the loop must exit promptly.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("daemon did not stop after cancellation")
	}

	assert.Equal(t, StateStopped, d.State())
	assert.Equal(t, 1, checker.calls)
}

func TestDaemon_Run_CyclesAtInterval(t *testing.T) {
	checker := &stubChecker{result: createTestResult(time.Now().UTC())}
	dispatcher := &stubDispatcher{}
	d, _ := createTestDaemon(t, checker, dispatcher)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- d.Run(ctx)
	}()

	// With a 10ms interval several cycles should complete.
	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("daemon did not stop after cancellation")
	}

	assert.GreaterOrEqual(t, checker.calls, 2)
}

func TestDaemon_Run_PersistsStateOnShutdown(t *testing.T) {
	now := time.Date(2025, 7, 14, 12, 0, 0, 0, time.UTC)
	checker := &stubChecker{result: createTestResult(now)}
	dispatcher := &stubDispatcher{}

	path := filepath.Join(t.TempDir(), "alerts.json")
	store := alertstore.New(path, 24*time.Hour, zerolog.Nop())
	d := New(checker, store, dispatcher, time.Hour, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- d.Run(ctx)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	// A fresh store restores the record written at shutdown.
	restored := alertstore.New(path, 24*time.Hour, zerolog.Nop())
	restored.Load()
	assert.Equal(t, 1, restored.Len())
}
