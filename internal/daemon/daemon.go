// Package daemon drives the continuous monitoring loop: one fetch ->
// parse -> evaluate -> reconcile -> persist cycle per interval, with
// signal-driven cooperative shutdown.
package daemon

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"zpoolmon/internal/alertstore"
	"zpoolmon/internal/client/zpool"
	"zpoolmon/internal/model"
)

// State describes the daemon lifecycle.
type State string

const (
	StateStarting State = "starting"
	StateRunning  State = "running"
	StateStopping State = "stopping"
	StateStopped  State = "stopped"
)

// CycleRunner produces one cycle's CheckResult. Implemented by
// service.Checker; replaced in tests.
type CycleRunner interface {
	Run(ctx context.Context) (*model.CheckResult, error)
}

// DecisionDispatcher hands non-suppressed decisions to the notifiers.
// Implemented by notify.Dispatcher; replaced in tests.
type DecisionDispatcher interface {
	Dispatch(ctx context.Context, decisions []model.AlertDecision)
}

// Daemon owns the alert state store's lifetime and runs the cycle loop.
// The whole cycle runs on one goroutine; no cross-cycle overlap is
// possible and the store needs no internal locking.
type Daemon struct {
	checker    CycleRunner
	store      *alertstore.Store
	dispatcher DecisionDispatcher
	interval   time.Duration
	logger     zerolog.Logger

	state State
}

// New creates a daemon. The store must not be shared with other owners.
func New(checker CycleRunner, store *alertstore.Store, dispatcher DecisionDispatcher, interval time.Duration, logger zerolog.Logger) *Daemon {
	return &Daemon{
		checker:    checker,
		store:      store,
		dispatcher: dispatcher,
		interval:   interval,
		logger:     logger.With().Str("component", "daemon").Logger(),
		state:      StateStarting,
	}
}

// State returns the current lifecycle state. Only meaningful from the
// goroutine running the loop.
func (d *Daemon) State() State {
	return d.state
}

// Run loads the alert state, then loops: run a cycle, wait for the
// interval or cancellation, whichever comes first. A cycle in flight
// always finishes, including its persistence write, before Run returns;
// a final save runs at shutdown.
func (d *Daemon) Run(ctx context.Context) error {
	d.logger.Info().Dur("interval", d.interval).Msg("daemon starting")
	d.store.Load()
	d.state = StateRunning

	timer := time.NewTimer(d.interval)
	defer timer.Stop()

	for {
		d.RunCycle(ctx)

		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(d.interval)

		select {
		case <-ctx.Done():
			d.state = StateStopping
			d.logger.Info().Msg("stop requested, shutting down")
			if err := d.store.Save(); err != nil {
				d.logger.Error().Err(err).Msg("final state save failed")
			}
			d.state = StateStopped
			d.logger.Info().Msg("daemon stopped")
			return nil
		case <-timer.C:
		}
	}
}

// RunCycle executes one full cycle. Fetch or parse failures are logged and
// skipped without touching the store; everything else reconciles,
// dispatches, and persists. The result is returned for one-shot callers.
func (d *Daemon) RunCycle(ctx context.Context) (*model.CheckResult, error) {
	result, err := d.checker.Run(ctx)
	if err != nil {
		event := d.logger.Error().Err(err)
		if zpool.IsTimeout(err) {
			event = event.Bool("timeout", true)
		}
		event.Msg("cycle failed, waiting for next interval")
		return nil, err
	}

	decisions := d.store.Reconcile(result.Issues, result.Timestamp)
	d.dispatcher.Dispatch(ctx, decisions)

	if err := d.store.Save(); err != nil {
		// A failed save costs dedup state for this cycle only; the loop
		// keeps running.
		d.logger.Error().Err(err).Msg("failed to persist alert state")
	}

	d.logDecisions(decisions)
	return result, nil
}

// logDecisions summarizes the cycle's alert actions.
func (d *Daemon) logDecisions(decisions []model.AlertDecision) {
	var sent, suppressed, recovered int
	for _, dec := range decisions {
		switch dec.Action {
		case model.ActionSendAlert:
			sent++
		case model.ActionSuppress:
			suppressed++
		case model.ActionSendRecovery:
			recovered++
		}
	}

	d.logger.Info().
		Int("alerts_sent", sent).
		Int("suppressed", suppressed).
		Int("recovered", recovered).
		Int("active_records", d.store.Len()).
		Msg("cycle reconciled")
}
