// Package notify hands alert and recovery decisions to their destinations.
// Message composition and protocol-level delivery stay outside the core:
// the bundled notifiers either log the notice or POST it to an external
// dispatch endpoint.
package notify

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"zpoolmon/internal/config"
	"zpoolmon/internal/model"
)

// Notification is the wire-agnostic notice built from one alert decision.
type Notification struct {
	Title     string              `json:"title"`
	Body      string              `json:"body"`
	Severity  model.Severity      `json:"severity"`
	Action    model.AlertAction   `json:"action"`
	PoolName  string              `json:"pool_name"`
	Category  model.IssueCategory `json:"category"`
	Timestamp time.Time           `json:"timestamp"` // UTC
	Hostname  string              `json:"hostname"`
	Details   map[string]string   `json:"details,omitempty"`
}

// FromDecision builds the notification for a dispatchable decision.
func FromDecision(d model.AlertDecision, now time.Time) Notification {
	hostname, _ := os.Hostname()

	title := fmt.Sprintf("[%s] pool %s: %s", d.Issue.Severity, d.Issue.PoolName, d.Issue.Category)
	if d.Action == model.ActionSendRecovery {
		title = fmt.Sprintf("[RESOLVED] pool %s: %s", d.Issue.PoolName, d.Issue.Category)
	}

	return Notification{
		Title:     title,
		Body:      d.Issue.Message,
		Severity:  d.Issue.Severity,
		Action:    d.Action,
		PoolName:  d.Issue.PoolName,
		Category:  d.Issue.Category,
		Timestamp: now.UTC(),
		Hostname:  hostname,
		Details:   d.Issue.Details,
	}
}

// Notifier delivers one notification to one destination.
type Notifier interface {
	// Name identifies the channel for logging.
	Name() string
	// Notify hands off the notification. Failures are reported to the
	// caller but must never fail a monitoring cycle.
	Notify(ctx context.Context, n Notification) error
}

// Dispatcher fans each dispatchable decision out to all enabled channels.
type Dispatcher struct {
	notifiers []Notifier
	logger    zerolog.Logger
	now       func() time.Time
}

// NewDispatcher builds notifiers from the enabled channel definitions.
// With no enabled channels, a console notifier is used so decisions are
// always visible somewhere.
func NewDispatcher(channels []*model.NotificationChannel, retry config.RetryConfig, logger zerolog.Logger) *Dispatcher {
	d := &Dispatcher{
		logger: logger.With().Str("component", "dispatcher").Logger(),
		now:    time.Now,
	}

	for _, ch := range channels {
		if !ch.Enabled {
			continue
		}
		switch ch.Type {
		case model.ChannelConsole:
			d.notifiers = append(d.notifiers, NewConsoleNotifier(ch.Name, logger))
		case model.ChannelWebhook:
			d.notifiers = append(d.notifiers, NewWebhookNotifier(ch, retry, logger))
		default:
			d.logger.Warn().Str("channel", ch.Name).Str("type", string(ch.Type)).Msg("skipping channel with unsupported type")
		}
	}

	if len(d.notifiers) == 0 {
		d.notifiers = append(d.notifiers, NewConsoleNotifier("default", logger))
	}

	return d
}

// Dispatch hands every non-suppressed decision to all notifiers. A failing
// channel is logged and skipped; the cycle always continues.
func (d *Dispatcher) Dispatch(ctx context.Context, decisions []model.AlertDecision) {
	for _, decision := range decisions {
		if !decision.NeedsDispatch() {
			continue
		}

		n := FromDecision(decision, d.now())
		for _, notifier := range d.notifiers {
			if err := notifier.Notify(ctx, n); err != nil {
				d.logger.Error().
					Err(err).
					Str("channel", notifier.Name()).
					Str("pool", n.PoolName).
					Str("category", string(n.Category)).
					Msg("failed to deliver notification")
			}
		}
	}
}
