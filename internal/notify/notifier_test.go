package notify

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zpoolmon/internal/config"
	"zpoolmon/internal/model"
)

// recordingNotifier captures the notifications handed to it.
type recordingNotifier struct {
	name     string
	received []Notification
	err      error
}

func (r *recordingNotifier) Name() string { return r.name }

func (r *recordingNotifier) Notify(_ context.Context, n Notification) error {
	r.received = append(r.received, n)
	return r.err
}

// createAlertDecision builds a dispatchable alert decision.
func createAlertDecision(pool string, category model.IssueCategory) model.AlertDecision {
	return model.AlertDecision{
		Issue: model.Issue{
			PoolName: pool,
			Severity: model.SeverityWarning,
			Category: category,
			Message:  "pool " + pool + " " + string(category) + " threshold breached",
		},
		Action: model.ActionSendAlert,
	}
}

// =============================================================================
// FromDecision Tests
// =============================================================================

func TestFromDecision_Alert(t *testing.T) {
	now := time.Date(2025, 7, 14, 12, 0, 0, 0, time.UTC)
	d := createAlertDecision("tank", model.CategoryCapacity)

	n := FromDecision(d, now)

	assert.Equal(t, "[warning] pool tank: capacity", n.Title)
	assert.Equal(t, d.Issue.Message, n.Body)
	assert.Equal(t, model.ActionSendAlert, n.Action)
	assert.Equal(t, now, n.Timestamp)
}

func TestFromDecision_Recovery(t *testing.T) {
	now := time.Now().UTC()
	d := model.AlertDecision{
		Issue: model.Issue{
			PoolName: "tank",
			Severity: model.SeverityOk,
			Category: model.CategoryCapacity,
			Message:  "pool tank capacity issue resolved",
		},
		Action: model.ActionSendRecovery,
	}

	n := FromDecision(d, now)

	assert.Equal(t, "[RESOLVED] pool tank: capacity", n.Title)
	assert.Equal(t, model.SeverityOk, n.Severity)
}

// =============================================================================
// Dispatcher Tests
// =============================================================================

func TestDispatcher_SuppressedDecisionsNotDispatched(t *testing.T) {
	rec := &recordingNotifier{name: "test"}
	d := &Dispatcher{
		notifiers: []Notifier{rec},
		logger:    zerolog.Nop(),
		now:       time.Now,
	}

	decisions := []model.AlertDecision{
		createAlertDecision("tank", model.CategoryHealth),
		{
			Issue:  model.Issue{PoolName: "tank", Severity: model.SeverityWarning, Category: model.CategoryCapacity},
			Action: model.ActionSuppress,
		},
	}

	d.Dispatch(context.Background(), decisions)

	require.Len(t, rec.received, 1)
	assert.Equal(t, model.CategoryHealth, rec.received[0].Category)
}

func TestDispatcher_FansOutToAllNotifiers(t *testing.T) {
	first := &recordingNotifier{name: "first"}
	second := &recordingNotifier{name: "second"}
	d := &Dispatcher{
		notifiers: []Notifier{first, second},
		logger:    zerolog.Nop(),
		now:       time.Now,
	}

	d.Dispatch(context.Background(), []model.AlertDecision{
		createAlertDecision("tank", model.CategoryErrors),
	})

	assert.Len(t, first.received, 1)
	assert.Len(t, second.received, 1)
}

func TestDispatcher_FailingChannelDoesNotBlockOthers(t *testing.T) {
	failing := &recordingNotifier{name: "failing", err: assert.AnError}
	healthy := &recordingNotifier{name: "healthy"}
	d := &Dispatcher{
		notifiers: []Notifier{failing, healthy},
		logger:    zerolog.Nop(),
		now:       time.Now,
	}

	d.Dispatch(context.Background(), []model.AlertDecision{
		createAlertDecision("tank", model.CategoryScrub),
	})

	assert.Len(t, healthy.received, 1)
}

func TestNewDispatcher_FallsBackToConsole(t *testing.T) {
	d := NewDispatcher(nil, config.RetryConfig{}, zerolog.Nop())

	require.Len(t, d.notifiers, 1)
	assert.Equal(t, "default", d.notifiers[0].Name())
}

func TestNewDispatcher_SkipsDisabledChannels(t *testing.T) {
	channels := []*model.NotificationChannel{
		{Name: "console-on", Type: model.ChannelConsole, Enabled: true},
		{Name: "console-off", Type: model.ChannelConsole, Enabled: false},
		{Name: "hook-off", Type: model.ChannelWebhook, URL: "https://example.com", Enabled: false},
	}

	d := NewDispatcher(channels, config.RetryConfig{}, zerolog.Nop())

	require.Len(t, d.notifiers, 1)
	assert.Equal(t, "console-on", d.notifiers[0].Name())
}

func TestNewDispatcher_BuildsWebhook(t *testing.T) {
	channels := []*model.NotificationChannel{
		{Name: "hook", Type: model.ChannelWebhook, URL: "https://example.com/notify", Enabled: true},
	}

	d := NewDispatcher(channels, config.RetryConfig{MaxRetries: 2, BaseDelay: time.Second}, zerolog.Nop())

	require.Len(t, d.notifiers, 1)
	assert.Equal(t, "hook", d.notifiers[0].Name())
	_, ok := d.notifiers[0].(*WebhookNotifier)
	assert.True(t, ok)
}
