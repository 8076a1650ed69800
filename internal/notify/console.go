package notify

import (
	"context"

	"github.com/rs/zerolog"

	"zpoolmon/internal/model"
)

// ConsoleNotifier writes notifications to the process log. It is the
// fallback destination when no channel is configured.
type ConsoleNotifier struct {
	name   string
	logger zerolog.Logger
}

// NewConsoleNotifier creates a console notifier with the given channel name.
func NewConsoleNotifier(name string, logger zerolog.Logger) *ConsoleNotifier {
	return &ConsoleNotifier{
		name:   name,
		logger: logger.With().Str("component", "console-notifier").Str("channel", name).Logger(),
	}
}

// Name returns the channel name.
func (c *ConsoleNotifier) Name() string {
	return c.name
}

// Notify logs the notification. Recoveries log at info, alerts at warn.
func (c *ConsoleNotifier) Notify(_ context.Context, n Notification) error {
	event := c.logger.Warn()
	if n.Action == model.ActionSendRecovery || n.Severity == model.SeverityOk {
		event = c.logger.Info()
	}

	event.
		Str("pool", n.PoolName).
		Str("category", string(n.Category)).
		Str("severity", string(n.Severity)).
		Str("action", string(n.Action)).
		Msg(n.Title + ": " + n.Body)

	return nil
}
