package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"zpoolmon/internal/config"
	"zpoolmon/internal/model"
)

// WebhookNotifier POSTs notifications as JSON to an operator-supplied
// dispatch endpoint. Whatever delivers the notice from there (mail,
// pager, chat) is outside this process.
type WebhookNotifier struct {
	name       string
	url        string
	httpClient *resty.Client
	logger     zerolog.Logger
}

// NewWebhookNotifier creates a webhook notifier for the given channel.
func NewWebhookNotifier(ch *model.NotificationChannel, retry config.RetryConfig, logger zerolog.Logger) *WebhookNotifier {
	baseDelay := retry.BaseDelay
	if baseDelay == 0 {
		baseDelay = 1 * time.Second
	}

	httpClient := resty.New().
		SetTimeout(15 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetRetryCount(retry.MaxRetries).
		SetRetryWaitTime(baseDelay).
		SetRetryMaxWaitTime(baseDelay * 8).
		AddRetryCondition(retryCondition)

	for k, v := range ch.Headers {
		httpClient.SetHeader(k, v)
	}

	return &WebhookNotifier{
		name:       ch.Name,
		url:        ch.URL,
		httpClient: httpClient,
		logger:     logger.With().Str("component", "webhook-notifier").Str("channel", ch.Name).Logger(),
	}
}

// retryCondition determines whether a request should be retried.
// Only retry on timeout, 5xx errors, or connection failures.
// Do not retry on 4xx errors.
func retryCondition(resp *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	if resp != nil && resp.StatusCode() >= 500 {
		return true
	}
	return false
}

// Name returns the channel name.
func (w *WebhookNotifier) Name() string {
	return w.name
}

// Notify POSTs the notification to the dispatch endpoint.
func (w *WebhookNotifier) Notify(ctx context.Context, n Notification) error {
	resp, err := w.httpClient.R().
		SetContext(ctx).
		SetBody(n).
		Post(w.url)

	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}

	if resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusMultipleChoices {
		return fmt.Errorf("webhook returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	w.logger.Debug().
		Str("pool", n.PoolName).
		Str("category", string(n.Category)).
		Int("status", resp.StatusCode()).
		Msg("notification delivered")

	return nil
}
