// Package model provides data models for the pool monitor.
package model

// ChannelType identifies how a notification channel hands off a decision.
type ChannelType string

const (
	// ChannelConsole writes the notification to the process log.
	ChannelConsole ChannelType = "console"
	// ChannelWebhook POSTs the notification to an external dispatch endpoint.
	ChannelWebhook ChannelType = "webhook"
)

// NotificationChannel is one destination for alert and recovery notices,
// declared in the channels definition file.
type NotificationChannel struct {
	Name    string            `yaml:"name" json:"name"`
	Type    ChannelType       `yaml:"type" json:"type"`
	URL     string            `yaml:"url,omitempty" json:"url,omitempty"` // webhook only
	Headers map[string]string `yaml:"headers,omitempty" json:"headers,omitempty"`
	Enabled bool              `yaml:"enabled" json:"enabled"`
}

// ChannelsConfig is the top-level structure of the channels definition file.
type ChannelsConfig struct {
	Channels []*NotificationChannel `yaml:"channels"`
}
