// Package config provides configuration management for the pool monitor.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"zpoolmon/internal/model"
)

// LoadChannels reads notification channel definitions from the specified
// YAML file. An empty path returns no channels; the daemon then logs
// decisions without dispatching them anywhere else.
func LoadChannels(channelsPath string) ([]*model.NotificationChannel, error) {
	if channelsPath == "" {
		return nil, nil
	}

	if _, err := os.Stat(channelsPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("channels file not found: %s", channelsPath)
	}

	data, err := os.ReadFile(channelsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read channels file: %w", err)
	}

	var cfg model.ChannelsConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse channels file: %w", err)
	}

	// Validate each channel definition
	for i, ch := range cfg.Channels {
		if ch.Name == "" {
			return nil, fmt.Errorf("channel at index %d has no name", i)
		}
		switch ch.Type {
		case model.ChannelConsole:
		case model.ChannelWebhook:
			if ch.URL == "" {
				return nil, fmt.Errorf("webhook channel %q has no url", ch.Name)
			}
		default:
			return nil, fmt.Errorf("channel %q has unsupported type %q", ch.Name, ch.Type)
		}
	}

	return cfg.Channels, nil
}

// CountEnabledChannels returns the count of enabled channels.
func CountEnabledChannels(channels []*model.NotificationChannel) int {
	count := 0
	for _, ch := range channels {
		if ch.Enabled {
			count++
		}
	}
	return count
}
