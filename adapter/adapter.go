// Package adapter defines the outbound notification boundary.
//
// Adapters push in-process notifications to downstream systems (a Redis
// channel, a webhook endpoint) so other tools can react to payment and
// analysis outcomes without polling.
package adapter

import (
	"context"
	"time"
)

// Notification is the JSON wire shape published to downstream systems.
type Notification struct {
	// Topic is the in-process topic the notification originated from,
	// e.g. payment:result.
	Topic string `json:"topic"`
	// Timestamp is the publish time, ISO 8601.
	Timestamp string `json:"timestamp"`
	// Payload is the topic-specific body. May be nil for signal-only
	// topics such as transactions:refresh.
	Payload any `json:"payload,omitempty"`
}

// NewNotification stamps a notification with the current time.
func NewNotification(topic string, payload any) *Notification {
	return &Notification{
		Topic:     topic,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Payload:   payload,
	}
}

// Adapter publishes notifications to a downstream system.
type Adapter interface {
	// Publish sends a notification to the downstream system.
	// Must respect context cancellation and deadlines.
	Publish(ctx context.Context, notification *Notification) error

	// Close releases adapter resources.
	Close() error
}
