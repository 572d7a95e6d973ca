package bus

import (
	"context"
	"time"

	"github.com/poliverai/poliver/adapter"
	"github.com/poliverai/poliver/log"
)

// forwardTimeout bounds each downstream publish so a slow adapter cannot
// pile up goroutines indefinitely.
const forwardTimeout = 30 * time.Second

// Forward bridges the given topics to an adapter: every in-process publish
// on one of them is re-published downstream as a Notification.
//
// Delivery is fire-and-forget on a separate goroutine per notification, so
// the synchronous in-process dispatch is never blocked by a slow or failing
// downstream. Publish errors are logged, never propagated. The returned
// function detaches the bridge.
func Forward(b *Bus, topics []string, a adapter.Adapter, logger *log.Logger) func() {
	if logger == nil {
		logger = log.Nop()
	}

	unsubs := make([]func(), 0, len(topics))
	for _, topic := range topics {
		topic := topic
		unsubs = append(unsubs, b.Subscribe(topic, func(payload any) {
			notification := adapter.NewNotification(topic, payload)
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), forwardTimeout)
				defer cancel()
				if err := a.Publish(ctx, notification); err != nil {
					logger.Warn("downstream notification failed", map[string]any{
						"topic": topic,
						"error": err.Error(),
					})
				}
			}()
		}))
	}

	return func() {
		for _, unsub := range unsubs {
			unsub()
		}
	}
}
