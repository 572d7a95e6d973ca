// Package bus provides the in-process notification bus decoupling the
// stream and checkout subsystems from whichever surfaces must refresh
// derived data. It is the only coupling mechanism between the core and its
// callers: publishers never know who is listening.
//
// Dispatch is synchronous and fire-and-forget, scoped to the running
// process. Handlers for a single topic run in subscription order; no
// ordering is guaranteed across distinct topics.
package bus

import "sync"

// Topics published by the core subsystems.
const (
	// TopicRefreshUser signals that the user's balance/profile is stale.
	TopicRefreshUser = "payment:refresh-user"
	// TopicRefreshTransactions signals that the transaction list is stale.
	TopicRefreshTransactions = "transactions:refresh"
	// TopicPaymentResult carries a one-shot PaymentResult notice.
	TopicPaymentResult = "payment:result"
	// TopicRefreshReports signals that a new report is available.
	TopicRefreshReports = "reports:refresh"
)

// PaymentResult is the payload published on TopicPaymentResult.
type PaymentResult struct {
	Success bool   `json:"success"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Handler receives the payload published on a subscribed topic.
// The payload may be nil for pure "something changed" topics.
type Handler func(payload any)

// Bus is a process-wide publish/subscribe dispatcher.
// The zero value is not usable; construct with New.
type Bus struct {
	mu     sync.Mutex
	nextID int
	subs   map[string][]subscription
}

type subscription struct {
	id      int
	handler Handler
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{subs: make(map[string][]subscription)}
}

// Subscribe registers a handler for a topic and returns an unsubscribe
// function. Handlers registered earlier run earlier.
func (b *Bus) Subscribe(topic string, handler Handler) func() {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs[topic] = append(b.subs[topic], subscription{id: id, handler: handler})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		subs := b.subs[topic]
		for i, s := range subs {
			if s.id == id {
				b.subs[topic] = append(subs[:i:i], subs[i+1:]...)
				return
			}
		}
	}
}

// Publish delivers payload to every handler subscribed to topic, in
// subscription order, on the calling goroutine. Publishing to a topic with
// no subscribers is a no-op.
func (b *Bus) Publish(topic string, payload any) {
	b.mu.Lock()
	subs := make([]subscription, len(b.subs[topic]))
	copy(subs, b.subs[topic])
	b.mu.Unlock()

	for _, s := range subs {
		s.handler(payload)
	}
}
