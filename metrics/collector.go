// Package metrics provides counters for stream and reconciliation activity.
//
// The Collector is a leaf package with no internal dependencies. Counters
// accumulate for the life of the process and are read via Snapshot.
package metrics

import "sync"

// Snapshot is an immutable point-in-time view of all counters.
// Safe to read concurrently after creation.
type Snapshot struct {
	// Stream ingestion
	EventsDecoded    int64
	DecodeErrors     int64
	StreamsSettled   int64
	StreamsFailed    int64
	StreamsAbandoned int64 // ended without settlement or canceled

	// Checkout reconciliation
	ReconcileChecks  int64
	ReconcileCleared int64
	ReconcileErrors  int64

	// Notifications
	NotificationsPublished int64
}

// Collector accumulates counters. Thread-safe via sync.Mutex.
// All increment methods are nil-receiver safe so instrumentation points
// never need guards.
type Collector struct {
	mu sync.Mutex

	eventsDecoded    int64
	decodeErrors     int64
	streamsSettled   int64
	streamsFailed    int64
	streamsAbandoned int64

	reconcileChecks  int64
	reconcileCleared int64
	reconcileErrors  int64

	notificationsPublished int64
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// IncEventsDecoded records one successfully decoded stream record.
func (c *Collector) IncEventsDecoded() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.eventsDecoded++
	c.mu.Unlock()
}

// IncDecodeErrors records one malformed record that was skipped.
func (c *Collector) IncDecodeErrors() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.decodeErrors++
	c.mu.Unlock()
}

// IncStreamsSettled records a stream that settled with a result.
func (c *Collector) IncStreamsSettled() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.streamsSettled++
	c.mu.Unlock()
}

// IncStreamsFailed records a stream that settled as failure.
func (c *Collector) IncStreamsFailed() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.streamsFailed++
	c.mu.Unlock()
}

// IncStreamsAbandoned records a stream that ended without settling
// (EOF without a terminal event, or caller cancellation).
func (c *Collector) IncStreamsAbandoned() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.streamsAbandoned++
	c.mu.Unlock()
}

// IncReconcileChecks records one status-endpoint query.
func (c *Collector) IncReconcileChecks() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.reconcileChecks++
	c.mu.Unlock()
}

// IncReconcileCleared records a pending checkout cleared by a terminal status.
func (c *Collector) IncReconcileCleared() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.reconcileCleared++
	c.mu.Unlock()
}

// IncReconcileErrors records a reconciliation attempt that failed upstream.
func (c *Collector) IncReconcileErrors() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.reconcileErrors++
	c.mu.Unlock()
}

// IncNotificationsPublished records one bus publish from the core.
func (c *Collector) IncNotificationsPublished() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.notificationsPublished++
	c.mu.Unlock()
}

// Snapshot returns an immutable view of all counters. The Collector can
// continue to be mutated independently.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	return Snapshot{
		EventsDecoded:    c.eventsDecoded,
		DecodeErrors:     c.decodeErrors,
		StreamsSettled:   c.streamsSettled,
		StreamsFailed:    c.streamsFailed,
		StreamsAbandoned: c.streamsAbandoned,

		ReconcileChecks:  c.reconcileChecks,
		ReconcileCleared: c.reconcileCleared,
		ReconcileErrors:  c.reconcileErrors,

		NotificationsPublished: c.notificationsPublished,
	}
}
