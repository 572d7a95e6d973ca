package metrics

import (
	"sync"
	"testing"
)

func TestCollector_Counters(t *testing.T) {
	c := NewCollector()

	c.IncEventsDecoded()
	c.IncEventsDecoded()
	c.IncDecodeErrors()
	c.IncStreamsSettled()
	c.IncStreamsFailed()
	c.IncStreamsAbandoned()
	c.IncReconcileChecks()
	c.IncReconcileCleared()
	c.IncReconcileErrors()
	c.IncNotificationsPublished()

	snap := c.Snapshot()
	if snap.EventsDecoded != 2 {
		t.Errorf("EventsDecoded = %d, want 2", snap.EventsDecoded)
	}
	if snap.DecodeErrors != 1 {
		t.Errorf("DecodeErrors = %d, want 1", snap.DecodeErrors)
	}
	if snap.StreamsSettled != 1 || snap.StreamsFailed != 1 || snap.StreamsAbandoned != 1 {
		t.Errorf("stream counters = %+v", snap)
	}
	if snap.ReconcileChecks != 1 || snap.ReconcileCleared != 1 || snap.ReconcileErrors != 1 {
		t.Errorf("reconcile counters = %+v", snap)
	}
	if snap.NotificationsPublished != 1 {
		t.Errorf("NotificationsPublished = %d, want 1", snap.NotificationsPublished)
	}
}

func TestCollector_NilReceiverSafe(t *testing.T) {
	var c *Collector
	c.IncEventsDecoded()
	c.IncDecodeErrors()
	c.IncStreamsSettled()
	c.IncReconcileChecks()
	c.IncNotificationsPublished()

	snap := c.Snapshot()
	if snap.EventsDecoded != 0 {
		t.Error("nil collector must return zero snapshot")
	}
}

func TestCollector_SnapshotIsolation(t *testing.T) {
	c := NewCollector()
	c.IncEventsDecoded()

	snap := c.Snapshot()
	c.IncEventsDecoded()

	if snap.EventsDecoded != 1 {
		t.Error("snapshot must not reflect later mutations")
	}
}

func TestCollector_ConcurrentIncrements(t *testing.T) {
	c := NewCollector()

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.IncEventsDecoded()
		}()
	}
	wg.Wait()

	if got := c.Snapshot().EventsDecoded; got != 50 {
		t.Errorf("EventsDecoded = %d, want 50", got)
	}
}
