package bus

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/poliverai/poliver/adapter"
)

// captureAdapter records published notifications.
type captureAdapter struct {
	mu            sync.Mutex
	notifications []*adapter.Notification
	err           error
	delivered     chan struct{}
}

func newCaptureAdapter() *captureAdapter {
	return &captureAdapter{delivered: make(chan struct{}, 16)}
}

func (a *captureAdapter) Publish(_ context.Context, n *adapter.Notification) error {
	a.mu.Lock()
	a.notifications = append(a.notifications, n)
	a.mu.Unlock()
	a.delivered <- struct{}{}
	return a.err
}

func (a *captureAdapter) Close() error { return nil }

func (a *captureAdapter) waitDelivery(t *testing.T) {
	t.Helper()
	select {
	case <-a.delivered:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for downstream delivery")
	}
}

var _ adapter.Adapter = (*captureAdapter)(nil)

func TestForward_BridgesSelectedTopics(t *testing.T) {
	b := New()
	a := newCaptureAdapter()
	defer Forward(b, []string{TopicPaymentResult}, a, nil)()

	b.Publish(TopicPaymentResult, PaymentResult{Success: true, Title: "Payment Successful"})
	a.waitDelivery(t)

	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.notifications) != 1 {
		t.Fatalf("got %d notifications, want 1", len(a.notifications))
	}
	n := a.notifications[0]
	if n.Topic != TopicPaymentResult {
		t.Errorf("topic = %q", n.Topic)
	}
	if n.Timestamp == "" {
		t.Error("notification must carry a timestamp")
	}
	result, ok := n.Payload.(PaymentResult)
	if !ok || !result.Success {
		t.Errorf("payload = %v", n.Payload)
	}
}

func TestForward_IgnoresOtherTopics(t *testing.T) {
	b := New()
	a := newCaptureAdapter()
	defer Forward(b, []string{TopicPaymentResult}, a, nil)()

	b.Publish(TopicRefreshUser, nil)

	// Forwarding is asynchronous, so give a stray delivery time to land.
	select {
	case <-a.delivered:
		t.Fatal("unselected topic must not be forwarded")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestForward_PublishErrorDoesNotPropagate(t *testing.T) {
	b := New()
	a := newCaptureAdapter()
	a.err = errors.New("downstream down")
	defer Forward(b, []string{TopicRefreshUser}, a, nil)()

	// Must not panic or block the in-process dispatch.
	b.Publish(TopicRefreshUser, nil)
	a.waitDelivery(t)
}

func TestForward_DetachStopsBridging(t *testing.T) {
	b := New()
	a := newCaptureAdapter()
	detach := Forward(b, []string{TopicRefreshUser}, a, nil)
	detach()

	b.Publish(TopicRefreshUser, nil)

	select {
	case <-a.delivered:
		t.Fatal("detached bridge must not forward")
	case <-time.After(50 * time.Millisecond):
	}
}
