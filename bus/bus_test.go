package bus

import (
	"reflect"
	"testing"
)

func TestPublish_SubscriptionOrder(t *testing.T) {
	b := New()

	var order []int
	b.Subscribe("t", func(any) { order = append(order, 1) })
	b.Subscribe("t", func(any) { order = append(order, 2) })
	b.Subscribe("t", func(any) { order = append(order, 3) })

	b.Publish("t", nil)

	if !reflect.DeepEqual(order, []int{1, 2, 3}) {
		t.Errorf("dispatch order = %v, want [1 2 3]", order)
	}
}

func TestPublish_PayloadDelivered(t *testing.T) {
	b := New()

	var got any
	b.Subscribe(TopicPaymentResult, func(payload any) { got = payload })

	want := PaymentResult{Success: true, Title: "Purchase Complete", Message: "Credits added"}
	b.Publish(TopicPaymentResult, want)

	if got != want {
		t.Errorf("payload = %v, want %v", got, want)
	}
}

func TestPublish_TopicIsolation(t *testing.T) {
	b := New()

	calls := 0
	b.Subscribe(TopicRefreshUser, func(any) { calls++ })

	b.Publish(TopicRefreshTransactions, nil)
	if calls != 0 {
		t.Error("handler must not fire for other topics")
	}

	b.Publish(TopicRefreshUser, nil)
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestPublish_NoSubscribers(t *testing.T) {
	b := New()
	// Must not panic.
	b.Publish("nobody-home", nil)
}

func TestUnsubscribe(t *testing.T) {
	b := New()

	calls := 0
	unsub := b.Subscribe("t", func(any) { calls++ })
	b.Subscribe("t", func(any) {})

	b.Publish("t", nil)
	unsub()
	b.Publish("t", nil)

	if calls != 1 {
		t.Errorf("calls = %d, want 1 (no delivery after unsubscribe)", calls)
	}

	// Unsubscribing twice is harmless.
	unsub()
}

func TestPublish_MultipleSubscribersAllReceive(t *testing.T) {
	b := New()

	received := make([]any, 0, 2)
	b.Subscribe("t", func(p any) { received = append(received, p) })
	b.Subscribe("t", func(p any) { received = append(received, p) })

	b.Publish("t", "x")

	if len(received) != 2 {
		t.Errorf("received %d deliveries, want 2", len(received))
	}
}
