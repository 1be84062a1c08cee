package localstore

import "testing"

func TestLocalBusPersistentAndOnce(t *testing.T) {
	b := NewLocalBus[string]()

	var persistent, once int
	b.Subscribe(EventHit, func(Event[string]) { persistent++ }, false)
	b.Subscribe(EventHit, func(Event[string]) { once++ }, true)

	b.Publish(Event[string]{Type: EventHit})
	b.Publish(Event[string]{Type: EventHit})

	if persistent != 2 {
		t.Fatalf("persistent listener ran %d times, want 2", persistent)
	}
	if once != 1 {
		t.Fatalf("fire-once listener ran %d times, want 1", once)
	}
}

func TestLocalBusDeliveryOrderAndTypeIsolation(t *testing.T) {
	b := NewLocalBus[string]()

	var order []int
	b.Subscribe(EventMissed, func(Event[string]) { order = append(order, 1) }, false)
	b.Subscribe(EventMissed, func(Event[string]) { order = append(order, 2) }, false)
	b.Subscribe(EventHit, func(Event[string]) { order = append(order, 99) }, false)

	b.Publish(Event[string]{Type: EventMissed})

	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Fatalf("delivery order: %v", order)
	}
}

func TestLocalBusCancelIsIdempotent(t *testing.T) {
	b := NewLocalBus[string]()

	var calls int
	cancel := b.Subscribe(EventHit, func(Event[string]) { calls++ }, false)
	cancel()
	cancel()

	b.Publish(Event[string]{Type: EventHit})
	if calls != 0 {
		t.Fatalf("cancelled listener ran %d times", calls)
	}
}

func TestLocalBusListenerMayResubscribe(t *testing.T) {
	b := NewLocalBus[string]()

	var calls int
	var register func()
	register = func() {
		b.Subscribe(EventHit, func(Event[string]) {
			calls++
			register() // re-arm, emulating a rolling fire-once listener
		}, true)
	}
	register()

	b.Publish(Event[string]{Type: EventHit})
	b.Publish(Event[string]{Type: EventHit})
	if calls != 2 {
		t.Fatalf("re-armed listener ran %d times, want 2", calls)
	}
}
