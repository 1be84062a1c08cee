package localstore

import "sync"

// Bus is the event transport the store publishes lifecycle events on.
// It is an injected collaborator; LocalBus (in-process, synchronous) is the
// default. Implementations must deliver synchronously from Publish so that
// event ordering relative to backend calls is preserved.
type Bus[V any] interface {
	// Publish delivers ev to every listener subscribed to ev.Type.
	Publish(ev Event[V])

	// Subscribe registers fn for events of type t. When once is true the
	// subscription auto-cancels after the first delivery. The returned
	// cancel func is idempotent.
	Subscribe(t EventType, fn Listener[V], once bool) (cancel func())
}

type localSub[V any] struct {
	id   uint64
	fn   Listener[V]
	once bool
}

// LocalBus is the default in-process Bus. Listeners run synchronously and in
// registration order. Safe for concurrent use; no lock is held while a
// listener runs, so listeners may call back into the store or the bus.
type LocalBus[V any] struct {
	mu   sync.Mutex
	seq  uint64
	subs map[EventType][]*localSub[V]
}

func NewLocalBus[V any]() *LocalBus[V] {
	return &LocalBus[V]{subs: make(map[EventType][]*localSub[V])}
}

func (b *LocalBus[V]) Publish(ev Event[V]) {
	b.mu.Lock()
	subs := b.subs[ev.Type]
	fire := make([]Listener[V], 0, len(subs))
	remaining := subs[:0]
	for _, s := range subs {
		fire = append(fire, s.fn)
		if !s.once {
			remaining = append(remaining, s)
		}
	}
	if len(remaining) == 0 {
		delete(b.subs, ev.Type)
	} else {
		b.subs[ev.Type] = remaining
	}
	b.mu.Unlock()

	for _, fn := range fire {
		fn(ev)
	}
}

func (b *LocalBus[V]) Subscribe(t EventType, fn Listener[V], once bool) func() {
	b.mu.Lock()
	b.seq++
	s := &localSub[V]{id: b.seq, fn: fn, once: once}
	b.subs[t] = append(b.subs[t], s)
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		subs := b.subs[t]
		for i, cur := range subs {
			if cur.id == s.id {
				b.subs[t] = append(subs[:i], subs[i+1:]...)
				return
			}
		}
	}
}
