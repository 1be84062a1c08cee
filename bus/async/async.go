// Package asyncbus decorates a localstore Bus so listeners run on worker
// goroutines instead of the operation's own stack. Use it when listeners are
// slow and must not stall store operations.
//
// Trade-off: delivery is no longer synchronous with the emitting operation,
// so the "writing before backend write" ordering guarantee holds only for the
// enqueue, not for listener execution. Events are dropped when the queue is
// full. Keep the default LocalBus wherever strict ordering matters.
//
// usage:
//
//	bus := asyncbus.New[User](localstore.NewLocalBus[User](), 1, 1000)
//	defer bus.Close()
//
//	store, _ := localstore.New[User](localstore.Options[User]{
//	    Backend: backend,
//	    Bus:     bus,
//	})
package asyncbus

import (
	"sync"

	"github.com/unkn0wn-root/localstore"
)

type Bus[V any] struct {
	inner localstore.Bus[V]
	q     chan localstore.Event[V]
	wg    sync.WaitGroup
	once  sync.Once
}

func New[V any](inner localstore.Bus[V], workers, qlen int) *Bus[V] {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	b := &Bus[V]{inner: inner, q: make(chan localstore.Event[V], qlen)}
	b.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer b.wg.Done()
			for ev := range b.q {
				b.inner.Publish(ev)
			}
		}()
	}
	return b
}

// Close drains the queue and stops the workers.
func (b *Bus[V]) Close() {
	b.once.Do(func() {
		close(b.q)
		b.wg.Wait()
	})
}

func (b *Bus[V]) Publish(ev localstore.Event[V]) {
	select {
	case b.q <- ev:
	default: // drop
	}
}

func (b *Bus[V]) Subscribe(t localstore.EventType, fn localstore.Listener[V], once bool) func() {
	return b.inner.Subscribe(t, fn, once)
}
