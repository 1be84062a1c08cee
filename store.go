package localstore

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	be "github.com/unkn0wn-root/localstore/backend"
	"github.com/unkn0wn-root/localstore/backend/memory"
	c "github.com/unkn0wn-root/localstore/codec"
	"github.com/unkn0wn-root/localstore/internal/wire"
)

type store[V any] struct {
	real      be.Backend
	codec     c.Codec[V]
	log       Logger
	bus       Bus[V]
	sink      io.Writer
	fakeQuota int64

	// mu guards the two pieces of process-wide mutable state: which backend
	// is active, and the default TTL.
	mu         sync.RWMutex
	active     be.Backend
	fake       *memory.Backend // non-nil while faked
	defaultTTL time.Duration
}

func (s *store[V]) backend() be.Backend {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

func (s *store[V]) SetDefaultTTL(ttl time.Duration) {
	s.mu.Lock()
	s.defaultTTL = ttl
	s.mu.Unlock()
}

func (s *store[V]) DefaultTTL() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.defaultTTL
}

// computeExpiry resolves the effective TTL: explicit per-call TTL wins, then
// the configured default, then "never expires" (nil). An explicit zero or
// negative TTL yields an expiry in the past.
func (s *store[V]) computeExpiry(ttl []time.Duration) *time.Time {
	var d time.Duration
	switch {
	case len(ttl) > 0:
		d = ttl[0]
	default:
		d = s.DefaultTTL()
		if d == 0 {
			return nil
		}
	}
	t := time.Now().Add(d)
	return &t
}

func (s *store[V]) publish(ev Event[V]) { s.bus.Publish(ev) }

func (s *store[V]) Set(ctx context.Context, key string, value Value[V], ttl ...time.Duration) (bool, error) {
	v := value.resolve()
	exp := s.computeExpiry(ttl)

	// "writing" goes out before the backend is touched, unconditionally.
	s.publish(Event[V]{Type: EventWriting, Key: key, Value: v, HasValue: true, Expiry: exp})

	payload, err := s.codec.Encode(v)
	if err != nil {
		s.publish(Event[V]{Type: EventWriteFailed, Key: key, Value: v, HasValue: true, Expiry: exp})
		s.log.Warn("encode failed", Fields{"key": key, "err": err})
		return false, fmt.Errorf("localstore: encode %q: %w", key, err)
	}

	ok, err := s.backend().Set(ctx, key, wire.Encode(payload, exp))
	if err != nil {
		s.publish(Event[V]{Type: EventWriteFailed, Key: key, Value: v, HasValue: true, Expiry: exp})
		s.log.Warn("backend write failed", Fields{"key": key, "err": err})
		return false, err
	}
	if !ok {
		// quota rejection is an outcome, not an error
		s.publish(Event[V]{Type: EventWriteFailed, Key: key, Value: v, HasValue: true, Expiry: exp})
		s.log.Debug("write rejected by backend", Fields{"key": key})
		return false, nil
	}

	s.publish(Event[V]{Type: EventWritten, Key: key, Value: v, HasValue: true, Expiry: exp})
	return true, nil
}

func (s *store[V]) Get(ctx context.Context, key string) (V, bool, error) {
	v, outcome, err := s.lookup(ctx, key)
	return v, outcome == readHit, err
}

// readOutcome distinguishes why a lookup yielded no value: an expired or
// unreadable entry is still an entry, so fallback resolution and Remember's
// re-compute decision must not treat it like a genuinely absent key.
type readOutcome int

const (
	readHit readOutcome = iota
	readMissing
	readExpired
	readUnreadable
)

func (s *store[V]) lookup(ctx context.Context, key string) (V, readOutcome, error) {
	var zero V

	s.publish(Event[V]{Type: EventRetrieving, Key: key})

	raw, found, err := s.backend().Get(ctx, key)
	if err != nil {
		return zero, readMissing, err
	}
	if !found {
		s.publish(Event[V]{Type: EventMissed, Key: key})
		return zero, readMissing, nil
	}

	payload, exp, derr := wire.Decode(raw)
	if derr != nil {
		// Value written outside this system: surface it unchanged, no
		// hit/missed emission, no migration.
		if v, ok := s.foreign(raw); ok {
			return v, readHit, nil
		}
		s.log.Debug("unreadable foreign value", Fields{"key": key})
		return zero, readUnreadable, nil
	}

	if exp != nil && exp.Before(time.Now()) {
		if err := s.expire(ctx, key); err != nil {
			return zero, readExpired, err
		}
		return zero, readExpired, nil
	}

	v, err := s.codec.Decode(payload)
	if err != nil {
		s.log.Debug("payload decode failed", Fields{"key": key, "err": err})
		return zero, readUnreadable, nil
	}

	s.publish(Event[V]{Type: EventHit, Key: key, Value: v, HasValue: true})
	return v, readHit, nil
}

// foreign interprets bytes that never carried an envelope: first through the
// codec, then - when V is a string - as the raw string itself.
func (s *store[V]) foreign(raw []byte) (V, bool) {
	if v, err := s.codec.Decode(raw); err == nil {
		return v, true
	}
	if v, ok := any(string(raw)).(V); ok {
		return v, true
	}
	var zero V
	return zero, false
}

// expire physically removes an entry whose expiry passed during a read.
// It deletes directly instead of going through Remove: Remove's presence
// precondition treats an expired entry as already absent.
func (s *store[V]) expire(ctx context.Context, key string) error {
	if err := s.backend().Remove(ctx, key); err != nil {
		s.publish(Event[V]{Type: EventForgotFailed, Key: key})
		return err
	}
	s.publish(Event[V]{Type: EventForgot, Key: key})
	return nil
}

// GetOr resolves the fallback only when the backend has no entry at all.
// An expired entry is pruned and yields V's zero value, not the fallback.
func (s *store[V]) GetOr(ctx context.Context, key string, fallback Value[V]) (V, error) {
	v, outcome, err := s.lookup(ctx, key)
	if err != nil {
		var zero V
		return zero, err
	}
	if outcome == readMissing {
		return fallback.resolve(), nil
	}
	return v, nil
}

func (s *store[V]) Remember(ctx context.Context, key string, produce func() V, ttl ...time.Duration) (V, error) {
	v, outcome, err := s.lookup(ctx, key)
	if err != nil {
		return v, err
	}
	// exactly one write happens, and only for an absent or expired key
	if outcome != readMissing && outcome != readExpired {
		return v, nil
	}
	if _, err := s.Set(ctx, key, Lazy(produce), ttl...); err != nil {
		var zero V
		return zero, err
	}
	v, _, err = s.Get(ctx, key)
	return v, err
}

func (s *store[V]) All(ctx context.Context) ([]Entry[V], error) {
	keys, err := s.Keys(ctx)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry[V], 0, len(keys))
	for _, k := range keys {
		v, _, err := s.Get(ctx, k)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry[V]{Key: k, Value: v})
	}
	return entries, nil
}

func (s *store[V]) Remove(ctx context.Context, key string) (bool, error) {
	present, err := s.peek(ctx, key)
	if err != nil {
		return false, err
	}
	if !present {
		s.publish(Event[V]{Type: EventForgotFailed, Key: key})
		return false, nil
	}
	if err := s.backend().Remove(ctx, key); err != nil {
		s.publish(Event[V]{Type: EventForgotFailed, Key: key})
		return false, err
	}
	s.publish(Event[V]{Type: EventForgot, Key: key})
	return true, nil
}

// peek is the presence check behind Remove: Has semantics (expired or zero
// payload counts as absent) without Get's events or expiry removal.
func (s *store[V]) peek(ctx context.Context, key string) (bool, error) {
	raw, found, err := s.backend().Get(ctx, key)
	if err != nil || !found {
		return false, err
	}
	payload, exp, derr := wire.Decode(raw)
	if derr != nil {
		v, ok := s.foreign(raw)
		return ok && !isZero(v), nil
	}
	if exp != nil && exp.Before(time.Now()) {
		return false, nil
	}
	v, err := s.codec.Decode(payload)
	if err != nil {
		return false, nil
	}
	return !isZero(v), nil
}

func (s *store[V]) Clear(ctx context.Context) error {
	s.publish(Event[V]{Type: EventFlushing})
	if err := s.backend().Clear(ctx); err != nil {
		return err
	}
	s.publish(Event[V]{Type: EventFlushed})
	return nil
}

func (s *store[V]) Has(ctx context.Context, key string) (bool, error) {
	v, ok, err := s.Get(ctx, key)
	if err != nil {
		return false, err
	}
	return ok && !isZero(v), nil
}

func (s *store[V]) Missing(ctx context.Context, key string) (bool, error) {
	has, err := s.Has(ctx, key)
	return !has, err
}

func (s *store[V]) HasAny(ctx context.Context, keys ...string) (bool, error) {
	for _, k := range keys {
		has, err := s.Has(ctx, k)
		if err != nil {
			return false, err
		}
		if has {
			return true, nil
		}
	}
	return false, nil
}

func (s *store[V]) IsEmpty(ctx context.Context) (bool, error) {
	n, err := s.Count(ctx)
	return n == 0, err
}

func (s *store[V]) IsNotEmpty(ctx context.Context) (bool, error) {
	empty, err := s.IsEmpty(ctx)
	return !empty, err
}

func (s *store[V]) Keys(ctx context.Context) ([]string, error) {
	return s.backend().Keys(ctx)
}

func (s *store[V]) Count(ctx context.Context) (int, error) {
	return s.backend().Len(ctx)
}

func (s *store[V]) Touch(ctx context.Context, key string, ttl ...time.Duration) (bool, error) {
	v, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	return s.Set(ctx, key, Literal(v), ttl...)
}

func (s *store[V]) Expiry(ctx context.Context, key string) (*time.Time, error) {
	raw, found, err := s.backend().Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	_, exp, derr := wire.Decode(raw)
	if derr != nil {
		return nil, nil
	}
	return exp, nil
}

func (s *store[V]) Dump(ctx context.Context, key string) {
	v, ok, err := s.Get(ctx, key)
	switch {
	case err != nil:
		fmt.Fprintf(s.sink, "<error: %v>\n", err)
	case !ok:
		fmt.Fprintln(s.sink, "<nil>")
	default:
		fmt.Fprintf(s.sink, "%v\n", v)
	}
}

func (s *store[V]) Fake() {
	fb := memory.New(memory.Config{Quota: s.fakeQuota})
	s.mu.Lock()
	s.fake = fb
	s.active = fb
	s.mu.Unlock()
}

func (s *store[V]) Restore() {
	s.mu.Lock()
	s.fake = nil
	s.active = s.real
	s.mu.Unlock()
}

func (s *store[V]) IsFake() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.active.(*memory.Backend)
	return ok
}

func (s *store[V]) Listen(t EventType, fn Listener[V]) func() {
	return s.bus.Subscribe(t, fn, true)
}

func (s *store[V]) ListenMap(m map[EventType]Listener[V]) func() {
	cancels := make([]func(), 0, len(m))
	for t, fn := range m {
		cancels = append(cancels, s.Listen(t, fn))
	}
	return func() {
		for _, cancel := range cancels {
			cancel()
		}
	}
}

func (s *store[V]) OnRetrieving(fn Listener[V]) func()   { return s.Listen(EventRetrieving, fn) }
func (s *store[V]) OnHit(fn Listener[V]) func()          { return s.Listen(EventHit, fn) }
func (s *store[V]) OnMissed(fn Listener[V]) func()       { return s.Listen(EventMissed, fn) }
func (s *store[V]) OnWriting(fn Listener[V]) func()      { return s.Listen(EventWriting, fn) }
func (s *store[V]) OnWritten(fn Listener[V]) func()      { return s.Listen(EventWritten, fn) }
func (s *store[V]) OnWriteFailed(fn Listener[V]) func()  { return s.Listen(EventWriteFailed, fn) }
func (s *store[V]) OnForgot(fn Listener[V]) func()       { return s.Listen(EventForgot, fn) }
func (s *store[V]) OnForgotFailed(fn Listener[V]) func() { return s.Listen(EventForgotFailed, fn) }
func (s *store[V]) OnFlushing(fn Listener[V]) func()     { return s.Listen(EventFlushing, fn) }
func (s *store[V]) OnFlushed(fn Listener[V]) func()      { return s.Listen(EventFlushed, fn) }

func (s *store[V]) Close(ctx context.Context) error {
	s.mu.Lock()
	fake := s.fake
	s.fake = nil
	s.active = s.real
	s.mu.Unlock()

	if fake != nil {
		_ = fake.Close(ctx)
	}
	return s.real.Close(ctx)
}
