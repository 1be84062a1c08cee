package localstore

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	be "github.com/unkn0wn-root/localstore/backend"
	c "github.com/unkn0wn-root/localstore/codec"
)

// Entry is one key/value pair returned by All.
type Entry[V any] struct {
	Key   string
	Value V
}

// Store is the expiring key/value facade. All operations are synchronous and
// run to completion before returning; lifecycle events are delivered inline.
//
// TTL arguments are variadic: omit the argument to fall back to the
// process-default TTL (or "never expires" when no default is configured);
// pass one explicitly to pin this write. A zero or negative TTL produces an
// expiry in the past, i.e. an entry that is already expired.
type Store[V any] interface {
	// SetDefaultTTL configures the default validity window applied by Set,
	// Touch and Remember when no per-call TTL is given. Zero clears the
	// default ("never expires").
	SetDefaultTTL(ttl time.Duration)
	DefaultTTL() time.Duration

	// Set writes value under key. Quota rejection by the backend is
	// (false, nil); transport failures are (false, err). Either way the
	// failure is also reported through a write-failed event and never
	// propagates as a panic.
	Set(ctx context.Context, key string, value Value[V], ttl ...time.Duration) (bool, error)

	// Get returns the stored value. ok is false when the key is absent or
	// the entry has expired (expired entries are removed as a side effect).
	Get(ctx context.Context, key string) (v V, ok bool, err error)

	// GetOr is Get with a fallback resolved only when the backend has no
	// entry for key. An expired entry is pruned and yields V's zero value,
	// not the fallback.
	GetOr(ctx context.Context, key string, fallback Value[V]) (V, error)

	// Remember returns the stored value, or - when the key is absent or
	// expired - stores produce()'s result and returns what a re-read yields.
	Remember(ctx context.Context, key string, produce func() V, ttl ...time.Duration) (V, error)

	// All returns one entry per backend key, each value resolved through the
	// expiry-aware Get path (stale entries are pruned as a side effect).
	// Entries that turn out absent or unreadable carry V's zero value.
	All(ctx context.Context) ([]Entry[V], error)

	// Remove deletes key. True (and a forgot event) only when the key held a
	// present, unexpired, non-zero value immediately before; otherwise a
	// forgot-failed event, false, and no mutation.
	Remove(ctx context.Context, key string) (bool, error)

	// Clear empties the backend, emitting flushing before and flushed after.
	Clear(ctx context.Context) error

	// Has reports whether Get yields a non-zero value. A stored empty string
	// or zero is deliberately reported as absent.
	Has(ctx context.Context, key string) (bool, error)
	Missing(ctx context.Context, key string) (bool, error)
	HasAny(ctx context.Context, keys ...string) (bool, error)

	// IsEmpty and IsNotEmpty consult the raw backend count, so expired but
	// unread entries still count until actually read.
	IsEmpty(ctx context.Context) (bool, error)
	IsNotEmpty(ctx context.Context) (bool, error)

	// Keys and Count are raw backend enumeration with no expiry filtering.
	Keys(ctx context.Context) ([]string, error)
	Count(ctx context.Context) (int, error)

	// Touch refreshes the expiry of an existing entry, preserving its
	// payload. False when the key is absent or already expired.
	Touch(ctx context.Context, key string, ttl ...time.Duration) (bool, error)

	// Expiry returns the entry's absolute expiry, or nil when the key is
	// absent, the envelope unparsable, or the entry never expires. Pure
	// inspection: no events, no removal.
	Expiry(ctx context.Context, key string) (*time.Time, error)

	// Dump prints the resolved value of Get(key) to the configured sink.
	Dump(ctx context.Context, key string)

	// Fake swaps the active backend for a fresh in-memory fake; Restore
	// switches back to the real backend. Neither copies data across.
	Fake()
	Restore()
	IsFake() bool

	// Listen registers a fire-once listener for one event type and returns
	// its cancel func. ListenMap registers several in one call.
	Listen(t EventType, fn Listener[V]) (cancel func())
	ListenMap(m map[EventType]Listener[V]) (cancel func())

	OnRetrieving(fn Listener[V]) (cancel func())
	OnHit(fn Listener[V]) (cancel func())
	OnMissed(fn Listener[V]) (cancel func())
	OnWriting(fn Listener[V]) (cancel func())
	OnWritten(fn Listener[V]) (cancel func())
	OnWriteFailed(fn Listener[V]) (cancel func())
	OnForgot(fn Listener[V]) (cancel func())
	OnForgotFailed(fn Listener[V]) (cancel func())
	OnFlushing(fn Listener[V]) (cancel func())
	OnFlushed(fn Listener[V]) (cancel func())

	// Close releases the real backend (and the fake, if active).
	Close(ctx context.Context) error
}

// Options tune the store. Only Backend is required; others have defaults.
type Options[V any] struct {
	// Required: the real persistent backend.
	Backend be.Backend

	Codec      c.Codec[V]    // nil => codec.JSON[V]
	Logger     Logger        // nil => NopLogger
	Bus        Bus[V]        // nil => NewLocalBus[V]()
	DefaultTTL time.Duration // 0 => no default ("never expires")
	DumpSink   io.Writer     // nil => os.Stdout
	FakeQuota  int64         // byte quota for backends created by Fake; 0 => 5 MiB
}

func New[V any](opts Options[V]) (Store[V], error) {
	if opts.Backend == nil {
		return nil, fmt.Errorf("localstore: backend is required")
	}

	s := &store[V]{
		real:      opts.Backend,
		active:    opts.Backend,
		fakeQuota: opts.FakeQuota,
	}

	// defaults
	if opts.Codec != nil {
		s.codec = opts.Codec
	} else {
		s.codec = c.JSON[V]{}
	}
	s.log = coalesce[Logger](opts.Logger, NopLogger{})
	if opts.Bus != nil {
		s.bus = opts.Bus
	} else {
		s.bus = NewLocalBus[V]()
	}
	s.sink = coalesce[io.Writer](opts.DumpSink, os.Stdout)
	s.defaultTTL = opts.DefaultTTL

	return s, nil
}
