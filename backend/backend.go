// Package backend defines the storage abstraction behind localstore: a
// synchronous byte store with key enumeration.
//
// Implementations MUST be byte-for-byte transparent: Get must return exactly
// the same []byte previously passed to Set for a key (no prepended metadata,
// no re-encoding, no mutation). If a store performs internal transforms they
// must be fully reversed on read.
//
// Values under localstore-managed keys are JSON envelopes; foreign writes are
// tolerated on read (surfaced as raw values) but implementations should not
// rely on that.
package backend

import "context"

// Backend is the synchronous key/value persistence surface. Must be safe for
// concurrent use.
type Backend interface {
	// Get returns (value, true, nil) on hit; (nil, false, nil) on miss.
	// IO/remote errors come back as (nil, false, err).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key. Returns ok=false (with a nil error) when
	// the store rejected the write for capacity reasons.
	Set(ctx context.Context, key string, value []byte) (ok bool, err error)

	// Remove deletes a key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error

	// Clear removes every key.
	Clear(ctx context.Context) error

	// Len returns the current number of stored keys.
	Len(ctx context.Context) (int, error)

	// Keys enumerates every stored key. Order is implementation-defined but
	// stable between mutations.
	Keys(ctx context.Context) ([]string, error)

	// Close releases resources.
	Close(ctx context.Context) error
}
