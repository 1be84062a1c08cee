// Package localstore implements an expiring key/value store on top of a
// synchronous byte backend, with an observable lifecycle event feed.
//
// Every entry is wrapped in a JSON envelope {data, expiry} before it reaches
// the backend. Expiry is checked lazily on every read: an entry whose expiry
// has passed is treated as absent and physically removed. A process-default
// TTL can be configured and applies whenever a call supplies no TTL of its own.
//
// Components:
//   - Backend: byte store with key enumeration (bbolt, Redis, BigCache, or
//     the in-memory fake with a 5 MiB quota).
//   - Codec[V]: (de)serializes V <-> []byte inside the envelope.
//   - Bus[V]: event transport for the ten lifecycle events. Local
//     (in-process, synchronous) by default.
//
// Lifecycle events are published around every backend interaction, e.g. for a
// write the "writing" event is delivered before the backend is touched and
// exactly one of "written" / "write-failed" follows. Event type names use the
// wire format "local-storage:<name>".
//
// Testing pattern:
//
//	store.Fake()                      // swap in a fresh in-memory backend
//	ok, _ := store.Set(ctx, "k", localstore.Literal(v))
//	store.Restore()                   // back to the real backend
package localstore
