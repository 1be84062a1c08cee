// Package slogevents attaches a persistent slog listener to a localstore Bus,
// logging every lifecycle event with optional sampling and key redaction.
// Unlike Store.Listen registrations, these subscriptions are not fire-once.
package slogevents

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/localstore"
)

type Options struct {
	// Every samples the feed to avoid floods; 0/1 = log all events.
	Every uint64
	// Redact transforms keys before logging. Defaults to a SHA-256 prefix.
	Redact func(string) string

	// Types limits logging to these event types; nil = all ten.
	Types []localstore.EventType
}

// Attach subscribes a logging listener for each requested event type and
// returns a cancel func detaching all of them.
func Attach[V any](bus localstore.Bus[V], l *slog.Logger, opts Options) (cancel func()) {
	types := opts.Types
	if types == nil {
		types = localstore.EventTypes()
	}

	var ctr atomic.Uint64
	fn := func(ev localstore.Event[V]) {
		if l == nil || !sample(opts.Every, &ctr) {
			return
		}
		attrs := []any{"type", string(ev.Type)}
		if ev.Key != "" {
			attrs = append(attrs, "key", redact(opts.Redact, ev.Key))
		}
		if ev.Expiry != nil {
			attrs = append(attrs, "expiry", ev.Expiry)
		}
		l.Debug("localstore.event", attrs...)
	}

	cancels := make([]func(), 0, len(types))
	for _, t := range types {
		cancels = append(cancels, bus.Subscribe(t, fn, false))
	}
	return func() {
		for _, c := range cancels {
			c()
		}
	}
}

func redact(fn func(string) string, k string) string {
	if fn != nil {
		return fn(k)
	}
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:8])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}
