// Package memory implements the in-memory fake backend: the same contract as
// the persistent backends plus a simulated capacity quota, for isolated
// testing.
package memory

import (
	"context"
	"sync"

	be "github.com/unkn0wn-root/localstore/backend"
)

// DefaultQuota mirrors the 5 MiB budget browsers commonly grant a single
// origin's synchronous storage.
const DefaultQuota int64 = 5 << 20

type Backend struct {
	mu    sync.RWMutex
	quota int64
	used  int64
	items map[string][]byte
	order []string // insertion order; a replaced key keeps its slot
}

var _ be.Backend = (*Backend)(nil)

type Config struct {
	// Quota is the byte capacity, measured as the sum of len(key)+len(value)
	// over all entries. 0 => DefaultQuota.
	Quota int64
}

func New(cfg Config) *Backend {
	q := cfg.Quota
	if q <= 0 {
		q = DefaultQuota
	}
	return &Backend{quota: q, items: make(map[string][]byte)}
}

func (b *Backend) Get(_ context.Context, key string) ([]byte, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.items[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

// Set rejects (false, nil) any write that would push usage over the quota,
// leaving prior state untouched.
func (b *Backend) Set(_ context.Context, key string, value []byte) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	next := b.used + entrySize(key, value)
	if old, ok := b.items[key]; ok {
		next -= entrySize(key, old)
	}
	if next > b.quota {
		return false, nil
	}

	if _, ok := b.items[key]; !ok {
		b.order = append(b.order, key)
	}
	cp := make([]byte, len(value))
	copy(cp, value)
	b.items[key] = cp
	b.recalc()
	return true, nil
}

func (b *Backend) Remove(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.items[key]; !ok {
		return nil
	}
	delete(b.items, key)
	for i, k := range b.order {
		if k == key {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
	b.recalc()
	return nil
}

func (b *Backend) Clear(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = make(map[string][]byte)
	b.order = nil
	b.used = 0
	return nil
}

func (b *Backend) Len(_ context.Context) (int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.items), nil
}

func (b *Backend) Keys(_ context.Context) ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]string, len(b.order))
	copy(out, b.order)
	return out, nil
}

// Key returns the key at ordinal position i in current enumeration order, or
// "" and false when i is out of range. Index stability across removals is not
// guaranteed.
func (b *Backend) Key(i int) (string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if i < 0 || i >= len(b.order) {
		return "", false
	}
	return b.order[i], true
}

// Used reports the tracked byte usage.
func (b *Backend) Used() int64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.used
}

// Quota reports the fixed byte capacity.
func (b *Backend) Quota() int64 { return b.quota }

func (b *Backend) Close(_ context.Context) error { return nil }

// recalc re-derives used from scratch so the tracked counter always equals
// the sum over all stored entries. Caller must hold mu.
func (b *Backend) recalc() {
	var used int64
	for k, v := range b.items {
		used += entrySize(k, v)
	}
	b.used = used
}

func entrySize(key string, value []byte) int64 {
	return int64(len(key) + len(value))
}
