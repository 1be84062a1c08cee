package bolt

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
)

func openTest(t *testing.T) *Backend {
	t.Helper()
	b, err := Open(Config{Path: filepath.Join(t.TempDir(), "store.db")})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = b.Close(context.Background()) })
	return b
}

func TestRoundTripAndEnumeration(t *testing.T) {
	ctx := context.Background()
	b := openTest(t)

	for _, k := range []string{"b", "a", "c"} {
		if ok, err := b.Set(ctx, k, []byte("v:"+k)); err != nil || !ok {
			t.Fatalf("Set %q: ok=%v err=%v", k, ok, err)
		}
	}

	v, found, err := b.Get(ctx, "a")
	if err != nil || !found || !bytes.Equal(v, []byte("v:a")) {
		t.Fatalf("Get: found=%v err=%v v=%q", found, err, v)
	}
	if _, found, _ := b.Get(ctx, "missing"); found {
		t.Fatalf("unexpected hit on missing key")
	}

	if n, _ := b.Len(ctx); n != 3 {
		t.Fatalf("Len: %d", n)
	}
	keys, err := b.Keys(ctx)
	if err != nil || len(keys) != 3 {
		t.Fatalf("Keys: %v err=%v", keys, err)
	}
	// bbolt enumerates in byte order
	if keys[0] != "a" || keys[1] != "b" || keys[2] != "c" {
		t.Fatalf("key order: %v", keys)
	}
}

func TestRemoveAndClear(t *testing.T) {
	ctx := context.Background()
	b := openTest(t)

	if ok, _ := b.Set(ctx, "k", []byte("v")); !ok {
		t.Fatalf("Set rejected")
	}
	if err := b.Remove(ctx, "k"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := b.Remove(ctx, "k"); err != nil {
		t.Fatalf("Remove of absent key must be a no-op: %v", err)
	}

	for _, k := range []string{"x", "y"} {
		if ok, _ := b.Set(ctx, k, []byte("v")); !ok {
			t.Fatalf("Set rejected")
		}
	}
	if err := b.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if n, _ := b.Len(ctx); n != 0 {
		t.Fatalf("Len after Clear: %d", n)
	}
	// bucket must be usable again
	if ok, err := b.Set(ctx, "z", []byte("v")); err != nil || !ok {
		t.Fatalf("Set after Clear: ok=%v err=%v", ok, err)
	}
}

func TestPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "store.db")

	b, err := Open(Config{Path: path})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if ok, _ := b.Set(ctx, "k", []byte("v")); !ok {
		t.Fatalf("Set rejected")
	}
	if err := b.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}

	b2, err := Open(Config{Path: path})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer b2.Close(ctx)
	v, found, err := b2.Get(ctx, "k")
	if err != nil || !found || string(v) != "v" {
		t.Fatalf("value lost across reopen: found=%v err=%v v=%q", found, err, v)
	}
}
