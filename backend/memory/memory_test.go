package memory

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestSetGetRemove(t *testing.T) {
	ctx := context.Background()
	b := New(Config{})

	if ok, err := b.Set(ctx, "k", []byte("v")); err != nil || !ok {
		t.Fatalf("Set: ok=%v err=%v", ok, err)
	}
	v, found, err := b.Get(ctx, "k")
	if err != nil || !found || !bytes.Equal(v, []byte("v")) {
		t.Fatalf("Get: found=%v err=%v v=%q", found, err, v)
	}
	if err := b.Remove(ctx, "k"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, found, _ := b.Get(ctx, "k"); found {
		t.Fatalf("expected miss after Remove")
	}
	if b.Used() != 0 {
		t.Fatalf("used should be 0 after removal, got %d", b.Used())
	}
}

func TestQuotaRejectionLeavesStateUnchanged(t *testing.T) {
	ctx := context.Background()
	b := New(Config{Quota: 100})

	if ok, _ := b.Set(ctx, "small", []byte("value")); !ok {
		t.Fatalf("small write should fit")
	}
	usedBefore := b.Used()

	big := []byte(strings.Repeat("x", 200))
	ok, err := b.Set(ctx, "big", big)
	if err != nil {
		t.Fatalf("quota rejection must not be an error: %v", err)
	}
	if ok {
		t.Fatalf("oversized write should be rejected")
	}
	if b.Used() != usedBefore {
		t.Fatalf("used changed on rejected write: %d -> %d", usedBefore, b.Used())
	}
	if _, found, _ := b.Get(ctx, "big"); found {
		t.Fatalf("rejected entry must not be stored")
	}
	if v, found, _ := b.Get(ctx, "small"); !found || string(v) != "value" {
		t.Fatalf("prior entry damaged by rejected write")
	}
}

func TestDefaultQuotaRejectsFiveMiB(t *testing.T) {
	ctx := context.Background()
	b := New(Config{})

	big := bytes.Repeat([]byte("x"), int(DefaultQuota))
	if ok, err := b.Set(ctx, "big", big); err != nil || ok {
		t.Fatalf("5 MiB value plus key must exceed the default quota: ok=%v err=%v", ok, err)
	}
}

func TestReplaceAccounting(t *testing.T) {
	ctx := context.Background()
	b := New(Config{Quota: 1000})

	if ok, _ := b.Set(ctx, "k", bytes.Repeat([]byte("a"), 100)); !ok {
		t.Fatalf("first write rejected")
	}
	if ok, _ := b.Set(ctx, "k", bytes.Repeat([]byte("b"), 10)); !ok {
		t.Fatalf("replacement rejected")
	}
	want := int64(len("k") + 10)
	if b.Used() != want {
		t.Fatalf("used after replace: got %d want %d", b.Used(), want)
	}

	// replacing may not exceed quota even if the key already exists
	if ok, _ := b.Set(ctx, "k", bytes.Repeat([]byte("c"), 2000)); ok {
		t.Fatalf("oversized replacement should be rejected")
	}
	if v, _, _ := b.Get(ctx, "k"); len(v) != 10 {
		t.Fatalf("rejected replacement mutated the entry")
	}
}

func TestInsertionOrderAndOrdinalAccess(t *testing.T) {
	ctx := context.Background()
	b := New(Config{})

	for _, k := range []string{"c", "a", "b"} {
		if ok, _ := b.Set(ctx, k, []byte("v")); !ok {
			t.Fatalf("Set %q rejected", k)
		}
	}
	// overwriting keeps the original slot
	if ok, _ := b.Set(ctx, "c", []byte("v2")); !ok {
		t.Fatalf("overwrite rejected")
	}

	keys, err := b.Keys(ctx)
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	want := []string{"c", "a", "b"}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("keys[%d]: got %q want %q (all=%v)", i, keys[i], want[i], keys)
		}
	}

	if k, ok := b.Key(1); !ok || k != "a" {
		t.Fatalf("Key(1): got %q ok=%v", k, ok)
	}
	if _, ok := b.Key(3); ok {
		t.Fatalf("Key out of range should report false")
	}
	if _, ok := b.Key(-1); ok {
		t.Fatalf("negative index should report false")
	}
}

func TestClearResetsEverything(t *testing.T) {
	ctx := context.Background()
	b := New(Config{})

	for _, k := range []string{"a", "b"} {
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
	if b.Used() != 0 {
		t.Fatalf("used after Clear: %d", b.Used())
	}
	if keys, _ := b.Keys(ctx); len(keys) != 0 {
		t.Fatalf("keys after Clear: %v", keys)
	}
}
