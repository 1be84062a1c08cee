// Package redis adapts a go-redis client as a localstore backend. Keys are
// namespaced with a prefix so several stores can share one database.
package redis

import (
	"context"
	"errors"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	be "github.com/unkn0wn-root/localstore/backend"
)

var ErrNilClient = errors.New("redis backend: nil client")

type Backend struct {
	rdb         goredis.UniversalClient
	prefix      string
	closeClient bool
}

var _ be.Backend = (*Backend)(nil)

type Config struct {
	Client goredis.UniversalClient
	// Namespace prefixes every key ("<ns>:<key>"). "" => "localstore".
	Namespace string
	// CloseClient should be true only if this backend exclusively owns the client.
	CloseClient bool
}

func New(cfg Config) (*Backend, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	ns := cfg.Namespace
	if ns == "" {
		ns = "localstore"
	}
	return &Backend{rdb: cfg.Client, prefix: ns + ":", closeClient: cfg.CloseClient}, nil
}

func (b *Backend) key(k string) string { return b.prefix + k }

func (b *Backend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := b.rdb.Get(ctx, b.key(key)).Bytes()
	if err == goredis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

// Set stores without a redis-side TTL; expiry lives in the envelope and is
// enforced by the store on read.
func (b *Backend) Set(ctx context.Context, key string, value []byte) (bool, error) {
	if err := b.rdb.Set(ctx, b.key(key), value, 0).Err(); err != nil {
		return false, err
	}
	return true, nil
}

func (b *Backend) Remove(ctx context.Context, key string) error {
	return b.rdb.Del(ctx, b.key(key)).Err()
}

func (b *Backend) Clear(ctx context.Context) error {
	keys, err := b.scan(ctx)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return b.rdb.Del(ctx, keys...).Err()
}

func (b *Backend) Len(ctx context.Context) (int, error) {
	keys, err := b.scan(ctx)
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}

func (b *Backend) Keys(ctx context.Context) ([]string, error) {
	keys, err := b.scan(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = strings.TrimPrefix(k, b.prefix)
	}
	return out, nil
}

// scan returns all namespaced keys (still carrying the prefix).
func (b *Backend) scan(ctx context.Context) ([]string, error) {
	var keys []string
	iter := b.rdb.Scan(ctx, 0, b.prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}

// Close releases the underlying client only when this backend owns it.
// Safe to call multiple times.
func (b *Backend) Close(context.Context) error {
	if b.closeClient {
		if err := b.rdb.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
			return err
		}
	}
	return nil
}
