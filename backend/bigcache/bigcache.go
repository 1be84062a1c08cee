// Package bigcache adapts allegro/bigcache as a volatile localstore backend.
// BigCache evicts on its global LifeWindow; envelope expiry still applies on
// top of that.
package bigcache

import (
	"context"
	"time"

	bc "github.com/allegro/bigcache/v3"

	be "github.com/unkn0wn-root/localstore/backend"
)

type Backend struct {
	c *bc.BigCache
}

var _ be.Backend = (*Backend)(nil)

type Config struct {
	LifeWindow         time.Duration
	CleanWindow        time.Duration
	MaxEntriesInWindow int
	MaxEntrySize       int
	HardMaxCacheSizeMB int // ~ memory limit; 0 = unlimited
}

func New(cfg Config) (*Backend, error) {
	conf := bc.DefaultConfig(cfg.LifeWindow)
	if cfg.CleanWindow > 0 {
		conf.CleanWindow = cfg.CleanWindow
	}
	if cfg.MaxEntriesInWindow > 0 {
		conf.MaxEntriesInWindow = cfg.MaxEntriesInWindow
	}
	if cfg.MaxEntrySize > 0 {
		conf.MaxEntrySize = cfg.MaxEntrySize
	}
	if cfg.HardMaxCacheSizeMB > 0 {
		conf.HardMaxCacheSize = cfg.HardMaxCacheSizeMB
	}
	c, err := bc.NewBigCache(conf)
	if err != nil {
		return nil, err
	}
	return &Backend{c: c}, nil
}

func (b *Backend) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, err := b.c.Get(key)
	if err == bc.ErrEntryNotFound {
		return nil, false, nil
	}
	return v, err == nil, err
}

// Set reports capacity failures as quota rejections: oversized entries and
// full hard-capped caches are the only errors bigcache's Set produces.
func (b *Backend) Set(_ context.Context, key string, value []byte) (bool, error) {
	if err := b.c.Set(key, value); err != nil {
		return false, nil
	}
	return true, nil
}

func (b *Backend) Remove(_ context.Context, key string) error {
	if err := b.c.Delete(key); err != nil && err != bc.ErrEntryNotFound {
		return err
	}
	return nil
}

func (b *Backend) Clear(_ context.Context) error {
	return b.c.Reset()
}

func (b *Backend) Len(_ context.Context) (int, error) {
	return b.c.Len(), nil
}

func (b *Backend) Keys(_ context.Context) ([]string, error) {
	var keys []string
	it := b.c.Iterator()
	for it.SetNext() {
		e, err := it.Value()
		if err != nil {
			return nil, err
		}
		keys = append(keys, e.Key())
	}
	return keys, nil
}

func (b *Backend) Close(_ context.Context) error {
	return b.c.Close()
}
