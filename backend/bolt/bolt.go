// Package bolt adapts a bbolt database as a localstore backend. This is the
// "real" persistent backend: a single bucket in a local file, durable across
// process restarts.
package bolt

import (
	"context"
	"time"

	bbolt "go.etcd.io/bbolt"

	be "github.com/unkn0wn-root/localstore/backend"
)

type Backend struct {
	db     *bbolt.DB
	bucket []byte
}

var _ be.Backend = (*Backend)(nil)

type Config struct {
	// Path of the database file. Created if missing.
	Path string
	// Bucket name; "" => "localstore".
	Bucket string
	// OpenTimeout bounds the wait for the file lock; 0 => 1s.
	OpenTimeout time.Duration
}

func Open(cfg Config) (*Backend, error) {
	timeout := cfg.OpenTimeout
	if timeout <= 0 {
		timeout = time.Second
	}
	db, err := bbolt.Open(cfg.Path, 0o600, &bbolt.Options{Timeout: timeout})
	if err != nil {
		return nil, err
	}
	bucket := []byte("localstore")
	if cfg.Bucket != "" {
		bucket = []byte(cfg.Bucket)
	}
	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Backend{db: db, bucket: bucket}, nil
}

func (b *Backend) Get(_ context.Context, key string) ([]byte, bool, error) {
	var out []byte
	var found bool
	err := b.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(b.bucket).Get([]byte(key))
		if v == nil {
			return nil
		}
		found = true
		out = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return out, found, nil
}

func (b *Backend) Set(_ context.Context, key string, value []byte) (bool, error) {
	err := b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(b.bucket).Put([]byte(key), value)
	})
	return err == nil, err
}

func (b *Backend) Remove(_ context.Context, key string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(b.bucket).Delete([]byte(key))
	})
}

func (b *Backend) Clear(_ context.Context) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(b.bucket); err != nil {
			return err
		}
		_, err := tx.CreateBucket(b.bucket)
		return err
	})
}

func (b *Backend) Len(_ context.Context) (int, error) {
	var n int
	err := b.db.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket(b.bucket).Stats().KeyN
		return nil
	})
	return n, err
}

func (b *Backend) Keys(_ context.Context) ([]string, error) {
	var keys []string
	err := b.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(b.bucket).ForEach(func(k, _ []byte) error {
			keys = append(keys, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}

func (b *Backend) Close(_ context.Context) error {
	return b.db.Close()
}
