// Package kv provides the key/value persistence surface the archive is
// written to. Values are opaque bytes rewritten wholesale on every Put.
package kv

import (
	"context"
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("key not found")

// Store is a key/value store. Put replaces the whole value atomically.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}

// Options selects and configures a Store implementation.
type Options struct {
	Driver        string // "sqlite", "redis" or "memory"
	Path          string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// Open returns the Store selected by opts.Driver.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Driver {
	case "", "sqlite":
		return OpenSQLite(opts.Path)
	case "redis":
		return OpenRedis(ctx, opts.RedisAddr, opts.RedisPassword, opts.RedisDB)
	case "memory":
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", opts.Driver)
	}
}
