// Package store provides storage backends for TaskBell.
//
// The backend contract is a small key-value surface: values are opaque
// serialized collections, one key per logical collection. SQLite is the
// default backend; PostgreSQL is available for shared deployments and an
// in-memory store backs tests.
package store

import "context"

// Store is the key-value backend consumed by the typed Accessor.
// Get returns (nil, nil) when the key is absent.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Opts holds configuration options for store backends.
type Opts struct {
	// DSN is the backend connection string: a file path for SQLite, a
	// connection URL for PostgreSQL.
	DSN string
}

// Option defines a configuration option for store backends.
type Option func(*Opts)

// WithDSN sets the backend connection string.
func WithDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}
