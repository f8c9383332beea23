package kv

import "context"

// Store is the string-keyed persistence primitive behind the auth state
// facade. A missing key is reported as found=false with a nil error; a
// non-nil error always means the backend itself failed.
type Store interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	// RemoveMany deletes every listed key in a single request. Keys that do
	// not exist are ignored.
	RemoveMany(ctx context.Context, keys ...string) error
}

// Pinger is implemented by backends that can report connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Ping checks the store when it supports health checks and reports nil
// otherwise.
func Ping(ctx context.Context, s Store) error {
	if p, ok := s.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Close releases the store when it holds resources.
func Close(s Store) error {
	if c, ok := s.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
