package kv

import "context"

type prefixedStore struct {
	inner  Store
	prefix string
}

// Prefixed scopes every key of inner under prefix. Several devices can then
// share one backend while each still sees the plain auth state keys.
func Prefixed(inner Store, prefix string) Store {
	if prefix == "" {
		return inner
	}
	return &prefixedStore{inner: inner, prefix: prefix}
}

func (s *prefixedStore) Get(ctx context.Context, key string) (string, bool, error) {
	return s.inner.Get(ctx, s.prefix+key)
}

func (s *prefixedStore) Set(ctx context.Context, key, value string) error {
	return s.inner.Set(ctx, s.prefix+key, value)
}

func (s *prefixedStore) RemoveMany(ctx context.Context, keys ...string) error {
	scoped := make([]string, len(keys))
	for i, key := range keys {
		scoped[i] = s.prefix + key
	}
	return s.inner.RemoveMany(ctx, scoped...)
}

func (s *prefixedStore) Ping(ctx context.Context) error {
	return Ping(ctx, s.inner)
}
