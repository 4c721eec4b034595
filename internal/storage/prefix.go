package storage

import "context"

type prefixedStore struct {
	inner  Store
	prefix string
}

// WithPrefix namespaces every key as "<prefix>:<key>". An empty prefix returns
// the store unchanged.
func WithPrefix(s Store, prefix string) Store {
	if prefix == "" {
		return s
	}
	return &prefixedStore{inner: s, prefix: prefix + ":"}
}

func (p *prefixedStore) Get(ctx context.Context, key string) ([]byte, error) {
	return p.inner.Get(ctx, p.prefix+key)
}

func (p *prefixedStore) Set(ctx context.Context, key string, value []byte) error {
	return p.inner.Set(ctx, p.prefix+key, value)
}

func (p *prefixedStore) Delete(ctx context.Context, key string) error {
	return p.inner.Delete(ctx, p.prefix+key)
}

func (p *prefixedStore) Ping(ctx context.Context) error {
	return Ping(ctx, p.inner)
}
