package cache

import (
	"context"
	"time"
)

// Scoped prefixes every key of an underlying cache, giving each artifact
// kind its own namespace in a shared cache:
//
//	svg := cache.NewScoped(fc, "svg:")
//	dot := cache.NewScoped(fc, "dot:")
//
// Closing a scoped cache does not close the underlying one.
type Scoped struct {
	inner  Cache
	prefix string
}

// NewScoped wraps inner with a key prefix. A nil inner cache is replaced
// by a [NullCache].
func NewScoped(inner Cache, prefix string) *Scoped {
	if inner == nil {
		inner = NewNullCache()
	}
	return &Scoped{inner: inner, prefix: prefix}
}

// Get retrieves a prefixed key.
func (s *Scoped) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return s.inner.Get(ctx, s.prefix+key)
}

// Set stores a prefixed key.
func (s *Scoped) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return s.inner.Set(ctx, s.prefix+key, data, ttl)
}

// Delete removes a prefixed key.
func (s *Scoped) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, s.prefix+key)
}

// Close does nothing; the underlying cache is owned by the caller.
func (s *Scoped) Close() error { return nil }

var _ Cache = (*Scoped)(nil)
