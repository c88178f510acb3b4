package cache

import (
	"context"
	"time"
)

// NullCache stores nothing. It backs "--no-cache" runs and snapshot
// extraction, where every state must come from the provider.
type NullCache struct{}

// NewNullCache returns the caching-disabled backend.
func NewNullCache() Cache {
	return NullCache{}
}

func (NullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error                     { return nil }
func (NullCache) Close() error                                             { return nil }

// Disabled reports whether c drops every write, so callers can skip
// encoding values nobody will read back.
func Disabled(c Cache) bool {
	switch v := c.(type) {
	case nil, NullCache, *NullCache:
		return true
	case *instrumented:
		return Disabled(v.Cache)
	}
	return false
}
