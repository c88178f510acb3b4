// Package fetch implements the Asset Fetcher: turning an asset URL seen
// during extraction into bytes plus a MIME type.
//
// [HTTPFetcher] is the network implementation (cached, retried and
// deduplicated). [Prefetch] warms a batch of URLs concurrently and returns
// a memoizing [Fetcher] for the single-threaded extraction walk. [Map] is
// an in-memory fetcher for tests and offline runs.
package fetch

import (
	"context"

	"github.com/matzehuels/pageprint/pkg/errors"
)

// Resource is a fetched asset.
type Resource struct {
	Data []byte
	// MIME is the declared content type; empty when unknown. The asset
	// registry sniffs the bytes when it is empty.
	MIME string
}

// Fetcher resolves asset URLs. Implementations must honor ctx and be safe
// for concurrent use.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (Resource, error)
}

// Func adapts a function to [Fetcher].
type Func func(ctx context.Context, url string) (Resource, error)

// Fetch calls f.
func (f Func) Fetch(ctx context.Context, url string) (Resource, error) { return f(ctx, url) }

// Map serves resources from memory keyed by URL.
type Map map[string]Resource

// Fetch returns the stored resource or NOT_FOUND.
func (m Map) Fetch(ctx context.Context, url string) (Resource, error) {
	if err := ctx.Err(); err != nil {
		return Resource{}, err
	}
	if r, ok := m[url]; ok {
		return r, nil
	}
	if IsDataURL(url) {
		return DecodeDataURL(url)
	}
	return Resource{}, errors.New(errors.ErrCodeNotFound, "no resource for %s", url)
}
