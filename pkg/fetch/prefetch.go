package fetch

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Memo is a [Fetcher] that remembers every outcome, failures included.
// URLs it has not seen are fetched through the wrapped fetcher on demand.
type Memo struct {
	next Fetcher

	mu      sync.Mutex
	results map[string]result
}

type result struct {
	res Resource
	err error
}

// NewMemo wraps next.
func NewMemo(next Fetcher) *Memo {
	return &Memo{next: next, results: make(map[string]result)}
}

// Fetch returns the remembered outcome for url, fetching it first when
// unknown. Cancellation is never remembered.
func (m *Memo) Fetch(ctx context.Context, url string) (Resource, error) {
	m.mu.Lock()
	r, ok := m.results[url]
	m.mu.Unlock()
	if ok {
		return r.res, r.err
	}

	res, err := m.next.Fetch(ctx, url)
	if err != nil && ctx.Err() != nil {
		return Resource{}, ctx.Err()
	}
	m.mu.Lock()
	m.results[url] = result{res, err}
	m.mu.Unlock()
	return res, err
}

// Failed returns the number of remembered failures.
func (m *Memo) Failed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, r := range m.results {
		if r.err != nil {
			n++
		}
	}
	return n
}

// Prefetch fetches urls with at most limit requests in flight and returns
// a [Memo] holding the outcomes. A failing URL never aborts the batch; only
// cancellation of ctx does.
func Prefetch(ctx context.Context, f Fetcher, urls []string, limit int) (*Memo, error) {
	m := NewMemo(f)
	if limit <= 0 {
		limit = 8
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	seen := make(map[string]bool, len(urls))
	for _, u := range urls {
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		g.Go(func() error {
			_, _ = m.Fetch(gctx, u)
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return m, nil
}
