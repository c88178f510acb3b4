package fetch

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/pageprint/pkg/cache"
	"github.com/matzehuels/pageprint/pkg/errors"
	"github.com/matzehuels/pageprint/pkg/httputil"
)

// HTTPOptions configures [NewHTTP].
type HTTPOptions struct {
	Timeout  time.Duration // per attempt; 0 means httputil.DefaultTimeout
	MaxBytes int64         // 0 means httputil.DefaultMaxBytes
	Attempts int           // 0 means 3
	Backoff  time.Duration // initial retry delay; 0 means 500ms

	// Cache stores fetched bytes; nil disables caching.
	Cache cache.Cache
	Keyer cache.Keyer
	TTL   time.Duration

	Logger *log.Logger
}

// HTTPFetcher fetches assets over HTTP(S).
type HTTPFetcher struct {
	client   *httputil.Client
	cache    cache.Cache
	keyer    cache.Keyer
	ttl      time.Duration
	attempts int
	backoff  time.Duration
	logger   *log.Logger
	group    singleflight.Group
}

// NewHTTP returns an HTTP fetcher.
func NewHTTP(opts HTTPOptions) *HTTPFetcher {
	client := httputil.NewClient(opts.Timeout)
	if opts.MaxBytes > 0 {
		client.MaxBytes = opts.MaxBytes
	}
	f := &HTTPFetcher{
		client:   client,
		cache:    opts.Cache,
		keyer:    opts.Keyer,
		ttl:      opts.TTL,
		attempts: opts.Attempts,
		backoff:  opts.Backoff,
		logger:   opts.Logger,
	}
	if cache.Disabled(f.cache) {
		f.cache = nil
	} else {
		f.cache = cache.Instrumented(f.cache, "asset")
	}
	if f.keyer == nil {
		f.keyer = cache.NewDefaultKeyer()
	}
	if f.attempts <= 0 {
		f.attempts = 3
	}
	if f.backoff <= 0 {
		f.backoff = 500 * time.Millisecond
	}
	if f.logger == nil {
		f.logger = log.New(io.Discard)
	}
	return f
}

// Fetch returns the bytes behind url. Concurrent calls for the same URL
// share one request.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (Resource, error) {
	if IsDataURL(url) {
		return DecodeDataURL(url)
	}
	if err := errors.ValidateURL(url); err != nil {
		return Resource{}, err
	}

	v, err, _ := f.group.Do(url, func() (any, error) {
		return f.fetch(ctx, url)
	})
	if err != nil {
		return Resource{}, err
	}
	return v.(Resource), nil
}

func (f *HTTPFetcher) fetch(ctx context.Context, url string) (Resource, error) {
	key := f.keyer.AssetKey(url)
	if f.cache != nil {
		if data, ok, err := f.cache.Get(ctx, key); err == nil && ok {
			if r, ok := decodeEntry(data); ok {
				return r, nil
			}
		} else if err != nil {
			f.logger.Debug("asset cache read failed", "url", url, "err", err)
		}
	}

	var body []byte
	var mime string
	err := httputil.Retry(ctx, f.attempts, f.backoff, func() error {
		var err error
		body, mime, err = f.client.Get(ctx, url)
		return err
	})
	if err != nil {
		if ctx.Err() != nil {
			return Resource{}, ctx.Err()
		}
		f.logger.Debug("asset fetch failed", "url", url, "err", err)
		return Resource{}, errors.Wrap(errors.ErrCodeNetwork, err, "fetch %s", url)
	}

	r := Resource{Data: body, MIME: mime}
	if f.cache != nil {
		if err := f.cache.Set(ctx, key, encodeEntry(r), f.ttl); err != nil {
			f.logger.Debug("asset cache write failed", "url", url, "err", err)
		}
	}
	return r, nil
}

// Cache entries are "<mime>\x00<bytes>".
func encodeEntry(r Resource) []byte {
	out := make([]byte, 0, len(r.MIME)+1+len(r.Data))
	out = append(out, r.MIME...)
	out = append(out, 0)
	return append(out, r.Data...)
}

func decodeEntry(b []byte) (Resource, bool) {
	i := bytes.IndexByte(b, 0)
	if i < 0 {
		return Resource{}, false
	}
	return Resource{MIME: string(b[:i]), Data: b[i+1:]}, true
}
