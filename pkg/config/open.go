package config

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pageprint/pkg/cache"
	"github.com/matzehuels/pageprint/pkg/compact"
	"github.com/matzehuels/pageprint/pkg/docstore"
	"github.com/matzehuels/pageprint/pkg/errors"
	"github.com/matzehuels/pageprint/pkg/fetch"
	"github.com/matzehuels/pageprint/pkg/geom"
	"github.com/matzehuels/pageprint/pkg/pipeline"
)

// OpenCache opens the configured cache backend. defaultDir is used by the
// file backend when no directory is configured.
func (c *Config) OpenCache(ctx context.Context, defaultDir string) (cache.Cache, error) {
	switch c.Cache.Backend {
	case CacheNone:
		return cache.NewNullCache(), nil
	case CacheRedis:
		rc, err := cache.NewRedisCache(ctx, c.Cache.DSN)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeNetwork, err, "open redis cache")
		}
		return rc, nil
	case CacheSQLite:
		sc, err := cache.NewSQLiteCache(c.Cache.DSN)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "open sqlite cache")
		}
		return sc, nil
	case CacheFile:
		dir := c.Cache.Dir
		if dir == "" {
			dir = defaultDir
		}
		if dir == "" {
			return cache.NewNullCache(), nil
		}
		fc, err := cache.NewFileCache(dir)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "open file cache")
		}
		return fc, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidInput, "unknown cache backend %q", c.Cache.Backend)
}

// OpenStore opens the configured document store. The cache backend keeps
// documents in backing.
func (c *Config) OpenStore(ctx context.Context, backing cache.Cache) (docstore.Store, error) {
	switch c.Store.Backend {
	case StoreMongo:
		ms, err := docstore.NewMongoStore(ctx, c.Store.URI, c.Store.Database, c.Store.Collection)
		if err != nil {
			return nil, err
		}
		return ms, nil
	case StoreCache:
		return docstore.NewCacheStore(backing, nil, c.Store.TTL), nil
	}
	return nil, errors.New(errors.ErrCodeInvalidInput, "unknown store backend %q", c.Store.Backend)
}

// FetchOptions returns HTTP fetcher options that cache bytes in backing.
func (c *Config) FetchOptions(backing cache.Cache, logger *log.Logger) fetch.HTTPOptions {
	return fetch.HTTPOptions{
		Timeout:  c.Fetch.Timeout,
		MaxBytes: c.Fetch.MaxBytes,
		Attempts: c.Fetch.Attempts,
		Cache:    backing,
		TTL:      c.Fetch.TTL,
		Logger:   logger,
	}
}

// CompactOptions returns the compaction options, or nil when compaction
// is disabled.
func (c *Config) CompactOptions() *compact.Options {
	if !c.Compact.Enabled {
		return nil
	}
	return &compact.Options{
		MaxImageBytes: c.Compact.MaxImageBytes,
		MaxSVGBytes:   c.Compact.MaxSVGBytes,
		MaxDepth:      c.Compact.MaxDepth,
		StripDebug:    c.Compact.StripDebug,
		Aggressive:    c.Compact.Aggressive,
	}
}

// PipelineOptions returns job options for url.
func (c *Config) PipelineOptions(url string) pipeline.Options {
	tolerance := c.Merge.TolerancePx()
	return pipeline.Options{
		URL:              url,
		States:           append(c.Capture.States[:0:0], c.Capture.States...),
		Viewport:         geom.Size{Width: c.Capture.ViewportWidth, Height: c.Capture.ViewportHeight},
		Timeout:          c.Capture.JobTimeout,
		IdentityAttrs:    c.Capture.IdentityAttrs,
		SemanticAttrs:    c.Capture.SemanticAttrs,
		FetchConcurrency: c.Fetch.Concurrency,
		AllowUnready:     c.Capture.AllowUnready,
		KeepDebug:        c.Capture.KeepDebug,
		BaseState:        c.Merge.BaseState,
		Tolerance:        &tolerance,
		Compact:          c.CompactOptions(),
		FontAliases:      c.Reconstruct.FontAliases,
	}
}
