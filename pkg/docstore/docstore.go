// Package docstore persists canonical documents between the capture and
// the reconstruction processes.
//
// A [Store] hands out opaque ids. [CacheStore] keeps the wire JSON in any
// [cache.Cache] backend; [MongoStore] keeps one BSON record per document.
// The core transforms never read from a store; it is a transport concern.
package docstore

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/pageprint/pkg/cache"
	"github.com/matzehuels/pageprint/pkg/canon"
	"github.com/matzehuels/pageprint/pkg/errors"
)

// Store saves and loads canonical documents.
type Store interface {
	// Put stores doc and returns its new id.
	Put(ctx context.Context, doc *canon.Document) (string, error)
	// Get loads the document with id; an unknown id is NOT_FOUND.
	Get(ctx context.Context, id string) (*canon.Document, error)
	// Delete removes id. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error
	Close() error
}

// NewID returns a fresh document id.
func NewID() string { return uuid.NewString() }

func checkID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errors.New(errors.ErrCodeInvalidInput, "invalid document id %q", id)
	}
	return nil
}

// CacheStore stores wire JSON under [cache.Keyer.DocumentKey].
type CacheStore struct {
	Cache cache.Cache
	Keyer cache.Keyer
	// TTL bounds how long documents live; zero keeps them until deleted.
	TTL time.Duration
}

// NewCacheStore wraps c. A nil keyer uses the default keyer.
func NewCacheStore(c cache.Cache, keyer cache.Keyer, ttl time.Duration) *CacheStore {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	return &CacheStore{Cache: cache.Instrumented(c, "document"), Keyer: keyer, TTL: ttl}
}

// Put implements [Store].
func (s *CacheStore) Put(ctx context.Context, doc *canon.Document) (string, error) {
	data, err := canon.Marshal(doc)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidFormat, err, "encode document")
	}
	id := NewID()
	if err := s.Cache.Set(ctx, s.Keyer.DocumentKey(id), data, s.TTL); err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "store document")
	}
	return id, nil
}

// Get implements [Store].
func (s *CacheStore) Get(ctx context.Context, id string) (*canon.Document, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	data, ok, err := s.Cache.Get(ctx, s.Keyer.DocumentKey(id))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "load document %s", id)
	}
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "document %s not found", id)
	}
	return canon.Unmarshal(data)
}

// Delete implements [Store].
func (s *CacheStore) Delete(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	return s.Cache.Delete(ctx, s.Keyer.DocumentKey(id))
}

// Close closes the underlying cache.
func (s *CacheStore) Close() error { return s.Cache.Close() }

var (
	_ Store = (*CacheStore)(nil)
	_ Store = (*MongoStore)(nil)
)
