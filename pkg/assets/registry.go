// Package assets implements the content-addressed asset registry that
// canonical trees reference from their image paints.
//
// A Registry is scoped to one job. Registration is idempotent on the
// content hash: identical bytes captured from different nodes or different
// observation states share one entry.
package assets

import (
	"encoding/json"
	"maps"
	"slices"
	"sync"

	"github.com/matzehuels/pageprint/pkg/cache"
	"github.com/matzehuels/pageprint/pkg/errors"
)

// Ref references an asset by content hash. A Ref with an empty Hash is
// unresolved: its bytes could not be obtained at extraction time and
// Source records where they were expected to come from.
type Ref struct {
	Hash   string `json:"hash,omitempty" bson:"hash,omitempty"`
	MIME   string `json:"mime,omitempty" bson:"mime,omitempty"`
	Size   int64  `json:"size" bson:"size"`
	Width  int    `json:"width,omitempty" bson:"width,omitempty"`
	Height int    `json:"height,omitempty" bson:"height,omitempty"`
	Source string `json:"source,omitempty" bson:"source,omitempty"`
}

// Resolved reports whether the ref names registered content.
func (r Ref) Resolved() bool { return r.Hash != "" }

// Asset is a registry entry.
type Asset struct {
	Ref
	Data []byte `json:"data" bson:"data"`
}

// Registry is a concurrency-safe, content-hash-keyed asset store.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Asset
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Asset)}
}

func (r *Registry) init() {
	if r.entries == nil {
		r.entries = make(map[string]Asset)
	}
}

// Register stores data and returns its ref. Registering identical bytes
// again returns the same ref without growing the registry. mime may be
// empty, in which case it is sniffed from the content.
func (r *Registry) Register(data []byte, mime string) Ref {
	hash := cache.Hash(data)

	r.mu.RLock()
	existing, ok := r.entries[hash]
	r.mu.RUnlock()
	if ok {
		return existing.Ref
	}

	if mime == "" {
		mime = DetectMIME(data)
	}
	w, h := IntrinsicSize(data, mime)
	ref := Ref{Hash: hash, MIME: mime, Size: int64(len(data)), Width: w, Height: h}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.entries[hash]; ok {
		return existing.Ref
	}
	r.init()
	r.entries[hash] = Asset{Ref: ref, Data: data}
	return ref
}

// Add inserts a fully described asset under its own hash, replacing any
// entry with that hash. It is used when loading an asset table from the
// wire format, where the hash is taken as given.
func (r *Registry) Add(a Asset) error {
	if a.Hash == "" {
		return errors.New(errors.ErrCodeSchemaInvalid, "asset without hash")
	}
	if a.Size == 0 {
		a.Size = int64(len(a.Data))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.init()
	r.entries[a.Hash] = a
	return nil
}

// Resolve returns the bytes behind ref, or an ASSET_MISSING error.
func (r *Registry) Resolve(ref Ref) ([]byte, error) {
	if !ref.Resolved() {
		return nil, errors.New(errors.ErrCodeAssetMissing, "asset from %q was never resolved", ref.Source)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.entries[ref.Hash]
	if !ok {
		return nil, errors.New(errors.ErrCodeAssetMissing, "asset %s not in registry", ref.Hash)
	}
	return a.Data, nil
}

// Lookup returns the entry for hash.
func (r *Registry) Lookup(hash string) (Asset, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.entries[hash]
	return a, ok
}

// Remove deletes the entry for hash. Refs to it become unresolvable.
func (r *Registry) Remove(hash string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, hash)
}

// Len returns the number of distinct content hashes.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Hashes returns the registered hashes in sorted order.
func (r *Registry) Hashes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.entries))
}

// TotalBytes returns the summed size of all registered content.
func (r *Registry) TotalBytes() int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, a := range r.entries {
		n += int64(len(a.Data))
	}
	return n
}

// Absorb copies every entry of other into r. Entries already present are
// kept, so absorbing is idempotent.
func (r *Registry) Absorb(other *Registry) {
	if other == nil || other == r {
		return
	}
	other.mu.RLock()
	entries := maps.Clone(other.entries)
	other.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.init()
	for h, a := range entries {
		if _, ok := r.entries[h]; !ok {
			r.entries[h] = a
		}
	}
}

// MarshalJSON encodes the registry as the wire asset table: an object keyed
// by content hash.
func (r *Registry) MarshalJSON() ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.entries == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(r.entries)
}

// UnmarshalJSON decodes a wire asset table.
func (r *Registry) UnmarshalJSON(data []byte) error {
	var table map[string]Asset
	if err := json.Unmarshal(data, &table); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = make(map[string]Asset, len(table))
	for h, a := range table {
		if a.Hash == "" {
			a.Hash = h
		}
		if a.Hash != h {
			return errors.New(errors.ErrCodeSchemaInvalid, "asset table key %s does not match hash %s", h, a.Hash)
		}
		r.entries[h] = a
	}
	return nil
}

// Verify reports the hashes whose content does not hash to their key.
// Tables loaded from the wire may use non-content keys.
func (r *Registry) Verify() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var bad []string
	for h, a := range r.entries {
		if cache.Hash(a.Data) != h {
			bad = append(bad, h)
		}
	}
	slices.Sort(bad)
	return bad
}
