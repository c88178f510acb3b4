package cache

import "strings"

// Keyer generates cache keys. Implementations must be deterministic.
type Keyer interface {
	// AssetKey keys fetched asset bytes by source URL.
	AssetKey(url string) string
	// DocumentKey keys a stored canonical document by id.
	DocumentKey(id string) string
	// SnapshotKey keys a captured source snapshot by URL and state.
	SnapshotKey(url, state string, opts SnapshotKeyOpts) string
}

// SnapshotKeyOpts are the capture settings that change a snapshot.
type SnapshotKeyOpts struct {
	ViewportWidth  int    `json:"vw"`
	ViewportHeight int    `json:"vh"`
	ScrollX        int    `json:"sx,omitempty"`
	ScrollY        int    `json:"sy,omitempty"`
	Hover          string `json:"hover,omitempty"`
	Click          string `json:"click,omitempty"`
}

// DefaultKeyer is the standard Keyer.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// AssetKey hashes the URL; data: URLs can be arbitrarily long.
func (DefaultKeyer) AssetKey(url string) string {
	return hashKey("asset", strings.TrimSpace(url))
}

// DocumentKey is "doc:<id>".
func (DefaultKeyer) DocumentKey(id string) string {
	return "doc:" + id
}

// SnapshotKey hashes the URL, state name and capture options.
func (DefaultKeyer) SnapshotKey(url, state string, opts SnapshotKeyOpts) string {
	return hashKey("snapshot", url, state, opts)
}
