// Package pkg provides the core libraries for pageprint, which turns
// rendered web pages into editable design documents.
//
// # Overview
//
// pageprint observes a live page in one or more interaction states (a menu
// opened, a section scrolled into view), extracts a canonical layout tree
// from each rendering, merges the per-state trees into one document and
// replays that document as an ordered list of design-tool operations.
//
// # Architecture
//
// The data flow of one capture job:
//
//	Browser page
//	     ↓
//	[source] snapshots, one per interaction state
//	     ↓
//	[extract] canonical tree per state (+ [assets] registry)
//	     ↓
//	[merge] one tree tagged with the states each node appears in
//	     ↓
//	[compact] optional size reduction
//	     ↓
//	[reconstruct] ordered calls against a scene builder
//
// [pipeline] runs these phases with caching and is shared by the CLI and
// the HTTP server.
//
// # Quick Start
//
// Capture two states of a page and record the design-tool operations:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/pageprint/pkg/cache"
//	    "github.com/matzehuels/pageprint/pkg/fonts"
//	    "github.com/matzehuels/pageprint/pkg/pipeline"
//	    "github.com/matzehuels/pageprint/pkg/reconstruct"
//	    "github.com/matzehuels/pageprint/pkg/source"
//	    "github.com/matzehuels/pageprint/pkg/source/browser"
//	)
//
//	provider, _ := browser.New(ctx, browser.Options{})
//	defer provider.Close()
//
//	rec := reconstruct.NewRecorder(fonts.Permissive{})
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, nil)
//	result, _ := runner.Execute(ctx, pipeline.Options{
//	    URL:      "https://example.com",
//	    States:   []source.StateSpec{{Name: "default"}, {Name: "menu", Click: "#menu"}},
//	    Provider: provider,
//	    Builder:  rec,
//	})
//	payload := rec.Payload()
//
// # Main Packages
//
// ## Document Model
//
// [canon] - The canonical layout schema: nodes, stable identities, the
// document envelope and its validation.
//
// [geom], [paint], [css] - Geometry, paints and effects, and the CSS value
// parsers extraction relies on.
//
// [assets] - Content-addressed registry of images and SVG markup.
//
// [tokens] - Design tokens (colors, type, spacing) collected from a tree.
//
// ## Phases
//
// [source] - Snapshot model and providers; [source/browser] drives Chrome.
//
// [extract] - Snapshot to canonical tree.
//
// [merge] - Per-state trees to one document.
//
// [reconstruct] - Document to scene-builder calls, with a recording builder
// whose ops are the plugin payload.
//
// [compact] - Drops oversized assets and deep subtrees.
//
// [fonts] - Font catalogs and fallback resolution.
//
// ## Infrastructure
//
// [cache] - Snapshot, asset and document caching with file, SQLite and
// Redis backends.
//
// [docstore] - Document persistence over a cache or MongoDB.
//
// [fetch], [httputil] - Asset downloads with retry.
//
// [config] - TOML and YAML configuration.
//
// [server] - HTTP API for merge, reconstruct, compact and stored documents.
//
// [diag], [errors], [observability] - Diagnostics, coded errors and hooks.
//
// [render/treeviz] - Graphviz drawing of a canonical tree.
//
// # Testing
//
//	go test ./pkg/...
//	go test -run Example ./pkg/...
//
// [canon]: https://pkg.go.dev/github.com/matzehuels/pageprint/pkg/canon
// [geom]: https://pkg.go.dev/github.com/matzehuels/pageprint/pkg/geom
// [paint]: https://pkg.go.dev/github.com/matzehuels/pageprint/pkg/paint
// [css]: https://pkg.go.dev/github.com/matzehuels/pageprint/pkg/css
// [assets]: https://pkg.go.dev/github.com/matzehuels/pageprint/pkg/assets
// [tokens]: https://pkg.go.dev/github.com/matzehuels/pageprint/pkg/tokens
// [source]: https://pkg.go.dev/github.com/matzehuels/pageprint/pkg/source
// [source/browser]: https://pkg.go.dev/github.com/matzehuels/pageprint/pkg/source/browser
// [extract]: https://pkg.go.dev/github.com/matzehuels/pageprint/pkg/extract
// [merge]: https://pkg.go.dev/github.com/matzehuels/pageprint/pkg/merge
// [reconstruct]: https://pkg.go.dev/github.com/matzehuels/pageprint/pkg/reconstruct
// [compact]: https://pkg.go.dev/github.com/matzehuels/pageprint/pkg/compact
// [fonts]: https://pkg.go.dev/github.com/matzehuels/pageprint/pkg/fonts
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/pageprint/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/pageprint/pkg/cache
// [docstore]: https://pkg.go.dev/github.com/matzehuels/pageprint/pkg/docstore
// [fetch]: https://pkg.go.dev/github.com/matzehuels/pageprint/pkg/fetch
// [httputil]: https://pkg.go.dev/github.com/matzehuels/pageprint/pkg/httputil
// [config]: https://pkg.go.dev/github.com/matzehuels/pageprint/pkg/config
// [server]: https://pkg.go.dev/github.com/matzehuels/pageprint/pkg/server
// [diag]: https://pkg.go.dev/github.com/matzehuels/pageprint/pkg/diag
// [errors]: https://pkg.go.dev/github.com/matzehuels/pageprint/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/pageprint/pkg/observability
// [render/treeviz]: https://pkg.go.dev/github.com/matzehuels/pageprint/pkg/render/treeviz
package pkg
