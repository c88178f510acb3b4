package canon

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/matzehuels/pageprint/pkg/assets"
	"github.com/matzehuels/pageprint/pkg/diag"
	"github.com/matzehuels/pageprint/pkg/errors"
	"github.com/matzehuels/pageprint/pkg/geom"
)

// FormatVersion is the wire format version written by this package.
const FormatVersion = 1

// Source describes where a document was captured.
type Source struct {
	URL        string    `json:"url,omitempty" bson:"url,omitempty"`
	Viewport   geom.Size `json:"viewport" bson:"viewport"`
	CapturedAt time.Time `json:"capturedAt,omitempty" bson:"captured_at,omitempty"`
	// Generator names the build that produced the document.
	Generator string `json:"generator,omitempty" bson:"generator,omitempty"`
}

// Document is the wire representation of a canonical tree: one root node,
// a sibling asset table keyed by content hash, and optional design tokens
// and diagnostics.
type Document struct {
	Version     int              `json:"version" bson:"version"`
	Source      Source           `json:"source" bson:"source"`
	States      []string         `json:"states" bson:"states"`
	BaseState   string           `json:"baseState,omitempty" bson:"base_state,omitempty"`
	Tree        *Node            `json:"tree" bson:"tree"`
	Assets      *assets.Registry `json:"assets" bson:"-"`
	Tokens      *Tokens          `json:"designTokens,omitempty" bson:"tokens,omitempty"`
	Diagnostics []diag.Entry     `json:"diagnostics,omitempty" bson:"diagnostics,omitempty"`
}

// NewDocument wraps a tree and its registry.
func NewDocument(tree *Node, reg *assets.Registry) *Document {
	if reg == nil {
		reg = assets.NewRegistry()
	}
	return &Document{Version: FormatVersion, Tree: tree, Assets: reg}
}

// Validate checks the tree invariants and that every resolved asset ref
// is present in the asset table. Missing assets are not a schema error at
// this level (compaction drops oversized ones on purpose); use
// [Document.MissingAssets] to list them.
func (d *Document) Validate() error {
	if d.Version != FormatVersion {
		return errors.New(errors.ErrCodeSchemaInvalid, "unsupported format version %d", d.Version)
	}
	return Validate(d.Tree)
}

// MissingAssets returns the hashes referenced by the tree but absent from
// the asset table, in first-reference order.
func (d *Document) MissingAssets() []string {
	var missing []string
	seen := make(map[string]bool)
	d.Tree.Walk(func(n *Node, _ int) bool {
		for _, img := range n.ImagePaints() {
			h := img.Asset.Hash
			if h == "" || seen[h] {
				continue
			}
			seen[h] = true
			if _, ok := d.Assets.Lookup(h); !ok {
				missing = append(missing, h)
			}
		}
		return true
	})
	return missing
}

// Encode writes the document as indented JSON.
func Encode(w io.Writer, d *Document) error {
	if d.Assets == nil {
		d.Assets = assets.NewRegistry()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}

// Marshal returns the compact JSON encoding of d.
func Marshal(d *Document) ([]byte, error) {
	if d.Assets == nil {
		d.Assets = assets.NewRegistry()
	}
	return json.Marshal(d)
}

// Decode reads and validates a document. Malformed JSON is INVALID_FORMAT;
// a tree violating the schema is SCHEMA_INVALID.
func Decode(r io.Reader) (*Document, error) {
	var d Document
	dec := json.NewDecoder(r)
	if err := dec.Decode(&d); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode canonical document")
	}
	if d.Assets == nil {
		d.Assets = assets.NewRegistry()
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// Unmarshal decodes and validates a document from bytes.
func Unmarshal(data []byte) (*Document, error) {
	return Decode(bytes.NewReader(data))
}

// ReadFile loads a document from path.
func ReadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "open %s", path)
	}
	defer f.Close()
	d, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// WriteFile writes a document to path.
func WriteFile(path string, d *Document) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", path)
	}
	if err := Encode(f, d); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
