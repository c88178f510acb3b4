package canon

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/matzehuels/pageprint/pkg/cache"
)

// IDSource records which rule produced a NodeId.
type IDSource string

// NodeId derivation rules, in priority order.
const (
	IDExplicit   IDSource = "explicit"
	IDSemantic   IDSource = "semantic"
	IDStructural IDSource = "structural"
)

// Default attribute lists for identity derivation.
var (
	DefaultIdentityAttrs = []string{"data-capture-id", "data-node-id", "id"}
	DefaultSemanticAttrs = []string{"aria-label", "data-testid", "name", "href"}
)

const idLength = 16

// Element is the identity-relevant view of a source element.
type Element struct {
	ParentID string
	Tag      string
	// TagIndex is the element's index among same-tag siblings.
	TagIndex int
	Attrs    map[string]string
	Text     string
}

// Collision describes an identity key that was not unique within a tree.
type Collision struct {
	Source IDSource
	Key    string
}

// Identity derives NodeIds for one extraction run. The same element in an
// unchanged source yields the same id in every run, because every input is
// either an author-provided attribute or a structural position plus
// normalized text.
type Identity struct {
	attrs    []string
	semantic []string
	used     map[string]bool
	fold     cases.Caser
}

// NewIdentity creates a deriver. Nil attribute lists use the defaults.
func NewIdentity(identityAttrs, semanticAttrs []string) *Identity {
	if identityAttrs == nil {
		identityAttrs = DefaultIdentityAttrs
	}
	if semanticAttrs == nil {
		semanticAttrs = DefaultSemanticAttrs
	}
	return &Identity{
		attrs:    identityAttrs,
		semantic: semanticAttrs,
		used:     make(map[string]bool),
		fold:     cases.Fold(),
	}
}

// Derive returns the NodeId for e and the rule that produced it. An
// explicit or semantic key already used in this tree falls through to the
// next rule and is reported as a collision.
func (d *Identity) Derive(e Element) (string, IDSource, *Collision) {
	var collision *Collision

	for _, attr := range d.attrs {
		v := strings.TrimSpace(e.Attrs[attr])
		if v == "" {
			continue
		}
		key := "explicit:" + attr + "=" + v
		if id := d.claim(key); id != "" {
			return id, IDExplicit, collision
		}
		if collision == nil {
			collision = &Collision{Source: IDExplicit, Key: attr + "=" + v}
		}
		break
	}

	if sem := d.semanticKey(e); sem != "" {
		if id := d.claim("semantic:" + sem); id != "" {
			return id, IDSemantic, collision
		}
	}

	key := "structural:" + e.ParentID + "/" + strings.ToLower(e.Tag) + "[" + strconv.Itoa(e.TagIndex) + "]|" + d.NormalizeText(e.Text)
	if id := d.claim(key); id != "" {
		return id, IDStructural, collision
	}
	// Structural keys are unique per parent by construction; a repeat means
	// the same parent id was itself duplicated upstream.
	for i := 1; ; i++ {
		if id := d.claim(key + "#" + strconv.Itoa(i)); id != "" {
			return id, IDStructural, &Collision{Source: IDStructural, Key: key}
		}
	}
}

// claim hashes key and reserves the id, returning "" if it is taken.
func (d *Identity) claim(key string) string {
	id := cache.ShortHash([]byte(key), idLength)
	if d.used[id] {
		return ""
	}
	d.used[id] = true
	return id
}

// semanticKey combines the tag, role and the first semantic attribute
// present. Elements without any semantic attribute have no key.
func (d *Identity) semanticKey(e Element) string {
	for _, attr := range d.semantic {
		if v := strings.TrimSpace(e.Attrs[attr]); v != "" {
			return strings.ToLower(e.Tag) + "|" + e.Attrs["role"] + "|" + attr + "=" + d.NormalizeText(v)
		}
	}
	return ""
}

// NormalizeText applies NFC normalization, Unicode case folding and
// whitespace collapsing, and truncates to 64 runes, so cosmetic text
// differences do not change identity.
func (d *Identity) NormalizeText(s string) string {
	s = d.fold.String(norm.NFC.String(s))
	var b strings.Builder
	space := false
	n := 0
	for _, r := range strings.TrimSpace(s) {
		if unicode.IsSpace(r) {
			space = true
			continue
		}
		if space {
			b.WriteByte(' ')
			n++
			space = false
		}
		if n >= 64 {
			break
		}
		b.WriteRune(r)
		n++
	}
	return b.String()
}
