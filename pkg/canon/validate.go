package canon

import (
	"fmt"

	"github.com/matzehuels/pageprint/pkg/errors"
)

// Validate checks the schema invariants of a tree and returns a
// SCHEMA_INVALID error describing the first violation:
//   - ids are non-empty and unique, and no node is reachable twice
//   - the root has no parent; every other node's ParentID is its parent
//   - every rect satisfies the AbsoluteRect invariant
//   - opacity is within [0,1] and corner radii are non-negative
//   - children are ordered by (z-index, document order)
//   - paints are well-formed variants
//   - text styles only appear on text nodes
func Validate(root *Node) error {
	if root == nil {
		return errors.New(errors.ErrCodeSchemaInvalid, "tree has no root")
	}
	if root.ParentID != "" {
		return errors.New(errors.ErrCodeSchemaInvalid, "root %s has parentId %s", root.ID, root.ParentID)
	}
	seen := make(map[string]bool)
	visited := make(map[*Node]bool)
	return validate(root, nil, seen, visited)
}

func validate(n, parent *Node, seen map[string]bool, visited map[*Node]bool) error {
	fail := func(format string, args ...any) error {
		return errors.New(errors.ErrCodeSchemaInvalid, "node %s: %s", n.ID, fmt.Sprintf(format, args...))
	}
	if visited[n] {
		return fail("reachable more than once (cycle or shared subtree)")
	}
	visited[n] = true

	if n.ID == "" {
		return errors.New(errors.ErrCodeSchemaInvalid, "node without id")
	}
	if seen[n.ID] {
		return fail("duplicate id")
	}
	seen[n.ID] = true

	if parent != nil && n.ParentID != parent.ID {
		return fail("parentId %q does not match parent %q", n.ParentID, parent.ID)
	}
	switch n.Kind {
	case KindFrame, KindText, KindImage, KindVector:
	default:
		return fail("unknown kind %q", n.Kind)
	}
	if err := n.Rect.Validate(); err != nil {
		return fail("rect: %v", err)
	}
	if n.Opacity < 0 || n.Opacity > 1 {
		return fail("opacity %g outside [0,1]", n.Opacity)
	}
	if err := n.Corners.Validate(); err != nil {
		return fail("%v", err)
	}
	for i, p := range n.Paints {
		if err := p.Validate(); err != nil {
			return fail("paint %d: %v", i, err)
		}
	}
	for i, p := range n.Strokes {
		if err := p.Validate(); err != nil {
			return fail("stroke %d: %v", i, err)
		}
	}
	if n.TextStyle != nil && n.Kind != KindText {
		return fail("text style on %s node", n.Kind)
	}
	for i := 1; i < len(n.Children); i++ {
		if compareStacking(n.Children[i-1], n.Children[i]) > 0 {
			return fail("children out of stacking order at index %d", i)
		}
	}
	for _, c := range n.Children {
		if c == nil {
			return fail("nil child")
		}
		if err := validate(c, n, seen, visited); err != nil {
			return err
		}
	}
	return nil
}

// Assemble builds a tree from a flat node list linked by ParentID. Existing
// Children fields are ignored. Exactly one node must have no parent, every
// ParentID must name a node in the list, and the parent graph must be
// acyclic; violations are SCHEMA_INVALID. Children are sorted by stacking
// order.
func Assemble(nodes []*Node) (*Node, error) {
	byID := make(map[string]*Node, len(nodes))
	for _, n := range nodes {
		if n.ID == "" {
			return nil, errors.New(errors.ErrCodeSchemaInvalid, "node without id")
		}
		if _, dup := byID[n.ID]; dup {
			return nil, errors.New(errors.ErrCodeSchemaInvalid, "duplicate id %s", n.ID)
		}
		byID[n.ID] = n
		n.Children = nil
	}

	var root *Node
	for _, n := range nodes {
		if n.ParentID == "" {
			if root != nil {
				return nil, errors.New(errors.ErrCodeSchemaInvalid, "multiple roots: %s and %s", root.ID, n.ID)
			}
			root = n
			continue
		}
		if _, ok := byID[n.ParentID]; !ok {
			return nil, errors.New(errors.ErrCodeSchemaInvalid, "node %s references missing parent %s", n.ID, n.ParentID)
		}
	}

	// Follow parent links from every node; a walk longer than the node
	// count means the parent graph has a cycle.
	for _, n := range nodes {
		cur, steps := n, 0
		for cur.ParentID != "" {
			cur = byID[cur.ParentID]
			if steps++; steps > len(nodes) {
				return nil, errors.New(errors.ErrCodeSchemaInvalid, "parentId cycle through %s", n.ID)
			}
		}
	}
	if root == nil {
		return nil, errors.New(errors.ErrCodeSchemaInvalid, "no root node")
	}

	for _, n := range nodes {
		if n.ParentID != "" {
			p := byID[n.ParentID]
			p.Children = append(p.Children, n)
		}
	}
	root.Walk(func(n *Node, _ int) bool { n.SortChildren(); return true })
	return root, nil
}

// Flatten returns the nodes of the subtree in depth-first order.
func Flatten(root *Node) []*Node {
	var out []*Node
	root.Walk(func(n *Node, _ int) bool { out = append(out, n); return true })
	return out
}
