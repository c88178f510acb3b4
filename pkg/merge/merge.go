// Package merge implements State Merge: several canonical trees captured
// from different observation states of the same source are reconciled
// into one tree keyed by NodeId.
//
// The base state is processed first, then the remaining states in input
// order. The first occurrence of a NodeId fixes its geometry and style;
// later occurrences only add their state tag. Nodes revealed by a later
// state are appended under their parent after the existing children.
// Merging is a pure in-memory reduction and never mutates its inputs.
package merge

import (
	"fmt"
	"io"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pageprint/pkg/assets"
	"github.com/matzehuels/pageprint/pkg/canon"
	"github.com/matzehuels/pageprint/pkg/diag"
	"github.com/matzehuels/pageprint/pkg/errors"
)

const phase = string(errors.PhaseMerge)

// DefaultTolerance is the geometry difference, in px, below which two
// observations of a node are considered the same.
const DefaultTolerance = 1.0

// Options configures a merge.
type Options struct {
	// Base is the state whose geometry wins conflicts. Empty means the
	// first input's state.
	Base string
	// Tolerance is the largest edge difference treated as sub-pixel noise.
	// Zero means DefaultTolerance unless Exact is set.
	Tolerance float64
	// Exact reports every geometry difference as a conflict.
	Exact  bool
	Logger *log.Logger
}

// SetTolerance applies a configured tolerance. Zero or less means exact.
func (o *Options) SetTolerance(px float64) {
	if px <= 0 {
		o.Tolerance, o.Exact = 0, true
		return
	}
	o.Tolerance, o.Exact = px, false
}

func (o Options) tolerance() float64 {
	switch {
	case o.Exact:
		return 0
	case o.Tolerance <= 0:
		return DefaultTolerance
	}
	return o.Tolerance
}

// Input is one observation state's tree.
type Input struct {
	State string
	Tree  *canon.Node
}

// Result is a merged tree.
type Result struct {
	Tree *canon.Node
	// States lists the merged states, base first.
	States    []string
	Base      string
	Report    *diag.Report
	Conflicts int
}

// Merge reconciles inputs into one tree. Inputs that violate the schema
// are rejected with SCHEMA_INVALID.
func Merge(inputs []Input, opts Options) (*Result, error) {
	if len(inputs) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "nothing to merge")
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	tol := opts.tolerance()

	for _, in := range inputs {
		if err := errors.ValidateStateName(in.State); err != nil {
			return nil, err
		}
		if err := canon.Validate(in.Tree); err != nil {
			return nil, err
		}
	}

	ordered, err := order(inputs, opts.Base)
	if err != nil {
		return nil, err
	}
	base := ordered[0]

	m := &merger{
		tol:     tol,
		report:  &diag.Report{},
		logger:  opts.Logger,
		base:    base.State,
		index:   make(map[string]*canon.Node),
		origins: make(map[string]string),
	}
	m.root = base.Tree.Clone()
	m.root.Walk(func(n *canon.Node, _ int) bool {
		n.AddState(base.State)
		m.index[n.ID] = n
		m.origins[n.ID] = base.State
		m.nextOrder = max(m.nextOrder, n.DocOrder+1)
		return true
	})

	for _, in := range ordered[1:] {
		m.absorb(in)
	}
	states := []string{base.State}
	m.root.Walk(func(n *canon.Node, _ int) bool {
		for _, s := range n.ObservedInStates {
			if !slices.Contains(states, s) {
				states = append(states, s)
			}
		}
		return true
	})

	opts.Logger.Debug("merged", "states", states, "nodes", m.root.Count(), "conflicts", m.conflicts)
	return &Result{
		Tree:      m.root,
		States:    states,
		Base:      base.State,
		Report:    m.report,
		Conflicts: m.conflicts,
	}, nil
}

// order puts the base state first and keeps the rest in input order.
func order(inputs []Input, base string) ([]Input, error) {
	if base == "" {
		return inputs, nil
	}
	i := slices.IndexFunc(inputs, func(in Input) bool { return in.State == base })
	if i < 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "base state %q is not among the merged states", base)
	}
	out := make([]Input, 0, len(inputs))
	out = append(out, inputs[i])
	out = append(out, inputs[:i]...)
	return append(out, inputs[i+1:]...), nil
}

type merger struct {
	tol       float64
	report    *diag.Report
	logger    *log.Logger
	base      string
	root      *canon.Node
	index     map[string]*canon.Node
	origins   map[string]string // state that established each node
	nextOrder int
	conflicts int
}

func (m *merger) absorb(in Input) {
	in.Tree.Walk(func(n *canon.Node, _ int) bool {
		if existing, ok := m.index[n.ID]; ok {
			tag(existing, n, in.State)
			if d := existing.Rect.Distance(n.Rect); d > m.tol {
				m.conflict(existing, in.State, n, d)
			}
			return true
		}
		if n.ParentID == "" {
			// A different root: its subtree hangs off the merged root.
			m.report.Addf(diag.MergeConflictWarning, phase, n.ID,
				"state %s has a different root; its nodes are attached to %s", in.State, m.root.ID)
			m.index[n.ID] = m.root
			tag(m.root, n, in.State)
			return true
		}
		m.insert(n, in.State)
		return true
	})
}

// insert appends a copy of n (without its children, which are visited
// next) under its parent.
func (m *merger) insert(n *canon.Node, state string) {
	parent, ok := m.index[n.ParentID]
	if !ok {
		parent = m.root
	}
	c := n.Clone()
	c.Children = nil
	c.ParentID = parent.ID
	c.AddState(state)
	c.DocOrder = m.nextOrder
	m.nextOrder++

	parent.Children = append(parent.Children, c)
	parent.SortChildren()
	m.index[c.ID] = c
	m.origins[c.ID] = state
}

// tag adds the states seen carries, plus state, to kept. Inputs that are
// themselves merged trees carry more than one state.
func tag(kept, seen *canon.Node, state string) {
	for _, s := range seen.ObservedInStates {
		kept.AddState(s)
	}
	kept.AddState(state)
}

func (m *merger) conflict(kept *canon.Node, state string, seen *canon.Node, d float64) {
	m.conflicts++
	winner := m.origins[kept.ID]
	m.report.Add(diag.Entry{
		Kind:   diag.MergeConflictWarning,
		Phase:  phase,
		NodeID: kept.ID,
		Reason: fmt.Sprintf("geometry differs by %.2fpx in state %s; kept %s", d, state, winner),
		Detail: map[string]string{
			"kept":     kept.Rect.String(),
			"keptFrom": winner,
			"seen":     seen.Rect.String(),
			"seenIn":   state,
		},
	})
	m.logger.Debug("merge conflict", "node", kept.ID, "state", state, "distance", d)
}

// Documents merges whole documents: trees by [Merge], asset tables by
// union and diagnostics by concatenation.
func Documents(docs []*canon.Document, opts Options) (*canon.Document, *diag.Report, error) {
	inputs := make([]Input, 0, len(docs))
	reg := assets.NewRegistry()
	var carried []diag.Entry
	for i, d := range docs {
		if d == nil || d.Tree == nil {
			return nil, nil, errors.New(errors.ErrCodeSchemaInvalid, "document %d has no tree", i)
		}
		state := d.BaseState
		if state == "" && len(d.States) > 0 {
			state = d.States[0]
		}
		if state == "" && len(d.Tree.ObservedInStates) > 0 {
			state = d.Tree.ObservedInStates[0]
		}
		inputs = append(inputs, Input{State: state, Tree: d.Tree})
		reg.Absorb(d.Assets)
		carried = append(carried, d.Diagnostics...)
	}

	res, err := Merge(inputs, opts)
	if err != nil {
		return nil, nil, err
	}
	out := canon.NewDocument(res.Tree, reg)
	out.Source = docs[0].Source
	out.States = res.States
	out.BaseState = res.Base
	out.Diagnostics = append(carried, res.Report.Entries()...)
	return out, res.Report, nil
}
