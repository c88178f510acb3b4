package reconstruct

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/matzehuels/pageprint/pkg/errors"
	"github.com/matzehuels/pageprint/pkg/fonts"
	"github.com/matzehuels/pageprint/pkg/geom"
)

// OpType names a recorded builder call.
type OpType string

// Recorded operations.
const (
	OpCreateFrame     OpType = "createFrame"
	OpCreateText      OpType = "createText"
	OpCreateVector    OpType = "createVector"
	OpCreateRectangle OpType = "createRectangle"
	OpSetRect         OpType = "setRect"
	OpSetTransform    OpType = "setTransform"
	OpSetAutoLayout   OpType = "setAutoLayout"
	OpSetPaints       OpType = "setPaints"
	OpSetStrokes      OpType = "setStrokes"
	OpSetCornerRadius OpType = "setCornerRadius"
	OpSetEffects      OpType = "setEffects"
	OpSetOpacity      OpType = "setOpacity"
	OpSetClipsContent OpType = "setClipsContent"
	OpSetText         OpType = "setText"
	OpRemove          OpType = "remove"
)

// Op is one recorded call. Only the fields of its Type are set.
type Op struct {
	Seq    int    `json:"seq"`
	Type   OpType `json:"type"`
	Node   Handle `json:"node"`
	Parent Handle `json:"parent,omitempty"`
	Name   string `json:"name,omitempty"`

	Placement    *Placement    `json:"placement,omitempty"`
	Transform    *Transform    `json:"transform,omitempty"`
	AutoLayout   *AutoLayout   `json:"autoLayout,omitempty"`
	Paints       []Paint       `json:"paints,omitempty"`
	Weights      *geom.Edges   `json:"strokeWeights,omitempty"`
	CornerRadius *CornerRadius `json:"cornerRadius,omitempty"`
	Effects      []Effect      `json:"effects,omitempty"`
	Opacity      *float64      `json:"opacity,omitempty"`
	Clips        *bool         `json:"clipsContent,omitempty"`
	Text         *Text         `json:"text,omitempty"`
}

// Payload is the serialized op list handed to the target application.
type Payload struct {
	Version int  `json:"version"`
	Ops     []Op `json:"ops"`
}

// PayloadVersion is the current op payload format.
const PayloadVersion = 1

// Recorder is a [SceneBuilder] that records every call. Its op list is the
// payload a target-side plugin replays. Font queries are answered by a
// [fonts.Catalog].
type Recorder struct {
	catalog fonts.Catalog

	mu       sync.Mutex
	ops      []Op
	next     int
	parents  map[Handle]Handle
	children map[Handle][]Handle
}

// NewRecorder returns an empty recorder. A nil catalog means
// [fonts.Permissive].
func NewRecorder(catalog fonts.Catalog) *Recorder {
	if catalog == nil {
		catalog = fonts.Permissive{}
	}
	return &Recorder{
		catalog:  catalog,
		parents:  make(map[Handle]Handle),
		children: make(map[Handle][]Handle),
	}
}

func (r *Recorder) record(op Op) {
	op.Seq = len(r.ops)
	r.ops = append(r.ops, op)
}

func (r *Recorder) create(ctx context.Context, typ OpType, parent Handle, name string) (Handle, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if parent != "" {
		if _, ok := r.parents[parent]; !ok {
			return "", errors.New(errors.ErrCodeNotFound, "unknown parent %s", parent)
		}
	}
	r.next++
	h := Handle(fmt.Sprintf("n%d", r.next))
	r.parents[h] = parent
	r.children[parent] = append(r.children[parent], h)
	r.record(Op{Type: typ, Node: h, Parent: parent, Name: name})
	return h, nil
}

func (r *Recorder) set(h Handle, op Op) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.parents[h]; !ok {
		return errors.New(errors.ErrCodeNotFound, "unknown node %s", h)
	}
	op.Node = h
	r.record(op)
	return nil
}

// CreateFrame implements [SceneBuilder].
func (r *Recorder) CreateFrame(ctx context.Context, parent Handle, name string) (Handle, error) {
	return r.create(ctx, OpCreateFrame, parent, name)
}

// CreateText implements [SceneBuilder].
func (r *Recorder) CreateText(ctx context.Context, parent Handle, name string) (Handle, error) {
	return r.create(ctx, OpCreateText, parent, name)
}

// CreateVector implements [SceneBuilder].
func (r *Recorder) CreateVector(ctx context.Context, parent Handle, name string) (Handle, error) {
	return r.create(ctx, OpCreateVector, parent, name)
}

// CreateRectangle implements [SceneBuilder].
func (r *Recorder) CreateRectangle(ctx context.Context, parent Handle, name string) (Handle, error) {
	return r.create(ctx, OpCreateRectangle, parent, name)
}

// SetRect implements [SceneBuilder].
func (r *Recorder) SetRect(h Handle, p Placement) error {
	return r.set(h, Op{Type: OpSetRect, Placement: &p})
}

// SetTransform implements [SceneBuilder].
func (r *Recorder) SetTransform(h Handle, t Transform) error {
	return r.set(h, Op{Type: OpSetTransform, Transform: &t})
}

// SetAutoLayout implements [SceneBuilder].
func (r *Recorder) SetAutoLayout(h Handle, l AutoLayout) error {
	return r.set(h, Op{Type: OpSetAutoLayout, AutoLayout: &l})
}

// SetPaints implements [SceneBuilder].
func (r *Recorder) SetPaints(h Handle, fills []Paint) error {
	return r.set(h, Op{Type: OpSetPaints, Paints: fills})
}

// SetStrokes implements [SceneBuilder].
func (r *Recorder) SetStrokes(h Handle, strokes []Paint, weights geom.Edges) error {
	return r.set(h, Op{Type: OpSetStrokes, Paints: strokes, Weights: &weights})
}

// SetCornerRadius implements [SceneBuilder].
func (r *Recorder) SetCornerRadius(h Handle, c CornerRadius) error {
	return r.set(h, Op{Type: OpSetCornerRadius, CornerRadius: &c})
}

// SetEffects implements [SceneBuilder].
func (r *Recorder) SetEffects(h Handle, effects []Effect) error {
	return r.set(h, Op{Type: OpSetEffects, Effects: effects})
}

// SetOpacity implements [SceneBuilder].
func (r *Recorder) SetOpacity(h Handle, opacity float64) error {
	return r.set(h, Op{Type: OpSetOpacity, Opacity: &opacity})
}

// SetClipsContent implements [SceneBuilder].
func (r *Recorder) SetClipsContent(h Handle, clips bool) error {
	return r.set(h, Op{Type: OpSetClipsContent, Clips: &clips})
}

// SetText implements [SceneBuilder].
func (r *Recorder) SetText(h Handle, t Text) error {
	return r.set(h, Op{Type: OpSetText, Text: &t})
}

// Remove implements [SceneBuilder].
func (r *Recorder) Remove(h Handle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	parent, ok := r.parents[h]
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "unknown node %s", h)
	}
	siblings := r.children[parent]
	for i, s := range siblings {
		if s == h {
			r.children[parent] = append(siblings[:i:i], siblings[i+1:]...)
			break
		}
	}
	r.forget(h)
	r.record(Op{Type: OpRemove, Node: h})
	return nil
}

func (r *Recorder) forget(h Handle) {
	for _, c := range r.children[h] {
		r.forget(c)
	}
	delete(r.children, h)
	delete(r.parents, h)
}

// FontStyles implements [SceneBuilder].
func (r *Recorder) FontStyles(ctx context.Context, family string) ([]fonts.Style, error) {
	return r.catalog.Styles(ctx, family)
}

// Ops returns a copy of the recorded operations.
func (r *Recorder) Ops() []Op {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Op(nil), r.ops...)
}

// OpsFor returns the operations recorded for one node, in order.
func (r *Recorder) OpsFor(h Handle) []Op {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Op
	for _, op := range r.ops {
		if op.Node == h {
			out = append(out, op)
		}
	}
	return out
}

// Children returns the live children of h in creation order.
func (r *Recorder) Children(h Handle) []Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Handle(nil), r.children[h]...)
}

// Live returns the number of nodes that exist after all removals.
func (r *Recorder) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.parents)
}

// Payload returns the op list in its wire envelope.
func (r *Recorder) Payload() Payload {
	return Payload{Version: PayloadVersion, Ops: r.Ops()}
}

// WriteTo writes the payload as indented JSON.
func (r *Recorder) WriteTo(w io.Writer) (int64, error) {
	data, err := json.MarshalIndent(r.Payload(), "", "  ")
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

var _ SceneBuilder = (*Recorder)(nil)
