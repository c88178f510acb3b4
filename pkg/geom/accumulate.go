package geom

// Accumulated is the coordinate state handed from a node to its children
// during a tree walk: the node's untransformed layout origin, its own scroll
// offset, and the composed transform of every ancestor (including the
// node's own) mapping layout space to document space.
type Accumulated struct {
	Origin    Point
	Scroll    Point
	Transform Matrix
}

// Root returns the accumulator for the document root placed at origin.
func Root(origin Point) Accumulated {
	return Accumulated{Origin: origin, Transform: Identity()}
}

// Layout returns the untransformed layout position of a child placed at
// offset inside the node a describes. The parent's scroll shifts its
// children up/left.
func (a Accumulated) Layout(offset Point) Point {
	return Point{
		X: a.Origin.X + offset.X - a.Scroll.X,
		Y: a.Origin.Y + offset.Y - a.Scroll.Y,
	}
}

// Place computes the AbsoluteRect of a child at offset with the given size.
// Ancestor transforms are applied and the axis-aligned bounds are taken, so
// every node kind gets its rect from the same computation.
func (a Accumulated) Place(offset Point, size Size) AbsoluteRect {
	pos := a.Layout(offset)
	return a.Transform.Bounds(NewRect(pos.X, pos.Y, size.Width, size.Height))
}

// Child returns the accumulator for the children of a child node at offset
// with its own scroll position and its own transform (about ownOrigin,
// relative to the child's top-left).
func (a Accumulated) Child(offset, scroll Point, own Matrix, ownOrigin Point) Accumulated {
	pos := a.Layout(offset)
	t := a.Transform
	if !own.IsIdentity() {
		pivot := Point{X: pos.X + ownOrigin.X, Y: pos.Y + ownOrigin.Y}
		t = t.Multiply(own.About(pivot))
	}
	return Accumulated{Origin: pos, Scroll: scroll, Transform: t}
}
