// Package spatial partitions axis-aligned rectangles for fast overlap
// queries.
//
// Tree is a depth-bounded quadtree built in bulk from an item list. Items
// that straddle both split axes of a node stay at that node; every other item
// is pushed into each quadrant it touches, so an item may live in two or four
// buckets at once. There is no incremental insertion: callers rebuild when
// the item set changes, except for removal which is done in place.
package spatial

import (
	"slices"

	"github.com/tomz197/quadstep/internal/physics"
)

// DefaultMaxDepth is the number of node levels a tree may have when no
// WithMaxDepth option is given.
const DefaultMaxDepth = 8

// RectFunc returns the bounding rectangle of an item.
type RectFunc[T any] func(T) physics.Rect

// Tree is a static quadtree over items of type T.
// The zero value is an empty tree: queries return nothing.
type Tree[T any] struct {
	root   *node[T]
	rectOf RectFunc[T]
}

type node[T any] struct {
	cx, cy float64
	items  []T

	nw, ne, sw, se *node[T]
}

type options struct {
	maxDepth  int
	bounds    physics.Rect
	hasBounds bool
}

// Option configures tree construction.
type Option func(*options)

// WithMaxDepth limits the tree to d node levels. Values below 1 build a
// single node holding every item.
func WithMaxDepth(d int) Option {
	return func(o *options) { o.maxDepth = d }
}

// WithBounds sets the root bounding rectangle instead of computing the union
// of all item rectangles.
func WithBounds(r physics.Rect) Option {
	return func(o *options) {
		o.bounds = r
		o.hasBounds = true
	}
}

func buildOptions(opts []Option) options {
	o := options{maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// New builds a tree from items. The items slice is copied.
func New[T any](items []T, rectOf RectFunc[T], opts ...Option) *Tree[T] {
	o := buildOptions(opts)
	t := &Tree[T]{rectOf: rectOf}
	if len(items) == 0 {
		return t
	}

	bounds := o.bounds
	if !o.hasBounds {
		bounds = rectOf(items[0])
		for _, it := range items[1:] {
			bounds = bounds.Union(rectOf(it))
		}
	}

	t.root = build(slices.Clone(items), o.maxDepth, bounds, rectOf)
	return t
}

func build[T any](items []T, depth int, bounds physics.Rect, rectOf RectFunc[T]) *node[T] {
	n := &node[T]{}

	depth--
	if depth <= 0 || len(items) == 0 {
		n.items = items
		return n
	}

	c := bounds.Center()
	n.cx, n.cy = c.X, c.Y

	var nwItems, neItems, swItems, seItems []T
	for _, it := range items {
		r := rectOf(it)
		inNW := r.Left() <= n.cx && r.Top() <= n.cy
		inSW := r.Left() <= n.cx && r.Bottom() >= n.cy
		inNE := r.Right() >= n.cx && r.Top() <= n.cy
		inSE := r.Right() >= n.cx && r.Bottom() >= n.cy

		if inNW && inNE && inSW && inSE {
			n.items = append(n.items, it)
			continue
		}
		if inNW {
			nwItems = append(nwItems, it)
		}
		if inNE {
			neItems = append(neItems, it)
		}
		if inSE {
			seItems = append(seItems, it)
		}
		if inSW {
			swItems = append(swItems, it)
		}
	}

	l, t, r, b := bounds.Left(), bounds.Top(), bounds.Right(), bounds.Bottom()
	if len(nwItems) > 0 {
		n.nw = build(nwItems, depth, physics.RectFromEdges(l, t, n.cx, n.cy), rectOf)
	}
	if len(neItems) > 0 {
		n.ne = build(neItems, depth, physics.RectFromEdges(n.cx, t, r, n.cy), rectOf)
	}
	if len(seItems) > 0 {
		n.se = build(seItems, depth, physics.RectFromEdges(n.cx, n.cy, r, b), rectOf)
	}
	if len(swItems) > 0 {
		n.sw = build(swItems, depth, physics.RectFromEdges(l, n.cy, n.cx, b), rectOf)
	}
	return n
}

// Query returns every stored item overlapping r. An item stored in more
// than one quadrant is returned once per quadrant reached.
func (t *Tree[T]) Query(r physics.Rect) []T {
	var hits []T
	t.QueryFunc(r, func(it T) bool {
		hits = append(hits, it)
		return false
	})
	return hits
}

// QueryFunc calls fn for each stored item overlapping r, in traversal order.
// If fn returns true, iteration stops early.
func (t *Tree[T]) QueryFunc(r physics.Rect, fn func(T) bool) {
	if t == nil || t.root == nil {
		return
	}
	t.root.query(r, t.rectOf, fn)
}

func (n *node[T]) query(r physics.Rect, rectOf RectFunc[T], fn func(T) bool) bool {
	for _, it := range n.items {
		if rectOf(it).Overlaps(r) && fn(it) {
			return true
		}
	}

	if n.nw != nil && r.Left() <= n.cx && r.Top() <= n.cy {
		if n.nw.query(r, rectOf, fn) {
			return true
		}
	}
	if n.sw != nil && r.Left() <= n.cx && r.Bottom() >= n.cy {
		if n.sw.query(r, rectOf, fn) {
			return true
		}
	}
	if n.ne != nil && r.Right() >= n.cx && r.Top() <= n.cy {
		if n.ne.query(r, rectOf, fn) {
			return true
		}
	}
	if n.se != nil && r.Right() >= n.cx && r.Bottom() >= n.cy {
		if n.se.query(r, rectOf, fn) {
			return true
		}
	}
	return false
}

// Remove deletes the first item matching at each node reached. A node that
// holds a match stops there; otherwise all four children are searched, since
// the tree does not record which quadrants an item went to. Removing an item
// that is not stored is a no-op. Reports whether anything was removed.
func (t *Tree[T]) Remove(match func(T) bool) bool {
	if t == nil || t.root == nil {
		return false
	}
	return t.root.remove(match)
}

func (n *node[T]) remove(match func(T) bool) bool {
	if i := slices.IndexFunc(n.items, match); i >= 0 {
		n.items = slices.Delete(n.items, i, i+1)
		return true
	}

	removed := false
	for _, child := range [...]*node[T]{n.nw, n.ne, n.sw, n.se} {
		if child != nil && child.remove(match) {
			removed = true
		}
	}
	return removed
}

// Each calls fn for every stored item, duplicates included.
func (t *Tree[T]) Each(fn func(T)) {
	if t == nil || t.root == nil {
		return
	}
	t.root.each(fn)
}

func (n *node[T]) each(fn func(T)) {
	for _, it := range n.items {
		fn(it)
	}
	for _, child := range [...]*node[T]{n.nw, n.ne, n.sw, n.se} {
		if child != nil {
			child.each(fn)
		}
	}
}

// Depth returns the number of node levels, 0 for an empty tree.
func (t *Tree[T]) Depth() int {
	if t == nil || t.root == nil {
		return 0
	}
	return t.root.depth()
}

func (n *node[T]) depth() int {
	deepest := 0
	for _, child := range [...]*node[T]{n.nw, n.ne, n.sw, n.se} {
		if child != nil {
			deepest = max(deepest, child.depth())
		}
	}
	return deepest + 1
}
