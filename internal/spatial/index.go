package spatial

import (
	"slices"

	"github.com/tomz197/quadstep/internal/physics"
)

// ID identifies an item within one index.
type ID int

// Item is a rectangle tagged with an identity.
type Item struct {
	ID   ID
	Rect physics.Rect
}

func itemRect(it Item) physics.Rect { return it.Rect }

func matchID(id ID) func(Item) bool {
	return func(it Item) bool { return it.ID == id }
}

// Static indexes immutable rectangles such as terrain. It is built once and
// replaced wholesale when the terrain changes.
type Static struct {
	tree *Tree[Item]
}

// NewStatic builds a static index over items.
func NewStatic(items []Item, opts ...Option) *Static {
	return &Static{tree: New(items, itemRect, opts...)}
}

// Query returns the items overlapping r. Items stored in two quadrants may
// appear twice.
func (s *Static) Query(r physics.Rect) []Item {
	if s == nil {
		return nil
	}
	return s.tree.Query(r)
}

// Any reports whether any item overlaps r, stopping at the first hit.
func (s *Static) Any(r physics.Rect) bool {
	if s == nil {
		return false
	}
	found := false
	s.tree.QueryFunc(r, func(Item) bool {
		found = true
		return true
	})
	return found
}

// Depth returns the number of node levels of the underlying tree.
func (s *Static) Depth() int {
	if s == nil {
		return 0
	}
	return s.tree.Depth()
}

// Dynamic indexes movable rectangles keyed by identity. Queries return each
// identity at most once.
//
// Moving an item does not rebuild the tree: Move removes the stale entry and
// parks the new rectangle in a pending list that queries scan linearly.
// Compact folds the pending list back into a fresh tree.
type Dynamic struct {
	opts    []Option
	tree    *Tree[Item]
	pending []Item
}

// NewDynamic builds a dynamic index over items. Options are kept and reused
// by every rebuild.
func NewDynamic(items []Item, opts ...Option) *Dynamic {
	d := &Dynamic{opts: opts}
	d.Rebuild(items)
	return d
}

// Rebuild replaces the whole index content with items.
func (d *Dynamic) Rebuild(items []Item) {
	d.tree = New(items, itemRect, d.opts...)
	d.pending = d.pending[:0]
}

// Query returns the distinct items overlapping r in traversal order, pending
// moves last.
func (d *Dynamic) Query(r physics.Rect) []Item {
	var hits []Item
	d.QueryFunc(r, func(it Item) bool {
		hits = append(hits, it)
		return false
	})
	return hits
}

// QueryExcept is Query without the item identified by self.
func (d *Dynamic) QueryExcept(r physics.Rect, self ID) []Item {
	var hits []Item
	d.QueryFunc(r, func(it Item) bool {
		if it.ID != self {
			hits = append(hits, it)
		}
		return false
	})
	return hits
}

// QueryFunc calls fn once per distinct item overlapping r. If fn returns
// true, iteration stops early.
func (d *Dynamic) QueryFunc(r physics.Rect, fn func(Item) bool) {
	if d == nil {
		return
	}
	seen := make(map[ID]struct{})
	stopped := false
	d.tree.QueryFunc(r, func(it Item) bool {
		if _, dup := seen[it.ID]; dup {
			return false
		}
		seen[it.ID] = struct{}{}
		stopped = fn(it)
		return stopped
	})
	if stopped {
		return
	}
	for _, it := range d.pending {
		if it.Rect.Overlaps(r) && fn(it) {
			return
		}
	}
}

// Remove deletes the item with the given identity. Unknown identities are
// ignored.
func (d *Dynamic) Remove(id ID) {
	if d == nil {
		return
	}
	d.tree.Remove(matchID(id))
	if i := slices.IndexFunc(d.pending, matchID(id)); i >= 0 {
		d.pending = slices.Delete(d.pending, i, i+1)
	}
}

// RemoveAll deletes every listed identity.
func (d *Dynamic) RemoveAll(ids []ID) {
	for _, id := range ids {
		d.Remove(id)
	}
}

// Move records a new rectangle for id. The item becomes visible to queries
// immediately; Compact moves it back into the tree.
func (d *Dynamic) Move(id ID, r physics.Rect) {
	d.Remove(id)
	d.pending = append(d.pending, Item{ID: id, Rect: r})
}

// Pending returns the number of moved items waiting for Compact.
func (d *Dynamic) Pending() int {
	return len(d.pending)
}

// Compact rebuilds the tree with the pending moves folded in. It does
// nothing when no move is pending.
func (d *Dynamic) Compact() {
	if len(d.pending) == 0 {
		return
	}
	d.Rebuild(d.Items())
}

// Items returns every distinct item, tree content first.
func (d *Dynamic) Items() []Item {
	seen := make(map[ID]struct{})
	var items []Item
	d.tree.Each(func(it Item) {
		if _, dup := seen[it.ID]; dup {
			return
		}
		seen[it.ID] = struct{}{}
		items = append(items, it)
	})
	for _, it := range d.pending {
		if _, dup := seen[it.ID]; !dup {
			seen[it.ID] = struct{}{}
			items = append(items, it)
		}
	}
	return items
}

// Depth returns the number of node levels of the underlying tree.
func (d *Dynamic) Depth() int {
	return d.tree.Depth()
}
