package spatial

import (
	"math"

	"github.com/solarlune/resolv"

	"github.com/tomz197/quadstep/internal/physics"
)

// Cells indexes movable rectangles in a uniform grid of cells backed by a
// resolv.Space. It answers the same questions as Dynamic and is used as an
// independent broad phase.
//
// The grid covers the bounds it was created with; parts of an item outside
// that area are not indexed. Items keep world coordinates, the space works
// relative to the bounds origin.
type Cells struct {
	space    *resolv.Space
	origin   physics.Vec
	width    int
	height   int
	cellSize int
	objects  map[ID]*resolv.Object
	order    []ID // insertion order, keeps query results deterministic
}

// NewCells creates an empty cell index covering bounds. cellSize should be
// close to the typical item size.
func NewCells(bounds physics.Rect, cellSize int) *Cells {
	if cellSize < 1 {
		cellSize = 1
	}
	width := int(math.Ceil(bounds.W))
	height := int(math.Ceil(bounds.H))
	// resolv allocates whole cells only; round the covered area up.
	c := &Cells{
		origin:   physics.Vec{X: bounds.X, Y: bounds.Y},
		width:    (width + cellSize - 1) / cellSize * cellSize,
		height:   (height + cellSize - 1) / cellSize * cellSize,
		cellSize: cellSize,
	}
	c.Rebuild(nil)
	return c
}

// Rebuild replaces the whole index content with items.
func (c *Cells) Rebuild(items []Item) {
	c.space = resolv.NewSpace(c.width, c.height, c.cellSize, c.cellSize)
	c.objects = make(map[ID]*resolv.Object, len(items))
	c.order = c.order[:0]
	for _, it := range items {
		c.add(it)
	}
}

func (c *Cells) add(it Item) {
	obj := resolv.NewObject(it.Rect.X-c.origin.X, it.Rect.Y-c.origin.Y, it.Rect.W, it.Rect.H)
	obj.Data = it
	c.space.Add(obj)
	c.objects[it.ID] = obj
	c.order = append(c.order, it.ID)
}

// QueryFunc calls fn once per distinct item overlapping r. If fn returns
// true, iteration stops early.
func (c *Cells) QueryFunc(r physics.Rect, fn func(Item) bool) {
	if len(c.objects) == 0 {
		return
	}

	// One extra cell on each side so that items registered up to, but not
	// including, the cell holding their far edge are still reached.
	x0, y0 := c.cellAt(r.Left(), r.Top())
	x1, y1 := c.cellAt(r.Right(), r.Bottom())

	candidates := make(map[ID]struct{})
	for cy := y0 - 1; cy <= y1+1; cy++ {
		for cx := x0 - 1; cx <= x1+1; cx++ {
			cell := c.space.Cell(cx, cy)
			if cell == nil {
				continue
			}
			for _, obj := range cell.Objects {
				if it, ok := obj.Data.(Item); ok {
					candidates[it.ID] = struct{}{}
				}
			}
		}
	}

	for _, id := range c.order {
		if _, ok := candidates[id]; !ok {
			continue
		}
		it := c.objects[id].Data.(Item)
		if it.Rect.Overlaps(r) && fn(it) {
			return
		}
	}
}

// Query returns the distinct items overlapping r in insertion order.
func (c *Cells) Query(r physics.Rect) []Item {
	var hits []Item
	c.QueryFunc(r, func(it Item) bool {
		hits = append(hits, it)
		return false
	})
	return hits
}

// Remove deletes the item with the given identity. Unknown identities are
// ignored.
func (c *Cells) Remove(id ID) {
	obj, ok := c.objects[id]
	if !ok {
		return
	}
	c.space.Remove(obj)
	delete(c.objects, id)
	for i, oid := range c.order {
		if oid == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// Move updates the rectangle of id, adding it if unknown.
func (c *Cells) Move(id ID, r physics.Rect) {
	obj, ok := c.objects[id]
	if !ok {
		c.add(Item{ID: id, Rect: r})
		return
	}
	obj.X, obj.Y, obj.W, obj.H = r.X-c.origin.X, r.Y-c.origin.Y, r.W, r.H
	obj.Data = Item{ID: id, Rect: r}
	obj.Update()
}

// Compact is a no-op: cells are updated in place by Move.
func (c *Cells) Compact() {}

// cellAt returns the space cell holding a world position.
func (c *Cells) cellAt(x, y float64) (int, int) {
	size := float64(c.cellSize)
	return int(math.Floor((x - c.origin.X) / size)), int(math.Floor((y - c.origin.Y) / size))
}
