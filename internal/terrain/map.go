package terrain

import (
	"fmt"
	"math"

	"github.com/tomz197/quadstep/internal/physics"
	"github.com/tomz197/quadstep/internal/spatial"
)

// Map is a grid paired with the tileset describing its codes. It answers
// per-cell walkability and produces the blocking rectangles for the static
// index.
type Map struct {
	grid  *Grid
	tiles Tileset
}

// NewMap checks that every code used by the grid is known to the tileset.
func NewMap(g *Grid, tiles Tileset) (*Map, error) {
	for _, l := range g.Layers {
		for r, row := range l.Cells {
			for c, code := range row {
				if code == NoTile {
					continue
				}
				if _, ok := tiles[code]; !ok {
					return nil, fmt.Errorf("layer %q cell (%d,%d): %w: %d", l.Name, c, r, ErrUnknownCode, code)
				}
			}
		}
	}
	return &Map{grid: g, tiles: tiles}, nil
}

// Grid returns the underlying grid.
func (m *Map) Grid() *Grid { return m.grid }

// Bounds returns the world rectangle covered by the map.
func (m *Map) Bounds() physics.Rect { return m.grid.Bounds() }

// CellBlocked reports whether a cell cannot be stood on: some layer holds a
// non-walkable tile there, or no layer holds any tile (no floor). Cells
// outside the grid are blocked.
func (m *Map) CellBlocked(col, row int) bool {
	g := m.grid
	if col < 0 || col >= g.Cols || row < 0 || row >= g.Rows {
		return true
	}

	empty := 0
	for _, l := range g.Layers {
		code := l.Cells[row][col]
		if code == NoTile {
			empty++
			continue
		}
		if !m.tiles[code].Walkable {
			return true
		}
	}
	return empty == len(g.Layers)
}

// Blocked reports whether the cell under a world position is blocked.
func (m *Map) Blocked(p physics.Vec) bool {
	col, row, ok := m.grid.CellAt(p)
	if !ok {
		return true
	}
	return m.CellBlocked(col, row)
}

// AreaBlocked reports whether any cell sharing interior area with r is
// blocked. Cells outside the grid count as blocked. An empty r falls back
// to the cell under its center.
func (m *Map) AreaBlocked(r physics.Rect) bool {
	if r.Empty() {
		return m.Blocked(r.Center())
	}
	ts := m.grid.TileSize
	c0 := int(math.Floor(r.Left() / ts))
	c1 := int(math.Ceil(r.Right()/ts)) - 1
	r0 := int(math.Floor(r.Top() / ts))
	r1 := int(math.Ceil(r.Bottom()/ts)) - 1
	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			if m.CellBlocked(col, row) {
				return true
			}
		}
	}
	return false
}

// CellID returns the identity used for a cell's blocking rectangle.
func (m *Map) CellID(col, row int) spatial.ID {
	return spatial.ID(row*m.grid.Cols + col)
}

// BlockingItems returns one tile-sized rectangle per blocked cell, in row
// major order.
func (m *Map) BlockingItems() []spatial.Item {
	var items []spatial.Item
	for row := 0; row < m.grid.Rows; row++ {
		for col := 0; col < m.grid.Cols; col++ {
			if m.CellBlocked(col, row) {
				items = append(items, spatial.Item{
					ID:   m.CellID(col, row),
					Rect: m.grid.CellRect(col, row),
				})
			}
		}
	}
	return items
}

// Load reads the layers of a map and its tileset.
func Load(dir, name string, layers []string, tilesetPath string, tileSize float64) (*Map, error) {
	g, err := LoadGrid(dir, name, layers, tileSize)
	if err != nil {
		return nil, err
	}
	ts, err := LoadTileset(tilesetPath)
	if err != nil {
		return nil, fmt.Errorf("load tileset: %w", err)
	}
	return NewMap(g, ts)
}
