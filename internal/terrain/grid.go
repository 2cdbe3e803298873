// Package terrain loads layered tile grids from plain text and reduces them
// to the information collision needs: which cells block movement.
package terrain

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tomz197/quadstep/internal/physics"
)

// NoTile marks a cell with no tile on a layer.
const NoTile = -1

var (
	ErrNoLayers      = errors.New("terrain: no layers")
	ErrEmptyLayer    = errors.New("terrain: empty layer")
	ErrRaggedRow     = errors.New("terrain: inconsistent row length")
	ErrBadCode       = errors.New("terrain: invalid tile code")
	ErrLayerMismatch = errors.New("terrain: layer size mismatch")
	ErrUnknownCode   = errors.New("terrain: tile code missing from tileset")
)

// Layer is one rendering layer of tile codes, indexed [row][col].
type Layer struct {
	Name  string
	Cells [][]int
}

// Grid is a stack of equally sized layers.
type Grid struct {
	Layers   []Layer
	Cols     int
	Rows     int
	TileSize float64
}

// Parse reads one layer: one row per line, codes separated by single
// spaces. Trailing blank lines are ignored.
func Parse(r io.Reader) ([][]int, error) {
	var rows [][]int
	blank := 0

	sc := bufio.NewScanner(r)
	for line := 1; sc.Scan(); line++ {
		text := strings.TrimRight(sc.Text(), "\r")
		if text == "" {
			blank++
			continue
		}
		if blank > 0 {
			return nil, fmt.Errorf("line %d: %w: blank row", line-1, ErrRaggedRow)
		}

		fields := strings.Split(text, " ")
		row := make([]int, len(fields))
		for i, f := range fields {
			code, err := strconv.Atoi(f)
			if err != nil || code < NoTile {
				return nil, fmt.Errorf("line %d col %d: %w: %q", line, i+1, ErrBadCode, f)
			}
			row[i] = code
		}
		if len(rows) > 0 && len(row) != len(rows[0]) {
			return nil, fmt.Errorf("line %d: %w: got %d codes, want %d", line, ErrRaggedRow, len(row), len(rows[0]))
		}
		rows = append(rows, row)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrEmptyLayer
	}
	return rows, nil
}

// NewGrid validates that all layers share one size. Grid dimensions come
// from the last layer.
func NewGrid(tileSize float64, layers ...Layer) (*Grid, error) {
	if len(layers) == 0 {
		return nil, ErrNoLayers
	}
	if tileSize <= 0 {
		return nil, fmt.Errorf("terrain: tile size must be positive, got %v", tileSize)
	}

	last := layers[len(layers)-1]
	if len(last.Cells) == 0 {
		return nil, fmt.Errorf("layer %q: %w", last.Name, ErrEmptyLayer)
	}
	g := &Grid{
		Layers:   layers,
		Rows:     len(last.Cells),
		Cols:     len(last.Cells[0]),
		TileSize: tileSize,
	}

	for _, l := range layers {
		if len(l.Cells) != g.Rows {
			return nil, fmt.Errorf("layer %q: %w: %d rows, want %d", l.Name, ErrLayerMismatch, len(l.Cells), g.Rows)
		}
		for _, row := range l.Cells {
			if len(row) != g.Cols {
				return nil, fmt.Errorf("layer %q: %w: %d cols, want %d", l.Name, ErrLayerMismatch, len(row), g.Cols)
			}
		}
	}
	return g, nil
}

// LayerPath returns the file holding one layer of a map: dir/name_layer.txt.
func LayerPath(dir, name, layer string) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%s.txt", name, layer))
}

// LoadGrid reads every named layer of a map from dir.
func LoadGrid(dir, name string, layerNames []string, tileSize float64) (*Grid, error) {
	layers := make([]Layer, 0, len(layerNames))
	for _, ln := range layerNames {
		cells, err := loadLayer(LayerPath(dir, name, ln))
		if err != nil {
			return nil, fmt.Errorf("load layer %q: %w", ln, err)
		}
		layers = append(layers, Layer{Name: ln, Cells: cells})
	}
	return NewGrid(tileSize, layers...)
}

func loadLayer(path string) ([][]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// WorldSize returns the grid size in pixels.
func (g *Grid) WorldSize() (w, h float64) {
	return float64(g.Cols) * g.TileSize, float64(g.Rows) * g.TileSize
}

// Bounds returns the world rectangle covered by the grid.
func (g *Grid) Bounds() physics.Rect {
	w, h := g.WorldSize()
	return physics.Rect{W: w, H: h}
}

// CellAt converts a world position to grid coordinates. ok is false when the
// position falls outside the grid.
func (g *Grid) CellAt(p physics.Vec) (col, row int, ok bool) {
	col = int(math.Floor(p.X / g.TileSize))
	row = int(math.Floor(p.Y / g.TileSize))
	ok = col >= 0 && col < g.Cols && row >= 0 && row < g.Rows
	return col, row, ok
}

// CellRect returns the world rectangle of a cell.
func (g *Grid) CellRect(col, row int) physics.Rect {
	return physics.Rect{
		X: float64(col) * g.TileSize,
		Y: float64(row) * g.TileSize,
		W: g.TileSize,
		H: g.TileSize,
	}
}
