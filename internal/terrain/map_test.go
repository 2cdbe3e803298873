package terrain

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tomz197/quadstep/internal/physics"
)

var demoTiles = Tileset{
	0: {Walkable: false}, // water
	1: {Walkable: true},  // floor
	2: {Walkable: false}, // wall
	3: {Walkable: true},  // cloud
}

func newTestMap(t *testing.T, layers ...Layer) *Map {
	t.Helper()
	g, err := NewGrid(48, layers...)
	if err != nil {
		t.Fatal(err)
	}
	m, err := NewMap(g, demoTiles)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestParseTileset(t *testing.T) {
	ts, err := ParseTileset(strings.NewReader("# code walkable\n0 false\n1 true\n\n2 false\n"))
	if err != nil {
		t.Fatalf("ParseTileset: %v", err)
	}
	if len(ts) != 3 || !ts[1].Walkable || ts[2].Walkable {
		t.Errorf("unexpected tileset %+v", ts)
	}

	if _, err := ParseTileset(strings.NewReader("1\n")); err == nil {
		t.Error("expected an error for a line without a flag")
	}
	if _, err := ParseTileset(strings.NewReader("1 maybe\n")); err == nil {
		t.Error("expected an error for a bad flag")
	}
}

func TestNewMapUnknownCode(t *testing.T) {
	g, err := NewGrid(48, Layer{Name: "ground", Cells: [][]int{{1, 7}}})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewMap(g, demoTiles); !errors.Is(err, ErrUnknownCode) {
		t.Errorf("error = %v, want ErrUnknownCode", err)
	}
}

func TestCellBlocked(t *testing.T) {
	m := newTestMap(t,
		Layer{Name: "ground", Cells: [][]int{{1, 1, -1, 0}}},
		Layer{Name: "main", Cells: [][]int{{-1, 2, -1, -1}}},
		Layer{Name: "ceiling", Cells: [][]int{{3, -1, -1, -1}}},
	)
	tests := []struct {
		col  int
		want bool
	}{
		{0, false}, // floor under a cloud
		{1, true},  // wall on the main layer
		{2, true},  // no tile on any layer
		{3, true},  // water
		{4, true},  // outside
	}
	for _, tt := range tests {
		if got := m.CellBlocked(tt.col, 0); got != tt.want {
			t.Errorf("CellBlocked(%d,0) = %v, want %v", tt.col, got, tt.want)
		}
	}
}

func TestBlockingItems(t *testing.T) {
	m := newTestMap(t, Layer{Name: "ground", Cells: [][]int{
		{1, 1, 1},
		{1, 2, 1},
	}})
	items := m.BlockingItems()
	if len(items) != 1 {
		t.Fatalf("got %d blocking items, want 1", len(items))
	}
	if items[0].ID != m.CellID(1, 1) {
		t.Errorf("ID = %d, want %d", items[0].ID, m.CellID(1, 1))
	}
	if items[0].Rect != (physics.Rect{X: 48, Y: 48, W: 48, H: 48}) {
		t.Errorf("Rect = %+v", items[0].Rect)
	}
}

func TestMapBlockedAgreesWithBlockingItems(t *testing.T) {
	m := newTestMap(t,
		Layer{Name: "ground", Cells: [][]int{{1, 1, 0}, {1, -1, 1}, {1, 1, 1}}},
		Layer{Name: "main", Cells: [][]int{{-1, 2, -1}, {-1, -1, -1}, {-1, -1, 2}}},
	)
	items := m.BlockingItems()

	for y := 4.0; y < 144; y += 8 {
		for x := 4.0; x < 144; x += 8 {
			p := physics.Vec{X: x, Y: y}
			inRect := false
			for _, it := range items {
				if it.Rect.Overlaps(physics.RectFromCenter(p, 1, 1)) {
					inRect = true
				}
			}
			if got := m.Blocked(p); got != inRect {
				t.Fatalf("at %+v grid says %v, rectangles say %v", p, got, inRect)
			}
		}
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"demo_ground.txt": "1 1\n1 1\n",
		"demo_main.txt":   "-1 2\n-1 -1\n",
		"tiles.txt":       "1 true\n2 false\n",
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	m, err := Load(dir, "demo", []string{"ground", "main"}, filepath.Join(dir, "tiles.txt"), 48)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !m.Blocked(physics.Vec{X: 60, Y: 10}) {
		t.Error("expected the wall cell to block")
	}
	if m.Blocked(physics.Vec{X: 10, Y: 60}) {
		t.Error("expected the floor cell to be free")
	}
	if b := m.Bounds(); b.W != 96 || b.H != 96 {
		t.Errorf("Bounds = %+v", b)
	}
}

func TestAreaBlocked(t *testing.T) {
	m := newTestMap(t, Layer{Name: "ground", Cells: [][]int{
		{1, 1, 1},
		{1, 2, 1},
		{1, 1, 1},
	}})
	tests := []struct {
		name string
		r    physics.Rect
		want bool
	}{
		{"inside floor cell", physics.Rect{X: 4, Y: 4, W: 32, H: 32}, false},
		{"touching wall edge", physics.Rect{X: 16, Y: 16, W: 32, H: 32}, false},
		{"straddling into wall", physics.Rect{X: 20, Y: 20, W: 32, H: 32}, true},
		{"wall corner only", physics.Rect{X: 95, Y: 95, W: 10, H: 10}, true},
		{"spans floor row", physics.Rect{X: 0, Y: 100, W: 144, H: 40}, false},
		{"past right edge", physics.Rect{X: 130, Y: 4, W: 32, H: 32}, true},
		{"empty on floor", physics.Rect{X: 10, Y: 10}, false},
		{"empty on wall", physics.Rect{X: 72, Y: 72}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.AreaBlocked(tt.r); got != tt.want {
				t.Errorf("AreaBlocked(%+v) = %v, want %v", tt.r, got, tt.want)
			}
		})
	}
}
