package physics

import "testing"

func TestRectOverlaps(t *testing.T) {
	base := Rect{X: 0, Y: 0, W: 10, H: 10}
	tests := []struct {
		name  string
		other Rect
		want  bool
	}{
		{"inside", Rect{X: 2, Y: 2, W: 2, H: 2}, true},
		{"partial", Rect{X: 5, Y: 5, W: 10, H: 10}, true},
		{"touching right edge", Rect{X: 10, Y: 0, W: 5, H: 10}, false},
		{"touching bottom edge", Rect{X: 0, Y: 10, W: 10, H: 5}, false},
		{"far away", Rect{X: 100, Y: 100, W: 1, H: 1}, false},
		{"degenerate inside", Rect{X: 5, Y: 5, W: 0, H: 3}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base.Overlaps(tt.other); got != tt.want {
				t.Errorf("Overlaps(%v) = %v, want %v", tt.other, got, tt.want)
			}
			if got := tt.other.Overlaps(base); got != tt.want {
				t.Errorf("reverse Overlaps(%v) = %v, want %v", tt.other, got, tt.want)
			}
		})
	}
}

func TestDegenerateRectOverlapsItself(t *testing.T) {
	r := Rect{X: 3, Y: 4, W: 0, H: 0}
	if !r.Overlaps(r) {
		t.Error("degenerate rect should overlap an equal rect")
	}
	if r.Overlaps(Rect{X: 3, Y: 4, W: 0, H: 1}) {
		t.Error("degenerate rect should not overlap a different rect")
	}
}

func TestRectUnionAndEdges(t *testing.T) {
	a := Rect{X: 0, Y: 0, W: 10, H: 10}
	b := Rect{X: 20, Y: -5, W: 5, H: 5}
	u := a.Union(b)
	if u.Left() != 0 || u.Top() != -5 || u.Right() != 25 || u.Bottom() != 10 {
		t.Errorf("unexpected union %+v", u)
	}
}

func TestRectInflate(t *testing.T) {
	r := Rect{X: 0, Y: 0, W: 32, H: 32}
	shrunk := r.Inflate(-16, -16)
	if shrunk != (Rect{X: 8, Y: 8, W: 16, H: 16}) {
		t.Errorf("Inflate(-16,-16) = %+v", shrunk)
	}
	if got := r.Inflate(-100, -100); got.W != 0 || got.H != 0 {
		t.Errorf("over-shrinking should clamp to zero size, got %+v", got)
	}
}

func TestRectWithCenter(t *testing.T) {
	r := Rect{X: 0, Y: 0, W: 32, H: 16}.WithCenter(Vec{100, 50})
	if r != (Rect{X: 84, Y: 42, W: 32, H: 16}) {
		t.Errorf("WithCenter = %+v", r)
	}
	if c := r.Center(); c != (Vec{100, 50}) {
		t.Errorf("Center = %+v", c)
	}
}
