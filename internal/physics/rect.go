package physics

import "math"

// Rect is an axis-aligned rectangle in screen coordinates: Y grows
// downward, so Top < Bottom for a rectangle with positive height.
type Rect struct {
	X, Y, W, H float64
}

// RectFromCenter builds a w x h rectangle centered on c.
func RectFromCenter(c Vec, w, h float64) Rect {
	return Rect{X: c.X - w/2, Y: c.Y - h/2, W: w, H: h}
}

// RectFromEdges builds a rectangle from its four edges.
func RectFromEdges(left, top, right, bottom float64) Rect {
	return Rect{X: left, Y: top, W: right - left, H: bottom - top}
}

func (r Rect) Left() float64   { return r.X }
func (r Rect) Top() float64    { return r.Y }
func (r Rect) Right() float64  { return r.X + r.W }
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Center returns the rectangle midpoint.
func (r Rect) Center() Vec {
	return Vec{r.X + r.W/2, r.Y + r.H/2}
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Overlaps reports whether a and b share interior area. Touching edges do
// not overlap. A degenerate rectangle overlaps only a rectangle equal to it.
func (r Rect) Overlaps(o Rect) bool {
	if r.Empty() || o.Empty() {
		return r == o
	}
	return r.X < o.Right() && o.X < r.Right() &&
		r.Y < o.Bottom() && o.Y < r.Bottom()
}

// Contains reports whether o lies entirely inside r.
func (r Rect) Contains(o Rect) bool {
	return r.X <= o.X && r.Y <= o.Y && r.Right() >= o.Right() && r.Bottom() >= o.Bottom()
}

// Union returns the smallest rectangle containing both.
func (r Rect) Union(o Rect) Rect {
	return RectFromEdges(
		math.Min(r.Left(), o.Left()),
		math.Min(r.Top(), o.Top()),
		math.Max(r.Right(), o.Right()),
		math.Max(r.Bottom(), o.Bottom()),
	)
}

// Inflate grows the rectangle by dw x dh around its center. Negative values
// shrink it; the size never goes below zero.
func (r Rect) Inflate(dw, dh float64) Rect {
	w := math.Max(0, r.W+dw)
	h := math.Max(0, r.H+dh)
	return RectFromCenter(r.Center(), w, h)
}

// WithCenter moves the rectangle, keeping its size, so its center is c.
func (r Rect) WithCenter(c Vec) Rect {
	return RectFromCenter(c, r.W, r.H)
}

// Offset translates the rectangle by v.
func (r Rect) Offset(v Vec) Rect {
	return Rect{X: r.X + v.X, Y: r.Y + v.Y, W: r.W, H: r.H}
}
