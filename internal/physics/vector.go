package physics

// Vec is a 2D vector in world pixels.
type Vec struct {
	X, Y float64
}

// Zero is the zero-length vector.
var Zero = Vec{}

func (v Vec) Add(o Vec) Vec { return Vec{v.X + o.X, v.Y + o.Y} }

func (v Vec) Sub(o Vec) Vec { return Vec{v.X - o.X, v.Y - o.Y} }

func (v Vec) Scale(s float64) Vec { return Vec{v.X * s, v.Y * s} }

// Len returns the vector length.
func (v Vec) Len() float64 {
	return Distance(0, 0, v.X, v.Y)
}

// IsZero reports whether both components are exactly zero.
func (v Vec) IsZero() bool {
	return v.X == 0 && v.Y == 0
}

// Normalize returns the unit vector with the same direction.
// The zero vector normalizes to itself.
func (v Vec) Normalize() Vec {
	l := v.Len()
	if l == 0 {
		return Zero
	}
	return Vec{v.X / l, v.Y / l}
}

// Lerp interpolates component-wise towards o by t.
func (v Vec) Lerp(o Vec, t float64) Vec {
	return Vec{Lerp(v.X, o.X, t), Lerp(v.Y, o.Y, t)}
}
