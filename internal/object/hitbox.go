package object

import "github.com/tomz197/quadstep/internal/physics"

// HitboxShape describes how a hitbox is derived from a reference rectangle.
type HitboxShape struct {
	OffsetX, OffsetY float64 // Pixels added to the reference center
	ScaleX, ScaleY   float64 // Inflation in percent of the reference size; negative shrinks
}

// Hitbox is the rectangle used for collisions.
type Hitbox struct {
	OffsetX, OffsetY float64
	Rect             physics.Rect
}

// NewHitbox inflates reference by the shape percentages and shifts its
// center by the shape offset.
func NewHitbox(reference physics.Rect, shape HitboxShape) Hitbox {
	r := reference.Inflate(reference.W*shape.ScaleX/100, reference.H*shape.ScaleY/100)
	return Hitbox{
		OffsetX: shape.OffsetX,
		OffsetY: shape.OffsetY,
		Rect:    r.Offset(physics.Vec{X: shape.OffsetX, Y: shape.OffsetY}),
	}
}

// Offset returns the hitbox center relative to the body position.
func (h Hitbox) Offset() physics.Vec {
	return physics.Vec{X: h.OffsetX, Y: h.OffsetY}
}

// At returns the hitbox rectangle for a body at position, without moving it.
func (h Hitbox) At(position physics.Vec) physics.Rect {
	return h.Rect.WithCenter(position.Add(h.Offset()))
}

// MoveTo translates the hitbox to follow a body at position.
func (h *Hitbox) MoveTo(position physics.Vec) {
	h.Rect = h.At(position)
}

// HalfSize returns half the hitbox width and height.
func (h Hitbox) HalfSize() (float64, float64) {
	return h.Rect.W / 2, h.Rect.H / 2
}
