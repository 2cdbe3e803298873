package object

import (
	"github.com/tomz197/quadstep/internal/physics"
	"github.com/tomz197/quadstep/internal/spatial"
)

// ID identifies a body. It doubles as the body's identity in the dynamic
// spatial index.
type ID = spatial.ID

// Tuning holds the movement parameters of a body.
type Tuning struct {
	Speed        float64 // Base top speed, pixels per tick
	SpeedFactor  float64 // Multiplier applied to Speed
	MaxSpeed     float64 // Upper bound for Speed
	Acceleration float64 // Lerp factor towards the target velocity, (0,1]
	Friction     float64 // Lerp factor towards rest, (0,1]
}

// Body is the physical state of a moving entity.
type Body struct {
	ID        ID
	Position  physics.Vec // Center of the sprite, world pixels
	Velocity  physics.Vec // Pixels per tick
	Direction physics.Vec // Desired movement; zero means coast to a stop

	Acceleration float64
	Friction     float64
	SpeedFactor  float64
	MaxSpeed     float64
	speed        float64

	Hitbox Hitbox
	Sprite physics.Rect // Visual rectangle, follows Position

	Steering Steering // Optional; sets Direction once per frame
}

// NewBody creates a body centered on position. The hitbox is derived from
// the sprite rectangle once, here.
func NewBody(id ID, position physics.Vec, sprite physics.Rect, shape HitboxShape, tuning Tuning) *Body {
	sprite = sprite.WithCenter(position)
	b := &Body{
		ID:           id,
		Position:     position,
		Acceleration: tuning.Acceleration,
		Friction:     tuning.Friction,
		SpeedFactor:  tuning.SpeedFactor,
		MaxSpeed:     tuning.MaxSpeed,
		Hitbox:       NewHitbox(sprite, shape),
		Sprite:       sprite,
	}
	if b.SpeedFactor == 0 {
		b.SpeedFactor = 1
	}
	b.SetSpeed(tuning.Speed)
	return b
}

// Speed returns the effective top speed.
func (b *Body) Speed() float64 {
	return b.speed * b.SpeedFactor
}

// SetSpeed sets the base top speed, clamped to [0, MaxSpeed]. A zero
// MaxSpeed leaves the upper bound open.
func (b *Body) SetSpeed(v float64) {
	if v < 0 {
		v = 0
	}
	if b.MaxSpeed > 0 && v > b.MaxSpeed {
		v = b.MaxSpeed
	}
	b.speed = v
}

// MoveTo places the body at position and drags the hitbox and sprite along.
func (b *Body) MoveTo(position physics.Vec) {
	b.Position = position
	b.Hitbox.MoveTo(position)
	b.Sprite = b.Sprite.WithCenter(position)
}

// Item returns the body's entry for the dynamic spatial index.
func (b *Body) Item() spatial.Item {
	return spatial.Item{ID: b.ID, Rect: b.Hitbox.Rect}
}
