// Package loop advances bodies through a World on a fixed simulation step,
// independent of how often the host calls in, rejecting moves that collide.
//
// A host frame looks like:
//
//	world.Steer()
//	stepper.Advance(elapsed)
//
// Nothing in this package blocks, logs or performs I/O.
package loop

import (
	"time"

	"github.com/tomz197/quadstep/internal/config"
	"github.com/tomz197/quadstep/internal/object"
	"github.com/tomz197/quadstep/internal/physics"
)

// Stepper converts elapsed host time into fixed ticks.
type Stepper struct {
	world      *World
	oracle     Oracle
	boundary   time.Duration // end of the last tick run
	tick       time.Duration
	maxTicks   int
	collisions bool
	ticks      uint64
	onTick     func(tick uint64)
}

// NewStepper creates a stepper whose first tick ends one tick after start.
// A nil oracle means IndexOracle over world with cfg.StaticMargin.
func NewStepper(cfg config.Physics, world *World, oracle Oracle, start time.Duration) *Stepper {
	if oracle == nil {
		oracle = IndexOracle{World: world, Margin: cfg.StaticMargin}
	}
	return &Stepper{
		world:      world,
		oracle:     oracle,
		boundary:   start,
		tick:       cfg.TickDuration(),
		maxTicks:   cfg.MaxTicksPerCall,
		collisions: cfg.Collisions,
	}
}

// Advance runs every tick whose start lies before now, at most
// MaxTicksPerCall of them, and returns how many ran. Ticks left over are
// run by later calls: the simulation falls behind rather than skipping.
func (s *Stepper) Advance(now time.Duration) int {
	n := 0
	for now > s.boundary && n < s.maxTicks {
		for _, b := range s.world.Bodies() {
			s.step(b)
		}
		s.world.Dynamic().Compact()
		s.boundary += s.tick
		s.ticks++
		n++
		if s.onTick != nil {
			s.onTick(s.ticks)
		}
	}
	return n
}

func (s *Stepper) step(b *object.Body) {
	if !b.Direction.IsZero() {
		target := b.Direction.Normalize().Scale(b.Speed())
		b.Velocity = b.Velocity.Lerp(target, b.Acceleration)
	} else {
		b.Velocity = b.Velocity.Lerp(physics.Zero, b.Friction)
	}

	candidate := s.clamp(b, b.Position.Add(b.Velocity))

	if s.collisions && s.oracle.Blocked(Probe{Self: b.ID, Position: candidate, Hitbox: b.Hitbox.At(candidate)}) {
		b.Velocity = physics.Zero
		candidate = b.Position
	}

	if candidate != b.Position {
		b.MoveTo(candidate)
		s.world.Dynamic().Move(b.ID, b.Hitbox.Rect)
	}
}

// clamp keeps the body's center at least half a hitbox inside the bounds.
func (s *Stepper) clamp(b *object.Body, p physics.Vec) physics.Vec {
	bounds := s.world.Bounds()
	hw, hh := b.Hitbox.HalfSize()
	return physics.Vec{
		X: physics.Clamp(p.X, bounds.Left()+hw, bounds.Right()-hw),
		Y: physics.Clamp(p.Y, bounds.Top()+hh, bounds.Bottom()-hh),
	}
}

// OnTick sets a function called after every tick with the tick count. A
// nil fn clears it.
func (s *Stepper) OnTick(fn func(tick uint64)) { s.onTick = fn }

// SetCollisions turns collision checks on or off. With checks off bodies
// only stay inside the bounds.
func (s *Stepper) SetCollisions(on bool) { s.collisions = on }

// Collisions reports whether collision checks are on.
func (s *Stepper) Collisions() bool { return s.collisions }

// Ticks returns the number of ticks run since creation.
func (s *Stepper) Ticks() uint64 { return s.ticks }

// Boundary returns the end time of the last tick run.
func (s *Stepper) Boundary() time.Duration { return s.boundary }

// TickDuration returns the fixed step length.
func (s *Stepper) TickDuration() time.Duration { return s.tick }
