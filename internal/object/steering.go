package object

import (
	"sync/atomic"

	"github.com/tomz197/quadstep/internal/physics"
)

// Steering decides a body's movement direction once per frame.
type Steering interface {
	Steer(b *Body, bodies Lookup)
}

// Lookup finds other bodies by identity.
type Lookup interface {
	Body(id ID) (*Body, bool)
}

// Controller steers a body from externally supplied input, such as a
// keyboard. Set may be called from another goroutine.
type Controller struct {
	dir atomic.Pointer[physics.Vec]
}

// Set records the direction applied on the next Steer.
func (c *Controller) Set(dir physics.Vec) {
	c.dir.Store(&dir)
}

// Steer implements Steering.
func (c *Controller) Steer(b *Body, _ Lookup) {
	if d := c.dir.Load(); d != nil {
		b.Direction = *d
	} else {
		b.Direction = physics.Zero
	}
}

// Follower steers a body towards a target while the target is within sight.
type Follower struct {
	Target      ID
	SightRadius float64
}

// Steer implements Steering.
func (f *Follower) Steer(b *Body, bodies Lookup) {
	b.Direction = physics.Zero
	target, ok := bodies.Body(f.Target)
	if !ok || target == b {
		return
	}
	if !physics.PointInCircle(target.Position.X, target.Position.Y, b.Position.X, b.Position.Y, f.SightRadius) {
		return
	}
	b.Direction = target.Position.Sub(b.Position)
}
