package server

import (
	"github.com/tomz197/quadstep/internal/object"
	"github.com/tomz197/quadstep/internal/physics"
)

// BodySnapshot is the published state of one body.
type BodySnapshot struct {
	ID       object.ID
	Position physics.Vec
	Velocity physics.Vec
	Hitbox   physics.Rect
}

// Snapshot is an immutable view of the world after a frame. Readers must not
// modify it.
type Snapshot struct {
	Tick       uint64
	Bodies     []BodySnapshot // Spawn order
	Players    int
	Bounds     physics.Rect
	Collisions bool
	Behind     bool // The frame ran the maximum number of ticks
}

// Body returns the state of one body.
func (s *Snapshot) Body(id object.ID) (BodySnapshot, bool) {
	for _, b := range s.Bodies {
		if b.ID == id {
			return b, true
		}
	}
	return BodySnapshot{}, false
}

func snapshotBodies(bodies []*object.Body) []BodySnapshot {
	buf := make([]BodySnapshot, 0, len(bodies))
	for _, b := range bodies {
		buf = append(buf, BodySnapshot{
			ID:       b.ID,
			Position: b.Position,
			Velocity: b.Velocity,
			Hitbox:   b.Hitbox.Rect,
		})
	}
	return buf
}
