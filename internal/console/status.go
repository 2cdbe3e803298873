package console

import (
	"fmt"

	"github.com/tomz197/quadstep/internal/physics"
)

// Status is what the hosts report about a running simulation.
type Status struct {
	Tick       uint64
	Bodies     int
	Position   physics.Vec
	Velocity   physics.Vec
	Collisions bool
	Behind     bool // The last frame hit the tick cap
}

// String formats the status as one line.
func (s Status) String() string {
	coll := "on"
	if !s.Collisions {
		coll = "off"
	}
	line := fmt.Sprintf("tick %d  bodies %d  pos %.1f,%.1f  vel %.2f,%.2f  collisions %s",
		s.Tick, s.Bodies, s.Position.X, s.Position.Y, s.Velocity.X, s.Velocity.Y, coll)
	if s.Behind {
		line += "  [behind]"
	}
	return line
}

// Help is the key reference shown under the status line.
const Help = "move: wasd/hjkl/arrows  c: toggle collisions  q: quit"
