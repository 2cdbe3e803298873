package loop

import (
	"github.com/tomz197/quadstep/internal/object"
	"github.com/tomz197/quadstep/internal/physics"
	"github.com/tomz197/quadstep/internal/spatial"
	"github.com/tomz197/quadstep/internal/terrain"
)

// Probe is a proposed body placement.
type Probe struct {
	Self     object.ID
	Position physics.Vec  // Candidate body position
	Hitbox   physics.Rect // Hitbox at Position
}

// Oracle decides whether a proposed placement collides.
type Oracle interface {
	Blocked(p Probe) bool
}

// IndexOracle checks the terrain index, then the other bodies. The hitbox
// is shrunk by Margin on every side before the terrain query.
type IndexOracle struct {
	World  *World
	Margin float64
}

// Blocked implements Oracle.
func (o IndexOracle) Blocked(p Probe) bool {
	shrunk := p.Hitbox.Inflate(-2*o.Margin, -2*o.Margin)
	if o.World.Static().Any(shrunk) {
		return true
	}
	return BodiesOracle{World: o.World}.Blocked(p)
}

// BodiesOracle checks the other bodies only.
type BodiesOracle struct {
	World *World
}

// Blocked implements Oracle.
func (o BodiesOracle) Blocked(p Probe) bool {
	hit := false
	o.World.Dynamic().QueryFunc(p.Hitbox, func(it spatial.Item) bool {
		hit = it.ID != p.Self
		return hit
	})
	return hit
}

// GridOracle checks the walkable flag of every cell covered by the hitbox,
// shrunk by Margin on every side. A hitbox that shrinks to nothing checks
// the cell under the position instead. It ignores bodies.
type GridOracle struct {
	Map    *terrain.Map
	Margin float64
}

// Blocked implements Oracle.
func (o GridOracle) Blocked(p Probe) bool {
	shrunk := p.Hitbox.Inflate(-2*o.Margin, -2*o.Margin)
	if shrunk.Empty() {
		return o.Map.Blocked(p.Position)
	}
	return o.Map.AreaBlocked(shrunk)
}

// Oracles combines oracles; the first one reporting a collision wins.
type Oracles []Oracle

// Blocked implements Oracle.
func (os Oracles) Blocked(p Probe) bool {
	for _, o := range os {
		if o.Blocked(p) {
			return true
		}
	}
	return false
}

var (
	_ Oracle = IndexOracle{}
	_ Oracle = BodiesOracle{}
	_ Oracle = GridOracle{}
	_ Oracle = Oracles(nil)
)
