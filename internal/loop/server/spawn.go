package server

import (
	"github.com/tomz197/quadstep/internal/config"
	"github.com/tomz197/quadstep/internal/loop"
	"github.com/tomz197/quadstep/internal/object"
	"github.com/tomz197/quadstep/internal/physics"
)

// bodySprite is the visual rectangle of every host-spawned body.
var bodySprite = physics.Rect{W: config.SpriteSize, H: config.SpriteSize}

// bodyShape derives the hitbox of host-spawned bodies from their sprite.
var bodyShape = object.HitboxShape{
	OffsetY: config.HitboxOffsetY,
	ScaleX:  config.HitboxScale,
	ScaleY:  config.HitboxScale,
}

// findSpawn returns the first free position on a sprite-sized lattice over
// the world bounds, scanning rows from the top-left. ok is false when the
// world is full.
func findSpawn(w *loop.World, oracle loop.Oracle) (physics.Vec, bool) {
	probe := object.NewHitbox(bodySprite, bodyShape)
	b := w.Bounds()
	step := float64(config.SpriteSize)

	for y := b.Top() + step/2; y+step/2 <= b.Bottom(); y += step {
		for x := b.Left() + step/2; x+step/2 <= b.Right(); x += step {
			pos := physics.Vec{X: x, Y: y}
			if !oracle.Blocked(loop.Probe{Self: -1, Position: pos, Hitbox: probe.At(pos)}) {
				return pos, true
			}
		}
	}
	return physics.Vec{}, false
}

// spawnBody places a new body in the first free spot and spawns it.
func spawnBody(w *loop.World, oracle loop.Oracle, steering object.Steering) (*object.Body, bool) {
	pos, ok := findSpawn(w, oracle)
	if !ok {
		return nil, false
	}
	b := w.NewBody(pos, bodySprite, bodyShape)
	b.Steering = steering
	if err := w.Spawn(b); err != nil {
		return nil, false
	}
	return b, true
}
