package object

import (
	"testing"

	"github.com/tomz197/quadstep/internal/physics"
)

var testTuning = Tuning{Speed: 10, SpeedFactor: 1, MaxSpeed: 20, Acceleration: 0.5, Friction: 0.5}

func TestNewHitboxShrinksAndOffsets(t *testing.T) {
	sprite := physics.Rect{X: 0, Y: 0, W: 48, H: 48}
	hb := NewHitbox(sprite, HitboxShape{OffsetY: 12, ScaleX: -50, ScaleY: -50})
	want := physics.Rect{X: 12, Y: 24, W: 24, H: 24}
	if hb.Rect != want {
		t.Errorf("hitbox = %+v, want %+v", hb.Rect, want)
	}
	if c := hb.Rect.Center(); c != (physics.Vec{X: 24, Y: 36}) {
		t.Errorf("center = %+v", c)
	}
}

func TestHitboxFollowsBody(t *testing.T) {
	b := NewBody(1, physics.Vec{X: 100, Y: 100}, physics.Rect{W: 32, H: 32}, HitboxShape{OffsetX: 4}, testTuning)
	if c := b.Hitbox.Rect.Center(); c != (physics.Vec{X: 104, Y: 100}) {
		t.Fatalf("initial hitbox center = %+v", c)
	}

	b.MoveTo(physics.Vec{X: 200, Y: 50})
	if c := b.Hitbox.Rect.Center(); c != (physics.Vec{X: 204, Y: 50}) {
		t.Errorf("hitbox center after move = %+v", c)
	}
	if c := b.Sprite.Center(); c != (physics.Vec{X: 200, Y: 50}) {
		t.Errorf("sprite center after move = %+v", c)
	}
	if b.Hitbox.Rect.W != 32 || b.Hitbox.Rect.H != 32 {
		t.Errorf("hitbox resized to %+v", b.Hitbox.Rect)
	}
}

func TestSetSpeedClamps(t *testing.T) {
	b := NewBody(1, physics.Zero, physics.Rect{W: 10, H: 10}, HitboxShape{}, testTuning)
	b.SetSpeed(100)
	if b.Speed() != 20 {
		t.Errorf("Speed = %v, want 20", b.Speed())
	}
	b.SetSpeed(-3)
	if b.Speed() != 0 {
		t.Errorf("Speed = %v, want 0", b.Speed())
	}
	b.SpeedFactor = 0.5
	b.SetSpeed(10)
	if b.Speed() != 5 {
		t.Errorf("Speed with factor = %v, want 5", b.Speed())
	}
}

type bodyMap map[ID]*Body

func (m bodyMap) Body(id ID) (*Body, bool) {
	b, ok := m[id]
	return b, ok
}

func TestFollowerSteering(t *testing.T) {
	player := NewBody(1, physics.Vec{X: 100, Y: 100}, physics.Rect{W: 10, H: 10}, HitboxShape{}, testTuning)
	enemy := NewBody(2, physics.Vec{X: 100, Y: 300}, physics.Rect{W: 10, H: 10}, HitboxShape{}, testTuning)
	bodies := bodyMap{1: player, 2: enemy}

	f := &Follower{Target: 1, SightRadius: 250}
	f.Steer(enemy, bodies)
	if enemy.Direction != (physics.Vec{X: 0, Y: -200}) {
		t.Errorf("direction = %+v, want towards the player", enemy.Direction)
	}

	f.SightRadius = 100
	f.Steer(enemy, bodies)
	if !enemy.Direction.IsZero() {
		t.Errorf("target out of sight should stop steering, got %+v", enemy.Direction)
	}

	f.Target = 99
	f.Steer(enemy, bodies)
	if !enemy.Direction.IsZero() {
		t.Errorf("missing target should stop steering, got %+v", enemy.Direction)
	}
}

func TestControllerSteering(t *testing.T) {
	b := NewBody(1, physics.Zero, physics.Rect{W: 10, H: 10}, HitboxShape{}, testTuning)
	var c Controller
	c.Steer(b, nil)
	if !b.Direction.IsZero() {
		t.Errorf("unset controller should give zero direction, got %+v", b.Direction)
	}
	c.Set(physics.Vec{X: -1})
	c.Steer(b, nil)
	if b.Direction != (physics.Vec{X: -1}) {
		t.Errorf("direction = %+v", b.Direction)
	}
}
