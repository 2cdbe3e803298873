package loop

import (
	"errors"
	"fmt"

	"github.com/tomz197/quadstep/internal/config"
	"github.com/tomz197/quadstep/internal/object"
	"github.com/tomz197/quadstep/internal/physics"
	"github.com/tomz197/quadstep/internal/spatial"
	"github.com/tomz197/quadstep/internal/terrain"
)

var (
	ErrDuplicateBody = errors.New("loop: body id already spawned")
	ErrNoTerrain     = errors.New("loop: nil terrain")
)

// BodyIndex is the broad phase holding the hitboxes of spawned bodies.
// spatial.Dynamic and spatial.Cells both satisfy it.
type BodyIndex interface {
	Rebuild(items []spatial.Item)
	QueryFunc(r physics.Rect, fn func(spatial.Item) bool)
	Remove(id spatial.ID)
	Move(id spatial.ID, r physics.Rect)
	Compact()
}

var (
	_ BodyIndex = (*spatial.Dynamic)(nil)
	_ BodyIndex = (*spatial.Cells)(nil)
)

// World owns the bodies of a simulation and the indexes over them and over
// the terrain. It is not safe for concurrent use.
type World struct {
	cfg     config.Physics
	bodies  []*object.Body // spawn order
	byID    map[object.ID]*object.Body
	nextID  object.ID
	terrain *terrain.Map
	static  *spatial.Static
	dynamic BodyIndex
	bounds  physics.Rect
}

// Compile-time check that World can resolve steering targets.
var _ object.Lookup = (*World)(nil)

// NewWorld creates an empty world without terrain. Its bounds are
// cfg.WorldBounds until a terrain is loaded.
func NewWorld(cfg config.Physics) *World {
	w := &World{
		cfg:    cfg,
		byID:   make(map[object.ID]*object.Body),
		nextID: 1,
		bounds: cfg.WorldBounds(),
	}
	w.dynamic = w.newBodyIndex()
	return w
}

func (w *World) newBodyIndex() BodyIndex {
	if w.cfg.IndexBackend == config.BackendCells {
		return spatial.NewCells(w.bounds, w.cfg.CellSize)
	}
	return spatial.NewDynamic(nil, spatial.WithMaxDepth(w.cfg.MaxDepth))
}

// LoadTerrain replaces the terrain and rebuilds the static index from its
// blocking cells. World bounds follow the map unless the configuration sets
// explicit bounds. On error the previous terrain stays in place.
func (w *World) LoadTerrain(m *terrain.Map) error {
	if m == nil {
		return ErrNoTerrain
	}
	items := m.BlockingItems()
	static := spatial.NewStatic(items,
		spatial.WithBounds(m.Bounds()),
		spatial.WithMaxDepth(w.cfg.MaxDepth),
	)

	w.terrain = m
	w.static = static
	if w.cfg.Bounds == (physics.Rect{}) {
		w.bounds = m.Bounds()
	}
	w.dynamic = w.newBodyIndex()
	w.reindex()
	return nil
}

// Terrain returns the loaded map, or nil.
func (w *World) Terrain() *terrain.Map { return w.terrain }

// Static returns the terrain index. It is nil before LoadTerrain.
func (w *World) Static() *spatial.Static { return w.static }

// Dynamic returns the body index.
func (w *World) Dynamic() BodyIndex { return w.dynamic }

// Bounds returns the rectangle body positions are clamped to.
func (w *World) Bounds() physics.Rect { return w.bounds }

// NextID returns an identity no spawned body uses.
func (w *World) NextID() object.ID {
	for {
		id := w.nextID
		w.nextID++
		if _, used := w.byID[id]; !used {
			return id
		}
	}
}

// Spawn adds a body and rebuilds the body index.
func (w *World) Spawn(b *object.Body) error {
	if _, ok := w.byID[b.ID]; ok {
		return fmt.Errorf("spawn %d: %w", b.ID, ErrDuplicateBody)
	}
	w.bodies = append(w.bodies, b)
	w.byID[b.ID] = b
	w.reindex()
	return nil
}

// Despawn removes a body, deleting its entry from the body index in place.
// Reports whether the body existed.
func (w *World) Despawn(id object.ID) bool {
	if _, ok := w.byID[id]; !ok {
		return false
	}
	delete(w.byID, id)
	for i, b := range w.bodies {
		if b.ID == id {
			w.bodies = append(w.bodies[:i], w.bodies[i+1:]...)
			break
		}
	}
	w.dynamic.Remove(id)
	return true
}

func (w *World) reindex() {
	items := make([]spatial.Item, len(w.bodies))
	for i, b := range w.bodies {
		items[i] = b.Item()
	}
	w.dynamic.Rebuild(items)
}

// Body implements object.Lookup.
func (w *World) Body(id object.ID) (*object.Body, bool) {
	b, ok := w.byID[id]
	return b, ok
}

// Bodies returns the spawned bodies in spawn order. The slice is owned by
// the world.
func (w *World) Bodies() []*object.Body { return w.bodies }

// Len returns the number of spawned bodies.
func (w *World) Len() int { return len(w.bodies) }

// Steer runs the steering strategy of every body once. Call it once per
// frame, before Stepper.Advance.
func (w *World) Steer() {
	for _, b := range w.bodies {
		if b.Steering != nil {
			b.Steering.Steer(b, w)
		}
	}
}

// NewBody builds a body with the world's movement tuning and a fresh ID.
// The body is not spawned.
func (w *World) NewBody(position physics.Vec, sprite physics.Rect, shape object.HitboxShape) *object.Body {
	return object.NewBody(w.NextID(), position, sprite, shape, object.Tuning{
		Speed:        w.cfg.Speed,
		SpeedFactor:  w.cfg.SpeedFactor,
		MaxSpeed:     w.cfg.MaxSpeed,
		Acceleration: w.cfg.Acceleration,
		Friction:     w.cfg.Friction,
	})
}
