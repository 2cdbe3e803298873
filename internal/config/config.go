package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/tomz197/quadstep/internal/physics"
)

// ErrInvalid reports a configuration value out of range or unparsable.
var ErrInvalid = errors.New("invalid config")

// Viewport - world bounds fall back to this when no terrain sets them.
const (
	ViewportWidth  = 1280
	ViewportHeight = 720
)

// Map
const (
	TileSize = 48
)

// Simulation timing
const (
	TicksPerSecond  = 60
	MaxTicksPerCall = 5 // Frame-skip cap
)

// Spatial index
const (
	MaxDepth     = 8
	StaticMargin = 0  // Pixels shaved off each side of a hitbox before the terrain query
	CellSize     = 64 // Cell size of the resolv-backed body index
)

// Body defaults
const (
	SpeedBase         = 10.0
	SpeedFactor       = 1.0
	SpeedMax          = 20.0
	AccelerationFloor = 0.5 // 0.5 = almost meaningless, 0.1 = meaningful
	FrictionFloor     = 0.5
)

// Bodies spawned by the hosts
const (
	SpriteSize         = 48
	HitboxScale        = -50 // Percent of the sprite size
	HitboxOffsetY      = 12  // Hitbox sits at the feet
	FollowersPerClient = 2
	FollowerSight      = 400.0
)

// Server
const (
	ServerTickRate    = 60
	ServerFrameTime   = time.Second / ServerTickRate
	InputBufferSize   = 256
	ClientBufferSize  = 16
	ShutdownWaitTime  = 15 * time.Second
	ShutdownPollEvery = 200 * time.Millisecond
)

// Client
const (
	ClientFrameRate      = 30
	ClientFrameTime      = time.Second / ClientFrameRate
	InactivityDisconnect = 120 * time.Second
)

// IndexBackend selects the structure indexing moving bodies.
type IndexBackend string

const (
	BackendQuadtree IndexBackend = "quadtree"
	BackendCells    IndexBackend = "cells"
)

// Physics is the immutable configuration of a world and its stepper.
// Pass it by value.
type Physics struct {
	TileSize        float64
	TicksPerSecond  int
	MaxTicksPerCall int
	MaxDepth        int
	StaticMargin    float64
	CellSize        int
	IndexBackend    IndexBackend
	Collisions      bool

	// Bounds limits body positions. The zero rectangle means the viewport.
	Bounds physics.Rect

	ViewportWidth  float64
	ViewportHeight float64

	Speed        float64
	SpeedFactor  float64
	MaxSpeed     float64
	Acceleration float64
	Friction     float64
}

// Default returns the built-in configuration.
func Default() Physics {
	return Physics{
		TileSize:        TileSize,
		TicksPerSecond:  TicksPerSecond,
		MaxTicksPerCall: MaxTicksPerCall,
		MaxDepth:        MaxDepth,
		StaticMargin:    StaticMargin,
		CellSize:        CellSize,
		IndexBackend:    BackendQuadtree,
		Collisions:      true,
		ViewportWidth:   ViewportWidth,
		ViewportHeight:  ViewportHeight,
		Speed:           SpeedBase,
		SpeedFactor:     SpeedFactor,
		MaxSpeed:        SpeedMax,
		Acceleration:    AccelerationFloor,
		Friction:        FrictionFloor,
	}
}

// TickDuration returns the length of one simulation step.
func (p Physics) TickDuration() time.Duration {
	return time.Second / time.Duration(p.TicksPerSecond)
}

// WorldBounds returns Bounds, or the viewport rectangle when Bounds is unset.
func (p Physics) WorldBounds() physics.Rect {
	if p.Bounds == (physics.Rect{}) {
		return physics.Rect{W: p.ViewportWidth, H: p.ViewportHeight}
	}
	return p.Bounds
}

// Validate checks ranges.
func (p Physics) Validate() error {
	switch {
	case p.TileSize <= 0:
		return fmt.Errorf("tile size %v: %w", p.TileSize, ErrInvalid)
	case p.TicksPerSecond <= 0:
		return fmt.Errorf("ticks per second %d: %w", p.TicksPerSecond, ErrInvalid)
	case p.MaxTicksPerCall <= 0:
		return fmt.Errorf("max ticks per call %d: %w", p.MaxTicksPerCall, ErrInvalid)
	case p.MaxDepth <= 0:
		return fmt.Errorf("max depth %d: %w", p.MaxDepth, ErrInvalid)
	case p.StaticMargin < 0:
		return fmt.Errorf("static margin %v: %w", p.StaticMargin, ErrInvalid)
	case p.CellSize <= 0:
		return fmt.Errorf("cell size %d: %w", p.CellSize, ErrInvalid)
	case p.IndexBackend != BackendQuadtree && p.IndexBackend != BackendCells:
		return fmt.Errorf("index backend %q: %w", p.IndexBackend, ErrInvalid)
	case p.Acceleration <= 0 || p.Acceleration > 1:
		return fmt.Errorf("acceleration %v not in (0,1]: %w", p.Acceleration, ErrInvalid)
	case p.Friction <= 0 || p.Friction > 1:
		return fmt.Errorf("friction %v not in (0,1]: %w", p.Friction, ErrInvalid)
	}
	return nil
}

// FromEnv overlays QUADSTEP_* environment variables on Default and
// validates the result.
func FromEnv() (Physics, error) {
	p := Default()
	var err error

	ints := []struct {
		key string
		dst *int
	}{
		{"QUADSTEP_TICKS_PER_SECOND", &p.TicksPerSecond},
		{"QUADSTEP_MAX_TICKS_PER_CALL", &p.MaxTicksPerCall},
		{"QUADSTEP_MAX_DEPTH", &p.MaxDepth},
		{"QUADSTEP_CELL_SIZE", &p.CellSize},
	}
	for _, v := range ints {
		if *v.dst, err = GetEnvInt(v.key, *v.dst); err != nil {
			return Physics{}, err
		}
	}

	floats := []struct {
		key string
		dst *float64
	}{
		{"QUADSTEP_TILE_SIZE", &p.TileSize},
		{"QUADSTEP_STATIC_MARGIN", &p.StaticMargin},
		{"QUADSTEP_SPEED", &p.Speed},
		{"QUADSTEP_MAX_SPEED", &p.MaxSpeed},
		{"QUADSTEP_ACCELERATION", &p.Acceleration},
		{"QUADSTEP_FRICTION", &p.Friction},
	}
	for _, v := range floats {
		if *v.dst, err = GetEnvFloat(v.key, *v.dst); err != nil {
			return Physics{}, err
		}
	}

	if p.Collisions, err = GetEnvBool("QUADSTEP_COLLISIONS", p.Collisions); err != nil {
		return Physics{}, err
	}
	p.IndexBackend = IndexBackend(GetEnv("QUADSTEP_INDEX_BACKEND", string(p.IndexBackend)))

	if err := p.Validate(); err != nil {
		return Physics{}, err
	}
	return p, nil
}
