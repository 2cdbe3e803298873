// Command sim runs the simulation in the local terminal: one player body
// steered from the keyboard, a few followers, and a status line.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/term"

	"github.com/tomz197/quadstep/internal/config"
	"github.com/tomz197/quadstep/internal/console"
	"github.com/tomz197/quadstep/internal/input"
	"github.com/tomz197/quadstep/internal/loop"
	"github.com/tomz197/quadstep/internal/object"
	"github.com/tomz197/quadstep/internal/physics"
	"github.com/tomz197/quadstep/internal/terrain"
	"github.com/tomz197/quadstep/internal/trace"
)

const followers = 3

var (
	sprite = physics.Rect{W: config.SpriteSize, H: config.SpriteSize}
	shape  = object.HitboxShape{OffsetY: config.HitboxOffsetY, ScaleX: config.HitboxScale, ScaleY: config.HitboxScale}
)

func main() {
	host := config.HostFromEnv()
	logger := console.NewLogger(os.Stderr, "sim", host.LogLevel)

	if err := run(host, logger); err != nil {
		logger.Fatal("sim failed", "err", err)
	}
}

func run(host config.Host, logger *log.Logger) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}

	m, err := terrain.Load(host.MapDir, host.MapName, host.Layers, host.Tileset, cfg.TileSize)
	if err != nil {
		return fmt.Errorf("load map %q: %w", host.MapName, err)
	}
	world := loop.NewWorld(cfg)
	if err := world.LoadTerrain(m); err != nil {
		return err
	}
	logger.Info("map loaded", "name", host.MapName, "cols", m.Grid().Cols, "rows", m.Grid().Rows,
		"blocking", len(m.BlockingItems()), "depth", world.Static().Depth())

	controller := &object.Controller{}
	player, err := spawnAtFloor(world, m, controller)
	if err != nil {
		return err
	}
	for range followers {
		if _, err := spawnAtFloor(world, m, &object.Follower{Target: player.ID, SightRadius: config.FollowerSight}); err != nil {
			return err
		}
	}

	var (
		rec *trace.Recorder
		bw  *bufio.Writer
	)
	if host.TraceFile != "" {
		f, err := os.Create(host.TraceFile)
		if err != nil {
			return fmt.Errorf("create trace: %w", err)
		}
		defer f.Close()
		bw = bufio.NewWriter(f)
		rec = trace.NewRecorder(bw)
		logger.Info("recording trace", "file", host.TraceFile)
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("enable raw mode: %w", err)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
	}()

	err = loopFrames(cfg, world, player, controller, rec, os.Stdin, os.Stdout)
	if bw != nil {
		err = finishTrace(err, bw)
		logger.Info("trace written", "frames", rec.Frames())
	}
	return err
}

// finishTrace flushes the buffered trace, joining a flush failure onto err.
func finishTrace(err error, bw *bufio.Writer) error {
	if ferr := bw.Flush(); ferr != nil {
		return errors.Join(err, fmt.Errorf("flush trace: %w", ferr))
	}
	return err
}

// traceTicks records a frame after every tick the stepper runs. The
// returned func reports the first record error.
func traceTicks(stepper *loop.Stepper, world *loop.World, rec *trace.Recorder) func() error {
	var recErr error
	stepper.OnTick(func(tick uint64) {
		if recErr == nil {
			recErr = rec.Record(trace.Capture(tick, world.Bodies()))
		}
	})
	return func() error { return recErr }
}

// loopFrames runs host frames until the player quits or input ends.
func loopFrames(cfg config.Physics, world *loop.World, player *object.Body, controller *object.Controller, rec *trace.Recorder, r io.Reader, w io.Writer) error {
	stepper := loop.NewStepper(cfg, world, nil, 0)
	traceErr := func() error { return nil }
	if rec != nil {
		traceErr = traceTicks(stepper, world, rec)
	}
	stream := input.StartStream(bufio.NewReader(r))

	width, _ := console.TerminalSize(console.DefaultTermSizeFunc)
	out := console.NewWriter(w, width)
	console.HideCursor(w)
	defer console.ShowCursor(w)
	console.ClearScreen(w)

	ticker := time.NewTicker(config.ServerFrameTime)
	defer ticker.Stop()
	start := time.Now()

	for range ticker.C {
		in := input.ReadInput(stream)
		if in.Quit || in.Closed {
			return nil
		}
		controller.Set(in.Direction())
		if in.Collision {
			stepper.SetCollisions(!stepper.Collisions())
		}

		world.Steer()
		ticks := stepper.Advance(time.Since(start))
		if err := traceErr(); err != nil {
			return err
		}

		status := console.Status{
			Tick:       stepper.Ticks(),
			Bodies:     world.Len(),
			Position:   player.Position,
			Velocity:   player.Velocity,
			Collisions: stepper.Collisions(),
			Behind:     ticks == cfg.MaxTicksPerCall,
		}
		out.Line(1, status.String())
		out.Line(2, console.Help)
		if err := out.Flush(); err != nil {
			return err
		}
	}
	return nil
}

// spawnAtFloor spawns a body at the center of the first free walkable cell.
func spawnAtFloor(world *loop.World, m *terrain.Map, steering object.Steering) (*object.Body, error) {
	g := m.Grid()
	oracle := loop.IndexOracle{World: world}
	hitbox := object.NewHitbox(sprite, shape)
	for row := 0; row < g.Rows; row++ {
		for col := 0; col < g.Cols; col++ {
			if m.CellBlocked(col, row) {
				continue
			}
			pos := g.CellRect(col, row).Center()
			if oracle.Blocked(loop.Probe{Self: -1, Position: pos, Hitbox: hitbox.At(pos)}) {
				continue
			}
			b := world.NewBody(pos, sprite, shape)
			b.Steering = steering
			return b, world.Spawn(b)
		}
	}
	return nil, errors.New("no free cell for body")
}
