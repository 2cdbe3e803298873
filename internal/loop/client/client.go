// Package client connects one terminal to a shared simulation server: it
// forwards movement keys and prints the status of the client's body.
package client

import (
	"bufio"
	"fmt"
	"io"
	"time"

	"github.com/tomz197/quadstep/internal/config"
	"github.com/tomz197/quadstep/internal/console"
	"github.com/tomz197/quadstep/internal/input"
	"github.com/tomz197/quadstep/internal/loop/server"
)

// Client handles input and status output for a single connection.
type Client struct {
	server       server.Simulation
	handle       *server.ClientHandle
	state        *ClientState
	out          *console.Writer
	writer       io.Writer
	inputStream  *input.Stream
	termSizeFunc console.TermSizeFunc
	frameTime    time.Duration
}

// ClientOptions configures the client.
type ClientOptions struct {
	TermSizeFunc console.TermSizeFunc
	Name         string
	FrameTime    time.Duration // Defaults to config.ClientFrameTime
}

// NewClient creates a new client registered with the given server.
func NewClient(sim server.Simulation, r *bufio.Reader, w io.Writer, opts ClientOptions) *Client {
	termSizeFunc := opts.TermSizeFunc
	if termSizeFunc == nil {
		termSizeFunc = console.DefaultTermSizeFunc
	}
	frameTime := opts.FrameTime
	if frameTime <= 0 {
		frameTime = config.ClientFrameTime
	}
	width, _ := console.TerminalSize(termSizeFunc)

	return &Client{
		server:       sim,
		handle:       sim.RegisterClient(opts.Name),
		state:        NewClientState(time.Now()),
		out:          console.NewWriter(w, width),
		writer:       w,
		inputStream:  input.StartStream(r),
		termSizeFunc: termSizeFunc,
		frameTime:    frameTime,
	}
}

// Run starts the client loop. Blocks until the client quits, goes idle, or
// the server stops.
func (c *Client) Run() error {
	console.HideCursor(c.writer)
	defer console.ShowCursor(c.writer)
	console.ClearScreen(c.writer)
	defer c.server.UnregisterClient(c.handle.ID)

	ticker := time.NewTicker(c.frameTime)
	defer ticker.Stop()

	for c.state.Running {
		<-ticker.C
		now := time.Now()

		c.processInput(now)
		c.processServerEvents()

		if err := c.drawFrame(); err != nil {
			return err
		}
	}
	return nil
}

// processInput reads input and sends it to the server.
func (c *Client) processInput(now time.Time) {
	in := input.ReadInput(c.inputStream)
	c.state.Input = in

	if in.Collision {
		c.server.ToggleCollisions()
	}
	dir := in.Direction()
	if dir != c.state.Direction {
		c.state.Direction = dir
		c.server.SendInput(c.handle.ID, dir)
	}

	if in.Quit || in.Closed {
		c.state.Running = false
		return
	}
	if !dir.IsZero() || in.Collision {
		c.state.lastInput = now
	} else if now.Sub(c.state.lastInput) > config.InactivityDisconnect {
		c.state.Running = false
	}
}

// processServerEvents handles events sent by the server.
func (c *Client) processServerEvents() {
	for {
		select {
		case ev, ok := <-c.handle.EventsCh:
			if !ok {
				c.state.Running = false
				return
			}
			switch ev.Type {
			case server.EventSpawned:
				c.state.Phase = PhasePlaying
				c.state.Body = ev.Body
			case server.EventNoRoom:
				c.state.Phase = PhaseNoRoom
				c.state.Running = false
			case server.EventServerShutdown:
				c.state.Phase = PhaseShutdown
				c.state.Running = false
			}
		default:
			return
		}
	}
}

// drawFrame prints the status lines for the current phase.
func (c *Client) drawFrame() error {
	if width, _ := console.TerminalSize(c.termSizeFunc); width > 0 {
		c.out.SetWidth(width)
	}

	switch c.state.Phase {
	case PhaseWaiting:
		c.out.Line(1, "waiting for a free spot...")
	case PhaseNoRoom:
		c.out.Line(1, "the world is full, try again later")
	case PhaseShutdown:
		c.out.Line(1, "server is shutting down, bye")
	case PhasePlaying:
		snap := c.server.GetSnapshot()
		status := console.Status{
			Tick:       snap.Tick,
			Bodies:     len(snap.Bodies),
			Collisions: snap.Collisions,
			Behind:     snap.Behind,
		}
		if b, ok := snap.Body(c.state.Body); ok {
			status.Position = b.Position
			status.Velocity = b.Velocity
		}
		c.out.Line(1, status.String())
		c.out.Line(2, fmt.Sprintf("players %d  %s", snap.Players, console.Help))
	}
	return c.out.Flush()
}
