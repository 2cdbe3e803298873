// Package server runs one shared World on its own goroutine and lets many
// clients steer bodies in it.
package server

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/quadstep/internal/config"
	"github.com/tomz197/quadstep/internal/loop"
	"github.com/tomz197/quadstep/internal/object"
	"github.com/tomz197/quadstep/internal/physics"
)

// Simulation is the interface clients use to communicate with the server.
type Simulation interface {
	RegisterClient(name string) *ClientHandle
	UnregisterClient(clientID int)
	SendInput(clientID int, direction physics.Vec)
	ToggleCollisions()
	GetSnapshot() *Snapshot
}

// Server owns a World and a Stepper. All world mutation happens on the Run
// goroutine; other goroutines talk to it through channels and read
// snapshots.
type Server struct {
	cfg          config.Physics
	world        *loop.World
	stepper      *loop.Stepper
	oracle       loop.Oracle
	logger       *log.Logger
	snapshot     atomic.Pointer[Snapshot]
	clients      map[int]*ClientHandle
	nextClientID int
	inputChan    chan ClientInput
	registerCh   chan *ClientHandle
	unregisterCh chan int
	spawnCh      chan *object.Body
	despawnCh    chan object.ID
	toggleCh     chan struct{}
	mu           sync.RWMutex
}

// Compile-time check that Server implements Simulation.
var _ Simulation = (*Server)(nil)

// ClientHandle represents a client's connection to the server.
type ClientHandle struct {
	ID       int
	Name     string
	EventsCh chan ClientEvent // Events sent to client

	body       object.ID
	followers  []object.ID
	controller *object.Controller
}

// ClientInput represents input from a specific client.
type ClientInput struct {
	ClientID  int
	Direction physics.Vec
}

// ClientEvent represents an event sent from server to client.
type ClientEvent struct {
	Type ClientEventType
	Body object.ID // For EventSpawned
}

// ClientEventType identifies the type of client event.
type ClientEventType int

const (
	EventSpawned ClientEventType = iota
	EventNoRoom
	EventServerShutdown
)

// NewServer creates a server driving world. The world should already hold
// its terrain.
func NewServer(cfg config.Physics, world *loop.World, logger *log.Logger) *Server {
	oracle := loop.IndexOracle{World: world, Margin: cfg.StaticMargin}
	s := &Server{
		cfg:          cfg,
		world:        world,
		stepper:      loop.NewStepper(cfg, world, oracle, 0),
		oracle:       oracle,
		logger:       logger,
		clients:      make(map[int]*ClientHandle),
		nextClientID: 1,
		inputChan:    make(chan ClientInput, config.InputBufferSize),
		registerCh:   make(chan *ClientHandle, config.ClientBufferSize),
		unregisterCh: make(chan int, config.ClientBufferSize),
		spawnCh:      make(chan *object.Body, config.ClientBufferSize),
		despawnCh:    make(chan object.ID, config.ClientBufferSize),
		toggleCh:     make(chan struct{}, 1),
	}
	s.createSnapshot(false)
	return s
}

// Run starts the frame loop. Blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) {
	start := time.Now()
	ticker := time.NewTicker(config.ServerFrameTime)
	defer ticker.Stop()

	s.logger.Info("simulation started", "tick", s.stepper.TickDuration(), "bodies", s.world.Len())
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("simulation stopped", "ticks", s.stepper.Ticks())
			return
		case <-ticker.C:
			s.frame(time.Since(start))
		}
	}
}

// frame runs one host frame at simulation time now.
func (s *Server) frame(now time.Duration) {
	s.processRegistrations()
	s.processSpawns()
	s.collectInputs()

	s.world.Steer()
	ticks := s.stepper.Advance(now)
	if ticks == s.cfg.MaxTicksPerCall {
		s.logger.Debug("simulation behind", "boundary", s.stepper.Boundary(), "now", now)
	}

	s.createSnapshot(ticks == s.cfg.MaxTicksPerCall)
}

// Shutdown notifies all connected clients and waits for them to disconnect
// (up to the given timeout). The caller should cancel the server context
// after Shutdown returns.
func (s *Server) Shutdown(timeout time.Duration) {
	s.mu.RLock()
	for _, handle := range s.clients {
		select {
		case handle.EventsCh <- ClientEvent{Type: EventServerShutdown}:
		default:
		}
	}
	s.mu.RUnlock()

	deadline := time.After(timeout)
	ticker := time.NewTicker(config.ShutdownPollEvery)
	defer ticker.Stop()

	for {
		select {
		case <-deadline:
			return
		case <-ticker.C:
			s.mu.RLock()
			remaining := len(s.clients)
			s.mu.RUnlock()
			if remaining == 0 {
				return
			}
		}
	}
}

// RegisterClient registers a new client and returns its handle. The
// client's body is spawned on the next frame and announced on EventsCh.
func (s *Server) RegisterClient(name string) *ClientHandle {
	s.mu.Lock()
	id := s.nextClientID
	s.nextClientID++
	s.mu.Unlock()

	handle := &ClientHandle{
		ID:         id,
		Name:       name,
		EventsCh:   make(chan ClientEvent, config.ClientBufferSize),
		controller: &object.Controller{},
	}
	s.registerCh <- handle
	return handle
}

// UnregisterClient removes a client and its bodies.
func (s *Server) UnregisterClient(clientID int) {
	s.unregisterCh <- clientID
}

// SendInput sets the movement direction of a client's body.
func (s *Server) SendInput(clientID int, direction physics.Vec) {
	select {
	case s.inputChan <- ClientInput{ClientID: clientID, Direction: direction}:
	default:
		// Input channel full, drop input
	}
}

// ToggleCollisions flips collision checks for the whole world.
func (s *Server) ToggleCollisions() {
	select {
	case s.toggleCh <- struct{}{}:
	default:
	}
}

// Spawn adds a body on the next frame. Its ID must come from the world the
// server was created with.
func (s *Server) Spawn(b *object.Body) {
	s.spawnCh <- b
}

// Despawn removes a body on the next frame.
func (s *Server) Despawn(id object.ID) {
	s.despawnCh <- id
}

// GetSnapshot returns the current world snapshot.
func (s *Server) GetSnapshot() *Snapshot {
	return s.snapshot.Load()
}

// processRegistrations handles pending client registrations/unregistrations.
func (s *Server) processRegistrations() {
	for {
		select {
		case handle := <-s.registerCh:
			s.register(handle)
		case clientID := <-s.unregisterCh:
			s.unregister(clientID)
		default:
			return
		}
	}
}

func (s *Server) register(handle *ClientHandle) {
	s.mu.Lock()
	s.clients[handle.ID] = handle
	s.mu.Unlock()

	player, ok := spawnBody(s.world, s.oracle, handle.controller)
	if !ok {
		s.logger.Warn("no room for player", "client", handle.ID, "name", handle.Name)
		handle.EventsCh <- ClientEvent{Type: EventNoRoom}
		return
	}
	handle.body = player.ID

	for range config.FollowersPerClient {
		f, ok := spawnBody(s.world, s.oracle, &object.Follower{Target: player.ID, SightRadius: config.FollowerSight})
		if !ok {
			break
		}
		handle.followers = append(handle.followers, f.ID)
	}

	s.logger.Info("client registered", "client", handle.ID, "name", handle.Name,
		"body", player.ID, "at", player.Position, "followers", len(handle.followers))
	handle.EventsCh <- ClientEvent{Type: EventSpawned, Body: player.ID}
}

func (s *Server) unregister(clientID int) {
	s.mu.Lock()
	handle, ok := s.clients[clientID]
	delete(s.clients, clientID)
	s.mu.Unlock()
	if !ok {
		return
	}

	if handle.body != 0 {
		s.world.Despawn(handle.body)
	}
	for _, id := range handle.followers {
		s.world.Despawn(id)
	}
	close(handle.EventsCh)
	s.logger.Info("client unregistered", "client", clientID, "name", handle.Name)
}

// processSpawns applies pending spawn and despawn requests and the
// collision toggle.
func (s *Server) processSpawns() {
	for {
		select {
		case b := <-s.spawnCh:
			if err := s.world.Spawn(b); err != nil {
				s.logger.Error("spawn failed", "body", b.ID, "err", err)
				continue
			}
			s.logger.Debug("spawned body", "body", b.ID)
		case id := <-s.despawnCh:
			if s.world.Despawn(id) {
				s.logger.Debug("despawned body", "body", id)
			}
		case <-s.toggleCh:
			s.stepper.SetCollisions(!s.stepper.Collisions())
			s.logger.Info("collisions toggled", "on", s.stepper.Collisions())
		default:
			return
		}
	}
}

// collectInputs gathers all pending inputs from clients.
func (s *Server) collectInputs() {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for {
		select {
		case ci := <-s.inputChan:
			if handle, ok := s.clients[ci.ClientID]; ok {
				handle.controller.Set(ci.Direction)
			}
		default:
			return
		}
	}
}

// createSnapshot publishes an immutable snapshot of the world state.
func (s *Server) createSnapshot(behind bool) {
	s.mu.RLock()
	players := len(s.clients)
	s.mu.RUnlock()

	// Readers may hold an older snapshot, so bodies are never reused.
	s.snapshot.Store(&Snapshot{
		Tick:       s.stepper.Ticks(),
		Bodies:     snapshotBodies(s.world.Bodies()),
		Players:    players,
		Bounds:     s.world.Bounds(),
		Collisions: s.stepper.Collisions(),
		Behind:     behind,
	})
}
