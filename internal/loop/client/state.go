package client

import (
	"time"

	"github.com/tomz197/quadstep/internal/input"
	"github.com/tomz197/quadstep/internal/object"
	"github.com/tomz197/quadstep/internal/physics"
)

// Phase is the connection phase of a client.
type Phase int

const (
	PhaseWaiting  Phase = iota // Registered, body not spawned yet
	PhasePlaying               // Steering a body
	PhaseNoRoom                // The world had no free spot
	PhaseShutdown              // Server is shutting down
)

// ClientState holds per-connection state.
type ClientState struct {
	Input     input.Input
	Phase     Phase
	Body      object.ID
	Direction physics.Vec // Last direction sent
	Running   bool
	lastInput time.Time
}

// NewClientState creates a new initialized client state.
func NewClientState(now time.Time) *ClientState {
	return &ClientState{
		Phase:     PhaseWaiting,
		Running:   true,
		lastInput: now,
	}
}
