package client

import (
	"bufio"
	"bytes"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tomz197/quadstep/internal/console"
	"github.com/tomz197/quadstep/internal/loop/server"
	"github.com/tomz197/quadstep/internal/physics"
)

// fakeSim records what a client sends.
type fakeSim struct {
	mu           sync.Mutex
	handle       *server.ClientHandle
	inputs       []physics.Vec
	toggles      int
	unregistered bool
	snapshot     *server.Snapshot
}

var _ server.Simulation = (*fakeSim)(nil)

func newFakeSim(events ...server.ClientEvent) *fakeSim {
	h := &server.ClientHandle{ID: 7, EventsCh: make(chan server.ClientEvent, len(events)+1)}
	for _, ev := range events {
		h.EventsCh <- ev
	}
	return &fakeSim{
		handle: h,
		snapshot: &server.Snapshot{
			Tick:    12,
			Players: 1,
			Bodies:  []server.BodySnapshot{{ID: 3, Position: physics.Vec{X: 10, Y: 20}}},
		},
	}
}

func (f *fakeSim) RegisterClient(name string) *server.ClientHandle {
	f.handle.Name = name
	return f.handle
}

func (f *fakeSim) UnregisterClient(int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unregistered = true
}

func (f *fakeSim) SendInput(_ int, d physics.Vec) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputs = append(f.inputs, d)
}

func (f *fakeSim) ToggleCollisions() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.toggles++
}

func (f *fakeSim) GetSnapshot() *server.Snapshot { return f.snapshot }

func size() (int, int, error) { return 200, 50, nil }

func runClient(t *testing.T, sim *fakeSim, keys string) string {
	t.Helper()
	var out bytes.Buffer
	c := NewClient(sim, bufio.NewReader(strings.NewReader(keys)), &out, ClientOptions{
		TermSizeFunc: size,
		Name:         "ada",
		FrameTime:    time.Millisecond,
	})

	done := make(chan error, 1)
	go func() { done <- c.Run() }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return")
	}
	return out.String()
}

func TestClientForwardsInputAndQuits(t *testing.T) {
	sim := newFakeSim(server.ClientEvent{Type: server.EventSpawned, Body: 3})
	runClient(t, sim, "dc")

	sim.mu.Lock()
	defer sim.mu.Unlock()
	if !sim.unregistered {
		t.Error("client did not unregister")
	}
	if sim.handle.Name != "ada" {
		t.Errorf("registered as %q", sim.handle.Name)
	}
	if len(sim.inputs) == 0 || sim.inputs[0] != (physics.Vec{X: 1}) {
		t.Errorf("inputs = %+v, want first {1 0}", sim.inputs)
	}
	if sim.toggles != 1 {
		t.Errorf("toggles = %d, want 1", sim.toggles)
	}
}

func TestClientStopsOnShutdown(t *testing.T) {
	sim := newFakeSim(server.ClientEvent{Type: server.EventServerShutdown})
	// A reader that never ends: the shutdown event alone must stop the client.
	r, w := io.Pipe()
	defer w.Close()

	var out bytes.Buffer
	c := NewClient(sim, bufio.NewReader(r), &out, ClientOptions{TermSizeFunc: size, FrameTime: time.Millisecond})
	done := make(chan error, 1)
	go func() { done <- c.Run() }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return on shutdown")
	}
	if !strings.Contains(out.String(), "shutting down") {
		t.Errorf("output %q lacks shutdown notice", out.String())
	}
}

func TestClientShowsStatus(t *testing.T) {
	sim := newFakeSim(server.ClientEvent{Type: server.EventSpawned, Body: 3})
	c := NewClient(sim, bufio.NewReader(strings.NewReader("")), &bytes.Buffer{}, ClientOptions{TermSizeFunc: size})
	var out bytes.Buffer
	c.writer = &out
	c.out = console.NewWriter(&out, 200)

	c.processServerEvents()
	if c.state.Phase != PhasePlaying || c.state.Body != 3 {
		t.Fatalf("state %+v", c.state)
	}
	if err := c.drawFrame(); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"tick 12", "pos 10.0,20.0", "players 1"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("%q missing %q", out.String(), want)
		}
	}
}
