// Package input turns a raw terminal byte stream into movement keys.
package input

import (
	"bufio"
	"time"

	"github.com/tomz197/quadstep/internal/physics"
)

// keyHoldDuration is how long a key is considered "held" after its last press.
// Terminals only report key repeats, so a held key shows up as a stream of
// presses spaced by the repeat rate.
const keyHoldDuration = 80 * time.Millisecond

// Input represents the current frame's input state.
type Input struct {
	Quit      bool
	Left      bool
	Right     bool
	Up        bool
	Down      bool
	Collision bool // Toggle collision checks, edge triggered
	Closed    bool // The byte stream ended
}

// Direction returns the movement direction of the held keys. Opposite keys
// cancel out. The result is not normalized.
func (in Input) Direction() physics.Vec {
	var d physics.Vec
	if in.Left {
		d.X--
	}
	if in.Right {
		d.X++
	}
	if in.Up {
		d.Y--
	}
	if in.Down {
		d.Y++
	}
	return d
}

// keyState tracks the last time each key was pressed.
type keyState struct {
	left  time.Time
	right time.Time
	up    time.Time
	down  time.Time
}

// Stream delivers input bytes via a channel and tracks key state for combinations.
type Stream struct {
	ch     chan byte
	state  keyState
	closed bool
}

// StartStream spawns a goroutine that reads from r and sends bytes to the stream.
func StartStream(r *bufio.Reader) *Stream {
	s := &Stream{ch: make(chan byte, 128)}
	go func() {
		for {
			b, err := r.ReadByte()
			if err != nil {
				close(s.ch)
				return
			}
			s.ch <- b
		}
	}()
	return s
}

// ReadInput drains all available bytes from the stream (non-blocking).
// Handles escape sequences for arrow keys.
func ReadInput(s *Stream) Input {
	return s.read(time.Now())
}

func (s *Stream) read(now time.Time) Input {
	var buf []byte

drain:
	for !s.closed {
		select {
		case b, ok := <-s.ch:
			if !ok {
				s.closed = true
				break drain
			}
			buf = append(buf, b)
		default:
			break drain
		}
	}

	in := Input{Closed: s.closed}
	for i := 0; i < len(buf); i++ {
		b := buf[i]

		// CSI sequence: ESC [ <code>
		if b == '\x1b' && i+2 < len(buf) && buf[i+1] == '[' {
			switch buf[i+2] {
			case 'A':
				s.state.up = now
			case 'B':
				s.state.down = now
			case 'C':
				s.state.right = now
			case 'D':
				s.state.left = now
			}
			i += 2
			continue
		}

		switch b {
		case 'q', 'Q', '\x03': // Ctrl-C arrives as a byte in raw mode
			in.Quit = true
		case 'c', 'C':
			in.Collision = !in.Collision
		default:
			applyByteToState(&s.state, b, now)
		}
	}

	in.Left = now.Sub(s.state.left) < keyHoldDuration
	in.Right = now.Sub(s.state.right) < keyHoldDuration
	in.Up = now.Sub(s.state.up) < keyHoldDuration
	in.Down = now.Sub(s.state.down) < keyHoldDuration
	return in
}

// applyByteToState updates the key state timestamps based on the pressed byte.
func applyByteToState(state *keyState, b byte, now time.Time) {
	switch b {
	case 'a', 'A', 'h', 'H':
		state.left = now
	case 'd', 'D', 'l', 'L':
		state.right = now
	case 'w', 'W', 'k', 'K':
		state.up = now
	case 's', 'S', 'j', 'J':
		state.down = now
	}
}
