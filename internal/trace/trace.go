// Package trace records the state of a simulation after each tick as a
// stream of msgpack frames, and reads such streams back.
//
// Two runs of the same simulation with the same inputs produce
// byte-identical traces.
package trace

import (
	"errors"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/tomz197/quadstep/internal/object"
)

// Body is the recorded state of one body.
type Body struct {
	ID int     `msgpack:"id"`
	X  float64 `msgpack:"x"`
	Y  float64 `msgpack:"y"`
	VX float64 `msgpack:"vx"`
	VY float64 `msgpack:"vy"`
}

// Frame is the state of every body after a tick.
type Frame struct {
	Tick   uint64 `msgpack:"tick"`
	Bodies []Body `msgpack:"bodies"`
}

// Capture builds a frame from bodies, keeping their order.
func Capture(tick uint64, bodies []*object.Body) Frame {
	f := Frame{Tick: tick, Bodies: make([]Body, len(bodies))}
	for i, b := range bodies {
		f.Bodies[i] = Body{
			ID: int(b.ID),
			X:  b.Position.X,
			Y:  b.Position.Y,
			VX: b.Velocity.X,
			VY: b.Velocity.Y,
		}
	}
	return f
}

// Recorder appends frames to a writer.
type Recorder struct {
	enc    *msgpack.Encoder
	frames int
}

// NewRecorder returns a recorder writing to w. Wrap w in a bufio.Writer
// for files; the recorder does not buffer.
func NewRecorder(w io.Writer) *Recorder {
	return &Recorder{enc: msgpack.NewEncoder(w)}
}

// Record writes one frame.
func (r *Recorder) Record(f Frame) error {
	if err := r.enc.Encode(&f); err != nil {
		return fmt.Errorf("trace: record tick %d: %w", f.Tick, err)
	}
	r.frames++
	return nil
}

// Frames returns the number of frames written.
func (r *Recorder) Frames() int { return r.frames }

// Reader decodes frames from a stream.
type Reader struct {
	dec *msgpack.Decoder
}

// NewReader returns a reader over r.
func NewReader(r io.Reader) *Reader {
	return &Reader{dec: msgpack.NewDecoder(r)}
}

// Next returns the next frame, or io.EOF at the end of the stream.
func (r *Reader) Next() (Frame, error) {
	var f Frame
	if err := r.dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return Frame{}, io.EOF
		}
		return Frame{}, fmt.Errorf("trace: read frame: %w", err)
	}
	return f, nil
}

// ReadAll decodes every frame of a stream.
func ReadAll(r io.Reader) ([]Frame, error) {
	tr := NewReader(r)
	var frames []Frame
	for {
		f, err := tr.Next()
		if err == io.EOF {
			return frames, nil
		}
		if err != nil {
			return frames, err
		}
		frames = append(frames, f)
	}
}
