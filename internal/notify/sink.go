package notify

import (
	"encoding/json"
	"errors"
	"io"
	"sync"
)

// Writer writes each frame as one line of JSON.
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriter returns a Sink writing JSON lines to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (w *Writer) Send(f Frame) error {
	b, err := json.Marshal(f)
	if err != nil {
		return err
	}
	b = append(b, '\n')

	w.mu.Lock()
	defer w.mu.Unlock()
	_, err = w.w.Write(b)
	return err
}

// Multi fans frames out to several sinks. Every sink is tried; the errors
// are joined.
type Multi []Sink

func (m Multi) Send(f Frame) error {
	var errs []error
	for _, s := range m {
		if err := s.Send(f); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Recorder keeps every frame it receives. It is a test double for Sink.
type Recorder struct {
	mu     sync.Mutex
	frames []Frame
	err    error
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Send(f Frame) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, f)
	return r.err
}

// Frames returns a copy of the received frames.
func (r *Recorder) Frames() []Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Frame(nil), r.frames...)
}

// Commands returns the received frames whose command is name.
func (r *Recorder) Commands(name string) []Frame {
	var out []Frame
	for _, f := range r.Frames() {
		if f.Command() == name {
			out = append(out, f)
		}
	}
	return out
}

// Messages returns the text of every message frame.
func (r *Recorder) Messages() []string {
	var out []string
	for _, f := range r.Frames() {
		if v, ok := f.Get(KeyMessage); ok {
			if s, ok := v.(string); ok {
				out = append(out, s)
			}
		}
	}
	return out
}

// Reset forgets the received frames.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = nil
}

// SetError makes Send return err.
func (r *Recorder) SetError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

// Verify sinks implement Sink at compile time.
var (
	_ Sink = (*Writer)(nil)
	_ Sink = Multi(nil)
	_ Sink = (*Recorder)(nil)
)
