// Package notify carries status events from the controller to the host.
//
// An event is a Frame: an ordered list of key/value pairs, serialized as a
// JSON object whose keys keep their order. Sinks decide how frames travel.
package notify

import (
	"bytes"
	"encoding/json"
)

// Frame keys and command names.
const (
	KeyCommand = "command"
	KeyMessage = "message"

	CmdConnected = "CONNECTED"
	CmdSong      = "SONG"
	CmdSeek      = "SEEK"
	CmdState     = "STATE"
	CmdLibrary   = "LIBRARY"
)

// Field is one key/value pair of a frame.
type Field struct {
	Key   string
	Value any
}

// KV builds a Field.
func KV(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Frame is an ordered set of fields.
type Frame []Field

// Command returns a frame starting with {"command": name}.
func Command(name string, fields ...Field) Frame {
	return append(Frame{KV(KeyCommand, name)}, fields...)
}

// Message returns a {"message": text} frame.
func Message(text string) Frame {
	return Frame{KV(KeyMessage, text)}
}

// Get returns the value of the first field named key.
func (f Frame) Get(key string) (any, bool) {
	for _, field := range f {
		if field.Key == key {
			return field.Value, true
		}
	}
	return nil, false
}

// Command returns the frame's command, or "" when it has none.
func (f Frame) Command() string {
	v, _ := f.Get(KeyCommand)
	s, _ := v.(string)
	return s
}

// MarshalJSON encodes the frame as an object in field order.
func (f Frame) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, field := range f {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(field.Key)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(field.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Sink receives frames.
type Sink interface {
	Send(f Frame) error
}

// Discard is a Sink that drops every frame.
var Discard Sink = discard{}

type discard struct{}

func (discard) Send(Frame) error { return nil }
