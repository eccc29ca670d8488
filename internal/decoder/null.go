package decoder

import "time"

// Null discards audio. With a byte rate set it paces Play like a decoder
// draining a buffer at that rate.
type Null struct {
	bytesPerSecond int
	level          int
	sleep          func(time.Duration)
}

// NewNull creates a Null decoder. A zero rate accepts bytes immediately.
func NewNull(bytesPerSecond int) *Null {
	return &Null{bytesPerSecond: bytesPerSecond, level: MaxLevel, sleep: time.Sleep}
}

func (n *Null) Begin(Config) error { return nil }

func (n *Null) Play(data []byte) error {
	if n.bytesPerSecond > 0 && len(data) > 0 {
		n.sleep(time.Duration(len(data)) * time.Second / time.Duration(n.bytesPerSecond))
	}
	return nil
}

func (n *Null) SetVolume(level int) { n.level = clampLevel(level) }

// Level returns the last level set.
func (n *Null) Level() int { return n.level }

var _ Decoder = (*Null)(nil)
