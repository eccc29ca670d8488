// Package decoder defines the streaming audio decoder the player feeds raw
// file bytes into, and its backends.
package decoder

import "time"

// MaxLevel is the loudest volume level a decoder accepts.
const MaxLevel = 254

// DefaultSampleRate is the output rate used when Config leaves it unset.
const DefaultSampleRate = 44100

// Config configures a decoder at Begin.
type Config struct {
	SampleRate int           // output sample rate in Hz
	Buffer     time.Duration // output buffer length
}

// Decoder consumes a track as a stream of raw file bytes.
type Decoder interface {
	// Begin prepares the output. It is called once, before any Play.
	Begin(cfg Config) error
	// Play queues data for decoding. It blocks until the decoder can take
	// the bytes.
	Play(data []byte) error
	// SetVolume sets the output level in [0, MaxLevel].
	SetVolume(level int)
}

// StreamEnder is implemented by decoders that need to know where one track's
// byte stream stops and the next begins.
type StreamEnder interface {
	EndStream()
}

// EndStream tells d the current stream is over, if d cares.
func EndStream(d Decoder) {
	if e, ok := d.(StreamEnder); ok {
		e.EndStream()
	}
}

// StreamStopper is implemented by decoders that can drop the audio of the
// current stream that is already decoded but not yet heard.
type StreamStopper interface {
	StopStream()
}

// StopStream cuts the current stream short. Decoders that cannot cut it
// only end it.
func StopStream(d Decoder) {
	if s, ok := d.(StreamStopper); ok {
		s.StopStream()
		return
	}
	EndStream(d)
}

func clampLevel(level int) int {
	return min(max(level, 0), MaxLevel)
}
