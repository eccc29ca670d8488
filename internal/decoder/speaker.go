package decoder

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/wav"
	"github.com/samber/lo"
)

// Speaker decodes MP3 and WAV byte streams and plays them on the system
// audio output.
//
// Each stream is written into a pipe read by a decoding goroutine, so Play
// blocks until the audio pipeline has consumed the previous bytes. A new
// stream is heard once the ones before it have drained.
type Speaker struct {
	log   *slog.Logger
	rate  beep.SampleRate
	level atomic.Int32

	mu   sync.Mutex
	pw   *io.PipeWriter
	live []*gain // started and not yet drained, oldest first
}

// NewSpeaker creates a speaker backend at full level.
func NewSpeaker() *Speaker {
	s := &Speaker{log: slog.Default().With("component", "decoder")}
	s.level.Store(MaxLevel)
	return s
}

func (s *Speaker) Begin(cfg Config) error {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = DefaultSampleRate
	}
	if cfg.Buffer <= 0 {
		cfg.Buffer = time.Second / 10
	}
	s.rate = beep.SampleRate(cfg.SampleRate)
	if err := speaker.Init(s.rate, s.rate.N(cfg.Buffer)); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}
	return nil
}

func (s *Speaker) Play(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	s.mu.Lock()
	if s.pw == nil {
		s.start()
	}
	pw := s.pw
	s.mu.Unlock()

	if _, err := pw.Write(data); err != nil {
		return fmt.Errorf("decode stream: %w", err)
	}
	return nil
}

func (s *Speaker) SetVolume(level int) {
	s.level.Store(int32(clampLevel(level))) //nolint:gosec // clamped to [0, MaxLevel]
}

// EndStream closes the current stream. Audio already decoded plays out
// before the next stream is heard.
func (s *Speaker) EndStream() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeWriter()
}

// StopStream closes the current stream and silences every stream still
// playing or waiting to play.
func (s *Speaker) StopStream() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeWriter()
	for _, g := range s.live {
		g.stop()
	}
	s.live = nil
}

// closeWriter is called with mu held.
func (s *Speaker) closeWriter() {
	if s.pw != nil {
		s.pw.Close()
		s.pw = nil
	}
}

// start opens a new stream queued behind the live ones. Called with mu held.
func (s *Speaker) start() {
	s.live = lo.Reject(s.live, func(g *gain, _ int) bool { return g.finished() })
	var after <-chan struct{}
	if n := len(s.live); n > 0 {
		after = s.live[n-1].done
	}
	pr, pw := io.Pipe()
	g := newGain(&s.level)
	s.pw = pw
	s.live = append(s.live, g)
	go s.decode(pr, g, after)
}

// decode plays the stream read from pr once after is closed.
func (s *Speaker) decode(pr *io.PipeReader, g *gain, after <-chan struct{}) {
	streamer, format, err := open(bufio.NewReader(pr))
	if err != nil {
		s.log.Warn("unsupported stream", "error", err)
		pr.CloseWithError(err)
		g.finish()
		return
	}
	if format.SampleRate != s.rate {
		streamer = beep.Resample(4, format.SampleRate, s.rate, streamer)
	}
	g.s = streamer
	if after != nil {
		<-after
	}
	speaker.Play(beep.Seq(g, beep.Callback(func() {
		g.finish()
		// Unblock a writer still feeding a stream that was cut.
		pr.Close()
	})))
}

var riffMagic = []byte("RIFF")

// open picks the codec from the first bytes of the stream.
func open(br *bufio.Reader) (beep.Streamer, beep.Format, error) {
	head, _ := br.Peek(len(riffMagic))
	if bytes.Equal(head, riffMagic) {
		s, f, err := wav.Decode(br)
		return s, f, err
	}
	return decodeMP3(br)
}

// gain scales a stream by the current level and can be cut short. done is
// closed once the stream is over.
type gain struct {
	s       beep.Streamer
	level   *atomic.Int32
	stopped atomic.Bool
	done    chan struct{}
	once    sync.Once
}

func newGain(level *atomic.Int32) *gain {
	return &gain{level: level, done: make(chan struct{})}
}

func (g *gain) stop() {
	g.stopped.Store(true)
	g.finish()
}

func (g *gain) finish() {
	g.once.Do(func() { close(g.done) })
}

func (g *gain) finished() bool {
	select {
	case <-g.done:
		return true
	default:
		return false
	}
}

func (g *gain) Stream(samples [][2]float64) (int, bool) {
	if g.stopped.Load() {
		return 0, false
	}
	n, ok := g.s.Stream(samples)
	applyGain(samples[:n], g.level.Load())
	return n, ok
}

func (g *gain) Err() error {
	return g.s.Err()
}

func applyGain(samples [][2]float64, level int32) {
	k := float64(level) / MaxLevel
	for i := range samples {
		samples[i][0] *= k
		samples[i][1] *= k
	}
}

var (
	_ Decoder       = (*Speaker)(nil)
	_ StreamEnder   = (*Speaker)(nil)
	_ StreamStopper = (*Speaker)(nil)
)
