package decoder

import "sync"

// Mock is a test double for Decoder.
type Mock struct {
	mu       sync.Mutex
	begun    []Config
	beginErr error
	playErr  error
	chunks   [][]byte
	levels   []int
	ends     int
	stops    int
}

// NewMock creates a new mock decoder for testing.
func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) Begin(cfg Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.begun = append(m.begun, cfg)
	return m.beginErr
}

func (m *Mock) Play(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chunks = append(m.chunks, append([]byte(nil), data...))
	return m.playErr
}

func (m *Mock) SetVolume(level int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.levels = append(m.levels, level)
}

func (m *Mock) EndStream() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ends++
}

func (m *Mock) StopStream() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stops++
}

// Test helpers

func (m *Mock) SetBeginError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.beginErr = err
}

func (m *Mock) SetPlayError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playErr = err
}

// Begun returns the configs passed to Begin.
func (m *Mock) Begun() []Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Config(nil), m.begun...)
}

// ChunkSizes returns the length of every Play call.
func (m *Mock) ChunkSizes() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	sizes := make([]int, len(m.chunks))
	for i, c := range m.chunks {
		sizes[i] = len(c)
	}
	return sizes
}

// Bytes returns everything played, concatenated.
func (m *Mock) Bytes() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []byte
	for _, c := range m.chunks {
		out = append(out, c...)
	}
	return out
}

// Levels returns every level passed to SetVolume.
func (m *Mock) Levels() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int(nil), m.levels...)
}

// Ends returns how many times EndStream was called.
func (m *Mock) Ends() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ends
}

// Stops returns how many times StopStream was called.
func (m *Mock) Stops() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stops
}

// Reset forgets recorded calls.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.begun, m.chunks, m.levels, m.ends, m.stops = nil, nil, nil, 0, 0
}

var (
	_ Decoder       = (*Mock)(nil)
	_ StreamEnder   = (*Mock)(nil)
	_ StreamStopper = (*Mock)(nil)
)
