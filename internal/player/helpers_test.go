package player

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/llehouerou/sdjuke/internal/catalog"
	"github.com/llehouerou/sdjuke/internal/decoder"
	"github.com/llehouerou/sdjuke/internal/notify"
	"github.com/llehouerou/sdjuke/internal/nvram"
	"github.com/llehouerou/sdjuke/internal/storage"
)

// fakeCard is a storage.Volume with raw directory entries.
type fakeCard struct {
	entries  []storage.DirEntry
	files    map[string][]byte
	openErr  map[string]error
	entryErr error
	open     int // handles currently open
	maxOpen  int
	opened   []string
}

func newFakeCard() *fakeCard {
	return &fakeCard{files: map[string][]byte{}, openErr: map[string]error{}}
}

// add appends a file entry with contents data.
func (c *fakeCard) add(name string, data []byte) *fakeCard {
	c.entries = append(c.entries, storage.DirEntry{Name: storage.PackName(name), Attr: storage.AttrArchive})
	c.files[name] = data
	return c
}

// addRaw appends an entry without contents.
func (c *fakeCard) addRaw(raw string, attr byte) *fakeCard {
	var e storage.DirEntry
	copy(e.Name[:], raw)
	e.Attr = attr
	c.entries = append(c.entries, e)
	return c
}

func (c *fakeCard) Entries() ([]storage.DirEntry, error) {
	if c.entryErr != nil {
		return nil, c.entryErr
	}
	return c.entries, nil
}

func (c *fakeCard) Open(name string) (storage.Handle, error) {
	if err := c.openErr[name]; err != nil {
		return nil, err
	}
	data, ok := c.files[name]
	if !ok {
		return nil, storage.ErrNotFound
	}
	c.open++
	c.maxOpen = max(c.maxOpen, c.open)
	c.opened = append(c.opened, name)
	return &fakeHandle{Reader: bytes.NewReader(data), card: c}, nil
}

type fakeHandle struct {
	*bytes.Reader
	card   *fakeCard
	closed bool
}

func (h *fakeHandle) Close() error {
	if h.closed {
		return errors.New("already closed")
	}
	h.closed = true
	h.card.open--
	return nil
}

func (h *fakeHandle) Size() int64 { return h.Reader.Size() }

type testRig struct {
	p    *Player
	card *fakeCard
	dev  *nvram.Memory
	st   *catalog.Store
	dec  *decoder.Mock
	rec  *notify.Recorder
}

func newRig(t *testing.T, card *fakeCard, opts Options) *testRig {
	t.Helper()
	dev := nvram.NewMemory(catalog.RequiredSize(30))
	st, err := catalog.New(dev, 30, 62)
	require.NoError(t, err)
	dec := decoder.NewMock()
	rec := notify.NewRecorder()
	return &testRig{
		p:    New(st, card, dec, rec, opts),
		card: card,
		dev:  dev,
		st:   st,
		dec:  dec,
		rec:  rec,
	}
}

// setup runs Setup and forgets the boot frames and decoder calls.
func (r *testRig) setup(t *testing.T) {
	t.Helper()
	require.NoError(t, r.p.Setup(decoder.Config{}))
	r.rec.Reset()
	r.dec.Reset()
}

func track(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i)
	}
	return b
}

func positions(frames []notify.Frame) []int {
	var out []int
	for _, f := range frames {
		v, _ := f.Get("position")
		out = append(out, v.(int))
	}
	return out
}
