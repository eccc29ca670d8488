package player

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/sdjuke/internal/catalog"
	"github.com/llehouerou/sdjuke/internal/decoder"
	"github.com/llehouerou/sdjuke/internal/notify"
	"github.com/llehouerou/sdjuke/internal/nvram"
	"github.com/llehouerou/sdjuke/internal/storage"
)

func mixedCard() *fakeCard {
	return newFakeCard().
		addRaw(".          ", storage.AttrDirectory).
		add("SONG1.MP3", track(10)).
		addRaw("\xe5ONG2   MP3", storage.AttrArchive).
		add("NOTES.TXT", track(10)).
		addRaw("ALBUMS     ", storage.AttrDirectory).
		addRaw("MUSIC   MP3", storage.AttrDirectory).
		addRaw("CARD       ", storage.AttrVolumeID).
		add("TUNE.WAV", track(10)).
		add("INTRO.MP3", track(10))
}

func TestScan_FiltersAndKeepsOrder(t *testing.T) {
	r := newRig(t, mixedCard(), DefaultOptions())

	songs, err := r.p.Scan()

	require.NoError(t, err)
	names := make([]string, len(songs))
	for i, s := range songs {
		names[i] = s.Filename
		assert.Equal(t, i, s.Number)
		assert.Equal(t, int64(10), s.Size)
	}
	assert.Equal(t, []string{"SONG1.MP3", "TUNE.WAV", "INTRO.MP3"}, names)
	assert.Equal(t, 3, r.p.NumTracks())
	for i, want := range names {
		assert.Equal(t, want, r.st.Entry(i))
	}
}

func TestScan_StopsAtFreeEntry(t *testing.T) {
	card := newFakeCard().add("A.MP3", track(10))
	card.entries = append(card.entries, storage.DirEntry{})
	card.add("B.MP3", track(10))
	r := newRig(t, card, DefaultOptions())

	songs, err := r.p.Scan()

	require.NoError(t, err)
	assert.Len(t, songs, 1)
}

func TestScan_BoundedByCapacity(t *testing.T) {
	card := mixedCard().add("EXTRA1.MP3", track(10)).add("EXTRA2.MP3", track(10))
	dev := nvram.NewMemory(catalog.RequiredSize(2))
	st, err := catalog.New(dev, 2, 50)
	require.NoError(t, err)
	p := New(st, card, decoder.NewMock(), nil, DefaultOptions())

	songs, err := p.Scan()

	require.NoError(t, err)
	require.Len(t, songs, 2)
	assert.Equal(t, "SONG1.MP3", songs[0].Filename)
	assert.Equal(t, "TUNE.WAV", songs[1].Filename)
}

func TestScan_ExtensionOption(t *testing.T) {
	opts := DefaultOptions()
	opts.Extensions = []string{"txt"}
	r := newRig(t, mixedCard(), opts)

	songs, err := r.p.Scan()

	require.NoError(t, err)
	require.Len(t, songs, 1)
	assert.Equal(t, "NOTES.TXT", songs[0].Filename)
}

func TestScan_ProbeFailureStillCatalogs(t *testing.T) {
	card := newFakeCard().
		add("A.MP3", withID3v1("Title", "Artist", "Album")).
		add("B.MP3", track(10))
	card.openErr["B.MP3"] = assert.AnError
	r := newRig(t, card, DefaultOptions())

	songs, err := r.p.Scan()

	require.NoError(t, err)
	require.Len(t, songs, 2)
	assert.Equal(t, "Title", songs[0].Title)
	assert.Equal(t, "B.MP3", songs[1].Filename)
	assert.True(t, songs[1].Tag.IsZero())
	assert.Zero(t, card.open, "probe handles closed")
}

func TestScan_RestoresCurrentTrackAndReportsLibrary(t *testing.T) {
	card := newFakeCard().
		add("A.MP3", withID3v1("Song A", "Band", "LP")).
		add("B.MP3", track(10))
	r := newRig(t, card, DefaultOptions())
	r.p.current = 1

	_, err := r.p.Scan()
	require.NoError(t, err)

	assert.Equal(t, 1, r.p.Track())
	frames := r.rec.Commands(notify.CmdLibrary)
	require.Len(t, frames, 1)
	v, _ := frames[0].Get("songs")
	songs, ok := v.([]notify.Frame)
	require.True(t, ok)
	require.Len(t, songs, 2)
	title, _ := songs[0].Get("title")
	assert.Equal(t, "Song A", title)
	num, _ := songs[1].Get("songNumber")
	assert.Equal(t, 1, num)
}
