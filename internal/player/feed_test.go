package player

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/sdjuke/internal/notify"
	"github.com/llehouerou/sdjuke/internal/playback"
)

func TestTick_DrainsTrackInChunks(t *testing.T) {
	card := newFakeCard().add("SONG1.MP3", track(1000))
	opts := DefaultOptions()
	opts.Repeat = false
	r := newRig(t, card, opts)
	r.setup(t)
	require.Equal(t, playback.DirPlay, r.p.State())

	for range 3 {
		r.p.Tick()
		assert.Equal(t, playback.DirPlay, r.p.State())
	}
	r.p.Tick()

	assert.Equal(t, []int{256, 256, 256, 232}, r.dec.ChunkSizes())
	assert.Equal(t, track(1000), r.dec.Bytes())
	assert.Equal(t, []int{25, 51, 76, 100}, positions(r.rec.Commands(notify.CmdSeek)))
	assert.Equal(t, 100, r.p.Position())
	assert.Equal(t, playback.Idle, r.p.State())
	assert.False(t, r.p.IsPlaying())
	assert.False(t, r.p.sess.isOpen())
	assert.Zero(t, card.open, "track handle left open")
	assert.Equal(t, 1, r.dec.Ends())
	assert.Zero(t, r.dec.Stops(), "a finished track plays out")
	assert.Empty(t, r.rec.Messages(), "no next song without repeat")
}

func TestTick_NoDuplicatePositionReports(t *testing.T) {
	// 10 chunks per percent: most ticks leave the percent unchanged.
	card := newFakeCard().add("SONG1.MP3", track(256*1000))
	r := newRig(t, card, DefaultOptions())
	r.setup(t)

	for range 50 {
		r.p.Tick()
	}

	got := positions(r.rec.Commands(notify.CmdSeek))
	want := []int{1, 2, 3, 4, 5}
	assert.Equal(t, want, got)
}

func TestTick_AdvancesToNextTrack(t *testing.T) {
	card := newFakeCard().
		add("A.MP3", track(300)).
		add("B.MP3", track(300))
	r := newRig(t, card, DefaultOptions())
	r.setup(t)

	r.p.Tick() // 256
	r.p.Tick() // 44, end of A

	assert.Equal(t, playback.DirPlay, r.p.State())
	assert.Equal(t, 1, r.p.Track())
	assert.Equal(t, 1, r.st.Snapshot().Track)
	assert.Equal(t, 0, r.p.Position())
	assert.Equal(t, []string{MsgNextSong}, r.rec.Messages())

	songs := r.rec.Commands(notify.CmdSong)
	require.Len(t, songs, 1)
	filename, _ := songs[0].Get("filename")
	assert.Equal(t, "B.MP3", filename)
	assert.LessOrEqual(t, card.maxOpen, 1)
}

func TestTick_WrapsWithRepeat(t *testing.T) {
	card := newFakeCard().
		add("A.MP3", track(100)).
		add("B.MP3", track(100))
	r := newRig(t, card, DefaultOptions())
	r.setup(t)
	require.True(t, r.p.SetSong(1))

	r.p.Tick()

	assert.Equal(t, 0, r.p.Track())
	assert.Equal(t, playback.DirPlay, r.p.State())
}

func TestTick_SinglePlayStopsAtEnd(t *testing.T) {
	card := newFakeCard().
		add("A.MP3", track(100)).
		add("B.MP3", track(100))
	r := newRig(t, card, DefaultOptions())
	r.setup(t)
	require.True(t, r.p.PlaySingle(0))

	r.p.Tick()

	assert.Equal(t, playback.Idle, r.p.State())
	assert.Equal(t, 0, r.p.Track())
	assert.Empty(t, r.rec.Messages())
}

func TestTick_UnopenableTrackEndsImmediately(t *testing.T) {
	card := newFakeCard().
		add("A.MP3", track(100)).
		add("B.MP3", track(100))
	card.openErr["A.MP3"] = assert.AnError
	r := newRig(t, card, DefaultOptions())
	r.setup(t)

	r.p.Tick()

	assert.Empty(t, r.dec.ChunkSizes(), "nothing to feed")
	assert.Equal(t, 1, r.p.Track())
	assert.Equal(t, playback.DirPlay, r.p.State())
}

func TestTick_IdleDoesNothing(t *testing.T) {
	card := newFakeCard().add("A.MP3", track(1000))
	r := newRig(t, card, DefaultOptions())
	r.setup(t)
	r.p.Pause()
	r.rec.Reset()

	r.p.Tick()

	assert.Empty(t, r.dec.ChunkSizes())
	assert.Empty(t, r.rec.Frames())
}

func TestTick_ChunkSizeOption(t *testing.T) {
	card := newFakeCard().add("A.MP3", track(100))
	opts := DefaultOptions()
	opts.ChunkSize = 32
	r := newRig(t, card, opts)
	r.setup(t)

	for range 4 {
		r.p.Tick()
	}

	assert.Equal(t, []int{32, 32, 32, 4}, r.dec.ChunkSizes())
}

func TestTick_DecoderErrorDoesNotStopPlayback(t *testing.T) {
	card := newFakeCard().add("A.MP3", track(1000))
	r := newRig(t, card, DefaultOptions())
	r.setup(t)
	r.dec.SetPlayError(assert.AnError)

	r.p.Tick()

	assert.Equal(t, playback.DirPlay, r.p.State())
	assert.Equal(t, 25, r.p.Position())
}
