package app

import (
	"strconv"
	"sync"

	"github.com/llehouerou/sdjuke/internal/playback"
	"github.com/llehouerou/sdjuke/internal/player"
)

// fakePlayer records control calls. Ticking while playing counts down
// ticksLeft and goes idle when it runs out.
type fakePlayer struct {
	player.Interface
	playing   bool
	ticks     int
	ticksLeft int
	volume    int
	repeat    bool
	rescans   int
	calls     []string
}

func (f *fakePlayer) record(call string) { f.calls = append(f.calls, call) }

func (f *fakePlayer) Tick() {
	f.ticks++
	if f.playing {
		f.ticksLeft--
		if f.ticksLeft <= 0 {
			f.playing = false
		}
	}
}

func (f *fakePlayer) IsPlaying() bool { return f.playing }

func (f *fakePlayer) Play() bool {
	f.record("play")
	f.playing = true
	return true
}

func (f *fakePlayer) Pause() bool {
	f.record("pause")
	f.playing = false
	return true
}

func (f *fakePlayer) NextFile() bool { f.record("next"); return true }
func (f *fakePlayer) PrevFile() bool { f.record("prev"); return true }

func (f *fakePlayer) Seek(p int) int {
	f.record("seek " + strconv.Itoa(p))
	return p
}

func (f *fakePlayer) SetVolume(p int) int {
	f.record("volume " + strconv.Itoa(p))
	f.volume = p
	return p
}

func (f *fakePlayer) SetSong(i int) bool    { f.record("song " + strconv.Itoa(i)); return true }
func (f *fakePlayer) PlaySingle(i int) bool { f.record("single " + strconv.Itoa(i)); return true }

func (f *fakePlayer) SetRepeat(on bool) {
	if on {
		f.record("repeat on")
	} else {
		f.record("repeat off")
	}
	f.repeat = on
}

func (f *fakePlayer) SendPlayerState() { f.record("status") }

func (f *fakePlayer) Rescan() error {
	f.rescans++
	return nil
}

func (f *fakePlayer) Status() player.Status {
	st := player.Status{State: playback.Idle, Volume: f.volume, Repeat: f.repeat, Position: f.ticks}
	if f.playing {
		st.State = playback.DirPlay
	}
	return st
}

// directRunner runs requests on the calling goroutine, serialized.
type directRunner struct {
	mu  sync.Mutex
	p   *fakePlayer
	err error
}

func (r *directRunner) Do(fn func(player.Interface)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	fn(r.p)
	return nil
}

func (r *directRunner) rescans() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.p.rescans
}
