package player

import "github.com/llehouerou/sdjuke/internal/playback"

// Interface is the control surface driven by the app loop.
type Interface interface {
	Tick()
	IsPlaying() bool
	Pause() bool
	Play() bool
	Seek(percent int) int
	SetVolume(percent int) int
	Volume() int
	NextFile() bool
	PrevFile() bool
	SetSong(index int) bool
	PlaySingle(index int) bool
	SetRepeat(on bool)
	Repeat() bool
	State() playback.State
	Track() int
	NumTracks() int
	Position() int
	Title() string
	Artist() string
	Album() string
	Status() Status
	Rescan() error
	SendPlayerState()
}

// Verify Player implements Interface at compile time.
var _ Interface = (*Player)(nil)
