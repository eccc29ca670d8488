package player

import (
	"github.com/llehouerou/sdjuke/internal/notify"
	"github.com/llehouerou/sdjuke/internal/playback"
)

// tickHandlers holds the tick step of every state.
var tickHandlers = [...]func(*Player){
	playback.DirPlay:    (*Player).tickDirPlay,
	playback.SinglePlay: (*Player).tickSinglePlay,
	playback.Idle:       (*Player).tickIdle,
}

// tickDirPlay plays the catalog in order, moving to the next track when one
// ends. Without a next track the player stays idle.
func (p *Player) tickDirPlay() {
	if p.current >= p.numTracks {
		return
	}
	if p.feed() {
		return
	}
	if _, ok := p.repeat.NextIndex(p.current, p.numTracks); !ok {
		p.log.Debug("end of catalog")
		return
	}
	p.state = playback.DirPlay
	p.send(notify.Message(MsgNextSong))
	p.NextFile()
}

// tickSinglePlay plays the current track and stops at its end.
func (p *Player) tickSinglePlay() {
	p.feed()
}

func (p *Player) tickIdle() {}

// Pause stops feeding the decoder. It reports false when already idle.
func (p *Player) Pause() bool {
	next, remembered, ok := p.state.Pause()
	if !ok {
		return false
	}
	p.lastState = remembered
	p.state = next
	p.store.CommitState(next)
	p.log.Debug("pause", "remembered", remembered)
	p.sendState()
	return true
}

// Play resumes the state active before the last pause, or DirPlay. A track
// that already ended is reopened from its start, or from the position of a
// Seek made since it ended. It reports false when not idle or the catalog is
// empty.
func (p *Player) Play() bool {
	next, ok := p.state.Resume(p.lastState)
	if !ok || p.numTracks == 0 {
		return false
	}
	if !p.sess.isOpen() {
		seekAhead, position := p.seekAhead, p.position
		p.open(p.current)
		if seekAhead && p.sess.isOpen() {
			p.Seek(position)
		}
	}
	p.state = next
	p.store.CommitState(next)
	p.log.Debug("play", "state", next)
	p.sendState()
	return true
}

// SetSong makes index the current track, from its start.
func (p *Player) SetSong(index int) bool {
	if index < 0 || index >= p.numTracks {
		return false
	}
	p.log.Debug("set song", "track", index)
	p.open(index)
	p.store.CommitTrack(index)
	return true
}

// PlaySingle plays track index alone, then stops.
func (p *Player) PlaySingle(index int) bool {
	if !p.SetSong(index) {
		return false
	}
	p.state = playback.SinglePlay
	p.store.CommitState(p.state)
	p.sendState()
	return true
}

// NextFile moves to the next track, wrapping to the first one when repeat
// is on. It reports false at the end of the catalog.
func (p *Player) NextFile() bool {
	next, ok := p.repeat.NextIndex(p.current, p.numTracks)
	if !ok {
		return false
	}
	p.log.Debug("next file", "track", next)
	p.open(next)
	p.store.CommitTrack(next)
	return true
}

// PrevFile moves to the previous track. It reports false on the first one.
func (p *Player) PrevFile() bool {
	if p.current <= 0 || p.numTracks == 0 {
		return false
	}
	prev := min(p.current, p.numTracks) - 1
	p.log.Debug("prev file", "track", prev)
	p.open(prev)
	p.store.CommitTrack(prev)
	return true
}
