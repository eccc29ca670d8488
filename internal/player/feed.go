package player

import (
	"github.com/llehouerou/sdjuke/internal/notify"
	"github.com/llehouerou/sdjuke/internal/playback"
)

// feed moves one chunk of the current track to the decoder and reports the
// position when it grows. At the end of the track it closes the session,
// goes idle and returns false.
func (p *Player) feed() bool {
	n := p.sess.read(p.buf)
	if n > 0 {
		if err := p.dec.Play(p.buf[:n]); err != nil {
			p.log.Debug("decoder play", "error", err)
		}
	}
	p.sess.bytesPlayed += int64(n)

	if p.sess.size > 0 {
		pos := int(p.sess.bytesPlayed * 100 / p.sess.size)
		if pos > p.position {
			p.position = pos
			p.send(notify.Command(notify.CmdSeek, notify.KV("position", pos)))
		}
	}

	if n < len(p.buf) {
		p.log.Debug("end of track", "track", p.current, "bytes", p.sess.bytesPlayed)
		p.finishTrack()
		p.state = playback.Idle
		return false
	}
	return true
}
