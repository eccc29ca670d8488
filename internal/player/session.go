package player

import (
	"io"

	"github.com/llehouerou/sdjuke/internal/decoder"
	"github.com/llehouerou/sdjuke/internal/storage"
	"github.com/llehouerou/sdjuke/internal/tags"
)

// session is the single open track.
type session struct {
	h           storage.Handle
	size        int64
	bytesPlayed int64
}

func (s *session) isOpen() bool { return s.h != nil }

// read fills buf as far as the track allows. Fewer bytes than len(buf)
// means the track is over. A closed session reads nothing.
func (s *session) read(buf []byte) int {
	if s.h == nil {
		return 0
	}
	n, _ := io.ReadFull(s.h, buf)
	return n
}

// open makes index the current track and opens it from the start. A track
// that fails to open leaves the session closed; the next tick then ends it.
func (p *Player) open(index int) {
	p.closeTrack()

	p.current = index
	p.position = 0
	p.seekAhead = false
	p.store.CommitPosition(0)
	p.tag = tags.Tag{}

	name := p.store.Entry(index)
	h, err := p.media.Open(name)
	if err != nil {
		p.log.Warn("open track", "track", index, "file", name, "error", err)
		p.sendSong()
		return
	}
	p.sess = session{h: h, size: h.Size()}

	p.tag = tags.Extract(h)
	if _, err := h.Seek(0, io.SeekStart); err != nil {
		p.log.Warn("rewind track", "file", name, "error", err)
		p.closeTrack()
	}
	p.log.Debug("opened track", "track", index, "file", name, "size", p.sess.size)
	p.sendSong()
}

// closeTrack releases the open track, if any, and cuts its decoder stream.
func (p *Player) closeTrack() { p.release(decoder.StopStream) }

// finishTrack releases a track played to its end. Audio the decoder still
// holds plays out.
func (p *Player) finishTrack() { p.release(decoder.EndStream) }

func (p *Player) release(end func(decoder.Decoder)) {
	if !p.sess.isOpen() {
		return
	}
	if err := p.sess.h.Close(); err != nil {
		p.log.Debug("close track", "error", err)
	}
	p.sess = session{}
	end(p.dec)
}

// Close releases the open track. The player can still be used; the next
// open or Play reopens a track.
func (p *Player) Close() { p.closeTrack() }

// FileSize returns the size of the open track, 0 when none is open.
func (p *Player) FileSize() int64 { return p.sess.size }

// Seek moves to percent of the current track. It returns percent, or 0 when
// percent is outside [0, 100]. With no track open the position is kept and
// applied when Play reopens the track.
func (p *Player) Seek(percent int) int {
	if percent < 0 || percent > 100 {
		return 0
	}
	offset := int64(percent) * (p.sess.size / 100)
	if p.sess.isOpen() {
		if _, err := p.sess.h.Seek(offset, io.SeekStart); err != nil {
			p.log.Warn("seek", "offset", offset, "error", err)
		}
	}
	p.sess.bytesPlayed = offset
	p.position = percent
	p.seekAhead = !p.sess.isOpen()
	p.store.CommitPosition(percent)
	p.log.Debug("seek", "percent", percent, "offset", offset)
	return percent
}
