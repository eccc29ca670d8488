// Package player is the playback controller: it owns the catalog, the open
// track and the playback state, and feeds the decoder one chunk per tick.
//
// A Player is not safe for concurrent use. One loop calls Tick and every
// control method; see package app.
package player

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/samber/lo"

	"github.com/llehouerou/sdjuke/internal/catalog"
	"github.com/llehouerou/sdjuke/internal/decoder"
	"github.com/llehouerou/sdjuke/internal/notify"
	"github.com/llehouerou/sdjuke/internal/playback"
	"github.com/llehouerou/sdjuke/internal/storage"
	"github.com/llehouerou/sdjuke/internal/tags"
)

// Messages sent to the host.
const (
	MsgNextSong     = "Next Song"
	MsgMediaChanged = "Media changed"
)

// DefaultChunkSize is the number of bytes moved to the decoder per tick.
const DefaultChunkSize = 256

// Options configures a Player.
type Options struct {
	ChunkSize  int
	Repeat     bool
	Extensions []string // allowed 8.3 extensions, e.g. "MP3"
	Volume     VolumeCurve
}

// DefaultOptions returns 256-byte chunks, repeat on and MP3/WAV tracks.
func DefaultOptions() Options {
	return Options{
		ChunkSize:  DefaultChunkSize,
		Repeat:     true,
		Extensions: []string{"MP3", "WAV"},
		Volume:     DefaultVolumeCurve(),
	}
}

// Song is one catalog entry as reported to the host.
type Song struct {
	Number   int
	Filename string
	Size     int64
	tags.Tag
}

// ErrBeginDecoder wraps the error of a decoder that failed to start in Setup.
var ErrBeginDecoder = errors.New("begin decoder")

type Player struct {
	log   *slog.Logger
	store *catalog.Store
	media storage.Volume
	dec   decoder.Decoder
	sink  notify.Sink

	exts  []string
	curve VolumeCurve
	buf   []byte

	state     playback.State
	lastState playback.State
	repeat    playback.RepeatMode

	songs     []Song
	numTracks int
	current   int
	sess      session
	position  int
	seekAhead bool // position was set while no track was open
	tag       tags.Tag
	level     int
}

// New creates a player over the catalog store, the media volume and the
// decoder. Events go to sink. Call Setup before anything else.
func New(
	store *catalog.Store,
	media storage.Volume,
	dec decoder.Decoder,
	sink notify.Sink,
	opts Options,
) *Player {
	log := slog.Default().With("component", "player")
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	if len(opts.Extensions) == 0 {
		opts.Extensions = DefaultOptions().Extensions
	}
	if err := opts.Volume.Validate(); err != nil {
		log.Warn("invalid volume curve, using default", "error", err)
		opts.Volume = DefaultVolumeCurve()
	}
	if sink == nil {
		sink = notify.Discard
	}

	p := &Player{
		log:       log,
		store:     store,
		media:     media,
		dec:       dec,
		sink:      sink,
		exts:      lo.Map(opts.Extensions, func(e string, _ int) string { return padExt(e) }),
		curve:     opts.Volume,
		buf:       make([]byte, opts.ChunkSize),
		state:     playback.Idle,
		lastState: playback.Idle,
	}
	p.SetRepeat(opts.Repeat)
	return p
}

// padExt normalizes an extension to its upper-case, space-padded 8.3 form.
func padExt(ext string) string {
	ext = strings.ToUpper(strings.TrimPrefix(ext, "."))
	if len(ext) > 3 {
		ext = ext[:3]
	}
	return fmt.Sprintf("%-3s", ext)
}

// Setup restores the persisted state, starts the decoder, builds the catalog
// and reopens the persisted track at the persisted position.
func (p *Player) Setup(cfg decoder.Config) error {
	saved := p.store.Load()
	p.log.Debug("loaded state",
		"volume", saved.Volume, "track", saved.Track,
		"state", saved.State, "position", saved.Position)

	p.state = saved.State
	if !p.state.Valid() {
		p.state = playback.DirPlay
	}
	p.current = saved.Track

	if err := p.dec.Begin(cfg); err != nil {
		return fmt.Errorf("%w: %w", ErrBeginDecoder, err)
	}
	p.SetVolume(saved.Volume)

	if _, err := p.Scan(); err != nil {
		return fmt.Errorf("scan catalog: %w", err)
	}
	p.openCurrent()
	if p.sess.isOpen() {
		p.Seek(saved.Position)
	}
	if p.numTracks == 0 {
		p.state = playback.Idle
	}

	p.SendPlayerState()
	return nil
}

// openCurrent opens the current track, falling back to the first one when
// the index no longer fits the catalog.
func (p *Player) openCurrent() {
	if p.numTracks == 0 {
		p.closeTrack()
		p.current = 0
		return
	}
	if p.current < 0 || p.current >= p.numTracks {
		p.log.Debug("track out of range, using first", "track", p.current, "tracks", p.numTracks)
		p.current = 0
		p.store.CommitTrack(0)
	}
	p.open(p.current)
}

// Rescan rebuilds the catalog after the media changed. When the current
// index still names the open track it resumes at the same position;
// otherwise the track at that index opens from its start.
func (p *Player) Rescan() error {
	p.send(notify.Message(MsgMediaChanged))

	var name string
	wasOpen := p.sess.isOpen()
	if wasOpen {
		name = p.store.Entry(p.current)
	}
	position := p.position

	if _, err := p.Scan(); err != nil {
		p.closeTrack()
		p.numTracks = 0
		p.state = playback.Idle
		return fmt.Errorf("scan catalog: %w", err)
	}
	p.openCurrent()
	if wasOpen && p.sess.isOpen() && p.store.Entry(p.current) == name {
		p.Seek(position)
	}
	if p.numTracks == 0 {
		p.state = playback.Idle
	}
	p.SendPlayerState()
	return nil
}

// Tick runs one step of the state machine.
func (p *Player) Tick() {
	tickHandlers[p.state](p)
}

func (p *Player) IsPlaying() bool { return p.state.IsPlaying() }

func (p *Player) State() playback.State { return p.state }

// Track returns the current catalog index.
func (p *Player) Track() int { return p.current }

func (p *Player) NumTracks() int { return p.numTracks }

// Position returns the last reported position in percent.
func (p *Player) Position() int { return p.position }

func (p *Player) Title() string  { return p.tag.Title }
func (p *Player) Artist() string { return p.tag.Artist }
func (p *Player) Album() string  { return p.tag.Album }

// Songs returns the catalog built by the last scan.
func (p *Player) Songs() []Song {
	return append([]Song(nil), p.songs...)
}

func (p *Player) SetRepeat(on bool) {
	p.repeat = playback.RepeatOff
	if on {
		p.repeat = playback.RepeatAll
	}
}

func (p *Player) Repeat() bool { return p.repeat == playback.RepeatAll }

// Status is a snapshot of the player for readers outside the control loop.
type Status struct {
	State     playback.State
	Track     int
	NumTracks int
	Position  int
	Volume    int
	Repeat    bool
	Filename  string
	FileSize  int64
	tags.Tag
}

// Playing reports whether the snapshot was taken while playing.
func (s Status) Playing() bool { return s.State.IsPlaying() }

func (p *Player) Status() Status {
	st := Status{
		State:     p.state,
		Track:     p.current,
		NumTracks: p.numTracks,
		Position:  p.position,
		Volume:    p.Volume(),
		Repeat:    p.Repeat(),
		FileSize:  p.sess.size,
		Tag:       p.tag,
	}
	if p.current < p.numTracks {
		st.Filename = p.store.Entry(p.current)
	}
	return st
}

// SendPlayerState sends the full player state to the host.
func (p *Player) SendPlayerState() {
	f := notify.Command(notify.CmdConnected, notify.KV("volume", p.Volume()))
	p.send(append(f, p.songInfo()...))
}

func (p *Player) sendSong() {
	p.send(append(notify.Command(notify.CmdSong), p.songInfo()...))
}

func (p *Player) sendState() {
	p.send(notify.Command(notify.CmdState, notify.KV("state", p.state.Status())))
}

func (p *Player) songInfo() notify.Frame {
	var filename string
	if p.current < p.numTracks {
		filename = p.store.Entry(p.current)
	}
	return notify.Frame{
		notify.KV("title", p.tag.Title),
		notify.KV("artist", p.tag.Artist),
		notify.KV("album", p.tag.Album),
		notify.KV("songNumber", p.current),
		notify.KV("filename", filename),
		notify.KV("position", p.position),
		notify.KV("state", p.state.Status()),
	}
}

func (p *Player) send(f notify.Frame) {
	if err := p.sink.Send(f); err != nil {
		p.log.Debug("notify", "command", f.Command(), "error", err)
	}
}
