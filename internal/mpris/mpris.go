//go:build linux

package mpris

import (
	"fmt"
	"hash/fnv"
	"math"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/quarckster/go-mpris-server/pkg/server"
	"github.com/quarckster/go-mpris-server/pkg/types"

	"github.com/llehouerou/sdjuke/internal/player"
)

// Positions are percent of the track; MPRIS sees one second per percent.
const percentUnit = time.Second

// Adapter connects the player loop to MPRIS over D-Bus.
type Adapter struct {
	server *server.Server
}

// New creates and starts a new MPRIS adapter. mediaDir is searched for
// cover art.
func New(ctrl Controller, mediaDir string) (*Adapter, error) {
	a := &Adapter{
		server: server.NewServer("sdjuke", &rootAdapter{}, &playerAdapter{ctrl: ctrl, mediaDir: mediaDir}),
	}

	// Start the server in background
	go func() {
		_ = a.server.Listen()
	}()

	return a, nil
}

// Close stops the adapter and releases D-Bus resources.
func (a *Adapter) Close() error {
	return a.server.Stop()
}

// rootAdapter implements OrgMprisMediaPlayer2Adapter.
type rootAdapter struct{}

func (r *rootAdapter) Raise() error {
	return nil // Not supported
}

func (r *rootAdapter) Quit() error {
	return nil // Not supported - app manages its own lifecycle
}

func (r *rootAdapter) CanQuit() (bool, error) {
	return false, nil
}

func (r *rootAdapter) CanRaise() (bool, error) {
	return false, nil
}

func (r *rootAdapter) HasTrackList() (bool, error) {
	return false, nil // Track list interface not implemented
}

func (r *rootAdapter) Identity() (string, error) {
	return "sdjuke", nil
}

//nolint:revive // Method name required by interface.
func (r *rootAdapter) SupportedUriSchemes() ([]string, error) {
	return []string{}, nil
}

func (r *rootAdapter) SupportedMimeTypes() ([]string, error) {
	return []string{"audio/mpeg", "audio/mp3", "audio/wav"}, nil
}

// playerAdapter implements OrgMprisMediaPlayer2PlayerAdapter and LoopStatus.
type playerAdapter struct {
	ctrl     Controller
	mediaDir string
}

func (p *playerAdapter) do(fn func(player.Interface)) error {
	return p.ctrl.Do(fn)
}

func (p *playerAdapter) Next() error {
	return p.do(func(pl player.Interface) { pl.NextFile() })
}

func (p *playerAdapter) Previous() error {
	return p.do(func(pl player.Interface) { pl.PrevFile() })
}

func (p *playerAdapter) Pause() error {
	return p.do(func(pl player.Interface) { pl.Pause() })
}

func (p *playerAdapter) PlayPause() error {
	return p.do(func(pl player.Interface) {
		if pl.IsPlaying() {
			pl.Pause()
			return
		}
		pl.Play()
	})
}

// Stop pauses and rewinds the current track.
func (p *playerAdapter) Stop() error {
	return p.do(func(pl player.Interface) {
		pl.Pause()
		pl.Seek(0)
	})
}

func (p *playerAdapter) Play() error {
	return p.do(func(pl player.Interface) { pl.Play() })
}

func (p *playerAdapter) Seek(offset types.Microseconds) error {
	delta := toPercent(offset)
	return p.do(func(pl player.Interface) {
		pl.Seek(min(max(pl.Position()+delta, 0), 100))
	})
}

func (p *playerAdapter) SetPosition(_ string, position types.Microseconds) error {
	pct := toPercent(position)
	return p.do(func(pl player.Interface) { pl.Seek(pct) })
}

//nolint:revive // Method name required by interface.
func (p *playerAdapter) OpenUri(_ string) error {
	return nil // Not supported
}

func (p *playerAdapter) PlaybackStatus() (types.PlaybackStatus, error) {
	st := p.ctrl.Status()
	switch {
	case st.NumTracks == 0:
		return types.PlaybackStatusStopped, nil
	case st.Playing():
		return types.PlaybackStatusPlaying, nil
	default:
		return types.PlaybackStatusPaused, nil
	}
}

func (p *playerAdapter) Rate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) SetRate(_ float64) error {
	return nil // Not supported
}

func (p *playerAdapter) Metadata() (types.Metadata, error) {
	st := p.ctrl.Status()
	if st.Filename == "" {
		return types.Metadata{}, nil
	}

	title := st.Title
	if title == "" {
		title = st.Filename
	}
	meta := types.Metadata{
		TrackId:     dbus.ObjectPath(formatTrackID(st.Filename)),
		Length:      types.Microseconds((100 * percentUnit).Microseconds()),
		Title:       title,
		Album:       st.Album,
		TrackNumber: st.Track + 1,
	}
	if st.Artist != "" {
		meta.Artist = []string{st.Artist}
	}
	if artPath := FindAlbumArt(p.mediaDir); artPath != "" {
		meta.ArtUrl = "file://" + artPath
	}
	return meta, nil
}

func (p *playerAdapter) Volume() (float64, error) {
	return float64(p.ctrl.Status().Volume) / 100, nil
}

func (p *playerAdapter) SetVolume(v float64) error {
	pct := int(math.Round(v * 100))
	return p.do(func(pl player.Interface) { pl.SetVolume(pct) })
}

func (p *playerAdapter) Position() (int64, error) {
	return (time.Duration(p.ctrl.Status().Position) * percentUnit).Microseconds(), nil
}

func (p *playerAdapter) MinimumRate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) MaximumRate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) CanGoNext() (bool, error) {
	st := p.ctrl.Status()
	return st.Track < st.NumTracks-1 || (st.Repeat && st.NumTracks > 0), nil
}

func (p *playerAdapter) CanGoPrevious() (bool, error) {
	return p.ctrl.Status().Track > 0, nil
}

func (p *playerAdapter) CanPlay() (bool, error) {
	return p.ctrl.Status().NumTracks > 0, nil
}

func (p *playerAdapter) CanPause() (bool, error) {
	return true, nil
}

func (p *playerAdapter) CanSeek() (bool, error) {
	return true, nil
}

func (p *playerAdapter) CanControl() (bool, error) {
	return true, nil
}

// LoopStatus implements OrgMprisMediaPlayer2PlayerAdapterLoopStatus.
func (p *playerAdapter) LoopStatus() (types.LoopStatus, error) {
	if p.ctrl.Status().Repeat {
		return types.LoopStatusPlaylist, nil
	}
	return types.LoopStatusNone, nil
}

// SetLoopStatus implements OrgMprisMediaPlayer2PlayerAdapterLoopStatus.
// There is no single-track repeat; Track is treated as Playlist.
func (p *playerAdapter) SetLoopStatus(status types.LoopStatus) error {
	on := status != types.LoopStatusNone
	return p.do(func(pl player.Interface) { pl.SetRepeat(on) })
}

func toPercent(us types.Microseconds) int {
	return int((time.Duration(us) * time.Microsecond) / percentUnit)
}

func formatTrackID(name string) string {
	h := fnv.New64a()
	h.Write([]byte(name))
	return fmt.Sprintf("/org/mpris/MediaPlayer2/Track/%x", h.Sum64())
}
