package player

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/llehouerou/sdjuke/internal/notify"
	"github.com/llehouerou/sdjuke/internal/storage"
	"github.com/llehouerou/sdjuke/internal/tags"
)

// Scan rebuilds the catalog from the media root directory, in on-media
// order, and reports it to the host in one LIBRARY frame. The open track is
// closed; the current index is kept.
func (p *Player) Scan() ([]Song, error) {
	entries, err := p.media.Entries()
	if err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}

	p.closeTrack()
	previous := p.current

	var songs []Song
	for _, e := range entries {
		if len(songs) >= p.store.MaxTracks() || e.IsFree() {
			break
		}
		if !p.eligible(e) {
			continue
		}
		name := e.Filename()
		index := len(songs)
		p.store.SetEntry(index, name)
		songs = append(songs, p.probe(index, name))
	}

	p.songs = songs
	p.numTracks = len(songs)
	p.current = previous
	p.log.Info("catalog built", "tracks", p.numTracks)

	p.send(notify.Command(notify.CmdLibrary,
		notify.KV("songs", lo.Map(songs, func(s Song, _ int) notify.Frame {
			return s.frame()
		})),
	))
	return p.Songs(), nil
}

func (p *Player) eligible(e storage.DirEntry) bool {
	if e.IsDeleted() || e.IsDot() || !e.IsFile() {
		return false
	}
	return lo.Contains(p.exts, e.Ext())
}

// probe reads the tags of a track. A track that cannot be opened is still
// listed, without tags.
func (p *Player) probe(index int, name string) Song {
	song := Song{Number: index, Filename: name}
	h, err := p.media.Open(name)
	if err != nil {
		p.log.Warn("probe track", "file", name, "error", err)
		return song
	}
	defer h.Close()
	song.Size = h.Size()
	song.Tag = tags.Extract(h)
	return song
}

func (s Song) frame() notify.Frame {
	return notify.Frame{
		notify.KV("title", s.Title),
		notify.KV("artist", s.Artist),
		notify.KV("album", s.Album),
		notify.KV("songNumber", s.Number),
	}
}
