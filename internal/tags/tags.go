// Package tags extracts the title, artist and album of a track from its
// embedded ID3 tags. Both the variable-length ID3v2 format at the start of a
// file and the fixed 128 byte ID3v1 trailer are understood.
package tags

import (
	"errors"
	"io"
	"strings"

	"github.com/bogem/id3v2/v2"
	"github.com/dhowden/tag"
	"github.com/rivo/uniseg"
)

// MaxTextLen bounds every extracted field, in bytes.
const MaxTextLen = 60

// Tag holds the fields reported for a track. Missing fields are empty.
type Tag struct {
	Title  string
	Artist string
	Album  string
}

// IsZero reports whether no field was found.
func (t Tag) IsZero() bool {
	return t.Title == "" && t.Artist == "" && t.Album == ""
}

// Extract reads the tags of r. Absent or malformed tags yield an empty Tag.
// The read position of r is left unspecified; callers that keep reading
// must seek back.
func Extract(r io.ReadSeeker) Tag {
	t, err := read(r)
	if err != nil {
		return Tag{}
	}
	return Tag{
		Title:  Truncate(t.Title, MaxTextLen),
		Artist: Truncate(t.Artist, MaxTextLen),
		Album:  Truncate(t.Album, MaxTextLen),
	}
}

func read(r io.ReadSeeker) (Tag, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return Tag{}, err
	}
	m, err := tag.ReadFrom(r)
	if err == nil {
		t := Tag{Title: m.Title(), Artist: m.Artist(), Album: m.Album()}
		if !t.IsZero() {
			return t, nil
		}
	}

	// dhowden/tag has issues with some UTF-16 encoded ID3v2 tags.
	if t, err := readID3v2(r); err == nil && !t.IsZero() {
		return t, nil
	}

	// A file can carry an ID3v2 header that tag.ReadFrom stops at and still
	// have its text in the legacy trailer.
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return Tag{}, err
	}
	m, err = tag.ReadID3v1Tags(r)
	if err != nil {
		return Tag{}, err
	}
	return Tag{Title: m.Title(), Artist: m.Artist(), Album: m.Album()}, nil
}

var errNoID3v2 = errors.New("no id3v2 tag")

func readID3v2(r io.ReadSeeker) (Tag, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return Tag{}, err
	}
	id3tag, err := id3v2.ParseReader(r, id3v2.Options{
		Parse:       true,
		ParseFrames: []string{"Title", "Artist", "Album"},
	})
	if err != nil {
		return Tag{}, err
	}
	if !id3tag.HasFrames() {
		return Tag{}, errNoID3v2
	}
	return Tag{
		Title:  id3tag.Title(),
		Artist: id3tag.Artist(),
		Album:  id3tag.Album(),
	}, nil
}

// Truncate trims s and shortens it to at most n bytes without splitting a
// grapheme cluster.
func Truncate(s string, n int) string {
	s = strings.TrimSpace(strings.TrimRight(s, "\x00"))
	if len(s) <= n {
		return s
	}
	var b strings.Builder
	rest := s
	state := -1
	for rest != "" {
		var cluster string
		cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		if b.Len()+len(cluster) > n {
			break
		}
		b.WriteString(cluster)
	}
	return strings.TrimSpace(b.String())
}
