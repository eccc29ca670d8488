// Package storage presents a directory as the root of a FAT-formatted card:
// raw 8.3 directory entries in on-media order, and read handles opened by
// short name.
package storage

import (
	"io"
	"strings"
)

// Directory entry attribute bits.
const (
	AttrReadOnly  byte = 0x01
	AttrHidden    byte = 0x02
	AttrSystem    byte = 0x04
	AttrVolumeID  byte = 0x08
	AttrDirectory byte = 0x10
	AttrArchive   byte = 0x20
)

// First name byte markers.
const (
	nameFree    byte = 0x00
	nameDeleted byte = 0xE5
)

// DirEntry is a raw 8.3 directory entry: an 8 byte base name and a 3 byte
// extension, both space padded, without the dot.
type DirEntry struct {
	Name [11]byte
	Attr byte
}

// IsFree reports whether the entry marks the end of the directory.
func (e DirEntry) IsFree() bool { return e.Name[0] == nameFree }

// IsDeleted reports whether the entry was deleted.
func (e DirEntry) IsDeleted() bool { return e.Name[0] == nameDeleted }

// IsDot reports whether the entry is "." / ".." or otherwise starts with a dot.
func (e DirEntry) IsDot() bool { return e.Name[0] == '.' }

// IsFile reports whether the entry is a regular file.
func (e DirEntry) IsFile() bool { return e.Attr&(AttrVolumeID|AttrDirectory) == 0 }

// Ext returns the padded extension field.
func (e DirEntry) Ext() string { return string(e.Name[8:11]) }

// Filename returns the dotted name: "SONG1   MP3" becomes "SONG1.MP3".
func (e DirEntry) Filename() string {
	base := strings.TrimRight(string(e.Name[:8]), " ")
	ext := strings.TrimRight(string(e.Name[8:]), " ")
	if ext == "" {
		return base
	}
	return base + "." + ext
}

// PackName builds the padded 11 byte form of a dotted 8.3 name.
// Longer components are truncated.
func PackName(filename string) [11]byte {
	var raw [11]byte
	for i := range raw {
		raw[i] = ' '
	}
	base, ext := filename, ""
	if i := strings.LastIndexByte(filename, '.'); i > 0 {
		base, ext = filename[:i], filename[i+1:]
	}
	copy(raw[:8], base[:min(len(base), 8)])
	copy(raw[8:], ext[:min(len(ext), 3)])
	return raw
}

// Handle is an open track file.
type Handle interface {
	io.ReadSeekCloser
	Size() int64
}

// Volume is the storage driver as seen by the controller.
type Volume interface {
	// Entries returns the root directory entries in on-media order.
	Entries() ([]DirEntry, error)
	// Open opens a file of the root directory by its dotted short name.
	Open(name string) (Handle, error)
}
