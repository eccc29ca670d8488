//go:build linux

package mpris

import (
	"os"
	"path/filepath"
	"strings"
)

// coverNames lists common album art filenames in priority order.
var coverNames = []string{
	"cover.jpg", "cover.png", "cover.jpeg",
	"folder.jpg", "folder.png", "folder.jpeg",
	"album.jpg", "album.png", "album.jpeg",
	"front.jpg", "front.png", "front.jpeg",
}

// FindAlbumArt looks for album art in dir, in lower or upper case as FAT
// cards often store it. Returns the path to the art file, or empty string if
// not found.
func FindAlbumArt(dir string) string {
	if dir == "" {
		return ""
	}
	for _, name := range coverNames {
		for _, candidate := range []string{name, strings.ToUpper(name)} {
			path := filepath.Join(dir, candidate)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}
