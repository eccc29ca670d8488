package storage

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/afero"
)

// ErrNotFound is returned when a name does not resolve to a file.
var ErrNotFound = errors.New("file not found")

// FS is a Volume over one directory of an afero filesystem. Long names are
// presented as unique 8.3 short names, generated in directory order.
type FS struct {
	fs     afero.Fs
	dir    string
	short  map[string]string // dotted short name -> real name
	logger *slog.Logger
}

// Mount opens dir on fs as the card root. It fails when dir is missing.
func Mount(fs afero.Fs, dir string) (*FS, error) {
	ok, err := afero.DirExists(fs, dir)
	if err != nil {
		return nil, fmt.Errorf("mount %s: %w", dir, err)
	}
	if !ok {
		return nil, fmt.Errorf("mount %s: %w", dir, ErrNotFound)
	}
	return &FS{
		fs:     fs,
		dir:    dir,
		short:  make(map[string]string),
		logger: slog.Default().With("component", "storage.FS", "dir", dir),
	}, nil
}

// MountOS mounts a directory of the host filesystem.
func MountOS(dir string) (*FS, error) {
	return Mount(afero.NewOsFs(), dir)
}

// Entries lists the directory and rebuilds the short name table.
func (v *FS) Entries() ([]DirEntry, error) {
	infos, err := afero.ReadDir(v.fs, v.dir)
	if err != nil {
		return nil, err
	}

	v.short = make(map[string]string, len(infos))
	entries := make([]DirEntry, 0, len(infos))
	for _, info := range infos {
		e := DirEntry{Attr: AttrArchive}
		if info.IsDir() {
			e.Attr = AttrDirectory
		}
		if strings.HasPrefix(info.Name(), ".") {
			e.Name = PackName(".")
			e.Attr |= AttrHidden
			entries = append(entries, e)
			continue
		}

		e.Name = v.shortName(info.Name())
		v.short[e.Filename()] = info.Name()
		entries = append(entries, e)
	}
	v.logger.Debug("listed entries", "count", len(entries))
	return entries, nil
}

// Open opens name, which is either a short name returned by Entries or a
// real file name.
func (v *FS) Open(name string) (Handle, error) {
	actual, ok := v.short[strings.ToUpper(name)]
	if !ok {
		actual = name
	}

	f, err := v.fs.Open(filepath.Join(v.dir, actual))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("open %s: %w", name, ErrNotFound)
		}
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.IsDir() {
		f.Close()
		return nil, fmt.Errorf("open %s: is a directory", name)
	}
	return &fileHandle{File: f, size: info.Size()}, nil
}

// shortName returns the packed 8.3 name for a long name, adding a ~N tail
// when the name had to be altered or collides with an earlier one.
func (v *FS) shortName(long string) [11]byte {
	base, ext := long, ""
	if i := strings.LastIndexByte(long, '.'); i > 0 {
		base, ext = long[:i], long[i+1:]
	}
	cleanBase, lossyBase := sanitize(base)
	cleanExt, lossyExt := sanitize(ext)
	lossy := lossyBase || lossyExt || len(cleanBase) > 8 || len(cleanExt) > 3
	cleanExt = cleanExt[:min(len(cleanExt), 3)]

	candidate := func(b string) string {
		if cleanExt == "" {
			return b
		}
		return b + "." + cleanExt
	}

	if !lossy {
		if _, taken := v.short[candidate(cleanBase)]; !taken {
			return PackName(candidate(cleanBase))
		}
	}
	for n := 1; ; n++ {
		tail := "~" + strconv.Itoa(n)
		keep := min(len(cleanBase), 8-len(tail))
		name := candidate(cleanBase[:keep] + tail)
		if _, taken := v.short[name]; !taken {
			return PackName(name)
		}
	}
}

// sanitize upper-cases s and replaces characters not allowed in short names.
// Spaces and dots are dropped. lossy reports whether anything changed beyond
// case.
func sanitize(s string) (clean string, lossy bool) {
	var b strings.Builder
	for _, r := range strings.ToUpper(s) {
		switch {
		case r == ' ' || r == '.':
			lossy = true
		case r > 0x7E || strings.ContainsRune(`"*+,/:;<=>?[\]|`, r):
			b.WriteByte('_')
			lossy = true
		default:
			b.WriteRune(r)
		}
	}
	return b.String(), lossy
}

type fileHandle struct {
	afero.File
	size int64
}

func (h *fileHandle) Size() int64 { return h.size }

// Verify FS implements Volume at compile time.
var _ Volume = (*FS)(nil)
