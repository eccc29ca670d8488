package nvram

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// File is a Device backed by a flat image file. The image is read once at
// open; every write goes straight through to the file.
type File struct {
	f      *os.File
	data   []byte
	err    error
	logger *slog.Logger
}

// OpenFile opens or creates the image at path. A missing or short image is
// extended with erased bytes up to size.
func OpenFile(path string, size int) (*File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, err
	}

	data := erasedImage(size)
	n, err := f.ReadAt(data, 0)
	if err != nil && n < size {
		// Short image: erase the tail on disk as well.
		if _, werr := f.WriteAt(data[n:], int64(n)); werr != nil {
			f.Close()
			return nil, fmt.Errorf("extend image: %w", werr)
		}
	}

	return &File{
		f:      f,
		data:   data,
		logger: slog.Default().With("component", "nvram.File", "path", path),
	}, nil
}

func (d *File) Byte(addr int) byte {
	checkAddr(addr, len(d.data))
	return d.data[addr]
}

// SetByte writes v at addr. Unchanged bytes are not rewritten.
func (d *File) SetByte(addr int, v byte) {
	checkAddr(addr, len(d.data))
	if d.data[addr] == v {
		return
	}
	d.data[addr] = v
	if _, err := d.f.WriteAt([]byte{v}, int64(addr)); err != nil {
		d.err = err
		d.logger.Warn("write failed", "addr", addr, "error", err)
	}
}

func (d *File) Size() int { return len(d.data) }

// Err returns the last write error, if any.
func (d *File) Err() error { return d.err }

// Close syncs and closes the image file.
func (d *File) Close() error {
	if err := d.f.Sync(); err != nil {
		d.f.Close()
		return err
	}
	return d.f.Close()
}

// Verify File implements Device at compile time.
var _ Device = (*File)(nil)
