// Package nvram provides byte-addressed non-volatile storage, the medium the
// controller persists its catalog and playback state to.
//
// The Device API mirrors an EEPROM: reads and writes of single bytes in a flat
// address space, no transactions and no wear leveling. Addresses outside
// [0, Size()) are programming errors and panic. Backends that can fail at
// write time record the error and expose it through Err; the byte API itself
// never fails.
package nvram

import (
	"fmt"
	"path/filepath"

	"github.com/adrg/xdg"
)

// Erased is the value of a byte that has never been written.
const Erased byte = 0xFF

const appName = "sdjuke"

// Device is a flat byte-addressed non-volatile store.
type Device interface {
	Byte(addr int) byte
	SetByte(addr int, v byte)
	Size() int
}

// DefaultPath returns the per-user location of the NV image for a backend
// file name (e.g. "nvram.bin", "nvram.db").
func DefaultPath(name string) (string, error) {
	return xdg.DataFile(filepath.Join(appName, name))
}

func checkAddr(addr, size int) {
	if addr < 0 || addr >= size {
		panic(fmt.Sprintf("nvram: address %d out of range [0, %d)", addr, size))
	}
}

func erasedImage(size int) []byte {
	data := make([]byte, size)
	for i := range data {
		data[i] = Erased
	}
	return data
}
