// Package catalog lays out the controller's persistent state over a
// non-volatile byte device: four one-byte playback fields guarded by an
// "initialized" sentinel, followed by fixed-size filename slots.
//
// Every commit writes exactly one byte. Commits are independent, so a power
// loss between two of them can leave fields describing different moments;
// the next Load trusts whatever was written last for each field.
package catalog

import (
	"errors"
	"fmt"

	"github.com/llehouerou/sdjuke/internal/nvram"
	"github.com/llehouerou/sdjuke/internal/playback"
)

// Layout addresses.
const (
	addrSentinel = 0
	addrVolume   = 1
	addrTrack    = 2
	addrState    = 3
	addrPosition = 4

	// NamesStart leaves room for future playback fields before the slots.
	NamesStart = 32
	// NameLen is the slot size: 8 + '.' + 3 + NUL.
	NameLen = 13

	initMarker = 33
)

// MaxNameLen is the longest filename a slot can hold.
const MaxNameLen = NameLen - 1

// MaxTracks is the largest catalog a one-byte track index can address.
const MaxTracks = 255

// ErrLayout is returned when the catalog does not fit the device.
var ErrLayout = errors.New("catalog does not fit the nv device")

// PlaybackState is the persisted playback state.
type PlaybackState struct {
	Volume   int // percent, 0-100
	Track    int
	State    playback.State
	Position int // percent, 0-100
}

// Store is the catalog and playback state persisted on an nvram device.
type Store struct {
	dev           nvram.Device
	maxTracks     int
	defaultVolume int
}

// New lays out a catalog of up to maxTracks entries on dev.
// defaultVolume is the volume written on first boot.
func New(dev nvram.Device, maxTracks, defaultVolume int) (*Store, error) {
	if maxTracks <= 0 || maxTracks > MaxTracks {
		return nil, fmt.Errorf("%w: max tracks %d not in [1, %d]", ErrLayout, maxTracks, MaxTracks)
	}
	if need := RequiredSize(maxTracks); dev.Size() < need {
		return nil, fmt.Errorf("%w: need %d bytes, device has %d", ErrLayout, need, dev.Size())
	}
	return &Store{
		dev:           dev,
		maxTracks:     maxTracks,
		defaultVolume: clampPercent(defaultVolume),
	}, nil
}

// RequiredSize returns the device size needed for maxTracks entries.
func RequiredSize(maxTracks int) int {
	return NamesStart + maxTracks*NameLen
}

// MaxTracks returns the catalog capacity.
func (s *Store) MaxTracks() int { return s.maxTracks }

// Load returns the persisted playback state. On first boot (no sentinel) it
// writes the defaults and the sentinel, then returns the defaults.
func (s *Store) Load() PlaybackState {
	if s.Initialized() {
		return s.Snapshot()
	}

	defaults := PlaybackState{
		Volume:   s.defaultVolume,
		Track:    0,
		State:    playback.DirPlay,
		Position: 0,
	}
	s.dev.SetByte(addrSentinel, initMarker)
	s.CommitVolume(defaults.Volume)
	s.CommitTrack(defaults.Track)
	s.CommitState(defaults.State)
	s.CommitPosition(defaults.Position)
	return defaults
}

// Initialized reports whether the sentinel has been written.
func (s *Store) Initialized() bool {
	return s.dev.Byte(addrSentinel) == initMarker
}

// Snapshot returns the stored fields verbatim, without initializing.
func (s *Store) Snapshot() PlaybackState {
	return PlaybackState{
		Volume:   int(s.dev.Byte(addrVolume)),
		Track:    int(s.dev.Byte(addrTrack)),
		State:    playback.State(s.dev.Byte(addrState)),
		Position: int(s.dev.Byte(addrPosition)),
	}
}

// Reset clears the sentinel so the next Load starts from defaults.
func (s *Store) Reset() {
	s.dev.SetByte(addrSentinel, nvram.Erased)
}

func (s *Store) CommitTrack(index int) {
	s.checkIndex(index)
	s.dev.SetByte(addrTrack, byte(index))
}

func (s *Store) CommitVolume(percent int) {
	s.dev.SetByte(addrVolume, byte(clampPercent(percent)))
}

func (s *Store) CommitState(state playback.State) {
	s.dev.SetByte(addrState, byte(state))
}

func (s *Store) CommitPosition(percent int) {
	s.dev.SetByte(addrPosition, byte(clampPercent(percent)))
}

// SetEntry stores filename in slot index. The name must fit MaxNameLen bytes
// and must not contain NUL.
func (s *Store) SetEntry(index int, filename string) {
	s.checkIndex(index)
	if len(filename) > MaxNameLen {
		panic(fmt.Sprintf("catalog: filename %q longer than %d bytes", filename, MaxNameLen))
	}
	base := NamesStart + index*NameLen
	for i := range len(filename) {
		if filename[i] == 0 {
			panic(fmt.Sprintf("catalog: filename %q contains NUL", filename))
		}
		s.dev.SetByte(base+i, filename[i])
	}
	s.dev.SetByte(base+len(filename), 0)
}

// Entry returns the filename stored in slot index.
func (s *Store) Entry(index int) string {
	s.checkIndex(index)
	base := NamesStart + index*NameLen
	var name [MaxNameLen]byte
	n := 0
	for ; n < MaxNameLen; n++ {
		c := s.dev.Byte(base + n)
		if c == 0 {
			break
		}
		name[n] = c
	}
	return string(name[:n])
}

func (s *Store) checkIndex(index int) {
	if index < 0 || index >= s.maxTracks {
		panic(fmt.Sprintf("catalog: index %d out of range [0, %d)", index, s.maxTracks))
	}
}

func clampPercent(p int) int {
	return min(max(p, 0), 100)
}
