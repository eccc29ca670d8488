package player

import (
	"errors"
	"math"

	"github.com/llehouerou/sdjuke/internal/decoder"
)

// VolumeCurve maps a volume percent to a decoder level:
// level = Base^(percent/100) * Scale, capped at MaxLevel.
type VolumeCurve struct {
	Base     float64
	Scale    float64
	MaxLevel int
}

// DefaultVolumeCurve returns e^(p/100) * 93.8 capped at 254.
func DefaultVolumeCurve() VolumeCurve {
	return VolumeCurve{Base: math.E, Scale: 93.8, MaxLevel: decoder.MaxLevel}
}

// Validate reports whether the curve is invertible.
func (c VolumeCurve) Validate() error {
	switch {
	case c.Base <= 1:
		return errors.New("volume curve base must be greater than 1")
	case c.Scale <= 0:
		return errors.New("volume curve scale must be positive")
	case c.MaxLevel <= 0 || c.MaxLevel > decoder.MaxLevel:
		return errors.New("volume curve max level out of range")
	}
	return nil
}

// Level returns the decoder level for percent, clamped to [0, 100] first.
func (c VolumeCurve) Level(percent int) int {
	percent = clampPercent(percent)
	level := math.Round(math.Pow(c.Base, float64(percent)/100) * c.Scale)
	return min(max(int(level), 0), c.MaxLevel)
}

// Percent is the inverse of Level.
func (c VolumeCurve) Percent(level int) int {
	if level <= 0 {
		return 0
	}
	pct := math.Round(math.Log(float64(level)/c.Scale) / math.Log(c.Base) * 100)
	return clampPercent(int(pct))
}

// SetVolume sets the volume in percent and returns the decoder level.
func (p *Player) SetVolume(percent int) int {
	percent = clampPercent(percent)
	p.level = p.curve.Level(percent)
	p.dec.SetVolume(p.level)
	p.store.CommitVolume(percent)
	p.log.Debug("set volume", "percent", percent, "level", p.level)
	return p.level
}

// Volume returns the volume in percent, recovered from the decoder level.
func (p *Player) Volume() int {
	return p.curve.Percent(p.level)
}

func clampPercent(p int) int {
	return min(max(p, 0), 100)
}
