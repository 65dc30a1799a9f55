// Package tolerance turns level rules into per-frame limits and classifies
// pointer samples against them.
package tolerance

import (
	"math"
	"time"

	"github.com/verte-zerg/wireloop/internal/model"
)

// Device is the kind of pointer driving the attempt.
type Device int

const (
	Mouse Device = iota
	Touch
)

func (d Device) String() string {
	if d == Touch {
		return "touch"
	}
	return "mouse"
}

const minDifficultyMultiplier = 0.1

// Policy is the effective set of limits for one frame.
type Policy struct {
	MaxDeviation       float64
	MaxForwardJump     int
	MaxBacktrack       int
	GracePeriod        time.Duration
	WarningDuration    time.Duration
	ReleaseGracePeriod time.Duration
}

// Compute derives the frame policy from level rules, the input device and
// the current frame rate. fps <= 0 means unknown.
func Compute(rules model.Rules, device Device, fps float64) Policy {
	deviceMul := 1.0
	if device == Touch && rules.TouchMultiplier > 0 {
		deviceMul = rules.TouchMultiplier
	}
	difficultyMul := rules.DifficultyMultiplier
	if difficultyMul < minDifficultyMultiplier || math.IsNaN(difficultyMul) {
		difficultyMul = minDifficultyMultiplier
	}

	p := Policy{
		MaxDeviation:       rules.BaseTolerance * deviceMul * difficultyMul * PerformanceMultiplier(fps),
		MaxForwardJump:     rules.MaxProgressJump,
		MaxBacktrack:       rules.MaxBacktrack,
		GracePeriod:        rules.GracePeriod,
		WarningDuration:    rules.WarningDuration,
		ReleaseGracePeriod: rules.ReleaseGracePeriod,
	}
	if device == Touch {
		p.MaxForwardJump = widen(p.MaxForwardJump)
		p.MaxBacktrack = widen(p.MaxBacktrack)
	}
	return p
}

// PerformanceMultiplier loosens the deviation limit when frames are slow,
// since sparse samples land further from the path.
func PerformanceMultiplier(fps float64) float64 {
	switch {
	case fps <= 0 || math.IsNaN(fps) || math.IsInf(fps, 0):
		return 1
	case fps < 20:
		return 1.5
	case fps < 30:
		return 1.3
	case fps < 45:
		return 1.15
	default:
		return 1
	}
}

// widen grows n by 20%, rounding up.
func widen(n int) int {
	if n <= 0 {
		return n
	}
	return (n*6 + 4) / 5
}

// Classification is the verdict for one pointer sample.
type Classification int

const (
	OnTrack Classification = iota
	OffTrack
	Skipping
	BacktrackInvalid
)

func (c Classification) String() string {
	switch c {
	case OnTrack:
		return "on-track"
	case OffTrack:
		return "off-track"
	case Skipping:
		return "skipping"
	case BacktrackInvalid:
		return "backtrack-invalid"
	default:
		return "unknown"
	}
}

// Valid reports whether the sample may advance progress.
func (c Classification) Valid() bool {
	return c == OnTrack
}

// Classify decides the verdict for a sample at distance from the path whose
// nearest index is delta steps from the current progress index.
func Classify(distance float64, delta int, p Policy) Classification {
	switch {
	case math.IsNaN(distance) || distance > p.MaxDeviation:
		return OffTrack
	case delta > p.MaxForwardJump:
		return Skipping
	case delta < -p.MaxBacktrack:
		return BacktrackInvalid
	default:
		return OnTrack
	}
}
