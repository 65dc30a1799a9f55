// Package progress tracks how far along a path an attempt has validly come.
package progress

import "github.com/verte-zerg/wireloop/internal/tolerance"

// Tracker holds the forward-only progress index for one attempt.
type Tracker struct {
	length int
	index  int
}

// New returns a tracker for a path of the given length.
func New(length int) *Tracker {
	if length < 0 {
		length = 0
	}
	return &Tracker{length: length}
}

// TryAdvance moves the index to candidate when the step is forward and
// within the policy's jump and backtrack limits. It reports whether the
// index changed.
func (t *Tracker) TryAdvance(candidate int, p tolerance.Policy) bool {
	if candidate <= t.index {
		return false
	}
	if candidate-t.index > p.MaxForwardJump {
		return false
	}
	if candidate < t.index-p.MaxBacktrack {
		return false
	}
	if t.length > 0 && candidate > t.length-1 {
		candidate = t.length - 1
		if candidate <= t.index {
			return false
		}
	}
	t.index = candidate
	return true
}

func (t *Tracker) Index() int {
	return t.index
}

func (t *Tracker) Len() int {
	return t.length
}

// Complete reports whether the final path index has been reached.
func (t *Tracker) Complete() bool {
	return t.length > 0 && t.index >= t.length-1
}

// Fraction is progress in [0, 1].
func (t *Tracker) Fraction() float64 {
	if t.length <= 1 {
		if t.Complete() {
			return 1
		}
		return 0
	}
	return float64(t.index) / float64(t.length-1)
}

// Reset rewinds to the start. A non-negative length replaces the path length.
func (t *Tracker) Reset(length int) {
	if length >= 0 {
		t.length = length
	}
	t.index = 0
}
