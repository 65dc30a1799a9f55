// Package geometry answers nearest-point queries against a smoothed path.
package geometry

import (
	"errors"
	"math"

	"github.com/verte-zerg/wireloop/internal/model"
)

// ErrEmptyPath is returned when a query is made against a missing path.
var ErrEmptyPath = errors.New("geometry: empty path")

// Match is the nearest path index to a query and its distance.
type Match struct {
	Index    int
	Distance float64
}

// Nearest finds the closest path point to q among indices in
// [anchor-radius, anchor+radius], clamped to the path. A negative radius
// scans the whole path. Far away or non-finite queries still yield a valid
// index; only the distance grows.
func Nearest(path []model.Point, q model.Point, anchor, radius int) (Match, error) {
	if len(path) == 0 {
		return Match{}, ErrEmptyPath
	}
	lo, hi := Window(len(path), anchor, radius)
	best := Match{Index: clampIndex(anchor, len(path)), Distance: math.Inf(1)}
	if !finite(q) {
		return best, nil
	}
	for i := lo; i <= hi; i++ {
		d := distance(path[i], q)
		if d < best.Distance {
			best = Match{Index: i, Distance: d}
		}
	}
	return best, nil
}

// NearestSampled runs Nearest for q and for q shifted by each offset and
// keeps the lowest distance. Ties keep the earlier sample, so the raw query
// wins when it is as good as any offset.
func NearestSampled(path []model.Point, q model.Point, anchor, radius int, offsets []model.Point) (Match, error) {
	best, err := Nearest(path, q, anchor, radius)
	if err != nil {
		return Match{}, err
	}
	for _, off := range offsets {
		m, err := Nearest(path, model.Point{X: q.X + off.X, Y: q.Y + off.Y}, anchor, radius)
		if err != nil {
			return Match{}, err
		}
		if m.Distance < best.Distance {
			best = m
		}
	}
	return best, nil
}

// Ring returns n offsets evenly spaced on a circle of the given radius.
func Ring(radius float64, n int) []model.Point {
	if n <= 0 || radius <= 0 {
		return nil
	}
	out := make([]model.Point, n)
	for i := range out {
		a := 2 * math.Pi * float64(i) / float64(n)
		out[i] = model.Point{X: radius * math.Cos(a), Y: radius * math.Sin(a)}
	}
	return out
}

// Window returns the inclusive index range searched around anchor.
func Window(length, anchor, radius int) (lo, hi int) {
	if length <= 0 {
		return 0, -1
	}
	if radius < 0 {
		return 0, length - 1
	}
	anchor = clampIndex(anchor, length)
	lo = anchor - radius
	hi = anchor + radius
	if lo < 0 {
		lo = 0
	}
	if hi > length-1 {
		hi = length - 1
	}
	return lo, hi
}

// Distance is the euclidean distance between two points.
func Distance(a, b model.Point) float64 {
	return distance(a, b)
}

func distance(a, b model.Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

func clampIndex(i, length int) int {
	if i < 0 {
		return 0
	}
	if i > length-1 {
		return length - 1
	}
	return i
}

func finite(p model.Point) bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}
