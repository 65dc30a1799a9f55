package levels

import (
	"math"

	"github.com/verte-zerg/wireloop/internal/model"
)

// minPointGap is the smallest distance kept between consecutive points.
const minPointGap = 0.5

// FallbackPath is used when a control path has fewer than two usable points.
func FallbackPath() []model.Point {
	return []model.Point{{X: -150, Y: 0}, {X: 150, Y: 0}}
}

// Clean drops non-finite points and points closer than 0.5 units to the
// previous kept point. When fewer than two points survive it returns
// FallbackPath and reports true.
func Clean(points []model.Point) ([]model.Point, bool) {
	out := make([]model.Point, 0, len(points))
	for _, p := range points {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
			continue
		}
		if n := len(out); n > 0 && math.Hypot(p.X-out[n-1].X, p.Y-out[n-1].Y) < minPointGap {
			continue
		}
		out = append(out, p)
	}
	if len(out) < 2 {
		return FallbackPath(), true
	}
	return out, false
}
