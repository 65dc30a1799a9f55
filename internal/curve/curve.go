// Package curve turns sparse control paths into dense Catmull-Rom paths.
package curve

import (
	"math"

	"github.com/verte-zerg/wireloop/internal/model"
)

// CoordinateLimit bounds every generated coordinate.
const CoordinateLimit = 50000.0

const (
	defaultSpacing  = 2.5
	maxSegmentsPair = 256
)

// CatmullRom interpolates a uniform Catmull-Rom spline through points.
// Each consecutive pair contributes segments samples and the final control
// point is appended as-is, so the result has (len(points)-1)*segments+1
// points and starts and ends exactly on the control path.
func CatmullRom(points []model.Point, segments int) []model.Point {
	if len(points) < 2 {
		return append([]model.Point(nil), points...)
	}
	if segments < 1 {
		segments = 1
	}

	out := make([]model.Point, 0, (len(points)-1)*segments+1)
	last := len(points) - 1
	for i := 0; i < last; i++ {
		p0 := points[maxInt(0, i-1)]
		p1 := points[i]
		p2 := points[i+1]
		p3 := points[minInt(last, i+2)]

		for k := 0; k < segments; k++ {
			if i == 0 && k == 0 && finite(p1) {
				out = append(out, clampPoint(p1))
				continue
			}
			t := float64(k) / float64(segments)
			pt := catmull(p0, p1, p2, p3, t)
			if !finite(pt) {
				pt = lerp(p1, p2, t)
				if !finite(pt) {
					continue
				}
			}
			out = append(out, clampPoint(pt))
		}
	}
	end := points[last]
	if finite(end) {
		out = append(out, clampPoint(end))
	}

	if len(out) == 0 {
		return append([]model.Point(nil), points...)
	}
	return out
}

// SegmentsFor picks a per-pair segment count so that the smoothed path has
// roughly one point every spacing units, capped so the total point count
// stays at or below maxPoints (when maxPoints > 0).
func SegmentsFor(points []model.Point, spacing float64, maxPoints int) int {
	if len(points) < 2 {
		return 1
	}
	if spacing <= 0 || math.IsNaN(spacing) || math.IsInf(spacing, 0) {
		spacing = defaultSpacing
	}
	pairs := len(points) - 1
	total := Length(points)
	segments := int(math.Ceil(total / spacing / float64(pairs)))
	if maxPoints > 1 {
		if budget := (maxPoints - 1) / pairs; segments > budget {
			segments = budget
		}
	}
	if segments > maxSegmentsPair {
		segments = maxSegmentsPair
	}
	if segments < 1 {
		segments = 1
	}
	return segments
}

// Length returns the polyline length of points, ignoring non-finite steps.
func Length(points []model.Point) float64 {
	total := 0.0
	for i := 1; i < len(points); i++ {
		d := math.Hypot(points[i].X-points[i-1].X, points[i].Y-points[i-1].Y)
		if math.IsNaN(d) || math.IsInf(d, 0) {
			continue
		}
		total += d
	}
	return total
}

// Smooth is CatmullRom with the segment count derived by SegmentsFor.
func Smooth(points []model.Point, spacing float64, maxPoints int) []model.Point {
	return CatmullRom(points, SegmentsFor(points, spacing, maxPoints))
}

func catmull(p0, p1, p2, p3 model.Point, t float64) model.Point {
	t2 := t * t
	t3 := t2 * t
	return model.Point{
		X: 0.5 * (2*p1.X + (-p0.X+p2.X)*t + (2*p0.X-5*p1.X+4*p2.X-p3.X)*t2 + (-p0.X+3*p1.X-3*p2.X+p3.X)*t3),
		Y: 0.5 * (2*p1.Y + (-p0.Y+p2.Y)*t + (2*p0.Y-5*p1.Y+4*p2.Y-p3.Y)*t2 + (-p0.Y+3*p1.Y-3*p2.Y+p3.Y)*t3),
	}
}

func lerp(a, b model.Point, t float64) model.Point {
	return model.Point{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t}
}

func finite(p model.Point) bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

func clampPoint(p model.Point) model.Point {
	return model.Point{X: clamp(p.X), Y: clamp(p.Y)}
}

func clamp(v float64) float64 {
	if v > CoordinateLimit {
		return CoordinateLimit
	}
	if v < -CoordinateLimit {
		return -CoordinateLimit
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
