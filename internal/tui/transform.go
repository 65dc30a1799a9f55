package tui

import (
	"math"

	"github.com/verte-zerg/wireloop/internal/model"
)

// transform maps level space onto a braille dot grid of cols x rows cells.
// A cell is two dots wide and four tall, which keeps dots roughly square on
// a terminal whose cells are about twice as tall as they are wide. Level y
// grows upward; dot y grows downward.
type transform struct {
	cols  int
	rows  int
	scale float64
	offX  float64
	offY  float64
	minX  float64
	maxY  float64
}

// fit centres the bounding box of path, grown by margin, in the grid.
func fit(path []model.Point, margin float64, cols, rows int) transform {
	t := transform{cols: cols, rows: rows, scale: 1}
	if len(path) == 0 || cols <= 0 || rows <= 0 {
		return t
	}
	minX, maxX := path[0].X, path[0].X
	minY, maxY := path[0].Y, path[0].Y
	for _, p := range path[1:] {
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}
	dotW := float64(cols * 2)
	dotH := float64(rows * 4)
	spanX := maxX - minX + 2*margin
	spanY := maxY - minY + 2*margin
	if spanX <= 0 {
		spanX = 1
	}
	if spanY <= 0 {
		spanY = 1
	}
	t.scale = math.Min(dotW/spanX, dotH/spanY)
	t.minX = minX
	t.maxY = maxY
	t.offX = (dotW - (maxX-minX)*t.scale) / 2
	t.offY = (dotH - (maxY-minY)*t.scale) / 2
	return t
}

// toDot returns the dot containing p.
func (t transform) toDot(p model.Point) (int, int) {
	x := t.offX + (p.X-t.minX)*t.scale
	y := t.offY + (t.maxY-p.Y)*t.scale
	return int(math.Floor(x)), int(math.Floor(y))
}

// toCell returns the cell containing p.
func (t transform) toCell(p model.Point) (int, int) {
	x, y := t.toDot(p)
	return floorDiv(x, 2), floorDiv(y, 4)
}

// cellToWorld returns the level point under the centre of a cell.
func (t transform) cellToWorld(col, row int) model.Point {
	dx := float64(col*2) + 1
	dy := float64(row*4) + 2
	return model.Point{
		X: t.minX + (dx-t.offX)/t.scale,
		Y: t.maxY - (dy-t.offY)/t.scale,
	}
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && a < 0 {
		q--
	}
	return q
}
