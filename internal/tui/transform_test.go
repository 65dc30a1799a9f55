package tui

import (
	"math"
	"testing"

	"github.com/verte-zerg/wireloop/internal/model"
)

func square() []model.Point {
	return []model.Point{{X: -100, Y: -50}, {X: 100, Y: -50}, {X: 100, Y: 50}, {X: -100, Y: 50}}
}

func TestFitKeepsPathInside(t *testing.T) {
	tr := fit(square(), 10, 80, 20)
	for _, p := range square() {
		col, row := tr.toCell(p)
		if col < 0 || col >= 80 || row < 0 || row >= 20 {
			t.Fatalf("point %v mapped outside the grid: %d,%d", p, col, row)
		}
	}
	// Level y grows up, rows grow down.
	_, top := tr.toCell(model.Point{X: 0, Y: 50})
	_, bottom := tr.toCell(model.Point{X: 0, Y: -50})
	if top >= bottom {
		t.Fatalf("expected y to be flipped, top=%d bottom=%d", top, bottom)
	}
	a := tr.cellToWorld(10, 5)
	b := tr.cellToWorld(11, 6)
	if math.Abs(math.Abs(a.Y-b.Y)-2*math.Abs(b.X-a.X)) > 1e-9 {
		t.Fatalf("expected cells twice as tall as wide, got %v -> %v", a, b)
	}
}

func TestCellRoundTrip(t *testing.T) {
	tr := fit(square(), 5, 60, 18)
	for row := 0; row < 18; row++ {
		for col := 0; col < 60; col++ {
			p := tr.cellToWorld(col, row)
			c, r := tr.toCell(p)
			if c != col || r != row {
				t.Fatalf("cell %d,%d round-tripped to %d,%d", col, row, c, r)
			}
		}
	}
}

func TestFitDegenerate(t *testing.T) {
	tr := fit(nil, 5, 10, 10)
	if tr.scale != 1 {
		t.Fatalf("expected identity scale for empty path")
	}
	single := fit([]model.Point{{X: 3, Y: 3}}, 0, 10, 5)
	col, row := single.toCell(model.Point{X: 3, Y: 3})
	if col != 5 || row != 2 {
		t.Fatalf("expected a lone point centred, got %d,%d", col, row)
	}
	if floorDiv(-1, 2) != -1 || floorDiv(3, 2) != 1 {
		t.Fatalf("unexpected floorDiv")
	}
}
