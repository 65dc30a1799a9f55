package canvas

import "testing"

func TestSetAndCell(t *testing.T) {
	c := New(3, 2, 2)
	if c.DotWidth() != 6 || c.DotHeight() != 8 {
		t.Fatalf("unexpected dot size %dx%d", c.DotWidth(), c.DotHeight())
	}
	c.Set(1, 0, 0)
	c.Set(0, 1, 3)
	mask, layer := c.Cell(0, 0)
	if mask != 0x01|0x80 {
		t.Fatalf("unexpected mask %#x", mask)
	}
	if layer != 0 {
		t.Fatalf("expected layer 0 to win, got %d", layer)
	}
	if _, layer := c.Cell(2, 1); layer != -1 {
		t.Fatalf("expected empty cell")
	}

	c.Set(0, 100, 100)
	c.Set(5, 0, 0)
	c.Clear()
	if mask, _ := c.Cell(0, 0); mask != 0 {
		t.Fatalf("expected cleared cell, got %#x", mask)
	}
}

func TestLineIsContinuous(t *testing.T) {
	var pts [][2]int
	DrawLine(0, 0, 5, 2, func(x, y int) {
		pts = append(pts, [2]int{x, y})
	})
	if pts[0] != [2]int{0, 0} || pts[len(pts)-1] != [2]int{5, 2} {
		t.Fatalf("unexpected endpoints %v", pts)
	}
	for i := 1; i < len(pts); i++ {
		dx := pts[i][0] - pts[i-1][0]
		dy := pts[i][1] - pts[i-1][1]
		if dx < -1 || dx > 1 || dy < -1 || dy > 1 {
			t.Fatalf("gap between %v and %v", pts[i-1], pts[i])
		}
	}
}

func TestRune(t *testing.T) {
	if Rune(0) != '⠀' || Rune(0xff) != '⣿' {
		t.Fatalf("unexpected braille runes")
	}
}
