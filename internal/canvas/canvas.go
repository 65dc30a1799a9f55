// Package canvas draws into a grid of braille cells, each holding a 2x4
// block of dots, with several independently colourable layers.
package canvas

// Canvas is a layered braille dot grid. Layer 0 has the highest priority
// when a cell is lit on more than one layer.
type Canvas struct {
	width  int
	height int
	layers [][][]uint8
}

// New returns a canvas of width x height cells with the given layer count.
func New(width, height, layers int) *Canvas {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	if layers < 1 {
		layers = 1
	}
	c := &Canvas{width: width, height: height, layers: make([][][]uint8, layers)}
	for i := range c.layers {
		c.layers[i] = makeCells(height, width)
	}
	return c
}

// Width is the width in cells.
func (c *Canvas) Width() int { return c.width }

// Height is the height in cells.
func (c *Canvas) Height() int { return c.height }

// DotWidth is the width in dots.
func (c *Canvas) DotWidth() int { return c.width * 2 }

// DotHeight is the height in dots.
func (c *Canvas) DotHeight() int { return c.height * 4 }

// Set lights the dot at x, y on layer. Out of range dots are ignored.
func (c *Canvas) Set(layer, x, y int) {
	if layer < 0 || layer >= len(c.layers) || x < 0 || y < 0 {
		return
	}
	cellY := y / 4
	cellX := x / 2
	if cellY >= c.height || cellX >= c.width {
		return
	}
	c.layers[layer][cellY][cellX] |= dotMask(x%2, y%4)
}

// Line draws a straight dot line between two points on layer.
func (c *Canvas) Line(layer, x0, y0, x1, y1 int) {
	DrawLine(x0, y0, x1, y1, func(x, y int) {
		c.Set(layer, x, y)
	})
}

// Cell returns the combined dot mask of a cell and the highest priority
// layer lit in it, or -1 when the cell is empty.
func (c *Canvas) Cell(x, y int) (uint8, int) {
	var mask uint8
	layer := -1
	if x < 0 || y < 0 || x >= c.width || y >= c.height {
		return 0, -1
	}
	for i, cells := range c.layers {
		m := cells[y][x]
		if m == 0 {
			continue
		}
		if layer == -1 {
			layer = i
		}
		mask |= m
	}
	return mask, layer
}

// Clear unlights every dot.
func (c *Canvas) Clear() {
	for _, cells := range c.layers {
		for _, row := range cells {
			for i := range row {
				row[i] = 0
			}
		}
	}
}

// Rune converts a dot mask to its braille character.
func Rune(mask uint8) rune {
	return rune(0x2800 + int(mask))
}

// DrawLine walks the integer points from (x0, y0) to (x1, y1) inclusive.
func DrawLine(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx := abs(x1 - x0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -abs(y1 - y0)
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			if x0 == x1 {
				break
			}
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			if y0 == y1 {
				break
			}
			err += dx
			y0 += sy
		}
	}
}

func makeCells(height, width int) [][]uint8 {
	cells := make([][]uint8, height)
	for y := range cells {
		cells[y] = make([]uint8, width)
	}
	return cells
}

// dotMask maps a dot inside a cell to its braille bit.
func dotMask(x, y int) uint8 {
	if x == 0 {
		switch y {
		case 0:
			return 0x01
		case 1:
			return 0x02
		case 2:
			return 0x04
		case 3:
			return 0x40
		}
		return 0
	}
	switch y {
	case 0:
		return 0x08
	case 1:
		return 0x10
	case 2:
		return 0x20
	case 3:
		return 0x80
	}
	return 0
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
