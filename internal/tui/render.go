package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/wireloop/internal/canvas"
	"github.com/verte-zerg/wireloop/internal/model"
)

// Canvas layers, highest priority first.
const (
	layerDone = iota
	layerPending
	layerCount
)

var (
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#5A5A5A"))
	startStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A")).Bold(true)
	endStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	cursorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	hoverStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
)

var (
	startGlyph  = glyph('●', 'o')
	endGlyph    = glyph('◆', '#')
	cursorGlyph = glyph('✚', '+')
	menuGlyph   = glyph('›', '>')
)

// glyph returns r when it occupies a single terminal cell, else fallback.
func glyph(r, fallback rune) string {
	if runewidth.RuneWidth(r) == 1 {
		return string(r)
	}
	return string(fallback)
}

type overlay struct {
	text  string
	style lipgloss.Style
}

// scene is one frame of the playfield.
type scene struct {
	path     []model.Point
	progress int
	warning  bool
	cursor   model.Point
	pressed  bool
	showPtr  bool
}

// renderScene draws the path and markers into a cols x rows block.
func renderScene(tr transform, s scene) string {
	if tr.cols <= 0 || tr.rows <= 0 {
		return ""
	}
	c := canvas.New(tr.cols, tr.rows, layerCount)
	drawPolyline(c, tr, layerPending, s.path, s.progress, len(s.path)-1)
	drawPolyline(c, tr, layerDone, s.path, 0, s.progress)

	overlays := map[[2]int]overlay{}
	if len(s.path) > 0 {
		overlays[cellKey(tr, s.path[len(s.path)-1])] = overlay{endGlyph, endStyle}
		overlays[cellKey(tr, s.path[0])] = overlay{startGlyph, startStyle}
	}
	if s.showPtr {
		style := hoverStyle
		if s.pressed {
			style = cursorStyle
		}
		overlays[cellKey(tr, s.cursor)] = overlay{cursorGlyph, style}
	}

	doneLayerStyle := doneStyle
	if s.warning {
		doneLayerStyle = warnStyle
	}
	layerStyles := []lipgloss.Style{doneLayerStyle, pendingStyle}

	lines := make([]string, tr.rows)
	for y := 0; y < tr.rows; y++ {
		var b strings.Builder
		var run strings.Builder
		runLayer := -1
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if runLayer >= 0 {
				b.WriteString(layerStyles[runLayer].Render(run.String()))
			} else {
				b.WriteString(run.String())
			}
			run.Reset()
		}
		for x := 0; x < tr.cols; x++ {
			if o, ok := overlays[[2]int{x, y}]; ok {
				flush()
				b.WriteString(o.style.Render(o.text))
				continue
			}
			mask, layer := c.Cell(x, y)
			if layer != runLayer {
				flush()
				runLayer = layer
			}
			if layer < 0 {
				run.WriteByte(' ')
				continue
			}
			run.WriteRune(canvas.Rune(mask))
		}
		flush()
		lines[y] = b.String()
	}
	return strings.Join(lines, "\n")
}

func drawPolyline(c *canvas.Canvas, tr transform, layer int, path []model.Point, from, to int) {
	if from < 0 {
		from = 0
	}
	if to >= len(path) {
		to = len(path) - 1
	}
	if from > to {
		return
	}
	px, py := tr.toDot(path[from])
	c.Set(layer, px, py)
	for i := from + 1; i <= to; i++ {
		x, y := tr.toDot(path[i])
		if x == px && y == py {
			continue
		}
		c.Line(layer, px, py, x, y)
		px, py = x, y
	}
}

func cellKey(tr transform, p model.Point) [2]int {
	x, y := tr.toCell(p)
	return [2]int{x, y}
}
