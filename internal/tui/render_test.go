package tui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/verte-zerg/wireloop/internal/model"
)

func TestRenderSceneMarkers(t *testing.T) {
	path := []model.Point{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 200, Y: 40}}
	tr := fit(path, 10, 40, 10)
	out := renderScene(tr, scene{
		path:     path,
		progress: 1,
		cursor:   model.Point{X: 100, Y: 20},
		pressed:  true,
		showPtr:  true,
	})
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 10)
	assert.Contains(t, out, startGlyph)
	assert.Contains(t, out, endGlyph)
	assert.Contains(t, out, cursorGlyph)
}

func TestRenderSceneEmptyGrid(t *testing.T) {
	assert.Empty(t, renderScene(transform{}, scene{}))
}

func TestGlyphFallback(t *testing.T) {
	assert.Equal(t, "x", glyph('x', '?'))
	assert.Equal(t, "?", glyph('漢', '?'))
}
