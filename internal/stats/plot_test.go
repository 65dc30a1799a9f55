package stats

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
)

func TestPlot(t *testing.T) {
	var buf bytes.Buffer
	err := Plot(&buf, "Test Plot", []Series{
		{Name: "A", Values: []float64{1, 2, 3, 2, 1}},
		{Name: "B", Values: []float64{1, 1, 2, 3, 4}},
		{Name: "empty"},
	}, PlotOptions{Width: 5, Height: 4})
	if err != nil {
		t.Fatalf("Plot failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Test Plot") {
		t.Fatalf("expected title in output")
	}
	if !strings.Contains(out, "Legend:") {
		t.Fatalf("expected legend in output")
	}
	if strings.Contains(out, "empty") {
		t.Fatalf("expected empty series to be skipped")
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("expected no color for a buffer")
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 1+4+1 {
		t.Fatalf("expected 6 lines of output, got %d", len(lines))
	}
	if !strings.HasPrefix(lines[1], "   4.0") {
		t.Fatalf("expected max label on the top row, got %q", lines[1])
	}
	if !strings.HasPrefix(lines[4], "   1.0") {
		t.Fatalf("expected min label on the bottom row, got %q", lines[4])
	}
}

func TestPlotFixedScaleAndColor(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	var buf bytes.Buffer
	err := Plot(&buf, "", []Series{{Name: "P", Values: []float64{50, 50}}}, PlotOptions{
		Width: 12, Height: 3, Color: true, Min: 0, Max: 100,
	})
	if err != nil {
		t.Fatalf("Plot failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, " 100.0") || !strings.Contains(out, "   0.0") {
		t.Fatalf("expected fixed scale labels, got %q", out)
	}
	if !strings.Contains(out, colorPalette[0]) {
		t.Fatalf("expected colored output")
	}
}

func TestPlotNothing(t *testing.T) {
	var buf bytes.Buffer
	if err := Plot(&buf, "x", nil, PlotOptions{}); err != nil {
		t.Fatalf("Plot failed: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}
}

func TestPlotWidthFor(t *testing.T) {
	expected := 80 - axisLabelWidth - runewidth.StringWidth(axisSeparator)
	if got := PlotWidthFor(80); got != expected {
		t.Fatalf("expected width %d, got %d", expected, got)
	}
	if got := PlotWidthFor(0); got != minPlotWidth {
		t.Fatalf("expected min width %d, got %d", minPlotWidth, got)
	}
	if got := PlotWidthFor(12); got != minPlotWidth {
		t.Fatalf("expected min width %d, got %d", minPlotWidth, got)
	}
}

func TestResampleSeries(t *testing.T) {
	down := resampleSeries([]float64{1, 3, 5, 7}, 2)
	if down[0] != 2 || down[1] != 6 {
		t.Fatalf("unexpected downsample %v", down)
	}
	up := resampleSeries([]float64{0, 10}, 3)
	if up[0] != 0 || up[1] != 5 || up[2] != 10 {
		t.Fatalf("unexpected upsample %v", up)
	}
	flat := resampleSeries([]float64{4}, 3)
	if flat[0] != 4 || flat[2] != 4 {
		t.Fatalf("unexpected single value resample %v", flat)
	}
}
