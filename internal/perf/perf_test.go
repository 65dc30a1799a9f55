package perf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(m *Monitor, start time.Time, fps int, seconds int) time.Time {
	step := time.Second / time.Duration(fps)
	now := start
	for i := 0; i < fps*seconds; i++ {
		now = now.Add(step)
		m.Tick(now)
	}
	return now
}

func TestMonitorMeasuresWindow(t *testing.T) {
	m := NewMonitor()
	start := time.Unix(0, 0)
	m.Tick(start)
	assert.Zero(t, m.FPS(), "unknown before a full window")

	run(m, start, 50, 1)
	assert.InDelta(t, 50, m.FPS(), 0.01)
	assert.Zero(t, m.Drops())
}

func TestMonitorCountsDrops(t *testing.T) {
	m := NewMonitor()
	start := time.Unix(0, 0)
	m.Tick(start)
	now := run(m, start, 50, 2)
	run(m, now, 20, 3)

	assert.InDelta(t, 20, m.FPS(), 0.01)
	assert.Equal(t, 3, m.Drops())
	require.Len(t, m.Samples(), 5)
	assert.InDelta(t, 32, m.Average(), 0.01)
}

func TestMonitorKeepsLastSamples(t *testing.T) {
	m := NewMonitor()
	start := time.Unix(0, 0)
	m.Tick(start)
	run(m, start, 10, 120)
	assert.Len(t, m.Samples(), 100)

	m.Reset()
	assert.Zero(t, m.FPS())
	assert.Empty(t, m.Samples())
}

func TestFixed(t *testing.T) {
	assert.Equal(t, 24.0, Fixed(24).FPS())
}
