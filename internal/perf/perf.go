// Package perf measures the frame rate that drives tolerance loosening.
package perf

import "time"

const (
	defaultWindow  = time.Second
	defaultSamples = 100
	// MinFPS is the rate below which a measurement counts as a drop.
	MinFPS = 30.0
)

// Monitor counts frames and reports the rate measured over the last
// complete one-second window. It is not safe for concurrent use.
type Monitor struct {
	window      time.Duration
	maxSamples  int
	lastMeasure time.Time
	frames      int
	fps         float64
	samples     []float64
	drops       int
}

// NewMonitor returns a monitor with a one-second window keeping the last
// 100 measurements.
func NewMonitor() *Monitor {
	return &Monitor{window: defaultWindow, maxSamples: defaultSamples}
}

// Tick records one rendered frame.
func (m *Monitor) Tick(now time.Time) {
	if m.lastMeasure.IsZero() {
		m.lastMeasure = now
		return
	}
	m.frames++
	elapsed := now.Sub(m.lastMeasure)
	if elapsed < m.window {
		return
	}
	fps := float64(m.frames) / elapsed.Seconds()
	m.fps = fps
	m.samples = append(m.samples, fps)
	if len(m.samples) > m.maxSamples {
		m.samples = m.samples[len(m.samples)-m.maxSamples:]
	}
	if fps < MinFPS {
		m.drops++
	}
	m.frames = 0
	m.lastMeasure = now
}

// FPS is the latest measurement, 0 before the first full window.
func (m *Monitor) FPS() float64 {
	return m.fps
}

// Average is the mean of the kept measurements.
func (m *Monitor) Average() float64 {
	if len(m.samples) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range m.samples {
		sum += s
	}
	return sum / float64(len(m.samples))
}

// Samples returns a copy of the kept measurements, oldest first.
func (m *Monitor) Samples() []float64 {
	return append([]float64(nil), m.samples...)
}

// Drops is how many measurements fell below MinFPS.
func (m *Monitor) Drops() int {
	return m.drops
}

// Reset forgets all measurements.
func (m *Monitor) Reset() {
	m.lastMeasure = time.Time{}
	m.frames = 0
	m.fps = 0
	m.samples = nil
	m.drops = 0
}

// Fixed is a frame rate reported by someone else, such as a remote client.
type Fixed float64

func (f Fixed) FPS() float64 {
	return float64(f)
}
