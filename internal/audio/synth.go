package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

// Wave is an oscillator shape.
type Wave int

const (
	WaveSine Wave = iota
	WaveSquare
	WaveSaw
)

type oscillator struct {
	freq     float64
	phase    float64
	position int
	length   int
	wave     Wave
	rate     beep.SampleRate
}

// Tone returns a streamer producing a fixed-frequency wave for d.
func Tone(freq float64, d time.Duration, wave Wave, rate beep.SampleRate) beep.Streamer {
	return &oscillator{freq: freq, length: rate.N(d), wave: wave, rate: rate}
}

func (o *oscillator) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		if o.position >= o.length {
			return i, i > 0
		}
		var v float64
		switch o.wave {
		case WaveSquare:
			v = 1
			if o.phase >= 0.5 {
				v = -1
			}
		case WaveSaw:
			v = 2 * (o.phase - 0.5)
		default:
			v = math.Sin(2 * math.Pi * o.phase)
		}
		samples[i][0] = v
		samples[i][1] = v
		o.phase += o.freq / float64(o.rate)
		o.phase -= math.Floor(o.phase)
		o.position++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// envelope fades a stream in over attack and out over release.
type envelope struct {
	streamer beep.Streamer
	position int
	attack   int
	release  int
	total    int
}

// Shape applies a linear attack/release envelope to a streamer of length d.
func Shape(s beep.Streamer, d, attack, release time.Duration, rate beep.SampleRate) beep.Streamer {
	return &envelope{
		streamer: s,
		attack:   rate.N(attack),
		release:  rate.N(release),
		total:    rate.N(d),
	}
}

func (e *envelope) Stream(samples [][2]float64) (int, bool) {
	n, ok := e.streamer.Stream(samples)
	for i := 0; i < n; i++ {
		if e.position >= e.total {
			return i, i > 0
		}
		gain := 1.0
		if e.attack > 0 && e.position < e.attack {
			gain = float64(e.position) / float64(e.attack)
		}
		if left := e.total - e.position; e.release > 0 && left <= e.release {
			gain = math.Min(gain, float64(left)/float64(e.release))
		}
		samples[i][0] *= gain
		samples[i][1] *= gain
		e.position++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.streamer.Err() }

func withVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}

func note(freq float64, d time.Duration, wave Wave, rate beep.SampleRate) beep.Streamer {
	return Shape(Tone(freq, d, wave, rate), d, 5*time.Millisecond, d/2, rate)
}

// Streamer builds the sound for a cue at the given volume.
func Streamer(c Cue, vol float64, rate beep.SampleRate) beep.Streamer {
	var s beep.Streamer
	switch c {
	case CueStart:
		s = beep.Seq(
			note(523.25, 70*time.Millisecond, WaveSine, rate),
			note(783.99, 90*time.Millisecond, WaveSine, rate),
		)
	case CueWarning:
		s = beep.Seq(
			note(110, 100*time.Millisecond, WaveSaw, rate),
			beep.Silence(rate.N(50*time.Millisecond)),
			note(110, 100*time.Millisecond, WaveSaw, rate),
		)
	case CueWin:
		s = beep.Seq(
			note(523.25, 90*time.Millisecond, WaveSquare, rate),
			note(659.25, 90*time.Millisecond, WaveSquare, rate),
			note(783.99, 90*time.Millisecond, WaveSquare, rate),
			note(1046.5, 200*time.Millisecond, WaveSquare, rate),
		)
	case CueLoss:
		s = beep.Seq(
			note(220, 150*time.Millisecond, WaveSaw, rate),
			note(164.81, 350*time.Millisecond, WaveSaw, rate),
		)
	default:
		return nil
	}
	return withVolume(s, vol)
}
