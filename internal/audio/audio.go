// Package audio plays short synthesized cues for game events.
package audio

import (
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/verte-zerg/wireloop/internal/follow"
)

// SampleRate is the output rate of every cue.
const SampleRate = beep.SampleRate(44100)

// DefaultVolume is the master volume used when none is configured.
const DefaultVolume = 0.5

// Cue identifies a sound.
type Cue int

const (
	CueNone Cue = iota
	CueStart
	CueWarning
	CueWin
	CueLoss
)

func (c Cue) String() string {
	switch c {
	case CueStart:
		return "start"
	case CueWarning:
		return "warning"
	case CueWin:
		return "win"
	case CueLoss:
		return "loss"
	default:
		return "none"
	}
}

// CueFor maps an engine event to its cue.
func CueFor(kind follow.EventKind) Cue {
	switch kind {
	case follow.FollowStarted:
		return CueStart
	case follow.WarningEntered:
		return CueWarning
	case follow.LevelCompleted:
		return CueWin
	case follow.LevelFailed:
		return CueLoss
	default:
		return CueNone
	}
}

// Cues plays sounds.
type Cues interface {
	Play(c Cue)
	Close()
}

// Nop is a silent Cues.
type Nop struct{}

func (Nop) Play(Cue) {}

func (Nop) Close() {}

// Speaker plays cues on the default audio device.
type Speaker struct {
	mu     sync.Mutex
	mixer  *beep.Mixer
	volume float64
	closed bool
}

// NewSpeaker initializes the audio device.
func NewSpeaker(volume float64) (*Speaker, error) {
	if err := speaker.Init(SampleRate, SampleRate.N(50*time.Millisecond)); err != nil {
		return nil, fmt.Errorf("init speaker: %w", err)
	}
	s := &Speaker{mixer: &beep.Mixer{}, volume: volume}
	speaker.Play(s.mixer)
	return s, nil
}

// Play queues a cue on the mixer.
func (s *Speaker) Play(c Cue) {
	st := Streamer(c, s.volume, SampleRate)
	if st == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	speaker.Lock()
	s.mixer.Add(st)
	speaker.Unlock()
}

// Close silences the mixer and releases the device.
func (s *Speaker) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	speaker.Clear()
	speaker.Close()
}
