package server

import (
	"github.com/verte-zerg/wireloop/internal/engine"
	"github.com/verte-zerg/wireloop/internal/follow"
	"github.com/verte-zerg/wireloop/internal/model"
)

// Client message types.
const (
	msgHello = "hello"
	msgStart = "start"
	msgReset = "reset"
	msgMenu  = "menu"
	msgDown  = "down"
	msgMove  = "move"
	msgUp    = "up"
	msgFPS   = "fps"
)

// Server message types.
const (
	msgWelcome = "welcome"
	msgLevel   = "level"
	msgFrame   = "frame"
	msgError   = "error"
)

// Vibration patterns in milliseconds, alternating on and off.
var (
	hapticWarning = []int{100, 50, 100}
	hapticSuccess = []int{200}
	hapticFailure = []int{100, 100, 100, 100, 100}
)

// clientMessage is the union of everything a client may send.
type clientMessage struct {
	Type      string  `json:"type"`
	Touch     bool    `json:"touch,omitempty"`
	FPS       float64 `json:"fps,omitempty"`
	Level     int     `json:"level,omitempty"`
	X         float64 `json:"x,omitempty"`
	Y         float64 `json:"y,omitempty"`
	PointerID int     `json:"pointerId,omitempty"`
	Primary   bool    `json:"primary,omitempty"`
	Value     float64 `json:"value,omitempty"`
}

type point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type levelInfo struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Difficulty  string  `json:"difficulty"`
	Points      []point `json:"points,omitempty"`
}

type welcomeMessage struct {
	Type   string      `json:"type"`
	ID     string      `json:"id"`
	Levels []levelInfo `json:"levels"`
}

type levelMessage struct {
	Type        string  `json:"type"`
	Level       int     `json:"level"`
	Name        string  `json:"name"`
	Difficulty  string  `json:"difficulty"`
	StartRadius float64 `json:"startRadius"`
	Path        []point `json:"path"`
}

type eventMessage struct {
	Kind      string  `json:"kind"`
	Index     int     `json:"index,omitempty"`
	Fraction  float64 `json:"fraction,omitempty"`
	ElapsedMs int64   `json:"elapsedMs"`
	Reason    string  `json:"reason,omitempty"`
	Message   string  `json:"message,omitempty"`
}

type frameMessage struct {
	Type               string         `json:"type"`
	State              string         `json:"state"`
	Level              int            `json:"level"`
	Elapsed            float64        `json:"elapsed"`
	Progress           float64        `json:"progress"`
	ProgressIndex      int            `json:"progressIndex"`
	Cursor             *point         `json:"cursor,omitempty"`
	Pressed            bool           `json:"pressed"`
	Classification     string         `json:"classification"`
	Distance           float64        `json:"distance"`
	WarningRemainingMs int64          `json:"warningRemainingMs,omitempty"`
	Reason             string         `json:"reason,omitempty"`
	Message            string         `json:"message,omitempty"`
	Events             []eventMessage `json:"events,omitempty"`
	Haptic             []int          `json:"haptic,omitempty"`
}

type errorMessage struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

func toPoints(ps []model.Point) []point {
	out := make([]point, len(ps))
	for i, p := range ps {
		out[i] = point{X: p.X, Y: p.Y}
	}
	return out
}

func toLevelInfo(l model.Level, withPoints bool) levelInfo {
	info := levelInfo{
		ID:          l.ID,
		Name:        l.Name,
		Description: l.Description,
		Difficulty:  string(l.Difficulty),
	}
	if withPoints {
		info.Points = toPoints(l.Points)
	}
	return info
}

func newFrameMessage(f engine.Frame) frameMessage {
	msg := frameMessage{
		Type:               msgFrame,
		State:              f.State.String(),
		Level:              f.Snapshot.Level,
		Elapsed:            f.Snapshot.ElapsedSeconds,
		Progress:           f.Snapshot.ProgressFraction,
		ProgressIndex:      f.ProgressIndex,
		Pressed:            f.Pressed,
		Classification:     f.Classification.String(),
		Distance:           f.Distance,
		WarningRemainingMs: f.WarningRemaining.Milliseconds(),
		Reason:             string(f.Reason),
		Message:            f.Message,
	}
	if f.HasCursor {
		msg.Cursor = &point{X: f.Cursor.X, Y: f.Cursor.Y}
	}
	for _, ev := range f.Events {
		msg.Events = append(msg.Events, eventMessage{
			Kind:      ev.Kind.String(),
			Index:     ev.Index,
			Fraction:  ev.Fraction,
			ElapsedMs: ev.Elapsed.Milliseconds(),
			Reason:    string(ev.Reason),
			Message:   ev.Message,
		})
		if h := hapticFor(ev.Kind); h != nil {
			msg.Haptic = h
		}
	}
	return msg
}

func hapticFor(kind follow.EventKind) []int {
	switch kind {
	case follow.WarningEntered:
		return hapticWarning
	case follow.LevelCompleted:
		return hapticSuccess
	case follow.LevelFailed:
		return hapticFailure
	}
	return nil
}
