package follow

import "time"

// EventKind identifies an outcome event.
type EventKind int

const (
	FollowStarted EventKind = iota
	ProgressAdvanced
	WarningEntered
	WarningCleared
	LevelCompleted
	LevelFailed
)

func (k EventKind) String() string {
	switch k {
	case FollowStarted:
		return "follow-started"
	case ProgressAdvanced:
		return "progress-advanced"
	case WarningEntered:
		return "warning-entered"
	case WarningCleared:
		return "warning-cleared"
	case LevelCompleted:
		return "level-completed"
	case LevelFailed:
		return "level-failed"
	default:
		return "unknown"
	}
}

// Reason explains a failure.
type Reason string

const (
	ReasonNone     Reason = ""
	ReasonOffTrack Reason = "off-track"
	ReasonSkipped  Reason = "skipped"
	ReasonReleased Reason = "released"
)

// Event is emitted on state changes and progress. Fields not relevant to the
// kind are left zero.
type Event struct {
	Kind     EventKind
	At       time.Time
	Index    int
	Fraction float64
	Elapsed  time.Duration
	Reason   Reason
	Message  string
}
