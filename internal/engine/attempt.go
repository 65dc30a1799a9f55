package engine

import (
	"github.com/verte-zerg/wireloop/internal/follow"
	"github.com/verte-zerg/wireloop/internal/model"
	"github.com/verte-zerg/wireloop/internal/tolerance"
)

// Recorder builds a persisted attempt from the events of consecutive frames.
type Recorder struct {
	warnings int
}

// Record scans the events of f and returns the finished attempt when the
// frame carries a completion or failure.
func (r *Recorder) Record(lvl model.Level, device tolerance.Device, f Frame) (model.Attempt, bool) {
	for _, ev := range f.Events {
		switch ev.Kind {
		case follow.FollowStarted:
			r.warnings = 0
		case follow.WarningEntered:
			r.warnings++
		case follow.LevelCompleted, follow.LevelFailed:
			outcome := model.OutcomeCompleted
			if ev.Kind == follow.LevelFailed {
				outcome = model.OutcomeFailed
			}
			a := model.Attempt{
				Level:      lvl.ID,
				LevelName:  lvl.Name,
				Difficulty: lvl.Difficulty,
				Device:     device.String(),
				Outcome:    outcome,
				Reason:     string(ev.Reason),
				StartedAt:  ev.At.Add(-ev.Elapsed),
				EndedAt:    ev.At,
				DurationMs: ev.Elapsed.Milliseconds(),
				Progress:   f.Snapshot.ProgressFraction,
				Warnings:   r.warnings,
			}
			r.warnings = 0
			return a, true
		}
	}
	return model.Attempt{}, false
}

// Reset forgets warnings counted for an abandoned attempt.
func (r *Recorder) Reset() {
	r.warnings = 0
}
