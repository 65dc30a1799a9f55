// Package follow implements the attempt state machine: waiting at the
// start marker, following the path, warning after drifting, and the two
// terminal outcomes.
package follow

import (
	"time"

	"github.com/verte-zerg/wireloop/internal/log"
	"github.com/verte-zerg/wireloop/internal/tolerance"
)

// Debounce is the minimum spacing between two transitions. Transitions into
// Failed are never debounced.
const Debounce = 50 * time.Millisecond

// State is the follow state of an attempt.
type State int

const (
	PreGame State = iota
	Following
	Warning
	Completed
	Failed
)

func (s State) String() string {
	switch s {
	case PreGame:
		return "pregame"
	case Following:
		return "following"
	case Warning:
		return "warning"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the attempt is over.
func (s State) Terminal() bool {
	return s == Completed || s == Failed
}

// Active reports whether the player is on the path.
func (s State) Active() bool {
	return s == Following || s == Warning
}

var legal = map[State]map[State]bool{
	PreGame:   {Following: true, Failed: true},
	Following: {Warning: true, Completed: true, Failed: true},
	Warning:   {Following: true, Failed: true},
	Completed: {PreGame: true},
	Failed:    {PreGame: true},
}

// Legal reports whether from -> to is an allowed transition.
func Legal(from, to State) bool {
	return legal[from][to]
}

// Machine tracks one attempt. It is not safe for concurrent use; all
// timestamps come from the callers.
type Machine struct {
	logger   *log.Logger
	messages *Messages

	state          State
	lastTransition time.Time
	followStart    time.Time
	endedAt        time.Time
	offTrackSince  time.Time
	warningSince   time.Time
	releasedAt     time.Time
	lastClass      tolerance.Classification

	reason  Reason
	message string
	events  []Event
}

// New returns a machine in PreGame. Nil logger and messages are allowed.
func New(logger *log.Logger, messages *Messages) *Machine {
	if messages == nil {
		messages = NewMessages(nil)
	}
	return &Machine{logger: logger, messages: messages}
}

func (m *Machine) State() State {
	return m.state
}

// Reason is the failure reason, set only in Failed.
func (m *Machine) Reason() Reason {
	return m.reason
}

// Message is the failure message, set only in Failed.
func (m *Machine) Message() string {
	return m.message
}

// FollowStart is when the attempt entered Following, zero before.
func (m *Machine) FollowStart() time.Time {
	return m.followStart
}

// Elapsed is the time spent since the attempt started. It stops counting
// once the attempt is over.
func (m *Machine) Elapsed(now time.Time) time.Duration {
	if m.followStart.IsZero() {
		return 0
	}
	if !m.endedAt.IsZero() {
		now = m.endedAt
	}
	return now.Sub(m.followStart)
}

// WarningRemaining is how long the warning overlay has left, zero outside
// Warning.
func (m *Machine) WarningRemaining(now time.Time, p tolerance.Policy) time.Duration {
	if m.state != Warning || m.warningSince.IsZero() {
		return 0
	}
	left := p.WarningDuration - now.Sub(m.warningSince)
	if left < 0 {
		return 0
	}
	return left
}

// ReleasePending reports whether the pointer was lifted and the release
// grace period is running.
func (m *Machine) ReleasePending() bool {
	return !m.releasedAt.IsZero()
}

// PointerDown handles a press. In PreGame the attempt starts when the press
// lands on the start marker; while Following it cancels a pending release.
// It reports whether the attempt started.
func (m *Machine) PointerDown(now time.Time, onStart bool) bool {
	switch m.state {
	case PreGame:
		if !onStart {
			return false
		}
		if !m.transition(now, Following) {
			return false
		}
		m.followStart = now
		m.offTrackSince = time.Time{}
		m.warningSince = time.Time{}
		m.releasedAt = time.Time{}
		m.emit(Event{Kind: FollowStarted, At: now})
		return true
	case Following:
		m.releasedAt = time.Time{}
	}
	return false
}

// PointerUp handles a release. Following starts the release grace period;
// a release during Warning fails the attempt at once.
func (m *Machine) PointerUp(now time.Time) {
	switch m.state {
	case Following:
		if m.releasedAt.IsZero() {
			m.releasedAt = now
		}
	case Warning:
		m.Fail(now, ReasonReleased)
	}
}

// Observe feeds the classification of the current pointer sample and then
// runs the timers.
func (m *Machine) Observe(now time.Time, class tolerance.Classification, p tolerance.Policy) {
	if !m.state.Active() {
		return
	}
	m.lastClass = class

	switch m.state {
	case Following:
		if class.Valid() {
			m.offTrackSince = time.Time{}
			break
		}
		if m.offTrackSince.IsZero() {
			m.offTrackSince = now
		}
		if now.Sub(m.offTrackSince) > p.GracePeriod && m.transition(now, Warning) {
			m.warningSince = now
			m.emit(Event{Kind: WarningEntered, At: now, Elapsed: m.Elapsed(now), Reason: reasonFor(class)})
		}
	case Warning:
		if class.Valid() && m.transition(now, Following) {
			m.offTrackSince = time.Time{}
			m.warningSince = time.Time{}
			m.emit(Event{Kind: WarningCleared, At: now, Elapsed: m.Elapsed(now)})
			return
		}
	}
	m.Tick(now, p)
}

// Tick runs the release and warning timers without a new sample.
func (m *Machine) Tick(now time.Time, p tolerance.Policy) {
	switch m.state {
	case Following:
		if !m.releasedAt.IsZero() && now.Sub(m.releasedAt) >= p.ReleaseGracePeriod {
			m.Fail(now, ReasonReleased)
		}
	case Warning:
		if !m.releasedAt.IsZero() {
			m.Fail(now, ReasonReleased)
			return
		}
		if !m.warningSince.IsZero() && now.Sub(m.warningSince) > p.WarningDuration {
			m.Fail(now, reasonFor(m.lastClass))
		}
	}
}

// Complete finishes a Following attempt. It reports whether the transition
// happened.
func (m *Machine) Complete(now time.Time) bool {
	if m.state != Following {
		return false
	}
	if !m.transition(now, Completed) {
		return false
	}
	m.releasedAt = time.Time{}
	m.endedAt = now
	m.emit(Event{Kind: LevelCompleted, At: now, Elapsed: m.Elapsed(now)})
	return true
}

// Fail ends the attempt with reason and a random message.
func (m *Machine) Fail(now time.Time, reason Reason) bool {
	if !m.transition(now, Failed) {
		return false
	}
	m.reason = reason
	m.message = m.messages.Pick()
	m.releasedAt = time.Time{}
	m.warningSince = time.Time{}
	m.offTrackSince = time.Time{}
	if !m.followStart.IsZero() {
		m.endedAt = now
	}
	m.emit(Event{Kind: LevelFailed, At: now, Elapsed: m.Elapsed(now), Reason: reason, Message: m.message})
	return true
}

// Reset puts the machine back to PreGame and clears every timestamp.
func (m *Machine) Reset() {
	if m.state.Active() {
		m.logger.Debugf("follow: reset during %s", m.state)
	}
	m.state = PreGame
	m.lastTransition = time.Time{}
	m.followStart = time.Time{}
	m.endedAt = time.Time{}
	m.offTrackSince = time.Time{}
	m.warningSince = time.Time{}
	m.releasedAt = time.Time{}
	m.lastClass = tolerance.OnTrack
	m.reason = ReasonNone
	m.message = ""
	m.events = m.events[:0]
}

// Emit queues an event produced outside the machine, such as progress.
func (m *Machine) Emit(e Event) {
	m.emit(e)
}

// Drain returns queued events in order and clears the queue.
func (m *Machine) Drain() []Event {
	if len(m.events) == 0 {
		return nil
	}
	out := make([]Event, len(m.events))
	copy(out, m.events)
	m.events = m.events[:0]
	return out
}

func (m *Machine) transition(now time.Time, to State) bool {
	if !Legal(m.state, to) {
		m.logger.Warnf("follow: illegal transition %s -> %s", m.state, to)
		return false
	}
	if to != Failed && !m.lastTransition.IsZero() && now.Sub(m.lastTransition) < Debounce {
		m.logger.Debugf("follow: debounced %s -> %s", m.state, to)
		return false
	}
	m.logger.Debugf("follow: %s -> %s", m.state, to)
	m.state = to
	m.lastTransition = now
	return true
}

func (m *Machine) emit(e Event) {
	m.events = append(m.events, e)
}

func reasonFor(c tolerance.Classification) Reason {
	if c == tolerance.Skipping {
		return ReasonSkipped
	}
	return ReasonOffTrack
}
