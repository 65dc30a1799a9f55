// Package engine drives one player's attempts frame by frame: it buffers
// pointer input, queries the path, applies the tolerance policy and feeds
// the follow state machine.
package engine

import (
	"math"
	"time"

	"github.com/verte-zerg/wireloop/internal/curve"
	"github.com/verte-zerg/wireloop/internal/follow"
	"github.com/verte-zerg/wireloop/internal/geometry"
	"github.com/verte-zerg/wireloop/internal/levels"
	"github.com/verte-zerg/wireloop/internal/log"
	"github.com/verte-zerg/wireloop/internal/model"
	"github.com/verte-zerg/wireloop/internal/progress"
	"github.com/verte-zerg/wireloop/internal/tolerance"
)

const (
	defaultTouchSamples      = 8
	defaultTouchSampleRadius = 6.0
	defaultMaxPointerSpeed   = 20000.0
	touchStartScale          = 1.5
	minSpeedInterval         = time.Millisecond
)

// Device reports what kind of pointer the player uses.
type Device interface {
	IsTouch() bool
}

// Performance reports the current frame rate; 0 means unknown.
type Performance interface {
	FPS() float64
}

// StaticDevice is a Device fixed at construction.
type StaticDevice struct {
	Touch bool
}

func (d StaticDevice) IsTouch() bool {
	return d.Touch
}

type unknownFPS struct{}

func (unknownFPS) FPS() float64 { return 0 }

// PointerEvent is one raw pointer sample in level coordinates.
type PointerEvent struct {
	X         float64
	Y         float64
	PointerID int
	Primary   bool
}

// Options configures an Engine. Zero values pick defaults.
type Options struct {
	Logger      *log.Logger
	Device      Device
	Performance Performance
	Messages    *follow.Messages

	// TouchSamples and TouchSampleRadius shape the ring of extra samples
	// used for touch input.
	TouchSamples      int
	TouchSampleRadius float64

	// MaxPointerSpeed is the fastest plausible pointer movement in level
	// units per second; faster moves are dropped.
	MaxPointerSpeed float64
}

// Snapshot is the per-frame stats block.
type Snapshot struct {
	ElapsedSeconds   float64
	Level            int
	ProgressFraction float64
}

// Frame is everything a renderer needs after one Update.
type Frame struct {
	State            follow.State
	Snapshot         Snapshot
	Events           []follow.Event
	Cursor           model.Point
	HasCursor        bool
	Pressed          bool
	Classification   tolerance.Classification
	Distance         float64
	ProgressIndex    int
	WarningRemaining time.Duration
	Reason           follow.Reason
	Message          string
	InMenu           bool
}

type pointer struct {
	has     bool
	pressed bool
	id      int
	pos     model.Point
	at      time.Time
}

// Engine owns the state of one player. It is not safe for concurrent use.
type Engine struct {
	logger   *log.Logger
	device   Device
	perf     Performance
	provider levels.Provider

	ring     []model.Point
	maxSpeed float64

	machine *follow.Machine
	tracker *progress.Tracker

	level  model.Level
	path   []model.Point
	loaded bool

	ptr       pointer
	lastClass tolerance.Classification
	lastDist  float64
}

// New returns an engine in the menu.
func New(provider levels.Provider, opts Options) *Engine {
	if opts.Device == nil {
		opts.Device = StaticDevice{}
	}
	if opts.Performance == nil {
		opts.Performance = unknownFPS{}
	}
	if opts.TouchSamples <= 0 {
		opts.TouchSamples = defaultTouchSamples
	}
	if opts.TouchSampleRadius <= 0 {
		opts.TouchSampleRadius = defaultTouchSampleRadius
	}
	if opts.MaxPointerSpeed <= 0 {
		opts.MaxPointerSpeed = defaultMaxPointerSpeed
	}
	return &Engine{
		logger:   opts.Logger,
		device:   opts.Device,
		perf:     opts.Performance,
		provider: provider,
		ring:     geometry.Ring(opts.TouchSampleRadius, opts.TouchSamples),
		maxSpeed: opts.MaxPointerSpeed,
		machine:  follow.New(opts.Logger, opts.Messages),
		tracker:  progress.New(0),
	}
}

// SetDevice swaps the device source, e.g. after a client reports touch.
func (e *Engine) SetDevice(d Device) {
	if d != nil {
		e.device = d
	}
}

// SetPerformance swaps the frame rate source.
func (e *Engine) SetPerformance(p Performance) {
	if p != nil {
		e.perf = p
	}
}

// StartLevel loads level n (falling back as levels.Resolve does) and puts
// the attempt in PreGame.
func (e *Engine) StartLevel(n int) model.Level {
	lvl := levels.Resolve(e.provider, n, e.logger)
	e.level = lvl
	e.path = curve.Smooth(lvl.Points, lvl.Rules.PointSpacing, lvl.Rules.MaxPoints)
	e.loaded = true
	e.logger.Infof("engine: level %d %q loaded, %d path points", lvl.ID, lvl.Name, len(e.path))
	e.ResetLevel()
	return lvl
}

// ResetLevel restarts the current level.
func (e *Engine) ResetLevel() {
	e.machine.Reset()
	e.tracker.Reset(len(e.path))
	e.ptr = pointer{}
	e.lastClass = tolerance.OnTrack
	e.lastDist = 0
}

// GoToMenu abandons the current level.
func (e *Engine) GoToMenu() {
	e.ResetLevel()
	e.loaded = false
	e.level = model.Level{}
	e.path = nil
	e.tracker.Reset(0)
}

// Level is the loaded level; zero in the menu.
func (e *Engine) Level() model.Level {
	return e.level
}

// Path is the smoothed path of the loaded level. Callers must not modify it.
func (e *Engine) Path() []model.Point {
	return e.path
}

// InMenu reports whether no level is loaded.
func (e *Engine) InMenu() bool {
	return !e.loaded
}

func (e *Engine) State() follow.State {
	return e.machine.State()
}

// Device is the current input kind.
func (e *Engine) Device() tolerance.Device {
	if e.device.IsTouch() {
		return tolerance.Touch
	}
	return tolerance.Mouse
}

// Policy is the tolerance policy for the current frame rate.
func (e *Engine) Policy() tolerance.Policy {
	return tolerance.Compute(e.level.Rules, e.Device(), e.perf.FPS())
}

// PointerDown handles a press. Presses from a second pointer while one is
// held are ignored.
func (e *Engine) PointerDown(now time.Time, ev PointerEvent) {
	if !e.accept(ev, "down") {
		return
	}
	if e.ptr.pressed && e.ptr.id != ev.PointerID {
		e.logger.Debugf("engine: ignoring press from pointer %d while %d is held", ev.PointerID, e.ptr.id)
		return
	}
	pos := model.Point{X: ev.X, Y: ev.Y}
	e.ptr = pointer{has: true, pressed: true, id: ev.PointerID, pos: pos, at: now}
	if !e.loaded {
		return
	}
	if e.machine.PointerDown(now, e.onStart(pos)) {
		e.tracker.Reset(len(e.path))
		e.logger.Debugf("engine: attempt started on level %d", e.level.ID)
	}
}

// PointerMove buffers the latest position of the held pointer, or of the
// hovering pointer when nothing is held.
func (e *Engine) PointerMove(now time.Time, ev PointerEvent) {
	if !e.accept(ev, "move") {
		return
	}
	if e.ptr.pressed && e.ptr.id != ev.PointerID {
		return
	}
	pos := model.Point{X: ev.X, Y: ev.Y}
	if e.ptr.has && e.ptr.pressed && e.implausible(now, pos) {
		e.logger.Debugf("engine: dropping implausible move to (%.1f, %.1f)", pos.X, pos.Y)
		return
	}
	e.ptr.has = true
	e.ptr.id = ev.PointerID
	e.ptr.pos = pos
	e.ptr.at = now
}

// PointerUp handles a release of the held pointer.
func (e *Engine) PointerUp(now time.Time, ev PointerEvent) {
	if !ev.Primary {
		return
	}
	if !e.ptr.pressed || e.ptr.id != ev.PointerID {
		return
	}
	e.ptr.pressed = false
	if finite(ev.X, ev.Y) && inBounds(ev.X, ev.Y) {
		e.ptr.pos = model.Point{X: ev.X, Y: ev.Y}
		e.ptr.at = now
	}
	if e.loaded {
		e.machine.PointerUp(now)
	}
}

// Update advances one frame.
func (e *Engine) Update(now time.Time) Frame {
	f := Frame{
		Cursor:    e.ptr.pos,
		HasCursor: e.ptr.has,
		Pressed:   e.ptr.pressed,
	}
	if !e.loaded {
		f.InMenu = true
		f.State = e.machine.State()
		return f
	}

	policy := e.Policy()
	state := e.machine.State()

	if state.Active() {
		if e.ptr.pressed {
			e.step(now, policy)
		} else {
			e.machine.Tick(now, policy)
		}
	}

	f.State = e.machine.State()
	f.Events = e.machine.Drain()
	f.Classification = e.lastClass
	f.Distance = e.lastDist
	f.ProgressIndex = e.tracker.Index()
	f.WarningRemaining = e.machine.WarningRemaining(now, policy)
	f.Reason = e.machine.Reason()
	f.Message = e.machine.Message()
	f.Snapshot = Snapshot{
		ElapsedSeconds:   e.machine.Elapsed(now).Seconds(),
		Level:            e.level.ID,
		ProgressFraction: e.tracker.Fraction(),
	}
	return f
}

func (e *Engine) step(now time.Time, policy tolerance.Policy) {
	var (
		match geometry.Match
		err   error
	)
	anchor := e.tracker.Index()
	radius := e.level.Rules.SearchRadius
	if e.Device() == tolerance.Touch {
		match, err = geometry.NearestSampled(e.path, e.ptr.pos, anchor, radius, e.ring)
	} else {
		match, err = geometry.Nearest(e.path, e.ptr.pos, anchor, radius)
	}
	if err != nil {
		e.logger.Warnf("engine: nearest point query: %v", err)
		return
	}

	delta := match.Index - anchor
	class := tolerance.Classify(match.Distance, delta, policy)
	e.lastClass = class
	e.lastDist = match.Distance

	e.machine.Observe(now, class, policy)
	if e.machine.State() != follow.Following || !class.Valid() {
		return
	}
	if e.tracker.TryAdvance(match.Index, policy) {
		e.machine.Emit(follow.Event{
			Kind:     follow.ProgressAdvanced,
			At:       now,
			Index:    e.tracker.Index(),
			Fraction: e.tracker.Fraction(),
			Elapsed:  e.machine.Elapsed(now),
		})
	}
	if e.tracker.Complete() {
		e.machine.Complete(now)
	}
}

func (e *Engine) onStart(pos model.Point) bool {
	if len(e.path) == 0 {
		return false
	}
	radius := e.level.Rules.StartRadius
	if e.Device() == tolerance.Touch {
		radius *= touchStartScale
	}
	return geometry.Distance(pos, e.path[0]) <= radius
}

func (e *Engine) accept(ev PointerEvent, kind string) bool {
	if !ev.Primary {
		e.logger.Debugf("engine: ignoring %s from secondary pointer %d", kind, ev.PointerID)
		return false
	}
	if !finite(ev.X, ev.Y) || !inBounds(ev.X, ev.Y) {
		e.logger.Debugf("engine: dropping %s with invalid coordinates (%v, %v)", kind, ev.X, ev.Y)
		return false
	}
	return true
}

// implausible reports whether moving to pos since the last sample is too
// fast. Moves within MaxDeviation always pass: coarse inputs such as
// terminal cells jump that far between samples stamped almost together.
func (e *Engine) implausible(now time.Time, pos model.Point) bool {
	dist := geometry.Distance(pos, e.ptr.pos)
	if e.loaded && dist <= e.Policy().MaxDeviation {
		return false
	}
	dt := now.Sub(e.ptr.at)
	if dt < minSpeedInterval {
		dt = minSpeedInterval
	}
	return dist/dt.Seconds() > e.maxSpeed
}

func finite(x, y float64) bool {
	return !math.IsNaN(x) && !math.IsNaN(y) && !math.IsInf(x, 0) && !math.IsInf(y, 0)
}

func inBounds(x, y float64) bool {
	return math.Abs(x) <= curve.CoordinateLimit && math.Abs(y) <= curve.CoordinateLimit
}
