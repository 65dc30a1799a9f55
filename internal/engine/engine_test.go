package engine

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/wireloop/internal/follow"
	"github.com/verte-zerg/wireloop/internal/levels"
	"github.com/verte-zerg/wireloop/internal/model"
	"github.com/verte-zerg/wireloop/internal/perf"
	"github.com/verte-zerg/wireloop/internal/tolerance"
)

const frame = 16 * time.Millisecond

var t0 = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func testCatalog() *levels.Catalog {
	return levels.NewCatalog(
		model.Level{
			ID:         1,
			Name:       "Line",
			Difficulty: model.DifficultyMedium,
			Points:     []model.Point{{X: 0, Y: 0}, {X: 50, Y: 0}, {X: 100, Y: 0}, {X: 150, Y: 0}, {X: 200, Y: 0}},
			Rules:      levels.DefaultRules(model.DifficultyMedium),
		},
	)
}

func newEngine(t *testing.T, device Device) *Engine {
	t.Helper()
	e := New(testCatalog(), Options{
		Device:      device,
		Performance: perf.Fixed(60),
		Messages:    follow.NewMessagesWithSeed(nil, 1),
	})
	e.StartLevel(1)
	require.False(t, e.InMenu())
	require.Greater(t, len(e.Path()), 40)
	return e
}

func ev(p model.Point) PointerEvent {
	return PointerEvent{X: p.X, Y: p.Y, PointerID: 1, Primary: true}
}

func collect(events []follow.Event, into map[follow.EventKind]int) {
	for _, e := range events {
		into[e.Kind]++
	}
}

func TestMenuFrame(t *testing.T) {
	e := New(testCatalog(), Options{})
	f := e.Update(t0)
	assert.True(t, f.InMenu)
	assert.Equal(t, follow.PreGame, f.State)

	e.StartLevel(1)
	e.GoToMenu()
	assert.True(t, e.Update(t0).InMenu)
	assert.Empty(t, e.Path())
}

func TestStartRequiresStartMarker(t *testing.T) {
	e := newEngine(t, nil)
	start := e.Path()[0]

	e.PointerDown(t0, ev(model.Point{X: start.X + 150, Y: start.Y + 80}))
	f := e.Update(t0)
	assert.Equal(t, follow.PreGame, f.State)
	assert.True(t, f.HasCursor)
	e.PointerUp(t0.Add(frame), ev(model.Point{X: start.X + 150, Y: start.Y + 80}))

	now := t0.Add(2 * frame)
	e.PointerDown(now, ev(start))
	f = e.Update(now)
	assert.Equal(t, follow.Following, f.State)
	require.NotEmpty(t, f.Events)
	assert.Equal(t, follow.FollowStarted, f.Events[0].Kind)
}

func TestTouchWidensStartRadius(t *testing.T) {
	start := model.Point{X: 0, Y: 40}

	mouse := newEngine(t, StaticDevice{})
	mouse.PointerDown(t0, ev(start))
	assert.Equal(t, follow.PreGame, mouse.Update(t0).State)

	touch := newEngine(t, StaticDevice{Touch: true})
	touch.PointerDown(t0, ev(start))
	assert.Equal(t, follow.Following, touch.Update(t0).State)
	assert.Equal(t, tolerance.Touch, touch.Device())
}

func TestTracingPathCompletes(t *testing.T) {
	e := newEngine(t, nil)
	path := e.Path()
	seen := map[follow.EventKind]int{}

	now := t0
	e.PointerDown(now, ev(path[0]))
	collect(e.Update(now).Events, seen)

	var last Frame
	for i := 1; i < len(path); i++ {
		now = now.Add(frame)
		e.PointerMove(now, ev(path[i]))
		last = e.Update(now)
		collect(last.Events, seen)
		assert.Equal(t, i, last.ProgressIndex)
	}

	assert.Equal(t, follow.Completed, last.State)
	assert.Zero(t, seen[follow.WarningEntered])
	assert.Equal(t, 1, seen[follow.LevelCompleted])
	assert.Equal(t, len(path)-1, seen[follow.ProgressAdvanced])
	assert.InDelta(t, 1, last.Snapshot.ProgressFraction, 1e-9)
	assert.InDelta(t, float64(len(path)-1)*frame.Seconds(), last.Snapshot.ElapsedSeconds, 1e-6)
	assert.Equal(t, 1, last.Snapshot.Level)
}

func TestStationaryOffTrackFails(t *testing.T) {
	e := newEngine(t, nil)
	start := e.Path()[0]
	maxDev := e.Policy().MaxDeviation

	now := t0
	e.PointerDown(now, ev(start))
	e.Update(now)

	off := model.Point{X: start.X, Y: start.Y + maxDev + 1}
	now = now.Add(frame)
	e.PointerMove(now, ev(off))

	states := []follow.State{}
	var failed *follow.Event
	for i := 0; i < 400 && failed == nil; i++ {
		f := e.Update(now)
		if n := len(states); n == 0 || states[n-1] != f.State {
			states = append(states, f.State)
		}
		for _, evt := range f.Events {
			if evt.Kind == follow.LevelFailed {
				evt := evt
				failed = &evt
			}
		}
		now = now.Add(frame)
	}

	require.NotNil(t, failed)
	assert.Equal(t, []follow.State{follow.Following, follow.Warning, follow.Failed}, states)
	assert.Equal(t, follow.ReasonOffTrack, failed.Reason)
	assert.NotEmpty(t, failed.Message)
}

func TestReleaseFails(t *testing.T) {
	e := newEngine(t, nil)
	path := e.Path()

	now := t0
	e.PointerDown(now, ev(path[0]))
	e.Update(now)
	for i := 1; i <= 5; i++ {
		now = now.Add(frame)
		e.PointerMove(now, ev(path[i]))
		e.Update(now)
	}

	now = now.Add(frame)
	e.PointerUp(now, ev(path[5]))
	f := e.Update(now)
	assert.Equal(t, follow.Following, f.State, "release grace running")

	var reason follow.Reason
	for i := 0; i < 10 && f.State != follow.Failed; i++ {
		now = now.Add(frame)
		f = e.Update(now)
		for _, evt := range f.Events {
			if evt.Kind == follow.LevelFailed {
				reason = evt.Reason
			}
		}
	}
	assert.Equal(t, follow.Failed, f.State)
	assert.Equal(t, follow.ReasonReleased, reason)
	assert.Equal(t, follow.ReasonReleased, f.Reason)
}

func TestRepressWithinGraceContinues(t *testing.T) {
	e := newEngine(t, nil)
	path := e.Path()

	now := t0
	e.PointerDown(now, ev(path[0]))
	e.Update(now)
	now = now.Add(frame)
	e.PointerUp(now, ev(path[0]))
	e.Update(now)
	now = now.Add(frame)
	e.PointerDown(now, ev(path[1]))
	e.Update(now)

	now = now.Add(200 * time.Millisecond)
	assert.Equal(t, follow.Following, e.Update(now).State)
}

func TestSkippingAheadDoesNotAdvance(t *testing.T) {
	e := newEngine(t, nil)
	path := e.Path()
	jump := e.Policy().MaxForwardJump

	now := t0
	e.PointerDown(now, ev(path[0]))
	e.Update(now)

	now = now.Add(frame)
	e.PointerMove(now, ev(path[jump+10]))
	f := e.Update(now)
	assert.Equal(t, tolerance.Skipping, f.Classification)
	assert.Equal(t, 0, f.ProgressIndex)
	assert.Equal(t, follow.Following, f.State)
}

func TestProgressIsMonotonic(t *testing.T) {
	e := newEngine(t, nil)
	path := e.Path()
	rng := rand.New(rand.NewSource(11))

	now := t0
	e.PointerDown(now, ev(path[0]))
	e.Update(now)

	prev := 0
	for i := 0; i < 600; i++ {
		now = now.Add(frame)
		idx := prev + rng.Intn(21) - 8
		if idx < 0 {
			idx = 0
		}
		if idx >= len(path) {
			idx = len(path) - 1
		}
		p := path[idx]
		p.Y += rng.Float64()*20 - 10
		e.PointerMove(now, ev(p))
		f := e.Update(now)
		if f.ProgressIndex < prev {
			t.Fatalf("progress went from %d to %d", prev, f.ProgressIndex)
		}
		prev = f.ProgressIndex
		if f.State.Terminal() {
			break
		}
	}
}

func TestInputAnomaliesAreDropped(t *testing.T) {
	e := newEngine(t, nil)
	start := e.Path()[0]

	e.PointerDown(t0, PointerEvent{X: start.X, Y: start.Y, PointerID: 2, Primary: false})
	assert.Equal(t, follow.PreGame, e.Update(t0).State, "secondary pointer")

	e.PointerDown(t0, ev(start))
	e.Update(t0)

	now := t0.Add(frame)
	e.PointerDown(now, PointerEvent{X: 100, Y: 0, PointerID: 7, Primary: true})
	f := e.Update(now)
	assert.Equal(t, start, f.Cursor, "second press while held")

	e.PointerMove(now, PointerEvent{X: 1e9, Y: 0, PointerID: 1, Primary: true})
	assert.Equal(t, start, e.Update(now).Cursor, "out of bounds")

	next := e.Path()[1]
	e.PointerMove(now, ev(next))
	assert.Equal(t, next, e.Update(now).Cursor)

	now = now.Add(time.Millisecond)
	e.PointerMove(now, ev(model.Point{X: 150, Y: 0}))
	assert.Equal(t, next, e.Update(now).Cursor, "implausible speed")
}

func TestCoarseJumpWithinDeviationIsKept(t *testing.T) {
	e := newEngine(t, nil)
	start := e.Path()[0]
	e.PointerDown(t0, ev(start))
	e.Update(t0)

	// Two terminal rows arriving in one read burst.
	now := t0.Add(200 * time.Microsecond)
	jump := model.Point{X: start.X + 29, Y: start.Y}
	e.PointerMove(now, ev(jump))
	assert.Equal(t, jump, e.Update(now).Cursor)

	now = now.Add(200 * time.Microsecond)
	far := model.Point{X: jump.X + 3*e.Policy().MaxDeviation, Y: jump.Y}
	e.PointerMove(now, ev(far))
	assert.Equal(t, jump, e.Update(now).Cursor, "jump beyond deviation in a burst")
}

func TestUnknownLevelFallsBack(t *testing.T) {
	e := New(testCatalog(), Options{})
	lvl := e.StartLevel(99)
	assert.Equal(t, 1, lvl.ID)
	assert.Equal(t, follow.PreGame, e.State())
}

func TestResetClearsAttempt(t *testing.T) {
	e := newEngine(t, nil)
	path := e.Path()
	now := t0
	e.PointerDown(now, ev(path[0]))
	e.Update(now)
	for i := 1; i <= 10; i++ {
		now = now.Add(frame)
		e.PointerMove(now, ev(path[i]))
		e.Update(now)
	}

	e.ResetLevel()
	f := e.Update(now)
	assert.Equal(t, follow.PreGame, f.State)
	assert.Zero(t, f.ProgressIndex)
	assert.Zero(t, f.Snapshot.ElapsedSeconds)
	assert.False(t, f.HasCursor)
}
