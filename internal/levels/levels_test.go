package levels

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/wireloop/internal/log"
	"github.com/verte-zerg/wireloop/internal/model"
)

func TestDefaultRulesPerDifficulty(t *testing.T) {
	medium := DefaultRules(model.DifficultyMedium)
	assert.Equal(t, 35.0, medium.BaseTolerance)
	assert.InDelta(t, 45, medium.BaseTolerance*medium.TouchMultiplier, 1e-9)
	assert.Equal(t, 25, medium.MaxProgressJump)
	assert.Equal(t, 15, medium.MaxBacktrack)
	assert.Equal(t, 300*time.Millisecond, medium.GracePeriod)
	assert.Equal(t, 2*time.Second, medium.WarningDuration)
	assert.Equal(t, 75*time.Millisecond, medium.ReleaseGracePeriod)
	assert.Greater(t, medium.SearchRadius, medium.MaxProgressJump)

	easy := DefaultRules(model.DifficultyEasy)
	assert.Equal(t, 45.0, easy.BaseTolerance)
	assert.Equal(t, 1.2, easy.DifficultyMultiplier)
	assert.Equal(t, 500*time.Millisecond, easy.GracePeriod)
	assert.Equal(t, 3*time.Second, easy.WarningDuration)

	hard := DefaultRules(model.DifficultyHard)
	assert.Equal(t, 0.8, hard.DifficultyMultiplier)
	assert.Equal(t, 20, hard.MaxProgressJump)

	expert := DefaultRules(model.DifficultyExpert)
	assert.Equal(t, 25.0, expert.BaseTolerance)
	assert.Equal(t, 15, expert.MaxProgressJump)
	assert.Equal(t, 10, expert.MaxBacktrack)
	assert.Greater(t, expert.MaxPoints, medium.MaxPoints)

	assert.Equal(t, medium, DefaultRules("bogus"))
}

func TestApplyKeepsTouchToleranceAbsolute(t *testing.T) {
	r := Apply(DefaultRules(model.DifficultyMedium), Overrides{BaseTolerance: float64Ptr(20)})
	assert.Equal(t, 20.0, r.BaseTolerance)
	assert.InDelta(t, 45, r.BaseTolerance*r.TouchMultiplier, 1e-9)

	r = Apply(r, Overrides{TouchTolerance: float64Ptr(30)})
	assert.InDelta(t, 30, r.BaseTolerance*r.TouchMultiplier, 1e-9)
}

func TestApplySearchRadius(t *testing.T) {
	base := DefaultRules(model.DifficultyMedium)

	r := Apply(base, Overrides{MaxProgressJump: intPtr(40)})
	assert.Equal(t, 2*(40+15), r.SearchRadius)

	r = Apply(base, Overrides{SearchRadius: intPtr(300)})
	assert.Equal(t, 300, r.SearchRadius)
	r = Apply(r, Overrides{MaxProgressJump: intPtr(10)})
	assert.Equal(t, 300, r.SearchRadius, "explicit radius survives later merges")
}

func TestPresets(t *testing.T) {
	assert.Equal(t, []string{"beginner", "precision", "speed"}, PresetNames())

	p, ok := Preset("beginner")
	require.True(t, ok)
	r := Apply(DefaultRules(model.DifficultyMedium), p)
	assert.Equal(t, 1.5, r.DifficultyMultiplier)
	assert.Equal(t, 800*time.Millisecond, r.GracePeriod)

	p, ok = Preset("speed")
	require.True(t, ok)
	r = Apply(DefaultRules(model.DifficultyMedium), p)
	assert.Equal(t, 30, r.MaxProgressJump)
	assert.Equal(t, 50*time.Millisecond, r.GracePeriod)

	_, ok = Preset("nope")
	assert.False(t, ok)
}

func TestSanitize(t *testing.T) {
	r := model.Rules{BaseTolerance: -1, MaxProgressJump: 0, MaxBacktrack: -3, GracePeriod: -time.Second}
	got, fixes := Sanitize(r)
	assert.NotEmpty(t, fixes)
	assert.Equal(t, 35.0, got.BaseTolerance)
	assert.Equal(t, 1, got.MaxProgressJump)
	assert.Equal(t, 0, got.MaxBacktrack)
	assert.Greater(t, got.SearchRadius, got.MaxProgressJump)
	assert.Zero(t, got.GracePeriod)
	assert.Equal(t, 2.5, got.PointSpacing)

	_, fixes = Sanitize(DefaultRules(model.DifficultyHard))
	assert.Empty(t, fixes)
}

func TestClean(t *testing.T) {
	pts := []model.Point{
		{X: 0, Y: 0},
		{X: 0.2, Y: 0.1},
		{X: math.NaN(), Y: 3},
		{X: 10, Y: 0},
		{X: 10, Y: 0},
		{X: 20, Y: math.Inf(1)},
		{X: 20, Y: 5},
	}
	got, fellBack := Clean(pts)
	assert.False(t, fellBack)
	assert.Equal(t, []model.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 20, Y: 5}}, got)

	got, fellBack = Clean([]model.Point{{X: 1, Y: 1}, {X: 1.1, Y: 1}})
	assert.True(t, fellBack)
	assert.Equal(t, FallbackPath(), got)
}

func TestBuiltinLevels(t *testing.T) {
	all := Builtin()
	require.Len(t, all, 11)
	for i, l := range all {
		assert.Equal(t, i+1, l.ID)
		assert.NotEmpty(t, l.Name)
		assert.GreaterOrEqual(t, len(l.Points), 2, l.Name)
		_, fixes := Sanitize(l.Rules)
		assert.Empty(t, fixes, l.Name)
	}

	assert.Len(t, all[0].Points, 10)
	assert.Len(t, all[5].Points, 31)

	infinity := all[8]
	assert.Equal(t, "The Infinity Loop", infinity.Name)
	assert.Equal(t, 20.0, infinity.Rules.BaseTolerance)
	assert.InDelta(t, 30, infinity.Rules.BaseTolerance*infinity.Rules.TouchMultiplier, 1e-9)
	assert.Equal(t, 0.5, infinity.Rules.DifficultyMultiplier)
	assert.Equal(t, 100*time.Millisecond, infinity.Rules.GracePeriod)
	assert.Equal(t, 800*time.Millisecond, infinity.Rules.WarningDuration)
	assert.Equal(t, 50*time.Millisecond, infinity.Rules.ReleaseGracePeriod)
	assert.Equal(t, 12, infinity.Rules.MaxProgressJump)
	assert.Equal(t, 8, infinity.Rules.MaxBacktrack)
}

func TestCatalog(t *testing.T) {
	c := Default()
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}, c.Numbers())

	l, err := c.Level(4)
	require.NoError(t, err)
	assert.Equal(t, "Double Helix", l.Name)

	_, err = c.Level(42)
	assert.True(t, errors.Is(err, ErrNotFound))

	c.Add(model.Level{ID: 4, Name: "Replaced"})
	l, _ = c.Level(4)
	assert.Equal(t, "Replaced", l.Name)
	assert.Len(t, c.All(), 11)
}

func TestResolveFallsBack(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf, log.LevelWarn)

	l := Resolve(Default(), 99, logger)
	assert.Equal(t, 1, l.ID)
	assert.Contains(t, buf.String(), "using level 1")

	l = Resolve(NewCatalog(), 3, logger)
	assert.Equal(t, FallbackPath(), l.Points)

	broken := NewCatalog(model.Level{ID: 1, Name: "Broken", Points: []model.Point{{X: 1, Y: 1}}})
	l = Resolve(broken, 1, logger)
	assert.Equal(t, FallbackPath(), l.Points)
	assert.Equal(t, 35.0, l.Rules.BaseTolerance)
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "zigzag.toml", `
id = 12
difficulty = "hard"
preset = "precision"

[rules]
grace_period_ms = 400
touch_tolerance = 50.0

[[points]]
x = -100.0
y = 0.0
z = 3.0

[[points]]
x = 0.0
y = 50.0

[[points]]
x = 100.0
y = 0.0
`)

	l, notes, err := LoadFile(path)
	require.NoError(t, err)
	assert.Empty(t, notes)
	assert.Equal(t, 12, l.ID)
	assert.Equal(t, "zigzag", l.Name)
	assert.Equal(t, model.DifficultyHard, l.Difficulty)
	assert.Equal(t, 0.7, l.Rules.DifficultyMultiplier)
	assert.Equal(t, 400*time.Millisecond, l.Rules.GracePeriod)
	assert.InDelta(t, 50, l.Rules.BaseTolerance*l.Rules.TouchMultiplier, 1e-9)
	assert.Equal(t, []model.Point{{X: -100, Y: 0}, {X: 0, Y: 50}, {X: 100, Y: 0}}, l.Points)
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, _, err := LoadFile(writeFile(t, dir, "noid.toml", `name = "x"`))
	assert.Error(t, err)

	_, _, err = LoadFile(writeFile(t, dir, "diff.toml", "id = 3\ndifficulty = \"insane\""))
	assert.Error(t, err)

	_, _, err = LoadFile(writeFile(t, dir, "bad.toml", "id = ="))
	assert.Error(t, err)

	_, notes, err := LoadFile(writeFile(t, dir, "short.toml", "id = 20\ncolour = \"red\"\n[[points]]\nx = 1.0\ny = 1.0\n"))
	require.NoError(t, err)
	assert.Len(t, notes, 2)
}

func TestLoadDirMergesOverBuiltins(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.toml", "id = 2\nname = \"Mine\"\n[[points]]\nx = 0.0\ny = 0.0\n[[points]]\nx = 10.0\ny = 10.0\n")
	writeFile(t, dir, "b.toml", "id = =")
	writeFile(t, dir, "notes.txt", "ignored")

	levels, errs := LoadDir(dir)
	require.Len(t, levels, 1)
	assert.Len(t, errs, 1)

	var buf bytes.Buffer
	c := Load(dir, log.New(&buf, log.LevelWarn))
	l, err := c.Level(2)
	require.NoError(t, err)
	assert.Equal(t, "Mine", l.Name)
	assert.Contains(t, buf.String(), "b.toml")

	missing, errs := LoadDir(filepath.Join(dir, "missing"))
	assert.Empty(t, missing)
	assert.Empty(t, errs)
}
