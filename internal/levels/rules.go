package levels

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/verte-zerg/wireloop/internal/model"
)

const (
	defaultPointSpacing = 2.5
	defaultStartRadius  = 30.0
	pointsPerSegment    = 4
)

// DefaultRules returns the resolved rules for a difficulty. Unknown
// difficulties get the medium rules.
func DefaultRules(d model.Difficulty) model.Rules {
	r := model.Rules{
		BaseTolerance:        35,
		TouchMultiplier:      45.0 / 35.0,
		DifficultyMultiplier: 1.0,
		MaxProgressJump:      25,
		MaxBacktrack:         15,
		GracePeriod:          300 * time.Millisecond,
		WarningDuration:      2000 * time.Millisecond,
		ReleaseGracePeriod:   75 * time.Millisecond,
		PointSpacing:         defaultPointSpacing,
		MaxPoints:            200 * pointsPerSegment,
		StartRadius:          defaultStartRadius,
	}

	switch d {
	case model.DifficultyEasy:
		r.BaseTolerance = 45
		r.TouchMultiplier = 55.0 / 45.0
		r.DifficultyMultiplier = 1.2
		r.GracePeriod = 500 * time.Millisecond
		r.WarningDuration = 3000 * time.Millisecond
	case model.DifficultyHard:
		r.BaseTolerance = 30
		r.TouchMultiplier = 40.0 / 30.0
		r.DifficultyMultiplier = 0.8
		r.GracePeriod = 200 * time.Millisecond
		r.WarningDuration = 1500 * time.Millisecond
		r.MaxProgressJump = 20
	case model.DifficultyExpert:
		r.BaseTolerance = 25
		r.TouchMultiplier = 35.0 / 25.0
		r.DifficultyMultiplier = 0.6
		r.GracePeriod = 150 * time.Millisecond
		r.WarningDuration = 1000 * time.Millisecond
		r.MaxProgressJump = 15
		r.MaxBacktrack = 10
		r.MaxPoints = 300 * pointsPerSegment
	}
	r.SearchRadius = derivedSearchRadius(r)
	return r
}

// ParseDifficulty maps a name to a difficulty.
func ParseDifficulty(s string) (model.Difficulty, error) {
	switch model.Difficulty(s) {
	case model.DifficultyEasy, model.DifficultyMedium, model.DifficultyHard, model.DifficultyExpert:
		return model.Difficulty(s), nil
	case "":
		return model.DifficultyMedium, nil
	default:
		return "", fmt.Errorf("unknown difficulty %q", s)
	}
}

// Overrides holds optional rule changes. Nil fields keep the value they
// are applied to.
type Overrides struct {
	BaseTolerance        *float64 `toml:"base_tolerance"`
	TouchTolerance       *float64 `toml:"touch_tolerance"`
	DifficultyMultiplier *float64 `toml:"difficulty_multiplier"`
	MaxProgressJump      *int     `toml:"max_progress_jump"`
	MaxBacktrack         *int     `toml:"max_backtrack"`
	SearchRadius         *int     `toml:"search_radius"`
	GracePeriodMs        *int     `toml:"grace_period_ms"`
	WarningDurationMs    *int     `toml:"warning_duration_ms"`
	ReleaseGracePeriodMs *int     `toml:"release_grace_period_ms"`
	PointSpacing         *float64 `toml:"point_spacing"`
	MaxPoints            *int     `toml:"max_points"`
	StartRadius          *float64 `toml:"start_radius"`
}

// Apply merges o onto r. Touch tolerance is absolute, so changing only the
// base tolerance keeps the touch tolerance where it was. The search radius
// follows the jump limits unless it was set explicitly.
func Apply(r model.Rules, o Overrides) model.Rules {
	touch := r.BaseTolerance * r.TouchMultiplier
	derived := r.SearchRadius == derivedSearchRadius(r)

	if o.BaseTolerance != nil {
		r.BaseTolerance = *o.BaseTolerance
	}
	if o.TouchTolerance != nil {
		touch = *o.TouchTolerance
	}
	if r.BaseTolerance > 0 {
		r.TouchMultiplier = touch / r.BaseTolerance
	}
	if o.DifficultyMultiplier != nil {
		r.DifficultyMultiplier = *o.DifficultyMultiplier
	}
	if o.MaxProgressJump != nil {
		r.MaxProgressJump = *o.MaxProgressJump
	}
	if o.MaxBacktrack != nil {
		r.MaxBacktrack = *o.MaxBacktrack
	}
	if o.GracePeriodMs != nil {
		r.GracePeriod = millis(*o.GracePeriodMs)
	}
	if o.WarningDurationMs != nil {
		r.WarningDuration = millis(*o.WarningDurationMs)
	}
	if o.ReleaseGracePeriodMs != nil {
		r.ReleaseGracePeriod = millis(*o.ReleaseGracePeriodMs)
	}
	if o.PointSpacing != nil {
		r.PointSpacing = *o.PointSpacing
	}
	if o.MaxPoints != nil {
		r.MaxPoints = *o.MaxPoints
	}
	if o.StartRadius != nil {
		r.StartRadius = *o.StartRadius
	}

	switch {
	case o.SearchRadius != nil:
		r.SearchRadius = *o.SearchRadius
	case derived:
		r.SearchRadius = derivedSearchRadius(r)
	}
	return r
}

// Sanitize replaces unusable values with the medium defaults and reports
// what it changed.
func Sanitize(r model.Rules) (model.Rules, []string) {
	def := DefaultRules(model.DifficultyMedium)
	var fixes []string
	fix := func(format string, v ...any) {
		fixes = append(fixes, fmt.Sprintf(format, v...))
	}

	if !positive(r.BaseTolerance) {
		fix("base tolerance %v replaced with %v", r.BaseTolerance, def.BaseTolerance)
		r.BaseTolerance = def.BaseTolerance
	}
	if !positive(r.TouchMultiplier) {
		fix("touch multiplier %v replaced with 1", r.TouchMultiplier)
		r.TouchMultiplier = 1
	}
	if !positive(r.DifficultyMultiplier) {
		fix("difficulty multiplier %v replaced with 1", r.DifficultyMultiplier)
		r.DifficultyMultiplier = 1
	}
	if r.MaxProgressJump < 1 {
		fix("max progress jump %d replaced with 1", r.MaxProgressJump)
		r.MaxProgressJump = 1
	}
	if r.MaxBacktrack < 0 {
		fix("max backtrack %d replaced with 0", r.MaxBacktrack)
		r.MaxBacktrack = 0
	}
	if r.SearchRadius <= r.MaxProgressJump {
		want := derivedSearchRadius(r)
		fix("search radius %d must exceed max progress jump, using %d", r.SearchRadius, want)
		r.SearchRadius = want
	}
	if r.GracePeriod < 0 {
		fix("grace period %s replaced with 0", r.GracePeriod)
		r.GracePeriod = 0
	}
	if r.WarningDuration < 0 {
		fix("warning duration %s replaced with 0", r.WarningDuration)
		r.WarningDuration = 0
	}
	if r.ReleaseGracePeriod < 0 {
		fix("release grace period %s replaced with 0", r.ReleaseGracePeriod)
		r.ReleaseGracePeriod = 0
	}
	if !positive(r.PointSpacing) {
		fix("point spacing %v replaced with %v", r.PointSpacing, def.PointSpacing)
		r.PointSpacing = def.PointSpacing
	}
	if r.MaxPoints < 2 {
		fix("max points %d replaced with %d", r.MaxPoints, def.MaxPoints)
		r.MaxPoints = def.MaxPoints
	}
	if !positive(r.StartRadius) {
		fix("start radius %v replaced with %v", r.StartRadius, def.StartRadius)
		r.StartRadius = def.StartRadius
	}
	return r, fixes
}

var presets = map[string]Overrides{
	"beginner": {
		DifficultyMultiplier: float64Ptr(1.5),
		GracePeriodMs:        intPtr(800),
	},
	"precision": {
		DifficultyMultiplier: float64Ptr(0.7),
		GracePeriodMs:        intPtr(100),
	},
	"speed": {
		MaxProgressJump: intPtr(30),
		GracePeriodMs:   intPtr(50),
	},
}

// Preset returns the named preset overrides.
func Preset(name string) (Overrides, bool) {
	o, ok := presets[name]
	return o, ok
}

// PresetNames lists the available presets.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func derivedSearchRadius(r model.Rules) int {
	return 2 * (r.MaxProgressJump + r.MaxBacktrack)
}

func millis(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

func positive(v float64) bool {
	return v > 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}

func float64Ptr(v float64) *float64 {
	return &v
}

func intPtr(v int) *int {
	return &v
}
