package levels

import (
	"math"

	"github.com/verte-zerg/wireloop/internal/model"
)

type levelDef struct {
	id          int
	name        string
	description string
	difficulty  model.Difficulty
	points      []model.Point
	overrides   Overrides
}

func builtinDefs() []levelDef {
	return []levelDef{
		{
			id:          1,
			name:        "Spiral",
			description: "One lap around a circle.",
			difficulty:  model.DifficultyEasy,
			points:      spiral(10, 2*math.Pi, func(float64) float64 { return 100 }),
		},
		{
			id:          2,
			name:        "Double Spiral",
			description: "Two laps with a breathing radius.",
			difficulty:  model.DifficultyEasy,
			points:      spiral(20, 4*math.Pi, func(t float64) float64 { return 100 + 20*math.Sin(t) }),
		},
		{
			id:          3,
			name:        "Triple Spiral",
			description: "Three laps that drift in and out.",
			difficulty:  model.DifficultyMedium,
			points:      spiral(30, 6*math.Pi, func(t float64) float64 { return 100 + 30*math.Sin(t*0.7) }),
		},
		{
			id:          4,
			name:        "Double Helix",
			description: "A path that weaves like a double helix.",
			difficulty:  model.DifficultyHard,
			points: pts(
				-160, 0, -140, 30, -120, 60, -100, 30, -80, 0, -60, -30, -40, -60, -20, -30,
				0, 0, 20, 30, 40, 60, 60, 30, 80, 0, 100, -30, 120, -60, 140, -30, 160, 0,
			),
		},
		{
			id:          5,
			name:        "The Gauntlet",
			description: "A calm start before the swings get wide.",
			difficulty:  model.DifficultyExpert,
			points: pts(
				-200, 0, -180, 0, -160, 0, -140, 30, -120, -30, -100, 0, -80, 50, -60, 0,
				-40, -50, 0, 0, 40, 80, 80, -80, 120, 80, 160, -80, 200, 0,
			),
		},
		{
			id:          6,
			name:        "Zigzag Vortex",
			description: "Most of a circle with a zigzag edge.",
			difficulty:  model.DifficultyExpert,
			points:      vortex(),
		},
		{
			id:          7,
			name:        "Mountain Serpent",
			description: "A winding trail that climbs and descends.",
			difficulty:  model.DifficultyHard,
			points: pts(
				-150, 0, -140, -10, -125, -15, -110, -20, -90, -25, -70, -30, -50, -35, -30, -40,
				-10, -45, 10, -40, 30, -30, 50, -20, 70, -10, 90, 0, 110, 10, 120, 25,
				125, 45, 120, 65, 110, 80, 95, 90, 75, 95, 50, 100, 25, 105, 0, 110,
				-25, 105, -120, 50, -125, 30, -120, 10, -110, -5, -95, -15, -75, -20, -50, -15,
				-25, -10, 0, -5, 25, 0, 45, 10, 60, 25, 70, 45, 75, 65,
			),
		},
		{
			id:          8,
			name:        "Elephant Path",
			description: "Trace the outline of an elephant.",
			difficulty:  model.DifficultyHard,
			points: pts(
				-160, 40, -140, 70, -110, 50, -100, 120, -70, 130, -50, 110, 0, 120, 60, 100,
				90, 110, 100, 90, 80, 20, 60, -20, 0, -30, -60, -25, -80, 20, -100, -20, -120, 10,
			),
			overrides: Overrides{
				BaseTolerance:        float64Ptr(35),
				TouchTolerance:       float64Ptr(45),
				DifficultyMultiplier: float64Ptr(1.0),
				GracePeriodMs:        intPtr(300),
				WarningDurationMs:    intPtr(300),
				ReleaseGracePeriodMs: intPtr(75),
				MaxProgressJump:      intPtr(20),
				MaxBacktrack:         intPtr(15),
				MaxPoints:            intPtr(200 * pointsPerSegment),
			},
		},
		{
			id:          9,
			name:        "The Infinity Loop",
			description: "A figure-8 that loops back on itself. Requires precision and steady hands.",
			difficulty:  model.DifficultyExpert,
			points: pts(
				-120, 0, -100, -30, -60, -50, -20, -40, 0, 0, 20, 40, 60, 50, 100, 30, 120, 0,
				100, -30, 60, -50, 20, -40, 0, 0, -20, 40, -60, 50, -100, 30, -120, 0, 0, 0,
			),
			overrides: Overrides{
				BaseTolerance:        float64Ptr(20),
				TouchTolerance:       float64Ptr(30),
				DifficultyMultiplier: float64Ptr(0.5),
				GracePeriodMs:        intPtr(100),
				WarningDurationMs:    intPtr(800),
				ReleaseGracePeriodMs: intPtr(50),
				MaxProgressJump:      intPtr(12),
				MaxBacktrack:         intPtr(8),
				MaxPoints:            intPtr(400 * pointsPerSegment),
			},
		},
		{
			id:          10,
			name:        "Golden Butterfly",
			description: "A butterfly-shaped trail.",
			difficulty:  model.DifficultyHard,
			points: pts(
				-80, 0, -100, 40, -90, 80, -60, 100, -30, 80, -40, 40, -60, 20, 0, 0, 0, 30,
				0, 60, 60, 20, 40, 40, 30, 80, 60, 100, 90, 80, 100, 40, 80, 0, 0, 0,
			),
			overrides: Overrides{
				BaseTolerance:        float64Ptr(35),
				TouchTolerance:       float64Ptr(45),
				DifficultyMultiplier: float64Ptr(1.0),
				GracePeriodMs:        intPtr(300),
				WarningDurationMs:    intPtr(300),
				ReleaseGracePeriodMs: intPtr(75),
				MaxProgressJump:      intPtr(20),
				MaxBacktrack:         intPtr(15),
				MaxPoints:            intPtr(200 * pointsPerSegment),
			},
		},
		{
			id:          11,
			name:        "Cosmic Circuit",
			description: "A tight, crossing circuit through the middle of the board.",
			difficulty:  model.DifficultyHard,
			points: pts(
				-60, 30, -30, 60, 0, 0, 30, -60, 60, 30, 45, 0, 0, 45, -45, 0, -60, -30,
				-20, 20, 10, -30, 40, 10, 0, 0,
			),
			overrides: Overrides{
				BaseTolerance:        float64Ptr(25),
				TouchTolerance:       float64Ptr(35),
				DifficultyMultiplier: float64Ptr(0.85),
				GracePeriodMs:        intPtr(200),
				WarningDurationMs:    intPtr(1200),
				ReleaseGracePeriodMs: intPtr(50),
				MaxProgressJump:      intPtr(15),
				MaxBacktrack:         intPtr(10),
				MaxPoints:            intPtr(300 * pointsPerSegment),
			},
		},
	}
}

// Builtin returns the bundled levels ordered by id.
func Builtin() []model.Level {
	defs := builtinDefs()
	out := make([]model.Level, 0, len(defs))
	for _, s := range defs {
		lvl, _ := build(s.id, s.name, s.description, s.difficulty, s.points, "", s.overrides)
		out = append(out, lvl)
	}
	return out
}

// build resolves rules and cleans points for one level. The returned
// strings describe anything that had to be fixed.
func build(id int, name, description string, d model.Difficulty, points []model.Point, preset string, o Overrides) (model.Level, []string) {
	var notes []string
	rules := DefaultRules(d)
	if preset != "" {
		if p, ok := Preset(preset); ok {
			rules = Apply(rules, p)
		} else {
			notes = append(notes, "unknown preset "+preset)
		}
	}
	rules = Apply(rules, o)
	rules, fixes := Sanitize(rules)
	notes = append(notes, fixes...)

	cleaned, fellBack := Clean(points)
	if fellBack {
		notes = append(notes, "path has fewer than two usable points, using fallback line")
	}
	return model.Level{
		ID:          id,
		Name:        name,
		Description: description,
		Difficulty:  d,
		Points:      cleaned,
		Rules:       rules,
	}, notes
}

func spiral(n int, sweep float64, radius func(t float64) float64) []model.Point {
	out := make([]model.Point, n)
	for i := range out {
		t := float64(i) / float64(n-1) * sweep
		r := radius(t)
		out[i] = model.Point{X: math.Cos(t) * r, Y: math.Sin(t) * r}
	}
	return out
}

func vortex() []model.Point {
	const (
		radius    = 150.0
		segments  = 30
		frequency = 3.0
		amplitude = 12.0
	)
	out := make([]model.Point, 0, segments+1)
	for i := 0; i <= segments; i++ {
		angle := float64(i) / segments * 2 * math.Pi * 0.95
		a := float64(i) * (frequency / segments) * 2 * math.Pi
		r := radius + math.Sin(a)*amplitude
		out = append(out, model.Point{X: math.Cos(angle) * r, Y: math.Sin(angle) * r})
	}
	return out
}

func pts(xy ...float64) []model.Point {
	out := make([]model.Point, 0, len(xy)/2)
	for i := 0; i+1 < len(xy); i += 2 {
		out = append(out, model.Point{X: xy[i], Y: xy[i+1]})
	}
	return out
}
