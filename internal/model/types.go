// Package model defines shared data structures.
package model

import "time"

// Point is a 2D position in level space.
type Point struct {
	X float64
	Y float64
}

// Difficulty is the authored difficulty of a level.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
	DifficultyExpert Difficulty = "expert"
)

// Rules is the fully resolved tolerance configuration for a level.
// It is produced once at level load and never mutated during play.
type Rules struct {
	BaseTolerance        float64
	TouchMultiplier      float64
	DifficultyMultiplier float64

	MaxProgressJump int
	MaxBacktrack    int
	SearchRadius    int

	GracePeriod        time.Duration
	WarningDuration    time.Duration
	ReleaseGracePeriod time.Duration

	// PointSpacing is the target distance between smoothed points.
	PointSpacing float64
	MaxPoints    int

	StartRadius float64
}

// Level is a playable level: an ordered control path plus its rules.
type Level struct {
	ID          int
	Name        string
	Description string
	Difficulty  Difficulty
	Points      []Point
	Rules       Rules
}

// Outcome is the terminal result of an attempt.
type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeFailed    Outcome = "failed"
)

// Attempt captures a finished attempt for persistence.
type Attempt struct {
	ID         string
	Level      int
	LevelName  string
	Difficulty Difficulty
	Device     string
	Outcome    Outcome
	Reason     string
	StartedAt  time.Time
	EndedAt    time.Time
	DurationMs int64
	Progress   float64
	Warnings   int
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Level       int
	Since       *time.Time
	Last        int
	CurveWindow int
}

// LevelAggregate summarizes attempts for one level.
type LevelAggregate struct {
	Level       int
	LevelName   string
	Attempts    int
	Completions int
	Failures    int
	BestMs      int64
	AvgMs       float64
}
