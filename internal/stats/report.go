package stats

import (
	"context"
	"fmt"
	"io"

	"github.com/verte-zerg/wireloop/internal/model"
)

// Source is the read side of the attempt store.
type Source interface {
	ListAttempts(ctx context.Context, cfg model.StatsConfig) ([]model.Attempt, error)
	LevelAggregates(ctx context.Context, cfg model.StatsConfig) ([]model.LevelAggregate, error)
}

// Report contains precomputed data for stats rendering.
type Report struct {
	Attempts []model.Attempt
	// Window holds the last CurveWindow attempts.
	Window  []model.Attempt
	Levels  []model.LevelAggregate
	Hardest []int
}

// BuildReport loads and prepares data for stats rendering.
func BuildReport(ctx context.Context, src Source, cfg model.StatsConfig) (Report, error) {
	attempts, err := src.ListAttempts(ctx, cfg)
	if err != nil {
		return Report{}, fmt.Errorf("list attempts: %w", err)
	}
	levelCfg := cfg
	levelCfg.Last = 0
	aggs, err := src.LevelAggregates(ctx, levelCfg)
	if err != nil {
		return Report{}, fmt.Errorf("level aggregates: %w", err)
	}
	return Report{
		Attempts: attempts,
		Window:   lastAttempts(attempts, cfg.CurveWindow),
		Levels:   aggs,
		Hardest:  HardestLevels(aggs, 3),
	}, nil
}

// Render writes the full plain-text report.
func (r Report) Render(w io.Writer, window int) error {
	if err := RenderSummary(w, r.Attempts); err != nil {
		return err
	}
	if len(r.Attempts) == 0 {
		return nil
	}
	if err := RenderCurves(w, r.Attempts, window); err != nil {
		return err
	}
	if err := RenderLevelTable(w, r.Levels); err != nil {
		return err
	}
	return RenderReasons(w, r.Attempts)
}

func lastAttempts(attempts []model.Attempt, window int) []model.Attempt {
	if window <= 0 || len(attempts) <= window {
		return attempts
	}
	return attempts[len(attempts)-window:]
}
