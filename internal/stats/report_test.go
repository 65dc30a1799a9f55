package stats

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/wireloop/internal/model"
	"github.com/verte-zerg/wireloop/internal/store"
)

func TestBuildReport(t *testing.T) {
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "wireloop.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	var ids []string
	for i := 0; i < 4; i++ {
		end := time.Unix(0, 0).Add(time.Duration(i) * time.Minute)
		outcome := model.OutcomeCompleted
		if i%2 == 1 {
			outcome = model.OutcomeFailed
		}
		id, err := st.InsertAttempt(ctx, model.Attempt{
			Level:      1 + i%2,
			LevelName:  "Spiral",
			Difficulty: model.DifficultyEasy,
			Device:     "mouse",
			Outcome:    outcome,
			Reason:     "off-track",
			StartedAt:  end.Add(-20 * time.Second),
			EndedAt:    end,
			DurationMs: 20000,
			Progress:   0.5,
		})
		if err != nil {
			t.Fatalf("insert attempt: %v", err)
		}
		ids = append(ids, id)
	}

	cfg := model.StatsConfig{Last: 3, CurveWindow: 2}
	report, err := BuildReport(ctx, st, cfg)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(report.Attempts) != 3 {
		t.Fatalf("expected 3 attempts, got %d", len(report.Attempts))
	}
	if report.Attempts[0].ID != ids[1] || report.Attempts[2].ID != ids[3] {
		t.Fatalf("unexpected attempt ids: %+v", report.Attempts)
	}
	if len(report.Window) != 2 || report.Window[1].ID != ids[3] {
		t.Fatalf("unexpected window: %+v", report.Window)
	}
	if len(report.Levels) != 2 || report.Levels[0].Attempts != 2 {
		t.Fatalf("expected level aggregates over every attempt, got %+v", report.Levels)
	}
	if len(report.Hardest) == 0 || report.Hardest[0] != 2 {
		t.Fatalf("expected level 2 to be hardest, got %v", report.Hardest)
	}

	var buf bytes.Buffer
	if err := report.Render(&buf, cfg.CurveWindow); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Summary", "Learning Curves", "Per-Level", "Failure Reasons", "off-track"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in report output", want)
		}
	}
}
