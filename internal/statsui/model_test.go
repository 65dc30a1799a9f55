package statsui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/wireloop/internal/model"
)

type fakeSource struct {
	attempts []model.Attempt
	levels   []model.LevelAggregate
	err      error
	lastCfg  model.StatsConfig
}

func (f *fakeSource) ListAttempts(_ context.Context, cfg model.StatsConfig) ([]model.Attempt, error) {
	f.lastCfg = cfg
	return f.attempts, f.err
}

func (f *fakeSource) LevelAggregates(context.Context, model.StatsConfig) ([]model.LevelAggregate, error) {
	return f.levels, f.err
}

func TestModelRendersTabs(t *testing.T) {
	end := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	src := &fakeSource{
		attempts: []model.Attempt{
			{Level: 1, Outcome: model.OutcomeCompleted, DurationMs: 9000, Progress: 1, EndedAt: end},
			{Level: 1, Outcome: model.OutcomeFailed, Reason: "released", DurationMs: 2000, Progress: 0.3, EndedAt: end.Add(time.Minute)},
		},
		levels: []model.LevelAggregate{{Level: 1, LevelName: "Spiral", Attempts: 2, Completions: 1, Failures: 1, BestMs: 9000, AvgMs: 9000}},
	}
	m := NewModel(src, model.StatsConfig{CurveWindow: 5})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	view := m.View()
	if !strings.Contains(view, "Attempts") || !strings.Contains(view, "Learning Curves") {
		t.Fatalf("expected overview content, got %q", view)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if m.activeTab != tabLevels {
		t.Fatalf("expected levels tab, got %d", m.activeTab)
	}
	if !strings.Contains(m.View(), "Spiral") {
		t.Fatalf("expected level table to list Spiral")
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if !strings.Contains(m.View(), "released") {
		t.Fatalf("expected history to show failure reason")
	}
}

func TestModelWindowKeys(t *testing.T) {
	src := &fakeSource{}
	m := NewModel(src, model.StatsConfig{CurveWindow: 5})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'='}})
	if m.cfg.CurveWindow != 10 || src.lastCfg.CurveWindow != 10 {
		t.Fatalf("expected window 10, got %d", m.cfg.CurveWindow)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'-'}})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'-'}})
	if m.cfg.CurveWindow != 1 {
		t.Fatalf("expected window 1, got %d", m.cfg.CurveWindow)
	}
}

func TestModelShowsLoadError(t *testing.T) {
	m := NewModel(&fakeSource{err: errors.New("boom")}, model.StatsConfig{})
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 20})
	if !strings.Contains(m.View(), "boom") {
		t.Fatalf("expected error in footer")
	}
}

func TestParseFilter(t *testing.T) {
	cfg, err := parseFilter("3", "2025-01-02", "20", "")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Level != 3 || cfg.Last != 20 || cfg.CurveWindow != 1 || cfg.Since == nil {
		t.Fatalf("unexpected config %+v", cfg)
	}
	for _, bad := range [][4]string{
		{"x", "", "", ""},
		{"", "01/02/2025", "", ""},
		{"", "", "-1", ""},
		{"", "", "", "0"},
	} {
		if _, err := parseFilter(bad[0], bad[1], bad[2], bad[3]); err == nil {
			t.Fatalf("expected error for %v", bad)
		}
	}
}

func TestCurveWindowSteps(t *testing.T) {
	cases := []struct {
		in, next, prev int
	}{
		{1, 5, 1},
		{5, 10, 1},
		{7, 10, 5},
		{10, 15, 5},
	}
	for _, tc := range cases {
		if got := nextCurveWindow(tc.in); got != tc.next {
			t.Fatalf("next(%d) = %d, want %d", tc.in, got, tc.next)
		}
		if got := prevCurveWindow(tc.in); got != tc.prev {
			t.Fatalf("prev(%d) = %d, want %d", tc.in, got, tc.prev)
		}
	}
}
