package stats

import (
	"testing"

	"github.com/verte-zerg/wireloop/internal/model"
)

func TestMostPlayed(t *testing.T) {
	aggs := []model.LevelAggregate{
		{Level: 2, Attempts: 4},
		{Level: 1, Attempts: 4},
		{Level: 3, Attempts: 9},
	}
	top := MostPlayed(aggs, 2)
	if len(top) != 2 {
		t.Fatalf("expected 2 levels, got %d", len(top))
	}
	if top[0].Level != 3 || top[1].Level != 1 {
		t.Fatalf("unexpected order: %+v", top)
	}
	if MostPlayed(aggs, 0) != nil {
		t.Fatalf("expected nil for n=0")
	}
	if aggs[0].Level != 2 {
		t.Fatalf("input was reordered")
	}
}

func TestHardestLevels(t *testing.T) {
	aggs := []model.LevelAggregate{
		{Level: 1, Attempts: 10, Completions: 9},
		{Level: 2, Attempts: 4, Completions: 1},
		{Level: 3, Attempts: 8, Completions: 2},
		{Level: 4, Attempts: 0},
		{Level: 5, Attempts: 2, Completions: 0},
	}
	got := HardestLevels(aggs, 3)
	want := []int{5, 3, 2}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
	if all := HardestLevels(aggs, 0); len(all) != 4 {
		t.Fatalf("expected every played level, got %v", all)
	}
}
