package stats

import (
	"sort"

	"github.com/verte-zerg/wireloop/internal/model"
)

// HardestLevels returns up to top levels with the lowest completion rate.
// Levels with equal rates are ordered by attempts, most first. A top of
// zero or less returns every level.
func HardestLevels(aggs []model.LevelAggregate, top int) []int {
	candidates := make([]model.LevelAggregate, 0, len(aggs))
	for _, agg := range aggs {
		if agg.Attempts > 0 {
			candidates = append(candidates, agg)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		ri, rj := completionRate(candidates[i]), completionRate(candidates[j])
		if ri != rj {
			return ri < rj
		}
		if candidates[i].Attempts != candidates[j].Attempts {
			return candidates[i].Attempts > candidates[j].Attempts
		}
		return candidates[i].Level < candidates[j].Level
	})
	if top <= 0 || top > len(candidates) {
		top = len(candidates)
	}
	out := make([]int, top)
	for i := range out {
		out[i] = candidates[i].Level
	}
	return out
}
