package stats

import (
	"sort"

	"github.com/verte-zerg/wireloop/internal/model"
)

// MostPlayed returns the n levels with the most attempts.
func MostPlayed(aggs []model.LevelAggregate, n int) []model.LevelAggregate {
	if n <= 0 || len(aggs) == 0 {
		return nil
	}
	items := append([]model.LevelAggregate(nil), aggs...)
	sort.Slice(items, func(i, j int) bool {
		if items[i].Attempts == items[j].Attempts {
			return items[i].Level < items[j].Level
		}
		return items[i].Attempts > items[j].Attempts
	})
	if n > len(items) {
		n = len(items)
	}
	return items[:n]
}
