// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/verte-zerg/wireloop/internal/model"
)

const sparkChars = " .:-=+*#%@"

// Summary aggregates a list of attempts.
type Summary struct {
	Attempts    int
	Completions int
	Failures    int
	Warnings    int

	// BestSeconds and AvgSeconds only count completed attempts.
	BestSeconds float64
	AvgSeconds  float64
	AvgProgress float64
}

// CompletionRate is the share of attempts that reached the end, 0..1.
func (s Summary) CompletionRate() float64 {
	if s.Attempts == 0 {
		return 0
	}
	return float64(s.Completions) / float64(s.Attempts)
}

// AttemptMetrics returns the duration in seconds and the progress in percent.
func AttemptMetrics(a model.Attempt) (seconds, progressPct float64) {
	if a.DurationMs > 0 {
		seconds = float64(a.DurationMs) / 1000.0
	}
	progressPct = a.Progress * 100
	if progressPct < 0 {
		progressPct = 0
	}
	if progressPct > 100 {
		progressPct = 100
	}
	return seconds, progressPct
}

// Summarize folds attempts into a Summary.
func Summarize(attempts []model.Attempt) Summary {
	var s Summary
	var totalSeconds, totalProgress float64
	for _, a := range attempts {
		seconds, progress := AttemptMetrics(a)
		s.Attempts++
		s.Warnings += a.Warnings
		totalProgress += progress
		switch a.Outcome {
		case model.OutcomeCompleted:
			s.Completions++
			totalSeconds += seconds
			if s.BestSeconds == 0 || seconds < s.BestSeconds {
				s.BestSeconds = seconds
			}
		case model.OutcomeFailed:
			s.Failures++
		}
	}
	if s.Completions > 0 {
		s.AvgSeconds = totalSeconds / float64(s.Completions)
	}
	if s.Attempts > 0 {
		s.AvgProgress = totalProgress / float64(s.Attempts)
	}
	return s
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		n := i + 1
		if i >= window {
			sum -= values[i-window]
			n = window
		}
		out[i] = sum / float64(n)
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := seriesMinMax(values)
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	last := len(sparkChars) - 1
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(last)))
		idx = clampInt(idx, 0, last)
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// CompletionSeconds returns the durations of completed attempts in order.
func CompletionSeconds(attempts []model.Attempt) []float64 {
	var out []float64
	for _, a := range attempts {
		if a.Outcome != model.OutcomeCompleted {
			continue
		}
		seconds, _ := AttemptMetrics(a)
		out = append(out, seconds)
	}
	return out
}

// RenderSummary prints a summary block for attempts.
func RenderSummary(w io.Writer, attempts []model.Attempt) error {
	if len(attempts) == 0 {
		_, err := fmt.Fprintln(w, "No attempts found.")
		return err
	}
	s := Summarize(attempts)
	lines := []string{
		"Summary",
		fmt.Sprintf("Attempts: %d", s.Attempts),
		fmt.Sprintf("Completed: %d (%.1f%%)", s.Completions, s.CompletionRate()*100),
		fmt.Sprintf("Failed: %d", s.Failures),
		fmt.Sprintf("Avg Progress: %.1f%%", s.AvgProgress),
		fmt.Sprintf("Warnings: %d", s.Warnings),
	}
	if s.Completions > 0 {
		lines = append(lines,
			fmt.Sprintf("Best Time: %.2fs", s.BestSeconds),
			fmt.Sprintf("Avg Time: %.2fs", s.AvgSeconds),
			fmt.Sprintf("Times: %s", Sparkline(CompletionSeconds(attempts))),
		)
	}
	lines = append(lines, "")
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderCurves prints rolling progress and completion rate curves.
func RenderCurves(w io.Writer, attempts []model.Attempt, window int) error {
	return RenderCurvesWithSize(w, attempts, window, 0, 10, false)
}

// RenderCurvesWithSize prints the curves sized to a given total width.
func RenderCurvesWithSize(w io.Writer, attempts []model.Attempt, window, totalWidth, height int, useColor bool) error {
	if len(attempts) == 0 {
		return nil
	}
	progress := make([]float64, len(attempts))
	completed := make([]float64, len(attempts))
	for i, a := range attempts {
		_, progress[i] = AttemptMetrics(a)
		if a.Outcome == model.OutcomeCompleted {
			completed[i] = 100
		}
	}
	width := 0
	if totalWidth > 0 {
		width = PlotWidthFor(totalWidth)
	}
	return Plot(w, "Learning Curves", []Series{
		{Name: "Progress %", Values: MovingAverage(progress, window)},
		{Name: "Completion %", Values: MovingAverage(completed, window)},
	}, PlotOptions{Width: width, Height: height, Color: useColor, Min: 0, Max: 100})
}

// LevelRows formats level aggregates as table rows ordered by level.
func LevelRows(aggs []model.LevelAggregate) [][]string {
	sorted := append([]model.LevelAggregate(nil), aggs...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Level < sorted[j].Level
	})
	rows := make([][]string, 0, len(sorted))
	for _, agg := range sorted {
		rows = append(rows, []string{
			fmt.Sprintf("%d", agg.Level),
			agg.LevelName,
			fmt.Sprintf("%d", agg.Attempts),
			fmt.Sprintf("%d", agg.Completions),
			fmt.Sprintf("%d", agg.Failures),
			fmt.Sprintf("%.1f%%", completionRate(agg)*100),
			formatMs(float64(agg.BestMs)),
			formatMs(agg.AvgMs),
		})
	}
	return rows
}

// LevelHeaders are the column titles matching LevelRows.
var LevelHeaders = []string{"Level", "Name", "Attempts", "Done", "Failed", "Rate", "Best", "Avg"}

// RenderLevelTable prints per-level aggregates.
func RenderLevelTable(w io.Writer, aggs []model.LevelAggregate) error {
	if len(aggs) == 0 {
		_, err := fmt.Fprintln(w, "No level stats found.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Per-Level"); err != nil {
		return err
	}
	rightAlign := map[int]bool{0: true, 2: true, 3: true, 4: true, 5: true, 6: true, 7: true}
	for _, line := range formatTable(LevelHeaders, LevelRows(aggs), rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// ReasonCount is the number of failures attributed to one reason.
type ReasonCount struct {
	Reason string
	Count  int
}

// FailureReasons counts failed attempts by reason, most frequent first.
func FailureReasons(attempts []model.Attempt) []ReasonCount {
	counts := map[string]int{}
	for _, a := range attempts {
		if a.Outcome != model.OutcomeFailed {
			continue
		}
		reason := a.Reason
		if reason == "" {
			reason = "unknown"
		}
		counts[reason]++
	}
	out := make([]ReasonCount, 0, len(counts))
	for reason, count := range counts {
		out = append(out, ReasonCount{Reason: reason, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Reason < out[j].Reason
		}
		return out[i].Count > out[j].Count
	})
	return out
}

// RenderReasons prints the failure reason breakdown.
func RenderReasons(w io.Writer, attempts []model.Attempt) error {
	reasons := FailureReasons(attempts)
	if len(reasons) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "Failure Reasons"); err != nil {
		return err
	}
	rows := make([][]string, 0, len(reasons))
	for _, r := range reasons {
		rows = append(rows, []string{r.Reason, fmt.Sprintf("%d", r.Count)})
	}
	for _, line := range formatTable([]string{"Reason", "Count"}, rows, map[int]bool{1: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

func completionRate(agg model.LevelAggregate) float64 {
	if agg.Attempts == 0 {
		return 0
	}
	return float64(agg.Completions) / float64(agg.Attempts)
}

func formatMs(ms float64) string {
	if ms <= 0 {
		return "-"
	}
	return fmt.Sprintf("%.2fs", ms/1000)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
