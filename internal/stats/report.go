// Package stats contains session counters and summary reporting.
package stats

import (
	"fmt"
	"io"
	"time"

	"github.com/verte-zerg/cstrafe/internal/model"
)

// RenderSummary prints the end-of-session table. holds are the measured hold
// times of the session in order; they feed the trend line.
func RenderSummary(w io.Writer, s Stats, holds []time.Duration, width int) error {
	if s.Total == 0 {
		_, err := fmt.Fprintln(w, "No attempts recorded.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Session Summary"); err != nil {
		return err
	}
	headers := []string{"", "Result", "Count", "Share"}
	rows := [][]string{
		{model.Perfect.Symbol(), "Perfect", fmt.Sprintf("%d", s.Perfect), fmt.Sprintf("%.1f%%", s.PerfectPercentage())},
		{model.Good.Symbol(), "Good", fmt.Sprintf("%d", s.Good), fmt.Sprintf("%.1f%%", s.GoodPercentage())},
		{model.Failed.Symbol(), "Failed", fmt.Sprintf("%d", s.Failed), fmt.Sprintf("%.1f%%", s.FailedPercentage())},
		{"", "Total", fmt.Sprintf("%d", s.Total), ""},
	}
	rightAlign := map[int]bool{2: true, 3: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if len(holds) > 0 {
		if _, err := fmt.Fprintf(w, "Hold trend (ms): %s\n", HoldTrend(holds, width)); err != nil {
			return err
		}
	}
	return nil
}

// HoldTrend returns a sparkline of the most recent hold times that fits in
// width cells.
func HoldTrend(holds []time.Duration, width int) string {
	if width > 0 && len(holds) > width {
		holds = holds[len(holds)-width:]
	}
	values := make([]float64, len(holds))
	for i, h := range holds {
		values[i] = float64(h) / float64(time.Millisecond)
	}
	return Sparkline(values)
}
