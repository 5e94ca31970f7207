// Package stats contains session counters and summary reporting.
package stats

import (
	"math"
	"strings"

	"github.com/verte-zerg/cstrafe/internal/model"
)

const sparkChars = " .:-=+*#%@"

// Stats counts outcomes for the current session. Counters only grow until
// Reset.
type Stats struct {
	Total   int
	Perfect int
	Good    int
	Failed  int
}

// Record counts one outcome. Every error outcome counts as failed.
func (s *Stats) Record(out model.Outcome) {
	s.Total++
	switch {
	case out.IsError():
		s.Failed++
	case out.Quality == model.Perfect:
		s.Perfect++
	case out.Quality == model.Good:
		s.Good++
	default:
		s.Failed++
	}
}

// PerfectPercentage returns perfect/total*100, or 0 for an empty session.
func (s Stats) PerfectPercentage() float64 {
	return percentage(s.Perfect, s.Total)
}

// GoodPercentage returns good/total*100, or 0 for an empty session.
func (s Stats) GoodPercentage() float64 {
	return percentage(s.Good, s.Total)
}

// FailedPercentage returns failed/total*100, or 0 for an empty session.
func (s Stats) FailedPercentage() float64 {
	return percentage(s.Failed, s.Total)
}

// Reset zeroes every counter.
func (s *Stats) Reset() {
	*s = Stats{}
}

func percentage(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}
