package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/cstrafe/internal/feed"
	"github.com/verte-zerg/cstrafe/internal/stats"
	"github.com/verte-zerg/cstrafe/internal/trainer"
)

const (
	perfectColor = "#52C41A"
	goodColor    = "#FAAD14"
	failedColor  = "#FF4D4F"

	// Faded entries blend toward this.
	backgroundColor = "#000000"

	feedWidth = 24
	avgWindow = 10
)

func classColor(c feed.Class) string {
	switch c {
	case feed.ClassPerfect:
		return perfectColor
	case feed.ClassGood:
		return goodColor
	default:
		return failedColor
	}
}

// renderFeed draws one line per entry, padded so the column stays put while
// entries come and go.
func renderFeed(entries []feed.Visible) string {
	lines := make([]string, feed.Capacity)
	for i := range lines {
		if i >= len(entries) {
			lines[i] = strings.Repeat(" ", feedWidth)
			continue
		}
		e := entries[i]
		text := runewidth.FillRight(runewidth.Truncate(e.Symbol+" "+e.Text, feedWidth, "…"), feedWidth)
		color := fadeColor(classColor(e.Class), e.Opacity)
		lines[i] = lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(text)
	}
	return strings.Join(lines, "\n")
}

func renderStats(snap trainer.Snapshot) string {
	s := snap.Stats
	segments := []string{
		fmt.Sprintf("Attempts %d", s.Total),
		fmt.Sprintf("Perfect %.1f%%", s.PerfectPercentage()),
		fmt.Sprintf("Good %.1f%%", s.GoodPercentage()),
		fmt.Sprintf("Failed %.1f%%", s.FailedPercentage()),
	}
	if avg, ok := recentAverage(snap.Holds, avgWindow); ok {
		segments = append(segments, fmt.Sprintf("Avg hold %dms", avg.Round(time.Millisecond).Milliseconds()))
	}
	return strings.Join(segments, "  ")
}

func recentAverage(holds []time.Duration, window int) (time.Duration, bool) {
	if len(holds) == 0 {
		return 0, false
	}
	values := make([]float64, len(holds))
	for i, h := range holds {
		values[i] = float64(h)
	}
	avg := stats.MovingAverage(values, window)
	return time.Duration(avg[len(avg)-1]), true
}

func renderTrend(holds []time.Duration, width int) string {
	line := stats.HoldTrend(holds, width)
	if line == "" {
		return ""
	}
	return subStyle.Render("trend ") + trendStyle.Render(line)
}

// fadeColor mixes hex toward the background by 1-opacity.
func fadeColor(hex string, opacity float64) string {
	if opacity >= 1 {
		return hex
	}
	if opacity < 0 {
		opacity = 0
	}
	fg, err := colorful.Hex(hex)
	if err != nil {
		return hex
	}
	bg, err := colorful.Hex(backgroundColor)
	if err != nil {
		return hex
	}
	return strings.ToUpper(bg.BlendRgb(fg, opacity).Clamped().Hex())
}
