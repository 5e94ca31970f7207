package stats

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/cstrafe/internal/model"
)

func TestEmptySession(t *testing.T) {
	var s Stats
	if s.Total != 0 || s.PerfectPercentage() != 0 || s.FailedPercentage() != 0 {
		t.Fatalf("expected zeroed stats, got %+v", s)
	}
}

func TestRecordOutcomes(t *testing.T) {
	var s Stats
	s.Record(model.Success(80*time.Millisecond, model.Perfect, 0))
	s.Record(model.Success(82*time.Millisecond, model.Perfect, 0))
	s.Record(model.Success(100*time.Millisecond, model.Good, 0))
	s.Record(model.Failure(model.ErrorBothKeysPressed, 0, 0))

	if s.Total != 4 || s.Perfect != 2 || s.Good != 1 || s.Failed != 1 {
		t.Fatalf("unexpected counters: %+v", s)
	}
	if s.PerfectPercentage() != 50 {
		t.Fatalf("expected 50%% perfect, got %f", s.PerfectPercentage())
	}
	if s.GoodPercentage() != 25 || s.FailedPercentage() != 25 {
		t.Fatalf("unexpected percentages: %f %f", s.GoodPercentage(), s.FailedPercentage())
	}
}

func TestReset(t *testing.T) {
	var s Stats
	s.Record(model.Success(80*time.Millisecond, model.Perfect, 0))
	s.Reset()
	if s != (Stats{}) {
		t.Fatalf("expected reset stats, got %+v", s)
	}
}

func TestMovingAverage(t *testing.T) {
	got := MovingAverage([]float64{2, 4, 6, 8}, 2)
	want := []float64{2, 3, 5, 7}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("index %d: expected %f, got %f", i, want[i], got[i])
		}
	}
}

func TestSparklineFlat(t *testing.T) {
	if got := Sparkline([]float64{80, 80, 80}); got != "+++" {
		t.Fatalf("unexpected flat sparkline %q", got)
	}
	if got := Sparkline([]float64{0, 100}); got != " @" {
		t.Fatalf("unexpected sparkline %q", got)
	}
}

func TestHoldTrendTruncates(t *testing.T) {
	holds := []time.Duration{10 * time.Millisecond, 20 * time.Millisecond, 30 * time.Millisecond}
	if got := HoldTrend(holds, 2); len(got) != 2 {
		t.Fatalf("expected 2 cells, got %q", got)
	}
}

func TestRenderSummary(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderSummary(&buf, Stats{}, nil, 40); err != nil {
		t.Fatalf("render empty: %v", err)
	}
	if !strings.Contains(buf.String(), "No attempts recorded.") {
		t.Fatalf("unexpected empty summary: %q", buf.String())
	}

	buf.Reset()
	s := Stats{Total: 4, Perfect: 1, Good: 2, Failed: 1}
	holds := []time.Duration{70 * time.Millisecond, 90 * time.Millisecond}
	if err := RenderSummary(&buf, s, holds, 40); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Session Summary", "Perfect", "25.0%", "50.0%", "Total", "Hold trend"} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary missing %q:\n%s", want, out)
		}
	}
}
