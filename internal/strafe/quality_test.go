package strafe

import (
	"testing"
	"time"

	"github.com/verte-zerg/cstrafe/internal/model"
)

func us(n int) time.Duration {
	return time.Duration(n) * time.Microsecond
}

func TestEvaluateThresholds(t *testing.T) {
	cases := []struct {
		hold time.Duration
		want model.Quality
	}{
		{0, model.Failed},
		{59 * time.Millisecond, model.Failed},
		{60 * time.Millisecond, model.Good},
		{us(64900), model.Good},
		{65 * time.Millisecond, model.Perfect},
		{80 * time.Millisecond, model.Perfect},
		{95 * time.Millisecond, model.Perfect},
		{us(95001), model.Good},
		{100 * time.Millisecond, model.Good},
		{120 * time.Millisecond, model.Good},
		{121 * time.Millisecond, model.Failed},
		{2 * time.Second, model.Failed},
	}
	for _, tc := range cases {
		if got := Evaluate(tc.hold); got != tc.want {
			t.Fatalf("Evaluate(%s) = %s, want %s", tc.hold, got, tc.want)
		}
	}
}

func TestVerdictErrors(t *testing.T) {
	if out := Verdict(50*time.Millisecond, 0); out.Error != model.ErrorTooFast || out.Quality != model.Failed {
		t.Fatalf("expected too fast failure, got %+v", out)
	}
	if out := Verdict(130*time.Millisecond, 0); out.Error != model.ErrorTooSlow || out.HoldTime != 130*time.Millisecond {
		t.Fatalf("expected too slow failure, got %+v", out)
	}
	if out := Verdict(100*time.Millisecond, 0); out.IsError() || out.Quality != model.Good {
		t.Fatalf("expected good success, got %+v", out)
	}
}

func TestBandFor(t *testing.T) {
	if BandFor(40*time.Millisecond) != BandTooFast {
		t.Fatalf("expected too fast band")
	}
	if BandFor(80*time.Millisecond) != BandPerfect {
		t.Fatalf("expected perfect band")
	}
	if BandFor(110*time.Millisecond) != BandGood {
		t.Fatalf("expected good band")
	}
	if BandFor(150*time.Millisecond) != BandTooSlow {
		t.Fatalf("expected too slow band")
	}
}
