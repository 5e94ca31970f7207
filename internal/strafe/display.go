package strafe

import (
	"fmt"
	"time"

	"github.com/verte-zerg/cstrafe/internal/model"
)

// Band places a live hold time relative to the thresholds.
type Band int

const (
	BandNone Band = iota
	BandTooFast
	BandPerfect
	BandGood
	BandTooSlow
)

// Labels names each logical key the way the user sees it (e.g. "A").
type Labels [model.NumKeys]string

// DisplayInfo is a read-only view of the current state for the UI.
type DisplayInfo struct {
	Main      string
	Sub       string
	ShowTimer bool
	Hold      time.Duration
	Band      Band
}

// CurrentHold returns how long the counter key has been held, if it is.
func CurrentHold(s State, now model.Timestamp) (time.Duration, bool) {
	cs, ok := s.(CounterStrafing)
	if !ok {
		return 0, false
	}
	if now < cs.StartedAt {
		return 0, true
	}
	return now.Sub(cs.StartedAt), true
}

// BandFor classifies a running hold time.
func BandFor(hold time.Duration) Band {
	switch {
	case hold < MinHold:
		return BandTooFast
	case hold > MaxHold:
		return BandTooSlow
	case Evaluate(hold) == model.Perfect:
		return BandPerfect
	default:
		return BandGood
	}
}

// Display describes what the main card should show.
func Display(s State, now model.Timestamp, labels Labels) DisplayInfo {
	switch cur := s.(type) {
	case Strafing:
		return DisplayInfo{Main: "RELEASE", Sub: "Release " + labels[cur.Key]}
	case Released:
		return DisplayInfo{Main: "COUNTER", Sub: "Press " + labels[cur.Original.Opposite()]}
	case CounterStrafing:
		hold, _ := CurrentHold(cur, now)
		return DisplayInfo{ShowTimer: true, Hold: hold, Band: BandFor(hold)}
	default:
		return DisplayInfo{
			Main: "READY",
			Sub:  fmt.Sprintf("Press %s or %s", labels[model.KeyLeft], labels[model.KeyRight]),
		}
	}
}
