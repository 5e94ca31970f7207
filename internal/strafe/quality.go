// Package strafe interprets key events as counter-strafe attempts.
package strafe

import (
	"time"

	"github.com/verte-zerg/cstrafe/internal/model"
)

// Timing constants. These are fixed; do not expose them as configuration.
const (
	OptimalHold      = 80 * time.Millisecond
	MinHold          = 60 * time.Millisecond
	MaxHold          = 120 * time.Millisecond
	PerfectTolerance = 15 * time.Millisecond
	CounterTimeout   = 180 * time.Millisecond
)

// Evaluate grades a hold time. Fail bounds are exclusive, the perfect band is
// inclusive on both sides.
func Evaluate(hold time.Duration) model.Quality {
	if hold < MinHold || hold > MaxHold {
		return model.Failed
	}
	if absDuration(hold-OptimalHold) <= PerfectTolerance {
		return model.Perfect
	}
	return model.Good
}

// Verdict maps a measured hold to an outcome: too fast/too slow become error
// outcomes, everything else a success with its quality.
func Verdict(hold time.Duration, at model.Timestamp) model.Outcome {
	switch {
	case hold < MinHold:
		return model.Failure(model.ErrorTooFast, hold, at)
	case hold > MaxHold:
		return model.Failure(model.ErrorTooSlow, hold, at)
	default:
		return model.Success(hold, Evaluate(hold), at)
	}
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
