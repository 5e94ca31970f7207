package strafe

import (
	"fmt"
	"time"

	"github.com/verte-zerg/cstrafe/internal/model"
)

// State is one of Idle, Strafing, Released, CounterStrafing or Completed.
type State interface {
	isState()
	fmt.Stringer
}

// Idle waits for the first strafe press.
type Idle struct{}

// Strafing holds the original strafe key.
type Strafing struct {
	Key       model.Key
	StartedAt model.Timestamp
}

// Released waits for the counter key after the original key went up.
type Released struct {
	Original   model.Key
	ReleasedAt model.Timestamp
}

// CounterStrafing holds the counter key and times it.
type CounterStrafing struct {
	Original  model.Key
	Counter   model.Key
	StartedAt model.Timestamp
}

// Completed is shown for one tick after an attempt finished.
type Completed struct {
	HoldTime time.Duration
	Quality  model.Quality
}

func (Idle) isState()            {}
func (Strafing) isState()        {}
func (Released) isState()        {}
func (CounterStrafing) isState() {}
func (Completed) isState()       {}

func (Idle) String() string { return "idle" }

func (s Strafing) String() string {
	return fmt.Sprintf("strafing(%s)", s.Key)
}

func (s Released) String() string {
	return fmt.Sprintf("released(%s)", s.Original)
}

func (s CounterStrafing) String() string {
	return fmt.Sprintf("counter-strafing(%s->%s)", s.Original, s.Counter)
}

func (s Completed) String() string {
	return fmt.Sprintf("completed(%s, %s)", s.HoldTime, s.Quality)
}
