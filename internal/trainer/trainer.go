// Package trainer runs one control-loop iteration: drain captured events,
// advance the strafe machine, and fold outcomes into the feed and stats.
package trainer

import (
	"log/slog"
	"time"

	"github.com/verte-zerg/cstrafe/internal/capture"
	"github.com/verte-zerg/cstrafe/internal/feed"
	"github.com/verte-zerg/cstrafe/internal/logging"
	"github.com/verte-zerg/cstrafe/internal/model"
	"github.com/verte-zerg/cstrafe/internal/stats"
	"github.com/verte-zerg/cstrafe/internal/strafe"
)

// maxHolds bounds the hold history kept for the trend line.
const maxHolds = 1000

// Drainer is the consumer side of the event bridge.
type Drainer interface {
	Drain() capture.Batch
}

// Frame is what a single Step produced.
type Frame struct {
	Outcomes []model.Outcome
	Quit     bool
	Overflow bool
	// Lost is set on the step that observed capture loss.
	Lost     bool
}

// Snapshot is a read-only view for rendering.
type Snapshot struct {
	State   strafe.State
	Display strafe.DisplayInfo
	Feed    []feed.Visible
	Stats   stats.Stats
	Holds   []time.Duration
	Frozen  bool
}

// Trainer owns the session. Only the control loop may call it.
type Trainer struct {
	src     Drainer
	labels  strafe.Labels
	machine *strafe.Machine
	feed    *feed.Log
	stats   stats.Stats
	holds   []time.Duration
	frozen  bool
	logger  *slog.Logger
}

// New creates a trainer reading from src. A nil logger discards.
func New(src Drainer, labels strafe.Labels, logger *slog.Logger) *Trainer {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Trainer{
		src:     src,
		labels:  labels,
		machine: strafe.NewMachine(),
		feed:    feed.New(),
		logger:  logger,
	}
}

// Step drains pending events and ticks the machine at now. After capture
// loss the trainer is frozen and Step does nothing.
func (t *Trainer) Step(now model.Timestamp) Frame {
	if t.frozen {
		return Frame{}
	}
	batch := t.src.Drain()

	var f Frame
	if batch.Overflow {
		f.Overflow = true
		t.logger.Warn("input events dropped", "err", "queue overflow")
	}

	res := t.machine.Tick(batch.Events, now)
	f.Outcomes = res.Outcomes
	f.Quit = res.Quit
	for _, out := range res.Outcomes {
		t.record(out, now)
	}

	if batch.Lost {
		f.Lost = true
		t.frozen = true
		t.logger.Error("trainer frozen", "err", capture.ErrCaptureLost)
	}
	return f
}

func (t *Trainer) record(out model.Outcome, now model.Timestamp) {
	t.feed.Push(out, now)
	t.stats.Record(out)
	switch out.Error {
	case model.ErrorNone, model.ErrorTooFast, model.ErrorTooSlow:
		t.holds = append(t.holds, out.HoldTime)
		if len(t.holds) > maxHolds {
			t.holds = append(t.holds[:0], t.holds[len(t.holds)-maxHolds:]...)
		}
	}
	t.logger.Debug("attempt",
		"error", out.Error.String(),
		"quality", out.Quality.String(),
		"hold_ms", out.HoldTime.Milliseconds(),
	)
}

// Reset starts a new session: counters, feed and hold history are cleared
// and the machine returns to Idle.
func (t *Trainer) Reset(now model.Timestamp) {
	t.machine.Reset()
	t.feed.Clear()
	t.stats.Reset()
	t.holds = nil
	t.logger.Info("session reset", "at", time.Duration(now))
}

// Snapshot returns the view at now. It never mutates the trainer.
func (t *Trainer) Snapshot(now model.Timestamp) Snapshot {
	state := t.machine.State()
	return Snapshot{
		State:   state,
		Display: strafe.Display(state, now, t.labels),
		Feed:    t.feed.Visible(now),
		Stats:   t.stats,
		Holds:   append([]time.Duration(nil), t.holds...),
		Frozen:  t.frozen,
	}
}

// Stats returns the session counters.
func (t *Trainer) Stats() stats.Stats {
	return t.stats
}

// Holds returns the completed hold times, oldest first.
func (t *Trainer) Holds() []time.Duration {
	return append([]time.Duration(nil), t.holds...)
}

// Frozen reports whether capture was lost.
func (t *Trainer) Frozen() bool {
	return t.frozen
}
