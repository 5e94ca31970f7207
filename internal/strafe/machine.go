package strafe

import (
	"github.com/verte-zerg/cstrafe/internal/model"
)

// Held records which keys the machine has seen go down and not yet up.
type Held [model.NumKeys]bool

// Step applies a single event to s. It returns the next state and, when the
// event ends or faults an attempt, the outcome.
func Step(s State, ev model.KeyEvent, held Held) (State, model.Outcome, bool) {
	switch cur := s.(type) {
	case Idle, Completed:
		if ev.Kind == model.Press && ev.Key.IsStrafe() {
			return Strafing{Key: ev.Key, StartedAt: ev.At}, model.Outcome{}, false
		}
	case Strafing:
		switch {
		case ev.Kind == model.Release && ev.Key == cur.Key:
			return Released{Original: cur.Key, ReleasedAt: ev.At}, model.Outcome{}, false
		case ev.Kind == model.Press && ev.Key == cur.Key.Opposite():
			return cur, model.Failure(model.ErrorBothKeysPressed, 0, ev.At), true
		}
	case Released:
		if ev.Kind != model.Press {
			break
		}
		switch ev.Key {
		case cur.Original.Opposite():
			if held[cur.Original] {
				// Only reachable if the event stream lost a release.
				return Idle{}, model.Failure(model.ErrorNoReleaseFirst, 0, ev.At), true
			}
			return CounterStrafing{Original: cur.Original, Counter: ev.Key, StartedAt: ev.At}, model.Outcome{}, false
		case cur.Original:
			return Strafing{Key: cur.Original, StartedAt: ev.At}, model.Outcome{}, false
		}
	case CounterStrafing:
		switch {
		case ev.Kind == model.Release && ev.Key == cur.Counter:
			hold := ev.At.Sub(cur.StartedAt)
			out := Verdict(hold, ev.At)
			return Completed{HoldTime: hold, Quality: out.Quality}, out, true
		case ev.Kind == model.Press && ev.Key == model.KeyShoot:
			return cur, model.Failure(model.ErrorShotTooEarly, ev.At.Sub(cur.StartedAt), ev.At), true
		}
	}
	return s, model.Outcome{}, false
}

// Expire fires the counter-key timeout. It is the only transition driven by
// time rather than by an event. The outcome is stamped with the deadline, not
// with now, so it does not depend on when the check happens.
func Expire(s State, now model.Timestamp) (State, model.Outcome, bool) {
	rel, ok := s.(Released)
	if !ok || now < rel.ReleasedAt {
		return s, model.Outcome{}, false
	}
	if now.Sub(rel.ReleasedAt) >= CounterTimeout {
		deadline := rel.ReleasedAt.Add(CounterTimeout)
		return Idle{}, model.Failure(model.ErrorNoCounterKey, 0, deadline), true
	}
	return s, model.Outcome{}, false
}

// TickResult is what one control-loop iteration produced.
type TickResult struct {
	Outcomes []model.Outcome
	Quit     bool
}

// Machine owns the counter-strafe state. It is not safe for concurrent use;
// the control loop is its only writer.
type Machine struct {
	state  State
	held   Held
	lastAt model.Timestamp
}

// NewMachine returns a machine in Idle.
func NewMachine() *Machine {
	return &Machine{state: Idle{}}
}

// State returns the current state.
func (m *Machine) State() State {
	return m.state
}

// Reset returns to Idle and forgets held keys.
func (m *Machine) Reset() {
	m.state = Idle{}
	m.held = Held{}
}

// Tick applies events in order, then evaluates the timeout against now. The
// timeout is also checked against each event's own timestamp, so outcomes
// depend only on event times and order, never on how events are batched.
func (m *Machine) Tick(events []model.KeyEvent, now model.Timestamp) TickResult {
	var res TickResult
	if _, ok := m.state.(Completed); ok {
		m.state = Idle{}
	}
	for _, ev := range events {
		if ev.At < m.lastAt {
			ev.At = m.lastAt
		}
		m.lastAt = ev.At
		// A deadline that passed before this event fires first, whatever
		// the tick cadence.
		if next, out, ok := Expire(m.state, ev.At); ok {
			m.state = next
			res.Outcomes = append(res.Outcomes, out)
		}
		if ev.Key == model.KeyQuit {
			if ev.Kind == model.Press {
				res.Quit = true
			}
			m.track(ev)
			continue
		}
		next, out, ok := Step(m.state, ev, m.held)
		m.state = next
		m.track(ev)
		if ok {
			res.Outcomes = append(res.Outcomes, out)
		}
	}
	next, out, ok := Expire(m.state, now)
	m.state = next
	if ok {
		res.Outcomes = append(res.Outcomes, out)
	}
	return res
}

func (m *Machine) track(ev model.KeyEvent) {
	if ev.Key <= model.KeyNone || int(ev.Key) >= model.NumKeys {
		return
	}
	m.held[ev.Key] = ev.Kind == model.Press
}
