// Package feed keeps the short, fading history of recent outcomes.
package feed

import (
	"fmt"
	"time"

	"github.com/verte-zerg/cstrafe/internal/model"
)

const (
	// Capacity is the most entries ever shown.
	Capacity      = 5
	opaqueFor     = 3 * time.Second
	fadeFor       = 1 * time.Second
	entryLifetime = opaqueFor + fadeFor
)

// Class selects the colour an entry is rendered with.
type Class int

const (
	ClassFailed Class = iota
	ClassGood
	ClassPerfect
)

// Entry is an immutable feed line.
type Entry struct {
	Text      string
	Symbol    string
	Class     Class
	CreatedAt model.Timestamp
}

// Opacity returns 1 for the first three seconds, then fades linearly to 0
// over the next second.
func (e Entry) Opacity(now model.Timestamp) float64 {
	age := now.Sub(e.CreatedAt)
	switch {
	case age < opaqueFor:
		return 1
	case age < entryLifetime:
		return 1 - float64(age-opaqueFor)/float64(fadeFor)
	default:
		return 0
	}
}

// Expired reports whether the entry has fully faded.
func (e Entry) Expired(now model.Timestamp) bool {
	return now.Sub(e.CreatedAt) >= entryLifetime
}

// Visible is an entry paired with its opacity at read time.
type Visible struct {
	Entry
	Opacity float64
}

// Log stores entries newest first. Eviction only happens on Push so reads
// never mutate.
type Log struct {
	entries []Entry
}

// New returns an empty log.
func New() *Log {
	return &Log{entries: make([]Entry, 0, Capacity+1)}
}

// Push records an outcome and evicts expired and over-capacity entries.
func (l *Log) Push(out model.Outcome, now model.Timestamp) {
	kept := l.entries[:0]
	for _, e := range l.entries {
		if !e.Expired(now) {
			kept = append(kept, e)
		}
	}
	l.entries = append(kept, Entry{})
	copy(l.entries[1:], l.entries[:len(l.entries)-1])
	l.entries[0] = NewEntry(out, now)
	if len(l.entries) > Capacity {
		l.entries = l.entries[:Capacity]
	}
}

// Visible returns at most Capacity unexpired entries, newest first.
func (l *Log) Visible(now model.Timestamp) []Visible {
	out := make([]Visible, 0, len(l.entries))
	for _, e := range l.entries {
		if len(out) == Capacity {
			break
		}
		if e.Expired(now) {
			continue
		}
		out = append(out, Visible{Entry: e, Opacity: e.Opacity(now)})
	}
	return out
}

// Len returns the number of retained entries, including faded ones not yet
// evicted.
func (l *Log) Len() int {
	return len(l.entries)
}

// Clear drops every entry.
func (l *Log) Clear() {
	l.entries = l.entries[:0]
}

// NewEntry formats an outcome as a feed line.
func NewEntry(out model.Outcome, now model.Timestamp) Entry {
	e := Entry{
		Text:      Message(out),
		Symbol:    out.Quality.Symbol(),
		CreatedAt: now,
	}
	switch out.Quality {
	case model.Perfect:
		e.Class = ClassPerfect
	case model.Good:
		e.Class = ClassGood
	default:
		e.Class = ClassFailed
	}
	return e
}

// Message is the feed text for an outcome.
func Message(out model.Outcome) string {
	switch out.Error {
	case model.ErrorNone:
		if out.Quality == model.Perfect {
			return fmt.Sprintf("PERFECT %dms", millis(out.HoldTime))
		}
		return fmt.Sprintf("Good %dms", millis(out.HoldTime))
	case model.ErrorTooFast:
		return fmt.Sprintf("Too fast %dms", millis(out.HoldTime))
	case model.ErrorTooSlow:
		return fmt.Sprintf("Too slow %dms", millis(out.HoldTime))
	case model.ErrorBothKeysPressed:
		return "Both keys pressed"
	case model.ErrorNoCounterKey:
		return "No counter-strafe"
	case model.ErrorShotTooEarly:
		return "Shot too early"
	case model.ErrorNoReleaseFirst:
		return "Counter before release"
	default:
		return "Failed"
	}
}

func millis(d time.Duration) int64 {
	return (d + time.Millisecond/2).Milliseconds()
}
