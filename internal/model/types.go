// Package model defines shared data structures.
package model

import (
	"fmt"
	"time"
)

// Timestamp is a reading of the monotonic clock, expressed as the time elapsed
// since an arbitrary fixed origin. Capture timestamps and the control loop's
// "now" share the same origin.
type Timestamp time.Duration

// Sub returns t-u.
func (t Timestamp) Sub(u Timestamp) time.Duration {
	return time.Duration(t - u)
}

// Add returns t+d.
func (t Timestamp) Add(d time.Duration) Timestamp {
	return t + Timestamp(d)
}

// Key is a logical key the trainer cares about.
type Key int

const (
	KeyNone Key = iota
	KeyLeft
	KeyRight
	KeyShoot
	KeyQuit
)

// NumKeys bounds arrays indexed by Key.
const NumKeys = int(KeyQuit) + 1

// IsStrafe reports whether k is one of the two strafe keys.
func (k Key) IsStrafe() bool {
	return k == KeyLeft || k == KeyRight
}

// Opposite returns the other strafe key. Non-strafe keys map to KeyNone.
func (k Key) Opposite() Key {
	switch k {
	case KeyLeft:
		return KeyRight
	case KeyRight:
		return KeyLeft
	default:
		return KeyNone
	}
}

func (k Key) String() string {
	switch k {
	case KeyLeft:
		return "left"
	case KeyRight:
		return "right"
	case KeyShoot:
		return "shoot"
	case KeyQuit:
		return "quit"
	default:
		return "none"
	}
}

// KeyKind distinguishes presses from releases.
type KeyKind int

const (
	Press KeyKind = iota
	Release
)

func (k KeyKind) String() string {
	if k == Release {
		return "release"
	}
	return "press"
}

// KeyEvent is a filtered, de-duplicated key transition.
type KeyEvent struct {
	Key  Key
	Kind KeyKind
	At   Timestamp
}

func (e KeyEvent) String() string {
	return fmt.Sprintf("%s %s @%s", e.Kind, e.Key, time.Duration(e.At))
}

// Quality grades a completed counter-strafe.
type Quality int

const (
	Failed Quality = iota
	Good
	Perfect
)

func (q Quality) String() string {
	switch q {
	case Perfect:
		return "perfect"
	case Good:
		return "good"
	default:
		return "failed"
	}
}

// Symbol is the glyph shown next to an outcome.
func (q Quality) Symbol() string {
	switch q {
	case Perfect:
		return "★"
	case Good:
		return "●"
	default:
		return "✕"
	}
}

// ErrorKind classifies a failed attempt. ErrorNone marks a success.
type ErrorKind int

const (
	ErrorNone ErrorKind = iota
	ErrorBothKeysPressed
	ErrorNoCounterKey
	ErrorTooFast
	ErrorTooSlow
	ErrorShotTooEarly
	ErrorNoReleaseFirst
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorNone:
		return "none"
	case ErrorBothKeysPressed:
		return "both_keys_pressed"
	case ErrorNoCounterKey:
		return "no_counter_key"
	case ErrorTooFast:
		return "too_fast"
	case ErrorTooSlow:
		return "too_slow"
	case ErrorShotTooEarly:
		return "shot_too_early"
	case ErrorNoReleaseFirst:
		return "no_release_first"
	default:
		return "unknown"
	}
}

// Outcome is the result of a terminal transition of the state machine.
// Error outcomes always carry Quality Failed; HoldTime is set when a hold was
// measured (success, too fast, too slow).
type Outcome struct {
	Error    ErrorKind
	HoldTime time.Duration
	Quality  Quality
	At       Timestamp
}

// Success builds a successful outcome.
func Success(hold time.Duration, q Quality, at Timestamp) Outcome {
	return Outcome{HoldTime: hold, Quality: q, At: at}
}

// Failure builds an error outcome.
func Failure(kind ErrorKind, hold time.Duration, at Timestamp) Outcome {
	return Outcome{Error: kind, HoldTime: hold, Quality: Failed, At: at}
}

// IsError reports whether the outcome is an error.
func (o Outcome) IsError() bool {
	return o.Error != ErrorNone
}

// Config defines runtime settings of the trainer. Timing thresholds are not
// part of it.
type Config struct {
	Left      string
	LeftAlias string
	Right     string
	Shoot     string
	Quit      string
	Device    string
	Queue     int
	FPS       int
	LogLevel  string
	LogFile   string
	LogFormat string
}
