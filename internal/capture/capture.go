// Package capture turns raw keyboard events from the OS into an ordered,
// de-duplicated stream of key events for the control loop.
//
// Platform support:
//   - Linux: reads /dev/input/event* (requires the input group or root)
//   - others: not available; Start reports ErrCaptureUnavailable
package capture

import (
	"context"
	"errors"

	"github.com/verte-zerg/cstrafe/internal/model"
)

// RawEvent is a physical key transition as reported by a Source. Hardware
// auto-repeat is reported as another press.
//
// A Resync event replaces the transition: the source lost events and Held is
// the full set of keys down at At.
type RawEvent struct {
	Code    uint16
	Pressed bool
	At      model.Timestamp

	Resync bool
	Held   KeyBits
}

// keyMax is KEY_MAX from linux/input-event-codes.h.
const keyMax = 0x2ff

// KeyBits is a key state bitmap indexed by key code, laid out like the
// kernel's EVIOCGKEY buffer.
type KeyBits [(keyMax + 1) / 8]byte

// Has reports whether code is set.
func (b *KeyBits) Has(code uint16) bool {
	if int(code)/8 >= len(b) {
		return false
	}
	return b[code/8]&(1<<(code%8)) != 0
}

// Set marks code as down.
func (b *KeyBits) Set(code uint16) {
	if int(code)/8 < len(b) {
		b[code/8] |= 1 << (code % 8)
	}
}

// Source delivers raw events on its own goroutine.
type Source interface {
	// Open acquires the devices. Failure here means capture is unavailable.
	Open() error

	// Run calls emit for every raw event until ctx is done or the source
	// fails. It returns nil when stopped through ctx.
	Run(ctx context.Context, emit func(RawEvent)) error

	// Close releases the devices.
	Close() error
}

// PermissionHint tells the operator how to grant keyboard access.
const PermissionHint = `keyboard access requires read permission on /dev/input/event*
  Option 1: add your user to the input group (recommended):
    sudo usermod -a -G input $USER
    (then log out and back in)
  Option 2: run with sudo`

var (
	// ErrCaptureUnavailable is returned when the source cannot be opened.
	ErrCaptureUnavailable = errors.New("keyboard capture unavailable")

	// ErrCaptureLost is reported when a running source stops unexpectedly.
	ErrCaptureLost = errors.New("keyboard capture lost")

	// ErrAlreadyStarted is returned when Start is called twice.
	ErrAlreadyStarted = errors.New("bridge already started")
)
