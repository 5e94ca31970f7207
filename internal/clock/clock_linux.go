//go:build linux

package clock

import (
	"time"

	"golang.org/x/sys/unix"

	"github.com/verte-zerg/cstrafe/internal/model"
)

// now reads CLOCK_MONOTONIC, the clock evdev stamps events with once
// EVIOCSCLOCKID has been applied to the device.
func now() model.Timestamp {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		return fallback()
	}
	return model.Timestamp(time.Duration(ts.Nano()))
}
