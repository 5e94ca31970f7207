// Package clock reads the monotonic clock shared with the capture layer.
package clock

import "github.com/verte-zerg/cstrafe/internal/model"

// Now returns the current monotonic timestamp.
func Now() model.Timestamp {
	return now()
}
