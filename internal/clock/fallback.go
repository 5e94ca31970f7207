package clock

import (
	"time"

	"github.com/verte-zerg/cstrafe/internal/model"
)

var origin = time.Now()

// fallback uses the monotonic reading carried by time.Time.
func fallback() model.Timestamp {
	return model.Timestamp(time.Since(origin))
}
