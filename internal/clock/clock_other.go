//go:build !linux

package clock

import "github.com/verte-zerg/cstrafe/internal/model"

func now() model.Timestamp {
	return fallback()
}
