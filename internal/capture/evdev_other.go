//go:build !linux

package capture

import (
	"context"
	"errors"
)

var errUnsupported = errors.New("keyboard capture is only implemented on linux")

// EvdevSource is unavailable on this platform.
type EvdevSource struct{}

// NewEvdevSource returns a source whose Open always fails.
func NewEvdevSource(string) *EvdevSource {
	return &EvdevSource{}
}

// Open reports that capture is not supported.
func (s *EvdevSource) Open() error {
	return errUnsupported
}

// Run returns immediately.
func (s *EvdevSource) Run(context.Context, func(RawEvent)) error {
	return errUnsupported
}

// Close is a no-op.
func (s *EvdevSource) Close() error {
	return nil
}

func readable(string) bool {
	return false
}
