// Package device finds an eye-tracking device and exposes its gaze stream.
package device

import (
	"context"
	"errors"
	"time"

	"github.com/teslashibe/go-gazepointer/pkg/gaze"
)

var (
	// ErrNotFound is returned when discovery ends without a device.
	ErrNotFound = errors.New("device: not found")

	// ErrNoCalibration is returned by devices that carry no calibration.
	ErrNoCalibration = errors.New("device: no calibration available")
)

// Calibration is the device's camera calibration blob as reported by the
// device. It is opaque to this module and passed to mappers that want it.
type Calibration struct {
	Serial string
	Raw    []byte
}

// Device is a connected eye tracker.
type Device interface {
	gaze.Source
	Name() string
	Calibration(ctx context.Context) (Calibration, error)
	Close() error
}

// Discoverer searches for a single device.
type Discoverer interface {
	// DiscoverOne searches for at most maxSearch and returns the first
	// device found, or ErrNotFound.
	DiscoverOne(ctx context.Context, maxSearch time.Duration) (Device, error)
}
