package device

import (
	"context"
	"io"
	"time"

	"github.com/teslashibe/go-gazepointer/pkg/gaze"
)

// StaticDiscoverer always finds the same device. It is used when the gaze
// source is configured directly (RTP listener, replay file).
type StaticDiscoverer struct {
	Device Device
}

// DiscoverOne returns the configured device.
func (s StaticDiscoverer) DiscoverOne(ctx context.Context, _ time.Duration) (Device, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.Device == nil {
		return nil, ErrNotFound
	}
	return s.Device, nil
}

// sourceDevice adapts a bare gaze source into a Device.
type sourceDevice struct {
	gaze.Source
	name string
}

// FromSource wraps src as a device without calibration. Close closes src
// when it implements io.Closer.
func FromSource(name string, src gaze.Source) Device {
	return &sourceDevice{Source: src, name: name}
}

func (d *sourceDevice) Name() string { return d.name }

func (d *sourceDevice) Calibration(context.Context) (Calibration, error) {
	return Calibration{}, ErrNoCalibration
}

func (d *sourceDevice) Close() error {
	if c, ok := d.Source.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
