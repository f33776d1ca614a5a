package device

import (
	"context"
	"errors"
	"time"

	"github.com/teslashibe/go-gazepointer/internal/log"
)

// Default discovery timing.
const (
	DefaultMaxSearch     = 250 * time.Millisecond
	DefaultRetryInterval = time.Second
)

// Connect runs discovery until a device is found or ctx is done. Each
// attempt searches for maxSearch; failed attempts are retried after
// retryInterval.
func Connect(ctx context.Context, d Discoverer, maxSearch, retryInterval time.Duration) (Device, error) {
	if maxSearch <= 0 {
		maxSearch = DefaultMaxSearch
	}
	if retryInterval <= 0 {
		retryInterval = DefaultRetryInterval
	}

	for attempt := 1; ; attempt++ {
		dev, err := d.DiscoverOne(ctx, maxSearch)
		if err == nil {
			log.Info("device connected", "name", dev.Name(), "attempts", attempt)
			return dev, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, ErrNotFound) {
			log.Debug("no device found, retrying", "attempt", attempt)
		} else {
			log.Warn("device discovery failed", "attempt", attempt, "error", err)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryInterval):
		}
	}
}
