package device

import (
	"context"
	"sync"
	"time"

	"github.com/teslashibe/go-gazepointer/pkg/gaze"
)

// Mock is an in-memory device for tests. Queued items are returned in
// order; an empty queue yields gaze.ErrNoData immediately.
type Mock struct {
	DeviceName string
	Calib      Calibration

	mu     sync.Mutex
	queue  []*gaze.Matched
	closed bool
}

// NewMock creates a mock device with the given items queued.
func NewMock(name string, items ...*gaze.Matched) *Mock {
	return &Mock{DeviceName: name, queue: items}
}

// Push queues more items.
func (m *Mock) Push(items ...*gaze.Matched) {
	m.mu.Lock()
	m.queue = append(m.queue, items...)
	m.mu.Unlock()
}

// Pending returns the number of queued items.
func (m *Mock) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

func (m *Mock) Name() string { return m.DeviceName }

func (m *Mock) Calibration(context.Context) (Calibration, error) {
	if m.Calib.Raw == nil {
		return Calibration{}, ErrNoCalibration
	}
	return m.Calib, nil
}

func (m *Mock) ReceiveMatched(ctx context.Context, _ time.Duration) (*gaze.Matched, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, gaze.ErrClosed
	}
	if len(m.queue) == 0 {
		return nil, gaze.ErrNoData
	}
	item := m.queue[0]
	m.queue = m.queue[1:]
	return item, nil
}

func (m *Mock) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

// Closed reports whether Close was called.
func (m *Mock) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
