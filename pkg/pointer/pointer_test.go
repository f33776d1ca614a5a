package pointer

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/teslashibe/go-gazepointer/pkg/cursor"
	"github.com/teslashibe/go-gazepointer/pkg/device"
	"github.com/teslashibe/go-gazepointer/pkg/gaze"
	"github.com/teslashibe/go-gazepointer/pkg/protocol"
	"github.com/teslashibe/go-gazepointer/pkg/surface"
)

type captureSink struct {
	mu      sync.Mutex
	packets [][]byte
	err     error
}

func (c *captureSink) Send(b []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.packets = append(c.packets, append([]byte(nil), b...))
	return c.err
}

func (c *captureSink) Close() error { return nil }

func (c *captureSink) all() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]byte(nil), c.packets...)
}

func (c *captureSink) pointers(t *testing.T) []protocol.Pointer {
	t.Helper()
	var out []protocol.Pointer
	for _, b := range c.all() {
		if len(b) != protocol.PointerPacketSize {
			continue
		}
		p, err := protocol.DecodePointer(b)
		if err != nil {
			t.Fatal(err)
		}
		out = append(out, p)
	}
	return out
}

type captureState struct {
	mu     sync.Mutex
	status []protocol.StatusData
	events []protocol.DwellEvent
}

func (c *captureState) UpdateStatus(s protocol.StatusData) {
	c.mu.Lock()
	c.status = append(c.status, s)
	c.mu.Unlock()
}

func (c *captureState) AddDwellEvent(e protocol.DwellEvent) {
	c.mu.Lock()
	c.events = append(c.events, e)
	c.mu.Unlock()
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.WindowWidth = 1000
	cfg.WindowHeight = 1000
	cfg.PollInterval = time.Millisecond
	cfg.Settings.Smoothing = 0
	cfg.Settings.DwellTime = 0.5
	cfg.Settings.DwellRadius = 50
	return cfg
}

// sample builds a matched item whose passthrough surface position is
// (sx, sy) with y growing upward.
func sample(sx, sy, ts float64) *gaze.Matched {
	return &gaze.Matched{Gaze: gaze.Sample{X: sx, Y: 1 - sy, Worn: true, TimestampUnixSeconds: ts}}
}

func approx(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func newTestPointer(cfg Config) (*Pointer, *captureSink, *captureState) {
	sink := &captureSink{}
	state := &captureState{}
	p := New(cfg, device.NewMock("mock"), surface.NewPassthroughMapper(), sink)
	p.SetStatusUpdater(state)
	return p, sink, state
}

func TestProcess_DwellClick(t *testing.T) {
	p, sink, state := newTestPointer(testConfig())
	rec := &cursor.Recorder{}
	p.SetCursor(rec)

	s := p.Settings()
	s.MouseEnabled = true
	if err := p.ApplySettings(s); err != nil {
		t.Fatal(err)
	}

	for _, m := range []*gaze.Matched{
		sample(0.5, 0.5, 100.0),
		sample(0.51, 0.5, 100.3),
		sample(0.5, 0.5, 100.6),
	} {
		if err := p.Process(m); err != nil {
			t.Fatalf("Process() error = %v", err)
		}
	}

	clicks := rec.Clicks()
	if len(clicks) != 1 {
		t.Fatalf("clicks = %+v, want exactly one", clicks)
	}
	if clicks[0].X != 500 || clicks[0].Y != 500 {
		t.Errorf("click at (%d, %d), want (500, 500)", clicks[0].X, clicks[0].Y)
	}
	if got := len(rec.Actions()) - len(clicks); got != 3 {
		t.Errorf("moves = %d, want one per sample", got)
	}

	if len(state.events) != 1 || !state.events[0].Onset {
		t.Errorf("events = %+v, want one onset", state.events)
	}
	last := state.status[len(state.status)-1]
	if !last.Dwelling || !last.Clicked || !last.Streaming {
		t.Errorf("status = %+v", last)
	}

	pts := sink.pointers(t)
	if len(pts) != 3 {
		t.Fatalf("datagrams = %d, want 3", len(pts))
	}
	dp := pts[2]
	if !approx(float64(dp.X), 500, 1e-3) || !approx(float64(dp.Y), 500, 1e-3) || dp.Timestamp != 100.6 {
		t.Errorf("dwell datagram = %+v, want (500, 500, 100.6)", dp)
	}
}

func TestProcess_DwellFlipsY(t *testing.T) {
	p, sink, _ := newTestPointer(testConfig())
	rec := &cursor.Recorder{}
	p.SetCursor(rec)

	s := p.Settings()
	s.MouseEnabled = true
	if err := p.ApplySettings(s); err != nil {
		t.Fatal(err)
	}

	// Off the horizontal midline so the dwell point's y = 1 - y/h shows.
	p.Process(sample(0.5, 0.25, 0))
	p.Process(sample(0.5, 0.25, 1))

	pts := sink.pointers(t)
	if len(pts) != 2 {
		t.Fatalf("datagrams = %d, want 2", len(pts))
	}
	l := p.Layout()
	tests := []struct {
		name  string
		got   protocol.Pointer
		wantY float64
	}{
		{"before dwell", pts[0], l.ScreenPoint(0.5, 0.25).Y}, // 739.7
		{"dwell onset", pts[1], l.ScreenPoint(0.5, 0.75).Y},  // 260.3
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !approx(float64(tt.got.X), 500, 1e-3) || !approx(float64(tt.got.Y), tt.wantY, 1e-3) {
				t.Errorf("datagram = (%v, %v), want (500, %v)", tt.got.X, tt.got.Y, tt.wantY)
			}
		})
	}
	if !approx(float64(pts[0].Y), 739.7, 1e-3) || !approx(float64(pts[1].Y), 260.3, 1e-3) {
		t.Errorf("datagram y = %v then %v, want 739.7 then 260.3", pts[0].Y, pts[1].Y)
	}

	clicks := rec.Clicks()
	if len(clicks) != 1 {
		t.Fatalf("clicks = %+v, want exactly one", clicks)
	}
	if clicks[0].X != 500 || clicks[0].Y != 250 {
		t.Errorf("click at (%d, %d), want (500, 250)", clicks[0].X, clicks[0].Y)
	}
}

func TestProcess_NoClickWhenMouseDisabled(t *testing.T) {
	p, _, state := newTestPointer(testConfig())
	rec := &cursor.Recorder{}
	p.SetCursor(rec)

	p.Process(sample(0.5, 0.5, 0))
	p.Process(sample(0.5, 0.5, 1))

	if len(rec.Actions()) != 0 {
		t.Errorf("cursor actions with mouse disabled: %+v", rec.Actions())
	}
	if len(state.events) != 1 {
		t.Errorf("dwell events = %d, want 1", len(state.events))
	}
}

func TestProcess_Smoothing(t *testing.T) {
	cfg := testConfig()
	cfg.Settings.Smoothing = 0.5
	cfg.Settings.DwellTime = 20
	p, sink, _ := newTestPointer(cfg)

	p.Process(sample(0.2, 0.2, 1))
	p.Process(sample(0.6, 0.6, 2))

	pts := sink.pointers(t)
	if len(pts) != 2 {
		t.Fatalf("datagrams = %d, want 2", len(pts))
	}

	// Smoothed (0.4, 0.4) through a 1000 px window with a 20.6 px margin.
	want := p.Layout().ScreenPoint(0.4, 0.4)
	if !approx(float64(pts[1].X), want.X, 1e-3) || !approx(float64(pts[1].Y), want.Y, 1e-3) {
		t.Errorf("smoothed point = (%v, %v), want (%v, %v)", pts[1].X, pts[1].Y, want.X, want.Y)
	}
	if !approx(want.X, 404.12, 1e-6) || !approx(want.Y, 595.88, 1e-6) {
		t.Errorf("ScreenPoint(0.4, 0.4) = %+v", want)
	}
}

func TestProcess_ClampsToSurface(t *testing.T) {
	cfg := testConfig()
	cfg.Settings.DwellTime = 20
	p, sink, _ := newTestPointer(cfg)

	p.Process(sample(1.5, -0.5, 1))

	pts := sink.pointers(t)
	want := p.Layout().ScreenPoint(1, 0)
	if len(pts) != 1 || !approx(float64(pts[0].X), want.X, 1e-3) || !approx(float64(pts[0].Y), want.Y, 1e-3) {
		t.Errorf("datagrams = %+v, want clamped %+v", pts, want)
	}
}

func TestProcess_Diagnostics(t *testing.T) {
	cfg := testConfig()
	cfg.Diagnostics = true
	p, sink, _ := newTestPointer(cfg)
	diag := &captureSink{}
	p.SetDiagnosticSink(diag)

	p.Process(sample(0.25, 0.75, 7))

	if len(sink.all()) != 1 {
		t.Errorf("pointer datagrams = %d, want 1", len(sink.all()))
	}
	got := diag.all()
	if len(got) != 1 {
		t.Fatalf("diagnostic datagrams = %d, want 1", len(got))
	}
	var d protocol.Diagnostic
	if err := json.Unmarshal(got[0], &d); err != nil {
		t.Fatal(err)
	}
	if d.Session != p.Session() || d.Raw.Timestamp != 7 || len(d.Surface) != 1 {
		t.Errorf("diagnostic = %+v", d)
	}
}

func TestProcess_SendErrorDoesNotStop(t *testing.T) {
	p, sink, _ := newTestPointer(testConfig())
	sink.err = errors.New("connection refused")

	if err := p.Process(sample(0.5, 0.5, 1)); err != nil {
		t.Errorf("Process() error = %v, want send errors swallowed", err)
	}
	if err := p.Process(sample(0.5, 0.5, 2)); err != nil {
		t.Errorf("Process() error = %v", err)
	}
}

func TestProcess_FallbackTimestamp(t *testing.T) {
	cfg := testConfig()
	cfg.Settings.DwellTime = 0
	p, sink, state := newTestPointer(cfg)

	p.Process(sample(0.5, 0.5, 0))
	if len(state.events) != 1 {
		t.Fatalf("zero dwell time should dwell on the first sample, events = %+v", state.events)
	}
	if pts := sink.pointers(t); pts[0].Timestamp != 0 {
		t.Errorf("datagram timestamp = %v, want raw 0", pts[0].Timestamp)
	}
}

func TestApplySettings(t *testing.T) {
	p, _, _ := newTestPointer(testConfig())
	before := p.Layout()

	bad := p.Settings()
	bad.DwellTime = 25
	if err := p.ApplySettings(bad); !errors.Is(err, ErrInvalidSettings) {
		t.Errorf("error = %v, want ErrInvalidSettings", err)
	}

	s := p.Settings()
	s.TagSize = 150
	s.DwellTime = 0
	if err := p.ApplySettings(s); err != nil {
		t.Fatalf("ApplySettings() error = %v", err)
	}
	if got := p.Layout(); got.TagSize != 150 || got.TagSize == before.TagSize {
		t.Errorf("layout tag size = %d, want 150", got.TagSize)
	}
	if p.detector.Duration() != 0 {
		t.Errorf("detector duration = %v, want 0", p.detector.Duration())
	}
}

func TestApplySettings_RebuildsSurface(t *testing.T) {
	p, _, _ := newTestPointer(testConfig())
	uid := p.surface.UID

	s := p.Settings()
	s.Smoothing = 0.9
	p.ApplySettings(s)
	if p.surface.UID != uid {
		t.Error("surface rebuilt although the layout did not change")
	}

	s.LeftOffset = -100
	p.ApplySettings(s)
	if p.surface.UID == uid {
		t.Error("surface not rebuilt after moving the markers")
	}
}

func TestSetDevice(t *testing.T) {
	p, _, state := newTestPointer(testConfig())
	p.SetDevice("Neon")

	st := p.Status()
	if !st.DeviceConnected || !strings.Contains(st.Status, "Neon") {
		t.Errorf("status = %+v", st)
	}
	p.Process(sample(0.5, 0.5, 1))
	if got := p.Status().Status; got != "Streaming data from Neon" {
		t.Errorf("status = %q", got)
	}
	if len(state.status) != 2 {
		t.Errorf("status updates = %d, want 2", len(state.status))
	}
}

func TestRun_ReplayToEOF(t *testing.T) {
	lines := strings.Join([]string{
		`{"gaze":{"x":0.5,"y":0.5,"worn":true,"timestamp_unix_seconds":1.0}}`,
		`{"gaze":{"x":0.5,"y":0.5,"worn":true,"timestamp_unix_seconds":1.1}}`,
		`{"gaze":{"x":0.5,"y":0.5,"worn":true,"timestamp_unix_seconds":1.2}}`,
	}, "\n")

	sink := &captureSink{}
	src := gaze.NewReplaySource(strings.NewReader(lines), false)
	p := New(testConfig(), src, surface.NewPassthroughMapper(), sink)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if ctx.Err() != nil {
		t.Fatal("Run did not stop at the end of the recording")
	}
	if got := len(sink.all()); got != 3 {
		t.Errorf("datagrams = %d, want 3", got)
	}
	if hz := p.Status().FrequencyHz; !approx(hz, 10, 1e-6) {
		t.Errorf("frequency = %v, want 10", hz)
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	p, _, _ := newTestPointer(testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	time.Sleep(10 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
