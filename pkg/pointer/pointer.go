// Package pointer turns a stream of device gaze into screen pointer
// positions and dwell clicks.
package pointer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/teslashibe/go-gazepointer/internal/log"
	"github.com/teslashibe/go-gazepointer/pkg/cursor"
	"github.com/teslashibe/go-gazepointer/pkg/debug"
	"github.com/teslashibe/go-gazepointer/pkg/dwell"
	"github.com/teslashibe/go-gazepointer/pkg/gaze"
	"github.com/teslashibe/go-gazepointer/pkg/protocol"
	"github.com/teslashibe/go-gazepointer/pkg/surface"
	"github.com/teslashibe/go-gazepointer/pkg/transport"
)

// Status strings reported to the dashboard
const (
	StatusSearching = "Looking for a device..."
	StatusStreaming = "Streaming"
)

// StatusUpdater receives pointer state for the dashboard
type StatusUpdater interface {
	UpdateStatus(status protocol.StatusData)
	AddDwellEvent(event protocol.DwellEvent)
}

// Pointer maps gaze onto the tag window surface, detects dwells and
// publishes the resulting pointer position.
type Pointer struct {
	config  Config
	source  gaze.Source
	mapper  surface.Mapper
	sink    transport.Sink
	diag    transport.Sink
	cursor  cursor.Controller
	state   StatusUpdater
	logger  *slog.Logger
	session string

	mu       sync.RWMutex
	settings Settings
	layout   surface.Layout
	surface  surface.Surface
	detector *dwell.Detector
	freq     gaze.FrequencyEstimator
	position *surface.Point // last published normalized position
	status   protocol.StatusData
	device   string

	// Rate limits for warnings that would otherwise fire per sample
	noGazeLimit  *rate.Limiter
	sendErrLimit *rate.Limiter
}

// New creates a pointer reading from source, mapping with mapper and
// sending pointer datagrams to sink.
func New(config Config, source gaze.Source, mapper surface.Mapper, sink transport.Sink) *Pointer {
	session := uuid.New().String()
	p := &Pointer{
		config:       config,
		source:       source,
		mapper:       mapper,
		sink:         sink,
		logger:       log.With("component", "pointer", "session", session),
		session:      session,
		settings:     config.Settings,
		detector:     dwell.New(config.Settings.DwellTime, config.Settings.DwellRadius),
		noGazeLimit:  rate.NewLimiter(rate.Every(time.Second), 1),
		sendErrLimit: rate.NewLimiter(rate.Every(5*time.Second), 1),
	}
	p.status = protocol.StatusData{
		Session:      session,
		Status:       StatusSearching,
		MouseEnabled: config.Settings.MouseEnabled,
	}
	p.rebuildSurface()
	return p
}

// SetCursor sets the controller used when the mouse is enabled
func (p *Pointer) SetCursor(c cursor.Controller) {
	p.cursor = c
}

// SetStatusUpdater sets the dashboard state updater
func (p *Pointer) SetStatusUpdater(state StatusUpdater) {
	p.state = state
}

// SetDiagnosticSink sets where diagnostic gaze JSON is sent when
// diagnostics are enabled. Defaults to the pointer sink.
func (p *Pointer) SetDiagnosticSink(s transport.Sink) {
	p.diag = s
}

// SetDevice records the connected device.
func (p *Pointer) SetDevice(name string) {
	p.mu.Lock()
	p.device = name
	p.status.DeviceConnected = true
	p.status.Status = fmt.Sprintf("Connected to %s. One moment...", name)
	status := p.snapshot()
	p.mu.Unlock()
	p.logger.Info("device connected", "name", name)
	p.publish(status, nil)
}

// Session returns the session id of this pointer.
func (p *Pointer) Session() string {
	return p.session
}

// Settings returns the current live settings.
func (p *Pointer) Settings() Settings {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.settings
}

// Status returns the current status snapshot.
func (p *Pointer) Status() protocol.StatusData {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snapshot()
}

// Layout returns the marker layout currently drawn.
func (p *Pointer) Layout() surface.Layout {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.layout
}

// ApplySettings validates s and makes it the live settings. The dwell
// detector is retuned in place; the surface is rebuilt when the marker
// layout moved.
func (p *Pointer) ApplySettings(s Settings) error {
	p.mu.Lock()
	if err := s.Validate(p.config.WindowWidth); err != nil {
		p.mu.Unlock()
		return err
	}
	old := p.settings
	p.settings = s
	p.detector.SetDuration(s.DwellTime)
	p.detector.SetRange(s.DwellRadius)
	if s.layoutChanged(old) {
		p.rebuildSurface()
	}
	p.status.MouseEnabled = s.MouseEnabled
	status := p.snapshot()
	p.mu.Unlock()

	p.logger.Info("settings applied",
		"dwell_time", s.DwellTime,
		"dwell_radius", s.DwellRadius,
		"smoothing", s.Smoothing,
		"mouse", s.MouseEnabled,
		"tag_size", s.TagSize)
	p.publish(status, nil)
	return nil
}

// rebuildSurface replaces the registered surface with one matching the
// current layout. Callers hold mu, except New.
func (p *Pointer) rebuildSurface() {
	p.layout = surface.Layout{
		Width:       p.config.WindowWidth,
		Height:      p.config.WindowHeight,
		TagSize:     p.settings.TagSize,
		LeftOffset:  p.settings.LeftOffset,
		RightOffset: p.settings.RightOffset,
	}.Clamped()

	p.mapper.ClearSurfaces()
	p.surface = p.mapper.AddSurface(p.layout.MarkerVerts(), p.layout.SurfaceSize())
}

// Run polls the source until ctx is done or the source is exhausted.
func (p *Pointer) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	s := p.Settings()
	p.logger.Info("pointer started",
		"poll", p.config.PollInterval,
		"dwell_time", s.DwellTime,
		"dwell_radius", s.DwellRadius)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			err := p.Poll(ctx)
			switch {
			case err == nil:
			case errors.Is(err, io.EOF), errors.Is(err, gaze.ErrClosed):
				p.logger.Info("gaze source finished")
				return nil
			case ctx.Err() != nil:
				return nil
			default:
				p.logger.Warn("poll failed", "error", err)
			}
		}
	}
}

// Poll processes at most one matched sample. It returns nil when the
// source had nothing within the receive timeout.
func (p *Pointer) Poll(ctx context.Context) error {
	m, err := p.source.ReceiveMatched(ctx, p.config.ReceiveTimeout)
	if errors.Is(err, gaze.ErrNoData) {
		return nil
	}
	if err != nil {
		return err
	}
	return p.Process(m)
}

// Process runs one matched sample through the pipeline.
func (p *Pointer) Process(m *gaze.Matched) error {
	p.mu.Lock()
	status, events, err := p.process(m)
	p.mu.Unlock()

	p.publish(status, events)
	return err
}

func (p *Pointer) process(m *gaze.Matched) (protocol.StatusData, []protocol.DwellEvent, error) {
	p.status.Streaming = true
	if p.device != "" {
		p.status.Status = fmt.Sprintf("Streaming data from %s", p.device)
	} else {
		p.status.Status = StatusStreaming
	}
	p.status.FrequencyHz = p.freq.Add(m.Gaze.TimestampUnixSeconds)

	res, err := p.mapper.Process(m)
	if err != nil {
		return p.snapshot(), nil, fmt.Errorf("map gaze: %w", err)
	}
	p.status.VisibleMarkerIDs = surface.MarkerIDs(res.Markers)

	points, ok := res.Gaze[p.surface.UID]
	if !ok {
		return p.snapshot(), nil, nil
	}
	if len(points) == 0 && p.noGazeLimit.Allow() {
		p.logger.Warn("no gaze data on surface")
	}

	var events []protocol.DwellEvent
	for _, sg := range points {
		if ev, ok := p.step(m.Gaze, sg); ok {
			events = append(events, ev)
		}
	}

	if p.config.Diagnostics {
		p.sendDiagnostic(m.Gaze, points)
	}
	return p.snapshot(), events, nil
}

// step handles one surface gaze point. It returns a dwell event when the
// dwelling state changed.
func (p *Pointer) step(raw gaze.Sample, sg gaze.SurfaceGaze) (protocol.DwellEvent, bool) {
	// Smooth in normalized surface space; the first point is taken as is.
	nx, ny := sg.X, sg.Y
	if p.position != nil {
		s := p.settings.Smoothing
		nx = p.position.X*s + sg.X*(1-s)
		ny = p.position.Y*s + sg.Y*(1-s)
	}

	w, h := float64(p.layout.Width), float64(p.layout.Height)
	sized := w > 0 && h > 0
	if !sized {
		w, h = float64(p.config.FallbackWidth), float64(p.config.FallbackHeight)
	}
	cx, cy := nx*w, ny*h

	ts := raw.TimestampUnixSeconds
	if ts == 0 {
		ts, _ = p.freq.Last()
	}
	r := p.detector.AddPoint(cx, cy, ts)

	fx, fy := nx, ny
	screen := dwell.Point{X: cx, Y: cy}
	if r.Dwelling && r.Point != nil {
		if sized {
			fx = r.Point.X / w
			fy = 1 - r.Point.Y/h
		}
		screen = *r.Point
	}
	fx, fy = clamp01(fx), clamp01(fy)
	p.position = &surface.Point{X: fx, Y: fy}

	mp := p.layout.ScreenPoint(fx, fy)
	pkt := protocol.EncodePointer(protocol.Pointer{
		X:         float32(mp.X),
		Y:         float32(mp.Y),
		Timestamp: raw.TimestampUnixSeconds,
	})
	if err := p.sink.Send(pkt); err != nil && p.sendErrLimit.Allow() {
		p.logger.Warn("send pointer datagram", "error", err)
	}
	debug.GazeLog("gaze (%.3f, %.3f) -> screen (%.1f, %.1f) dwell=%v\n", sg.X, sg.Y, mp.X, mp.Y, r.Dwelling)

	p.status.PointX, p.status.PointY = mp.X, mp.Y
	p.status.Dwelling = r.Dwelling
	p.status.Clicked = r.Onset()

	mouse := p.settings.MouseEnabled && p.cursor != nil
	if r.Onset() && mouse {
		if err := p.cursor.Click(int(r.Point.X), int(r.Point.Y)); err != nil {
			p.logger.Warn("click failed", "error", err)
		}
	}
	if mouse {
		if err := p.cursor.MoveTo(int(screen.X), int(screen.Y)); err != nil {
			p.logger.Warn("cursor move failed", "error", err)
		}
	}

	if !r.Changed {
		return protocol.DwellEvent{}, false
	}
	return protocol.DwellEvent{
		Session:   p.session,
		Onset:     r.Dwelling,
		X:         mp.X,
		Y:         mp.Y,
		Timestamp: ts,
	}, true
}

func (p *Pointer) sendDiagnostic(raw gaze.Sample, points []gaze.SurfaceGaze) {
	sink := p.diag
	if sink == nil {
		sink = p.sink
	}
	b, err := json.Marshal(protocol.NewDiagnostic(p.session, raw, points))
	if err != nil {
		p.logger.Warn("encode diagnostic", "error", err)
		return
	}
	if err := sink.Send(b); err != nil && p.sendErrLimit.Allow() {
		p.logger.Warn("send diagnostic datagram", "error", err)
	}
}

// snapshot copies the status. Callers hold mu.
func (p *Pointer) snapshot() protocol.StatusData {
	s := p.status
	s.VisibleMarkerIDs = append([]int(nil), p.status.VisibleMarkerIDs...)
	return s
}

func (p *Pointer) publish(status protocol.StatusData, events []protocol.DwellEvent) {
	for _, ev := range events {
		if ev.Onset {
			p.logger.Info("dwell", "x", ev.X, "y", ev.Y)
		}
	}
	if p.state == nil {
		return
	}
	p.state.UpdateStatus(status)
	for _, ev := range events {
		p.state.AddDwellEvent(ev)
	}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
