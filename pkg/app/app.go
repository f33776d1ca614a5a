package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/teslashibe/go-gazepointer/internal/log"
	"github.com/teslashibe/go-gazepointer/pkg/cursor"
	"github.com/teslashibe/go-gazepointer/pkg/debug"
	"github.com/teslashibe/go-gazepointer/pkg/device"
	"github.com/teslashibe/go-gazepointer/pkg/gaze"
	"github.com/teslashibe/go-gazepointer/pkg/pointer"
	"github.com/teslashibe/go-gazepointer/pkg/surface"
	"github.com/teslashibe/go-gazepointer/pkg/transport"
	"github.com/teslashibe/go-gazepointer/pkg/web"
)

var _ web.Controller = (*pointer.Pointer)(nil)

// App is the running gaze pointer.
type App struct {
	config Config

	discoverer device.Discoverer
	device     device.Device
	rtp        *gaze.RTPSource
	replay     *os.File

	sink    *transport.UDPSender
	mapper  surface.Mapper
	pointer *pointer.Pointer

	webServer *web.Server
}

// New creates a new application with the given configuration.
func New(cfg Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	debug.Enabled = cfg.Debug
	debug.Gaze = cfg.DebugGaze

	cfg.Pointer.Settings.MouseEnabled = cfg.MouseEnabled
	cfg.Pointer.Diagnostics = cfg.Diagnostics

	return &App{config: cfg}, nil
}

// Init opens the gaze source and the datagram socket.
// Call this after New() and before Run().
func (a *App) Init() error {
	log.Info("gaze pointer starting", "source", a.config.Source)

	sink, err := transport.Dial(a.config.UDPHost, a.config.UDPPort)
	if err != nil {
		return fmt.Errorf("udp: %w", err)
	}
	a.sink = sink
	log.Info("sending pointer datagrams", "addr", sink.Addr())

	switch a.config.Source {
	case SourceReplay:
		f, err := os.Open(a.config.ReplayPath)
		if err != nil {
			return fmt.Errorf("replay: %w", err)
		}
		a.replay = f
		src := gaze.NewReplaySource(f, a.config.ReplayPaced)
		a.discoverer = device.StaticDiscoverer{Device: device.FromSource("replay "+a.config.ReplayPath, src)}

	case SourceRTP, SourceCompanion:
		src, err := gaze.ListenRTP(a.config.RTPAddr)
		if err != nil {
			return fmt.Errorf("rtp: %w", err)
		}
		a.rtp = src
		log.Info("listening for gaze", "addr", src.Addr().String())
		if a.config.Source == SourceCompanion {
			a.discoverer = &device.HTTPDiscoverer{Hosts: a.config.Companions, Source: src}
		} else {
			a.discoverer = device.StaticDiscoverer{Device: device.FromSource("rtp "+src.Addr().String(), src)}
		}
	}

	if a.config.Mapper == MapperHomography {
		a.mapper = surface.NewHomographyMapper(a.config.MarkerDetector)
	} else {
		// Gaze-only sources arrive already in screen space.
		a.mapper = surface.NewPassthroughMapper()
	}
	log.Info("surface mapper", "mapper", a.config.Mapper)
	return nil
}

// Run connects to the device and runs the pointer loop.
// Blocks until ctx is cancelled or the source is exhausted.
func (a *App) Run(ctx context.Context) error {
	log.Info(pointer.StatusSearching)
	dev, err := device.Connect(ctx, a.discoverer, device.DefaultMaxSearch, device.DefaultRetryInterval)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return fmt.Errorf("connect: %w", err)
	}
	a.device = dev

	if cal, err := dev.Calibration(ctx); err == nil {
		log.Debug("calibration", "serial", cal.Serial, "bytes", len(cal.Raw))
	} else if !errors.Is(err, device.ErrNoCalibration) {
		log.Warn("calibration unavailable", "error", err)
	}

	a.pointer = pointer.New(a.config.Pointer, dev, a.mapper, a.sink)
	a.pointer.SetCursor(cursor.NewLogController())

	if a.config.WebPort != "" {
		a.webServer = web.NewServer(a.config.WebPort, a.pointer)
		a.pointer.SetStatusUpdater(a.webServer)
		a.webServer.StartAsync(ctx)
	}
	a.pointer.SetDevice(dev.Name())

	return a.pointer.Run(ctx)
}

// Pointer returns the pointer loop, nil before Run connected a device.
func (a *App) Pointer() *pointer.Pointer {
	return a.pointer
}

// Shutdown releases the device, sockets and the dashboard.
func (a *App) Shutdown() {
	log.Info("shutting down")

	if a.webServer != nil {
		a.webServer.Shutdown()
	}
	if a.device != nil {
		a.device.Close()
	} else if a.rtp != nil {
		a.rtp.Close()
	}
	if a.replay != nil {
		a.replay.Close()
	}
	if a.sink != nil {
		sent, failed := a.sink.Stats()
		log.Info("datagrams", "sent", sent, "failed", failed)
		a.sink.Close()
	}
}
