// Package web provides the settings API and live dashboard feed of the
// gaze pointer.
package web

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"
	"golang.org/x/time/rate"

	"github.com/teslashibe/go-gazepointer/internal/log"
	"github.com/teslashibe/go-gazepointer/pkg/hub"
	"github.com/teslashibe/go-gazepointer/pkg/pointer"
	"github.com/teslashibe/go-gazepointer/pkg/protocol"
	"github.com/teslashibe/go-gazepointer/pkg/surface"
)

// Limits of the dashboard feed
const (
	maxEvents       = 100
	statusRate      = 10 // status frames per second
	statusFlushTick = time.Second / statusRate
)

// Controller is the pointer as seen by the dashboard
type Controller interface {
	Settings() pointer.Settings
	ApplySettings(s pointer.Settings) error
	Status() protocol.StatusData
	Layout() surface.Layout
}

// Server is the web dashboard server
type Server struct {
	app    *fiber.App
	port   string
	ctrl   Controller
	logger *slog.Logger

	// Latest status, broadcast at most statusRate times per second
	statusMu      sync.Mutex
	status        protocol.StatusData
	statusPending bool
	statusLimit   *rate.Limiter

	// Recent dwell events
	events   []protocol.DwellEvent
	eventsMu sync.RWMutex

	// Hubs for websocket broadcast
	statusHub *hub.Hub
	eventHub  *hub.Hub
}

// NewServer creates a new dashboard server for ctrl
func NewServer(port string, ctrl Controller) *Server {
	s := &Server{
		port:        port,
		ctrl:        ctrl,
		logger:      log.With("component", "web"),
		statusLimit: rate.NewLimiter(rate.Limit(statusRate), 1),
		events:      make([]protocol.DwellEvent, 0, maxEvents),
		statusHub:   hub.New("status"),
		eventHub:    hub.New("events"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "Gaze Pointer",
		DisableStartupMessage: true,
	})

	// CORS for local development
	app.Use(cors.New())

	// API routes
	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/settings", s.handleGetSettings)
	api.Put("/settings", s.handlePutSettings)
	api.Get("/markers", s.handleMarkers)
	api.Get("/events", s.handleEvents)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	// WebSocket routes
	app.Get("/ws/status", websocket.New(s.handleStatusWS))
	app.Get("/ws/events", websocket.New(s.handleEventsWS))

	s.app = app
	return s
}

// Start runs the hubs and listens on the configured port until the
// server is shut down
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", ":"+s.port)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Start on an existing listener
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.logger.Info("web dashboard", "url", "http://localhost"+portSuffix(ln.Addr()))

	go s.statusHub.Run(ctx)
	go s.eventHub.Run(ctx)
	go s.flushLoop(ctx)
	go func() {
		<-ctx.Done()
		s.app.Shutdown()
	}()

	return s.app.Listener(ln)
}

// StartAsync starts the web server in a goroutine
func (s *Server) StartAsync(ctx context.Context) {
	go func() {
		if err := s.Start(ctx); err != nil && !errors.Is(err, net.ErrClosed) {
			s.logger.Error("web server error", "error", err)
		}
	}()
}

// Shutdown gracefully stops the web server
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// UpdateStatus records the latest pointer status and broadcasts it,
// throttled to statusRate
func (s *Server) UpdateStatus(status protocol.StatusData) {
	s.statusMu.Lock()
	s.status = status
	send := s.statusLimit.Allow()
	s.statusPending = !send
	s.statusMu.Unlock()

	if send {
		s.broadcastStatus(status)
	}
}

// flushLoop sends a status that was held back by the throttle
func (s *Server) flushLoop(ctx context.Context) {
	ticker := time.NewTicker(statusFlushTick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.statusMu.Lock()
			send := s.statusPending && s.statusLimit.Allow()
			if send {
				s.statusPending = false
			}
			status := s.status
			s.statusMu.Unlock()

			if send {
				s.broadcastStatus(status)
			}
		}
	}
}

// AddDwellEvent records a dwell event and broadcasts it
func (s *Server) AddDwellEvent(event protocol.DwellEvent) {
	s.eventsMu.Lock()
	s.events = append(s.events, event)
	if len(s.events) > maxEvents {
		s.events = s.events[1:]
	}
	s.eventsMu.Unlock()

	if err := s.eventHub.BroadcastMessage(protocol.TypeDwell, event); err != nil {
		s.logger.Warn("broadcast dwell", "error", err)
	}
}

func (s *Server) broadcastStatus(status protocol.StatusData) {
	if err := s.statusHub.BroadcastMessage(protocol.TypeStatus, status); err != nil {
		s.logger.Warn("broadcast status", "error", err)
	}
}

func portSuffix(addr net.Addr) string {
	if tcp, ok := addr.(*net.TCPAddr); ok {
		return ":" + strconv.Itoa(tcp.Port)
	}
	return ""
}
