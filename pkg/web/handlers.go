package web

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-gazepointer/pkg/hub"
	"github.com/teslashibe/go-gazepointer/pkg/pointer"
	"github.com/teslashibe/go-gazepointer/pkg/protocol"
	"github.com/teslashibe/go-gazepointer/pkg/surface"
)

// MarkerInfo describes one marker drawn in the tag window
type MarkerInfo struct {
	ID      int              `json:"id"`
	Visible bool             `json:"visible"`
	Corners [4]surface.Point `json:"corners"`
}

// MarkersResponse is the tag window layout
type MarkersResponse struct {
	Width         int          `json:"width"`
	Height        int          `json:"height"`
	TagSize       int          `json:"tag_size"`
	TagBrightness int          `json:"tag_brightness"`
	Markers       []MarkerInfo `json:"markers"`
}

// handleStatus returns the pointer's current status
func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(s.ctrl.Status())
}

// handleGetSettings returns the live settings
func (s *Server) handleGetSettings(c *fiber.Ctx) error {
	return c.JSON(s.ctrl.Settings())
}

// handlePutSettings applies new settings. Fields missing from the body
// keep their current value.
func (s *Server) handlePutSettings(c *fiber.Ctx) error {
	settings := s.ctrl.Settings()
	if err := c.BodyParser(&settings); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if err := s.ctrl.ApplySettings(settings); err != nil {
		if errors.Is(err, pointer.ErrInvalidSettings) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	applied := s.ctrl.Settings()
	if err := s.statusHub.BroadcastMessage(protocol.TypeSettings, applied); err != nil {
		s.logger.Warn("broadcast settings", "error", err)
	}
	return c.JSON(applied)
}

// handleMarkers returns the marker layout and which markers the scene
// camera currently sees
func (s *Server) handleMarkers(c *fiber.Ctx) error {
	layout := s.ctrl.Layout()
	visible := make(map[int]bool)
	for _, id := range s.ctrl.Status().VisibleMarkerIDs {
		visible[id] = true
	}

	verts := layout.MarkerVerts()
	resp := MarkersResponse{
		Width:         layout.Width,
		Height:        layout.Height,
		TagSize:       layout.TagSize,
		TagBrightness: s.ctrl.Settings().TagBrightness,
		Markers:       make([]MarkerInfo, 0, len(verts)),
	}
	for id := 0; id < surface.MarkerCount; id++ {
		resp.Markers = append(resp.Markers, MarkerInfo{
			ID:      id,
			Visible: visible[id],
			Corners: verts[id],
		})
	}
	return c.JSON(resp)
}

// handleEvents returns recent dwell events, oldest first
func (s *Server) handleEvents(c *fiber.Ctx) error {
	s.eventsMu.RLock()
	defer s.eventsMu.RUnlock()
	return c.JSON(s.events)
}

// handleStatusWS streams status updates, starting with the current one
func (s *Server) handleStatusWS(c *websocket.Conn) {
	if err := writeMessage(c, protocol.TypeStatus, s.ctrl.Status()); err != nil {
		s.logger.Warn("initial status", "error", err)
		return
	}
	s.serveClient(s.statusHub, c)
}

// handleEventsWS streams dwell events
func (s *Server) handleEventsWS(c *websocket.Conn) {
	s.serveClient(s.eventHub, c)
}

// writeMessage sends one dashboard message directly on c
func writeMessage(c *websocket.Conn, msgType protocol.MessageType, data interface{}) error {
	msg, err := protocol.NewMessage(msgType, data)
	if err != nil {
		return err
	}
	b, err := msg.Bytes()
	if err != nil {
		return err
	}
	return c.WriteMessage(websocket.TextMessage, b)
}

func (s *Server) serveClient(h *hub.Hub, c *websocket.Conn) {
	client := hub.NewClient(h, c)
	if client == nil {
		return
	}
	client.Run()
}
