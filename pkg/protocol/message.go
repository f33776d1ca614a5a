// Package protocol defines the wire formats of go-gazepointer: the pointer
// datagram consumed by the downstream application, the diagnostic gaze
// payload, and the WebSocket messages of the dashboard.
package protocol

import (
	"encoding/json"
	"fmt"
	"time"
)

// MessageType identifies the type of WebSocket message
type MessageType string

const (
	TypeStatus   MessageType = "status"   // Pointer status snapshot
	TypeDwell    MessageType = "dwell"    // Dwell onset or end
	TypeSettings MessageType = "settings" // Settings changed
)

// Message is the base wrapper for all WebSocket messages
type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp int64           `json:"ts,omitempty"` // Unix milliseconds
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(msgType MessageType, data interface{}) (*Message, error) {
	var rawData json.RawMessage
	if data != nil {
		var err error
		rawData, err = json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal message data: %w", err)
		}
	}

	return &Message{
		Type:      msgType,
		Timestamp: time.Now().UnixMilli(),
		Data:      rawData,
	}, nil
}

// ParseData unmarshals the message data into the provided struct
func (m *Message) ParseData(v interface{}) error {
	if m.Data == nil {
		return nil
	}
	return json.Unmarshal(m.Data, v)
}

// Bytes returns the JSON-encoded message
func (m *Message) Bytes() ([]byte, error) {
	return json.Marshal(m)
}

// ParseMessage parses a JSON message from bytes
func ParseMessage(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}
	return &msg, nil
}

// StatusData is a snapshot of the pointer loop
type StatusData struct {
	Session          string  `json:"session"`
	Status           string  `json:"status"`
	DeviceConnected  bool    `json:"device_connected"`
	Streaming        bool    `json:"streaming"`
	FrequencyHz      float64 `json:"frequency_hz"`
	VisibleMarkerIDs []int   `json:"visible_marker_ids"`
	PointX           float64 `json:"point_x"`
	PointY           float64 `json:"point_y"`
	Dwelling         bool    `json:"dwelling"`
	Clicked          bool    `json:"clicked"`
	MouseEnabled     bool    `json:"mouse_enabled"`
}

// DwellEvent is sent on a dwell onset and when a dwell ends
type DwellEvent struct {
	Session   string  `json:"session"`
	Onset     bool    `json:"onset"` // false: dwell ended
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Timestamp float64 `json:"timestamp_unix_seconds"`
}
