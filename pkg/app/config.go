// Package app wires the gaze pointer together: device discovery, the
// pointer loop, datagram output and the web dashboard.
package app

import (
	"fmt"

	"github.com/teslashibe/go-gazepointer/internal/config"
	"github.com/teslashibe/go-gazepointer/pkg/pointer"
	"github.com/teslashibe/go-gazepointer/pkg/surface"
)

// Gaze sources.
const (
	SourceRTP       = "rtp"       // Gaze RTP packets on a local UDP port
	SourceReplay    = "replay"    // Recorded JSON lines
	SourceCompanion = "companion" // Companion app found over HTTP, gaze over RTP
)

// Surface mappers.
const (
	MapperPassthrough = "passthrough" // Gaze already in screen space
	MapperHomography  = "homography"  // Project scene camera gaze through the tag markers
)

// Config holds all configuration for the application.
// Flag parsing is done in cmd/gazepointer/main.go; this struct is data only.
type Config struct {
	// Debug enables verbose debug logging; DebugGaze logs every sample.
	Debug     bool
	DebugGaze bool

	// Source selects where gaze comes from.
	Source      string
	RTPAddr     string
	ReplayPath  string
	ReplayPaced bool
	Companions  []string // companion app addresses for SourceCompanion

	// Pointer datagram destination.
	UDPHost string
	UDPPort int

	// WebPort is the dashboard port. Empty disables the dashboard.
	WebPort string

	// Mapper selects how gaze is projected onto the tag window.
	// MapperHomography needs scene frames and a MarkerDetector supplied
	// by the embedder.
	Mapper         string
	MarkerDetector surface.MarkerDetector

	MouseEnabled bool
	Diagnostics  bool

	Pointer pointer.Config
}

// DefaultConfig returns defaults matching the environment defaults.
func DefaultConfig() Config {
	return Config{
		Source:      SourceRTP,
		RTPAddr:     config.DefaultRTPAddr,
		ReplayPaced: true,
		UDPHost:     config.DefaultUDPHost,
		UDPPort:     config.DefaultUDPPort,
		WebPort:     config.DefaultWebPort,
		Mapper:      MapperPassthrough,
		Pointer:     pointer.DefaultConfig(),
	}
}

// ApplyEnv copies process configuration into c.
func (c *Config) ApplyEnv(env config.Config) {
	c.UDPHost = env.UDPHost
	c.UDPPort = env.UDPPort
	c.WebPort = env.WebPort
	c.RTPAddr = env.RTPAddr
	c.Pointer.WindowWidth = env.ScreenWidth
	c.Pointer.WindowHeight = env.ScreenHeight
}

// Validate checks that the selected source is usable.
func (c *Config) Validate() error {
	switch c.Source {
	case SourceRTP:
	case SourceReplay:
		if c.ReplayPath == "" {
			return &ConfigError{Field: "ReplayPath", Message: "a replay file is required with -source replay"}
		}
	case SourceCompanion:
		if len(c.Companions) == 0 {
			return &ConfigError{Field: "Companions", Message: "at least one companion address is required with -source companion"}
		}
	default:
		return &ConfigError{Field: "Source", Message: fmt.Sprintf("unknown source %q (rtp, replay, companion)", c.Source)}
	}
	switch c.Mapper {
	case "", MapperPassthrough:
	case MapperHomography:
		if c.MarkerDetector == nil {
			return &ConfigError{Field: "MarkerDetector", Message: "the homography mapper needs a marker detector"}
		}
		if c.Source != SourceReplay {
			return &ConfigError{Field: "Mapper", Message: "the homography mapper needs scene frames, only -source replay carries them"}
		}
	default:
		return &ConfigError{Field: "Mapper", Message: fmt.Sprintf("unknown mapper %q (passthrough, homography)", c.Mapper)}
	}
	if c.UDPPort <= 0 || c.UDPPort > 65535 {
		return &ConfigError{Field: "UDPPort", Message: fmt.Sprintf("udp port out of range: %d", c.UDPPort)}
	}
	return c.Pointer.Settings.Validate(c.Pointer.WindowWidth)
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Message
}
