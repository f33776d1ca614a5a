// Package config provides process configuration for go-gazepointer commands.
// Values come from the environment, optionally seeded from a .env file.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Defaults.
const (
	DefaultUDPHost      = "127.0.0.1"
	DefaultUDPPort      = 5005
	DefaultWebPort      = "8080"
	DefaultLogLevel     = "info"
	DefaultRTPAddr      = ":0"
	DefaultScreenWidth  = 1920
	DefaultScreenHeight = 1080
)

// Config holds process-level settings.
type Config struct {
	UDPHost      string
	UDPPort      int
	WebPort      string
	LogLevel     string
	LogFile      string
	RTPAddr      string
	ScreenWidth  int
	ScreenHeight int
}

// Load reads configuration from the environment. If files are given they
// are loaded first with godotenv; values already in the environment win.
// A missing .env file is not an error.
func Load(files ...string) (Config, error) {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	cfg := Config{
		UDPHost:  env("GAZE_UDP_HOST", DefaultUDPHost),
		WebPort:  env("GAZE_WEB_PORT", DefaultWebPort),
		LogLevel: env("GAZE_LOG_LEVEL", DefaultLogLevel),
		LogFile:  os.Getenv("GAZE_LOG_FILE"),
		RTPAddr:  env("GAZE_RTP_ADDR", DefaultRTPAddr),
	}

	var err error
	if cfg.UDPPort, err = envInt("GAZE_UDP_PORT", DefaultUDPPort); err != nil {
		return Config{}, err
	}
	if cfg.ScreenWidth, err = envInt("GAZE_SCREEN_WIDTH", DefaultScreenWidth); err != nil {
		return Config{}, err
	}
	if cfg.ScreenHeight, err = envInt("GAZE_SCREEN_HEIGHT", DefaultScreenHeight); err != nil {
		return Config{}, err
	}

	return cfg, cfg.Validate()
}

// Validate checks ranges that would otherwise fail late at dial time.
func (c Config) Validate() error {
	if c.UDPPort <= 0 || c.UDPPort > 65535 {
		return fmt.Errorf("GAZE_UDP_PORT out of range: %d", c.UDPPort)
	}
	if c.ScreenWidth <= 0 || c.ScreenHeight <= 0 {
		return fmt.Errorf("screen size must be positive: %dx%d", c.ScreenWidth, c.ScreenHeight)
	}
	return nil
}

// UDPAddr returns host:port of the datagram listener.
func (c Config) UDPAddr() string {
	return fmt.Sprintf("%s:%d", c.UDPHost, c.UDPPort)
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
