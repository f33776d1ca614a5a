package pointer

import "time"

// Config holds the fixed parameters of the pointer loop
type Config struct {
	// Timing
	PollInterval   time.Duration // How often to poll the gaze source
	ReceiveTimeout time.Duration // How long one poll waits for a sample

	// Window is the tag window the markers are drawn in. A zero size
	// converts gaze with the fallback screen size instead.
	WindowWidth    int
	WindowHeight   int
	FallbackWidth  int
	FallbackHeight int

	// Diagnostics sends the raw and surface gaze JSON with every sample
	Diagnostics bool

	// Settings are the initial live settings
	Settings Settings
}

// DefaultConfig returns the configuration for a 60 Hz pointer loop
func DefaultConfig() Config {
	return Config{
		PollInterval:   time.Second / 60,
		ReceiveTimeout: 10 * time.Millisecond,

		WindowWidth:    1920,
		WindowHeight:   1080,
		FallbackWidth:  1920,
		FallbackHeight: 1080,

		Settings: DefaultSettings(),
	}
}
