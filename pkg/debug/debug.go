// Package debug provides global debug logging flags
package debug

import "fmt"

// Enabled controls whether debug logging is active
var Enabled bool

// Gaze controls whether per-sample gaze logs are shown (surface gaze,
// dwell decisions, datagrams). These fire at the device rate.
// Use --debug-gaze to enable these very verbose logs
var Gaze bool

// Log prints a message only if debug mode is enabled
func Log(format string, args ...interface{}) {
	if Enabled {
		fmt.Printf(format, args...)
	}
}

// GazeLog prints a message only if gaze debug mode is enabled
func GazeLog(format string, args ...interface{}) {
	if Gaze {
		fmt.Printf(format, args...)
	}
}
