// Package gaze defines the gaze data delivered by an eye-tracking device
// and the sources that produce it.
package gaze

import (
	"context"
	"time"
)

// EyeState is the per-eye 3D state some devices report alongside gaze.
type EyeState struct {
	PupilDiameter  float64 `json:"pupil_diameter"`
	EyeballCenterX float64 `json:"eyeball_center_x"`
	EyeballCenterY float64 `json:"eyeball_center_y"`
	EyeballCenterZ float64 `json:"eyeball_center_z"`
	OpticalAxisX   float64 `json:"optical_axis_x"`
	OpticalAxisY   float64 `json:"optical_axis_y"`
	OpticalAxisZ   float64 `json:"optical_axis_z"`
}

// Eyelid is the per-eye eyelid state.
type Eyelid struct {
	AngleTop    float64 `json:"angle_top"`
	AngleBottom float64 `json:"angle_bottom"`
	Aperture    float64 `json:"aperture"`
}

// Sample is one raw gaze reading in normalized camera space.
// Optional device fields are nil when the device did not report them.
type Sample struct {
	X                    float64 `json:"x"`
	Y                    float64 `json:"y"`
	Worn                 bool    `json:"worn"`
	TimestampUnixSeconds float64 `json:"timestamp_unix_seconds"`

	// Dual monocular gaze (right eye); left eye is X/Y.
	RightX *float64 `json:"right_x,omitempty"`
	RightY *float64 `json:"right_y,omitempty"`

	LeftEye     *EyeState `json:"left_eye,omitempty"`
	RightEye    *EyeState `json:"right_eye,omitempty"`
	LeftEyelid  *Eyelid   `json:"left_eyelid,omitempty"`
	RightEyelid *Eyelid   `json:"right_eyelid,omitempty"`
}

// Time returns the sample timestamp as a time.Time.
func (s Sample) Time() time.Time {
	sec := int64(s.TimestampUnixSeconds)
	nsec := int64((s.TimestampUnixSeconds - float64(sec)) * 1e9)
	return time.Unix(sec, nsec)
}

// Frame is a scene camera frame matched to a gaze sample.
type Frame struct {
	TimestampUnixSeconds float64 `json:"timestamp_unix_seconds"`
	Width                int     `json:"width"`
	Height               int     `json:"height"`
	JPEG                 []byte  `json:"jpeg,omitempty"`
}

// Matched pairs a gaze sample with the scene frame it was taken against.
// Frame may be nil for gaze-only sources.
type Matched struct {
	Frame *Frame `json:"frame,omitempty"`
	Gaze  Sample `json:"gaze"`
}

// SurfaceGaze is a gaze point projected onto a registered surface, in
// normalized surface coordinates.
type SurfaceGaze struct {
	X, Y                 float64
	OnSurf               bool
	Confidence           float64
	TimestampUnixSeconds float64
}

// Source yields matched frame and gaze pairs.
type Source interface {
	// ReceiveMatched waits up to timeout for the next pair.
	// It returns ErrNoData when nothing arrived in time.
	ReceiveMatched(ctx context.Context, timeout time.Duration) (*Matched, error)
}
