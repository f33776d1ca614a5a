package protocol

import "github.com/teslashibe/go-gazepointer/pkg/gaze"

// RawGaze is the device gaze section of a diagnostic payload. Optional
// device fields are omitted when the device did not report them.
type RawGaze struct {
	Timestamp float64 `json:"timestamp_unix_seconds"`
	X         float64 `json:"x_raw_normalized"`
	Y         float64 `json:"y_raw_normalized"`
	Worn      bool    `json:"worn"`

	PupilDiameterLeft   *float64 `json:"pupil_diameter_left,omitempty"`
	EyeballCenterLeftX  *float64 `json:"eyeball_center_left_x,omitempty"`
	EyeballCenterLeftY  *float64 `json:"eyeball_center_left_y,omitempty"`
	EyeballCenterLeftZ  *float64 `json:"eyeball_center_left_z,omitempty"`
	OpticalAxisLeftX    *float64 `json:"optical_axis_left_x,omitempty"`
	OpticalAxisLeftY    *float64 `json:"optical_axis_left_y,omitempty"`
	OpticalAxisLeftZ    *float64 `json:"optical_axis_left_z,omitempty"`
	PupilDiameterRight  *float64 `json:"pupil_diameter_right,omitempty"`
	EyeballCenterRightX *float64 `json:"eyeball_center_right_x,omitempty"`
	EyeballCenterRightY *float64 `json:"eyeball_center_right_y,omitempty"`
	EyeballCenterRightZ *float64 `json:"eyeball_center_right_z,omitempty"`
	OpticalAxisRightX   *float64 `json:"optical_axis_right_x,omitempty"`
	OpticalAxisRightY   *float64 `json:"optical_axis_right_y,omitempty"`
	OpticalAxisRightZ   *float64 `json:"optical_axis_right_z,omitempty"`

	EyelidAngleTopLeft     *float64 `json:"eyelid_angle_top_left,omitempty"`
	EyelidAngleBottomLeft  *float64 `json:"eyelid_angle_bottom_left,omitempty"`
	EyelidApertureLeft     *float64 `json:"eyelid_aperture_left,omitempty"`
	EyelidAngleTopRight    *float64 `json:"eyelid_angle_top_right,omitempty"`
	EyelidAngleBottomRight *float64 `json:"eyelid_angle_bottom_right,omitempty"`
	EyelidApertureRight    *float64 `json:"eyelid_aperture_right,omitempty"`
}

// SurfaceGaze is one surface gaze point of a diagnostic payload.
type SurfaceGaze struct {
	Timestamp  float64 `json:"timestamp_unix_seconds"`
	X          float64 `json:"x_surface_px"`
	Y          float64 `json:"y_surface_px"`
	OnSurf     bool    `json:"on_surf"`
	Confidence float64 `json:"confidence"`
}

// Diagnostic is the rich per-sample JSON datagram.
type Diagnostic struct {
	Session string        `json:"session,omitempty"`
	Raw     RawGaze       `json:"raw_gaze_data"`
	Surface []SurfaceGaze `json:"surface_gaze_data"`
}

// NewDiagnostic builds a diagnostic payload from a raw sample and its
// surface gaze points.
func NewDiagnostic(session string, s gaze.Sample, points []gaze.SurfaceGaze) Diagnostic {
	raw := RawGaze{
		Timestamp: s.TimestampUnixSeconds,
		X:         s.X,
		Y:         s.Y,
		Worn:      s.Worn,
	}
	if e := s.LeftEye; e != nil {
		raw.PupilDiameterLeft = ptr(e.PupilDiameter)
		raw.EyeballCenterLeftX = ptr(e.EyeballCenterX)
		raw.EyeballCenterLeftY = ptr(e.EyeballCenterY)
		raw.EyeballCenterLeftZ = ptr(e.EyeballCenterZ)
		raw.OpticalAxisLeftX = ptr(e.OpticalAxisX)
		raw.OpticalAxisLeftY = ptr(e.OpticalAxisY)
		raw.OpticalAxisLeftZ = ptr(e.OpticalAxisZ)
	}
	if e := s.RightEye; e != nil {
		raw.PupilDiameterRight = ptr(e.PupilDiameter)
		raw.EyeballCenterRightX = ptr(e.EyeballCenterX)
		raw.EyeballCenterRightY = ptr(e.EyeballCenterY)
		raw.EyeballCenterRightZ = ptr(e.EyeballCenterZ)
		raw.OpticalAxisRightX = ptr(e.OpticalAxisX)
		raw.OpticalAxisRightY = ptr(e.OpticalAxisY)
		raw.OpticalAxisRightZ = ptr(e.OpticalAxisZ)
	}
	if l := s.LeftEyelid; l != nil {
		raw.EyelidAngleTopLeft = ptr(l.AngleTop)
		raw.EyelidAngleBottomLeft = ptr(l.AngleBottom)
		raw.EyelidApertureLeft = ptr(l.Aperture)
	}
	if l := s.RightEyelid; l != nil {
		raw.EyelidAngleTopRight = ptr(l.AngleTop)
		raw.EyelidAngleBottomRight = ptr(l.AngleBottom)
		raw.EyelidApertureRight = ptr(l.Aperture)
	}

	surf := make([]SurfaceGaze, 0, len(points))
	for _, p := range points {
		surf = append(surf, SurfaceGaze{
			Timestamp:  p.TimestampUnixSeconds,
			X:          p.X,
			Y:          p.Y,
			OnSurf:     p.OnSurf,
			Confidence: p.Confidence,
		})
	}

	return Diagnostic{Session: session, Raw: raw, Surface: surf}
}

func ptr(v float64) *float64 {
	return &v
}
