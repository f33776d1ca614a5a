package gaze

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Gaze payload sizes sent by Neon-style devices, big endian float32s.
const (
	PayloadGaze          = 9  // x, y, worn
	PayloadDualMonocular = 17 // left x, y, worn, right x, y
	PayloadEyeState      = 65 // x, y, worn, 14 eye state floats
	PayloadEyelid        = 89 // eye state + 6 eyelid floats
)

// wornFlag is the worn byte value for a device on the wearer's head.
const wornFlag = 255

// DecodePayload decodes a gaze payload. The timestamp is left at zero;
// it comes from the transport.
func DecodePayload(b []byte) (Sample, error) {
	switch len(b) {
	case PayloadGaze, PayloadDualMonocular, PayloadEyeState, PayloadEyelid:
	default:
		return Sample{}, fmt.Errorf("%w: %d bytes", ErrPayloadSize, len(b))
	}

	r := reader{b: b}
	s := Sample{
		X: r.float(),
		Y: r.float(),
	}
	s.Worn = r.byte() == wornFlag

	switch len(b) {
	case PayloadDualMonocular:
		rx, ry := r.float(), r.float()
		s.RightX, s.RightY = &rx, &ry
	case PayloadEyeState, PayloadEyelid:
		s.LeftEye = r.eyeState()
		s.RightEye = r.eyeState()
		if len(b) == PayloadEyelid {
			s.LeftEyelid = r.eyelid()
			s.RightEyelid = r.eyelid()
		}
	}
	return s, nil
}

// EncodePayload is the inverse of DecodePayload. The payload size follows
// from which optional fields are set.
func EncodePayload(s Sample) []byte {
	var w writer
	w.float(s.X)
	w.float(s.Y)
	if s.Worn {
		w.b = append(w.b, wornFlag)
	} else {
		w.b = append(w.b, 0)
	}

	switch {
	case s.LeftEye != nil && s.RightEye != nil:
		w.eyeState(s.LeftEye)
		w.eyeState(s.RightEye)
		if s.LeftEyelid != nil && s.RightEyelid != nil {
			w.eyelid(s.LeftEyelid)
			w.eyelid(s.RightEyelid)
		}
	case s.RightX != nil && s.RightY != nil:
		w.float(*s.RightX)
		w.float(*s.RightY)
	}
	return w.b
}

type reader struct {
	b   []byte
	off int
}

func (r *reader) float() float64 {
	v := math.Float32frombits(binary.BigEndian.Uint32(r.b[r.off:]))
	r.off += 4
	return float64(v)
}

func (r *reader) byte() byte {
	v := r.b[r.off]
	r.off++
	return v
}

func (r *reader) eyeState() *EyeState {
	return &EyeState{
		PupilDiameter:  r.float(),
		EyeballCenterX: r.float(),
		EyeballCenterY: r.float(),
		EyeballCenterZ: r.float(),
		OpticalAxisX:   r.float(),
		OpticalAxisY:   r.float(),
		OpticalAxisZ:   r.float(),
	}
}

func (r *reader) eyelid() *Eyelid {
	return &Eyelid{
		AngleTop:    r.float(),
		AngleBottom: r.float(),
		Aperture:    r.float(),
	}
}

type writer struct {
	b []byte
}

func (w *writer) float(v float64) {
	w.b = binary.BigEndian.AppendUint32(w.b, math.Float32bits(float32(v)))
}

func (w *writer) eyeState(e *EyeState) {
	for _, v := range []float64{e.PupilDiameter, e.EyeballCenterX, e.EyeballCenterY,
		e.EyeballCenterZ, e.OpticalAxisX, e.OpticalAxisY, e.OpticalAxisZ} {
		w.float(v)
	}
}

func (w *writer) eyelid(e *Eyelid) {
	w.float(e.AngleTop)
	w.float(e.AngleBottom)
	w.float(e.Aperture)
}
