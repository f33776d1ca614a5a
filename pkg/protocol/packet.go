package protocol

import (
	"encoding/binary"
	"errors"
	"math"
)

// PointerPacketSize is the size of a pointer datagram.
const PointerPacketSize = 16

// ErrShortPacket is returned when a pointer datagram is truncated.
var ErrShortPacket = errors.New("protocol: short pointer packet")

// Pointer is the screen position sent to the downstream application.
type Pointer struct {
	X, Y      float32
	Timestamp float64 // gaze timestamp, unix seconds
}

// EncodePointer packs p little endian as float32 x, float32 y,
// float64 timestamp.
func EncodePointer(p Pointer) []byte {
	b := make([]byte, PointerPacketSize)
	binary.LittleEndian.PutUint32(b[0:], math.Float32bits(p.X))
	binary.LittleEndian.PutUint32(b[4:], math.Float32bits(p.Y))
	binary.LittleEndian.PutUint64(b[8:], math.Float64bits(p.Timestamp))
	return b
}

// DecodePointer unpacks a pointer datagram.
func DecodePointer(b []byte) (Pointer, error) {
	if len(b) < PointerPacketSize {
		return Pointer{}, ErrShortPacket
	}
	return Pointer{
		X:         math.Float32frombits(binary.LittleEndian.Uint32(b[0:])),
		Y:         math.Float32frombits(binary.LittleEndian.Uint32(b[4:])),
		Timestamp: math.Float64frombits(binary.LittleEndian.Uint64(b[8:])),
	}, nil
}
