package gaze

import "errors"

var (
	// ErrNoData is returned when no sample arrived within the timeout.
	ErrNoData = errors.New("gaze: no data")

	// ErrPayloadSize is returned for gaze payloads of an unknown length.
	ErrPayloadSize = errors.New("gaze: unexpected payload size")

	// ErrClosed is returned by sources after Close.
	ErrClosed = errors.New("gaze: source closed")
)
