// Package dwell detects gaze fixations ("dwells") in a stream of
// screen-space samples. A dwell is the hands-free analog of a mouse
// click: the gaze stays within a radius of an anchor point for at least
// a minimum duration.
package dwell

import "math"

// Sample is a screen-space gaze position with a timestamp in seconds.
type Sample struct {
	X, Y float64
	T    float64
}

// Point is a screen-space position.
type Point struct {
	X, Y float64
}

// Result is the outcome of feeding one sample to the detector.
type Result struct {
	// Changed is true on the sample where the dwelling state flips:
	// the onset of a dwell, or the sample that breaks one.
	Changed bool

	// Dwelling reports whether the window currently qualifies as a dwell.
	Dwelling bool

	// Point is the position to snap to while dwelling. Nil otherwise.
	Point *Point
}

// Onset reports whether this result is the start of a new dwell,
// the moment a selection should be triggered.
func (r Result) Onset() bool {
	return r.Changed && r.Dwelling
}

// Detector is an online dwell detector.
//
// The window is anchored at its first sample. Every later sample must lie
// within the configured range of that anchor, otherwise the window restarts
// from the offending sample. Only the anchor and the most recent sample are
// kept: membership is judged against the anchor and the span is measured
// from it, so nothing in between is needed.
//
// A Detector is not safe for concurrent use.
type Detector struct {
	duration float64
	radius   float64

	anchor   Sample
	last     Sample
	size     int
	dwelling bool
}

// New creates a detector that requires the gaze to stay within radius of
// the anchor for at least duration seconds.
func New(duration, radius float64) *Detector {
	return &Detector{
		duration: duration,
		radius:   radius,
	}
}

// SetDuration updates the minimum dwell time in seconds. A duration <= 0
// makes every sample a dwell. Takes effect on the next sample.
func (d *Detector) SetDuration(seconds float64) {
	d.duration = seconds
}

// SetRange updates the spatial tolerance. A radius of 0 requires
// pixel-identical samples. Takes effect on the next sample.
func (d *Detector) SetRange(radius float64) {
	d.radius = radius
}

// Duration returns the minimum dwell time in seconds.
func (d *Detector) Duration() float64 {
	return d.duration
}

// Range returns the spatial tolerance.
func (d *Detector) Range() float64 {
	return d.radius
}

// Dwelling reports whether the last sample was part of a dwell.
func (d *Detector) Dwelling() bool {
	return d.dwelling
}

// Anchor returns the reference point of the current window.
func (d *Detector) Anchor() (Point, bool) {
	if d.size == 0 {
		return Point{}, false
	}
	return Point{X: d.anchor.X, Y: d.anchor.Y}, true
}

// Reset drops the current window and dwelling state.
func (d *Detector) Reset() {
	d.size = 0
	d.dwelling = false
}

// AddPoint feeds one sample and returns the detector's verdict.
//
// Timestamps are not required to be monotonic. A sample older than the
// anchor yields a negative span and therefore never completes a dwell;
// the window is not repaired.
func (d *Detector) AddPoint(x, y, t float64) Result {
	s := Sample{X: x, Y: y, T: t}

	if d.size == 0 {
		d.start(s)
		return d.evaluate()
	}

	if math.Hypot(x-d.anchor.X, y-d.anchor.Y) > d.radius {
		wasDwelling := d.dwelling
		d.start(s)
		return Result{Changed: wasDwelling}
	}

	d.last = s
	d.size++
	return d.evaluate()
}

func (d *Detector) start(s Sample) {
	d.anchor = s
	d.last = s
	d.size = 1
	d.dwelling = false
}

func (d *Detector) evaluate() Result {
	span := d.last.T - d.anchor.T
	if !(span >= d.duration) {
		d.dwelling = false
		return Result{}
	}

	onset := !d.dwelling
	d.dwelling = true
	return Result{
		Changed:  onset,
		Dwelling: true,
		Point:    &Point{X: d.last.X, Y: d.last.Y},
	}
}
