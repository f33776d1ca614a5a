// Package surface describes the screen surface the gaze is mapped onto:
// where the fiducial markers are drawn, and how camera-space gaze becomes
// surface-space gaze.
package surface

import "math"

// Default marker layout.
const (
	DefaultTagSize     = 206
	DefaultLeftOffset  = -256
	DefaultRightOffset = 256
	MarkerCount        = 4
)

// Point is a 2D position in pixels.
type Point struct {
	X, Y float64
}

// Size is a width and height in pixels.
type Size struct {
	Width, Height float64
}

// Rect is an axis-aligned rectangle in pixels.
type Rect struct {
	X, Y, W, H float64
}

// Inset shrinks the rectangle by m on every side.
func (r Rect) Inset(m float64) Rect {
	return Rect{X: r.X + m, Y: r.Y + m, W: r.W - 2*m, H: r.H - 2*m}
}

// Corners returns the vertices clockwise from the top left.
func (r Rect) Corners() [4]Point {
	return [4]Point{
		{r.X, r.Y},
		{r.X + r.W, r.Y},
		{r.X + r.W, r.Y + r.H},
		{r.X, r.Y + r.H},
	}
}

// Layout places four markers in the corners of a window. Marker i sits in
// corner i: top left, top right, bottom right, bottom left. The left pair
// and the right pair can be shifted horizontally to clear screen bezels
// or taskbars.
type Layout struct {
	Width, Height int
	TagSize       int
	LeftOffset    int
	RightOffset   int

	// Origin is the window position on the desktop, added by ScreenPoint.
	Origin Point
}

// DefaultLayout returns the layout for a window of the given size.
func DefaultLayout(width, height int) Layout {
	l := Layout{
		Width:       width,
		Height:      height,
		TagSize:     DefaultTagSize,
		LeftOffset:  DefaultLeftOffset,
		RightOffset: DefaultRightOffset,
	}
	return l.Clamped()
}

// Clamped returns the layout with offsets limited to half the width.
func (l Layout) Clamped() Layout {
	half := l.Width / 2
	l.LeftOffset = clampInt(l.LeftOffset, -half, half)
	l.RightOffset = clampInt(l.RightOffset, -half, half)
	return l
}

// TagPadding is the quiet zone around each marker.
func (l Layout) TagPadding() float64 {
	return float64(l.TagSize) / 8
}

// CornerRect returns the padded rectangle of the marker in corner i.
func (l Layout) CornerRect(i int) Rect {
	padded := float64(l.TagSize) + 2*l.TagPadding()
	left := float64(l.LeftOffset)
	right := float64(l.Width) - padded + float64(l.RightOffset)
	bottom := float64(l.Height) - padded

	switch i {
	case 0:
		return Rect{left, 0, padded, padded}
	case 1:
		return Rect{right, 0, padded, padded}
	case 2:
		return Rect{right, bottom, padded, padded}
	default:
		return Rect{left, bottom, padded, padded}
	}
}

// MarkerVerts returns the window-space vertices of each marker, keyed by
// marker id, clockwise from the top left.
func (l Layout) MarkerVerts() map[int][4]Point {
	verts := make(map[int][4]Point, MarkerCount)
	for i := 0; i < MarkerCount; i++ {
		verts[i] = l.CornerRect(i).Inset(l.TagPadding()).Corners()
	}
	return verts
}

// SurfaceSize is the window size.
func (l Layout) SurfaceSize() Size {
	return Size{Width: float64(l.Width), Height: float64(l.Height)}
}

// ScreenPoint converts normalized surface coordinates (origin bottom left)
// to desktop pixels, keeping a margin of a tenth of the tag size.
func (l Layout) ScreenPoint(nx, ny float64) Point {
	margin := 0.1 * float64(l.TagSize)
	w := float64(l.Width) - 2*margin
	h := float64(l.Height) - 2*margin
	return Point{
		X: l.Origin.X + nx*w + margin,
		Y: l.Origin.Y + (h - ny*h) + margin,
	}
}

func clampInt(v, lo, hi int) int {
	return int(math.Max(float64(lo), math.Min(float64(hi), float64(v))))
}
