package surface

import (
	"fmt"

	"github.com/teslashibe/go-gazepointer/pkg/gaze"
	"gocv.io/x/gocv"
)

// MarkerDetector finds fiducial markers in a scene frame.
type MarkerDetector interface {
	Detect(frame *gaze.Frame) ([]Marker, error)
}

// HomographyMapper locates each surface in the scene frame from the
// visible markers and projects gaze through the camera-to-surface
// homography. One visible marker (four corners) is enough to locate a
// surface; more markers give a least-squares fit over all corners.
type HomographyMapper struct {
	registry
	detector MarkerDetector
}

// NewHomographyMapper creates a mapper using detector for marker corners.
func NewHomographyMapper(detector MarkerDetector) *HomographyMapper {
	return &HomographyMapper{detector: detector}
}

// Process detects markers and maps the gaze onto every located surface.
func (h *HomographyMapper) Process(m *gaze.Matched) (*Result, error) {
	if m.Frame == nil {
		return nil, ErrNoFrame
	}

	markers, err := h.detector.Detect(m.Frame)
	if err != nil {
		return nil, fmt.Errorf("detect markers: %w", err)
	}

	res := &Result{
		Markers: markers,
		Gaze:    make(map[string][]gaze.SurfaceGaze),
	}

	camX := m.Gaze.X * float64(m.Frame.Width)
	camY := m.Gaze.Y * float64(m.Frame.Height)

	for _, s := range h.snapshot() {
		var src, dst []Point
		visible := 0
		for _, mk := range markers {
			verts, ok := s.MarkerVerts[mk.ID()]
			if !ok {
				continue
			}
			visible++
			src = append(src, mk.Corners[:]...)
			dst = append(dst, verts[:]...)
		}
		if visible == 0 {
			continue
		}

		hm, ok := findHomography(src, dst)
		if !ok {
			continue
		}

		sx, sy, ok := hm.apply(camX, camY)
		if !ok || s.Size.Width <= 0 || s.Size.Height <= 0 {
			continue
		}
		x := sx / s.Size.Width
		y := 1 - sy/s.Size.Height

		res.Gaze[s.UID] = []gaze.SurfaceGaze{{
			X:                    x,
			Y:                    y,
			OnSurf:               x >= 0 && x <= 1 && y >= 0 && y <= 1,
			Confidence:           float64(visible) / float64(len(s.MarkerVerts)),
			TimestampUnixSeconds: m.Gaze.TimestampUnixSeconds,
		}}
	}

	return res, nil
}

// homography is a row-major 3x3 projective transform.
type homography [9]float64

func (hm homography) apply(x, y float64) (float64, float64, bool) {
	w := hm[6]*x + hm[7]*y + hm[8]
	if w == 0 {
		return 0, 0, false
	}
	return (hm[0]*x + hm[1]*y + hm[2]) / w, (hm[3]*x + hm[4]*y + hm[5]) / w, true
}

// findHomography fits the transform taking src points to dst points.
func findHomography(src, dst []Point) (homography, bool) {
	if len(src) < 4 || len(src) != len(dst) {
		return homography{}, false
	}

	srcMat := pointsMat(src)
	defer srcMat.Close()
	dstMat := pointsMat(dst)
	defer dstMat.Close()
	mask := gocv.NewMat()
	defer mask.Close()

	hMat := gocv.FindHomography(srcMat, &dstMat, gocv.HomographyMethodAllPoints, 3, &mask, 2000, 0.995)
	defer hMat.Close()
	if hMat.Empty() || hMat.Rows() != 3 || hMat.Cols() != 3 {
		return homography{}, false
	}

	var hm homography
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			hm[r*3+c] = hMat.GetDoubleAt(r, c)
		}
	}
	return hm, true
}

func pointsMat(pts []Point) gocv.Mat {
	m := gocv.NewMatWithSize(len(pts), 2, gocv.MatTypeCV32F)
	for i, p := range pts {
		m.SetFloatAt(i, 0, float32(p.X))
		m.SetFloatAt(i, 1, float32(p.Y))
	}
	return m
}
