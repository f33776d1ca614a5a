package surface

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/teslashibe/go-gazepointer/pkg/gaze"
)

// ErrNoFrame is returned by mappers that need scene video when a pair
// arrives without a frame.
var ErrNoFrame = errors.New("surface: matched item has no frame")

// Surface is a registered planar region.
type Surface struct {
	UID         string
	MarkerVerts map[int][4]Point
	Size        Size
}

// Result is the outcome of mapping one matched pair.
type Result struct {
	// Markers visible in the scene frame.
	Markers []Marker

	// Gaze holds surface gaze points keyed by surface uid. A surface
	// that could not be located has no entry.
	Gaze map[string][]gaze.SurfaceGaze
}

// Mapper projects camera-space gaze onto registered surfaces.
type Mapper interface {
	AddSurface(verts map[int][4]Point, size Size) Surface
	ClearSurfaces()
	Process(m *gaze.Matched) (*Result, error)
}

// registry is the surface bookkeeping shared by mappers.
type registry struct {
	mu       sync.RWMutex
	surfaces []Surface
}

func (r *registry) AddSurface(verts map[int][4]Point, size Size) Surface {
	s := Surface{
		UID:         uuid.New().String(),
		MarkerVerts: verts,
		Size:        size,
	}
	r.mu.Lock()
	r.surfaces = append(r.surfaces, s)
	r.mu.Unlock()
	return s
}

func (r *registry) ClearSurfaces() {
	r.mu.Lock()
	r.surfaces = nil
	r.mu.Unlock()
}

func (r *registry) snapshot() []Surface {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Surface, len(r.surfaces))
	copy(out, r.surfaces)
	return out
}

// PassthroughMapper treats normalized camera gaze as surface gaze on every
// registered surface. It is used with gaze-only sources, where the device
// is assumed to be calibrated against the screen already. Camera y grows
// downward, surface y grows upward.
type PassthroughMapper struct {
	registry
}

// NewPassthroughMapper creates a mapper with no surfaces.
func NewPassthroughMapper() *PassthroughMapper {
	return &PassthroughMapper{}
}

// Process maps the gaze onto each surface.
func (p *PassthroughMapper) Process(m *gaze.Matched) (*Result, error) {
	res := &Result{Gaze: make(map[string][]gaze.SurfaceGaze)}
	x, y := m.Gaze.X, 1-m.Gaze.Y
	for _, s := range p.snapshot() {
		res.Gaze[s.UID] = []gaze.SurfaceGaze{{
			X:                    x,
			Y:                    y,
			OnSurf:               x >= 0 && x <= 1 && y >= 0 && y <= 1,
			Confidence:           1,
			TimestampUnixSeconds: m.Gaze.TimestampUnixSeconds,
		}}
	}
	return res, nil
}
