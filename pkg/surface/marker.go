package surface

import (
	"fmt"
	"strconv"
	"strings"
)

// Marker is a detected fiducial marker with its corners in scene camera
// pixels, clockwise from the top left.
type Marker struct {
	UID     string
	Corners [4]Point
}

// ID returns the numeric marker id, or -1 when the uid has none.
func (m Marker) ID() int {
	id, err := ParseMarkerID(m.UID)
	if err != nil {
		return -1
	}
	return id
}

// ParseMarkerID extracts the integer after the last ':' of a marker uid,
// e.g. "apriltag:tag36h11:3" -> 3.
func ParseMarkerID(uid string) (int, error) {
	s := uid
	if i := strings.LastIndexByte(uid, ':'); i >= 0 {
		s = uid[i+1:]
	}
	id, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("marker uid %q: %w", uid, err)
	}
	return id, nil
}

// MarkerIDs returns the numeric ids of markers, skipping malformed uids.
func MarkerIDs(markers []Marker) []int {
	ids := make([]int, 0, len(markers))
	for _, m := range markers {
		if id := m.ID(); id >= 0 {
			ids = append(ids, id)
		}
	}
	return ids
}
