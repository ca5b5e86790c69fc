package geometry

import "github.com/paulmach/orb"

// Location classifies a point against a closed region.
type Location int

const (
	Exterior Location = iota
	Boundary
	Interior
)

func (l Location) String() string {
	switch l {
	case Interior:
		return "interior"
	case Boundary:
		return "boundary"
	}
	return "exterior"
}

// LocateInRing classifies p against the region enclosed by the ring, whatever
// its winding. The ring may be given closed or open.
//
// This is a winding number test where every decision is an exact orientation
// test, so a point exactly on an edge is always reported as on the boundary.
func LocateInRing(p orb.Point, ring orb.Ring) Location {
	n := len(ring)
	if n == 0 {
		return Exterior
	}
	winding := 0
	for i, a := range ring {
		b := ring[CircularIndex(i+1, n)]
		if a == b {
			continue
		}
		if (Segment{a, b}).ContainsPoint(p) {
			return Boundary
		}
		if a[1] <= p[1] {
			if b[1] > p[1] && Orient(a, b, p) > 0 {
				winding++
			}
		} else if b[1] <= p[1] && Orient(a, b, p) < 0 {
			winding--
		}
	}
	if winding != 0 {
		return Interior
	}
	return Exterior
}

// LocateInPolygon classifies p against a polygon with holes.
func LocateInPolygon(p orb.Point, poly orb.Polygon) Location {
	if len(poly) == 0 {
		return Exterior
	}
	loc := LocateInRing(p, poly[0])
	if loc != Interior {
		return loc
	}
	for _, hole := range poly[1:] {
		switch LocateInRing(p, hole) {
		case Boundary:
			return Boundary
		case Interior:
			return Exterior
		}
	}
	return Interior
}
