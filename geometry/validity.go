package geometry

import (
	"fmt"

	"github.com/paulmach/orb"
)

// ValidityError explains why a polygon is not valid, with the point where
// the problem shows.
type ValidityError struct {
	Reason string
	Point  orb.Point
}

func (e *ValidityError) Error() string {
	return fmt.Sprintf("%s at or near point %g %g", e.Reason, e.Point[0], e.Point[1])
}

// ValidatePolygon checks that every ring has at least three distinct points
// and does not cross itself, that rings do not meet each other, and that holes
// lie inside the exterior without nesting. Rings may be closed or open.
func ValidatePolygon(poly orb.Polygon) error {
	if len(poly) == 0 {
		return &ValidityError{Reason: "Empty polygon"}
	}
	rings := make([][]Segment, len(poly))
	for i, ring := range poly {
		segments := RingSegments(ring)
		if len(distinctPoints(ring)) < 3 || len(segments) < 3 {
			var at orb.Point
			if len(ring) > 0 {
				at = ring[0]
			}
			return &ValidityError{Reason: "Too few points", Point: at}
		}
		if err := checkRingSimple(segments); err != nil {
			return err
		}
		rings[i] = segments
	}

	for i := range rings {
		for j := i + 1; j < len(rings); j++ {
			for _, s := range rings[i] {
				for _, o := range rings[j] {
					if params := s.MeetParams(o); len(params) > 0 {
						return &ValidityError{Reason: "Self-intersection", Point: s.At(params[0])}
					}
				}
			}
		}
	}

	for i, hole := range poly[1:] {
		if LocateInRing(hole[0], poly[0]) != Interior {
			return &ValidityError{Reason: "Hole lies outside shell", Point: hole[0]}
		}
		for j, other := range poly[1:] {
			if i != j && LocateInRing(hole[0], other) == Interior {
				return &ValidityError{Reason: "Holes are nested", Point: hole[0]}
			}
		}
	}
	return nil
}

// Consecutive edges of a ring may only share their common vertex, every other
// pair of edges must be disjoint.
func checkRingSimple(segments []Segment) error {
	n := len(segments)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			s, o := segments[i], segments[j]
			params := s.MeetParams(o)
			if len(params) == 0 {
				continue
			}
			adjacent := j == i+1 || (i == 0 && j == n-1)
			if adjacent && len(params) == 1 && (s.At(params[0]) == o.Start || s.At(params[0]) == o.End) {
				continue
			}
			return &ValidityError{Reason: "Self-intersection", Point: s.At(params[len(params)-1])}
		}
	}
	return nil
}

func distinctPoints(ring orb.Ring) map[orb.Point]struct{} {
	set := make(map[orb.Point]struct{}, len(ring))
	for _, p := range ring {
		set[p] = struct{}{}
	}
	return set
}
