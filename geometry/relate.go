package geometry

import "github.com/paulmach/orb"

// piece is a stretch of a segment that lies entirely in one of the interior,
// boundary or exterior of some polygon.
type piece struct {
	Segment
	loc Location
}

// RingSegments returns the non degenerate edges of a ring.
func RingSegments(ring orb.Ring) []Segment {
	n := len(ring)
	segments := make([]Segment, 0, n)
	for i, a := range ring {
		b := ring[CircularIndex(i+1, n)]
		if a != b {
			segments = append(segments, Segment{a, b})
		}
	}
	return segments
}

// PolygonSegments returns the edges of every ring of the polygon.
func PolygonSegments(poly orb.Polygon) []Segment {
	var segments []Segment
	for _, ring := range poly {
		segments = append(segments, RingSegments(ring)...)
	}
	return segments
}

// LineSegments returns the non degenerate segments of a line string.
func LineSegments(ls orb.LineString) []Segment {
	segments := make([]Segment, 0, len(ls))
	for i := 0; i+1 < len(ls); i++ {
		if ls[i] != ls[i+1] {
			segments = append(segments, Segment{ls[i], ls[i+1]})
		}
	}
	return segments
}

// splitAgainst cuts every segment at the points where it meets the boundary
// of poly and classifies each resulting piece. touched reports whether any
// segment met the boundary at all.
func splitAgainst(segments []Segment, poly orb.Polygon) (pieces []piece, touched bool) {
	boundary := PolygonSegments(poly)
	bound := poly.Bound()
	for _, s := range segments {
		params := []float64{0, 1}
		if s.Bound().Intersects(bound) {
			for _, b := range boundary {
				meets := s.MeetParams(b)
				if len(meets) > 0 {
					touched = true
					params = append(params, meets...)
				}
			}
		}
		params = uniqueSorted(params)
		for i := 0; i+1 < len(params); i++ {
			sub := Segment{s.At(params[i]), s.At(params[i+1])}
			if sub.Degenerate() {
				continue
			}
			pieces = append(pieces, piece{sub, classifyPiece(s, params[i], params[i+1], sub, boundary, poly)})
		}
	}
	return pieces, touched
}

// A piece cut from s between parameters t0 and t1 holds no boundary point in
// its interior, so it is on the boundary exactly when a collinear boundary
// edge covers it, and otherwise its midpoint decides.
func classifyPiece(s Segment, t0, t1 float64, sub Segment, boundary []Segment, poly orb.Polygon) Location {
	for _, b := range boundary {
		if !s.Collinear(b) {
			continue
		}
		lo, hi := s.collinearInterval(b)
		if lo <= t0 && t1 <= hi {
			return Boundary
		}
	}
	return LocateInPolygon(sub.At(0.5), poly)
}

// LineRelation summarizes how a line meets a polygon.
type LineRelation struct {
	// Parts of the line lie in the interior, exterior or along the boundary
	// of the polygon.
	Interior, Exterior, Boundary bool
	// Touches is set when the line meets the polygon boundary anywhere,
	// including at isolated points.
	Touches bool
}

// Crosses is true when the line runs both inside and outside the polygon.
func (r LineRelation) Crosses() bool {
	return r.Interior && r.Exterior
}

func (r LineRelation) Disjoint() bool {
	return !r.Interior && !r.Boundary && !r.Touches
}

// ContainedBy is true when the polygon contains the line: nothing outside and
// some part strictly inside.
func (r LineRelation) ContainedBy() bool {
	return !r.Exterior && r.Interior
}

// RelateLine classifies a line string (or several) against a polygon.
func RelateLine(poly orb.Polygon, lines ...orb.LineString) LineRelation {
	var rel LineRelation
	for _, ls := range lines {
		segments := LineSegments(ls)
		if len(segments) == 0 && len(ls) > 0 {
			// A single point
			switch LocateInPolygon(ls[0], poly) {
			case Interior:
				rel.Interior = true
			case Boundary:
				rel.Touches = true
			default:
				rel.Exterior = true
			}
			continue
		}
		pieces, touched := splitAgainst(segments, poly)
		rel.Touches = rel.Touches || touched
		for _, p := range pieces {
			switch p.loc {
			case Interior:
				rel.Interior = true
			case Boundary:
				rel.Boundary = true
			default:
				rel.Exterior = true
			}
		}
	}
	return rel
}

// PolygonRelation summarizes how two polygons A and B meet.
type PolygonRelation struct {
	InteriorsIntersect bool
	BoundariesMeet     bool
	// Within is set when A lies inside the closure of B, Contains when B lies
	// inside the closure of A. Both require the interiors to intersect.
	Within   bool
	Contains bool
}

func (r PolygonRelation) Disjoint() bool {
	return !r.InteriorsIntersect && !r.BoundariesMeet
}

// Overlaps is true when the interiors intersect and neither polygon contains
// the other.
func (r PolygonRelation) Overlaps() bool {
	return r.InteriorsIntersect && !r.Within && !r.Contains
}

type pieceSummary struct {
	in, out, on bool
}

func summarize(pieces []piece) pieceSummary {
	var s pieceSummary
	for _, p := range pieces {
		switch p.loc {
		case Interior:
			s.in = true
		case Exterior:
			s.out = true
		default:
			s.on = true
		}
	}
	return s
}

// RelatePolygons computes the relation of a to b.
//
// Both boundaries are cut against each other. If neither boundary enters
// the other polygon's interior, the interiors can only intersect when one
// boundary runs entirely along the other, which is settled with a point
// strictly inside that polygon.
func RelatePolygons(a, b orb.Polygon) PolygonRelation {
	if !a.Bound().Intersects(b.Bound()) {
		return PolygonRelation{}
	}
	aPieces, aTouched := splitAgainst(PolygonSegments(a), b)
	bPieces, bTouched := splitAgainst(PolygonSegments(b), a)
	as, bs := summarize(aPieces), summarize(bPieces)

	rel := PolygonRelation{BoundariesMeet: aTouched || bTouched}
	switch {
	case as.in || bs.in:
		rel.InteriorsIntersect = true
	case !as.out:
		rel.InteriorsIntersect = interiorInside(a, b)
	case !bs.out:
		rel.InteriorsIntersect = interiorInside(b, a)
	}
	if !rel.InteriorsIntersect {
		return rel
	}
	rel.Within = !as.out && !bs.in
	rel.Contains = !bs.out && !as.in
	return rel
}

func interiorInside(a, b orb.Polygon) bool {
	p, ok := InteriorPoint(a)
	if !ok {
		return false
	}
	return LocateInPolygon(p, b) == Interior
}

// InteriorPoint returns a point strictly inside the polygon. It fails only
// for degenerate polygons without area.
//
// The lowest-leftmost vertex v of the exterior is convex. If no other vertex
// lies in the triangle it forms with its neighbours, the triangle centroid is
// inside. Otherwise the midpoint between v and the vertex inside the triangle
// farthest from the base is a diagonal midpoint, hence inside.
func InteriorPoint(poly orb.Polygon) (orb.Point, bool) {
	if len(poly) == 0 {
		return orb.Point{}, false
	}
	ring := openRing(poly[0])
	n := len(ring)
	if n < 3 {
		return orb.Point{}, false
	}
	vi := 0
	for i, p := range ring {
		if p[1] < ring[vi][1] || (p[1] == ring[vi][1] && p[0] < ring[vi][0]) {
			vi = i
		}
	}
	v := ring[vi]
	prev := ring[CircularIndex(vi-1, n)]
	next := ring[CircularIndex(vi+1, n)]
	turn := Orient(prev, v, next)
	if turn == 0 {
		return orb.Point{}, false
	}
	// Make (a, v, b) counterclockwise
	a, b := prev, next
	if turn < 0 {
		a, b = next, prev
	}

	var best orb.Point
	bestDistance := -1.0
	base := Segment{a, b}
	for _, ring := range poly {
		for _, q := range ring {
			if q == a || q == v || q == b {
				continue
			}
			if Orient(a, v, q) <= 0 || Orient(v, b, q) <= 0 || Orient(b, a, q) <= 0 {
				continue
			}
			d := distanceToLine(base, q)
			if d > bestDistance {
				best, bestDistance = q, d
			}
		}
	}
	if bestDistance < 0 {
		return orb.Point{(a[0] + v[0] + b[0]) / 3, (a[1] + v[1] + b[1]) / 3}, true
	}
	return orb.Point{(v[0] + best[0]) / 2, (v[1] + best[1]) / 2}, true
}

func distanceToLine(s Segment, p orb.Point) float64 {
	d := vec(s.End).Sub(vec(s.Start))
	n := d.Norm()
	if n == 0 {
		return vec(p).Sub(vec(s.Start)).Norm()
	}
	cross := d.Cross(vec(p).Sub(vec(s.Start)))
	if cross < 0 {
		cross = -cross
	}
	return cross / n
}

// openRing drops the closing point of a closed ring.
func openRing(r orb.Ring) orb.Ring {
	if len(r) > 1 && r[0] == r[len(r)-1] {
		return r[:len(r)-1]
	}
	return r
}
