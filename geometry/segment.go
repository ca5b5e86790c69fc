package geometry

import (
	"sort"

	"github.com/golang/geo/r2"
	"github.com/paulmach/orb"
)

// Segment is a directed line segment.
type Segment struct {
	Start orb.Point
	End   orb.Point
}

func vec(p orb.Point) r2.Point {
	return r2.Point{X: p[0], Y: p[1]}
}

func point(v r2.Point) orb.Point {
	return orb.Point{v.X, v.Y}
}

// Degenerate segments have the same start and end.
func (s Segment) Degenerate() bool {
	return s.Start == s.End
}

func (s Segment) Bound() orb.Bound {
	return orb.Bound{Min: s.Start, Max: s.Start}.Extend(s.End)
}

// At returns the point at parameter t along the segment. The end points are
// returned exactly for t = 0 and t = 1.
func (s Segment) At(t float64) orb.Point {
	switch t {
	case 0:
		return s.Start
	case 1:
		return s.End
	}
	a, b := vec(s.Start), vec(s.End)
	return point(a.Add(b.Sub(a).Mul(t)))
}

// Param returns the parameter of the orthogonal projection of p on the
// supporting line of the segment.
func (s Segment) Param(p orb.Point) float64 {
	a, b := vec(s.Start), vec(s.End)
	d := b.Sub(a)
	n := d.Dot(d)
	if n == 0 {
		return 0
	}
	return vec(p).Sub(a).Dot(d) / n
}

// ContainsPoint reports whether p lies on the closed segment.
func (s Segment) ContainsPoint(p orb.Point) bool {
	if Orient(s.Start, s.End, p) != 0 {
		return false
	}
	return s.Bound().Contains(p)
}

// Collinear reports whether both segments lie on the same line.
func (s Segment) Collinear(o Segment) bool {
	return Orient(o.Start, o.End, s.Start) == 0 && Orient(o.Start, o.End, s.End) == 0
}

// Crosses reports whether the two segments intersect at a single point
// interior to both.
func (s Segment) Crosses(o Segment) bool {
	o1 := Orient(s.Start, s.End, o.Start)
	o2 := Orient(s.Start, s.End, o.End)
	o3 := Orient(o.Start, o.End, s.Start)
	o4 := Orient(o.Start, o.End, s.End)
	return o1*o2 < 0 && o3*o4 < 0
}

// MeetParams returns, sorted, the parameters along s of the points where s
// meets o. Two parameters are returned when the segments overlap along a
// collinear stretch (its two ends), one when they meet at a point and none
// when they are disjoint.
func (s Segment) MeetParams(o Segment) []float64 {
	if s.Degenerate() {
		if o.ContainsPoint(s.Start) {
			return []float64{0}
		}
		return nil
	}

	o1 := Orient(s.Start, s.End, o.Start)
	o2 := Orient(s.Start, s.End, o.End)
	if o1 == 0 && o2 == 0 {
		return s.overlapParams(o)
	}
	if o1*o2 > 0 {
		return nil
	}
	o3 := Orient(o.Start, o.End, s.Start)
	o4 := Orient(o.Start, o.End, s.End)
	if o3*o4 > 0 {
		return nil
	}

	switch {
	case o3 == 0:
		return []float64{0}
	case o4 == 0:
		return []float64{1}
	case o1 == 0:
		return []float64{clamp01(s.Param(o.Start))}
	case o2 == 0:
		return []float64{clamp01(s.Param(o.End))}
	}

	// Proper crossing
	a, d := vec(s.Start), vec(s.End).Sub(vec(s.Start))
	c, e := vec(o.Start), vec(o.End).Sub(vec(o.Start))
	t := c.Sub(a).Cross(e) / d.Cross(e)
	if t <= 0 || t >= 1 {
		// The orientation tests are exact, the division is not. Keep the
		// crossing strictly inside.
		t = clampOpen(t)
	}
	return []float64{t}
}

func (s Segment) overlapParams(o Segment) []float64 {
	lo, hi := s.collinearInterval(o)
	if lo > hi {
		return nil
	}
	if lo == hi {
		return []float64{lo}
	}
	return []float64{lo, hi}
}

// collinearInterval gives the stretch of s covered by the collinear segment
// o, as parameters along s. The interval is empty (lo > hi) when they do not
// overlap.
func (s Segment) collinearInterval(o Segment) (lo, hi float64) {
	t0 := s.exactParam(o.Start)
	t1 := s.exactParam(o.End)
	if t0 > t1 {
		t0, t1 = t1, t0
	}
	if t0 < 0 {
		t0 = 0
	}
	if t1 > 1 {
		t1 = 1
	}
	return t0, t1
}

// exactParam snaps the parameter of the segment's own end points.
func (s Segment) exactParam(p orb.Point) float64 {
	switch p {
	case s.Start:
		return 0
	case s.End:
		return 1
	}
	return s.Param(p)
}

// Intersection returns the crossing point of two segments that cross.
func (s Segment) Intersection(o Segment) (orb.Point, bool) {
	params := s.MeetParams(o)
	if len(params) != 1 {
		return orb.Point{}, false
	}
	return s.At(params[0]), true
}

func clamp01(t float64) float64 {
	switch {
	case t < 0:
		return 0
	case t > 1:
		return 1
	}
	return t
}

func clampOpen(t float64) float64 {
	const tiny = 1e-12
	switch {
	case t <= 0:
		return tiny
	case t >= 1:
		return 1 - tiny
	}
	return t
}

// uniqueSorted sorts the parameters and drops duplicates in place.
func uniqueSorted(params []float64) []float64 {
	sort.Float64s(params)
	out := params[:0]
	for i, t := range params {
		if i > 0 && t == out[len(out)-1] {
			continue
		}
		out = append(out, t)
	}
	return out
}
