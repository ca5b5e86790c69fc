package geometry

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
)

// CloseRing returns a copy of the ring whose last point repeats the first.
func CloseRing(points []orb.Point) orb.Ring {
	ring := make(orb.Ring, len(points), len(points)+1)
	copy(ring, points)
	if len(ring) > 0 && ring[0] != ring[len(ring)-1] {
		ring = append(ring, ring[0])
	}
	return ring
}

// NormalizePolygon returns a copy of the polygon with closed rings, a
// counterclockwise exterior and clockwise holes.
func NormalizePolygon(poly orb.Polygon) orb.Polygon {
	result := make(orb.Polygon, len(poly))
	for i, ring := range poly {
		r := CloseRing(ring)
		want := orb.CCW
		if i > 0 {
			want = orb.CW
		}
		if len(r) >= 4 && r.Orientation() == -want {
			r.Reverse()
		}
		result[i] = r
	}
	return result
}

// IntersectionOutline approximates the outline of the region shared by two
// overlapping polygons. It gathers the pieces of each boundary lying inside
// or along the other polygon, rounds their end points to the given number of
// decimals, and orders them around their centroid. It is meant for error
// messages, not for further computation.
func IntersectionOutline(a, b orb.Polygon, decimals int) []orb.Point {
	aPieces, _ := splitAgainst(PolygonSegments(a), b)
	bPieces, _ := splitAgainst(PolygonSegments(b), a)

	factor := int(math.Pow10(decimals))
	seen := make(map[orb.Point]struct{})
	var points []orb.Point
	for _, p := range append(aPieces, bPieces...) {
		if p.loc == Exterior {
			continue
		}
		for _, q := range []orb.Point{p.Start, p.End} {
			rounded := orb.Round(q, factor).(orb.Point)
			if _, ok := seen[rounded]; ok {
				continue
			}
			seen[rounded] = struct{}{}
			points = append(points, rounded)
		}
	}
	if len(points) == 0 {
		return nil
	}

	var cx, cy float64
	for _, p := range points {
		cx += p[0]
		cy += p[1]
	}
	cx /= float64(len(points))
	cy /= float64(len(points))
	sort.SliceStable(points, func(i, j int) bool {
		ai := math.Atan2(points[i][1]-cy, points[i][0]-cx)
		aj := math.Atan2(points[j][1]-cy, points[j][0]-cx)
		return ai < aj
	})
	return points
}
