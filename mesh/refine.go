package mesh

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/paulmach/orb"
)

type RefineOptions struct {
	// Points inside regions which must not be refined. A region extends up to
	// the constrained edges around the point.
	HoleSeeds []orb.Point
	// Upper bound on the length of the edges. Zero disables it.
	SizeCriterion float64
	// Upper bound on the ratio of the circumradius of a face to its shortest
	// edge. Values below √2 may not terminate, zero disables it.
	ShapeCriterion float64
	// Maximum number of inserted points. Zero means DefaultRefineSteps.
	MaxSteps int
}

const DefaultRefineSteps = 10000

// RefineMesh inserts Steiner points until every face outside the holes meets
// the criteria, or until MaxSteps points were inserted. It returns the number
// of inserted points. All face handles obtained before the call are stale
// afterwards.
func (m *Mesh) RefineMesh(opts RefineOptions) (inserted int, err error) {
	defer recoverInto(&err)
	if m.dimension < 2 {
		return 0, degenerate("Cannot refine")
	}
	maxSteps := opts.MaxSteps
	if maxSteps == 0 {
		maxSteps = DefaultRefineSteps
	}

	// Faces whose refinement point could not be used are skipped until the
	// mesh changes around them.
	skipped := make(map[[3]Vertex]bool)
	for inserted < maxSteps {
		holes := m.holeFaces(opts.HoleSeeds)
		f, ok := m.badFace(opts, holes, skipped)
		if !ok {
			return inserted, nil
		}
		if m.refineFace(f, holes) {
			inserted++
		} else {
			skipped[m.faces[f].v] = true
		}
	}
	return inserted, nil
}

func (m *Mesh) holeFaces(seeds []orb.Point) map[Face]bool {
	flooder := NewConstraintFaceFlooder(m)
	for _, p := range seeds {
		loc := m.locate(p)
		if loc.Type != Outside {
			flooder.FloodFrom(loc.Face)
		}
	}
	return flooder.Visited
}

func (m *Mesh) badFace(opts RefineOptions, holes map[Face]bool, skipped map[[3]Vertex]bool) (Face, bool) {
	for _, f := range m.FiniteFaces() {
		if holes[f] || skipped[m.faces[f].v] {
			continue
		}
		shortest, longest := m.edgeLengths(f)
		if opts.SizeCriterion > 0 && longest > opts.SizeCriterion {
			return f, true
		}
		if opts.ShapeCriterion > 0 {
			_, radius := m.circumcircle(f)
			if radius/shortest > opts.ShapeCriterion {
				return f, true
			}
		}
	}
	return NoFace, false
}

func (m *Mesh) edgeLengths(f Face) (shortest, longest float64) {
	r := m.faces[f]
	shortest = math.Inf(1)
	for i, a := range r.v {
		b := r.v[(i+1)%3]
		l := vec(m.points[b]).Sub(vec(m.points[a])).Norm()
		shortest = math.Min(shortest, l)
		longest = math.Max(longest, l)
	}
	return
}

func (m *Mesh) circumcircle(f Face) (r2.Point, float64) {
	r := m.faces[f]
	a, b, c := vec(m.points[r.v[0]]), vec(m.points[r.v[1]]), vec(m.points[r.v[2]])
	ab, ac := b.Sub(a), c.Sub(a)
	d := 2 * ab.Cross(ac)
	ux := (ac.Y*ab.Norm()*ab.Norm() - ab.Y*ac.Norm()*ac.Norm()) / d
	uy := (ab.X*ac.Norm()*ac.Norm() - ac.X*ab.Norm()*ab.Norm()) / d
	offset := r2.Point{X: ux, Y: uy}
	return a.Add(offset), offset.Norm()
}

// refineFace inserts the circumcenter of the face. When that would fall
// outside of the mesh, in a hole, or too close to a constrained edge, the
// longest edge of the face (or the encroached constrained edge) is split in
// its middle instead.
func (m *Mesh) refineFace(f Face, holes map[Face]bool) bool {
	center, _ := m.circumcircle(f)
	p := orb.Point{center.X, center.Y}
	if math.IsNaN(p[0]) || math.IsNaN(p[1]) {
		return false
	}
	if a, b, ok := m.encroachedConstraint(p); ok {
		return m.splitAtMiddle(a, b)
	}

	loc := m.locate(p)
	switch loc.Type {
	case InFace, OnEdge:
		if !holes[loc.Face] {
			if _, exists := m.byPoint[p]; exists {
				return false
			}
			m.insertVertex(p)
			return true
		}
	case OnVertex:
		return false
	}

	r := m.faces[f]
	var longest VertexPair
	var length float64
	for i, a := range r.v {
		b := r.v[(i+1)%3]
		if l := vec(m.points[b]).Sub(vec(m.points[a])).Norm(); l > length {
			longest, length = VertexPair{a, b}, l
		}
	}
	return m.splitAtMiddle(longest[0], longest[1])
}

// encroachedConstraint finds a constrained edge whose diametral circle
// contains p.
func (m *Mesh) encroachedConstraint(p orb.Point) (Vertex, Vertex, bool) {
	q := vec(p)
	for _, pair := range m.ConstrainedEdges() {
		a, b := vec(m.points[pair[0]]), vec(m.points[pair[1]])
		middle := a.Add(b).Mul(0.5)
		if q.Sub(middle).Norm() < b.Sub(a).Norm()/2 {
			return pair[0], pair[1], true
		}
	}
	return NoVertex, NoVertex, false
}

func (m *Mesh) splitAtMiddle(a, b Vertex) bool {
	pa, pb := m.points[a], m.points[b]
	middle := orb.Point{(pa[0] + pb[0]) / 2, (pa[1] + pb[1]) / 2}
	if _, exists := m.byPoint[middle]; exists || middle == pa || middle == pb {
		return false
	}
	v := m.addVertex(middle)
	m.splitEdge(a, b, v)
	m.legalizeAround(v)
	return true
}
