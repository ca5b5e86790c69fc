package mesh

import (
	"sort"

	"github.com/osuushi/altimetry/geometry"
	"github.com/paulmach/orb"
)

// insertVertex returns the vertex at p, creating it and retriangulating when
// it does not exist yet.
func (m *Mesh) insertVertex(p orb.Point) Vertex {
	if v, ok := m.byPoint[p]; ok {
		return v
	}

	switch m.dimension {
	case -1, 0:
		v := m.addVertex(p)
		m.line = append(m.line, v)
		m.sortLine()
		m.dimension++
		return v

	case 1:
		first, last := m.points[m.line[0]], m.points[m.line[len(m.line)-1]]
		if geometry.Orient(first, last, p) != 0 {
			v := m.addVertex(p)
			m.lift(v)
			return v
		}
		v := m.addVertex(p)
		m.line = append(m.line, v)
		m.sortLine()
		for i, w := range m.line {
			if w == v && i > 0 && i+1 < len(m.line) {
				m.splitConstraints(m.line[i-1], m.line[i+1], v)
			}
		}
		return v
	}

	loc := m.locate(p)
	var v Vertex
	switch loc.Type {
	case OnVertex:
		return loc.Vertex
	case InFace:
		v = m.addVertex(p)
		m.splitFace(loc.Face, v)
	case OnEdge:
		v = m.addVertex(p)
		pair := m.verticesPair(loc.Edge)
		m.splitEdge(pair[0], pair[1], v)
	default:
		v = m.addVertex(p)
		m.insertOutsideHull(v)
	}
	m.legalizeAround(v)
	return v
}

func lessPoint(a, b orb.Point) bool {
	if a[0] != b[0] {
		return a[0] < b[0]
	}
	return a[1] < b[1]
}

func (m *Mesh) sortLine() {
	sort.Slice(m.line, func(i, j int) bool {
		return lessPoint(m.points[m.line[i]], m.points[m.line[j]])
	})
}

// lift turns the collinear vertices into a fan of triangles around v, which
// is off their line.
func (m *Mesh) lift(v Vertex) {
	first, last := m.points[m.line[0]], m.points[m.line[len(m.line)-1]]
	left := geometry.Orient(first, last, m.points[v]) > 0
	var created []Face
	for i := 0; i+1 < len(m.line); i++ {
		a, b := m.line[i], m.line[i+1]
		if !left {
			a, b = b, a
		}
		created = append(created, m.newFace(a, b, v))
	}
	m.line = nil
	m.dimension = 2
	m.closeHull(created)
}

// closeHull adds an infinite face behind every edge of the given finite faces
// which has nothing on its other side.
func (m *Mesh) closeHull(faces []Face) {
	for _, f := range faces {
		r := m.faces[f]
		for i, a := range r.v {
			b := r.v[(i+1)%3]
			if _, ok := m.halfEdges[VertexPair{b, a}]; !ok {
				m.newFace(b, a, InfiniteVertex)
			}
		}
	}
}

func (m *Mesh) splitFace(f Face, v Vertex) {
	a, b, c := m.faces[f].v[0], m.faces[f].v[1], m.faces[f].v[2]
	m.killFace(f)
	m.newFace(a, b, v)
	m.newFace(b, c, v)
	m.newFace(c, a, v)
}

// splitEdge puts v in the middle of the edge a-b, splitting the faces on both
// sides and the constraints going through the edge.
func (m *Mesh) splitEdge(a, b, v Vertex) {
	f, c, ok := m.apex(a, b)
	if !ok {
		fatalf("No edge %v→%v to split", a, b)
	}
	g, d, ok := m.apex(b, a)
	if !ok {
		fatalf("No edge %v→%v to split", b, a)
	}
	m.killFace(f)
	m.killFace(g)
	m.newFace(a, v, c)
	m.newFace(v, b, c)
	m.newFace(b, v, d)
	m.newFace(v, a, d)
	m.splitConstraints(a, b, v)
}

// insertOutsideHull joins v to every hull edge it can see.
func (m *Mesh) insertOutsideHull(v Vertex) {
	p := m.points[v]
	var visible []VertexPair
	for f := range m.faces {
		if !m.faces[f].alive || !m.IsInfinite(Face(f)) {
			continue
		}
		r := m.faces[f]
		k := m.indexIn(Face(f), InfiniteVertex)
		a, b := r.v[(k+1)%3], r.v[(k+2)%3]
		if geometry.Orient(m.points[a], m.points[b], p) > 0 {
			visible = append(visible, VertexPair{a, b})
		}
	}
	if len(visible) == 0 {
		fatalf("Point %v is outside of the hull but sees none of it", p)
	}

	var created []Face
	for _, edge := range visible {
		m.killFace(m.halfEdges[edge])
	}
	for _, edge := range visible {
		created = append(created, m.newFace(edge[0], edge[1], v))
	}
	m.closeHull(created)
}

// flip replaces the edge a-b, the diagonal of the quad formed by its two
// faces, with the other diagonal. It returns the new edge, directed so that
// a is on its left.
func (m *Mesh) flip(a, b Vertex) VertexPair {
	f, c, _ := m.apex(a, b)
	g, d, _ := m.apex(b, a)
	if m.IsConstrained(a, b) {
		fatalf("Flipping constrained edge %v-%v", a, b)
	}
	m.killFace(f)
	m.killFace(g)
	m.newFace(a, d, c)
	m.newFace(d, b, c)
	return VertexPair{d, c}
}

// flippable reports whether the quad around a-b is strictly convex, with
// every vertex finite.
func (m *Mesh) flippable(a, b Vertex) bool {
	_, c, ok := m.apex(a, b)
	if !ok {
		return false
	}
	_, d, ok := m.apex(b, a)
	if !ok {
		return false
	}
	for _, v := range []Vertex{a, b, c, d} {
		if v == InfiniteVertex {
			return false
		}
	}
	pa, pb, pc, pd := m.points[a], m.points[b], m.points[c], m.points[d]
	return geometry.Orient(pa, pd, pc) > 0 && geometry.Orient(pd, pb, pc) > 0
}

func (m *Mesh) legalizeAround(v Vertex) {
	var edges []VertexPair
	for _, f := range m.facesAround(v) {
		r := m.faces[f]
		k := m.indexIn(f, v)
		edges = append(edges, VertexPair{r.v[(k+1)%3], r.v[(k+2)%3]})
	}
	m.legalize(edges)
}

// legalize flips edges until none of the given ones, nor any edge created by
// the flips, breaks the Delaunay criterion. Constrained edges are left alone.
func (m *Mesh) legalize(edges []VertexPair) {
	stack := append([]VertexPair(nil), edges...)
	for steps := 0; len(stack) > 0; steps++ {
		if steps > 1<<20 {
			fatalf("Legalization does not terminate")
		}
		e := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		a, b := e[0], e[1]
		if a == InfiniteVertex || b == InfiniteVertex || m.IsConstrained(a, b) {
			continue
		}
		_, c, ok := m.apex(a, b)
		if !ok {
			continue
		}
		_, d, ok := m.apex(b, a)
		if !ok || c == InfiniteVertex || d == InfiniteVertex {
			continue
		}
		if geometry.InCircle(m.points[a], m.points[b], m.points[c], m.points[d]) <= 0 {
			continue
		}
		if !m.flippable(a, b) {
			continue
		}
		m.flip(a, b)
		stack = append(stack, VertexPair{a, d}, VertexPair{d, b}, VertexPair{b, c}, VertexPair{c, a})
	}
}
