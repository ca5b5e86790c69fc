package mesh

import (
	"github.com/golang/geo/r2"
	"github.com/osuushi/altimetry/geometry"
)

// An input constraint is kept as the chain of vertices it goes through. The
// chain grows when a later constraint crosses it, or when refinement splits
// one of its edges. Every elementary edge of a chain is registered in
// edgeConstraints, so an edge shared by overlapping constraints lists all of
// them.

func (m *Mesh) newConstraint(a, b Vertex, info Info) Constraint {
	c := Constraint(len(m.constraints))
	m.constraints = append(m.constraints, constraintRecord{
		ends:  VertexPair{a, b},
		chain: []Vertex{a},
		info:  info,
	})
	m.addVertexConstraint(a, c)
	return c
}

func (m *Mesh) addVertexConstraint(v Vertex, c Constraint) {
	for _, existing := range m.vertexConstraints[v] {
		if existing == c {
			return
		}
	}
	m.vertexConstraints[v] = append(m.vertexConstraints[v], c)
}

// markConstrained records that the constraint goes on from a to b, which must
// be joined by an edge.
func (m *Mesh) markConstrained(a, b Vertex, c Constraint) {
	key := SortedVertexPair(a, b)
	found := false
	for _, existing := range m.edgeConstraints[key] {
		found = found || existing == c
	}
	if !found {
		m.edgeConstraints[key] = append(m.edgeConstraints[key], c)
	}
	r := &m.constraints[c]
	if r.chain[len(r.chain)-1] != a {
		fatalf("Constraint %d is at %v, not at %v", c, r.chain[len(r.chain)-1], a)
	}
	r.chain = append(r.chain, b)
	m.addVertexConstraint(b, c)
	m.version++
}

// splitConstraints moves every constraint going through a-b onto a-v and v-b.
func (m *Mesh) splitConstraints(a, b, v Vertex) {
	key := SortedVertexPair(a, b)
	cs := m.edgeConstraints[key]
	if len(cs) == 0 {
		return
	}
	delete(m.edgeConstraints, key)
	for _, c := range cs {
		r := &m.constraints[c]
		for i := 0; i+1 < len(r.chain); i++ {
			if SortedVertexPair(r.chain[i], r.chain[i+1]) == key {
				r.chain = append(r.chain[:i+1], append([]Vertex{v}, r.chain[i+1:]...)...)
				break
			}
		}
		m.edgeConstraints[SortedVertexPair(a, v)] = append(m.edgeConstraints[SortedVertexPair(a, v)], c)
		m.edgeConstraints[SortedVertexPair(v, b)] = append(m.edgeConstraints[SortedVertexPair(v, b)], c)
		m.addVertexConstraint(v, c)
	}
	m.version++
}

// insertConstraint makes the segment between the ends of c a chain of
// constrained edges.
func (m *Mesh) insertConstraint(c Constraint) {
	u, w := m.constraints[c].ends[0], m.constraints[c].ends[1]
	if m.dimension < 2 {
		m.insertCollinearConstraint(c, u, w)
		return
	}
	for steps := 0; u != w; steps++ {
		if steps > len(m.points) {
			fatalf("Constraint %v→%v does not reach its end", m.constraints[c].ends[0], w)
		}
		u = m.constrainToward(c, u, w)
	}
}

func (m *Mesh) insertCollinearConstraint(c Constraint, u, w Vertex) {
	iu, iw := -1, -1
	for i, v := range m.line {
		switch v {
		case u:
			iu = i
		case w:
			iw = i
		}
	}
	if iu < 0 || iw < 0 {
		fatalf("Constraint ends %v and %v are not in the mesh", u, w)
	}
	step := 1
	if iw < iu {
		step = -1
	}
	for i := iu; i != iw; i += step {
		m.markConstrained(m.line[i], m.line[i+step], c)
	}
}

// constrainToward makes a constrained edge from u to the next vertex along
// the segment u→w, and returns that vertex. When the segment crosses an
// already constrained edge, the crossing becomes that next vertex.
func (m *Mesh) constrainToward(c Constraint, u, w Vertex) Vertex {
	if m.HasEdge(u, w) {
		m.markConstrained(u, w, c)
		return w
	}

	pu, pw := m.points[u], m.points[w]
	direction := vec(pw).Sub(vec(pu))
	for _, n := range m.neighbours(u) {
		if n == InfiniteVertex || geometry.Orient(pu, pw, m.points[n]) != 0 {
			continue
		}
		if vec(m.points[n]).Sub(vec(pu)).Dot(direction) > 0 {
			m.markConstrained(u, n, c)
			return n
		}
	}

	// Find the face around u through which the segment leaves u. Its edge
	// opposite to u is the first edge crossed, with right on the right side of
	// u→w and left on its left.
	var right, left Vertex = NoVertex, NoVertex
	for _, f := range m.facesAround(u) {
		if m.IsInfinite(f) {
			continue
		}
		r := m.faces[f]
		k := m.indexIn(f, u)
		a, b := r.v[(k+1)%3], r.v[(k+2)%3]
		if geometry.Orient(pu, m.points[a], pw) > 0 && geometry.Orient(pu, m.points[b], pw) < 0 {
			right, left = a, b
			break
		}
	}
	if right == NoVertex {
		fatalf("No face around %v toward %v", u, w)
	}

	var crossed []VertexPair
	end := w
	for {
		if m.IsConstrained(right, left) {
			return m.constrainThroughCrossing(c, u, w, right, left)
		}
		crossed = append(crossed, VertexPair{right, left})
		_, d, ok := m.apex(left, right)
		if !ok || d == InfiniteVertex {
			fatalf("Segment %v→%v leaves the hull through %v-%v", u, w, right, left)
		}
		if d == w {
			break
		}
		o := geometry.Orient(pu, pw, m.points[d])
		if o == 0 {
			end = d
			break
		}
		if o > 0 {
			left = d
		} else {
			right = d
		}
	}

	created := m.forceEdge(u, end, crossed)
	m.markConstrained(u, end, c)
	m.legalize(created)
	return end
}

// constrainThroughCrossing handles a segment u→w crossing the constrained edge
// right-left: the crossing point splits that edge, and the segment is forced
// up to it.
func (m *Mesh) constrainThroughCrossing(c Constraint, u, w, right, left Vertex) Vertex {
	s := geometry.Segment{Start: m.points[right], End: m.points[left]}
	x, ok := s.Intersection(geometry.Segment{Start: m.points[u], End: m.points[w]})
	if !ok {
		fatalf("Segment %v→%v does not cut %v-%v", u, w, right, left)
	}
	v, exists := m.byPoint[x]
	if !exists {
		v = m.addVertex(x)
		m.splitEdge(right, left, v)
		m.legalizeAround(v)
	}
	for steps := 0; u != v; steps++ {
		if steps > len(m.points) {
			fatalf("Constraint %v→%v does not reach the crossing %v", u, w, v)
		}
		u = m.constrainToward(c, u, v)
	}
	return v
}

// forceEdge flips the crossed edges away until u-end is an edge (after Sloan,
// "A fast algorithm for generating constrained Delaunay triangulations"). It
// returns the edges around the faces created by the flips, to be legalized
// once u-end is constrained.
func (m *Mesh) forceEdge(u, end Vertex, crossed []VertexPair) []VertexPair {
	segment := geometry.Segment{Start: m.points[u], End: m.points[end]}
	queue := crossed
	var created []VertexPair
	limit := 16 * (len(crossed) + 1) * (len(crossed) + 1)
	for steps := 0; len(queue) > 0; steps++ {
		if steps > limit {
			fatalf("Could not force edge %v-%v", u, end)
		}
		e := queue[0]
		queue = queue[1:]
		if !m.flippable(e[0], e[1]) {
			queue = append(queue, e)
			continue
		}
		flipped := m.flip(e[0], e[1])
		d, c := flipped[0], flipped[1]
		// The sides of the flipped quad get new faces too
		created = append(created, VertexPair{e[0], d}, VertexPair{d, e[1]}, VertexPair{e[1], c}, VertexPair{c, e[0]})
		if d == u || d == end || c == u || c == end ||
			!segment.Crosses(geometry.Segment{Start: m.points[d], End: m.points[c]}) {
			created = append(created, flipped)
		} else {
			queue = append(queue, flipped)
		}
	}
	if !m.HasEdge(u, end) {
		fatalf("Forcing edge %v-%v left no edge", u, end)
	}
	return created
}

func vec(p [2]float64) r2.Point {
	return r2.Point{X: p[0], Y: p[1]}
}
