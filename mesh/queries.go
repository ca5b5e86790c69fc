package mesh

import (
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

// InsertPoint returns the vertex at p, creating it if needed, and merges info
// into the input info of that vertex.
func (m *Mesh) InsertPoint(p orb.Point, info Info) (v Vertex, err error) {
	defer recoverInto(&err)
	v = m.insertVertex(p)
	if err := m.mergeVertexInfo(v, info); err != nil {
		return v, err
	}
	return v, nil
}

func (m *Mesh) mergeVertexInfo(v Vertex, info Info) error {
	if len(info) == 0 {
		return nil
	}
	merged, err := m.policy.Merge(m.vertexInfo[v], info)
	if err != nil {
		return conflictAt(err, m.points[v], m.vertexInfo[v], info)
	}
	m.vertexInfo[v] = merged
	return nil
}

type polylineOptions struct {
	closeIt   bool
	connected bool
}

type PolylineOption func(*polylineOptions)

// CloseIt joins the last point back to the first one.
func CloseIt() PolylineOption {
	return func(o *polylineOptions) {
		o.closeIt = true
	}
}

// Disconnected only inserts the points, without constraints between them.
func Disconnected() PolylineOption {
	return func(o *polylineOptions) {
		o.connected = false
	}
}

// InsertPolyline inserts the points, giving them info, and constrains each
// segment between consecutive points. Every segment is an input constraint
// carrying its own copy of info.
func (m *Mesh) InsertPolyline(points []orb.Point, info Info, opts ...PolylineOption) ([]Vertex, []Constraint, error) {
	return m.insertPolyline(points, info, info, opts...)
}

func (m *Mesh) insertPolyline(points []orb.Point, vertexInfo, info Info, opts ...PolylineOption) (vertices []Vertex, constraints []Constraint, err error) {
	defer recoverInto(&err)
	o := polylineOptions{connected: true}
	for _, opt := range opts {
		opt(&o)
	}

	for _, p := range points {
		v, err := m.InsertPoint(p, vertexInfo)
		if err != nil {
			return nil, nil, err
		}
		vertices = append(vertices, v)
	}
	if !o.connected {
		return vertices, nil, nil
	}

	var pairs []VertexPair
	for i := 0; i+1 < len(vertices); i++ {
		pairs = append(pairs, VertexPair{vertices[i], vertices[i+1]})
	}
	if o.closeIt && len(vertices) > 2 {
		pairs = append(pairs, VertexPair{vertices[len(vertices)-1], vertices[0]})
	}
	for _, pair := range pairs {
		if pair[0] == pair[1] {
			continue
		}
		c := m.newConstraint(pair[0], pair[1], info.Clone())
		m.insertConstraint(c)
		constraints = append(constraints, c)
	}
	return vertices, constraints, nil
}

// Half-edge conversions

func (m *Mesh) verticesPair(h HalfEdge) VertexPair {
	r := m.faces[h.Face]
	return VertexPair{r.v[(h.Index+1)%3], r.v[(h.Index+2)%3]}
}

// HalfEdgeFromVerticesPair gives the half-edge a→b, whose face lies on the
// left of that direction.
func (m *Mesh) HalfEdgeFromVerticesPair(a, b Vertex) (HalfEdge, error) {
	f, ok := m.halfEdges[VertexPair{a, b}]
	if !ok {
		return HalfEdge{NoFace, 0}, notFound("no edge %v→%v", a, b)
	}
	for i, v := range m.faces[f].v {
		if v == a {
			return HalfEdge{f, (i + 2) % 3}, nil
		}
	}
	return HalfEdge{NoFace, 0}, errors.Errorf("face %v does not hold %v", f, a)
}

func (m *Mesh) VerticesPairFromHalfEdge(h HalfEdge) VertexPair {
	return m.verticesPair(h)
}

// MirrorHalfEdge returns the same edge seen from the face on the other side.
func (m *Mesh) MirrorHalfEdge(h HalfEdge) (HalfEdge, error) {
	if !m.IsAlive(h.Face) {
		return HalfEdge{NoFace, 0}, notFound("stale half-edge %v", h)
	}
	pair := m.verticesPair(h)
	return m.HalfEdgeFromVerticesPair(pair[1], pair[0])
}

func (m *Mesh) EnsureHalfEdge(ref EdgeRef) (HalfEdge, error) {
	switch ref := ref.(type) {
	case HalfEdge:
		return ref, nil
	case VertexPair:
		return m.HalfEdgeFromVerticesPair(ref[0], ref[1])
	case Constraint:
		ends := m.constraints[ref].ends
		return m.HalfEdgeFromVerticesPair(ends[0], ends[1])
	}
	return HalfEdge{NoFace, 0}, errors.Errorf("unknown edge reference %T", ref)
}

func (m *Mesh) EnsureVerticesPair(ref EdgeRef) VertexPair {
	switch ref := ref.(type) {
	case HalfEdge:
		return m.verticesPair(ref)
	case VertexPair:
		return ref
	case Constraint:
		return m.constraints[ref].ends
	}
	return VertexPair{NoVertex, NoVertex}
}

// FaceForVertices finds the face with the three given vertices, in any order.
func (m *Mesh) FaceForVertices(a, b, c Vertex) (Face, bool) {
	for _, pair := range []VertexPair{{a, b}, {b, a}} {
		if f, apex, ok := m.apex(pair[0], pair[1]); ok && apex == c {
			return f, true
		}
	}
	return NoFace, false
}

// FacesForEdge returns the faces on the left and on the right of a→b.
func (m *Mesh) FacesForEdge(a, b Vertex) (left, right Face, err error) {
	left, okLeft := m.halfEdges[VertexPair{a, b}]
	right, okRight := m.halfEdges[VertexPair{b, a}]
	if !okLeft || !okRight {
		return NoFace, NoFace, notFound("no faces along %v-%v", a, b)
	}
	return left, right, nil
}

// Input constraints

func (m *Mesh) constraintBetween(a, b Vertex) (Constraint, bool, error) {
	for _, c := range m.vertexConstraints[a] {
		switch m.constraints[c].ends {
		case VertexPair{a, b}:
			return c, false, nil
		case VertexPair{b, a}:
			return c, true, nil
		}
	}
	return -1, false, notFound("no input constraint %v-%v", a, b)
}

// IterEdgesForInputConstraint lists the edges the input constraint between a
// and b was split into, directed and ordered from a to b.
func (m *Mesh) IterEdgesForInputConstraint(a, b Vertex) ([]VertexPair, error) {
	c, reversed, err := m.constraintBetween(a, b)
	if err != nil {
		return nil, err
	}
	chain := m.constraints[c].chain
	edges := make([]VertexPair, 0, len(chain)-1)
	for i := 0; i+1 < len(chain); i++ {
		edges = append(edges, VertexPair{chain[i], chain[i+1]})
	}
	if reversed {
		for i, j := 0, len(edges)-1; i < j; i, j = i+1, j-1 {
			edges[i], edges[j] = edges[j], edges[i]
		}
		for i := range edges {
			edges[i] = edges[i].Reversed()
		}
	}
	return edges, nil
}

func (m *Mesh) IterEdgesForInputPolyline(vertices []Vertex, closeIt bool) ([]VertexPair, error) {
	var edges []VertexPair
	for _, pair := range polylinePairs(vertices, closeIt) {
		chain, err := m.IterEdgesForInputConstraint(pair[0], pair[1])
		if err != nil {
			return nil, err
		}
		edges = append(edges, chain...)
	}
	return edges, nil
}

func polylinePairs(vertices []Vertex, closeIt bool) []VertexPair {
	var pairs []VertexPair
	for i := 0; i+1 < len(vertices); i++ {
		if vertices[i] != vertices[i+1] {
			pairs = append(pairs, VertexPair{vertices[i], vertices[i+1]})
		}
	}
	if closeIt && len(vertices) > 2 && vertices[len(vertices)-1] != vertices[0] {
		pairs = append(pairs, VertexPair{vertices[len(vertices)-1], vertices[0]})
	}
	return pairs
}

// IterFacesForInputConstraint gives the faces on each side of every edge of
// the input constraint from a to b.
func (m *Mesh) IterFacesForInputConstraint(a, b Vertex) ([]FacePair, error) {
	edges, err := m.IterEdgesForInputConstraint(a, b)
	if err != nil {
		return nil, err
	}
	return m.facesAlong(edges)
}

func (m *Mesh) IterFacesForInputPolyline(vertices []Vertex, closeIt bool) ([]FacePair, error) {
	edges, err := m.IterEdgesForInputPolyline(vertices, closeIt)
	if err != nil {
		return nil, err
	}
	return m.facesAlong(edges)
}

func (m *Mesh) facesAlong(edges []VertexPair) ([]FacePair, error) {
	pairs := make([]FacePair, 0, len(edges))
	for _, e := range edges {
		left, right, err := m.FacesForEdge(e[0], e[1])
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, FacePair{left, right})
	}
	return pairs, nil
}

func (m *Mesh) ConstraintInfo(c Constraint) Info {
	return m.constraints[c].info
}

// ConstraintEnds gives the end points the constraint was inserted with.
func (m *Mesh) ConstraintEnds(c Constraint) VertexPair {
	return m.constraints[c].ends
}

func (m *Mesh) InputVertexInfo(v Vertex) Info {
	return m.vertexInfo[v]
}

// InputConstraintsOverlapping lists the input constraints going through the
// edge.
func (m *Mesh) InputConstraintsOverlapping(ref EdgeRef) []Constraint {
	pair := m.EnsureVerticesPair(ref)
	return append([]Constraint(nil), m.edgeConstraints[pair.Sorted()]...)
}

func (m *Mesh) ConstraintInfosOverlapping(ref EdgeRef) []Info {
	var infos []Info
	for _, c := range m.InputConstraintsOverlapping(ref) {
		infos = append(infos, m.constraints[c].info)
	}
	return infos
}

// InputConstraintsAround lists the input constraints which start, end or go
// through v.
func (m *Mesh) InputConstraintsAround(v Vertex) []Constraint {
	return append([]Constraint(nil), m.vertexConstraints[v]...)
}

// FetchConstraintInfosForEdges gives, for every constrained edge, the infos of
// the input constraints going through it.
func (m *Mesh) FetchConstraintInfosForEdges() map[VertexPair][]Info {
	out := make(map[VertexPair][]Info, len(m.edgeConstraints))
	for pair := range m.edgeConstraints {
		out[pair] = m.ConstraintInfosOverlapping(pair)
	}
	return out
}

func (m *Mesh) FetchConstraintInfosForVertices(vertices ...Vertex) map[Vertex][]Info {
	out := make(map[Vertex][]Info, len(vertices))
	for _, v := range vertices {
		var infos []Info
		for _, c := range m.vertexConstraints[v] {
			infos = append(infos, m.constraints[c].info)
		}
		out[v] = infos
	}
	return out
}

// Reducer folds one more info into an accumulated one.
type Reducer func(acc, next Info) (Info, error)

// MergeInfo is the reducer of the merge policy of the mesh.
func (m *Mesh) MergeInfo(acc, next Info) (Info, error) {
	return m.policy.Merge(acc, next)
}

// MergeInfoForVertices folds, for each vertex, its input info with the infos
// of the constraints around it. Conflicts are reported as inconsistencies at
// the vertex.
func (m *Mesh) MergeInfoForVertices(reducer Reducer, vertices ...Vertex) (map[Vertex]Info, error) {
	out := make(map[Vertex]Info, len(vertices))
	for _, v := range vertices {
		acc := m.vertexInfo[v].Clone()
		if acc == nil {
			acc = make(Info)
		}
		for _, c := range m.vertexConstraints[v] {
			next := m.constraints[c].info
			merged, err := reducer(acc, next)
			if err != nil {
				return nil, conflictAt(err, m.points[v], acc, next)
			}
			acc = merged
		}
		out[v] = acc
	}
	return out, nil
}
