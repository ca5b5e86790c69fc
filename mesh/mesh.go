// Package mesh builds constrained Delaunay triangulations of the ground of a
// site, with attributes (altitude, material, feature ids) attached to the
// vertices and to the input constraints they come from.
//
// The triangulation is stored as a face arena. Each face lists its three
// vertices counterclockwise, and a map from directed vertex pairs to faces
// gives adjacency: the face on the left of a→b holds that half-edge, and its
// neighbour across the edge holds b→a. Hull edges are closed off by infinite
// faces, which contain the InfiniteVertex, so every edge of a two dimensional
// mesh has a face on each side.
//
// While the mesh has fewer than three non collinear vertices, it has no faces.
// The vertices are then kept sorted along their common line, and edges join
// consecutive vertices.
package mesh

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
)

type faceRecord struct {
	v     [3]Vertex
	alive bool
}

type constraintRecord struct {
	ends  VertexPair
	chain []Vertex
	info  Info
}

type Mesh struct {
	policy MergePolicy

	points     []orb.Point
	vertexInfo []Info
	vertexFace []Face
	byPoint    map[orb.Point]Vertex
	index      *vertexIndex

	// -1 when empty, 0 for a single vertex, 1 while all vertices are
	// collinear, 2 once the mesh has faces
	dimension int
	line      []Vertex

	faces       []faceRecord
	halfEdges   map[VertexPair]Face
	finiteFaces int

	constraints       []constraintRecord
	edgeConstraints   map[VertexPair][]Constraint
	vertexConstraints map[Vertex][]Constraint

	// Bumped by every change of the topology or of the constraints
	version int
}

type Option func(*Mesh)

func WithMergePolicy(policy MergePolicy) Option {
	return func(m *Mesh) {
		m.policy = policy
	}
}

func New(opts ...Option) *Mesh {
	m := &Mesh{
		policy:            DefaultMergePolicy(),
		points:            []orb.Point{{math.Inf(1), math.Inf(1)}},
		vertexInfo:        []Info{nil},
		vertexFace:        []Face{NoFace},
		byPoint:           make(map[orb.Point]Vertex),
		dimension:         -1,
		halfEdges:         make(map[VertexPair]Face),
		edgeConstraints:   make(map[VertexPair][]Constraint),
		vertexConstraints: make(map[Vertex][]Constraint),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Mesh) Dimension() int {
	return m.dimension
}

func (m *Mesh) Point(v Vertex) orb.Point {
	return m.points[v]
}

func (m *Mesh) IsInfinite(f Face) bool {
	r := m.faces[f]
	return r.v[0] == InfiniteVertex || r.v[1] == InfiniteVertex || r.v[2] == InfiniteVertex
}

func (m *Mesh) IsAlive(f Face) bool {
	return f >= 0 && int(f) < len(m.faces) && m.faces[f].alive
}

func (m *Mesh) FaceVertices(f Face) [3]Vertex {
	return m.faces[f].v
}

// PointForFace returns the centroid of a finite face.
func (m *Mesh) PointForFace(f Face) orb.Point {
	var c orb.Point
	for _, v := range m.faces[f].v {
		c[0] += m.points[v][0] / 3
		c[1] += m.points[v][1] / 3
	}
	return c
}

func (m *Mesh) NumberOfVertices() int {
	return len(m.points) - 1
}

func (m *Mesh) NumberOfFaces() int {
	return m.finiteFaces
}

func (m *Mesh) FiniteVertices() []Vertex {
	out := make([]Vertex, 0, len(m.points)-1)
	for v := 1; v < len(m.points); v++ {
		out = append(out, Vertex(v))
	}
	return out
}

// FiniteFaces lists the live finite faces, oldest first.
func (m *Mesh) FiniteFaces() []Face {
	out := make([]Face, 0, m.finiteFaces)
	for f := range m.faces {
		if m.faces[f].alive && !m.IsInfinite(Face(f)) {
			out = append(out, Face(f))
		}
	}
	return out
}

// FiniteEdges lists every edge between two finite vertices, as sorted pairs
// in ascending order.
func (m *Mesh) FiniteEdges() []VertexPair {
	var out []VertexPair
	if m.dimension == 1 {
		for i := 0; i+1 < len(m.line); i++ {
			out = append(out, SortedVertexPair(m.line[i], m.line[i+1]))
		}
	} else {
		for pair := range m.halfEdges {
			if pair[0] != InfiniteVertex && pair[1] != InfiniteVertex && pair[0] < pair[1] {
				out = append(out, pair)
			}
		}
	}
	sortPairs(out)
	return out
}

func (m *Mesh) ConstrainedEdges() []VertexPair {
	out := make([]VertexPair, 0, len(m.edgeConstraints))
	for pair := range m.edgeConstraints {
		out = append(out, pair)
	}
	sortPairs(out)
	return out
}

func (m *Mesh) IsConstrained(a, b Vertex) bool {
	return len(m.edgeConstraints[SortedVertexPair(a, b)]) > 0
}

func (m *Mesh) HasEdge(a, b Vertex) bool {
	if m.dimension == 1 {
		for i := 0; i+1 < len(m.line); i++ {
			if SortedVertexPair(m.line[i], m.line[i+1]) == SortedVertexPair(a, b) {
				return true
			}
		}
		return false
	}
	_, ok := m.halfEdges[VertexPair{a, b}]
	return ok
}

func sortPairs(pairs []VertexPair) {
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i][0] != pairs[j][0] {
			return pairs[i][0] < pairs[j][0]
		}
		return pairs[i][1] < pairs[j][1]
	})
}

// Topology primitives

func (m *Mesh) addVertex(p orb.Point) Vertex {
	v := Vertex(len(m.points))
	m.points = append(m.points, p)
	m.vertexInfo = append(m.vertexInfo, nil)
	m.vertexFace = append(m.vertexFace, NoFace)
	m.byPoint[p] = v
	if !m.index.add(v, p) {
		m.index = nil
	}
	m.version++
	return v
}

func (m *Mesh) newFace(a, b, c Vertex) Face {
	f := Face(len(m.faces))
	m.faces = append(m.faces, faceRecord{v: [3]Vertex{a, b, c}, alive: true})
	for i, v := range m.faces[f].v {
		next := m.faces[f].v[(i+1)%3]
		if old, ok := m.halfEdges[VertexPair{v, next}]; ok && m.faces[old].alive {
			fatalf("Half-edge %v→%v already belongs to %v", v, next, old)
		}
		m.halfEdges[VertexPair{v, next}] = f
		m.vertexFace[v] = f
	}
	if !m.IsInfinite(f) {
		m.finiteFaces++
	}
	m.version++
	return f
}

func (m *Mesh) killFace(f Face) {
	r := &m.faces[f]
	if !r.alive {
		fatalf("Killing dead face %v", f)
	}
	for i, v := range r.v {
		pair := VertexPair{v, r.v[(i+1)%3]}
		if m.halfEdges[pair] == f {
			delete(m.halfEdges, pair)
		}
	}
	r.alive = false
	if !m.IsInfinite(f) {
		m.finiteFaces--
	}
	m.version++
}

func (m *Mesh) indexIn(f Face, v Vertex) int {
	for i, w := range m.faces[f].v {
		if w == v {
			return i
		}
	}
	fatalf("Vertex %v is not in face %v", v, f)
	return -1
}

// apex returns the vertex of the face on the left of a→b which is not on that
// edge.
func (m *Mesh) apex(a, b Vertex) (Face, Vertex, bool) {
	f, ok := m.halfEdges[VertexPair{a, b}]
	if !ok {
		return NoFace, NoVertex, false
	}
	i := m.indexIn(f, a)
	return f, m.faces[f].v[(i+2)%3], true
}

// facesAround lists the faces incident to v, turning clockwise.
func (m *Mesh) facesAround(v Vertex) []Face {
	start := m.vertexFace[v]
	if start == NoFace {
		return nil
	}
	if !m.faces[start].alive {
		fatalf("Stale incident face %v for vertex %v", start, v)
	}
	var out []Face
	f := start
	for {
		out = append(out, f)
		next := m.faces[f].v[(m.indexIn(f, v)+1)%3]
		var ok bool
		f, ok = m.halfEdges[VertexPair{next, v}]
		if !ok {
			fatalf("Open fan around %v at edge %v→%v", v, next, v)
		}
		if f == start {
			return out
		}
		if len(out) > len(m.faces) {
			fatalf("Endless fan around %v", v)
		}
	}
}

// neighbours lists the vertices joined to v by an edge, the infinite one
// included.
func (m *Mesh) neighbours(v Vertex) []Vertex {
	if m.dimension == 1 {
		var out []Vertex
		for i, w := range m.line {
			if w != v {
				continue
			}
			if i > 0 {
				out = append(out, m.line[i-1])
			}
			if i+1 < len(m.line) {
				out = append(out, m.line[i+1])
			}
		}
		return out
	}
	faces := m.facesAround(v)
	out := make([]Vertex, len(faces))
	for n, f := range faces {
		out[n] = m.faces[f].v[(m.indexIn(f, v)+1)%3]
	}
	return out
}

// Copy returns a deep copy of the mesh. Vertex, face and constraint handles of
// the original designate the same things in the copy.
func (m *Mesh) Copy() *Mesh {
	c := &Mesh{
		policy:            m.policy,
		points:            append([]orb.Point(nil), m.points...),
		vertexInfo:        make([]Info, len(m.vertexInfo)),
		vertexFace:        append([]Face(nil), m.vertexFace...),
		byPoint:           make(map[orb.Point]Vertex, len(m.byPoint)),
		dimension:         m.dimension,
		line:              append([]Vertex(nil), m.line...),
		faces:             append([]faceRecord(nil), m.faces...),
		halfEdges:         make(map[VertexPair]Face, len(m.halfEdges)),
		finiteFaces:       m.finiteFaces,
		constraints:       make([]constraintRecord, len(m.constraints)),
		edgeConstraints:   make(map[VertexPair][]Constraint, len(m.edgeConstraints)),
		vertexConstraints: make(map[Vertex][]Constraint, len(m.vertexConstraints)),
		version:           m.version,
	}
	for v, info := range m.vertexInfo {
		c.vertexInfo[v] = info.Clone()
	}
	for p, v := range m.byPoint {
		c.byPoint[p] = v
	}
	for pair, f := range m.halfEdges {
		c.halfEdges[pair] = f
	}
	for i, r := range m.constraints {
		c.constraints[i] = constraintRecord{
			ends:  r.ends,
			chain: append([]Vertex(nil), r.chain...),
			info:  r.info.Clone(),
		}
	}
	for pair, cs := range m.edgeConstraints {
		c.edgeConstraints[pair] = append([]Constraint(nil), cs...)
	}
	for v, cs := range m.vertexConstraints {
		c.vertexConstraints[v] = append([]Constraint(nil), cs...)
	}
	return c
}

// VerticesMapToOtherMesh maps each vertex of m to the vertex at the same
// place in other, when there is one.
func (m *Mesh) VerticesMapToOtherMesh(other *Mesh) map[Vertex]Vertex {
	out := make(map[Vertex]Vertex, len(m.points))
	for v := 1; v < len(m.points); v++ {
		if w, ok := other.byPoint[m.points[v]]; ok {
			out[Vertex(v)] = w
		}
	}
	return out
}
