package mesh

import (
	"math"

	"github.com/osuushi/altimetry/geometry"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/quadtree"
)

type LocateType int

const (
	// Outside of the convex hull of the mesh
	Outside LocateType = iota
	InFace
	OnEdge
	OnVertex
)

func (t LocateType) String() string {
	switch t {
	case InFace:
		return "in face"
	case OnEdge:
		return "on edge"
	case OnVertex:
		return "on vertex"
	}
	return "outside"
}

// Location of a point in the mesh. Face is a finite face containing the
// point, or NoFace when the point is outside. Edge is set for OnEdge and
// belongs to Face, Vertex is set for OnVertex.
type Location struct {
	Type   LocateType
	Face   Face
	Edge   HalfEdge
	Vertex Vertex
}

// LocatePoint finds where p falls in the mesh.
func (m *Mesh) LocatePoint(p orb.Point) (loc Location, err error) {
	defer recoverInto(&err)
	if m.dimension < 2 {
		return Location{Face: NoFace, Vertex: NoVertex}, degenerate("Cannot locate %v", p).WithWitness(p)
	}
	loc = m.locate(p)
	if loc.Type == Outside {
		loc.Face = NoFace
	}
	return loc, nil
}

// Longest walk before giving up on the visibility walk. A constrained
// triangulation is not Delaunay, so the walk could in theory cycle.
const maxWalkSteps = 1 << 16

// locate walks from a face near p toward p. For points outside, the face of
// the result is the infinite face the walk stepped into.
func (m *Mesh) locate(p orb.Point) Location {
	f := m.startFace(p)
	for step := 0; step < maxWalkSteps; step++ {
		r := m.faces[f]
		if m.IsInfinite(f) {
			k := m.indexIn(f, InfiniteVertex)
			a, b := r.v[(k+1)%3], r.v[(k+2)%3]
			if geometry.Orient(m.points[a], m.points[b], p) > 0 {
				return Location{Type: Outside, Face: f, Vertex: NoVertex}
			}
			f = m.halfEdges[VertexPair{b, a}]
			continue
		}

		next, loc := m.classify(f, p, step%3)
		if next == NoFace {
			return loc
		}
		f = next
	}
	return m.locateBruteForce(p)
}

// classify either gives the neighbour of the finite face f to step into, or
// the location of p in f. The edges are tried starting with the given offset,
// which keeps the walk from cycling.
func (m *Mesh) classify(f Face, p orb.Point, offset int) (Face, Location) {
	r := m.faces[f]
	var zeros []int
	for j := 0; j < 3; j++ {
		i := (j + offset) % 3
		a, b := r.v[(i+1)%3], r.v[(i+2)%3]
		switch geometry.Orient(m.points[a], m.points[b], p) {
		case -1:
			return m.halfEdges[VertexPair{b, a}], Location{}
		case 0:
			zeros = append(zeros, i)
		}
	}
	switch len(zeros) {
	case 0:
		return NoFace, Location{Type: InFace, Face: f, Vertex: NoVertex}
	case 1:
		return NoFace, Location{Type: OnEdge, Face: f, Edge: HalfEdge{f, zeros[0]}, Vertex: NoVertex}
	}
	return NoFace, Location{Type: OnVertex, Face: f, Vertex: r.v[3-zeros[0]-zeros[1]]}
}

func (m *Mesh) locateBruteForce(p orb.Point) Location {
	for f := range m.faces {
		if !m.faces[f].alive || m.IsInfinite(Face(f)) {
			continue
		}
		inside := true
		for i := 0; i < 3 && inside; i++ {
			a, b := m.faces[f].v[(i+1)%3], m.faces[f].v[(i+2)%3]
			inside = geometry.Orient(m.points[a], m.points[b], p) >= 0
		}
		if inside {
			_, loc := m.classify(Face(f), p, 0)
			return loc
		}
	}
	return Location{Type: Outside, Face: NoFace, Vertex: NoVertex}
}

func (m *Mesh) startFace(p orb.Point) Face {
	v := m.nearestVertex(p)
	if v != NoVertex {
		if f := m.vertexFace[v]; f != NoFace && m.faces[f].alive {
			return f
		}
	}
	for f := len(m.faces) - 1; f >= 0; f-- {
		if m.faces[f].alive {
			return Face(f)
		}
	}
	fatalf("No face to start locating %v", p)
	return NoFace
}

// The vertex index is a quadtree over the finite vertices, used to start the
// walk close to the target. It is built on demand and dropped whenever a
// vertex falls outside of its bound.

type vertexIndex struct {
	tree *quadtree.Quadtree
}

type indexedVertex struct {
	v Vertex
	p orb.Point
}

func (iv indexedVertex) Point() orb.Point {
	return iv.p
}

func (idx *vertexIndex) add(v Vertex, p orb.Point) bool {
	if idx == nil {
		return true
	}
	return idx.tree.Add(indexedVertex{v, p}) == nil
}

func (m *Mesh) nearestVertex(p orb.Point) Vertex {
	if len(m.points) < 2 {
		return NoVertex
	}
	if m.index == nil {
		m.buildIndex()
	}
	found := m.index.tree.Find(p)
	if found == nil {
		return NoVertex
	}
	return found.(indexedVertex).v
}

func (m *Mesh) buildIndex() {
	bound := orb.Bound{Min: m.points[1], Max: m.points[1]}
	for _, p := range m.points[2:] {
		bound = bound.Extend(p)
	}
	pad := math.Max(bound.Max[0]-bound.Min[0], bound.Max[1]-bound.Min[1])
	if pad == 0 {
		pad = 1
	}
	m.index = &vertexIndex{tree: quadtree.New(bound.Pad(pad))}
	for v := 1; v < len(m.points); v++ {
		m.index.add(Vertex(v), m.points[v])
	}
}
