package mesh

import (
	"fmt"

	"github.com/osuushi/altimetry/datamodel"
	"github.com/pkg/errors"
)

// Vertex is a handle on a mesh vertex. Handles are indices into the arenas of
// the mesh they come from, so they stay meaningful in a copy of that mesh.
type Vertex int

// The single vertex "at infinity". Every hull edge forms an infinite face with
// it.
const InfiniteVertex Vertex = 0

const NoVertex Vertex = -1

// Face is a handle on a triangle of the mesh. Faces are replaced as the mesh
// changes, so face handles go stale after any insertion or refinement.
type Face int

const NoFace Face = -1

// HalfEdge is a directed edge, given as a face and the index of the vertex
// opposite to the edge. The face lies to the left of the edge.
type HalfEdge struct {
	Face  Face
	Index int
}

// VertexPair is an edge given by its two end points. For directed uses the
// edge runs from the first to the second vertex.
type VertexPair [2]Vertex

// SortedVertexPair canonicalizes an undirected edge.
func SortedVertexPair(a, b Vertex) VertexPair {
	if b < a {
		return VertexPair{b, a}
	}
	return VertexPair{a, b}
}

func (p VertexPair) Sorted() VertexPair {
	return SortedVertexPair(p[0], p[1])
}

func (p VertexPair) Reversed() VertexPair {
	return VertexPair{p[1], p[0]}
}

// Constraint is a handle on an input constraint: a segment given to
// InsertPolyline, which the mesh may have split into several edges.
type Constraint int

// EdgeRef is anything which designates an edge: a HalfEdge, a VertexPair or a
// Constraint.
type EdgeRef interface {
	edgeRef()
}

func (HalfEdge) edgeRef()   {}
func (VertexPair) edgeRef() {}
func (Constraint) edgeRef() {}

// FacePair holds the faces on each side of an edge, relative to the
// direction of the edge.
type FacePair struct {
	Left  Face
	Right Face
}

// LeftAndRightFaces splits the result of the IterFacesFor* functions.
func LeftAndRightFaces(pairs []FacePair) (left, right []Face) {
	for _, pair := range pairs {
		left = append(left, pair.Left)
		right = append(right, pair.Right)
	}
	return
}

var (
	// The mesh has fewer than three non collinear vertices, so it has no
	// faces to work with.
	ErrDegenerateMesh = errors.New("degenerate mesh")
	// The requested edge, face or constraint is not part of the mesh.
	ErrNotFound = errors.New("not found in mesh")
)

// degenerate reports a query which needs faces on a mesh without any. The
// sentinel stays reachable with errors.Is.
func degenerate(format string, args ...interface{}) *datamodel.InconsistentGeometricModel {
	return datamodel.NewInconsistency(format+" in a degenerate mesh", args...).WithCause(ErrDegenerateMesh)
}

func notFound(format string, args ...interface{}) error {
	return errors.Wrapf(ErrNotFound, format, args...)
}

func (v Vertex) String() string {
	switch v {
	case InfiniteVertex:
		return "v∞"
	case NoVertex:
		return "vØ"
	}
	return fmt.Sprintf("v%d", int(v))
}

func (f Face) String() string {
	if f == NoFace {
		return "fØ"
	}
	return fmt.Sprintf("f%d", int(f))
}
