package mesh

import "sort"

// FaceFlooder visits the finite faces reachable from its seeds, crossing
// from a face to its neighbour only when ShouldFollow allows it.
type FaceFlooder struct {
	mesh *Mesh
	// Nil follows every edge
	ShouldFollow func(from Face, edge VertexPair, to Face) bool
	Visited      map[Face]bool
}

func NewFaceFlooder(m *Mesh, shouldFollow func(from Face, edge VertexPair, to Face) bool) *FaceFlooder {
	return &FaceFlooder{
		mesh:         m,
		ShouldFollow: shouldFollow,
		Visited:      make(map[Face]bool),
	}
}

// NewMaterialFaceFlooder does not cross the boundaries of material areas.
func NewMaterialFaceFlooder(m *MaterialMesh) *FaceFlooder {
	return NewFaceFlooder(m.Mesh, func(_ Face, edge VertexPair, _ Face) bool {
		return !m.EdgeInfo(edge[0], edge[1]).MaterialBoundary
	})
}

// NewLandtakeFaceFlooder only stops at the boundaries of infrastructure
// landtakes.
func NewLandtakeFaceFlooder(m *MaterialMesh) *FaceFlooder {
	return NewFaceFlooder(m.Mesh, func(_ Face, edge VertexPair, _ Face) bool {
		return !m.EdgeInfo(edge[0], edge[1]).LandtakeBoundary
	})
}

// NewConstraintFaceFlooder does not cross any constrained edge.
func NewConstraintFaceFlooder(m *Mesh) *FaceFlooder {
	return NewFaceFlooder(m, func(_ Face, edge VertexPair, _ Face) bool {
		return !m.IsConstrained(edge[0], edge[1])
	})
}

// FloodFrom visits the seeds and everything reachable from them. Infinite
// seeds are ignored.
func (fl *FaceFlooder) FloodFrom(seeds ...Face) {
	m := fl.mesh
	var stack []Face
	for _, f := range seeds {
		if m.IsAlive(f) && !m.IsInfinite(f) && !fl.Visited[f] {
			fl.Visited[f] = true
			stack = append(stack, f)
		}
	}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		r := m.faces[f]
		for i, a := range r.v {
			b := r.v[(i+1)%3]
			to, ok := m.halfEdges[VertexPair{b, a}]
			if !ok || fl.Visited[to] || m.IsInfinite(to) {
				continue
			}
			if fl.ShouldFollow != nil && !fl.ShouldFollow(f, VertexPair{a, b}, to) {
				continue
			}
			fl.Visited[to] = true
			stack = append(stack, to)
		}
	}
}

// Faces lists the visited faces in ascending order.
func (fl *FaceFlooder) Faces() []Face {
	out := make([]Face, 0, len(fl.Visited))
	for f := range fl.Visited {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
