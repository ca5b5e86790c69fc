package mesh

// This contains no actual tests. It is just a helper for testing mesh
// validity.

import (
	"math"
	"testing"

	"github.com/osuushi/altimetry/geometry"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/require"
)

// Helper to check that a mesh is a valid constrained Delaunay triangulation.
// The rules are:
// 1. Every finite face is counterclockwise, with non zero area.
// 2. Every half-edge has a mirror, so the faces close up.
// 3. The sum of the areas of the finite faces is the area of the hull.
// 4. Every input constraint is a chain of constrained edges.
// 5. No unconstrained edge could be flipped to improve the Delaunay criterion.
func AssertValidMesh(t *testing.T, m *Mesh) {
	t.Helper()
	if m.Dimension() < 2 {
		require.Zero(t, m.NumberOfFaces())
		return
	}

	var faceArea float64
	for _, f := range m.FiniteFaces() {
		r := m.faces[f]
		a, b, c := m.points[r.v[0]], m.points[r.v[1]], m.points[r.v[2]]
		require.Equal(t, 1, geometry.Orient(a, b, c), "clockwise or flat face %v %v", f, r.v)
		faceArea += triangleArea(a, b, c)
	}

	var hullArea float64
	for pair, f := range m.halfEdges {
		require.True(t, m.faces[f].alive, "dead face %v in the half-edges", f)
		_, ok := m.halfEdges[pair.Reversed()]
		require.True(t, ok, "half-edge %v has no mirror", pair)
		if m.IsInfinite(f) && pair[0] != InfiniteVertex && pair[1] != InfiniteVertex {
			// The finite side runs the other way
			p, q := m.points[pair[1]], m.points[pair[0]]
			hullArea += (p[0]*q[1] - q[0]*p[1]) / 2
		}
	}
	require.InDelta(t, hullArea, faceArea, 1e-9*math.Max(1, hullArea), "faces do not cover the hull")

	for c, r := range m.constraints {
		for i := 0; i+1 < len(r.chain); i++ {
			a, b := r.chain[i], r.chain[i+1]
			require.True(t, m.HasEdge(a, b), "constraint %d goes through missing edge %v-%v", c, a, b)
			require.Contains(t, m.edgeConstraints[SortedVertexPair(a, b)], Constraint(c))
		}
		require.Equal(t, r.ends[0], r.chain[0])
		require.Equal(t, r.ends[1], r.chain[len(r.chain)-1])
	}

	for _, e := range m.FiniteEdges() {
		if m.IsConstrained(e[0], e[1]) || !m.flippable(e[0], e[1]) {
			continue
		}
		_, c, _ := m.apex(e[0], e[1])
		_, d, _ := m.apex(e[1], e[0])
		require.NotEqual(t, 1,
			geometry.InCircle(m.points[e[0]], m.points[e[1]], m.points[c], m.points[d]),
			"edge %v is not Delaunay", e)
	}
}

func triangleArea(a, b, c orb.Point) float64 {
	return ((b[0]-a[0])*(c[1]-a[1]) - (c[0]-a[0])*(b[1]-a[1])) / 2
}

func assertBasicCounts(t *testing.T, m *Mesh, vertices, faces, edges, constrained int) {
	t.Helper()
	require.Equal(t, vertices, m.NumberOfVertices(), "vertices")
	require.Equal(t, faces, m.NumberOfFaces(), "faces")
	require.Len(t, m.FiniteEdges(), edges, "edges")
	require.Len(t, m.ConstrainedEdges(), constrained, "constrained edges")
}

func rect(x0, y0, x1, y1 float64) []orb.Point {
	return []orb.Point{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}}
}

func reversed(points []orb.Point) []orb.Point {
	out := make([]orb.Point, len(points))
	for i, p := range points {
		out[len(points)-1-i] = p
	}
	return out
}

func (m *Mesh) vertexAt(t *testing.T, p orb.Point) Vertex {
	t.Helper()
	v, ok := m.byPoint[p]
	require.True(t, ok, "no vertex at %v", p)
	return v
}
