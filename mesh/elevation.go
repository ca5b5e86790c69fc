package mesh

import (
	"math"

	"github.com/osuushi/altimetry/geometry"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

// UnspecifiedAltitude is the altitude of points outside of the mesh, and of
// vertices nothing gave an altitude to.
var UnspecifiedAltitude = math.NaN()

func IsUnspecifiedAltitude(z float64) bool {
	return math.IsNaN(z)
}

var ErrMissingAltitude = errors.New("missing altitude")

// ElevationMesh interpolates the altitudes of its vertices. Vertices may lack
// an altitude until UpdateAltitudeFromReference fills them.
type ElevationMesh struct {
	*Mesh
}

func NewElevationMesh(opts ...Option) *ElevationMesh {
	return &ElevationMesh{New(opts...)}
}

func (m *Mesh) CopyAsElevationMesh() *ElevationMesh {
	return &ElevationMesh{m.Copy()}
}

func (m *ElevationMesh) Copy() *ElevationMesh {
	return m.Mesh.CopyAsElevationMesh()
}

// VertexInfo is the current info of the vertex: its input info until
// UpdateInfoForVertices merges in the constraints around it.
func (m *ElevationMesh) VertexInfo(v Vertex) Info {
	return m.vertexInfo[v]
}

func (m *ElevationMesh) AltitudeForInputVertex(v Vertex) float64 {
	if z, ok := m.vertexInfo[v].Altitude(); ok {
		return z
	}
	return UnspecifiedAltitude
}

// PointAltitude interpolates the altitude at p: linearly along an edge,
// barycentrically inside a face.
func (m *ElevationMesh) PointAltitude(p orb.Point) (z float64) {
	defer func() {
		if HandleAltimetryPanicRecover(recover()) != nil {
			z = UnspecifiedAltitude
		}
	}()
	if m.dimension < 2 {
		if v, ok := m.byPoint[p]; ok {
			return m.AltitudeForInputVertex(v)
		}
		return UnspecifiedAltitude
	}
	loc := m.locate(p)
	switch loc.Type {
	case OnVertex:
		return m.AltitudeForInputVertex(loc.Vertex)
	case OnEdge:
		pair := m.verticesPair(loc.Edge)
		s := geometry.Segment{Start: m.points[pair[0]], End: m.points[pair[1]]}
		za, zb := m.AltitudeForInputVertex(pair[0]), m.AltitudeForInputVertex(pair[1])
		t := s.Param(p)
		return za + t*(zb-za)
	case InFace:
		return m.interpolateInFace(loc.Face, p)
	}
	return UnspecifiedAltitude
}

func (m *ElevationMesh) interpolateInFace(f Face, p orb.Point) float64 {
	r := m.faces[f]
	a, b, c := vec(m.points[r.v[0]]), vec(m.points[r.v[1]]), vec(m.points[r.v[2]])
	q := vec(p)
	area := b.Sub(a).Cross(c.Sub(a))
	wa := b.Sub(q).Cross(c.Sub(q)) / area
	wb := c.Sub(q).Cross(a.Sub(q)) / area
	wc := 1 - wa - wb
	return wa*m.AltitudeForInputVertex(r.v[0]) +
		wb*m.AltitudeForInputVertex(r.v[1]) +
		wc*m.AltitudeForInputVertex(r.v[2])
}

// UpdateInfoForVertices merges the altitude and origins of the constraints
// around each vertex into the vertex info. All vertices are updated when none
// are given.
func (m *ElevationMesh) UpdateInfoForVertices(vertices ...Vertex) error {
	if len(vertices) == 0 {
		vertices = m.FiniteVertices()
	}
	restricted := func(acc, next Info) (Info, error) {
		return m.policy.Merge(acc, next.Only(KeyAltitude, KeyOrigin))
	}
	merged, err := m.MergeInfoForVertices(restricted, vertices...)
	if err != nil {
		return err
	}
	for v, info := range merged {
		m.vertexInfo[v] = info
	}
	return nil
}

// UpdateAltitudeFromReference gives every vertex without altitude the
// altitude reference returns for its position. It returns the vertices which
// still lack one.
func (m *ElevationMesh) UpdateAltitudeFromReference(reference func(orb.Point) float64) []Vertex {
	var missing []Vertex
	for _, v := range m.FiniteVertices() {
		if _, ok := m.vertexInfo[v].Altitude(); ok {
			continue
		}
		z := reference(m.points[v])
		if IsUnspecifiedAltitude(z) {
			missing = append(missing, v)
			continue
		}
		info := m.vertexInfo[v].Clone()
		if info == nil {
			info = make(Info)
		}
		info[KeyAltitude] = Float(z)
		m.vertexInfo[v] = info
	}
	return missing
}

// ReferenceElevationMesh only takes inputs which carry an altitude.
type ReferenceElevationMesh struct {
	*ElevationMesh
}

func NewReferenceElevationMesh(opts ...Option) *ReferenceElevationMesh {
	return &ReferenceElevationMesh{NewElevationMesh(opts...)}
}

func (m *ReferenceElevationMesh) Copy() *ReferenceElevationMesh {
	return &ReferenceElevationMesh{m.ElevationMesh.Copy()}
}

func requireAltitude(info Info) error {
	if _, ok := info.Altitude(); !ok {
		return errors.Wrapf(ErrMissingAltitude, "info %s", info)
	}
	return nil
}

func (m *ReferenceElevationMesh) InsertPoint(p orb.Point, info Info) (Vertex, error) {
	if err := requireAltitude(info); err != nil {
		return NoVertex, err
	}
	return m.Mesh.InsertPoint(p, info)
}

func (m *ReferenceElevationMesh) InsertPolyline(points []orb.Point, info Info, opts ...PolylineOption) ([]Vertex, []Constraint, error) {
	if err := requireAltitude(info); err != nil {
		return nil, nil, err
	}
	return m.Mesh.InsertPolyline(points, info, opts...)
}
