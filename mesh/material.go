package mesh

import (
	"sort"

	"github.com/osuushi/altimetry/datamodel"
	"github.com/paulmach/orb"
)

// EdgeInfo sums up the constraints going through an edge.
type EdgeInfo struct {
	// Some constraint through the edge bounds a material area
	MaterialBoundary bool
	// Some constraint through the edge bounds an infrastructure landtake
	LandtakeBoundary bool
	Materials        []datamodel.GroundMaterial
}

// MaterialMesh labels its faces with the ground material covering them.
type MaterialMesh struct {
	*ElevationMesh

	edgesInfo     map[VertexPair]EdgeInfo
	edgesVersion  int
	faceMaterials map[Face]datamodel.GroundMaterial
}

func NewMaterialMesh(opts ...Option) *MaterialMesh {
	return &MaterialMesh{ElevationMesh: NewElevationMesh(opts...)}
}

func (m *Mesh) CopyAsMaterialMesh() *MaterialMesh {
	return &MaterialMesh{ElevationMesh: m.CopyAsElevationMesh()}
}

func (m *MaterialMesh) Copy() *MaterialMesh {
	c := m.Mesh.CopyAsMaterialMesh()
	if m.edgesInfo != nil {
		c.edgesInfo = make(map[VertexPair]EdgeInfo, len(m.edgesInfo))
		for pair, info := range m.edgesInfo {
			info.Materials = append([]datamodel.GroundMaterial(nil), info.Materials...)
			c.edgesInfo[pair] = info
		}
		c.edgesVersion = m.edgesVersion
	}
	if m.faceMaterials != nil {
		c.faceMaterials = make(map[Face]datamodel.GroundMaterial, len(m.faceMaterials))
		for f, material := range m.faceMaterials {
			c.faceMaterials[f] = material
		}
	}
	return c
}

// InsertPolyline only records the origin of the polyline on its vertices, so
// that areas of different materials may share vertices. The constraints carry
// the whole info.
func (m *MaterialMesh) InsertPolyline(points []orb.Point, info Info, opts ...PolylineOption) ([]Vertex, []Constraint, error) {
	return m.insertPolyline(points, info.Only(KeyOrigin), info, opts...)
}

// UpdateInfoForEdges computes the EdgeInfo of every constrained edge.
func (m *MaterialMesh) UpdateInfoForEdges() {
	m.edgesInfo = make(map[VertexPair]EdgeInfo, len(m.edgeConstraints))
	for pair := range m.edgeConstraints {
		var edge EdgeInfo
		seen := make(map[datamodel.GroundMaterial]bool)
		for _, info := range m.ConstraintInfosOverlapping(pair) {
			material, ok := info.Material()
			if !ok {
				continue
			}
			edge.MaterialBoundary = true
			if material == datamodel.MaterialHidden {
				edge.LandtakeBoundary = true
			}
			if !seen[material] {
				seen[material] = true
				edge.Materials = append(edge.Materials, material)
			}
		}
		sort.Slice(edge.Materials, func(i, j int) bool { return edge.Materials[i] < edge.Materials[j] })
		m.edgesInfo[pair] = edge
	}
	m.edgesVersion = m.version
}

// EdgeInfo of the edge between a and b. Edges with no constraint have a zero
// EdgeInfo.
func (m *MaterialMesh) EdgeInfo(a, b Vertex) EdgeInfo {
	m.ensureEdgesInfo()
	return m.edgesInfo[SortedVertexPair(a, b)]
}

func (m *MaterialMesh) ensureEdgesInfo() {
	if m.edgesInfo == nil || m.edgesVersion != m.version {
		m.UpdateInfoForEdges()
	}
}

// FlooderFactory builds the flooder FloodPolygon runs.
type FlooderFactory func(*MaterialMesh) *FaceFlooder

// FloodPolygon floods the faces on one side of the input polyline through
// the vertices, starting from the faces along it.
func (m *MaterialMesh) FloodPolygon(factory FlooderFactory, vertices []Vertex, closeIt, floodRight bool) (*FaceFlooder, error) {
	pairs, err := m.IterFacesForInputPolyline(vertices, closeIt)
	if err != nil {
		return nil, err
	}
	left, right := LeftAndRightFaces(pairs)
	seeds := left
	if floodRight {
		seeds = right
	}
	m.ensureEdgesInfo()
	flooder := factory(m)
	flooder.FloodFrom(seeds...)
	return flooder, nil
}

// LabelFaces gives the material to every face the flooder visited, replacing
// any earlier label.
func (m *MaterialMesh) LabelFaces(flooder *FaceFlooder, material datamodel.GroundMaterial) {
	if m.faceMaterials == nil {
		m.faceMaterials = make(map[Face]datamodel.GroundMaterial)
	}
	for f := range flooder.Visited {
		m.faceMaterials[f] = material
	}
}

func (m *MaterialMesh) MaterialByFace(f Face) (datamodel.GroundMaterial, bool) {
	material, ok := m.faceMaterials[f]
	return material, ok
}

// ClearMaterials forgets the labels, which refer to faces replaced by any
// later change of the mesh.
func (m *MaterialMesh) ClearMaterials() {
	m.faceMaterials = nil
}
