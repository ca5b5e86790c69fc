package builder

import (
	"github.com/osuushi/altimetry/datamodel"
	"github.com/osuushi/altimetry/mesh"
)

// MeshData is the ground mesh handed over to the acoustic solver.
type MeshData struct {
	// x, y and altitude of every vertex. The altitude is NaN where no level
	// curve gave any.
	Vertices [][3]float64
	// Counterclockwise triangles, as indices in Vertices
	Faces [][3]int
	// Distinct materials of the faces, in order of first use
	Materials []datamodel.GroundMaterial
	// Index in Materials of the material of each face
	FaceMaterials []int
}

// BuildMeshData exports the material mesh. Faces out of the root site have
// the default material.
func (b *Builder) BuildMeshData() *MeshData {
	m := b.materials
	data := &MeshData{}
	index := make(map[mesh.Vertex]int)
	for _, v := range m.FiniteVertices() {
		p := m.Point(v)
		index[v] = len(data.Vertices)
		data.Vertices = append(data.Vertices, [3]float64{p[0], p[1], m.AltitudeForInputVertex(v)})
	}

	materialIndex := make(map[datamodel.GroundMaterial]int)
	for _, f := range m.FiniteFaces() {
		vertices := m.FaceVertices(f)
		data.Faces = append(data.Faces, [3]int{index[vertices[0]], index[vertices[1]], index[vertices[2]]})

		material, ok := m.MaterialByFace(f)
		if !ok {
			material = datamodel.MaterialDefault
		}
		i, seen := materialIndex[material]
		if !seen {
			i = len(data.Materials)
			materialIndex[material] = i
			data.Materials = append(data.Materials, material)
		}
		data.FaceMaterials = append(data.FaceMaterials, i)
	}
	return data
}

// FaceMaterial returns the material of the i-th face.
func (d *MeshData) FaceMaterial(i int) datamodel.GroundMaterial {
	return d.Materials[d.FaceMaterials[i]]
}
