package mesh

import (
	"hash/fnv"
	"math"
	"os"
	"path/filepath"

	"github.com/fogleman/gg"
	imgcat "github.com/martinlindhe/imgcat/lib"
	"github.com/osuushi/altimetry/datamodel"
)

// This is for debugging purposes only

const dbgDrawPadding = 100

type faceColorer func(f Face) (r, g, b float64)

// DrawPNG renders the finite faces and edges of the mesh. Constrained edges
// are red.
func (m *Mesh) DrawPNG(path string, scale float64) error {
	return m.drawPNG(path, scale, func(Face) (float64, float64, float64) {
		return 0, 0.5, 0
	})
}

// DrawPNG colors each face after its material. Unlabeled faces are gray.
func (m *MaterialMesh) DrawPNG(path string, scale float64) error {
	return m.drawPNG(path, scale, func(f Face) (float64, float64, float64) {
		material, ok := m.MaterialByFace(f)
		if !ok {
			return 0.3, 0.3, 0.3
		}
		return materialColor(material)
	})
}

func materialColor(material datamodel.GroundMaterial) (float64, float64, float64) {
	switch material {
	case datamodel.MaterialWater:
		return 0, 0.3, 0.8
	case datamodel.MaterialHidden:
		return 0, 0, 0
	}
	h := fnv.New32a()
	h.Write([]byte(material))
	sum := h.Sum32()
	return float64(sum&0xff) / 255, float64(sum>>8&0xff) / 255, float64(sum>>16&0xff) / 255
}

func (m *Mesh) drawPNG(path string, scale float64, color faceColorer) error {
	var minX, minY, maxX, maxY float64
	minX = math.Inf(1)
	minY = math.Inf(1)
	maxX = math.Inf(-1)
	maxY = math.Inf(-1)
	for _, p := range m.points[1:] {
		minX = math.Min(minX, p[0])
		minY = math.Min(minY, p[1])
		maxX = math.Max(maxX, p[0])
		maxY = math.Max(maxY, p[1])
	}
	if len(m.points) < 2 {
		minX, minY, maxX, maxY = 0, 0, 0, 0
	}

	// Set up the context
	width := int(scale*(maxX-minX)) + dbgDrawPadding*2
	height := int(scale*(maxY-minY)) + dbgDrawPadding*2
	c := gg.NewContext(width, height)
	c.SetRGB(0, 0, 0)
	c.DrawRectangle(0, 0, float64(width), float64(height))
	c.Fill()

	// Flip the context so the origin is at the bottom left
	c.Translate(0, float64(height))
	c.Scale(1, -1)

	// Translate for padding
	c.Translate(dbgDrawPadding, dbgDrawPadding)
	// Scale
	c.Scale(scale, scale)
	// Translate to min
	c.Translate(-minX, -minY)

	c.SetLineWidth(2)
	for _, f := range m.FiniteFaces() {
		r := m.faces[f]
		c.MoveTo(m.points[r.v[0]][0], m.points[r.v[0]][1])
		c.LineTo(m.points[r.v[1]][0], m.points[r.v[1]][1])
		c.LineTo(m.points[r.v[2]][0], m.points[r.v[2]][1])
		c.ClosePath()
		c.SetRGB(color(f))
		c.FillPreserve()
		c.SetRGB(0, 1, 1)
		c.Stroke()
	}

	// Collinear meshes have edges but no faces
	c.SetRGB(0, 1, 1)
	for _, e := range m.FiniteEdges() {
		if m.dimension == 1 {
			c.DrawLine(m.points[e[0]][0], m.points[e[0]][1], m.points[e[1]][0], m.points[e[1]][1])
			c.Stroke()
		}
	}

	c.SetRGB(1, 0, 0)
	c.SetLineWidth(4)
	for _, e := range m.ConstrainedEdges() {
		c.DrawLine(m.points[e[0]][0], m.points[e[0]][1], m.points[e[1]][0], m.points[e[1]][1])
		c.Stroke()
	}

	c.SetRGB(1, 1, 0)
	for _, p := range m.points[1:] {
		c.DrawCircle(p[0], p[1], 3/scale)
		c.Fill()
	}

	return c.SavePNG(path)
}

// dbgShow draws the mesh in the terminal when RUN_VISUAL_TESTS is set.
func dbgShow(name string, draw func(path string) error) {
	if os.Getenv("RUN_VISUAL_TESTS") == "" {
		return
	}
	path := filepath.Join(os.TempDir(), name+".png")
	if err := draw(path); err != nil {
		return
	}
	imgcat.CatFile(path, os.Stdout)
}
