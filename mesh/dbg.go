package mesh

import (
	"fmt"
	"strings"

	"github.com/logrusorgru/aurora"
	"github.com/osuushi/altimetry/dbg"
)

type dbgHandle struct {
	mesh *Mesh
	face Face
}

// DbgName gives the face a readable name: cyan for infinite faces, red for
// dead ones, green otherwise.
func (m *Mesh) DbgName(f Face) string {
	name := dbg.Name(dbgHandle{m, f})
	switch {
	case !m.IsAlive(f):
		name = aurora.Red(name).String()
	case m.IsInfinite(f):
		name = aurora.Cyan(name).String()
	default:
		name = aurora.Green(name).String()
	}
	return name
}

// DbgString dumps the vertices, live faces and constraints of the mesh.
func (m *Mesh) DbgString() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Mesh of dimension %d: %d vertices, %d finite faces\n",
		m.dimension, m.NumberOfVertices(), m.NumberOfFaces())
	for _, v := range m.FiniteVertices() {
		fmt.Fprintf(&b, "  %v %v %s\n", v, m.points[v], m.vertexInfo[v])
	}
	for f := range m.faces {
		if !m.faces[f].alive {
			continue
		}
		r := m.faces[f]
		fmt.Fprintf(&b, "  %s %v (%v, %v, %v)\n", m.DbgName(Face(f)), Face(f), r.v[0], r.v[1], r.v[2])
	}
	for c, r := range m.constraints {
		fmt.Fprintf(&b, "  c%d %v→%v via %v %s\n", c, r.ends[0], r.ends[1], r.chain, r.info)
	}
	return b.String()
}
