// Package builder turns a site tree into a ground mesh: a triangulation with
// an altitude on every vertex and a ground material on every face.
//
// The site tree is first merged into a flat set of features. Level curves
// then go into a reference elevation mesh, which is copied as the material
// mesh where material areas and landtakes are inserted. Altitudes of the new
// vertices are interpolated on the reference mesh, and faces are labeled by
// flooding the inside of every material polygon.
package builder

import (
	"github.com/osuushi/altimetry/datamodel"
	"github.com/osuushi/altimetry/geometry"
	"github.com/osuushi/altimetry/merge"
	"github.com/osuushi/altimetry/mesh"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type Builder struct {
	cfg     Config
	log     logrus.FieldLogger
	cleaner *merge.Cleaner

	alti      *mesh.ReferenceElevationMesh
	materials *mesh.MaterialMesh

	// Vertices of the exterior rings inserted in the material mesh
	boundary      []mesh.Vertex
	areaRings     map[string][]mesh.Vertex
	landtakeRings map[string][]mesh.Vertex
}

// New merges the site tree under root.
func New(root *datamodel.SiteNode, cfg Config) (*Builder, error) {
	log := cfg.logger().WithField("site", root.ID())
	cleaner, err := merge.RecursivelyMergeAllSubsites(root,
		merge.WithLogger(cfg.logger()),
		merge.AllowOutside(cfg.AllowOutside))
	if err != nil {
		return nil, err
	}
	return &Builder{
		cfg:           cfg,
		log:           log,
		cleaner:       cleaner,
		alti:          mesh.NewReferenceElevationMesh(),
		areaRings:     make(map[string][]mesh.Vertex),
		landtakeRings: make(map[string][]mesh.Vertex),
	}, nil
}

func (b *Builder) Cleaner() *merge.Cleaner { return b.cleaner }

func (b *Builder) AltitudeMesh() *mesh.ReferenceElevationMesh { return b.alti }

// MaterialMesh is nil until InsertMaterialFeatures ran.
func (b *Builder) MaterialMesh() *mesh.MaterialMesh { return b.materials }

func origin(id string) mesh.Info {
	return mesh.Info{mesh.KeyOrigin: mesh.IDs(id)}
}

// InsertAltitudeFeatures inserts the cleaned level curves, site landtakes
// and water bodies in the altitude mesh.
func (b *Builder) InsertAltitudeFeatures() error {
	for _, id := range b.cleaner.IDs() {
		f, _ := b.cleaner.FeatureFromID(id)
		curve, ok := f.(datamodel.AltitudeFeature)
		if !ok {
			continue
		}
		info := origin(id)
		info[mesh.KeyAltitude] = mesh.Float(curve.Altitude())

		g, _ := b.cleaner.Geom(id)
		for _, line := range linesOf(g) {
			points, closed := openLine(line)
			var opts []mesh.PolylineOption
			if closed {
				opts = append(opts, mesh.CloseIt())
			}
			if _, _, err := b.alti.InsertPolyline(points, info, opts...); err != nil {
				return errors.Wrapf(err, "inserting %s", f.Name())
			}
		}
		b.log.WithFields(logrus.Fields{"feature": id, "kind": f.Kind()}).Debug("altitude feature inserted")
	}
	return nil
}

// MergeAltitudeInfo gives every vertex of the altitude mesh the altitude of
// the constraints going through it.
func (b *Builder) MergeAltitudeInfo() error {
	return b.alti.UpdateInfoForVertices()
}

// InsertMaterialFeatures copies the altitude mesh as the material mesh, and
// inserts in it the boundary of the root site, the material areas and the
// infrastructure landtakes. The new vertices get their altitude from the
// altitude mesh.
func (b *Builder) InsertMaterialFeatures() error {
	b.materials = b.alti.CopyAsMaterialMesh()
	root := b.cleaner.Site()

	info := origin(root.ID())
	info[mesh.KeyMaterial] = mesh.String(datamodel.MaterialDefault)
	vertices, err := b.insertPolygon(root.Polygon(), info)
	if err != nil {
		return errors.Wrapf(err, "inserting the boundary of %s", root.Name())
	}
	b.boundary = vertices

	for _, id := range b.cleaner.MaterialAreasInnerFirst() {
		vertices, err := b.insertMaterialFeature(id)
		if err != nil {
			return err
		}
		b.areaRings[id] = vertices
	}
	for _, id := range b.landtakeIDs() {
		vertices, err := b.insertMaterialFeature(id)
		if err != nil {
			return err
		}
		b.landtakeRings[id] = vertices
	}
	b.updateAltitudes()
	return nil
}

func (b *Builder) landtakeIDs() []string {
	var ids []string
	for _, id := range b.cleaner.IDs() {
		if f, _ := b.cleaner.FeatureFromID(id); f.Kind() == datamodel.KindInfrastructureLandtake {
			ids = append(ids, id)
		}
	}
	return ids
}

func (b *Builder) insertMaterialFeature(id string) ([]mesh.Vertex, error) {
	f, _ := b.cleaner.FeatureFromID(id)
	area, ok := f.(datamodel.MaterialFeature)
	if !ok {
		return nil, errors.Errorf("%s has no material", f)
	}
	g, _ := b.cleaner.Geom(id)
	poly, ok := g.(orb.Polygon)
	if !ok {
		return nil, errors.Errorf("%s is not a polygon but a %T", f, g)
	}
	info := origin(id)
	info[mesh.KeyMaterial] = mesh.String(area.Material())
	vertices, err := b.insertPolygon(poly, info)
	if err != nil {
		return nil, errors.Wrapf(err, "inserting %s", f.Name())
	}
	b.log.WithFields(logrus.Fields{"feature": id, "kind": f.Kind()}).Debug("material feature inserted")
	return vertices, nil
}

// insertPolygon inserts every ring of the polygon and returns the vertices of
// its exterior.
func (b *Builder) insertPolygon(poly orb.Polygon, info mesh.Info) ([]mesh.Vertex, error) {
	var exterior []mesh.Vertex
	for i, ring := range poly {
		points, _ := openLine(orb.LineString(ring))
		vertices, _, err := b.materials.InsertPolyline(points, info, mesh.CloseIt())
		if err != nil {
			return nil, err
		}
		if i == 0 {
			exterior = vertices
		}
	}
	return exterior, nil
}

func (b *Builder) updateAltitudes() {
	missing := b.materials.UpdateAltitudeFromReference(b.alti.PointAltitude)
	if len(missing) > 0 {
		b.log.WithField("vertices", len(missing)).Warn("no reference altitude for some vertices")
	}
}

// Refine refines the material mesh when the configuration asks for it. The
// inside of infrastructure landtakes is left alone.
func (b *Builder) Refine() error {
	if !b.cfg.Refine {
		return nil
	}
	var seeds []orb.Point
	for _, id := range b.landtakeIDs() {
		g, _ := b.cleaner.Geom(id)
		if p, ok := geometry.InteriorPoint(g.(orb.Polygon)); ok {
			seeds = append(seeds, p)
		}
	}
	inserted, err := b.materials.RefineMesh(mesh.RefineOptions{
		HoleSeeds:      seeds,
		SizeCriterion:  b.cfg.SizeCriterion,
		ShapeCriterion: b.cfg.ShapeCriterion,
		MaxSteps:       b.cfg.MaxSteps,
	})
	if err != nil {
		return errors.Wrap(err, "refining the material mesh")
	}
	b.log.WithField("vertices", inserted).Debug("mesh refined")
	b.updateAltitudes()
	return nil
}

// ComputeMaterials labels every face inside the root site. The default
// material comes first, then material areas from the outermost one inward,
// and landtakes last. A later label replaces an earlier one.
func (b *Builder) ComputeMaterials() error {
	m := b.materials
	m.ClearMaterials()
	m.UpdateInfoForEdges()

	flooder, err := m.FloodPolygon(mesh.NewMaterialFaceFlooder, b.boundary, true, false)
	if err != nil {
		return errors.Wrap(err, "flooding the site")
	}
	m.LabelFaces(flooder, datamodel.MaterialDefault)

	areas := b.cleaner.MaterialAreasInnerFirst()
	for i := len(areas) - 1; i >= 0; i-- {
		id := areas[i]
		f, _ := b.cleaner.FeatureFromID(id)
		flooder, err := m.FloodPolygon(mesh.NewMaterialFaceFlooder, b.areaRings[id], true, false)
		if err != nil {
			return errors.Wrapf(err, "flooding %s", f.Name())
		}
		m.LabelFaces(flooder, f.(datamodel.MaterialFeature).Material())
	}

	for _, id := range b.landtakeIDs() {
		flooder, err := m.FloodPolygon(mesh.NewLandtakeFaceFlooder, b.landtakeRings[id], true, false)
		if err != nil {
			return errors.Wrapf(err, "flooding landtake %s", id)
		}
		m.LabelFaces(flooder, datamodel.MaterialHidden)
	}
	return nil
}

// CompleteProcessing runs every step and returns the resulting mesh data.
func (b *Builder) CompleteProcessing() (*MeshData, error) {
	steps := []struct {
		name string
		run  func() error
	}{
		{"inserting altitude features", b.InsertAltitudeFeatures},
		{"merging altitude info", b.MergeAltitudeInfo},
		{"inserting material features", b.InsertMaterialFeatures},
		{"refining", b.Refine},
		{"computing materials", b.ComputeMaterials},
	}
	for _, step := range steps {
		if err := step.run(); err != nil {
			return nil, errors.Wrap(err, step.name)
		}
	}
	data := b.BuildMeshData()
	b.log.WithFields(logrus.Fields{
		"vertices": len(data.Vertices),
		"faces":    len(data.Faces),
	}).Info("mesh built")
	return data, nil
}

func linesOf(g orb.Geometry) []orb.LineString {
	switch g := g.(type) {
	case orb.LineString:
		return []orb.LineString{g}
	case orb.MultiLineString:
		return g
	case orb.Ring:
		return []orb.LineString{orb.LineString(g)}
	case orb.Polygon:
		if len(g) > 0 {
			return []orb.LineString{orb.LineString(g[0])}
		}
	}
	return nil
}

// openLine drops the repeated end point of a closed line.
func openLine(line orb.LineString) ([]orb.Point, bool) {
	if len(line) > 3 && line[0] == line[len(line)-1] {
		return line[:len(line)-1], true
	}
	return line, false
}
