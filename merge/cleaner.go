// Package merge flattens a tree of sites into one consistent set of features.
//
// A Cleaner works on one site. It computes the shape of the site with its
// subsites punched out, clips the level curves of the site to it, and checks
// that polygonal features neither cross it nor lie outside of it. Material
// areas are kept sorted so that an area always comes before the areas
// containing it.
//
// RecursivelyMergeAllSubsites cleans every site of the tree and merges the
// results into the cleaner of the root site.
package merge

import (
	"github.com/osuushi/altimetry/datamodel"
	"github.com/osuushi/altimetry/geometry"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type Cleaner struct {
	site      *datamodel.SiteNode
	siteShape orb.Polygon
	opts      Options
	log       logrus.FieldLogger

	geom     map[string]orb.Geometry
	features map[string]datamodel.Feature
	// Ids in the order they were first seen
	order []string

	sortedMaterialAreas []string

	// Ids of the polygonal features lying entirely out of the site
	IgnoredFeatures []string
	// Ids of the polygonal features crossing the boundary of the site
	ErroneousOverlap []string
}

func NewCleaner(site *datamodel.SiteNode, opts ...Option) (*Cleaner, error) {
	o := newOptions(opts)
	shape, err := BuildSiteShapeWithHole(site)
	if err != nil {
		return nil, err
	}
	return &Cleaner{
		site:      site,
		siteShape: shape,
		opts:      o,
		log:       o.Logger.WithField("site", site.ID()),
		geom:      make(map[string]orb.Geometry),
		features:  make(map[string]datamodel.Feature),
	}, nil
}

// BuildSiteShapeWithHole returns the polygon of the site with one hole per
// direct subsite. Subsites must be strictly inside the site and must not
// overlap each other.
func BuildSiteShapeWithHole(site *datamodel.SiteNode) (orb.Polygon, error) {
	if err := site.EnsureValid(); err != nil {
		return nil, err
	}
	poly := site.Polygon()
	if len(poly) > 1 {
		return nil, datamodel.NewInconsistency("The site %s is not expected to already have holes", site.Name()).
			WithIDs(site.ID())
	}

	shape := orb.Polygon{poly[0]}
	subsites := site.Subsites()
	for _, sub := range subsites {
		if err := sub.EnsureValid(); err != nil {
			return nil, err
		}
		rel := geometry.RelatePolygons(sub.Polygon(), poly)
		if !rel.Within || rel.BoundariesMeet {
			return nil, datamodel.NewInconsistency("%s is not strictly contained in %s", sub.Name(), site.Name()).
				WithIDs(sub.ID())
		}
		shape = append(shape, sub.Polygon()[0])
	}
	for i, a := range subsites {
		for _, b := range subsites[i+1:] {
			if geometry.RelatePolygons(a.Polygon(), b.Polygon()).InteriorsIntersect {
				return nil, datamodel.NewInconsistency("The sites %s and %s of %s overlap", a.Name(), b.Name(), site.Name()).
					WithIDs(a.ID(), b.ID())
			}
		}
	}
	return geometry.NormalizePolygon(shape), nil
}

func (c *Cleaner) Site() *datamodel.SiteNode { return c.site }

// SiteShape is the polygon of the site with its subsites as holes.
func (c *Cleaner) SiteShape() orb.Polygon { return c.siteShape }

func (c *Cleaner) Geom(id string) (orb.Geometry, bool) {
	g, ok := c.geom[id]
	return g, ok
}

// FeatureFromID returns the original feature behind a cleaned geometry.
func (c *Cleaner) FeatureFromID(id string) (datamodel.Feature, bool) {
	f, ok := c.features[id]
	return f, ok
}

// Get returns the cleaned geometry of a feature along with the properties of
// the original feature.
func (c *Cleaner) Get(id string) (orb.Geometry, geojson.Properties, bool) {
	g, ok := c.geom[id]
	if !ok {
		return nil, nil, false
	}
	return g, c.features[id].Properties(), true
}

// IDs lists the ids of every cleaned feature, in the order they were added.
func (c *Cleaner) IDs() []string {
	return append([]string(nil), c.order...)
}

// MaterialAreasInnerFirst lists the ids of the material areas so that an area
// always comes before the areas containing it.
func (c *Cleaner) MaterialAreasInnerFirst() []string {
	return append([]string(nil), c.sortedMaterialAreas...)
}

func (c *Cleaner) featureLog(f datamodel.Feature) logrus.FieldLogger {
	return c.log.WithFields(logrus.Fields{"feature": f.ID(), "kind": f.Kind()})
}

func (c *Cleaner) addFeatureWithNewShape(f datamodel.Feature, shape orb.Geometry) error {
	id := f.ID()
	if existing, ok := c.geom[id]; ok {
		if !orb.Equal(existing, shape) {
			return datamodel.NewInconsistency("ID %s is already associated to a different shape", id).WithIDs(id)
		}
	} else {
		c.order = append(c.order, id)
	}
	c.geom[id] = shape
	c.features[id] = f
	return nil
}

func (c *Cleaner) requireID(f datamodel.Feature) error {
	if f.ID() == "" {
		return datamodel.NewInconsistency("%s of site %s has no id", f.Kind(), c.site.Name())
	}
	return nil
}

func (c *Cleaner) notContained(f datamodel.Feature) error {
	return datamodel.NewInconsistency(
		"%s is not strictly contained in its site %s (an element of a site must not extend over its subsites)",
		f.Name(), c.site.Name()).WithIDs(f.ID())
}

func (c *Cleaner) outside(f datamodel.Feature) error {
	return datamodel.NewInconsistency(
		"%s lies entirely outside its site %s (an element of a site must not extend over its subsites)",
		f.Name(), c.site.Name()).WithIDs(f.ID())
}

// ProcessSubsitesLandtakes checks that the direct subsites of the site lie
// inside it and do not overlap each other.
func (c *Cleaner) ProcessSubsitesLandtakes() error {
	site := c.site.Polygon()
	subsites := c.site.Subsites()
	for _, sub := range subsites {
		rel := geometry.RelatePolygons(sub.Polygon(), site)
		if rel.Overlaps() {
			return datamodel.NewInconsistency("%s is not strictly contained in %s", sub.Name(), c.site.Name()).WithIDs(sub.ID())
		}
		if rel.Disjoint() {
			return datamodel.NewInconsistency("%s lies entirely outside %s", sub.Name(), c.site.Name()).WithIDs(sub.ID())
		}
	}
	for i, a := range subsites {
		for _, b := range subsites[i+1:] {
			if geometry.RelatePolygons(a.Polygon(), b.Polygon()).Overlaps() {
				return datamodel.NewInconsistency("The sites %s and %s of %s overlap", a.Name(), b.Name(), c.site.Name()).
					WithIDs(a.ID(), b.ID())
			}
		}
	}
	return nil
}

// ProcessLevelCurves clips every level curve of the site to the site shape.
// A curve crossing the boundary of the site, or lying entirely out of it, is
// an error. Water bodies keep their polygon.
func (c *Cleaner) ProcessLevelCurves() error {
	landtakes := 0
	for _, curve := range c.site.LevelCurves() {
		if err := c.requireID(curve); err != nil {
			return err
		}
		if curve.Kind() == datamodel.KindSiteLandtake {
			landtakes++
			if landtakes > 1 {
				return datamodel.NewInconsistency("No more than one site landtake is allowed in %s", c.site.Name()).
					WithIDs(curve.ID())
			}
		}
		if err := curve.EnsureValid(); err != nil {
			return err
		}

		var shape orb.Geometry
		if water, ok := curve.(*datamodel.WaterBody); ok {
			if geometry.RelatePolygons(water.Polygon(), c.siteShape).Disjoint() {
				return c.outside(curve)
			}
			// Overlaps with other areas are rejected by ProcessMaterialAreas
			shape = water.Polygon()
		} else {
			rel := geometry.RelateLine(c.siteShape, curve.Lines()...)
			if rel.Crosses() {
				return c.notContained(curve)
			}
			if rel.Disjoint() {
				return c.outside(curve)
			}
			shape = geometry.ClipLine(c.siteShape, curve.Lines()...)
		}
		if err := c.addFeatureWithNewShape(curve, shape); err != nil {
			return err
		}
		c.featureLog(curve).Debug("level curve accepted")
	}
	return nil
}

// addOrRejectPolygonalFeature accepts a polygonal feature unchanged when it
// lies in the site shape. Features overlapping the boundary, or entirely out
// of the site, are recorded in ErroneousOverlap or IgnoredFeatures, and
// rejected with an error.
func (c *Cleaner) addOrRejectPolygonalFeature(f datamodel.PolygonalFeature) error {
	if err := c.requireID(f); err != nil {
		return err
	}
	if err := f.EnsureValid(); err != nil {
		return err
	}
	rel := geometry.RelatePolygons(f.Polygon(), c.siteShape)
	if rel.Overlaps() {
		c.ErroneousOverlap = append(c.ErroneousOverlap, f.ID())
		c.featureLog(f).Debug("feature overlaps the site boundary")
		return c.notContained(f)
	}
	if rel.Disjoint() {
		c.IgnoredFeatures = append(c.IgnoredFeatures, f.ID())
		c.featureLog(f).Debug("feature lies outside the site")
		return c.outside(f)
	}
	if err := c.addFeatureWithNewShape(f, f.Polygon()); err != nil {
		return err
	}
	c.featureLog(f).Debug("polygonal feature accepted")
	return nil
}

func (c *Cleaner) ProcessMaterialAreas() error {
	for _, area := range c.site.MaterialAreas() {
		if err := c.addOrRejectPolygonalFeature(area); err != nil {
			return err
		}
		pos, err := c.InsertPositionForSortedMaterialArea(area)
		if err != nil {
			return err
		}
		c.sortedMaterialAreas = insertAt(c.sortedMaterialAreas, pos, area.ID())
	}
	return nil
}

func (c *Cleaner) ProcessInfrastructureLandtakes() error {
	for _, landtake := range c.site.Landtakes() {
		if err := c.addOrRejectPolygonalFeature(landtake); err != nil {
			return err
		}
	}
	return nil
}

// ProcessAllFeatures cleans every direct feature of the site, stopping at the
// first error.
func (c *Cleaner) ProcessAllFeatures() error {
	steps := []func() error{
		c.ProcessSubsitesLandtakes,
		c.ProcessLevelCurves,
		c.ProcessMaterialAreas,
		c.ProcessInfrastructureLandtakes,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

// InsertPositionForSortedMaterialArea returns where the area goes in the
// sorted material areas: before the first area containing it, or at the end.
// An area overlapping one of the sorted areas is an error.
func (c *Cleaner) InsertPositionForSortedMaterialArea(area datamodel.PolygonalFeature) (int, error) {
	poly := area.Polygon()
	for i, id := range c.sortedMaterialAreas {
		other := c.geom[id].(orb.Polygon)
		rel := geometry.RelatePolygons(poly, other)
		if rel.Overlaps() {
			name := c.features[id].Name()
			positions := geometry.IntersectionOutline(poly, other, 0)
			return 0, datamodel.NewInconsistency(
				"Material areas overlap in site %s: %s and %s at positions %v",
				c.site.Name(), name, area.Name(), positions).WithIDs(id, area.ID())
		}
		if rel.Within {
			return i, nil
		}
	}
	return len(c.sortedMaterialAreas), nil
}

// ImportCleanedGeometriesFrom adds every cleaned feature of the other cleaner
// to this one.
func (c *Cleaner) ImportCleanedGeometriesFrom(other *Cleaner) error {
	for _, id := range other.order {
		if err := c.addFeatureWithNewShape(other.features[id], other.geom[id]); err != nil {
			return err
		}
	}
	return nil
}

// MergeSubsite cleans the subsite on its own and merges the result into this
// cleaner. The material areas of the subsite are spliced into the sorted
// material areas where the subsite polygon itself would go. Nothing is merged
// when any check fails.
func (c *Cleaner) MergeSubsite(sub *datamodel.SiteNode) error {
	subcleaner, err := NewCleaner(sub, WithLogger(c.opts.Logger))
	if err != nil {
		return err
	}
	if err := subcleaner.ProcessAllFeatures(); err != nil {
		if len(subcleaner.ErroneousOverlap) > 0 {
			return datamodel.NewInconsistency(
				"Can not merge subsite %s because of features %v overlapping its boundaries",
				sub.Name(), subcleaner.ErroneousOverlap).WithIDs(subcleaner.ErroneousOverlap...)
		}
		return errors.Wrapf(err, "cleaning subsite %s", sub.Name())
	}

	pos, err := c.InsertPositionForSortedMaterialArea(sub)
	if err != nil {
		return err
	}
	for _, id := range subcleaner.order {
		if existing, ok := c.geom[id]; ok && !orb.Equal(existing, subcleaner.geom[id]) {
			return datamodel.NewInconsistency("ID %s is already associated to a different shape", id).WithIDs(id)
		}
	}

	if err := c.ImportCleanedGeometriesFrom(subcleaner); err != nil {
		return err
	}
	c.sortedMaterialAreas = insertAt(c.sortedMaterialAreas, pos, subcleaner.sortedMaterialAreas...)
	return nil
}

// CheckIssuesWithMaterialAreaOrder returns the pairs of sorted material areas
// (i, j) with i before j where area i is neither inside area j nor apart from
// it. Areas sharing only boundary points count as apart.
func (c *Cleaner) CheckIssuesWithMaterialAreaOrder() [][2]string {
	var problems [][2]string
	for i, a := range c.sortedMaterialAreas {
		for _, b := range c.sortedMaterialAreas[i+1:] {
			rel := geometry.RelatePolygons(c.geom[a].(orb.Polygon), c.geom[b].(orb.Polygon))
			if rel.InteriorsIntersect && !rel.Within {
				problems = append(problems, [2]string{a, b})
			}
		}
	}
	return problems
}

// MergedSite builds a flat site with the boundary of the cleaned site, holding
// a copy of every cleaned feature.
func (c *Cleaner) MergedSite() (*datamodel.SiteNode, error) {
	merged := datamodel.NewSiteNode(c.site.Polygon()[0], datamodel.WithID(c.site.ID()), datamodel.WithName(c.site.Name()))
	for _, id := range c.order {
		f, err := c.features[id].WithShape(c.geom[id])
		if err != nil {
			return nil, err
		}
		if err := merged.AddChild(f); err != nil {
			return nil, err
		}
	}
	return merged, nil
}

// ToFeatureCollection renders every cleaned feature, with the properties of
// the original feature.
func (c *Cleaner) ToFeatureCollection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, id := range c.order {
		g, props, _ := c.Get(id)
		gf := geojson.NewFeature(g)
		gf.ID = id
		gf.Properties = props
		fc.Append(gf)
	}
	return fc
}

func insertAt(ids []string, pos int, inserted ...string) []string {
	result := make([]string, 0, len(ids)+len(inserted))
	result = append(result, ids[:pos]...)
	result = append(result, inserted...)
	return append(result, ids[pos:]...)
}
