package merge

import (
	"github.com/osuushi/altimetry/datamodel"
	"github.com/osuushi/altimetry/geometry"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// RecursivelyMergeAllSubsites cleans the root site and merges every subsite,
// at any depth, into the cleaner of the root.
func RecursivelyMergeAllSubsites(root *datamodel.SiteNode, opts ...Option) (*Cleaner, error) {
	cleaner, err := NewCleaner(root, opts...)
	if err != nil {
		return nil, err
	}
	if !cleaner.opts.AllowOutside {
		if err := cleaner.checkInside(); err != nil {
			return nil, err
		}
	}
	if err := cleaner.ProcessAllFeatures(); err != nil {
		return nil, err
	}

	type pendingSite struct {
		site  *datamodel.SiteNode
		depth int
	}
	var pending []pendingSite
	for _, sub := range root.Subsites() {
		pending = append(pending, pendingSite{sub, 1})
	}
	for len(pending) > 0 {
		current := pending[len(pending)-1]
		pending = pending[:len(pending)-1]
		cleaner.opts.Logger.WithFields(logrus.Fields{
			"site":    current.site.ID(),
			"depth":   current.depth,
			"pending": len(pending),
		}).Debug("merging subsite")

		if err := cleaner.MergeSubsite(current.site); err != nil {
			return nil, errors.Wrapf(err, "merging subsite %s", current.site.Name())
		}
		for _, sub := range current.site.Subsites() {
			pending = append(pending, pendingSite{sub, current.depth + 1})
		}
	}
	cleaner.log.WithField("features", len(cleaner.order)).Info("site tree merged")
	return cleaner, nil
}

// checkInside requires the level curves and material areas of the site to lie
// in the site shape. Material areas are held to it like every other feature
// which is not a landtake. The site landtake runs along the site boundary and
// is not checked.
func (c *Cleaner) checkInside() error {
	for _, curve := range c.site.LevelCurves() {
		var inside bool
		switch f := curve.(type) {
		case *datamodel.SiteLandtake:
			continue
		case datamodel.PolygonalFeature:
			inside = geometry.RelatePolygons(f.Polygon(), c.siteShape).Within
		default:
			inside = geometry.RelateLine(c.siteShape, curve.Lines()...).ContainedBy()
		}
		if !inside {
			return c.notContained(curve)
		}
	}
	for _, area := range c.site.MaterialAreas() {
		if !geometry.RelatePolygons(area.Polygon(), c.siteShape).Within {
			return c.notContained(area)
		}
	}
	return nil
}
