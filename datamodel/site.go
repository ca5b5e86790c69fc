package datamodel

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/pkg/errors"
)

// SiteNode is a site: a polygonal boundary owning features and subsites.
// Children only remember the id of their site.
type SiteNode struct {
	polygonal
	children map[Kind][]Feature
	byID     map[string]Feature
}

func NewSiteNode(exterior []orb.Point, opts ...Option) *SiteNode {
	o := applyOptions(opts)
	return &SiteNode{
		polygonal: polygonal{featureBase: o.base(KindSiteNode), rings: o.polygon(exterior)},
		children:  make(map[Kind][]Feature),
		byID:      make(map[string]Feature),
	}
}

func (s *SiteNode) Properties() geojson.Properties { return s.properties() }

func (s *SiteNode) AsFeature() *geojson.Feature { return asFeature(s) }

// WithShape returns a site with the same identity and no children.
func (s *SiteNode) WithShape(g orb.Geometry) (Feature, error) {
	poly, err := s.reshaped(g)
	if err != nil {
		return nil, err
	}
	return &SiteNode{
		polygonal: poly,
		children:  make(map[Kind][]Feature),
		byID:      make(map[string]Feature),
	}, nil
}

// AddChild attaches a feature to the site. A feature belongs to at most one
// site, and ids are unique among the children of a site.
func (s *SiteNode) AddChild(f Feature) error {
	if s.id == "" {
		return errors.Errorf("cannot add %s to a site without id", f)
	}
	b := f.base()
	if b.parent != "" {
		return errors.Errorf("%s already belongs to site %s", f, b.parent)
	}
	if Feature(s) == f {
		return errors.Errorf("%s cannot own itself", s)
	}
	if f.ID() != "" {
		if _, ok := s.byID[f.ID()]; ok {
			return errors.Errorf("%s already has a child with id %s", s, f.ID())
		}
		s.byID[f.ID()] = f
	}
	s.children[f.Kind()] = append(s.children[f.Kind()], f)
	b.parent = s.id
	return nil
}

// DropChild releases a feature owned by the site.
func (s *SiteNode) DropChild(f Feature) error {
	b := f.base()
	if b.parent != s.id {
		return errors.Errorf("%s does not belong to %s", f, s)
	}
	siblings := s.children[f.Kind()]
	for i, child := range siblings {
		if child == f {
			s.children[f.Kind()] = append(siblings[:i:i], siblings[i+1:]...)
			if f.ID() != "" {
				delete(s.byID, f.ID())
			}
			b.parent = ""
			return nil
		}
	}
	return errors.Errorf("%s does not belong to %s", f, s)
}

// Children returns the direct children of the given kinds, kind by kind.
func (s *SiteNode) Children(kinds ...Kind) []Feature {
	var result []Feature
	for _, k := range kinds {
		result = append(result, s.children[k]...)
	}
	return result
}

// LevelCurves returns the features carrying an altitude: level curves, the
// site landtake and water bodies.
func (s *SiteNode) LevelCurves() []AltitudeFeature {
	var result []AltitudeFeature
	for _, f := range s.Children(KindLevelCurve, KindSiteLandtake, KindWaterBody) {
		result = append(result, f.(AltitudeFeature))
	}
	return result
}

// MaterialAreas returns the material areas, vegetation areas and water bodies.
func (s *SiteNode) MaterialAreas() []MaterialFeature {
	var result []MaterialFeature
	for _, f := range s.Children(KindMaterialArea, KindVegetationArea, KindWaterBody) {
		result = append(result, f.(MaterialFeature))
	}
	return result
}

func (s *SiteNode) Landtakes() []MaterialFeature {
	var result []MaterialFeature
	for _, f := range s.Children(KindInfrastructureLandtake) {
		result = append(result, f.(MaterialFeature))
	}
	return result
}

func (s *SiteNode) SiteLandtakes() []Feature {
	return s.Children(KindSiteLandtake)
}

func (s *SiteNode) Subsites() []*SiteNode {
	var result []*SiteNode
	for _, f := range s.children[KindSiteNode] {
		result = append(result, f.(*SiteNode))
	}
	return result
}

// AllFeatures returns every direct child except subsites.
func (s *SiteNode) AllFeatures() []Feature {
	return s.Children(Kinds[:len(Kinds)-1]...)
}

// NonAltimetricFeatures returns the children which do not carry an altitude.
func (s *SiteNode) NonAltimetricFeatures() []Feature {
	return s.Children(KindMaterialArea, KindVegetationArea, KindInfrastructureLandtake)
}

func (s *SiteNode) FeatureByID(id string) (Feature, bool) {
	f, ok := s.byID[id]
	return f, ok
}

// RecursiveFeatureIDs lists the ids of the features of the site and all its
// subsites, depth first.
func (s *SiteNode) RecursiveFeatureIDs() []string {
	var ids []string
	stack := []*SiteNode{s}
	for len(stack) > 0 {
		site := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, f := range site.AllFeatures() {
			ids = append(ids, f.ID())
		}
		subsites := site.Subsites()
		for i := len(subsites) - 1; i >= 0; i-- {
			stack = append(stack, subsites[i])
		}
	}
	return ids
}
