package datamodel

import (
	"encoding/json"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/pkg/errors"
)

// CanonicalJSON renders the interchange record of a feature with its keys
// sorted at every level, so that equal features render to equal text.
func CanonicalJSON(f Feature) (string, error) {
	raw, err := json.Marshal(f.AsFeature())
	if err != nil {
		return "", errors.Wrapf(err, "marshalling %s", f)
	}
	// Maps are marshalled with sorted keys
	var generic interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return "", errors.WithStack(err)
	}
	raw, err = json.Marshal(generic)
	if err != nil {
		return "", errors.WithStack(err)
	}
	return string(raw), nil
}

// LoadSiteJSON parses a GeoJSON feature collection and builds the site tree it
// describes. See LoadSite.
func LoadSiteJSON(data []byte) (*SiteNode, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, errors.Wrap(err, "parsing site description")
	}
	return LoadSite(fc)
}

// LoadSite builds a site tree from a feature collection. Every feature needs
// a "type" property naming its kind and, except for the root site, a "site"
// property naming the id of its owner. The collection must hold exactly one
// site without owner.
func LoadSite(fc *geojson.FeatureCollection) (*SiteNode, error) {
	var (
		features []Feature
		owners   []string
		sites    = make(map[string]*SiteNode)
		root     *SiteNode
	)
	for i, gf := range fc.Features {
		f, err := featureFromGeoJSON(gf)
		if err != nil {
			return nil, errors.Wrapf(err, "feature %d", i)
		}
		owner := gf.Properties.MustString("site", "")
		if site, ok := f.(*SiteNode); ok {
			if site.ID() == "" {
				return nil, errors.Errorf("feature %d: site without id", i)
			}
			if _, dup := sites[site.ID()]; dup {
				return nil, errors.Errorf("feature %d: duplicate site id %s", i, site.ID())
			}
			sites[site.ID()] = site
			if owner == "" {
				if root != nil {
					return nil, errors.Errorf("feature %d: both %s and %s are root sites", i, root, site)
				}
				root = site
				continue
			}
		} else if owner == "" {
			return nil, errors.Errorf("feature %d: %s has no site", i, f)
		}
		features = append(features, f)
		owners = append(owners, owner)
	}
	if root == nil {
		return nil, errors.New("no root site")
	}

	for i, f := range features {
		site, ok := sites[owners[i]]
		if !ok {
			return nil, errors.Errorf("%s belongs to unknown site %s", f, owners[i])
		}
		if err := site.AddChild(f); err != nil {
			return nil, err
		}
	}
	return root, nil
}

func featureFromGeoJSON(gf *geojson.Feature) (Feature, error) {
	props := gf.Properties
	kind := Kind(props.MustString("type", ""))
	opts := []Option{WithID(featureID(gf))}

	switch kind {
	case KindLevelCurve, KindSiteLandtake:
		line, closed, err := singleLine(gf.Geometry)
		if err != nil {
			return nil, err
		}
		altitude := props.MustFloat64("altitude", 0)
		if _, ok := props["altitude"]; !ok {
			return nil, errors.Errorf("%s without altitude", kind)
		}
		if kind == KindSiteLandtake {
			return NewSiteLandtake(line, altitude, opts...), nil
		}
		if closed {
			opts = append(opts, Closed())
		}
		return NewLevelCurve(line, altitude, opts...), nil
	}

	poly, ok := gf.Geometry.(orb.Polygon)
	if !ok || len(poly) == 0 {
		return nil, errors.Errorf("%s expects a polygon, got %T", kind, gf.Geometry)
	}
	exterior := []orb.Point(poly[0])
	for _, hole := range poly[1:] {
		opts = append(opts, WithHoles(hole))
	}

	switch kind {
	case KindMaterialArea:
		return NewMaterialArea(exterior, GroundMaterial(props.MustString("material", string(MaterialDefault))), opts...), nil
	case KindVegetationArea:
		return NewVegetationArea(exterior,
			GroundMaterial(props.MustString("material", string(MaterialDefault))),
			props.MustFloat64("height", 0),
			props.MustBool("foliage", false),
			opts...), nil
	case KindWaterBody:
		return NewWaterBody(exterior, props.MustFloat64("altitude", 0), opts...), nil
	case KindInfrastructureLandtake:
		return NewInfrastructureLandtake(exterior, opts...), nil
	case KindSiteNode:
		return NewSiteNode(exterior, opts...), nil
	}
	return nil, errors.Errorf("unknown feature type %q", kind)
}

// The id is read from the feature itself, then from its properties.
func featureID(gf *geojson.Feature) string {
	if gf.ID != nil {
		return fmt.Sprint(gf.ID)
	}
	return gf.Properties.MustString("id", "")
}

func singleLine(g orb.Geometry) (line []orb.Point, closed bool, err error) {
	switch g := g.(type) {
	case orb.LineString:
		return g, false, nil
	case orb.MultiLineString:
		if len(g) == 1 {
			return g[0], false, nil
		}
	case orb.Polygon:
		if len(g) == 1 {
			return g[0], true, nil
		}
	}
	return nil, false, errors.Errorf("expected a single line, got %T", g)
}
