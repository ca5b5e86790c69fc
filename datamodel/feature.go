// Package datamodel describes the features of a site for the altimetry
// computation: level curves, material areas, landtakes and the tree of sites
// owning them.
package datamodel

import (
	"fmt"

	"github.com/osuushi/altimetry/geometry"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/pkg/errors"
)

// Kind tags the concrete type of a feature. It is also the value of the
// "type" property in interchange records.
type Kind string

const (
	KindLevelCurve             Kind = "LevelCurve"
	KindSiteLandtake           Kind = "SiteLandtake"
	KindMaterialArea           Kind = "MaterialArea"
	KindVegetationArea         Kind = "VegetationArea"
	KindWaterBody              Kind = "WaterBody"
	KindInfrastructureLandtake Kind = "InfrastructureLandtake"
	KindSiteNode               Kind = "SiteNode"
)

// Kinds lists every kind a site can own, in a fixed order.
var Kinds = []Kind{
	KindLevelCurve,
	KindSiteLandtake,
	KindMaterialArea,
	KindVegetationArea,
	KindWaterBody,
	KindInfrastructureLandtake,
	KindSiteNode,
}

// Feature is implemented by every element of a site description.
type Feature interface {
	ID() string
	// Name is meant for diagnostics and falls back to the id.
	Name() string
	Kind() Kind
	// ParentSiteID is the id of the owning site, or "" for a feature that is
	// not attached.
	ParentSiteID() string
	// Shape is the normalized geometry: an orb.Polygon for polygonal
	// features, an orb.LineString or orb.MultiLineString for level curves.
	Shape() orb.Geometry
	Properties() geojson.Properties
	AsFeature() *geojson.Feature
	// EnsureValid returns an *InconsistentGeometricModel when the shape is
	// not a valid geometry.
	EnsureValid() error
	// WithShape returns an unattached copy of the feature, with the same
	// identity and attributes, but another shape.
	WithShape(orb.Geometry) (Feature, error)
	String() string

	base() *featureBase
}

// AltitudeFeature is implemented by the features found in the level curves of
// a site.
type AltitudeFeature interface {
	Feature
	Altitude() float64
	// Lines are the curves of constant altitude the feature describes.
	Lines() orb.MultiLineString
}

// PolygonalFeature is implemented by every feature whose shape is a polygon.
type PolygonalFeature interface {
	Feature
	Polygon() orb.Polygon
}

// MaterialFeature is implemented by the features found in the material areas
// and landtakes of a site.
type MaterialFeature interface {
	PolygonalFeature
	Material() GroundMaterial
}

type featureBase struct {
	id     string
	name   string
	kind   Kind
	parent string
}

func (f *featureBase) base() *featureBase { return f }

func (f *featureBase) ID() string           { return f.id }
func (f *featureBase) Kind() Kind           { return f.kind }
func (f *featureBase) ParentSiteID() string { return f.parent }

func (f *featureBase) Name() string {
	if f.name != "" {
		return f.name
	}
	return f.id
}

func (f *featureBase) String() string {
	return fmt.Sprintf("%s #%s", f.kind, f.id)
}

func (f *featureBase) properties() geojson.Properties {
	p := geojson.Properties{"type": string(f.kind)}
	if f.parent != "" {
		p["site"] = f.parent
	}
	return p
}

// detached copies the identity of a feature, without its owner.
func (f *featureBase) detached() featureBase {
	return featureBase{id: f.id, name: f.name, kind: f.kind}
}

func asFeature(f Feature) *geojson.Feature {
	gf := geojson.NewFeature(f.Shape())
	if f.ID() != "" {
		gf.ID = f.ID()
	}
	gf.Properties = f.Properties()
	return gf
}

type options struct {
	id     string
	name   string
	holes  [][]orb.Point
	closed bool
}

type Option func(*options)

func WithID(id string) Option {
	return func(o *options) { o.id = id }
}

func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithHoles adds interior rings to a polygonal feature.
func WithHoles(holes ...[]orb.Point) Option {
	return func(o *options) { o.holes = append(o.holes, holes...) }
}

// Closed connects the last point of a level curve back to its first.
func Closed() Option {
	return func(o *options) { o.closed = true }
}

func applyOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) base(kind Kind) featureBase {
	return featureBase{id: o.id, name: o.name, kind: kind}
}

func (o options) polygon(exterior []orb.Point) orb.Polygon {
	poly := orb.Polygon{geometry.CloseRing(exterior)}
	for _, hole := range o.holes {
		poly = append(poly, geometry.CloseRing(hole))
	}
	return poly
}

// LevelCurve is a line of constant altitude.
type LevelCurve struct {
	featureBase
	lines    orb.MultiLineString
	altitude float64
}

func NewLevelCurve(points []orb.Point, altitude float64, opts ...Option) *LevelCurve {
	o := applyOptions(opts)
	line := append(orb.LineString(nil), points...)
	if o.closed && len(line) > 0 && line[0] != line[len(line)-1] {
		line = append(line, line[0])
	}
	return &LevelCurve{
		featureBase: o.base(KindLevelCurve),
		lines:       orb.MultiLineString{line},
		altitude:    altitude,
	}
}

func (c *LevelCurve) Altitude() float64          { return c.altitude }
func (c *LevelCurve) Lines() orb.MultiLineString { return c.lines }

func (c *LevelCurve) Shape() orb.Geometry {
	if len(c.lines) == 1 {
		return c.lines[0]
	}
	return c.lines
}

func (c *LevelCurve) Properties() geojson.Properties {
	p := c.properties()
	p["altitude"] = c.altitude
	return p
}

func (c *LevelCurve) AsFeature() *geojson.Feature { return asFeature(c) }

func (c *LevelCurve) EnsureValid() error {
	for _, line := range c.lines {
		distinct := make(map[orb.Point]struct{}, len(line))
		for _, p := range line {
			distinct[p] = struct{}{}
		}
		if len(distinct) < 2 {
			err := NewInconsistency("Invalid shape of %s: too few points", c).WithIDs(c.id)
			if len(line) > 0 {
				err.WithWitness(line[0])
			}
			return err
		}
	}
	return nil
}

func (c *LevelCurve) WithShape(g orb.Geometry) (Feature, error) {
	lines, err := linesOf(g)
	if err != nil {
		return nil, errors.Wrapf(err, "reshaping %s", c)
	}
	return &LevelCurve{featureBase: c.detached(), lines: lines, altitude: c.altitude}, nil
}

func linesOf(g orb.Geometry) (orb.MultiLineString, error) {
	switch g := g.(type) {
	case orb.LineString:
		return orb.MultiLineString{g.Clone()}, nil
	case orb.Ring:
		return orb.MultiLineString{orb.LineString(g.Clone())}, nil
	case orb.MultiLineString:
		return g.Clone(), nil
	}
	return nil, errors.Errorf("expected a line geometry, got %T", g)
}

// SiteLandtake is the footprint of a site, considered as a closed level curve.
type SiteLandtake struct {
	LevelCurve
}

func NewSiteLandtake(points []orb.Point, altitude float64, opts ...Option) *SiteLandtake {
	c := NewLevelCurve(points, altitude, append(opts, Closed())...)
	c.kind = KindSiteLandtake
	return &SiteLandtake{*c}
}

func (l *SiteLandtake) AsFeature() *geojson.Feature { return asFeature(l) }

func (l *SiteLandtake) WithShape(g orb.Geometry) (Feature, error) {
	lines, err := linesOf(g)
	if err != nil {
		return nil, errors.Wrapf(err, "reshaping %s", l)
	}
	return &SiteLandtake{LevelCurve{featureBase: l.detached(), lines: lines, altitude: l.altitude}}, nil
}

type polygonal struct {
	featureBase
	rings orb.Polygon
	shape orb.Polygon
}

// Polygon returns the shape with a counterclockwise exterior and clockwise
// holes. It is computed once.
func (p *polygonal) Polygon() orb.Polygon {
	if p.shape == nil {
		p.shape = geometry.NormalizePolygon(p.rings)
	}
	return p.shape
}

func (p *polygonal) Shape() orb.Geometry { return p.Polygon() }

func (p *polygonal) EnsureValid() error {
	if err := geometry.ValidatePolygon(p.Polygon()); err != nil {
		verr, ok := err.(*geometry.ValidityError)
		if !ok {
			return errors.Wrapf(err, "validating %s", p)
		}
		return NewInconsistency("Invalid shape of %s: %s", p, verr.Reason).
			WithIDs(p.id).
			WithWitness(verr.Point)
	}
	return nil
}

func (p *polygonal) reshaped(g orb.Geometry) (polygonal, error) {
	poly, ok := g.(orb.Polygon)
	if !ok {
		return polygonal{}, errors.Errorf("reshaping %s: expected a polygon, got %T", p, g)
	}
	return polygonal{featureBase: p.detached(), rings: poly.Clone()}, nil
}

// MaterialArea is a region of ground made of one material.
type MaterialArea struct {
	polygonal
	material GroundMaterial
}

func NewMaterialArea(exterior []orb.Point, material GroundMaterial, opts ...Option) *MaterialArea {
	o := applyOptions(opts)
	return &MaterialArea{
		polygonal: polygonal{featureBase: o.base(KindMaterialArea), rings: o.polygon(exterior)},
		material:  material,
	}
}

func (a *MaterialArea) Material() GroundMaterial { return a.material }

func (a *MaterialArea) Properties() geojson.Properties {
	p := a.properties()
	p["material"] = a.material.ID()
	return p
}

func (a *MaterialArea) AsFeature() *geojson.Feature { return asFeature(a) }

func (a *MaterialArea) WithShape(g orb.Geometry) (Feature, error) {
	poly, err := a.reshaped(g)
	if err != nil {
		return nil, err
	}
	return &MaterialArea{polygonal: poly, material: a.material}, nil
}

// VegetationArea is a material area covered with vegetation of some height.
type VegetationArea struct {
	MaterialArea
	Height  float64
	Foliage bool
}

func NewVegetationArea(exterior []orb.Point, material GroundMaterial, height float64, foliage bool, opts ...Option) *VegetationArea {
	a := NewMaterialArea(exterior, material, opts...)
	a.kind = KindVegetationArea
	return &VegetationArea{MaterialArea: *a, Height: height, Foliage: foliage}
}

func (v *VegetationArea) Properties() geojson.Properties {
	p := v.MaterialArea.Properties()
	p["height"] = v.Height
	p["foliage"] = v.Foliage
	return p
}

func (v *VegetationArea) AsFeature() *geojson.Feature { return asFeature(v) }

func (v *VegetationArea) WithShape(g orb.Geometry) (Feature, error) {
	poly, err := v.reshaped(g)
	if err != nil {
		return nil, err
	}
	return &VegetationArea{MaterialArea: MaterialArea{polygonal: poly, material: v.material}, Height: v.Height, Foliage: v.Foliage}, nil
}

// WaterBody is both a material area made of water and a level curve: its
// shore is at a known altitude.
type WaterBody struct {
	MaterialArea
	altitude float64
}

func NewWaterBody(exterior []orb.Point, altitude float64, opts ...Option) *WaterBody {
	a := NewMaterialArea(exterior, MaterialWater, opts...)
	a.kind = KindWaterBody
	return &WaterBody{MaterialArea: *a, altitude: altitude}
}

func (w *WaterBody) Altitude() float64 { return w.altitude }

// Lines returns the shore, that is the exterior ring.
func (w *WaterBody) Lines() orb.MultiLineString {
	return orb.MultiLineString{orb.LineString(w.Polygon()[0])}
}

func (w *WaterBody) Properties() geojson.Properties {
	p := w.MaterialArea.Properties()
	p["altitude"] = w.altitude
	return p
}

func (w *WaterBody) AsFeature() *geojson.Feature { return asFeature(w) }

func (w *WaterBody) WithShape(g orb.Geometry) (Feature, error) {
	poly, err := w.reshaped(g)
	if err != nil {
		return nil, err
	}
	return &WaterBody{MaterialArea: MaterialArea{polygonal: poly, material: w.material}, altitude: w.altitude}, nil
}

// InfrastructureLandtake is the footprint of a building or any other
// infrastructure. The ground below it is hidden.
type InfrastructureLandtake struct {
	MaterialArea
}

func NewInfrastructureLandtake(exterior []orb.Point, opts ...Option) *InfrastructureLandtake {
	a := NewMaterialArea(exterior, MaterialHidden, opts...)
	a.kind = KindInfrastructureLandtake
	return &InfrastructureLandtake{*a}
}

func (l *InfrastructureLandtake) AsFeature() *geojson.Feature { return asFeature(l) }

func (l *InfrastructureLandtake) WithShape(g orb.Geometry) (Feature, error) {
	poly, err := l.reshaped(g)
	if err != nil {
		return nil, err
	}
	return &InfrastructureLandtake{MaterialArea{polygonal: poly, material: l.material}}, nil
}
