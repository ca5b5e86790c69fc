package datamodel

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var bigRect = []orb.Point{{0, 0}, {12, 0}, {12, 10}, {0, 10}}

func TestPolygonNormalization(t *testing.T) {
	// Clockwise exterior, counterclockwise hole
	area := NewMaterialArea(
		[]orb.Point{{0, 0}, {0, 4}, {4, 4}, {4, 0}},
		"grass",
		WithID("grass"),
		WithHoles([]orb.Point{{1, 1}, {2, 1}, {2, 2}}),
	)
	poly := area.Polygon()
	require.Len(t, poly, 2)
	assert.Equal(t, orb.CCW, poly[0].Orientation())
	assert.Equal(t, orb.CW, poly[1].Orientation())
	assert.Equal(t, poly, area.Shape())
}

func TestEnsureValid(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, NewSiteNode(bigRect, WithID("site")).EnsureValid())
		assert.NoError(t, NewLevelCurve([]orb.Point{{0, 0}, {1, 1}}, 10, WithID("curve")).EnsureValid())
	})

	t.Run("self intersecting polygon", func(t *testing.T) {
		area := NewMaterialArea([]orb.Point{{0, 0}, {2, 2}, {2, 0}, {0, 2}}, "grass", WithID("bowtie"))
		err := area.EnsureValid()
		require.Error(t, err)
		inconsistency, ok := AsInconsistency(err)
		require.True(t, ok)
		assert.Equal(t, []string{"bowtie"}, inconsistency.IDs)
		require.NotNil(t, inconsistency.Witness)
		assert.Equal(t, orb.Point{1, 1}, *inconsistency.Witness)
		assert.Contains(t, err.Error(), "Self-intersection")
	})

	t.Run("degenerate level curve", func(t *testing.T) {
		err := NewLevelCurve([]orb.Point{{1, 1}, {1, 1}}, 10, WithID("dot")).EnsureValid()
		require.Error(t, err)
		_, ok := AsInconsistency(err)
		assert.True(t, ok)
	})
}

func TestProperties(t *testing.T) {
	site := NewSiteNode(bigRect, WithID("main"))
	curve := NewLevelCurve([]orb.Point{{1, 1}, {5, 5}}, 12.5, WithID("curve"))
	forest := NewVegetationArea([]orb.Point{{1, 1}, {3, 1}, {3, 3}}, "pine", 8, true, WithID("forest"))
	lake := NewWaterBody([]orb.Point{{5, 5}, {7, 5}, {7, 7}}, 3, WithID("lake"))
	building := NewInfrastructureLandtake([]orb.Point{{8, 1}, {9, 1}, {9, 2}}, WithID("building"))
	for _, f := range []Feature{curve, forest, lake, building} {
		require.NoError(t, site.AddChild(f))
	}

	assert.Equal(t, map[string]interface{}{"type": "SiteNode"}, map[string]interface{}(site.Properties()))
	assert.Equal(t, map[string]interface{}{"type": "LevelCurve", "site": "main", "altitude": 12.5},
		map[string]interface{}(curve.Properties()))
	assert.Equal(t, map[string]interface{}{"type": "VegetationArea", "site": "main", "material": "pine", "height": 8.0, "foliage": true},
		map[string]interface{}(forest.Properties()))
	assert.Equal(t, map[string]interface{}{"type": "WaterBody", "site": "main", "material": "Water", "altitude": 3.0},
		map[string]interface{}(lake.Properties()))
	assert.Equal(t, map[string]interface{}{"type": "InfrastructureLandtake", "site": "main", "material": "__hidden__"},
		map[string]interface{}(building.Properties()))
}

func TestCanonicalJSON(t *testing.T) {
	site := NewSiteNode(bigRect, WithID("main"))
	area := NewMaterialArea([]orb.Point{{1, 1}, {3, 1}, {3, 3}}, "grass", WithID("grass"))
	require.NoError(t, site.AddChild(area))

	first, err := CanonicalJSON(area)
	require.NoError(t, err)
	second, err := CanonicalJSON(area)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t,
		`{"geometry":{"coordinates":[[[1,1],[3,1],[3,3],[1,1]]],"type":"Polygon"},"id":"grass","properties":{"material":"grass","site":"main","type":"MaterialArea"},"type":"Feature"}`,
		first)
}

func TestWithShape(t *testing.T) {
	site := NewSiteNode(bigRect, WithID("main"))
	curve := NewLevelCurve([]orb.Point{{-1, 1}, {5, 5}}, 7, WithID("curve"), WithName("Ridge"))
	require.NoError(t, site.AddChild(curve))

	clipped, err := curve.WithShape(orb.MultiLineString{{{0, 1.6666}, {5, 5}}})
	require.NoError(t, err)
	assert.Equal(t, "curve", clipped.ID())
	assert.Equal(t, "Ridge", clipped.Name())
	assert.Equal(t, "", clipped.ParentSiteID())
	assert.Equal(t, 7.0, clipped.(AltitudeFeature).Altitude())
	// The original is untouched
	assert.Equal(t, orb.LineString{{-1, 1}, {5, 5}}, curve.Shape())
	assert.Equal(t, "main", curve.ParentSiteID())

	_, err = curve.WithShape(orb.Polygon{})
	assert.Error(t, err)

	lake := NewWaterBody([]orb.Point{{5, 5}, {7, 5}, {7, 7}}, 3, WithID("lake"))
	moved, err := lake.WithShape(orb.Polygon{{{0, 0}, {1, 0}, {1, 1}, {0, 0}}})
	require.NoError(t, err)
	assert.Equal(t, KindWaterBody, moved.Kind())
	assert.Equal(t, MaterialWater, moved.(MaterialFeature).Material())
	assert.Equal(t, 3.0, moved.(AltitudeFeature).Altitude())
}

func TestInconsistencyMessage(t *testing.T) {
	err := NewInconsistency("Intersecting %s and %s", "a", "b").WithIDs("a", "b").WithWitness(orb.Point{1.5, 2})
	assert.Equal(t, "Intersecting a and b [ids: a, b] [witness: 1.5 2]", err.Error())
}
