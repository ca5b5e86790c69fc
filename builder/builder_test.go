package builder

import (
	"math"
	"strings"
	"testing"

	"github.com/osuushi/altimetry/datamodel"
	"github.com/osuushi/altimetry/geometry"
	"github.com/paulmach/orb"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square(x0, y0, x1, y1 float64) []orb.Point {
	return []orb.Point{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}}
}

func mustAdd(t *testing.T, site *datamodel.SiteNode, features ...datamodel.Feature) {
	t.Helper()
	for _, f := range features {
		require.NoError(t, site.AddChild(f))
	}
}

// A 12x10 site at altitude 0 with a hill at altitude 10, a grass area holding
// a pond, and a building.
func newTestSite(t *testing.T) *datamodel.SiteNode {
	t.Helper()
	root := datamodel.NewSiteNode(square(0, 0, 12, 10), datamodel.WithID("main"))
	mustAdd(t, root,
		datamodel.NewSiteLandtake(square(0, 0, 12, 10), 0, datamodel.WithID("landtake")),
		datamodel.NewLevelCurve(square(4, 4, 8, 7), 10, datamodel.WithID("hill"), datamodel.Closed()),
		datamodel.NewMaterialArea(square(1, 1, 11, 9), "grass", datamodel.WithID("grass")),
		datamodel.NewWaterBody(square(2, 2, 3, 3), 0, datamodel.WithID("pond")),
		datamodel.NewInfrastructureLandtake(square(9, 2, 10, 3), datamodel.WithID("building")),
	)
	return root
}

func testConfig(logger logrus.FieldLogger) Config {
	cfg := DefaultConfig()
	cfg.Logger = logger
	return cfg
}

func faceMaterialAt(t *testing.T, data *MeshData, p orb.Point) datamodel.GroundMaterial {
	t.Helper()
	for i, face := range data.Faces {
		inside := true
		for k := 0; k < 3 && inside; k++ {
			a, b := data.Vertices[face[k]], data.Vertices[face[(k+1)%3]]
			inside = geometry.Orient(orb.Point{a[0], a[1]}, orb.Point{b[0], b[1]}, p) > 0
		}
		if inside {
			return data.FaceMaterial(i)
		}
	}
	require.Failf(t, "no face", "no face holds %v", p)
	return ""
}

func assertMeshData(t *testing.T, data *MeshData) {
	t.Helper()
	require.NotEmpty(t, data.Faces)
	require.Len(t, data.FaceMaterials, len(data.Faces))
	for _, v := range data.Vertices {
		assert.False(t, math.IsNaN(v[2]), "vertex %v has no altitude", v)
		assert.True(t, v[2] > -1e-9 && v[2] < 10+1e-9, "vertex %v is out of the altitude range", v)
	}
	for _, face := range data.Faces {
		a, b, c := data.Vertices[face[0]], data.Vertices[face[1]], data.Vertices[face[2]]
		assert.Equal(t, 1, geometry.Orient(orb.Point{a[0], a[1]}, orb.Point{b[0], b[1]}, orb.Point{c[0], c[1]}))
	}

	assert.Equal(t, datamodel.GroundMaterial("grass"), faceMaterialAt(t, data, orb.Point{6.13, 5.21}))
	assert.Equal(t, datamodel.MaterialWater, faceMaterialAt(t, data, orb.Point{2.71, 2.43}))
	assert.Equal(t, datamodel.MaterialHidden, faceMaterialAt(t, data, orb.Point{9.71, 2.43}))
	assert.Equal(t, datamodel.MaterialDefault, faceMaterialAt(t, data, orb.Point{0.63, 0.29}))
}

func TestCompleteProcessing(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	b, err := New(newTestSite(t), testConfig(logger))
	require.NoError(t, err)
	data, err := b.CompleteProcessing()
	require.NoError(t, err)
	assertMeshData(t, data)
	assert.ElementsMatch(t,
		[]datamodel.GroundMaterial{"grass", datamodel.MaterialWater, datamodel.MaterialHidden, datamodel.MaterialDefault},
		data.Materials)

	for _, v := range data.Vertices {
		switch (orb.Point{v[0], v[1]}) {
		case orb.Point{4, 4}, orb.Point{8, 7}:
			assert.Equal(t, 10.0, v[2])
		case orb.Point{0, 0}, orb.Point{2, 2}:
			assert.Equal(t, 0.0, v[2])
		}
	}

	last := hook.LastEntry()
	require.NotNil(t, last)
	assert.Equal(t, "mesh built", last.Message)
	assert.Equal(t, len(data.Vertices), last.Data["vertices"])
	assert.Equal(t, len(data.Faces), last.Data["faces"])
	assert.Equal(t, "main", last.Data["site"])

	t.Run("meshes", func(t *testing.T) {
		alti := b.AltitudeMesh()
		assert.Less(t, alti.NumberOfVertices(), b.MaterialMesh().NumberOfVertices())
		assert.Len(t, alti.ConstrainedEdges(), 4+4+4)
		assert.InDelta(t, 10, alti.PointAltitude(orb.Point{6, 5}), 1e-9)
	})
}

func TestRefinedProcessing(t *testing.T) {
	logger, _ := test.NewNullLogger()
	unrefined, err := New(newTestSite(t), testConfig(logger))
	require.NoError(t, err)
	coarse, err := unrefined.CompleteProcessing()
	require.NoError(t, err)

	cfg := testConfig(logger)
	cfg.Refine = true
	cfg.SizeCriterion = 3
	cfg.MaxSteps = 500
	b, err := New(newTestSite(t), cfg)
	require.NoError(t, err)
	data, err := b.CompleteProcessing()
	require.NoError(t, err)
	assertMeshData(t, data)
	assert.Greater(t, len(data.Vertices), len(coarse.Vertices))
	assert.Greater(t, len(data.Faces), len(coarse.Faces))
}

func TestBuildErrors(t *testing.T) {
	t.Run("area out of the site", func(t *testing.T) {
		root := datamodel.NewSiteNode(square(0, 0, 10, 10), datamodel.WithID("main"))
		mustAdd(t, root, datamodel.NewMaterialArea(square(5, 5, 15, 8), "grass", datamodel.WithID("grass")))
		cfg := DefaultConfig()
		cfg.AllowOutside = false
		_, err := New(root, cfg)
		inconsistency, ok := datamodel.AsInconsistency(err)
		require.True(t, ok, "%v", err)
		assert.Equal(t, []string{"grass"}, inconsistency.IDs)
	})

	t.Run("conflicting altitudes", func(t *testing.T) {
		root := datamodel.NewSiteNode(square(0, 0, 10, 10), datamodel.WithID("main"))
		mustAdd(t, root,
			datamodel.NewLevelCurve([]orb.Point{{1, 5}, {9, 5}}, 10, datamodel.WithID("h")),
			datamodel.NewLevelCurve([]orb.Point{{5, 1}, {5, 9}}, 20, datamodel.WithID("v")),
		)
		b, err := New(root, DefaultConfig())
		require.NoError(t, err)
		_, err = b.CompleteProcessing()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "merging altitude info")
		inconsistency, ok := datamodel.AsInconsistency(err)
		require.True(t, ok)
		assert.Equal(t, []string{"h", "v"}, inconsistency.IDs)
		assert.Equal(t, orb.Point{5, 5}, *inconsistency.Witness)
	})
}

func TestConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := ReadConfig(strings.NewReader(""))
		require.NoError(t, err)
		assert.False(t, cfg.Refine)
		assert.Equal(t, 10000, cfg.MaxSteps)
		assert.True(t, cfg.AllowOutside)
		assert.NotNil(t, cfg.Logger)
	})

	t.Run("values", func(t *testing.T) {
		cfg, err := ReadConfig(strings.NewReader(`
refine = true
size_criterion = 2.5
max_steps = 12
allow_outside = false
`))
		require.NoError(t, err)
		assert.True(t, cfg.Refine)
		assert.Equal(t, 2.5, cfg.SizeCriterion)
		assert.Equal(t, 2.0, cfg.ShapeCriterion)
		assert.Equal(t, 12, cfg.MaxSteps)
		assert.False(t, cfg.AllowOutside)
	})

	t.Run("unknown key", func(t *testing.T) {
		_, err := ReadConfig(strings.NewReader("refinement = true\n"))
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig("testdata/nope.toml")
		assert.Error(t, err)
	})

	t.Run("file", func(t *testing.T) {
		cfg, err := LoadConfig("testdata/refined.toml")
		require.NoError(t, err)
		assert.True(t, cfg.Refine)
		assert.Equal(t, 3.0, cfg.SizeCriterion)
	})
}
