package merge

import (
	"testing"

	"github.com/osuushi/altimetry/datamodel"
	"github.com/paulmach/orb"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeSiteTree(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	root := LoadScene("site_tree")
	cleaner, err := RecursivelyMergeAllSubsites(root, WithLogger(logger))
	require.NoError(t, err)

	assert.Equal(t,
		[]string{"valley", "ridge", "landtake", "pond", "grass", "building", "hill", "forest"},
		cleaner.IDs())
	assert.Equal(t, []string{"pond", "grass", "forest"}, cleaner.MaterialAreasInnerFirst())
	assert.Empty(t, cleaner.CheckIssuesWithMaterialAreaOrder())

	landtake, ok := cleaner.Geom("landtake")
	require.True(t, ok)
	assert.Equal(t, orb.MultiLineString{{{0, 0}, {12, 0}, {12, 10}, {0, 10}, {0, 0}}}, landtake)

	valley, _ := cleaner.Geom("valley")
	assert.Equal(t, orb.MultiLineString{{{0, 0.5}, {6, 0.5}, {12, 0.5}}}, valley)

	_, props, ok := cleaner.Get("forest")
	require.True(t, ok)
	assert.Equal(t, "sub", props["site"])
	assert.Equal(t, "pine", props["material"])
	assert.Equal(t, 10.0, props["height"])

	t.Run("merged site", func(t *testing.T) {
		merged, err := cleaner.MergedSite()
		require.NoError(t, err)
		assert.Equal(t, "main", merged.ID())
		assert.Len(t, merged.AllFeatures(), 8)
		assert.Empty(t, merged.Subsites())
		assert.Len(t, merged.MaterialAreas(), 3)
		hill, ok := merged.FeatureByID("hill")
		require.True(t, ok)
		assert.Equal(t, "main", hill.ParentSiteID())
		// The original tree is untouched
		sub := root.Subsites()[0]
		original, ok := sub.FeatureByID("hill")
		require.True(t, ok)
		assert.Equal(t, "sub", original.ParentSiteID())
	})

	t.Run("feature collection", func(t *testing.T) {
		fc := cleaner.ToFeatureCollection()
		require.Len(t, fc.Features, 8)
		assert.Equal(t, "valley", fc.Features[0].ID)
		assert.Equal(t, valley, fc.Features[0].Geometry)
		assert.Equal(t, "LevelCurve", fc.Features[0].Properties["type"])
	})

	t.Run("logging", func(t *testing.T) {
		last := hook.LastEntry()
		require.NotNil(t, last)
		assert.Equal(t, "site tree merged", last.Message)
		assert.Equal(t, "main", last.Data["site"])
		var merging []interface{}
		for _, entry := range hook.AllEntries() {
			if entry.Message == "merging subsite" {
				merging = append(merging, entry.Data["site"])
			}
		}
		assert.Equal(t, []interface{}{"sub"}, merging)
	})
}

func TestMergeNestedSubsites(t *testing.T) {
	logger, _ := test.NewNullLogger()
	cleaner, err := RecursivelyMergeAllSubsites(LoadScene("nested_subsites"), WithLogger(logger))
	require.NoError(t, err)
	assert.Equal(t,
		[]string{"meadow", "east-kiosk", "east-parking", "west-field", "west-inner-pond"},
		cleaner.MaterialAreasInnerFirst())
	assert.Empty(t, cleaner.CheckIssuesWithMaterialAreaOrder())
	assert.ElementsMatch(t,
		[]string{"meadow", "east-curve", "east-parking", "east-kiosk", "west-field", "west-inner-pond"},
		cleaner.IDs())
}

func TestMergeSubsiteWithOverlappingMaterial(t *testing.T) {
	logger, _ := test.NewNullLogger()
	root := LoadScene("subsite_overlap")

	t.Run("recursive merge fails", func(t *testing.T) {
		_, err := RecursivelyMergeAllSubsites(root, WithLogger(logger))
		inconsistency := requireInconsistency(t, err)
		assert.Equal(t, []string{"spill"}, inconsistency.IDs)
		assert.Contains(t, err.Error(), "merging subsite sub")
	})

	t.Run("nothing is merged", func(t *testing.T) {
		cleaner, err := NewCleaner(root, WithLogger(logger))
		require.NoError(t, err)
		require.NoError(t, cleaner.ProcessAllFeatures())
		requireInconsistency(t, cleaner.MergeSubsite(root.Subsites()[0]))
		assert.Equal(t, []string{"grass"}, cleaner.IDs())
		assert.Equal(t, []string{"grass"}, cleaner.MaterialAreasInnerFirst())
	})
}

func TestMergeSubsiteOverlappingParentMaterial(t *testing.T) {
	main, sub := SiteWithSubsite()
	mustAdd(main, datamodel.NewMaterialArea([]orb.Point{{7, 5}, {12, 5}, {12, 10}, {7, 10}}, "grass", datamodel.WithID("grass")))
	mustAdd(sub, datamodel.NewLevelCurve([]orb.Point{{8, 7}, {11, 7}}, 3, datamodel.WithID("curve")))
	logger, _ := test.NewNullLogger()

	// The parent area covers the subsite, so it crosses the shape of the
	// parent site
	_, err := RecursivelyMergeAllSubsites(main, WithLogger(logger))
	requireInconsistency(t, err)
}

func TestAllowOutside(t *testing.T) {
	main, _ := SiteWithSubsite()
	mustAdd(main, datamodel.NewLevelCurve([]orb.Point{{0, 0}, {12, 0}}, 3, datamodel.WithID("edge")))
	logger, _ := test.NewNullLogger()

	cleaner, err := RecursivelyMergeAllSubsites(main, WithLogger(logger))
	require.NoError(t, err)
	edge, _ := cleaner.Geom("edge")
	assert.Equal(t, orb.MultiLineString{{{0, 0}, {12, 0}}}, edge)

	_, err = RecursivelyMergeAllSubsites(main, WithLogger(logger), AllowOutside(false))
	assert.Equal(t, []string{"edge"}, requireInconsistency(t, err).IDs)

	t.Run("material area", func(t *testing.T) {
		main, _ := SiteWithSubsite()
		mustAdd(main, datamodel.NewMaterialArea(square(7, 5, 2), "grass", datamodel.WithID("grass")))
		_, err := RecursivelyMergeAllSubsites(main, WithLogger(logger), AllowOutside(false))
		inconsistency := requireInconsistency(t, err)
		assert.Equal(t, []string{"grass"}, inconsistency.IDs)
		assert.Contains(t, inconsistency.Message, "grass")
	})
}
