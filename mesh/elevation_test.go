package mesh

import (
	"testing"

	"github.com/osuushi/altimetry/datamodel"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReferenceElevationMesh(t *testing.T) {
	t.Run("missing altitude", func(t *testing.T) {
		m := NewReferenceElevationMesh()
		_, _, err := m.InsertPolyline([]orb.Point{{0, 0}, {1, 1}}, Info{KeyOrigin: IDs("L")})
		assert.ErrorIs(t, err, ErrMissingAltitude)
		_, err = m.InsertPoint(orb.Point{0, 0}, nil)
		assert.ErrorIs(t, err, ErrMissingAltitude)
		assert.Equal(t, 0, m.NumberOfVertices())
	})

	t.Run("copy", func(t *testing.T) {
		m := NewReferenceElevationMesh()
		_, err := m.InsertPoint(orb.Point{0, 0}, originInfo("P", 1))
		require.NoError(t, err)
		c := m.Copy()
		_, err = c.InsertPoint(orb.Point{1, 0}, originInfo("Q", 2))
		require.NoError(t, err)
		_, err = c.InsertPoint(orb.Point{2, 0}, nil)
		assert.ErrorIs(t, err, ErrMissingAltitude)
		assert.Equal(t, 1, m.NumberOfVertices())
		assert.Equal(t, 2, c.NumberOfVertices())
	})
}

func TestPointAltitude(t *testing.T) {
	m := NewElevationMesh()
	for _, input := range []struct {
		p orb.Point
		z float64
	}{{orb.Point{0, 0}, 0}, {orb.Point{2, 0}, 0}, {orb.Point{1, 1}, 10}} {
		_, err := m.InsertPoint(input.p, originInfo("P", input.z))
		require.NoError(t, err)
	}

	assert.Equal(t, 0.0, m.PointAltitude(orb.Point{0, 0}))
	assert.Equal(t, 10.0, m.PointAltitude(orb.Point{1, 1}))
	assert.InDelta(t, 5, m.PointAltitude(orb.Point{0.5, 0.5}), 1e-12)
	assert.InDelta(t, 5, m.PointAltitude(orb.Point{1, 0.5}), 1e-12)
	assert.InDelta(t, 0, m.PointAltitude(orb.Point{1, 0}), 1e-12)
	assert.True(t, IsUnspecifiedAltitude(m.PointAltitude(orb.Point{1, -1})))

	t.Run("flat mesh", func(t *testing.T) {
		m := NewElevationMesh()
		_, _, err := m.InsertPolyline([]orb.Point{{0, 0}, {1, 0}}, originInfo("L", 3))
		require.NoError(t, err)
		assert.Equal(t, 3.0, m.PointAltitude(orb.Point{1, 0}))
		assert.True(t, IsUnspecifiedAltitude(m.PointAltitude(orb.Point{0.5, 0})))
	})
}

func TestUpdateInfoForVertices(t *testing.T) {
	t.Run("vertex info comes from input", func(t *testing.T) {
		m := NewElevationMesh()
		crossingSegments(t, m.Mesh, 10, 10)
		vO := m.vertexAt(t, orb.Point{0, 0})
		assert.Empty(t, m.VertexInfo(vO))
		assert.True(t, IsUnspecifiedAltitude(m.AltitudeForInputVertex(vO)))

		require.NoError(t, m.UpdateInfoForVertices())
		assert.Equal(t, Info{KeyAltitude: Float(10), KeyOrigin: IDs("H", "V")}, m.VertexInfo(vO))
		assert.Equal(t, 10.0, m.PointAltitude(orb.Point{0, 0}))
		assert.InDelta(t, 10, m.PointAltitude(orb.Point{0.5, 0}), 1e-12)
	})

	t.Run("conflicting altitudes", func(t *testing.T) {
		m := NewElevationMesh()
		crossingSegments(t, m.Mesh, 10, 20)
		err := m.UpdateInfoForVertices()
		require.Error(t, err)
		inconsistency, ok := datamodel.AsInconsistency(err)
		require.True(t, ok)
		assert.Equal(t, []string{"H", "V"}, inconsistency.IDs)
		require.NotNil(t, inconsistency.Witness)
		assert.Equal(t, orb.Point{0, 0}, *inconsistency.Witness)
		assert.Contains(t, inconsistency.Message, "altitude")
	})

	t.Run("other keys are left out", func(t *testing.T) {
		m := NewElevationMesh()
		info := originInfo("L", 2)
		info[KeyMaterial] = String("grass")
		_, _, err := m.InsertPolyline([]orb.Point{{0, 0}, {1, 0}}, info)
		require.NoError(t, err)
		_, err = m.InsertPoint(orb.Point{0, 1}, nil)
		require.NoError(t, err)
		vC := m.vertexAt(t, orb.Point{0, 1})
		require.NoError(t, m.UpdateInfoForVertices(vC))
		assert.Empty(t, m.VertexInfo(vC))
	})
}

func TestElevationFromReference(t *testing.T) {
	reference := NewReferenceElevationMesh()
	for _, input := range []struct {
		p orb.Point
		z float64
	}{{orb.Point{0, 0}, 0}, {orb.Point{4, 0}, 4}, {orb.Point{0, 4}, 4}} {
		_, err := reference.InsertPoint(input.p, originInfo("ref", input.z))
		require.NoError(t, err)
	}

	m := reference.CopyAsElevationMesh()
	_, err := m.InsertPoint(orb.Point{1, 1}, Info{KeyOrigin: IDs("P")})
	require.NoError(t, err)
	assertBasicCounts(t, m.Mesh, 4, 3, 6, 0)
	assertBasicCounts(t, reference.Mesh, 3, 1, 3, 0)
	AssertValidMesh(t, m.Mesh)

	missing := m.UpdateAltitudeFromReference(reference.PointAltitude)
	assert.Empty(t, missing)
	vP := m.vertexAt(t, orb.Point{1, 1})
	assert.InDelta(t, 2, m.AltitudeForInputVertex(vP), 1e-12)
	assert.Equal(t, []string{"P"}, m.VertexInfo(vP).Origins())

	_, err = m.InsertPoint(orb.Point{10, 10}, nil)
	require.NoError(t, err)
	missing = m.UpdateAltitudeFromReference(reference.PointAltitude)
	assert.Equal(t, []Vertex{m.vertexAt(t, orb.Point{10, 10})}, missing)

	t.Run("copy", func(t *testing.T) {
		c := m.Copy()
		c.VertexInfo(vP)[KeyAltitude] = Float(100)
		assert.InDelta(t, 2, m.AltitudeForInputVertex(vP), 1e-12)
		assert.Equal(t, 100.0, c.AltitudeForInputVertex(vP))
	})
}
