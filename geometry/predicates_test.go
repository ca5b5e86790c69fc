package geometry

import (
	"fmt"
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
)

func rotatePoint(p orb.Point, angle float64) orb.Point {
	s, c := math.Sin(angle), math.Cos(angle)
	return orb.Point{p[0]*c - p[1]*s, p[0]*s + p[1]*c}
}

func TestCircularIndex(t *testing.T) {
	n := 3
	expectedIndexes := []int{0, 1, 2, 0, 1, 2, 0, 1, 2}
	for i := -3; i < 6; i++ {
		assert.Equal(t, expectedIndexes[i+3], CircularIndex(i, n))
	}
}

func TestOrient(t *testing.T) {
	for cwI := 0; cwI < 2; cwI++ {
		cwI := cwI // import into inner scope
		t.Run(fmt.Sprintf("With %s triangles", []string{"CCW", "CW"}[cwI]), func(t *testing.T) {
			a, b, c := orb.Point{0, -1}, orb.Point{1, 0}, orb.Point{0, 1}
			expected := 1
			if cwI == 1 {
				a, b = b, a
				expected = -1
			}
			assert.Equal(t, expected, Orient(a, b, c))

			// Rotate the triangle repeatedly by a weird angle
			angle := math.Pi / 7
			for i := 0; i < 14; i++ {
				a, b, c = rotatePoint(a, angle), rotatePoint(b, angle), rotatePoint(c, angle)
				assert.Equal(t, expected, Orient(a, b, c))
			}
		})
	}

	t.Run("collinear", func(t *testing.T) {
		assert.Equal(t, 0, Orient(orb.Point{0, 0}, orb.Point{1, 1}, orb.Point{3, 3}))
		assert.Equal(t, 0, Orient(orb.Point{0, 0}, orb.Point{0, 2}, orb.Point{0, -5}))
	})

	t.Run("nearly collinear", func(t *testing.T) {
		// The floating point determinant of these points is unreliable; the
		// exact answer only depends on the last bit of the middle point.
		a := orb.Point{0.5, 0.5}
		c := orb.Point{24, 24}
		onLine := orb.Point{12, 12}
		above := orb.Point{12, math.Nextafter(12, 13)}
		below := orb.Point{12, math.Nextafter(12, 11)}
		assert.Equal(t, 0, Orient(a, c, onLine))
		assert.Equal(t, 1, Orient(a, c, above))
		assert.Equal(t, -1, Orient(a, c, below))
	})
}

func TestInCircle(t *testing.T) {
	a, b, c := orb.Point{0, 0}, orb.Point{2, 0}, orb.Point{0, 2}
	assert.Equal(t, 1, InCircle(a, b, c, orb.Point{1, 1}))
	assert.Equal(t, 0, InCircle(a, b, c, orb.Point{2, 2}))
	assert.Equal(t, -1, InCircle(a, b, c, orb.Point{3, 3}))
	assert.Equal(t, 1, InCircle(a, b, c, orb.Point{2, math.Nextafter(2, 1)}))
}

func TestSegmentMeetParams(t *testing.T) {
	s := Segment{orb.Point{0, 0}, orb.Point{4, 0}}

	t.Run("crossing", func(t *testing.T) {
		params := s.MeetParams(Segment{orb.Point{1, -1}, orb.Point{1, 1}})
		assert.Equal(t, []float64{0.25}, params)
		p, ok := s.Intersection(Segment{orb.Point{1, -1}, orb.Point{1, 1}})
		assert.True(t, ok)
		assert.Equal(t, orb.Point{1, 0}, p)
	})

	t.Run("touching", func(t *testing.T) {
		assert.Equal(t, []float64{1}, s.MeetParams(Segment{orb.Point{4, 0}, orb.Point{5, 5}}))
		assert.Equal(t, []float64{0.5}, s.MeetParams(Segment{orb.Point{2, 0}, orb.Point{2, 3}}))
	})

	t.Run("collinear overlap", func(t *testing.T) {
		assert.Equal(t, []float64{0.5, 1}, s.MeetParams(Segment{orb.Point{2, 0}, orb.Point{6, 0}}))
		assert.Nil(t, s.MeetParams(Segment{orb.Point{5, 0}, orb.Point{6, 0}}))
	})

	t.Run("disjoint", func(t *testing.T) {
		assert.Nil(t, s.MeetParams(Segment{orb.Point{1, 1}, orb.Point{2, 3}}))
		assert.False(t, s.Crosses(Segment{orb.Point{1, 1}, orb.Point{2, 3}}))
	})
}
