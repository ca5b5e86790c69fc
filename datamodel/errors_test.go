package datamodel

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInconsistency(t *testing.T) {
	err := NewInconsistency("Overlap of %s", "a").WithIDs("a", "b").WithWitness(orb.Point{1, 2})
	assert.Equal(t, "Overlap of a [ids: a, b] [witness: 1 2]", err.Error())
	assert.Equal(t, err, errors.Cause(errors.Wrap(err, "merging")))

	t.Run("wrapped", func(t *testing.T) {
		found, ok := AsInconsistency(errors.Wrap(err, "merging"))
		require.True(t, ok)
		assert.Same(t, err, found)

		_, ok = AsInconsistency(errors.New("plain"))
		assert.False(t, ok)
	})

	t.Run("cause", func(t *testing.T) {
		sentinel := errors.New("degenerate mesh")
		withCause := NewInconsistency("Cannot locate").WithCause(sentinel)
		wrapped := errors.Wrap(withCause, "querying")
		assert.ErrorIs(t, wrapped, sentinel)
		assert.Same(t, withCause, errors.Cause(wrapped))
		_, ok := AsInconsistency(wrapped)
		assert.True(t, ok)
	})
}
