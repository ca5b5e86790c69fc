package dbg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestName(t *testing.T) {
	type handle struct {
		owner *int
		index int
	}
	owner := new(int)

	t.Run("stable", func(t *testing.T) {
		assert.Equal(t, Name(handle{owner, 1}), Name(handle{owner, 1}))
	})

	t.Run("nil", func(t *testing.T) {
		var p *int
		assert.Equal(t, "Ø", Name(nil))
		assert.Equal(t, "Ø", Name(p))
	})

	t.Run("plain values", func(t *testing.T) {
		assert.NotEqual(t, "Ø", Name(3))
		assert.NotEmpty(t, Name(handle{owner, 2}))
	})
}
