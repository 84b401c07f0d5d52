package editor

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewTranslate(t *testing.T) {
	view := View{Left: 10.25, Top: 5, Width: 100, Height: 50}

	x, y, err := view.Translate(20.7, 5.4)
	require.NoError(t, err)
	assert.Equal(t, 10, x)
	assert.Equal(t, 0, y)

	_, _, err = view.Translate(110.25, 6)
	assert.ErrorIs(t, err, ErrOutOfBounds)
	_, _, err = view.Translate(9, 6)
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestViewTranslateWithoutBox(t *testing.T) {
	view := View{}

	x, y, err := view.Translate(4000, 3000)
	require.NoError(t, err)
	assert.Equal(t, 4000, x)
	assert.Equal(t, 3000, y)

	for _, v := range []float64{1e300, math.Inf(1), math.Inf(-1), math.NaN(), math.MaxInt32 + 1} {
		_, _, err := view.Translate(v, 1)
		assert.ErrorIs(t, err, ErrOutOfBounds, v)
		_, _, err = view.Translate(1, v)
		assert.ErrorIs(t, err, ErrOutOfBounds, v)
	}
}
