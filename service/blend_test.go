package service

import (
	"image"
	"image/color"
	"testing"

	"github.com/TIANLI0/WallTint/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlendOnlyTouchesMask(t *testing.T) {
	base := image.NewRGBA(image.Rect(0, 0, 2, 1))
	base.SetRGBA(0, 0, color.RGBA{R: 200, G: 100, B: 0, A: 255})
	base.SetRGBA(1, 0, color.RGBA{R: 200, G: 100, B: 0, A: 255})
	mask := image.NewGray(image.Rect(0, 0, 2, 1))
	mask.SetGray(0, 0, color.Gray{Y: 255})

	out := blend(base, mask, model.RGB{0, 0, 200}, 0.25)

	assert.Equal(t, color.RGBA{R: 150, G: 75, B: 50, A: 255}, out.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{R: 200, G: 100, B: 0, A: 255}, out.RGBAAt(1, 0))
}

func TestBlendFullOpacityReplaces(t *testing.T) {
	base := image.NewRGBA(image.Rect(0, 0, 1, 1))
	base.SetRGBA(0, 0, color.RGBA{R: 10, G: 20, B: 30, A: 255})
	mask := image.NewGray(image.Rect(0, 0, 1, 1))
	mask.SetGray(0, 0, color.Gray{Y: 200})

	out := blend(base, mask, model.RGB{51, 102, 204}, 1)

	assert.Equal(t, color.RGBA{R: 51, G: 102, B: 204, A: 255}, out.RGBAAt(0, 0))
}

func TestBlendScalesMismatchedMask(t *testing.T) {
	base := image.NewRGBA(image.Rect(0, 0, 4, 4))
	mask := image.NewGray(image.Rect(0, 0, 2, 2))
	mask.SetGray(0, 0, color.Gray{Y: 255})

	out := blend(base, mask, model.RGB{255, 255, 255}, 1)

	assert.Equal(t, uint8(255), out.RGBAAt(1, 1).R)
	assert.Equal(t, uint8(0), out.RGBAAt(3, 3).R)
}

func TestBlendNormalisesOrigin(t *testing.T) {
	base := image.NewRGBA(image.Rect(5, 5, 7, 6))
	base.SetRGBA(5, 5, color.RGBA{R: 40, A: 255})
	mask := image.NewGray(image.Rect(0, 0, 2, 1))

	out := blend(base, mask, model.RGB{}, 1)

	require.Equal(t, image.Rect(0, 0, 2, 1), out.Bounds())
	assert.Equal(t, uint8(40), out.RGBAAt(0, 0).R)
}

func TestDecodeImageRejectsGarbage(t *testing.T) {
	_, _, err := decodeImage([]byte("not an image"))
	assert.Error(t, err)
}

func TestClip(t *testing.T) {
	assert.Equal(t, uint8(0), clip(-3))
	assert.Equal(t, uint8(255), clip(300))
	assert.Equal(t, uint8(177), clip(177.5))
}
