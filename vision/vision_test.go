package vision

import (
	"context"
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/TIANLI0/WallTint/config"
	"github.com/TIANLI0/WallTint/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func TestClassify(t *testing.T) {
	assert.Equal(t, "simple", classify(0.01, 10))
	assert.Equal(t, "complex", classify(0.2, 10))
	assert.Equal(t, "complex", classify(0.01, 70))
	assert.Equal(t, "medium", classify(0.1, 40))
}

func TestIterationsFor(t *testing.T) {
	assert.Equal(t, 3, iterationsFor("simple", 5))
	assert.Equal(t, 3, iterationsFor("simple", 2))
	assert.Equal(t, 5, iterationsFor("medium", 5))
	assert.Equal(t, 7, iterationsFor("complex", 5))
}

func TestExtractForeground(t *testing.T) {
	labels := gocv.NewMatWithSize(2, 2, gocv.MatTypeCV8U)
	defer labels.Close()
	labels.SetUCharAt(0, 0, 0)
	labels.SetUCharAt(0, 1, 1)
	labels.SetUCharAt(1, 0, 2)
	labels.SetUCharAt(1, 1, 3)

	fg := NewMaskProcessor().ExtractForeground(&labels)
	defer fg.Close()

	assert.Equal(t, uint8(0), fg.GetUCharAt(0, 0))
	assert.Equal(t, uint8(255), fg.GetUCharAt(0, 1))
	assert.Equal(t, uint8(0), fg.GetUCharAt(1, 0))
	assert.Equal(t, uint8(255), fg.GetUCharAt(1, 1))
}

func twoBlockMask() gocv.Mat {
	mask := gocv.NewMatWithSize(60, 100, gocv.MatTypeCV8U)
	gocv.Rectangle(&mask, image.Rect(5, 5, 30, 50), white, -1)
	gocv.Rectangle(&mask, image.Rect(50, 5, 95, 55), white, -1)
	return mask
}

func TestCleanRemovesSpeckles(t *testing.T) {
	mask := twoBlockMask()
	defer mask.Close()
	mask.SetUCharAt(2, 40, 255)

	cleaned := NewMaskProcessor().Clean(&mask, 3)
	defer cleaned.Close()

	assert.Equal(t, uint8(0), cleaned.GetUCharAt(2, 40))
	assert.Equal(t, uint8(255), cleaned.GetUCharAt(20, 15))
}

func TestKeepComponentAt(t *testing.T) {
	mask := twoBlockMask()
	defer mask.Close()
	mp := NewMaskProcessor()

	left := mp.KeepComponentAt(&mask, image.Pt(10, 10))
	defer left.Close()
	assert.Equal(t, uint8(255), left.GetUCharAt(10, 10))
	assert.Equal(t, uint8(0), left.GetUCharAt(20, 70))

	// 点不在任何区域内时保留最大区域
	fallback := mp.KeepComponentAt(&mask, image.Pt(40, 58))
	defer fallback.Close()
	assert.Equal(t, uint8(0), fallback.GetUCharAt(10, 10))
	assert.Equal(t, uint8(255), fallback.GetUCharAt(20, 70))
}

func TestSegmentRejectsPointOutsideImage(t *testing.T) {
	img := gocv.NewMatWithSize(40, 40, gocv.MatTypeCV8UC3)
	defer img.Close()
	gocv.Rectangle(&img, image.Rect(0, 0, 40, 40), color.RGBA{R: 200, G: 180, B: 160, A: 255}, -1)
	path := filepath.Join(t.TempDir(), "wall.png")
	require.True(t, gocv.IMWrite(path, img))

	s := NewGrabCutSegmenter(&config.SegmentConfig{Iterations: 3, WindowRadius: 16, KernelSize: 3})
	_, err := s.Segment(context.Background(), path, image.Pt(41, 3), true)

	assert.ErrorIs(t, err, model.ErrOutsideImage)
}

func TestSegmentMissingFile(t *testing.T) {
	s := NewGrabCutSegmenter(&config.SegmentConfig{Iterations: 3, WindowRadius: 16, KernelSize: 3})
	_, err := s.Segment(context.Background(), filepath.Join(t.TempDir(), "absent.png"), image.Pt(1, 1), true)

	assert.ErrorIs(t, err, ErrReadImage)
}
