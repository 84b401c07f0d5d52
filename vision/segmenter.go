package vision

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/TIANLI0/WallTint/config"
	"github.com/TIANLI0/WallTint/model"
	"github.com/TIANLI0/WallTint/utils"
	"go.uber.org/zap"
	"gocv.io/x/gocv"
)

const maxWorkingSize = 1200

var ErrReadImage = errors.New("failed to read image")

// GrabCutSegmenter 以点击位置为种子，用 GrabCut 分割出包含该点的区域
type GrabCutSegmenter struct {
	iterations         int
	windowRadius       int
	kernelSize         int
	semaphore          chan struct{}
	complexityAnalyzer *ComplexityAnalyzer
	maskProcessor      *MaskProcessor
}

func NewGrabCutSegmenter(cfg *config.SegmentConfig) *GrabCutSegmenter {
	return &GrabCutSegmenter{
		iterations:         max(1, cfg.Iterations),
		windowRadius:       max(16, cfg.WindowRadius),
		kernelSize:         cfg.KernelSize,
		semaphore:          make(chan struct{}, 1),
		complexityAnalyzer: NewComplexityAnalyzer(),
		maskProcessor:      NewMaskProcessor(),
	}
}

// Segment 返回与原图同尺寸的 PNG 二值掩码（255 为选中区域）。positive 为 false 时取反。
func (s *GrabCutSegmenter) Segment(ctx context.Context, imagePath string, pt image.Point, positive bool) ([]byte, error) {
	select {
	case s.semaphore <- struct{}{}:
		defer func() { <-s.semaphore }()
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	startTime := time.Now()

	img := gocv.IMRead(imagePath, gocv.IMReadColor)
	if img.Empty() {
		return nil, ErrReadImage
	}
	defer img.Close()

	width := img.Cols()
	height := img.Rows()
	if !pt.In(image.Rect(0, 0, width, height)) {
		return nil, fmt.Errorf("%w: (%d, %d) not in %dx%d", model.ErrOutsideImage, pt.X, pt.Y, width, height)
	}

	// 智能缩放
	scaledImg, scale := s.smartResize(&img, maxWorkingSize)
	defer scaledImg.Close()

	seed := image.Point{X: int(float64(pt.X) * scale), Y: int(float64(pt.Y) * scale)}
	complexity := s.complexityAnalyzer.Analyze(&scaledImg)
	iterations := iterationsFor(complexity.Level, s.iterations)

	mask, err := s.grabCut(&scaledImg, seed, iterations)
	if err != nil {
		return nil, err
	}
	defer mask.Close()

	fgMask := s.maskProcessor.ExtractForeground(&mask)
	defer func() { fgMask.Close() }()

	cleaned := s.maskProcessor.Clean(&fgMask, s.kernelSize)
	fgMask.Close()
	fgMask = cleaned

	if complexity.Level == "complex" {
		refined := s.maskProcessor.RefineEdges(&fgMask)
		fgMask.Close()
		fgMask = refined
	}

	// 还原到原始尺寸
	if scale != 1.0 {
		resizedMask := gocv.NewMat()
		gocv.Resize(fgMask, &resizedMask, image.Point{X: width, Y: height}, 0, 0, gocv.InterpolationLinear)
		gocv.Threshold(resizedMask, &resizedMask, 127, 255, gocv.ThresholdBinary)
		fgMask.Close()
		fgMask = resizedMask
	}

	region := s.maskProcessor.KeepComponentAt(&fgMask, pt)
	fgMask.Close()
	fgMask = region

	if !positive {
		inverted := gocv.NewMat()
		gocv.BitwiseNot(fgMask, &inverted)
		fgMask.Close()
		fgMask = inverted
	}

	data, err := encodeMask(&fgMask)
	if err != nil {
		return nil, err
	}

	utils.Logger.Info("region segmented",
		zap.Int("x", pt.X),
		zap.Int("y", pt.Y),
		zap.Bool("positive", positive),
		zap.String("complexity", complexity.Level),
		zap.Int("iterations", iterations),
		zap.Duration("duration", time.Since(startTime)))

	return data, nil
}

// grabCut 先以点击点周围窗口初始化，再把点击点附近标为确定前景细化一次
func (s *GrabCutSegmenter) grabCut(img *gocv.Mat, seed image.Point, iterations int) (gocv.Mat, error) {
	bounds := image.Rect(0, 0, img.Cols(), img.Rows())
	r := s.windowRadius
	rect := image.Rect(seed.X-r, seed.Y-r, seed.X+r, seed.Y+r).Intersect(bounds.Inset(1))
	if rect.Empty() {
		return gocv.Mat{}, fmt.Errorf("%w: image too small", model.ErrOutsideImage)
	}

	mask := gocv.NewMat()
	bgdModel := gocv.NewMat()
	defer bgdModel.Close()
	fgdModel := gocv.NewMat()
	defer fgdModel.Close()

	gocv.GrabCut(*img, &mask, rect, &bgdModel, &fgdModel, iterations, gocv.GCInitWithRect)

	seedRect := image.Rect(seed.X-2, seed.Y-2, seed.X+3, seed.Y+3).Intersect(bounds)
	for y := seedRect.Min.Y; y < seedRect.Max.Y; y++ {
		for x := seedRect.Min.X; x < seedRect.Max.X; x++ {
			mask.SetUCharAt(y, x, 1)
		}
	}

	gocv.GrabCut(*img, &mask, image.Rectangle{}, &bgdModel, &fgdModel, 2, gocv.GCInitWithMask)

	return mask, nil
}

// smartResize 智能缩放图像以适应最大尺寸
func (s *GrabCutSegmenter) smartResize(img *gocv.Mat, maxSize int) (gocv.Mat, float64) {
	width := img.Cols()
	height := img.Rows()
	maxDim := max(width, height)
	if maxDim <= maxSize {
		return img.Clone(), 1.0
	}

	scale := float64(maxSize) / float64(maxDim)
	newWidth := int(float64(width) * scale)
	newHeight := int(float64(height) * scale)

	resized := gocv.NewMat()
	gocv.Resize(*img, &resized, image.Point{X: newWidth, Y: newHeight}, 0, 0, gocv.InterpolationArea)

	return resized, scale
}

// encodeMask 将掩码编码为 PNG
func encodeMask(mask *gocv.Mat) ([]byte, error) {
	buf, err := gocv.IMEncode(".png", *mask)
	if err != nil {
		return nil, fmt.Errorf("encode mask: %w", err)
	}
	defer buf.Close()

	return append([]byte(nil), buf.GetBytes()...), nil
}
