package vision

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

var white = color.RGBA{R: 255, G: 255, B: 255, A: 255}

// MaskProcessor 负责处理图像掩码
type MaskProcessor struct{}

func NewMaskProcessor() *MaskProcessor {
	return &MaskProcessor{}
}

// ExtractForeground 把 GrabCut 标签中的确定前景和可能前景合并为 0/255 掩码
func (mp *MaskProcessor) ExtractForeground(mask *gocv.Mat) gocv.Mat {
	fgMask := gocv.NewMat()
	tmp1 := gocv.NewMatFromScalar(gocv.Scalar{Val1: 1}, gocv.MatTypeCV8U)
	defer tmp1.Close()
	gocv.Compare(*mask, tmp1, &fgMask, gocv.CompareEQ)

	fgMaskPr := gocv.NewMat()
	defer fgMaskPr.Close()
	tmp2 := gocv.NewMatFromScalar(gocv.Scalar{Val1: 3}, gocv.MatTypeCV8U)
	defer tmp2.Close()
	gocv.Compare(*mask, tmp2, &fgMaskPr, gocv.CompareEQ)

	combined := gocv.NewMat()
	gocv.BitwiseOr(fgMask, fgMaskPr, &combined)
	fgMask.Close()

	return combined
}

// Clean 开运算去除小噪点，保持区域形状
func (mp *MaskProcessor) Clean(mask *gocv.Mat, kernelSize int) gocv.Mat {
	if kernelSize < 1 {
		kernelSize = 3
	}
	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Point{X: kernelSize, Y: kernelSize})
	defer kernel.Close()

	opened := gocv.NewMat()
	gocv.MorphologyEx(*mask, &opened, gocv.MorphOpen, kernel)

	return opened
}

// RefineEdges 精细化掩码边缘
func (mp *MaskProcessor) RefineEdges(mask *gocv.Mat) gocv.Mat {
	kernel := gocv.GetStructuringElement(gocv.MorphEllipse, image.Point{X: 2, Y: 2})
	defer kernel.Close()

	refined := gocv.NewMat()
	gocv.Dilate(*mask, &refined, kernel)

	blurred := gocv.NewMat()
	gocv.GaussianBlur(refined, &blurred, image.Point{X: 3, Y: 3}, 0, 0, gocv.BorderDefault)
	refined.Close()

	final := gocv.NewMat()
	gocv.Threshold(blurred, &final, 127, 255, gocv.ThresholdBinary)
	blurred.Close()

	return final
}

// KeepComponentAt 只保留包含 pt 的连通区域；没有区域覆盖 pt 时退回最大区域
func (mp *MaskProcessor) KeepComponentAt(mask *gocv.Mat, pt image.Point) gocv.Mat {
	contours := gocv.FindContours(*mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	for i := 0; i < contours.Size(); i++ {
		if !pt.In(gocv.BoundingRect(contours.At(i))) {
			continue
		}

		filled := gocv.NewMatWithSize(mask.Rows(), mask.Cols(), gocv.MatTypeCV8U)
		gocv.DrawContours(&filled, contours, i, white, -1)
		if filled.GetUCharAt(pt.Y, pt.X) == 0 {
			filled.Close()
			continue
		}

		// 与原掩码取交集，保留区域内部的空洞（窗户等）
		component := gocv.NewMat()
		gocv.BitwiseAnd(*mask, filled, &component)
		filled.Close()
		return component
	}

	return mp.KeepLargest(mask)
}

// KeepLargest 保留掩码中最大的连通区域
func (mp *MaskProcessor) KeepLargest(mask *gocv.Mat) gocv.Mat {
	contours := gocv.FindContours(*mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	if contours.Size() == 0 {
		return mask.Clone()
	}

	maxArea := 0.0
	maxIndex := 0
	for i := 0; i < contours.Size(); i++ {
		area := gocv.ContourArea(contours.At(i))
		if area > maxArea {
			maxArea = area
			maxIndex = i
		}
	}

	newMask := gocv.NewMatWithSize(mask.Rows(), mask.Cols(), gocv.MatTypeCV8U)
	gocv.DrawContours(&newMask, contours, maxIndex, white, -1)

	return newMask
}
