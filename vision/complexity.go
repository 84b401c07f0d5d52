package vision

import (
	"gocv.io/x/gocv"
)

// ComplexityAnalyzer 分析立面复杂度，用于调整 GrabCut 迭代次数
type ComplexityAnalyzer struct{}

type ComplexityInfo struct {
	Level         string
	EdgeDensity   float64
	ColorVariance float64
}

func NewComplexityAnalyzer() *ComplexityAnalyzer {
	return &ComplexityAnalyzer{}
}

// Analyze 分析图像的复杂度
func (ca *ComplexityAnalyzer) Analyze(img *gocv.Mat) ComplexityInfo {
	edgeDensity := ca.calculateEdgeDensity(img)
	colorVariance := ca.calculateColorVariance(img)

	return ComplexityInfo{
		Level:         classify(edgeDensity, colorVariance),
		EdgeDensity:   edgeDensity,
		ColorVariance: colorVariance,
	}
}

func classify(edgeDensity, colorVariance float64) string {
	switch {
	case edgeDensity < 0.05 && colorVariance < 30:
		return "simple"
	case edgeDensity > 0.15 || colorVariance > 60:
		return "complex"
	default:
		return "medium"
	}
}

// iterationsFor 简单立面少迭代，复杂立面（砖纹、窗格多）多迭代
func iterationsFor(level string, base int) int {
	switch level {
	case "simple":
		return max(3, base-2)
	case "complex":
		return base + 2
	default:
		return base
	}
}

// calculateEdgeDensity 计算图像的边缘密度
func (ca *ComplexityAnalyzer) calculateEdgeDensity(img *gocv.Mat) float64 {
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(*img, &gray, gocv.ColorBGRToGray)

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(gray, &edges, 50, 150)

	edgePixels := float64(gocv.CountNonZero(edges))
	totalPixels := float64(img.Rows() * img.Cols())

	return edgePixels / totalPixels
}

// calculateColorVariance 计算图像的颜色方差
func (ca *ComplexityAnalyzer) calculateColorVariance(img *gocv.Mat) float64 {
	lab := gocv.NewMat()
	defer lab.Close()
	gocv.CvtColor(*img, &lab, gocv.ColorBGRToLab)

	mean := gocv.NewMat()
	stddev := gocv.NewMat()
	defer mean.Close()
	defer stddev.Close()
	gocv.MeanStdDev(lab, &mean, &stddev)

	variance := 0.0
	for i := 0; i < stddev.Rows(); i++ {
		variance += stddev.GetDoubleAt(i, 0)
	}

	return variance / float64(stddev.Rows())
}
