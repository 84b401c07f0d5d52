package editor

import (
	"fmt"
	"math"
)

// ImageKind 当前图片的来源
type ImageKind int

const (
	KindNone ImageKind = iota
	// LocalPreview 用户本地选择的原图
	LocalPreview
	// ServerComposite 服务端着色后下载的结果
	ServerComposite
)

func (k ImageKind) String() string {
	switch k {
	case LocalPreview:
		return "local_preview"
	case ServerComposite:
		return "server_composite"
	default:
		return "none"
	}
}

// SessionImage 当前用于显示和点选坐标的图片。Data 由会话持有，调用方不应修改。
type SessionImage struct {
	Kind    ImageKind
	Name    string
	Data    []byte
	Version uint64
}

// View 调用方正在显示的图片版本及其渲染框，用于把指针坐标换算为图片像素坐标
type View struct {
	Version uint64
	Left    float64
	Top     float64
	Width   float64
	Height  float64
}

// maxPixel 像素坐标上限，Width/Height 为 0 时用它兜底
const maxPixel = math.MaxInt32

// Translate 减去渲染框原点并四舍五入到整数像素。
// Width/Height 为 0 时只检查坐标有限且不超过 maxPixel。
func (v View) Translate(clientX, clientY float64) (int, int, error) {
	x := math.Round(clientX - v.Left)
	y := math.Round(clientY - v.Top)
	if !inRange(x, v.Width) || !inRange(y, v.Height) {
		return 0, 0, fmt.Errorf("%w: (%v, %v)", ErrOutOfBounds, x, y)
	}
	return int(x), int(y), nil
}

func inRange(p, extent float64) bool {
	if math.IsNaN(p) || p < 0 || p > maxPixel {
		return false
	}
	return extent <= 0 || p < extent
}
