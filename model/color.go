package model

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	MinOpacity  = 0.1
	MaxOpacity  = 1.0
	OpacityStep = 0.05
)

var (
	ErrInvalidColor   = errors.New("invalid hex color")
	ErrInvalidOpacity = errors.New("opacity must be in (0, 1]")
)

// RGB 三通道颜色，JSON 编码为 [r,g,b]
type RGB [3]uint8

// ParseHex 解析 #rrggbb，# 可省略
func ParseHex(s string) (RGB, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 {
		return RGB{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	return RGB{uint8(v >> 16 & 0xff), uint8(v >> 8 & 0xff), uint8(v & 0xff)}, nil
}

func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2])
}

// ValidateOpacity 检查透明度是否在 (0, 1]
func ValidateOpacity(v float64) error {
	if math.IsNaN(v) || v <= 0 || v > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidOpacity, v)
	}
	return nil
}

// SnapOpacity 按滑块的取值范围和步长对齐
func SnapOpacity(v float64) float64 {
	if math.IsNaN(v) || v < MinOpacity {
		return MinOpacity
	}
	if v > MaxOpacity {
		return MaxOpacity
	}
	steps := math.Round((v - MinOpacity) / OpacityStep)
	return math.Round((MinOpacity+steps*OpacityStep)*100) / 100
}
