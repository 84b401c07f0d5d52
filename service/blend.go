package service

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	// 注册上传图片可能使用的解码器
	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/TIANLI0/WallTint/model"
)

// decodeImage 解码上传原图或已着色的 PNG
func decodeImage(data []byte) (image.Image, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	return img, format, nil
}

// blend 按 out = img·(1−m·α) + color·m·α 混合颜色，m 为掩码二值化后的 0/1。
// 掩码尺寸与图片不一致时按最近邻缩放。
func blend(base, mask image.Image, c model.RGB, alpha float64) *image.RGBA {
	b := base.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(out, out.Bounds(), base, b.Min, xdraw.Src)

	gray := image.NewGray(out.Bounds())
	if mask.Bounds().Dx() == b.Dx() && mask.Bounds().Dy() == b.Dy() {
		xdraw.Draw(gray, gray.Bounds(), mask, mask.Bounds().Min, xdraw.Src)
	} else {
		xdraw.NearestNeighbor.Scale(gray, gray.Bounds(), mask, mask.Bounds(), xdraw.Src, nil)
	}

	colorF := [3]float64{float64(c[0]), float64(c[1]), float64(c[2])}
	for y := 0; y < out.Rect.Dy(); y++ {
		for x := 0; x < out.Rect.Dx(); x++ {
			if gray.Pix[gray.PixOffset(x, y)] <= 127 {
				continue
			}
			i := out.PixOffset(x, y)
			for ch := 0; ch < 3; ch++ {
				v := float64(out.Pix[i+ch])*(1-alpha) + colorF[ch]*alpha
				out.Pix[i+ch] = clip(v)
			}
			out.Pix[i+3] = 255
		}
	}

	return out
}

// clip 截断到 [0,255] 后取整数部分
func clip(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
