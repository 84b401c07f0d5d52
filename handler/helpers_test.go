package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/TIANLI0/WallTint/config"
	"github.com/TIANLI0/WallTint/model"
	"github.com/TIANLI0/WallTint/service"
	"github.com/TIANLI0/WallTint/store"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// halfSegmenter 点击左半边得到左半边区域，右半边同理
type halfSegmenter struct{}

func (halfSegmenter) Segment(_ context.Context, imagePath string, pt image.Point, positive bool) ([]byte, error) {
	f, err := openImage(imagePath)
	if err != nil {
		return nil, err
	}
	b := f.Bounds()
	if !pt.In(b) {
		return nil, model.ErrOutsideImage
	}
	mask := image.NewGray(b)
	left := pt.X < b.Dx()/2
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if ((x < b.Dx()/2) == left) == positive {
				mask.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return encode(mask), nil
}

func openImage(path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	return img, err
}

func encode(img image.Image) []byte {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func grayPhoto(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 100, G: 100, B: 100, A: 255})
		}
	}
	return encode(img)
}

func newColorizerRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	images, err := store.NewImageStore(t.TempDir())
	require.NoError(t, err)
	cfg := &config.UploadConfig{MaxSize: 1 << 20, AllowedTypes: []string{"image/png", "image/jpeg"}}
	svc := service.NewColorizerService(cfg, images, store.NewMemoryMaskStore(), halfSegmenter{})

	r := gin.New()
	NewColorizerHandler(svc, cfg.MaxSize).Register(r)
	return r
}

func multipartBody(t *testing.T, field, name string, data []byte) (io.Reader, string) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if field != "" {
		part, err := w.CreateFormFile(field, name)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &body, w.FormDataContentType()
}

func doJSON(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}
