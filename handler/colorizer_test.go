package handler

import (
	"bytes"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/TIANLI0/WallTint/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func upload(t *testing.T, r http.Handler, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartBody(t, "image", "house.png", data)
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHome(t *testing.T) {
	w := doJSON(newColorizerRouter(t), http.MethodGet, "/", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Server is running"}`, w.Body.String())
}

func TestUploadWithoutFile(t *testing.T) {
	r := newColorizerRouter(t)
	body, contentType := multipartBody(t, "", "", nil)
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "No file uploaded", decodeBody[model.ErrorResponse](t, w).Error)
}

func TestUploadRejectsNonImage(t *testing.T) {
	w := upload(t, newColorizerRouter(t), []byte("just some text"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeBody[model.ErrorResponse](t, w).Error, "unsupported file type")
}

func TestGenerateMasksValidation(t *testing.T) {
	r := newColorizerRouter(t)

	w := doJSON(r, http.MethodPost, "/generate_masks", map[string]any{"x": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Missing coordinates", decodeBody[model.ErrorResponse](t, w).Error)

	w = doJSON(r, http.MethodPost, "/generate_masks", map[string]any{"x": 1, "y": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "No image loaded", decodeBody[model.ErrorResponse](t, w).Error)

	require.Equal(t, http.StatusOK, upload(t, r, grayPhoto(8, 4)).Code)
	w = doJSON(r, http.MethodPost, "/generate_masks", map[string]any{"x": 50, "y": 1, "positive": true})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestApplyColorValidation(t *testing.T) {
	r := newColorizerRouter(t)
	require.Equal(t, http.StatusOK, upload(t, r, grayPhoto(8, 4)).Code)

	w := doJSON(r, http.MethodPost, "/apply_color", map[string]any{"color": []int{1, 2, 3}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Missing mask_id or color", decodeBody[model.ErrorResponse](t, w).Error)

	w = doJSON(r, http.MethodPost, "/apply_color", map[string]any{"mask_id": 3, "color": []int{1, 2, 3}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid mask_id", decodeBody[model.ErrorResponse](t, w).Error)

	w = doJSON(r, http.MethodPost, "/apply_color", map[string]any{"mask_id": 0, "color": []int{300, 0, 0}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDownloadBeforeApply(t *testing.T) {
	r := newColorizerRouter(t)
	require.Equal(t, http.StatusOK, upload(t, r, grayPhoto(8, 4)).Code)

	w := doJSON(r, http.MethodGet, "/download", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"success":false,"error":"No edited image"}`, w.Body.String())
}

func TestColorizerFlow(t *testing.T) {
	r := newColorizerRouter(t)

	w := upload(t, r, grayPhoto(8, 4))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Image uploaded successfully", decodeBody[model.MessageResponse](t, w).Message)

	w = doJSON(r, http.MethodPost, "/generate_masks", map[string]any{"x": 1, "y": 1, "positive": true})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"mask_id":0}`, w.Body.String())
	w = doJSON(r, http.MethodPost, "/generate_masks", map[string]any{"x": 7, "y": 2})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"mask_id":1}`, w.Body.String())

	w = doJSON(r, http.MethodPost, "/apply_color", map[string]any{"mask_id": 1, "color": []int{0, 0, 255}, "alpha": 1})
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(r, http.MethodPost, "/apply_color", map[string]any{"mask_id": 0, "color": []int{255, 0, 0}})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodGet, "/download", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")

	img, err := png.Decode(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	// 默认 alpha 0.6: 100*0.4 + 255*0.6 = 193
	r0, g0, b0, _ := img.At(0, 0).RGBA()
	assert.InDelta(t, 193, r0>>8, 1)
	assert.InDelta(t, 40, g0>>8, 1)
	assert.InDelta(t, 40, b0>>8, 1)
	r1, g1, b1, _ := img.At(7, 3).RGBA()
	assert.Equal(t, []uint32{0, 0, 255}, []uint32{r1 >> 8, g1 >> 8, b1 >> 8})
}
