package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/TIANLI0/WallTint/model"
	"github.com/TIANLI0/WallTint/service"
	"github.com/TIANLI0/WallTint/store"
	"github.com/TIANLI0/WallTint/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const defaultAlpha = 0.6

// Colorizer 服务端着色能力
type Colorizer interface {
	Upload(ctx context.Context, name, contentType string, data []byte) error
	Segment(ctx context.Context, x, y int, positive bool) (int64, error)
	Apply(ctx context.Context, maskID int64, color model.RGB, alpha float64) error
	Download() ([]byte, error)
}

type ColorizerHandler struct {
	svc     Colorizer
	maxSize int64
}

func NewColorizerHandler(svc Colorizer, maxSize int64) *ColorizerHandler {
	return &ColorizerHandler{svc: svc, maxSize: maxSize}
}

// Register 注册着色服务路由
func (h *ColorizerHandler) Register(r gin.IRoutes) {
	r.GET("/", h.Home)
	r.POST("/upload", h.Upload)
	r.POST("/generate_masks", h.GenerateMasks)
	r.POST("/apply_color", h.ApplyColor)
	r.GET("/download", h.Download)
}

func (h *ColorizerHandler) Home(c *gin.Context) {
	c.JSON(http.StatusOK, model.MessageResponse{Message: "Server is running"})
}

// Upload 接收原图
func (h *ColorizerHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		utils.Logger.Error("failed to get uploaded file", zap.Error(err))
		errorJSON(c, http.StatusBadRequest, "No file uploaded")
		return
	}
	if h.maxSize > 0 && file.Size > h.maxSize {
		errorJSON(c, http.StatusBadRequest, "File too large")
		return
	}

	f, err := file.Open()
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, "Failed to read file")
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, "Failed to read file")
		return
	}

	err = h.svc.Upload(c.Request.Context(), file.Filename, file.Header.Get("Content-Type"), data)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, model.MessageResponse{Message: "Image uploaded successfully"})
	case errors.Is(err, service.ErrEmptyFile):
		errorJSON(c, http.StatusBadRequest, "No file uploaded")
	case errors.Is(err, service.ErrFileTooLarge), errors.Is(err, service.ErrUnsupportedType):
		errorJSON(c, http.StatusBadRequest, err.Error())
	default:
		utils.Logger.Error("failed to save upload", zap.Error(err))
		errorJSON(c, http.StatusInternalServerError, "Failed to save image")
	}
}

// GenerateMasks 点击生成区域掩码，返回 mask_id
func (h *ColorizerHandler) GenerateMasks(c *gin.Context) {
	var req model.SegmentRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.X == nil || req.Y == nil {
		errorJSON(c, http.StatusBadRequest, "Missing coordinates")
		return
	}

	id, err := h.svc.Segment(c.Request.Context(), *req.X, *req.Y, req.IsPositive())
	switch {
	case err == nil:
		c.JSON(http.StatusOK, model.SegmentResponse{MaskID: id})
	case errors.Is(err, service.ErrNoImage):
		errorJSON(c, http.StatusBadRequest, "No image loaded")
	case errors.Is(err, model.ErrOutsideImage):
		errorJSON(c, http.StatusBadRequest, err.Error())
	default:
		utils.Logger.Error("mask generation failed",
			zap.Int("x", *req.X),
			zap.Int("y", *req.Y),
			zap.Error(err))
		errorJSON(c, http.StatusInternalServerError, "Mask generation failed")
	}
}

// ApplyColor 把颜色混合进指定掩码区域
func (h *ColorizerHandler) ApplyColor(c *gin.Context) {
	var req model.CompositeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.MaskID == nil || req.Color == nil {
		errorJSON(c, http.StatusBadRequest, "Missing mask_id or color")
		return
	}
	alpha := defaultAlpha
	if req.Alpha != nil {
		alpha = *req.Alpha
	}

	err := h.svc.Apply(c.Request.Context(), *req.MaskID, *req.Color, alpha)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, model.MessageResponse{Message: "Color applied successfully"})
	case errors.Is(err, store.ErrMaskNotFound):
		errorJSON(c, http.StatusBadRequest, "Invalid mask_id")
	case errors.Is(err, service.ErrNoImage):
		errorJSON(c, http.StatusBadRequest, "No image loaded")
	case errors.Is(err, service.ErrInvalidAlpha):
		errorJSON(c, http.StatusBadRequest, err.Error())
	default:
		utils.Logger.Error("color apply failed", zap.Int64("mask_id", *req.MaskID), zap.Error(err))
		errorJSON(c, http.StatusInternalServerError, "Color apply failed")
	}
}

// Download 返回着色结果
func (h *ColorizerHandler) Download(c *gin.Context) {
	data, err := h.svc.Download()
	if errors.Is(err, model.ErrNoEditedImage) {
		errorJSON(c, http.StatusNotFound, "No edited image")
		return
	}
	if err != nil {
		utils.Logger.Error("failed to read edited image", zap.Error(err))
		errorJSON(c, http.StatusInternalServerError, "Failed to read edited image")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="edited.png"`)
	c.Data(http.StatusOK, "image/png", data)
}

func errorJSON(c *gin.Context, status int, msg string) {
	c.JSON(status, model.ErrorResponse{Success: false, Error: msg})
}
