package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/TIANLI0/WallTint/editor"
	"github.com/TIANLI0/WallTint/model"
	"github.com/TIANLI0/WallTint/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// StudioHandler 把一个编辑会话暴露给浏览器页面：选图、上传、点选、调色、着色、下载
type StudioHandler struct {
	session      *editor.Session
	maxSize      int64
	downloadName string
}

func NewStudioHandler(session *editor.Session, maxSize int64, downloadName string) *StudioHandler {
	if downloadName == "" {
		downloadName = "colored_house.png"
	}
	return &StudioHandler{session: session, maxSize: maxSize, downloadName: downloadName}
}

func (h *StudioHandler) Register(r gin.IRoutes) {
	r.POST("/file", h.OpenFile)
	r.POST("/upload", h.Upload)
	r.POST("/click", h.Click)
	r.GET("/params", h.GetParams)
	r.PUT("/params", h.SetParams)
	r.POST("/apply", h.Apply)
	r.GET("/image", h.Image)
	r.GET("/selection", h.Selection)
	r.GET("/download", h.Download)
}

// OpenFile 选择本地图片作为预览，清空选区
func (h *StudioHandler) OpenFile(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		studioError(c, http.StatusBadRequest, "Please upload an image first.", err)
		return
	}
	if h.maxSize > 0 && file.Size > h.maxSize {
		studioError(c, http.StatusBadRequest, fmt.Sprintf("File too large (%d MB)", h.maxSize/(1024*1024)), nil)
		return
	}

	f, err := file.Open()
	if err != nil {
		studioError(c, http.StatusInternalServerError, "Failed to read file", err)
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		studioError(c, http.StatusInternalServerError, "Failed to read file", err)
		return
	}

	img, err := h.session.Open(file.Filename, data)
	if err != nil {
		studioError(c, http.StatusBadRequest, "Please upload an image first.", err)
		return
	}
	c.JSON(http.StatusOK, model.UploadResponse{Success: true, Message: "Image opened", Version: img.Version})
}

// Upload 把当前文件发送到着色服务
func (h *StudioHandler) Upload(c *gin.Context) {
	msg, err := h.session.Upload(c.Request.Context())
	if errors.Is(err, editor.ErrNoFile) {
		studioError(c, http.StatusBadRequest, "Please upload an image first.", err)
		return
	}
	if err != nil {
		studioError(c, http.StatusBadGateway, "Upload failed", err)
		return
	}
	c.JSON(http.StatusOK, model.UploadResponse{Success: true, Message: msg})
}

// Click 画布点击，换算坐标后登记区域
func (h *StudioHandler) Click(c *gin.Context) {
	var req model.ClickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		studioError(c, http.StatusBadRequest, "Invalid click", err)
		return
	}

	view := editor.View{Version: req.Version, Left: req.Left, Top: req.Top, Width: req.Width, Height: req.Height}
	id, err := h.session.RegisterClick(c.Request.Context(), view, req.ClientX, req.ClientY)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, model.ClickResponse{Success: true, RegionID: string(id), Count: len(h.session.Selection())})
	case errors.Is(err, editor.ErrNoImage):
		studioError(c, http.StatusBadRequest, "Please upload an image first.", err)
	case errors.Is(err, editor.ErrOutOfBounds):
		studioError(c, http.StatusBadRequest, "Click outside the image", err)
	case errors.Is(err, editor.ErrStaleView), errors.Is(err, editor.ErrSuperseded):
		studioError(c, http.StatusConflict, "Image changed, click again", err)
	default:
		studioError(c, http.StatusBadGateway, "Mask generation failed", err)
	}
}

func (h *StudioHandler) GetParams(c *gin.Context) {
	p := h.session.Params()
	c.JSON(http.StatusOK, model.ParamsResponse{Success: true, Color: p.Color.Hex(), RGB: p.Color, Opacity: p.Opacity})
}

// SetParams 颜色选择器给出 #rrggbb，透明度按滑块步长对齐
func (h *StudioHandler) SetParams(c *gin.Context) {
	var req model.ParamsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		studioError(c, http.StatusBadRequest, "Invalid parameters", err)
		return
	}
	rgb, err := model.ParseHex(req.Color)
	if err != nil {
		studioError(c, http.StatusBadRequest, "Invalid color", err)
		return
	}

	p := editor.Params{Color: rgb, Opacity: model.SnapOpacity(req.Opacity)}
	if err := h.session.SetParams(p); err != nil {
		studioError(c, http.StatusBadRequest, "Invalid opacity", err)
		return
	}
	c.JSON(http.StatusOK, model.ParamsResponse{Success: true, Color: rgb.Hex(), RGB: rgb, Opacity: p.Opacity})
}

// Apply 对选区逐个着色并刷新预览
func (h *StudioHandler) Apply(c *gin.Context) {
	report, err := h.session.Apply(c.Request.Context())
	if errors.Is(err, editor.ErrEmptySelection) {
		studioError(c, http.StatusBadRequest, "Select an area first!", err)
		return
	}

	resp := model.ApplyResponse{
		Success: err == nil,
		Message: "Color applied",
		Version: report.Image.Version,
		Tasks:   make([]model.TaskResult, 0, len(report.Results)),
		Failed:  len(report.Failed()),
	}
	for _, r := range report.Results {
		tr := model.TaskResult{RegionID: string(r.Region)}
		if r.Err != nil {
			tr.Error = r.Err.Error()
		}
		resp.Tasks = append(resp.Tasks, tr)
	}

	switch {
	case err == nil:
		c.JSON(http.StatusOK, resp)
	case errors.Is(err, editor.ErrSuperseded):
		resp.Message = "Image changed during apply"
		c.JSON(http.StatusConflict, resp)
	default:
		utils.Logger.Warn("apply finished without a new composite", zap.Error(err))
		resp.Message = "Failed to fetch edited image"
		c.JSON(http.StatusBadGateway, resp)
	}
}

// Image 返回当前显示的图片
func (h *StudioHandler) Image(c *gin.Context) {
	img, ok := h.session.Current()
	if !ok {
		studioError(c, http.StatusNotFound, "No image", nil)
		return
	}
	c.Header("X-Image-Version", strconv.FormatUint(img.Version, 10))
	c.Header("X-Image-Kind", img.Kind.String())
	c.Data(http.StatusOK, http.DetectContentType(img.Data), img.Data)
}

func (h *StudioHandler) Selection(c *gin.Context) {
	img, _ := h.session.Current()
	regions := h.session.Selection()
	resp := model.SelectionResponse{Success: true, Version: img.Version, Regions: make([]string, len(regions))}
	for i, id := range regions {
		resp.Regions[i] = string(id)
	}
	c.JSON(http.StatusOK, resp)
}

// Download 下载服务端最终结果
func (h *StudioHandler) Download(c *gin.Context) {
	data, err := h.session.Download(c.Request.Context())
	if errors.Is(err, model.ErrNoEditedImage) {
		studioError(c, http.StatusNotFound, "No edited image found!", err)
		return
	}
	if err != nil {
		studioError(c, http.StatusBadGateway, "Download failed", err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", h.downloadName))
	c.Data(http.StatusOK, "image/png", data)
}

func studioError(c *gin.Context, status int, msg string, err error) {
	resp := model.ErrorResponse{Success: false, Message: msg}
	if err != nil {
		resp.Error = err.Error()
	}
	c.JSON(status, resp)
}
