package service

import (
	"context"
	"errors"
	"fmt"
	"image"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/TIANLI0/WallTint/config"
	"github.com/TIANLI0/WallTint/metrics"
	"github.com/TIANLI0/WallTint/model"
	"github.com/TIANLI0/WallTint/store"
	"github.com/TIANLI0/WallTint/utils"
	"go.uber.org/zap"
)

var (
	ErrNoImage         = errors.New("no image loaded")
	ErrEmptyFile       = errors.New("no file uploaded")
	ErrFileTooLarge    = errors.New("file too large")
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrInvalidAlpha    = errors.New("alpha must be in (0, 1]")
)

// Segmenter 根据点击位置生成区域掩码（PNG，255 为区域内）
type Segmenter interface {
	Segment(ctx context.Context, imagePath string, pt image.Point, positive bool) ([]byte, error)
}

// ColorizerService 持有当前原图、掩码列表和着色结果。
// 着色是对同一张结果图的原地修改，所有写操作由 mu 串行化。
type ColorizerService struct {
	cfg       *config.UploadConfig
	images    *store.ImageStore
	masks     store.MaskStore
	segmenter Segmenter

	mu         sync.Mutex
	sourcePath string
}

func NewColorizerService(cfg *config.UploadConfig, images *store.ImageStore, masks store.MaskStore, segmenter Segmenter) *ColorizerService {
	return &ColorizerService{
		cfg:       cfg,
		images:    images,
		masks:     masks,
		segmenter: segmenter,
	}
}

// Upload 保存新原图，清空掩码并删除旧的着色结果
func (s *ColorizerService) Upload(ctx context.Context, name, contentType string, data []byte) error {
	if len(data) == 0 {
		return ErrEmptyFile
	}
	if s.cfg.MaxSize > 0 && int64(len(data)) > s.cfg.MaxSize {
		return fmt.Errorf("%w (%d MB)", ErrFileTooLarge, s.cfg.MaxSize/(1024*1024))
	}
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	if !s.isAllowedType(contentType) {
		return fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path, err := s.images.SaveOriginal(name, data)
	if err != nil {
		return fmt.Errorf("save original: %w", err)
	}
	if err := s.masks.Reset(ctx); err != nil {
		if rmErr := s.images.RemoveOriginal(path); rmErr != nil {
			utils.Logger.Warn("failed to remove unused original", zap.String("file", path), zap.Error(rmErr))
		}
		return fmt.Errorf("reset masks: %w", err)
	}
	if err := s.images.RemoveEdited(); err != nil {
		utils.Logger.Warn("failed to remove edited image", zap.Error(err))
	}
	if err := s.images.RemoveOriginal(s.sourcePath); err != nil {
		utils.Logger.Warn("failed to remove previous original",
			zap.String("file", s.sourcePath),
			zap.Error(err))
	}
	s.sourcePath = path
	metrics.SetMasksStored(0)

	utils.Logger.Info("file uploaded",
		zap.String("filename", name),
		zap.String("md5", utils.BytesMD5(data)),
		zap.Int("size", len(data)),
		zap.String("content_type", contentType))

	return nil
}

// Segment 在原图上分割点击区域，保存掩码并返回其序号
func (s *ColorizerService) Segment(ctx context.Context, x, y int, positive bool) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sourcePath == "" {
		return 0, ErrNoImage
	}

	mask, err := s.segmenter.Segment(ctx, s.sourcePath, image.Pt(x, y), positive)
	if err != nil {
		return 0, err
	}

	id, err := s.masks.Append(ctx, mask)
	if errors.Is(err, store.ErrMasksExpired) {
		return 0, fmt.Errorf("%w: %w", ErrNoImage, err)
	}
	if err != nil {
		return 0, fmt.Errorf("store mask: %w", err)
	}
	metrics.SetMasksStored(int(id + 1))

	return id, nil
}

// Apply 把颜色混合进掩码区域。已有着色结果时在其上继续修改，否则从原图开始。
func (s *ColorizerService) Apply(ctx context.Context, maskID int64, color model.RGB, alpha float64) error {
	if alpha <= 0 || alpha > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidAlpha, alpha)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sourcePath == "" {
		return ErrNoImage
	}

	maskData, err := s.masks.Get(ctx, maskID)
	if errors.Is(err, store.ErrMasksExpired) {
		return fmt.Errorf("%w: %w", ErrNoImage, err)
	}
	if err != nil {
		return err
	}
	mask, _, err := decodeImage(maskData)
	if err != nil {
		return fmt.Errorf("mask %d: %w", maskID, err)
	}

	baseData, err := s.images.ReadEdited()
	if errors.Is(err, model.ErrNoEditedImage) {
		baseData, err = os.ReadFile(s.sourcePath)
	}
	if err != nil {
		return fmt.Errorf("read base image: %w", err)
	}
	base, _, err := decodeImage(baseData)
	if err != nil {
		return err
	}

	start := time.Now()
	out, err := encodePNG(blend(base, mask, color, alpha))
	if err != nil {
		return err
	}
	if err := s.images.WriteEdited(out); err != nil {
		return fmt.Errorf("save edited image: %w", err)
	}

	utils.Logger.Info("color applied",
		zap.Int64("mask_id", maskID),
		zap.String("color", color.Hex()),
		zap.Float64("alpha", alpha),
		zap.Duration("duration", time.Since(start)))

	return nil
}

// Download 返回当前着色结果
func (s *ColorizerService) Download() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.images.ReadEdited()
}

func (s *ColorizerService) isAllowedType(contentType string) bool {
	mediaType := strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])
	for _, allowed := range s.cfg.AllowedTypes {
		if strings.EqualFold(mediaType, allowed) {
			return true
		}
	}
	return false
}
