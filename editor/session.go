package editor

import (
	"context"
	"fmt"
	"sync"

	"github.com/TIANLI0/WallTint/model"
	"github.com/TIANLI0/WallTint/utils"
	"go.uber.org/zap"
)

type RegionID = model.RegionID

// Collaborator 远端分割着色服务
type Collaborator interface {
	Upload(ctx context.Context, name string, data []byte) (string, error)
	Segment(ctx context.Context, x, y int, positive bool) (RegionID, error)
	Composite(ctx context.Context, region RegionID, color model.RGB, opacity float64) error
	Download(ctx context.Context) ([]byte, error)
}

// Params 编辑参数，与图片无关，修改前一直沿用
type Params struct {
	Color   model.RGB
	Opacity float64
}

func (p Params) Validate() error {
	return model.ValidateOpacity(p.Opacity)
}

// DefaultParams 红色，透明度 0.6
func DefaultParams() Params {
	return Params{Color: model.RGB{255, 0, 0}, Opacity: 0.6}
}

type sourceFile struct {
	name string
	data []byte
}

// Session 单个编辑会话：选区累积、着色排序和当前图片版本。
// mu 保护状态且不跨网络调用持有；editMu 串行化所有会修改服务端图片的操作。
type Session struct {
	remote Collaborator
	seq    *sequencer

	editMu sync.Mutex

	mu         sync.Mutex
	image      SessionImage
	file       *sourceFile
	generation uint64
	genStart   uint64
	version    uint64
	selection  []RegionID
	params     Params
}

// Option 创建会话时的可选配置
type Option func(*Session)

// WithParams 设置初始编辑参数
func WithParams(p Params) Option { return func(s *Session) { s.params = p } }

func NewSession(remote Collaborator, opts ...Option) *Session {
	s := &Session{
		remote: remote,
		seq:    &sequencer{remote: remote},
		params: DefaultParams(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open 以本地文件作为预览图，清空选区并丢弃之前的服务端结果
func (s *Session) Open(name string, data []byte) (SessionImage, error) {
	if len(data) == 0 {
		return SessionImage{}, ErrNoFile
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	s.version++
	s.genStart = s.version
	s.file = &sourceFile{name: name, data: data}
	s.selection = nil
	s.image = SessionImage{Kind: LocalPreview, Name: name, Data: data, Version: s.version}

	utils.Logger.Info("local preview opened",
		zap.String("name", name),
		zap.Int("size", len(data)),
		zap.String("md5", utils.BytesMD5(data)),
		zap.Uint64("version", s.version))

	return s.image, nil
}

// Upload 把当前打开的文件发送到服务端。服务端会丢弃旧掩码和着色结果，成功后同步清空选区并恢复本地预览。
func (s *Session) Upload(ctx context.Context) (string, error) {
	s.editMu.Lock()
	defer s.editMu.Unlock()

	s.mu.Lock()
	file, gen := s.file, s.generation
	s.mu.Unlock()

	if file == nil {
		return "", ErrNoFile
	}

	msg, err := s.remote.Upload(ctx, file.name, file.data)
	if err != nil {
		utils.Logger.Error("upload failed", zap.String("name", file.name), zap.Error(err))
		return "", fmt.Errorf("upload: %w", err)
	}

	s.mu.Lock()
	if s.generation == gen {
		// 服务端已丢弃掩码和着色结果，显示回到刚上传的原图
		s.selection = nil
		s.version++
		s.image = SessionImage{Kind: LocalPreview, Name: file.name, Data: file.data, Version: s.version}
	}
	s.mu.Unlock()

	utils.Logger.Info("image uploaded", zap.String("name", file.name), zap.String("message", msg))
	return msg, nil
}

// RegisterClick 把视口坐标换算到 view 对应的图片后登记点选
func (s *Session) RegisterClick(ctx context.Context, view View, clientX, clientY float64) (RegionID, error) {
	s.mu.Lock()
	if s.image.Kind == KindNone {
		s.mu.Unlock()
		return "", ErrNoImage
	}
	if view.Version < s.genStart || view.Version > s.version {
		current := s.version
		s.mu.Unlock()
		return "", fmt.Errorf("%w: view %d, current %d", ErrStaleView, view.Version, current)
	}
	s.mu.Unlock()

	x, y, err := view.Translate(clientX, clientY)
	if err != nil {
		return "", err
	}
	return s.RegisterPixel(ctx, x, y)
}

// RegisterPixel 以当前图片的像素坐标查询区域，成功后追加到选区
func (s *Session) RegisterPixel(ctx context.Context, x, y int) (RegionID, error) {
	s.mu.Lock()
	if s.image.Kind == KindNone {
		s.mu.Unlock()
		return "", ErrNoImage
	}
	gen := s.generation
	s.mu.Unlock()

	id, err := s.remote.Segment(ctx, x, y, true)
	if err != nil {
		utils.Logger.Error("mask generation failed", zap.Int("x", x), zap.Int("y", y), zap.Error(err))
		return "", fmt.Errorf("segment (%d, %d): %w", x, y, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		utils.Logger.Warn("dropping region for replaced image", zap.String("region", string(id)))
		return "", ErrSuperseded
	}
	s.selection = append(s.selection, id)

	utils.Logger.Debug("region selected",
		zap.String("region", string(id)),
		zap.Int("x", x),
		zap.Int("y", y),
		zap.Int("count", len(s.selection)))

	return id, nil
}

// Selection 返回选区副本，按点选顺序
func (s *Session) Selection() []RegionID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]RegionID(nil), s.selection...)
}

func (s *Session) Current() (SessionImage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.image, s.image.Kind != KindNone
}

func (s *Session) Params() Params {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.params
}

func (s *Session) SetParams(p Params) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.params = p
	s.mu.Unlock()
	return nil
}

// Download 直接拉取服务端当前结果，不改变会话状态
func (s *Session) Download(ctx context.Context) ([]byte, error) {
	data, err := s.remote.Download(ctx)
	if err != nil {
		utils.Logger.Warn("download failed", zap.Error(err))
		return nil, fmt.Errorf("download: %w", err)
	}
	return data, nil
}

// setServerComposite 安装服务端结果；gen 已过期时丢弃
func (s *Session) setServerComposite(gen uint64, data []byte) (SessionImage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generation != gen {
		return SessionImage{}, ErrSuperseded
	}
	s.version++
	s.image = SessionImage{Kind: ServerComposite, Name: s.image.Name, Data: data, Version: s.version}
	return s.image, nil
}
