package store

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrMaskNotFound mask_id 不存在
	ErrMaskNotFound = errors.New("invalid mask_id")
	// ErrMasksExpired 掩码列表已过期，需要重新上传图片
	ErrMasksExpired = errors.New("masks expired, upload the image again")
)

// MaskStore 当前图片的掩码列表，序号即 mask_id
type MaskStore interface {
	Append(ctx context.Context, mask []byte) (int64, error)
	Get(ctx context.Context, id int64) ([]byte, error)
	Len(ctx context.Context) (int64, error)
	Reset(ctx context.Context) error
}

// MemoryMaskStore Redis 不可用时的进程内实现
type MemoryMaskStore struct {
	mu    sync.RWMutex
	masks [][]byte
}

func NewMemoryMaskStore() *MemoryMaskStore {
	return &MemoryMaskStore{}
}

func (s *MemoryMaskStore) Append(_ context.Context, mask []byte) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.masks = append(s.masks, mask)
	return int64(len(s.masks) - 1), nil
}

func (s *MemoryMaskStore) Get(_ context.Context, id int64) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if id < 0 || id >= int64(len(s.masks)) {
		return nil, ErrMaskNotFound
	}
	return s.masks[id], nil
}

func (s *MemoryMaskStore) Len(context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.masks)), nil
}

func (s *MemoryMaskStore) Reset(context.Context) error {
	s.mu.Lock()
	s.masks = nil
	s.mu.Unlock()
	return nil
}
