package store

import (
	"context"
	"sync"
	"time"

	"github.com/TIANLI0/WallTint/config"
	"github.com/TIANLI0/WallTint/utils"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisMaskStore 掩码按顺序存放在 Redis 列表中，每次上传使用新的键。
// 列表过期后不再发放序号，直到下一次 Reset，避免旧 mask_id 指向新区域。
type RedisMaskStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration

	mu      sync.Mutex
	key     string
	issued  int64
	expired bool
}

func NewRedisClient(cfg *config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

func NewRedisMaskStore(client *redis.Client, cfg *config.RedisConfig) *RedisMaskStore {
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "walltint"
	}
	s := &RedisMaskStore{
		client: client,
		prefix: prefix + ":masks:",
		ttl:    cfg.TTL,
	}
	s.key = s.prefix + utils.GenerateID()
	return s
}

func (s *RedisMaskStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Append 追加掩码，返回其序号
func (s *RedisMaskStore) Append(ctx context.Context, mask []byte) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.expired {
		return 0, ErrMasksExpired
	}
	n, err := s.client.RPush(ctx, s.key, mask).Result()
	if err != nil {
		return 0, err
	}
	if n != s.issued+1 {
		// 列表在两次追加之间过期，刚写入的是新列表的第一项
		s.expired = true
		if err := s.client.Del(ctx, s.key).Err(); err != nil {
			utils.Logger.Warn("failed to drop expired mask list", zap.String("key", s.key), zap.Error(err))
		}
		return 0, ErrMasksExpired
	}
	s.issued = n
	if s.ttl > 0 {
		if err := s.client.Expire(ctx, s.key, s.ttl).Err(); err != nil {
			return 0, err
		}
	}
	return n - 1, nil
}

func (s *RedisMaskStore) Get(ctx context.Context, id int64) ([]byte, error) {
	if id < 0 {
		return nil, ErrMaskNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.expired {
		return nil, ErrMasksExpired
	}
	data, err := s.client.LIndex(ctx, s.key, id).Bytes()
	if err != nil {
		if err == redis.Nil {
			if id < s.issued {
				s.expired = true
				return nil, ErrMasksExpired
			}
			return nil, ErrMaskNotFound
		}
		return nil, err
	}
	return data, nil
}

func (s *RedisMaskStore) Len(ctx context.Context) (int64, error) {
	s.mu.Lock()
	key := s.key
	s.mu.Unlock()
	return s.client.LLen(ctx, key).Result()
}

// Reset 新图片上传后换用新的列表
func (s *RedisMaskStore) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return err
	}
	s.key = s.prefix + utils.GenerateID()
	s.issued = 0
	s.expired = false
	return nil
}

func (s *RedisMaskStore) Close() error {
	return s.client.Close()
}
