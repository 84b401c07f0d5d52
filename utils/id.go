package utils

import (
	"github.com/google/uuid"
)

// GenerateID 生成随机ID，用于请求追踪和存储文件名
func GenerateID() string {
	return uuid.NewString()
}
