package model

import (
	"encoding/json"
	"errors"
)

// SegmentRequest 点选分割请求
type SegmentRequest struct {
	X        *int  `json:"x"`
	Y        *int  `json:"y"`
	Positive *bool `json:"positive,omitempty"`
}

// IsPositive 未指定极性时按正选处理
func (r SegmentRequest) IsPositive() bool {
	return r.Positive == nil || *r.Positive
}

// SegmentResponse 分割结果，mask_id 为服务端掩码序号
type SegmentResponse struct {
	MaskID int64 `json:"mask_id"`
}

// CompositeRequest 着色请求
type CompositeRequest struct {
	MaskID *int64   `json:"mask_id"`
	Color  *RGB     `json:"color"`
	Alpha  *float64 `json:"alpha,omitempty"`
}

// RegionPayload 客户端侧的着色请求，mask_id 原样回传
type RegionPayload struct {
	MaskID json.RawMessage `json:"mask_id"`
	Color  RGB             `json:"color"`
	Alpha  float64         `json:"alpha"`
}

// MessageResponse 普通确认响应
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse 错误响应
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// RegionID 分割服务返回的区域标识，客户端不解析其内容
type RegionID string

var (
	// ErrNoEditedImage 服务端尚无着色结果
	ErrNoEditedImage = errors.New("no edited image")
	// ErrOutsideImage 点击坐标不在图片范围内
	ErrOutsideImage = errors.New("point outside image")
)
