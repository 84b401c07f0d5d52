package editor

import "errors"

var (
	ErrNoImage        = errors.New("no image displayed")
	ErrNoFile         = errors.New("please upload an image first")
	ErrEmptySelection = errors.New("select an area first")
	ErrStaleView      = errors.New("view refers to a replaced image")
	ErrOutOfBounds    = errors.New("click outside image bounds")
	// ErrSuperseded 请求返回前用户已打开新图片，结果被丢弃
	ErrSuperseded = errors.New("image replaced while request was in flight")
)
