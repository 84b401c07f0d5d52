package model

// ClickRequest 画布点击，坐标为浏览器视口坐标，left/top 为图片渲染框原点
type ClickRequest struct {
	Version uint64  `json:"version" binding:"required"`
	ClientX float64 `json:"client_x"`
	ClientY float64 `json:"client_y"`
	Left    float64 `json:"left"`
	Top     float64 `json:"top"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
}

type ClickResponse struct {
	Success  bool   `json:"success"`
	RegionID string `json:"region_id"`
	Count    int    `json:"count"`
}

// ParamsRequest 颜色与透明度
type ParamsRequest struct {
	Color   string  `json:"color" binding:"required"`
	Opacity float64 `json:"opacity" binding:"required"`
}

type ParamsResponse struct {
	Success bool    `json:"success"`
	Color   string  `json:"color"`
	RGB     RGB     `json:"rgb"`
	Opacity float64 `json:"opacity"`
}

type SelectionResponse struct {
	Success bool     `json:"success"`
	Version uint64   `json:"version"`
	Regions []string `json:"regions"`
}

// TaskResult 单个区域的着色结果
type TaskResult struct {
	RegionID string `json:"region_id"`
	Error    string `json:"error,omitempty"`
}

type ApplyResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Version uint64       `json:"version"`
	Tasks   []TaskResult `json:"tasks"`
	Failed  int          `json:"failed"`
}

type UploadResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Version uint64 `json:"version,omitempty"`
}
