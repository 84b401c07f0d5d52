// Package client 实现对着色服务的 HTTP 调用：上传、点选分割、区域着色和下载
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/TIANLI0/WallTint/config"
	"github.com/TIANLI0/WallTint/metrics"
	"github.com/TIANLI0/WallTint/model"
	"github.com/TIANLI0/WallTint/utils"
	"go.uber.org/zap"
)

const (
	callUpload    = "upload"
	callSegment   = "segment"
	callComposite = "composite"
	callDownload  = "download"
)

// ErrMissingRegion 分割响应中没有 mask_id
var ErrMissingRegion = errors.New("segmentation response has no mask_id")

// StatusError 服务端返回非 2xx
type StatusError struct {
	Call       string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: unexpected status %d", e.Call, e.StatusCode)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Call, e.StatusCode, e.Message)
}

type Client struct {
	baseURL string
	paths   config.ClientPaths
	http    *http.Client
}

func New(cfg *config.ClientConfig) *Client {
	return NewWithHTTPClient(cfg, &http.Client{Timeout: cfg.Timeout})
}

func NewWithHTTPClient(cfg *config.ClientConfig, hc *http.Client) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		paths:   cfg.Paths,
		http:    hc,
	}
}

// Upload 以 multipart 字段 image 上传原图，返回服务端确认信息
func (c *Client) Upload(ctx context.Context, name string, data []byte) (string, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("image", filepath.Base(name))
	if err != nil {
		return "", err
	}
	if _, err := part.Write(data); err != nil {
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	var resp model.MessageResponse
	err = c.do(ctx, callUpload, http.MethodPost, c.paths.Upload, w.FormDataContentType(), &body, &resp)
	if err != nil {
		return "", err
	}
	return resp.Message, nil
}

// Segment 查询点所在区域
func (c *Client) Segment(ctx context.Context, x, y int, positive bool) (model.RegionID, error) {
	req := model.SegmentRequest{X: &x, Y: &y, Positive: &positive}
	payload, err := json.Marshal(req)
	if err != nil {
		return "", err
	}

	var resp struct {
		MaskID json.RawMessage `json:"mask_id"`
	}
	err = c.do(ctx, callSegment, http.MethodPost, c.paths.Segment, "application/json", bytes.NewReader(payload), &resp)
	if err != nil {
		return "", err
	}

	raw := bytes.TrimSpace(resp.MaskID)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", ErrMissingRegion
	}
	return model.RegionID(raw), nil
}

// Composite 请求服务端把颜色混合进区域
func (c *Client) Composite(ctx context.Context, region model.RegionID, color model.RGB, opacity float64) error {
	payload, err := json.Marshal(model.RegionPayload{
		MaskID: regionToken(region),
		Color:  color,
		Alpha:  opacity,
	})
	if err != nil {
		return err
	}
	return c.do(ctx, callComposite, http.MethodPost, c.paths.Composite, "application/json", bytes.NewReader(payload), nil)
}

// Download 获取服务端当前着色结果；服务端没有结果时返回 model.ErrNoEditedImage
func (c *Client) Download(ctx context.Context) ([]byte, error) {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+c.paths.Download, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.record(callDownload, start, err)
		return nil, fmt.Errorf("%s: %w", callDownload, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		c.record(callDownload, start, model.ErrNoEditedImage)
		return nil, model.ErrNoEditedImage
	}
	if resp.StatusCode != http.StatusOK {
		err := statusError(callDownload, resp)
		c.record(callDownload, start, err)
		return nil, err
	}

	data, err := io.ReadAll(resp.Body)
	c.record(callDownload, start, err)
	if err != nil {
		return nil, fmt.Errorf("%s: read body: %w", callDownload, err)
	}
	return data, nil
}

func (c *Client) do(ctx context.Context, call, method, path, contentType string, body io.Reader, out any) error {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.record(call, start, err)
		return fmt.Errorf("%s: %w", call, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := statusError(call, resp)
		c.record(call, start, err)
		return err
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			err = fmt.Errorf("%s: decode response: %w", call, err)
			c.record(call, start, err)
			return err
		}
	}
	c.record(call, start, nil)
	return nil
}

func (c *Client) record(call string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.RecordClientCall(call, status, time.Since(start).Seconds())
	utils.Logger.Debug("colorizer call",
		zap.String("call", call),
		zap.String("status", status),
		zap.Duration("cost", time.Since(start)))
}

func statusError(call string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var env model.ErrorResponse
	msg := strings.TrimSpace(string(body))
	if json.Unmarshal(body, &env) == nil {
		switch {
		case env.Error != "":
			msg = env.Error
		case env.Message != "":
			msg = env.Message
		}
	}
	return &StatusError{Call: call, StatusCode: resp.StatusCode, Message: msg}
}

// regionToken 区域标识原样回传；不是合法 JSON 时按字符串编码
func regionToken(region model.RegionID) json.RawMessage {
	if json.Valid([]byte(region)) {
		return json.RawMessage(region)
	}
	quoted, _ := json.Marshal(string(region))
	return quoted
}
