package editor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/TIANLI0/WallTint/utils"
	"go.uber.org/zap"
)

// task 单个区域的着色请求
type task struct {
	Region RegionID
	Params Params
}

// TaskResult 着色结果，Err 为 nil 表示成功
type TaskResult struct {
	Region RegionID
	Err    error
}

// sequencer 逐个执行着色任务，前一个完成后才发出下一个。
// 服务端图片是原地修改的，顺序决定重叠区域的最终颜色。
type sequencer struct {
	remote Collaborator
}

func (q *sequencer) run(ctx context.Context, tasks []task) []TaskResult {
	results := make([]TaskResult, 0, len(tasks))
	for i, t := range tasks {
		start := time.Now()
		err := q.remote.Composite(ctx, t.Region, t.Params.Color, t.Params.Opacity)
		if err != nil {
			utils.Logger.Error("color apply failed",
				zap.Int("index", i),
				zap.String("region", string(t.Region)),
				zap.Error(err))
		} else {
			utils.Logger.Debug("color applied",
				zap.Int("index", i),
				zap.String("region", string(t.Region)),
				zap.Duration("cost", time.Since(start)))
		}
		results = append(results, TaskResult{Region: t.Region, Err: err})
	}
	return results
}

// ApplyReport 一次着色的执行记录
type ApplyReport struct {
	Results []TaskResult
	// Image 为安装后的服务端结果；下载失败时为零值
	Image SessionImage
}

// Failed 返回失败的任务，可供调用方重新选择后再次着色
func (r ApplyReport) Failed() []TaskResult {
	var failed []TaskResult
	for _, res := range r.Results {
		if res.Err != nil {
			failed = append(failed, res)
		}
	}
	return failed
}

// Apply 使用会话当前的编辑参数着色
func (s *Session) Apply(ctx context.Context) (ApplyReport, error) {
	return s.ApplyWith(ctx, s.Params())
}

// ApplyWith 对选区快照中的每个区域按点选顺序发出着色请求，单个失败只记录不中断，
// 全部尝试后下载一次结果并替换当前图片。选区本身不变。
func (s *Session) ApplyWith(ctx context.Context, p Params) (ApplyReport, error) {
	s.editMu.Lock()
	defer s.editMu.Unlock()

	s.mu.Lock()
	snapshot := append([]RegionID(nil), s.selection...)
	gen := s.generation
	s.mu.Unlock()

	if len(snapshot) == 0 {
		return ApplyReport{}, ErrEmptySelection
	}
	if err := p.Validate(); err != nil {
		return ApplyReport{}, err
	}

	tasks := make([]task, len(snapshot))
	for i, id := range snapshot {
		tasks[i] = task{Region: id, Params: p}
	}

	start := time.Now()
	report := ApplyReport{Results: s.seq.run(ctx, tasks)}
	failed := len(report.Failed())

	data, err := s.remote.Download(ctx)
	if err != nil {
		utils.Logger.Error("fetch composite failed", zap.Int("regions", len(tasks)), zap.Error(err))
		return report, fmt.Errorf("fetch composite: %w", err)
	}

	img, err := s.setServerComposite(gen, data)
	if err != nil {
		if errors.Is(err, ErrSuperseded) {
			utils.Logger.Warn("discarding composite for replaced image")
		}
		return report, err
	}
	report.Image = img

	utils.Logger.Info("edit applied",
		zap.Int("regions", len(tasks)),
		zap.Int("failed", failed),
		zap.String("color", p.Color.Hex()),
		zap.Float64("opacity", p.Opacity),
		zap.Uint64("version", img.Version),
		zap.Duration("duration", time.Since(start)))

	return report, nil
}
