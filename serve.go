package main

import (
	"context"
	"fmt"
	"os"

	"github.com/TIANLI0/WallTint/handler"
	"github.com/TIANLI0/WallTint/metrics"
	"github.com/TIANLI0/WallTint/service"
	"github.com/TIANLI0/WallTint/store"
	"github.com/TIANLI0/WallTint/utils"
	"github.com/TIANLI0/WallTint/vision"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the colorizer backend (upload, segment, apply, download)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if servePort != "" {
			cfg.Server.Port = servePort
		}
		return runServe(cmd.Context())
	},
}

var servePort string

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&servePort, "port", "p", "", "listen address, overrides server.port")
}

func runServe(ctx context.Context) error {
	utils.Logger.Info("starting WallTint colorizer",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("git_commit", GitCommit),
		zap.String("git_branch", GitBranch))

	// 确保上传目录存在
	if err := os.MkdirAll(cfg.Upload.UploadDir, 0755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}
	images, err := store.NewImageStore(cfg.Upload.UploadDir)
	if err != nil {
		return err
	}

	// 初始化Redis，不可用时退回内存存储
	var masks store.MaskStore
	redisStore := store.NewRedisMaskStore(store.NewRedisClient(&cfg.Redis), &cfg.Redis)
	defer redisStore.Close()
	if err := redisStore.Ping(ctx); err != nil {
		utils.Logger.Warn("redis connection failed, masks kept in memory", zap.Error(err))
		masks = store.NewMemoryMaskStore()
	} else {
		utils.Logger.Info("redis connected successfully")
		masks = redisStore
	}

	segmenter := vision.NewGrabCutSegmenter(&cfg.Segment)
	colorizer := service.NewColorizerService(&cfg.Upload, images, masks, segmenter)

	metrics.Register(prometheus.DefaultRegisterer)

	r := newEngine(cfg.Server.Mode)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	handler.NewColorizerHandler(colorizer, cfg.Upload.MaxSize).Register(r)

	return listen(cfg.Server.Port, cfg.Server, r)
}
