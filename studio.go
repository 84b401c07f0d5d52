package main

import (
	"fmt"

	"github.com/TIANLI0/WallTint/client"
	"github.com/TIANLI0/WallTint/config"
	"github.com/TIANLI0/WallTint/editor"
	"github.com/TIANLI0/WallTint/handler"
	"github.com/TIANLI0/WallTint/metrics"
	"github.com/TIANLI0/WallTint/model"
	"github.com/TIANLI0/WallTint/utils"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var studioCmd = &cobra.Command{
	Use:   "studio",
	Short: "Run the interactive editing session behind a local HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		if studioFlags.backend != "" {
			cfg.Client.BaseURL = studioFlags.backend
		}
		if studioFlags.port != "" {
			cfg.Studio.Port = studioFlags.port
		}

		session, err := newSession(cfg)
		if err != nil {
			return err
		}

		metrics.Register(prometheus.DefaultRegisterer)

		r := newEngine(cfg.Server.Mode)
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
		handler.NewStudioHandler(session, cfg.Studio.MaxSize, cfg.Editor.DownloadName).Register(r.Group("/api/v1"))

		utils.Logger.Info("studio ready",
			zap.String("backend", cfg.Client.BaseURL),
			zap.String("addr", cfg.Studio.Port))
		return listen(cfg.Studio.Port, cfg.Server, r)
	},
}

var studioFlags struct {
	port    string
	backend string
}

func init() {
	rootCmd.AddCommand(studioCmd)

	studioCmd.Flags().StringVarP(&studioFlags.port, "port", "p", "", "listen address, overrides studio.port")
	studioCmd.Flags().StringVar(&studioFlags.backend, "backend", "", "colorizer base URL, overrides client.base_url")
}

// newSession 按配置创建编辑会话和远端客户端
func newSession(cfg *config.Config) (*editor.Session, error) {
	color, err := model.ParseHex(cfg.Editor.Color)
	if err != nil {
		return nil, fmt.Errorf("editor.color: %w", err)
	}
	params := editor.Params{Color: color, Opacity: cfg.Editor.Opacity}
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("editor.opacity: %w", err)
	}
	return editor.NewSession(client.New(&cfg.Client), editor.WithParams(params)), nil
}
