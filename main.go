package main

import (
	"fmt"
	"os"

	"github.com/TIANLI0/WallTint/config"
	"github.com/TIANLI0/WallTint/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	BuildID   = "unknown"
	GitCommit = "unknown"
	GitBranch = "unknown"
)

var (
	configPath string
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:           "walltint",
	Short:         "WallTint - click to select building walls and recolor them",
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// 加载配置
		cfg = config.New(configPath)

		// 初始化日志
		if err := utils.InitLogger(cfg.Server.Mode, cmd.Name()); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		utils.Logger.Debug("config loaded", zap.String("path", configPath))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		utils.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "config file path")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
