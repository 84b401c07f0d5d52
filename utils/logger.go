package utils

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger 全局日志实例，未初始化时为 no-op
var Logger = zap.NewNop()

// InitLogger 按运行模式初始化日志，name 为当前子命令（serve、studio、edit）
func InitLogger(mode, name string) error {
	var config zap.Config

	switch mode {
	case "release":
		config = zap.NewProductionConfig()
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	case "test":
		Logger = zap.NewNop()
		return nil
	default:
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	logger, err := config.Build()
	if err != nil {
		return err
	}

	Logger = logger.Named(name)
	return nil
}

func Sync() {
	if Logger != nil {
		_ = Logger.Sync()
	}
}
