package cmd

import (
	"os"

	"github.com/haierkeys/link-editor-service/pkg/logger"

	"go.uber.org/zap"
)

// bootstrapLogger writes to stderr until a command has loaded its own configuration.
// LINK_EDITOR_LOG_LEVEL (or DEBUG) raises the level for troubleshooting startup.
// bootstrapLogger 启动阶段日志器，在读取配置之前使用
var bootstrapLogger = newBootstrapLogger()

func newBootstrapLogger() *zap.Logger {
	level := os.Getenv("LINK_EDITOR_LOG_LEVEL")
	if level == "" && os.Getenv("DEBUG") != "" {
		level = "debug"
	}
	lg, err := logger.NewLogger(logger.Config{Level: level})
	if err != nil {
		// unparsable level: fall back to info
		lg, _ = logger.NewLogger(logger.Config{})
	}
	return lg.Named("bootstrap")
}
