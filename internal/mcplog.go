package internal

import (
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mcpLog     = zap.NewNop().Sugar()
	mcpLogOnce sync.Once
)

// MCPLogPath is where the MCP server log is written
func MCPLogPath(cacheDir string) string {
	return filepath.Join(cacheDir, "mcp.log")
}

// newMCPLogger builds a JSON file logger. The MCP server owns stdout, so a
// disabled or unopenable log turns into a no-op logger.
func newMCPLogger(enabled bool, cacheDir string) *zap.SugaredLogger {
	if !enabled {
		return zap.NewNop().Sugar()
	}
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return zap.NewNop().Sugar()
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	cfg.Sampling = nil
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{MCPLogPath(cacheDir)}
	cfg.ErrorOutputPaths = []string{MCPLogPath(cacheDir)}

	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return logger.Named("mcp").Sugar()
}

// InitMCPLogging enables the MCP log when config asks for it
func InitMCPLogging(config *Config) {
	mcpLogOnce.Do(func() {
		mcpLog = newMCPLogger(config.MCPLogEnabled, config.CacheDir)
	})
}

func MCPLogInfo(format string, args ...any) {
	mcpLog.Infof(format, args...)
}

func MCPLogError(format string, args ...any) {
	mcpLog.Errorf(format, args...)
}

func MCPLogDebug(format string, args ...any) {
	mcpLog.Debugf(format, args...)
}
