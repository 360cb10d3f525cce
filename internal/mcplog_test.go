package internal

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMCPLoggerWritesFile(t *testing.T) {
	dir := t.TempDir()
	logger := newMCPLogger(true, dir)
	logger.Infof("tool %s called", "analyze_videos")
	_ = logger.Sync()

	data, err := os.ReadFile(MCPLogPath(dir))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"tool analyze_videos called"`)
	assert.Contains(t, string(data), `"logger":"mcp"`)
}

func TestMCPLoggerDisabled(t *testing.T) {
	dir := t.TempDir()
	newMCPLogger(false, dir).Infof("ignored")
	assert.NoFileExists(t, MCPLogPath(dir))
}
