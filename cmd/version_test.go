package cmd

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersionString(t *testing.T) {
	assert.Equal(t, "tubehack vdev", versionString("dev", "", "", nil))
	assert.Equal(t, "tubehack v1.2.0 (abcdef1, built 2025-01-02)", versionString("1.2.0", "abcdef1234", "2025-01-02", nil))

	info := &debug.BuildInfo{
		Main: debug.Module{Version: "v0.3.1"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789"},
			{Key: "vcs.time", Value: "2025-03-04T05:06:07Z"},
		},
	}
	assert.Equal(t, "tubehack v0.3.1 (0123456, built 2025-03-04T05:06:07Z)", versionString("dev", "", "", info))
	assert.Equal(t, "tubehack v2.0.0 (fedcba9)", versionString("2.0.0", "fedcba9", "", &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}}))
}
