package cmd

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitArgs(t *testing.T) {
	urls, channel, err := splitArgs([]string{
		"https://youtu.be/tAP1eZYEuKA,https://www.youtube.com/shorts/abcdefghijk",
		"dQw4w9WgXcQ",
		"https://www.youtube.com/@example",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://youtu.be/tAP1eZYEuKA",
		"https://www.youtube.com/shorts/abcdefghijk",
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ",
	}, urls)
	assert.Equal(t, "https://www.youtube.com/@example/videos", channel)
}

func TestSplitArgsRejectsMistypedCommand(t *testing.T) {
	_, _, err := splitArgs([]string{"transcrip"})
	assert.ErrorContains(t, err, "did you mean: transcript")
}

func TestSplitArgsSingleChannel(t *testing.T) {
	_, _, err := splitArgs([]string{"https://www.youtube.com/@one", "https://www.youtube.com/@two"})
	assert.Error(t, err)
}

func TestScriptRequest(t *testing.T) {
	newCmd := func(args ...string) *cobra.Command {
		cmd := &cobra.Command{Use: "test"}
		addScriptFlags(cmd)
		require.NoError(t, cmd.Flags().Parse(args))
		return cmd
	}

	req, err := scriptRequest(newCmd("--plan", "2", "--title-index", "3", "--title", "Mine", "--target-chars", "7000"))
	require.NoError(t, err)
	assert.Equal(t, 2, req.Plan)
	assert.Equal(t, 3, req.TitleIndex)
	assert.Equal(t, "Mine", req.Title)
	assert.Equal(t, 7000, req.TargetChars)

	_, err = scriptRequest(newCmd("--plan", "4"))
	assert.Error(t, err)
	_, err = scriptRequest(newCmd("--title-index", "0"))
	assert.Error(t, err)
	_, err = scriptRequest(newCmd("--target-chars", "-1"))
	assert.Error(t, err)
}
