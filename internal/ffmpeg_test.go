package internal

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAudioDuration(t *testing.T) {
	runner := &fakeRunner{duration: "123.45"}
	audio := NewAudio(runner, t.TempDir(), false)

	d, err := audio.Duration(context.Background(), "in.mp3")
	require.NoError(t, err)
	assert.InDelta(t, 123.45, d, 0.001)
	assert.Equal(t, "ffprobe", runner.commands[0][0])

	runner.duration = "N/A"
	_, err = audio.Duration(context.Background(), "in.mp3")
	assert.Error(t, err)

	runner.duration = "0"
	_, err = audio.Duration(context.Background(), "in.mp3")
	assert.Error(t, err)
}

func TestAudioSplit(t *testing.T) {
	tempDir := t.TempDir()
	runner := &fakeRunner{duration: "100"}
	audio := NewAudio(runner, tempDir, false)

	chunks, err := audio.Split(context.Background(), "/media/talk.m4a", 3)
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(tempDir, "talk_part00.m4a"),
		filepath.Join(tempDir, "talk_part01.m4a"),
		filepath.Join(tempDir, "talk_part02.m4a"),
	}, chunks)
	for _, c := range chunks {
		assert.FileExists(t, c)
	}

	// ffprobe once, then one cut per chunk of ceil(100/3) seconds
	require.Len(t, runner.commands, 4)
	cut := runner.commands[2]
	assert.Equal(t, []string{"ffmpeg", "-v", "quiet"}, cut[:3])
	line := strings.Join(cut, " ")
	assert.Contains(t, line, "-ss 34 -i /media/talk.m4a")
	assert.Contains(t, line, "-c:a copy")
	assert.Contains(t, line, "-t 34")
	assert.Contains(t, cut, chunks[1])
	assert.Contains(t, cut, "-y")
}

func TestAudioSplitSingleChunk(t *testing.T) {
	runner := &fakeRunner{}
	audio := NewAudio(runner, t.TempDir(), false)

	chunks, err := audio.Split(context.Background(), "in.mp3", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"in.mp3"}, chunks)
	assert.Empty(t, runner.commands)
}

func TestAudioSplitFailure(t *testing.T) {
	runner := &fakeRunner{err: errors.New("exit status 1")}
	audio := NewAudio(runner, t.TempDir(), false)

	_, err := audio.Split(context.Background(), "in.mp3", 2)
	assert.ErrorContains(t, err, "getting audio duration")
}
