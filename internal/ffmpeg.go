package internal

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// Audio splits audio files with ffprobe and ffmpeg so each piece fits a
// transcription request.
type Audio struct {
	cmdRunner CommandRunner
	tempDir   string
	verbose   bool
}

func NewAudio(cmdRunner CommandRunner, tempDir string, verbose bool) *Audio {
	return &Audio{cmdRunner: cmdRunner, tempDir: tempDir, verbose: verbose}
}

// Duration asks ffprobe for the length of audioFile in seconds
func (a *Audio) Duration(ctx context.Context, audioFile string) (float64, error) {
	probe, err := a.cmdRunner.Run(ctx, "ffprobe", "-v", "quiet",
		"-show_entries", "format=duration", "-of", "csv=p=0", "-i", audioFile)
	if err != nil {
		return 0, fmt.Errorf("ffprobe on %s: %w (%s)", audioFile, err, strings.TrimSpace(string(probe)))
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(string(probe)), 64)
	if err != nil {
		return 0, fmt.Errorf("unexpected ffprobe duration %q: %w", strings.TrimSpace(string(probe)), err)
	}
	if duration <= 0 {
		return 0, fmt.Errorf("audio has no duration: %s", audioFile)
	}
	return duration, nil
}

// Split cuts audioFile into numChunks pieces of equal duration. The pieces
// keep the source container format; the caller removes them.
func (a *Audio) Split(ctx context.Context, audioFile string, numChunks int) ([]string, error) {
	if numChunks < 2 {
		return []string{audioFile}, nil
	}
	if err := EnsureDirs(a.tempDir); err != nil {
		return nil, fmt.Errorf("creating temp directory: %w", err)
	}

	duration, err := a.Duration(ctx, audioFile)
	if err != nil {
		return nil, fmt.Errorf("getting audio duration: %w", err)
	}

	chunkSeconds := int(math.Ceil(duration / float64(numChunks)))
	ext := filepath.Ext(audioFile)
	base := strings.TrimSuffix(filepath.Base(audioFile), ext)

	chunks := make([]string, 0, numChunks)
	for i := range numChunks {
		output := filepath.Join(a.tempDir, fmt.Sprintf("%s_part%02d%s", base, i, ext))
		if err := a.cut(ctx, audioFile, i*chunkSeconds, chunkSeconds, output); err != nil {
			cleanupFiles(chunks...)
			return nil, fmt.Errorf("creating chunk %d: %w", i, err)
		}
		chunks = append(chunks, output)
	}

	if a.verbose {
		fmt.Printf("Split %s into %d chunks of %ds\n", filepath.Base(audioFile), numChunks, chunkSeconds)
	}
	return chunks, nil
}

// cutArgs builds the ffmpeg arguments that copy a segment of audioFile
// without re-encoding. Seeking happens on the input side.
func cutArgs(audioFile string, start, seconds int, output string) []string {
	stream := ffmpeg.Input(audioFile, ffmpeg.KwArgs{"ss": strconv.Itoa(start)}).
		Output(output, ffmpeg.KwArgs{"t": strconv.Itoa(seconds), "c:a": "copy"}).
		OverWriteOutput()
	return append([]string{"-v", "quiet"}, stream.GetArgs()...)
}

func (a *Audio) cut(ctx context.Context, audioFile string, start, seconds int, output string) error {
	cmdOutput, err := a.cmdRunner.Run(ctx, "ffmpeg", cutArgs(audioFile, start, seconds, output)...)
	if err != nil {
		return fmt.Errorf("ffmpeg failed: %w\nOutput: %s", err, string(cmdOutput))
	}
	return nil
}
