package internal

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/lrstanley/go-ytdlp"
	"github.com/tidwall/gjson"

	"github.com/rtzll/tubehack/internal/scrape"
)

// ErrNoSubtitles is returned when yt-dlp wrote no subtitle file.
var ErrNoSubtitles = errors.New("no subtitle files found after download")

var audioExtensions = []string{".mp3", ".m4a", ".webm", ".ogg", ".opus"}

var (
	ytdlpOnce       sync.Once
	ytdlpInstallErr error
)

// ensureYtdlp installs the yt-dlp binary on first use
func ensureYtdlp(ctx context.Context) error {
	ytdlpOnce.Do(func() {
		if _, err := ytdlp.Install(ctx, nil); err != nil {
			ytdlpInstallErr = fmt.Errorf("installing yt-dlp: %w", err)
		}
	})
	return ytdlpInstallErr
}

// YtdlpAudio downloads audio tracks with yt-dlp
type YtdlpAudio struct {
	tempDir string
	verbose bool
}

// NewYtdlpAudio creates an audio downloader writing below tempDir
func NewYtdlpAudio(tempDir string, verbose bool) *YtdlpAudio {
	return &YtdlpAudio{tempDir: tempDir, verbose: verbose}
}

// Download implements AudioDownloader. Each call uses its own directory,
// removed by the returned cleanup function.
func (y *YtdlpAudio) Download(ctx context.Context, videoURL string) (string, func(), error) {
	if err := ensureYtdlp(ctx); err != nil {
		return "", nil, err
	}
	if err := EnsureDirs(y.tempDir); err != nil {
		return "", nil, fmt.Errorf("creating temp directory: %w", err)
	}

	dir, err := os.MkdirTemp(y.tempDir, "audio-*")
	if err != nil {
		return "", nil, fmt.Errorf("creating download directory: %w", err)
	}
	cleanup := func() { _ = os.RemoveAll(dir) }

	if y.verbose {
		fmt.Printf("Downloading audio for %s\n", videoURL)
	}

	dl := ytdlp.New().
		Format("bestaudio[ext=m4a]/bestaudio/best").
		ExtractAudio().
		AudioFormat("mp3").
		AudioQuality("128K").
		NoPlaylist().
		Quiet().
		NoWarnings().
		Output(filepath.Join(dir, "audio.%(ext)s"))

	result, err := dl.Run(ctx, videoURL)
	if err != nil {
		cleanup()
		if result != nil && y.verbose {
			fmt.Printf("Stderr: %s\n", result.Stderr)
		}
		return "", nil, fmt.Errorf("yt-dlp audio download: %w", err)
	}

	audioFile, err := findFile(dir, audioExtensions)
	if err != nil {
		cleanup()
		return "", nil, err
	}
	return audioFile, cleanup, nil
}

func findFile(dir string, extensions []string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("reading download directory: %w", err)
	}
	for _, entry := range entries {
		if slices.Contains(extensions, strings.ToLower(filepath.Ext(entry.Name()))) {
			return filepath.Join(dir, entry.Name()), nil
		}
	}
	return "", fmt.Errorf("no file with extension %s in %s", strings.Join(extensions, "/"), dir)
}

// YtdlpTranscripts is a scrape.TranscriptSource backed by yt-dlp subtitle
// downloads converted to SRT.
type YtdlpTranscripts struct {
	tempDir string
	verbose bool
}

// NewYtdlpTranscripts creates a yt-dlp caption source
func NewYtdlpTranscripts(tempDir string, verbose bool) *YtdlpTranscripts {
	return &YtdlpTranscripts{tempDir: tempDir, verbose: verbose}
}

// Fetch implements scrape.TranscriptSource, accepting manual or
// auto-generated subtitles in lang.
func (y *YtdlpTranscripts) Fetch(ctx context.Context, videoID, lang string) (string, error) {
	return y.download(ctx, videoID, lang, true, true)
}

// FetchTrack implements scrape.TranscriptSource
func (y *YtdlpTranscripts) FetchTrack(ctx context.Context, videoID string, track scrape.CaptionTrack) (string, error) {
	return y.download(ctx, videoID, track.LanguageCode, !track.Generated, track.Generated)
}

// List implements scrape.TranscriptSource using the JSON dump
func (y *YtdlpTranscripts) List(ctx context.Context, videoID string) ([]scrape.CaptionTrack, error) {
	if err := ensureYtdlp(ctx); err != nil {
		return nil, err
	}

	dl := ytdlp.New().
		DumpSingleJSON().
		NoPlaylist().
		SkipDownload()

	result, err := dl.Run(ctx, scrape.WatchURL(videoID))
	if err != nil {
		if result != nil && y.verbose {
			fmt.Printf("Stderr: %s\n", result.Stderr)
		}
		return nil, fmt.Errorf("extracting subtitle listing: %w", err)
	}
	return parseSubtitleListing(result.Stdout), nil
}

func (y *YtdlpTranscripts) download(ctx context.Context, videoID, lang string, manual, auto bool) (string, error) {
	if err := ensureYtdlp(ctx); err != nil {
		return "", err
	}
	if err := EnsureDirs(y.tempDir); err != nil {
		return "", fmt.Errorf("creating temp directory: %w", err)
	}
	dir, err := os.MkdirTemp(y.tempDir, "subs-*")
	if err != nil {
		return "", fmt.Errorf("creating subtitle directory: %w", err)
	}
	defer os.RemoveAll(dir)

	dl := ytdlp.New()
	if manual {
		dl = dl.WriteSubs()
	}
	if auto {
		dl = dl.WriteAutoSubs()
	}
	dl = dl.
		SubLangs(lang).
		ConvertSubs("srt").
		SkipDownload().
		NoPlaylist().
		Output(filepath.Join(dir, "%(id)s"))

	result, err := dl.Run(ctx, scrape.WatchURL(videoID))
	if err != nil {
		if result != nil && y.verbose {
			fmt.Printf("Stderr: %s\n", result.Stderr)
		}
		return "", fmt.Errorf("downloading %s subtitles: %w", lang, err)
	}

	srtFile, err := findFile(dir, []string{".srt"})
	if err != nil {
		return "", ErrNoSubtitles
	}
	content, err := os.ReadFile(srtFile)
	if err != nil {
		return "", fmt.Errorf("reading SRT file: %w", err)
	}
	return srtToText(string(content)), nil
}

// parseSubtitleListing reads manual and automatic subtitle languages from a
// yt-dlp info JSON document, in document order.
func parseSubtitleListing(infoJSON string) []scrape.CaptionTrack {
	var tracks []scrape.CaptionTrack
	for _, source := range []struct {
		key       string
		generated bool
	}{
		{"subtitles", false},
		{"automatic_captions", true},
	} {
		gjson.Get(infoJSON, source.key).ForEach(func(lang, formats gjson.Result) bool {
			if lang.String() == "live_chat" {
				return true
			}
			tracks = append(tracks, scrape.CaptionTrack{
				LanguageCode: lang.String(),
				Name:         formats.Get("0.name").String(),
				Generated:    source.generated,
			})
			return true
		})
	}
	return tracks
}

// srtToText converts SRT subtitles to plain text without rolling repeats
func srtToText(content string) string {
	lines := removeDuplicates(parseSRT(content))
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// parseSRT extracts text content from SRT format
func parseSRT(content string) []string {
	var lines []string

	content = strings.ReplaceAll(content, "\r\n", "\n")
	for block := range strings.SplitSeq(content, "\n\n") {
		blockLines := strings.Split(strings.TrimSpace(block), "\n")
		if len(blockLines) < 3 {
			continue
		}
		// sequence number and timestamp come first
		for _, line := range blockLines[2:] {
			if line = strings.TrimSpace(line); line != "" {
				lines = append(lines, line)
			}
		}
	}

	return lines
}

// removeDuplicates eliminates consecutive repeated or overlapping lines,
// which auto-generated captions emit as the text rolls.
func removeDuplicates(lines []string) []string {
	result := make([]string, 0, len(lines))
	prevLine := ""

	for _, line := range lines {
		isDuplicate := prevLine != "" && (strings.Contains(line, prevLine) || strings.Contains(prevLine, line))
		if !isDuplicate {
			result = append(result, line)
		}
		prevLine = line
	}

	return result
}
