package internal

import (
	"context"
	"fmt"
	"strings"

	"github.com/rtzll/tubehack/internal/scrape"
)

// AudioDownloader fetches the audio track of a video to a local file. The
// cleanup function removes everything the download created.
type AudioDownloader interface {
	Download(ctx context.Context, videoURL string) (path string, cleanup func(), err error)
}

// Transcriber converts a local audio file to text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioFile string, req TranscriptionRequest) (string, error)
}

// languageCodes maps output languages to speech model hints.
var languageCodes = map[string]string{
	"japanese": "ja",
	"english":  "en",
	"korean":   "ko",
	"chinese":  "zh",
	"spanish":  "es",
	"french":   "fr",
	"german":   "de",
}

// LanguageCode returns the ISO-639-1 code for a language name, or "" when unknown.
func LanguageCode(language string) string {
	return languageCodes[strings.ToLower(strings.TrimSpace(language))]
}

// AudioTranscription downloads a video's audio and transcribes it.
type AudioTranscription struct {
	downloader  AudioDownloader
	transcriber Transcriber
	prompts     *PromptManager
	language    string
	verbose     bool
}

// NewAudioTranscription wires a downloader to a transcriber
func NewAudioTranscription(downloader AudioDownloader, transcriber Transcriber, prompts *PromptManager, language string, verbose bool) *AudioTranscription {
	return &AudioTranscription{
		downloader:  downloader,
		transcriber: transcriber,
		prompts:     prompts,
		language:    language,
		verbose:     verbose,
	}
}

// TranscribeURL downloads and transcribes the audio of videoURL.
func (t *AudioTranscription) TranscribeURL(ctx context.Context, videoURL string) (string, error) {
	instruction, err := t.prompts.Render(PromptTranscribe, TranscribePromptData{Language: t.language})
	if err != nil {
		return "", err
	}

	audioFile, cleanup, err := t.downloader.Download(ctx, videoURL)
	if err != nil {
		return "", fmt.Errorf("downloading audio: %w", err)
	}
	defer cleanup()

	text, err := t.transcriber.Transcribe(ctx, audioFile, TranscriptionRequest{
		Instruction:  instruction,
		LanguageCode: LanguageCode(t.language),
	})
	if err != nil {
		return "", &GenerationError{Stage: StageTranscription, Err: err}
	}
	return strings.TrimSpace(text), nil
}

// Transcribe is the best-effort fallback for caption-less short-form videos:
// any failure is reported as absence.
func (t *AudioTranscription) Transcribe(ctx context.Context, videoID string) (string, bool) {
	text, err := t.TranscribeURL(ctx, scrape.ShortsURL(videoID))
	if err != nil {
		if t.verbose {
			fmt.Printf("Audio transcription for %s failed: %v\n", videoID, err)
		}
		return "", false
	}
	return text, text != ""
}
