package internal

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/rtzll/tubehack/internal/scrape"
)

// Supported providers
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Stage names a generation step; it tags GenerationError.
type Stage string

const (
	StageAnalysis      Stage = "analysis"
	StagePatterns      Stage = "patterns"
	StageIdeas         Stage = "ideas"
	StageScript        Stage = "script"
	StageTranscription Stage = "transcription"
)

// GenerationError is a provider failure during one stage. Output that failed
// to generate is kept as displayable text but is never fed to a later stage.
type GenerationError struct {
	Stage Stage
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s generation failed: %v", e.Stage, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// Image is an inline image attached to a prompt.
type Image struct {
	Data     []byte
	MIMEType string
}

// ImageFromThumbnail returns nil when there is no decoded thumbnail.
func ImageFromThumbnail(t *scrape.Thumbnail) *Image {
	if t == nil || len(t.Data) == 0 {
		return nil
	}
	return &Image{Data: t.Data, MIMEType: t.MIMEType}
}

// Generator produces text from a prompt and an optional image.
type Generator interface {
	Generate(ctx context.Context, prompt string, image *Image) (string, error)
}

// TranscriptionRequest describes one audio transcription call.
type TranscriptionRequest struct {
	// Instruction is sent to chat models that transcribe from a prompt.
	Instruction string
	// LanguageCode is an ISO-639-1 hint for speech models.
	LanguageCode string
}

// AudioTranscriber is implemented by provider clients that accept audio.
type AudioTranscriber interface {
	TranscribeAudio(ctx context.Context, file *os.File, req TranscriptionRequest) (string, error)
	// MaxAudioBytes is the largest file accepted in one call.
	MaxAudioBytes() int64
}

var supportedModels = map[string][]string{
	ProviderGemini: {"gemini-2.0-flash", "gemini-2.0-flash-lite", "gemini-2.5-flash", "gemini-2.5-pro"},
	ProviderOpenAI: {"gpt-4o", "gpt-4o-mini", "o4-mini", "gpt-4.1-nano"},
}

// DefaultModel returns the model used when none is configured.
func DefaultModel(provider string) string {
	if provider == ProviderOpenAI {
		return "gpt-4o-mini"
	}
	return "gemini-2.0-flash"
}

// ValidateProvider checks the provider name.
func ValidateProvider(provider string) error {
	if _, ok := supportedModels[provider]; ok {
		return nil
	}
	return fmt.Errorf("unsupported provider: %s (supported: %s, %s)", provider, ProviderGemini, ProviderOpenAI)
}

// ValidateModel checks if the model is supported by the provider
func ValidateModel(provider, model string) error {
	if err := ValidateProvider(provider); err != nil {
		return err
	}
	models := supportedModels[provider]
	if slices.Contains(models, model) {
		return nil
	}
	return fmt.Errorf("unsupported %s model: %s (supported: %s)", provider, model, strings.Join(models, ", "))
}

// ValidateAPIKey returns a standardized error when the provider key is missing.
func ValidateAPIKey(provider, apiKey string) error {
	if apiKey != "" {
		return nil
	}
	switch provider {
	case ProviderOpenAI:
		return errors.New("OpenAI API key is required - set it in config.toml or the OPENAI_API_KEY environment variable")
	default:
		return errors.New("Gemini API key is required - set it in config.toml or the GEMINI_API_KEY environment variable")
	}
}

// AI handles provider interactions for generation and transcription
type AI struct {
	client            Generator
	audio             *Audio
	provider          string
	model             string
	apiKey            string
	timeout           time.Duration
	transcribeTimeout time.Duration
	verbose           bool

	clientOnce sync.Once
	clientErr  error
}

// NewAI creates an AI processor around an existing client
func NewAI(client Generator, audio *Audio, timeout time.Duration, verbose bool) *AI {
	return &AI{
		client:            client,
		audio:             audio,
		timeout:           timeout,
		transcribeTimeout: timeout,
		verbose:           verbose,
	}
}

// NewAIWithKey creates an AI processor with lazy client initialization
func NewAIWithKey(provider, apiKey, model string, audio *Audio, timeout, transcribeTimeout time.Duration, verbose bool) *AI {
	if model == "" {
		model = DefaultModel(provider)
	}
	return &AI{
		audio:             audio,
		provider:          provider,
		model:             model,
		apiKey:            apiKey,
		timeout:           timeout,
		transcribeTimeout: transcribeTimeout,
		verbose:           verbose,
	}
}

// ensureClient initializes the provider client if needed
func (ai *AI) ensureClient(ctx context.Context) error {
	if ai.client != nil {
		return nil
	}

	if err := ValidateAPIKey(ai.provider, ai.apiKey); err != nil {
		return err
	}

	ai.clientOnce.Do(func() {
		switch ai.provider {
		case ProviderOpenAI:
			ai.client = NewOpenAIClient(ai.apiKey, ai.model)
		default:
			client, err := NewGeminiClient(ctx, ai.apiKey, ai.model)
			if err != nil {
				ai.clientErr = err
				return
			}
			ai.client = client
		}
	})

	return ai.clientErr
}

// Generate implements Generator with the configured timeout.
func (ai *AI) Generate(ctx context.Context, prompt string, image *Image) (string, error) {
	if err := ai.ensureClient(ctx); err != nil {
		return "", err
	}

	if ai.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, ai.timeout)
		defer cancel()
	}

	text, err := ai.client.Generate(ctx, prompt, image)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", errors.New("empty response from model")
	}
	return text, nil
}

// Transcribe converts an audio file to text. Files larger than the provider
// accepts are split with ffmpeg and transcribed chunk by chunk.
func (ai *AI) Transcribe(ctx context.Context, audioFile string, req TranscriptionRequest) (string, error) {
	if err := ai.ensureClient(ctx); err != nil {
		return "", err
	}
	transcriber, ok := ai.client.(AudioTranscriber)
	if !ok {
		return "", errors.New("provider client does not support audio transcription")
	}

	if ai.transcribeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, ai.transcribeTimeout)
		defer cancel()
	}

	if ai.verbose {
		fmt.Printf("Transcribing audio file: %s\n", audioFile)
	}

	info, err := os.Stat(audioFile)
	if err != nil {
		return "", fmt.Errorf("getting audio file info: %w", err)
	}

	numChunks := int(math.Ceil(float64(info.Size()) / float64(transcriber.MaxAudioBytes())))

	chunks := []string{audioFile}
	if numChunks > 1 {
		if ai.audio == nil {
			return "", fmt.Errorf("audio file exceeds %d bytes and no splitter is configured", transcriber.MaxAudioBytes())
		}
		chunks, err = ai.audio.Split(ctx, audioFile, numChunks)
		if err != nil {
			return "", fmt.Errorf("splitting audio: %w", err)
		}
		defer cleanupFiles(chunks...)
	}

	transcript, err := ai.processAudioChunks(ctx, transcriber, chunks, req)
	if err != nil {
		return "", fmt.Errorf("transcribing audio: %w", err)
	}
	return transcript, nil
}

// processAudioChunks transcribes audio chunks sequentially
func (ai *AI) processAudioChunks(ctx context.Context, transcriber AudioTranscriber, chunks []string, req TranscriptionRequest) (string, error) {
	numChunks := len(chunks)

	var sb strings.Builder
	for i, chunkPath := range chunks {
		file, err := os.Open(chunkPath)
		if err != nil {
			return "", fmt.Errorf("opening chunk %s: %w", chunkPath, err)
		}

		text, err := transcriber.TranscribeAudio(ctx, file, req)
		if closeErr := file.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close file %s: %v\n", chunkPath, closeErr)
		}
		if err != nil {
			return "", fmt.Errorf("transcribing chunk %d: %w", i+1, err)
		}

		sb.WriteString(strings.TrimSpace(text))
		if i < numChunks-1 {
			sb.WriteString("\n")
		}

		if ai.verbose && numChunks > 1 {
			fmt.Printf("Transcribed chunk %d/%d\n", i+1, numChunks)
		}
	}

	return sb.String(), nil
}
