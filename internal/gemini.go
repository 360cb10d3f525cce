package internal

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"google.golang.org/genai"
)

// geminiInlineLimit is the request size Gemini accepts for inline data.
const geminiInlineLimit int64 = 20 << 20

// GeminiClient wraps the Google Gen AI SDK
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient creates a Gemini client for model
func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}
	return &GeminiClient{client: client, model: model}, nil
}

// Generate implements Generator
func (c *GeminiClient) Generate(ctx context.Context, prompt string, image *Image) (string, error) {
	parts := []*genai.Part{
		genai.NewPartFromText(prompt),
	}
	if image != nil {
		parts = append(parts, genai.NewPartFromBytes(image.Data, image.MIMEType))
	}
	return c.generate(ctx, parts)
}

// TranscribeAudio implements AudioTranscriber by sending the audio inline
// with the transcription instruction.
func (c *GeminiClient) TranscribeAudio(ctx context.Context, file *os.File, req TranscriptionRequest) (string, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("reading audio: %w", err)
	}

	parts := []*genai.Part{
		genai.NewPartFromText(req.Instruction),
		genai.NewPartFromBytes(data, audioMIMEType(file.Name())),
	}
	return c.generate(ctx, parts)
}

// MaxAudioBytes implements AudioTranscriber
func (c *GeminiClient) MaxAudioBytes() int64 {
	return geminiInlineLimit
}

func (c *GeminiClient) generate(ctx context.Context, parts []*genai.Part) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("generating content: %w", err)
	}
	return result.Text(), nil
}

func audioMIMEType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".m4a", ".mp4":
		return "audio/mp4"
	case ".webm":
		return "audio/webm"
	case ".ogg", ".opus":
		return "audio/ogg"
	case ".wav":
		return "audio/wav"
	default:
		return "audio/mpeg"
	}
}
