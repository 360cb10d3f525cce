package internal

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

// WhisperLimit is the maximum file size accepted by OpenAI's Whisper API (25 MiB)
const WhisperLimit int64 = 25 << 20

// OpenAIClient wraps the official OpenAI Go SDK
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient creates a new OpenAI client
func NewOpenAIClient(apiKey, model string) *OpenAIClient {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIClient{client: &client, model: model}
}

func chatModel(model string) (openai.ChatModel, error) {
	switch model {
	case "gpt-4o":
		return openai.ChatModelGPT4o, nil
	case "gpt-4o-mini":
		return openai.ChatModelGPT4oMini, nil
	case "o4-mini":
		return openai.ChatModelO4Mini, nil
	case "gpt-4.1-nano":
		return openai.ChatModelGPT4_1Nano, nil
	default:
		return "", fmt.Errorf("unsupported model: %s", model)
	}
}

// Generate implements Generator. An image is sent as a data URL part.
func (c *OpenAIClient) Generate(ctx context.Context, prompt string, image *Image) (string, error) {
	oaiModel, err := chatModel(c.model)
	if err != nil {
		return "", err
	}

	message := openai.UserMessage(prompt)
	if image != nil {
		dataURL := "data:" + image.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(image.Data)
		message = openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
			openai.TextContentPart(prompt),
			openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{URL: dataURL}),
		})
	}

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    oaiModel,
		Messages: []openai.ChatCompletionMessageParamUnion{message},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no response choices from OpenAI")
	}
	return resp.Choices[0].Message.Content, nil
}

// TranscribeAudio implements AudioTranscriber with Whisper
func (c *OpenAIClient) TranscribeAudio(ctx context.Context, file *os.File, req TranscriptionRequest) (string, error) {
	params := openai.AudioTranscriptionNewParams{
		File:  file,
		Model: openai.AudioModelWhisper1,
	}
	if req.LanguageCode != "" {
		params.Language = openai.String(req.LanguageCode)
	}

	resp, err := c.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

// MaxAudioBytes implements AudioTranscriber
func (c *OpenAIClient) MaxAudioBytes() int64 {
	return WhisperLimit
}
