package internal

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rtzll/tubehack/internal/scrape"
)

func TestConfigDefaults(t *testing.T) {
	v := newViper(t.TempDir())
	config := configFromViper(v)

	assert.Equal(t, ProviderGemini, config.Provider)
	assert.Equal(t, "Japanese", config.OutputLanguage)
	assert.Equal(t, scrape.DefaultCaptionLanguages, config.CaptionLanguages)
	assert.Equal(t, CaptionSourcePage, config.CaptionSource)
	assert.Equal(t, scrape.DefaultUserAgent, config.UserAgent)
	assert.Equal(t, 15*time.Second, config.PageTimeout)
	assert.Equal(t, 2*time.Minute, config.GenerationTimeout)
	assert.Equal(t, MaxVideos, config.MaxVideos)
}

func TestConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(`
provider = "OpenAI"
output_language = "English"
caption_source = "ytdlp"
page_timeout = "3s"
max_videos = 12
`), 0o644))

	v := newViper(dir)
	require.NoError(t, v.ReadInConfig())
	config := configFromViper(v)

	assert.Equal(t, ProviderOpenAI, config.Provider)
	assert.Equal(t, "English", config.OutputLanguage)
	assert.Equal(t, CaptionSourceYtdlp, config.CaptionSource)
	assert.Equal(t, 3*time.Second, config.PageTimeout)
	assert.Equal(t, MaxVideos, config.MaxVideos)
}

func TestConfigAPIKeyFromEnvironment(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "gemini-key")
	t.Setenv("OPENAI_API_KEY", "openai-key")

	config := configFromViper(newViper(t.TempDir()))
	assert.Equal(t, "gemini-key", config.APIKey())

	config.Provider = ProviderOpenAI
	assert.Equal(t, "openai-key", config.APIKey())
}

func TestEnsureDefaultPrompts(t *testing.T) {
	dir := t.TempDir()
	edited := filepath.Join(dir, PromptScript+".tmpl")
	require.NoError(t, os.WriteFile(edited, []byte("mine"), 0o644))

	require.NoError(t, EnsureDefaultPrompts(dir))

	for _, name := range []string{PromptAnalysisShort, PromptAnalysisLong, PromptPatterns, PromptIdeas, PromptTranscribe} {
		assert.FileExists(t, filepath.Join(dir, name+".tmpl"))
	}
	data, err := os.ReadFile(edited)
	require.NoError(t, err)
	assert.Equal(t, "mine", string(data))
}
