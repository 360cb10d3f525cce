package internal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromptManagerEmbeddedDefaults(t *testing.T) {
	pm := NewPromptManager(t.TempDir())

	out, err := pm.Render(PromptTranscribe, TranscribePromptData{Language: "Korean"})
	require.NoError(t, err)
	assert.Contains(t, out, "verbatim in Korean")

	out, err = pm.Render(PromptAnalysisLong, AnalysisPromptData{
		Language: "English", Title: "A title", TitleLength: 7,
	})
	require.NoError(t, err)
	assert.Contains(t, out, "[Title] A title")
}

func TestPromptManagerDirectoryOverridesEmbedded(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, PromptIdeas+".tmpl"), []byte("Ideas for {{.Theme}}"), 0o644))
	pm := NewPromptManager(dir)

	out, err := pm.Render(PromptIdeas, IdeasPromptData{Theme: "tea"})
	require.NoError(t, err)
	assert.Equal(t, "Ideas for tea", out)
}

func TestPromptManagerOverride(t *testing.T) {
	pm := NewPromptManager("")

	require.NoError(t, pm.Override(PromptScript, "Write {{.TargetChars}} characters about {{.Theme}}"))
	out, err := pm.Render(PromptScript, ScriptPromptData{Theme: "tea", TargetChars: 3000})
	require.NoError(t, err)
	assert.Equal(t, "Write 3000 characters about tea", out)

	file := filepath.Join(t.TempDir(), "script.tmpl")
	require.NoError(t, os.WriteFile(file, []byte("From file: {{.Title}}"), 0o644))
	require.NoError(t, pm.Override(PromptScript, file))
	out, err = pm.Render(PromptScript, ScriptPromptData{Title: "T"})
	require.NoError(t, err)
	assert.Equal(t, "From file: T", out)

	// empty settings keep the current template
	require.NoError(t, pm.Override(PromptScript, ""))
	out, err = pm.Render(PromptScript, ScriptPromptData{Title: "T"})
	require.NoError(t, err)
	assert.Equal(t, "From file: T", out)
}

func TestPromptManagerErrors(t *testing.T) {
	pm := NewPromptManager("")

	_, err := pm.Render("missing", nil)
	assert.Error(t, err)

	require.NoError(t, pm.Override(PromptIdeas, "{{.Broken"))
	_, err = pm.Render(PromptIdeas, IdeasPromptData{})
	assert.Error(t, err)
}

func TestScriptPromptListsSections(t *testing.T) {
	pm := NewPromptManager("")
	out, err := pm.Render(PromptScript, ScriptPromptData{
		Language:    "English",
		Patterns:    "p",
		Theme:       "tea",
		Title:       "Title",
		TargetChars: 5000,
		Allocation:  Apportion(5000),
	})
	require.NoError(t, err)

	assert.Contains(t, out, "- Hook: at least 625 characters")
	assert.Contains(t, out, "- Main point 3: at least 1000 characters")
	assert.NotContains(t, out, "[Thumbnail word]")
	assert.Equal(t, 2, strings.Count(out, "5000 characters"))
}

func TestIsLikelyFilePath(t *testing.T) {
	assert.True(t, IsLikelyFilePath("prompts/script.tmpl"))
	assert.True(t, IsLikelyFilePath("script.md"))
	assert.True(t, IsLikelyFilePath("custom"))
	assert.False(t, IsLikelyFilePath("Write a script about {{.Theme}}"))
	assert.False(t, IsLikelyFilePath(strings.Repeat("x", 201)))
}
