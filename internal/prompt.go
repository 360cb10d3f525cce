package internal

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"text/template"
)

// Prompt template names
const (
	PromptAnalysisShort = "analysis_short"
	PromptAnalysisLong  = "analysis_long"
	PromptPatterns      = "patterns"
	PromptIdeas         = "ideas"
	PromptScript        = "script"
	PromptTranscribe    = "transcribe"
)

// AnalysisPromptData feeds the per-video analysis templates
type AnalysisPromptData struct {
	Language      string
	Title         string
	TitleLength   int
	Transcript    string
	HasTranscript bool
	CharCount     int
}

// PatternsPromptData feeds the pattern extraction template
type PatternsPromptData struct {
	Language   string
	Combined   string
	Single     bool
	CharStats  CharStats
	TitleStats TitleStats
}

// IdeasPromptData feeds the idea generation template
type IdeasPromptData struct {
	Language string
	Patterns string
	Theme    string
}

// ScriptPromptData feeds the script template
type ScriptPromptData struct {
	Language      string
	Patterns      string
	Theme         string
	Title         string
	ThumbnailWord string
	TargetChars   int
	Allocation    Allocation
}

// TranscribePromptData feeds the audio transcription instruction
type TranscribePromptData struct {
	Language string
}

// PromptManager loads and renders the stage templates. Templates are read
// from the prompts directory when present there and from the embedded
// defaults otherwise; a per-stage override may replace either.
type PromptManager struct {
	promptsDir string
	overrides  map[string]string

	mu    sync.Mutex
	cache map[string]*template.Template
}

// NewPromptManager creates a new prompt manager
func NewPromptManager(promptsDir string) *PromptManager {
	return &PromptManager{
		promptsDir: promptsDir,
		overrides:  make(map[string]string),
		cache:      make(map[string]*template.Template),
	}
}

// Override replaces the template for name with setting, which is either a
// template string or a path to a template file.
func (pm *PromptManager) Override(name, setting string) error {
	if setting == "" {
		return nil
	}

	content := setting
	if IsLikelyFilePath(setting) && FileExists(setting) {
		data, err := os.ReadFile(setting)
		if err != nil {
			return fmt.Errorf("reading prompt file: %w", err)
		}
		content = string(data)
	}

	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.overrides[name] = content
	delete(pm.cache, name)
	return nil
}

// Render executes the named template with data
func (pm *PromptManager) Render(name string, data any) (string, error) {
	tmpl, err := pm.template(name)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing %s prompt template: %w", name, err)
	}
	return buf.String(), nil
}

func (pm *PromptManager) template(name string) (*template.Template, error) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	if tmpl, ok := pm.cache[name]; ok {
		return tmpl, nil
	}

	content, err := pm.source(name)
	if err != nil {
		return nil, err
	}

	tmpl, err := template.New(name).Parse(content)
	if err != nil {
		return nil, fmt.Errorf("parsing %s prompt template: %w", name, err)
	}
	pm.cache[name] = tmpl
	return tmpl, nil
}

func (pm *PromptManager) source(name string) (string, error) {
	if content, ok := pm.overrides[name]; ok {
		return content, nil
	}

	if pm.promptsDir != "" {
		data, err := os.ReadFile(filepath.Join(pm.promptsDir, name+".tmpl"))
		if err == nil {
			return string(data), nil
		}
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("reading %s prompt template: %w", name, err)
		}
	}

	data, err := defaultFS.ReadFile("prompts/" + name + ".tmpl")
	if err != nil {
		return "", fmt.Errorf("unknown prompt template %q", name)
	}
	return string(data), nil
}

// IsLikelyFilePath uses heuristics to determine if a string is likely a file path
func IsLikelyFilePath(s string) bool {
	if strings.Contains(s, "/") || strings.Contains(s, "\\") {
		return true
	}

	if strings.Contains(s, ".txt") || strings.Contains(s, ".md") ||
		strings.Contains(s, ".template") || strings.Contains(s, ".tmpl") {
		return true
	}

	// long strings are prompts
	if len(s) > 200 {
		return false
	}

	return !strings.Contains(s, " ") && !strings.Contains(s, "\n")
}
