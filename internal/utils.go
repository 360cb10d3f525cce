package internal

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

var inputSeparator = regexp.MustCompile(`[\n,]+`)

// SplitInputs splits a list of URLs separated by newlines or commas,
// dropping blanks.
func SplitInputs(inputs ...string) []string {
	var out []string
	for _, input := range inputs {
		for _, field := range inputSeparator.Split(input, -1) {
			if field = strings.TrimSpace(field); field != "" {
				out = append(out, field)
			}
		}
	}
	return out
}

// AskUser asks a yes/no question on the terminal. Tests replace it.
var AskUser = func(message string) bool {
	return confirm(os.Stdin, os.Stdout, message)
}

func confirm(in io.Reader, out io.Writer, message string) bool {
	fmt.Fprintf(out, "%s (y/N): ", message)
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}

// CleanupTempDir empties tempDir and removes it. yt-dlp downloads live in
// per-call subdirectories.
func CleanupTempDir(tempDir string) error {
	entries, err := os.ReadDir(tempDir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("listing %s: %w", tempDir, err)
	}

	var failed []string
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(tempDir, entry.Name())); err != nil {
			failed = append(failed, entry.Name())
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("could not remove from %s: %s", tempDir, strings.Join(failed, ", "))
	}
	return os.Remove(tempDir)
}

// renderWidth leaves a small margin inside the terminal
func renderWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	switch {
	case err != nil:
		return 80
	case width > 10:
		return width - 4
	default:
		return width
	}
}

// RenderMarkdown formats generated markdown for the terminal
func RenderMarkdown(content string) (string, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithColorProfile(termenv.EnvColorProfile()),
		glamour.WithWordWrap(renderWidth()),
		glamour.WithEmoji(),
	)
	if err != nil {
		return "", fmt.Errorf("markdown renderer: %w", err)
	}
	out, err := renderer.Render(content)
	if err != nil {
		return "", fmt.Errorf("markdown render: %w", err)
	}
	return out, nil
}

func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// EnsureDirs creates every non-empty dir with its parents
func EnsureDirs(dirs ...string) error {
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
}

// cleanupFiles removes audio chunks; a missing chunk is not an error
func cleanupFiles(files ...string) {
	for _, file := range files {
		if err := os.Remove(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "Warning: leaving %s behind: %v\n", file, err)
		}
	}
}

// WriteOutput writes content to path, creating parent directories.
func WriteOutput(path, content string) error {
	if err := EnsureDirs(filepath.Dir(path)); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
