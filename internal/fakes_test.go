package internal

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"

	"github.com/rtzll/tubehack/internal/scrape"
)

var errProvider = errors.New("provider unavailable")

// fakeGenerator answers by stage, recognised from the template opening.
type fakeGenerator struct {
	mu      sync.Mutex
	replies map[Stage]string
	fail    map[Stage]error
	prompts map[Stage][]string
	images  []*Image
}

func newFakeGenerator() *fakeGenerator {
	return &fakeGenerator{
		replies: map[Stage]string{
			StageAnalysis: "analysis text",
			StagePatterns: "pattern text",
			StageIdeas:    englishIdeas,
			StageScript:   "## Hook\nscript body",
		},
		fail:    map[Stage]error{},
		prompts: map[Stage][]string{},
	}
}

func stageOf(prompt string) Stage {
	switch {
	case strings.HasPrefix(prompt, "Analyze this"):
		return StageAnalysis
	case strings.HasPrefix(prompt, "Extract the"):
		return StagePatterns
	case strings.HasPrefix(prompt, "Generate YouTube content plans"):
		return StageIdeas
	case strings.HasPrefix(prompt, "Write a YouTube video script"):
		return StageScript
	default:
		return Stage("unknown")
	}
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string, image *Image) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	stage := stageOf(prompt)
	f.prompts[stage] = append(f.prompts[stage], prompt)
	f.images = append(f.images, image)
	if err := f.fail[stage]; err != nil {
		return "", err
	}
	return f.replies[stage], nil
}

func (f *fakeGenerator) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, p := range f.prompts {
		n += len(p)
	}
	return n
}

func (f *fakeGenerator) last(stage Stage) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.prompts[stage]
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

type fakeMetadata struct {
	titles    map[string]string
	onResolve func(id string)
}

func (f *fakeMetadata) ResolveMetadata(_ context.Context, id string, isShort bool) scrape.VideoMetadata {
	if f.onResolve != nil {
		f.onResolve(id)
	}
	meta := scrape.VideoMetadata{ID: id, URL: scrape.WatchURL(id), IsShort: isShort}
	if isShort {
		meta.URL = scrape.ShortsURL(id)
	}
	if title, ok := f.titles[id]; ok {
		meta.Title = title
	} else {
		meta.Error = "title not found"
	}
	return meta
}

type fakeCaptions map[string]string

func (f fakeCaptions) Resolve(_ context.Context, id string) (string, bool) {
	text, ok := f[id]
	return text, ok
}

type fakeShorts struct {
	text  string
	calls []string
}

func (f *fakeShorts) Transcribe(_ context.Context, id string) (string, bool) {
	f.calls = append(f.calls, id)
	return f.text, f.text != ""
}

// fakeTranscriptSource serves captions from memory as a scrape.TranscriptSource.
type fakeTranscriptSource struct {
	byLang map[string]string
}

func (f *fakeTranscriptSource) Fetch(_ context.Context, _ string, lang string) (string, error) {
	if text, ok := f.byLang[lang]; ok {
		return text, nil
	}
	return "", errors.New("no captions")
}

func (f *fakeTranscriptSource) List(context.Context, string) ([]scrape.CaptionTrack, error) {
	var tracks []scrape.CaptionTrack
	for lang := range f.byLang {
		tracks = append(tracks, scrape.CaptionTrack{LanguageCode: lang})
	}
	return tracks, nil
}

func (f *fakeTranscriptSource) FetchTrack(ctx context.Context, id string, track scrape.CaptionTrack) (string, error) {
	return f.Fetch(ctx, id, track.LanguageCode)
}

type fakeDownloader struct {
	path     string
	err      error
	urls     []string
	cleanups int
}

func (f *fakeDownloader) Download(_ context.Context, videoURL string) (string, func(), error) {
	f.urls = append(f.urls, videoURL)
	if f.err != nil {
		return "", nil, f.err
	}
	return f.path, func() { f.cleanups++ }, nil
}

type fakeTranscriber struct {
	text     string
	err      error
	requests []TranscriptionRequest
}

func (f *fakeTranscriber) Transcribe(_ context.Context, _ string, req TranscriptionRequest) (string, error) {
	f.requests = append(f.requests, req)
	return f.text, f.err
}

// fakeRunner records commands, answers ffprobe with a fixed duration and
// writes a placeholder file for every ffmpeg cut.
type fakeRunner struct {
	duration string
	err      error
	commands [][]string
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	f.commands = append(f.commands, append([]string{name}, args...))
	if f.err != nil {
		return []byte("boom"), f.err
	}
	if name == "ffprobe" {
		return []byte(f.duration + "\n"), nil
	}
	if name == "ffmpeg" {
		for i := len(args) - 1; i >= 0; i-- {
			if !strings.HasPrefix(args[i], "-") {
				return nil, os.WriteFile(args[i], []byte("chunk"), 0o644)
			}
		}
	}
	return nil, nil
}
