package internal

import (
	"context"
	"errors"
	"fmt"

	"github.com/rtzll/tubehack/internal/scrape"
)

// Caption sources
const (
	CaptionSourcePage  = "page"
	CaptionSourceYtdlp = "ytdlp"
)

// ErrNoTranscript is returned when neither captions nor audio produced text.
var ErrNoTranscript = errors.New("no transcript available")

// App holds the application state and dependencies
type App struct {
	scraper       *scrape.Client
	transcripts   scrape.TranscriptSource
	generator     Generator
	transcriber   Transcriber
	downloader    AudioDownloader
	promptManager *PromptManager
	config        *Config
	ui            UIManager

	captions *scrape.CaptionResolver
	shorts   *AudioTranscription
	workflow *Workflow
}

// NewApp initializes the application
func NewApp(config *Config, options ...AppOption) *App {
	cmdRunner := &DefaultCommandRunner{}

	audio := NewAudio(cmdRunner, config.TempDir, config.Verbose)
	ai := NewAIWithKey(config.Provider, config.APIKey(), config.Model, audio,
		config.GenerationTimeout, config.TranscribeTimeout, config.Verbose)

	scraper := scrape.NewClient(
		scrape.WithTimeouts(config.PageTimeout, config.ChannelTimeout, config.ThumbnailTimeout),
		scrape.WithHeaders(config.UserAgent, config.AcceptLanguage),
		scrape.WithVerbose(config.Verbose),
	)

	app := &App{
		scraper:       scraper,
		generator:     ai,
		transcriber:   ai,
		downloader:    NewYtdlpAudio(config.TempDir, config.Verbose),
		promptManager: NewPromptManager(config.PromptsDir),
		config:        config,
		ui:            NewUIManager(config.Verbose, config.Quiet),
	}

	// Apply any custom options
	for _, option := range options {
		option(app)
	}

	app.wire()
	return app
}

// wire builds the collaborators that depend on replaceable parts
func (app *App) wire() {
	if app.transcripts == nil {
		app.transcripts = scrape.NewPageTranscripts(app.scraper)
		if app.config.CaptionSource == CaptionSourceYtdlp {
			app.transcripts = NewYtdlpTranscripts(app.config.TempDir, app.config.Verbose)
		}
	}
	languages := app.config.CaptionLanguages
	if len(languages) == 0 {
		languages = scrape.DefaultCaptionLanguages
	}
	app.captions = scrape.NewCaptionResolver(app.transcripts, languages, app.config.Verbose)
	app.shorts = NewAudioTranscription(app.downloader, app.transcriber, app.promptManager,
		app.config.OutputLanguage, app.config.Verbose)
	app.workflow = NewWorkflow(app.generator, app.scraper, app.captions, app.promptManager,
		WithShortsFallback(app.shorts),
		WithUI(app.ui),
		WithOutputLanguage(app.config.OutputLanguage),
	)
}

// AppOption customizes App creation
type AppOption func(*App)

// WithScraper sets the YouTube page client
func WithScraper(c *scrape.Client) AppOption {
	return func(a *App) {
		a.scraper = c
	}
}

// WithTranscriptSource replaces the caption source
func WithTranscriptSource(src scrape.TranscriptSource) AppOption {
	return func(a *App) {
		a.transcripts = src
	}
}

// WithGenerator replaces the text generation backend
func WithGenerator(g Generator) AppOption {
	return func(a *App) {
		a.generator = g
	}
}

// WithTranscriber replaces the audio transcription backend
func WithTranscriber(t Transcriber) AppOption {
	return func(a *App) {
		a.transcriber = t
	}
}

// WithAudioDownloader replaces the audio downloader
func WithAudioDownloader(d AudioDownloader) AppOption {
	return func(a *App) {
		a.downloader = d
	}
}

// WithUIManager sets the console output
func WithUIManager(ui UIManager) AppOption {
	return func(a *App) {
		a.ui = ui
	}
}

// Config returns the application settings
func (app *App) Config() *Config {
	return app.config
}

// UI returns the console output
func (app *App) UI() UIManager {
	return app.ui
}

// Workflow returns the stage runner
func (app *App) Workflow() *Workflow {
	return app.workflow
}

// OverrideScriptPrompt replaces the script template with a template string
// or file.
func (app *App) OverrideScriptPrompt(setting string) error {
	if err := app.promptManager.Override(PromptScript, setting); err != nil {
		return err
	}
	if setting != "" {
		if IsLikelyFilePath(setting) && FileExists(setting) {
			app.ui.Verbose("Using custom script prompt file: %s\n", setting)
		} else {
			app.ui.Verbose("Using custom script prompt string\n")
		}
	}
	return nil
}

// ListVideos lists the first page of a channel or of search results. A page
// without recognizable entries yields an empty list and no error.
func (app *App) ListVideos(ctx context.Context, channelURL, query string) ([]scrape.VideoListing, error) {
	switch {
	case channelURL != "":
		app.ui.Verbose("Listing videos of %s\n", scrape.NormalizeChannelURL(channelURL))
		return app.scraper.ChannelVideos(ctx, channelURL, app.config.MaxVideos)
	case query != "":
		app.ui.Verbose("Searching for %q\n", query)
		return app.scraper.SearchVideos(ctx, query, app.config.MaxVideos)
	default:
		return nil, errors.New("a channel URL or a search query is required")
	}
}

// ResolveRefs gathers the videos to analyze from direct URLs and an
// optional channel or search listing, capped at the configured maximum.
func (app *App) ResolveRefs(ctx context.Context, urls []string, channelURL, query string) ([]scrape.VideoRef, error) {
	refs, rejected := CollectVideoRefs(urls...)
	for _, input := range rejected {
		app.ui.Printf("Skipping %q: no video id found\n", input)
	}

	if channelURL != "" || query != "" {
		listings, err := app.ListVideos(ctx, channelURL, query)
		if err != nil {
			app.ui.Printf("Warning: %v\n", err)
		}
		seen := make(map[string]bool, len(refs))
		for _, r := range refs {
			seen[r.ID] = true
		}
		for _, r := range RefsFromListings(listings) {
			if !seen[r.ID] {
				refs = append(refs, r)
			}
		}
	}

	if len(refs) > app.config.MaxVideos {
		refs = refs[:app.config.MaxVideos]
	}
	if len(refs) == 0 {
		return nil, ErrNoVideos
	}
	return refs, nil
}

// Metadata resolves title and thumbnail for one video
func (app *App) Metadata(ctx context.Context, ref scrape.VideoRef) scrape.VideoMetadata {
	return app.scraper.ResolveMetadata(ctx, ref.ID, ref.IsShort())
}

// CaptionTracks lists the caption tracks of a video
func (app *App) CaptionTracks(ctx context.Context, id string) ([]scrape.CaptionTrack, error) {
	return app.transcripts.List(ctx, id)
}

// Transcript returns caption text for ref. With allowAudio set, a video
// without captions is transcribed from its audio instead. The second
// result names where the text came from.
func (app *App) Transcript(ctx context.Context, ref scrape.VideoRef, allowAudio bool) (string, string, error) {
	if text, ok := app.captions.Resolve(ctx, ref.ID); ok {
		return text, TranscriptFromCaptions, nil
	}
	if !allowAudio {
		return "", "", fmt.Errorf("%w for %s", ErrNoTranscript, ref.ID)
	}

	videoURL := scrape.WatchURL(ref.ID)
	if ref.IsShort() {
		videoURL = scrape.ShortsURL(ref.ID)
	}

	spinner := app.ui.NewSpinner("Transcribing audio...")
	text, err := app.shorts.TranscribeURL(ctx, videoURL)
	spinner.Finish()
	if err != nil {
		return "", "", err
	}
	if text == "" {
		return "", "", fmt.Errorf("%w for %s", ErrNoTranscript, ref.ID)
	}
	return text, TranscriptFromAudio, nil
}
