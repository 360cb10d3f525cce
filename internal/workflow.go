package internal

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync/atomic"
	"unicode/utf8"

	"github.com/rtzll/tubehack/internal/scrape"
)

// MaxVideos bounds every analysis batch.
const MaxVideos = 5

// Prompt input limits in characters
const (
	shortTranscriptLimit = 3000
	longTranscriptLimit  = 12000
	combinedLimit        = 20000
	ideasPatternsLimit   = 12000
	scriptPatternsLimit  = 5000

	// shorter transcripts are treated as missing
	minTranscriptChars = 50
	// shorter transcripts mark the video as short-form
	shortFormChars = 500
)

// ProposedTheme is recorded as the theme when the model picked one.
const ProposedTheme = "AI-proposed theme"

var (
	ErrNoVideos         = errors.New("no videos found")
	ErrNoAnalyses       = errors.New("no successful analyses; analyze videos first")
	ErrPatternsNotReady = errors.New("no usable patterns; extract patterns first")
	ErrIdeasNotReady    = errors.New("no usable ideas; generate ideas first")
	ErrThemeRequired    = errors.New("a theme is required")
	ErrStopped          = errors.New("stopped")
)

// Transcript origins
const (
	TranscriptFromCaptions = "captions"
	TranscriptFromAudio    = "audio"
)

// MetadataResolver resolves display metadata for a video. It never fails;
// problems are recorded on the returned value.
type MetadataResolver interface {
	ResolveMetadata(ctx context.Context, id string, isShort bool) scrape.VideoMetadata
}

// CaptionFinder returns caption text or reports absence.
type CaptionFinder interface {
	Resolve(ctx context.Context, id string) (string, bool)
}

// ShortsFallback transcribes caption-less short-form videos from audio.
type ShortsFallback interface {
	Transcribe(ctx context.Context, id string) (string, bool)
}

// AnalysisRecord is the stage 1 result for one video.
type AnalysisRecord struct {
	Video            scrape.VideoMetadata `json:"video"`
	Analysis         string               `json:"analysis"`
	HasTranscript    bool                 `json:"has_transcript"`
	Transcript       string               `json:"transcript,omitempty"`
	TranscriptSource string               `json:"transcript_source,omitempty"`
	CharCount        int                  `json:"char_count"`
	IsShort          bool                 `json:"is_short"`
	Success          bool                 `json:"success"`
	Error            string               `json:"error,omitempty"`
}

// PatternSummary is the stage 2 result.
type PatternSummary struct {
	Text       string     `json:"text"`
	CharStats  CharStats  `json:"char_stats"`
	TitleStats TitleStats `json:"title_stats"`
	Err        error      `json:"-"`
}

// Usable reports whether the text is generated content that later stages
// may consume.
func (p PatternSummary) Usable() bool {
	return p.Err == nil && strings.TrimSpace(p.Text) != ""
}

// IdeaSet is the stage 3 result.
type IdeaSet struct {
	Text   string      `json:"text"`
	Parsed ParsedIdeas `json:"parsed"`
	Err    error       `json:"-"`
}

// Usable reports whether the ideas were generated successfully.
func (i IdeaSet) Usable() bool {
	return i.Err == nil && strings.TrimSpace(i.Text) != ""
}

// ScriptRequest selects the plan and title for stage 4. Title,
// ThumbnailWord and TargetChars override the automatic choices when set.
type ScriptRequest struct {
	Plan          int
	TitleIndex    int
	Title         string
	ThumbnailWord string
	TargetChars   int
}

// ScriptResult is the stage 4 result.
type ScriptResult struct {
	Text          string     `json:"text"`
	CharCount     int        `json:"char_count"`
	Title         string     `json:"title"`
	ThumbnailWord string     `json:"thumbnail_word"`
	TargetChars   int        `json:"target_chars"`
	Allocation    Allocation `json:"allocation"`
	Err           error      `json:"-"`
}

// Verdict compares the script length with its target.
type Verdict string

const (
	VerdictWithin Verdict = "within"
	VerdictOver   Verdict = "over"
	VerdictUnder  Verdict = "under"
)

// Verdict is within when the length is inside 20% of the target.
func (r ScriptResult) Verdict() Verdict {
	if r.TargetChars <= 0 {
		return VerdictWithin
	}
	percent := float64(r.CharCount) / float64(r.TargetChars) * 100
	switch {
	case math.Abs(percent-100) <= 20:
		return VerdictWithin
	case r.CharCount > r.TargetChars:
		return VerdictOver
	default:
		return VerdictUnder
	}
}

// Summary describes the length against the target in one line.
func (r ScriptResult) Summary() string {
	if r.TargetChars <= 0 {
		return fmt.Sprintf("%d characters", r.CharCount)
	}
	diff := r.CharCount - r.TargetChars
	switch r.Verdict() {
	case VerdictWithin:
		return fmt.Sprintf("%d characters (%.0f%% of the %d target)", r.CharCount,
			float64(r.CharCount)/float64(r.TargetChars)*100, r.TargetChars)
	case VerdictOver:
		return fmt.Sprintf("%d characters (%d over the %d target)", r.CharCount, diff, r.TargetChars)
	default:
		return fmt.Sprintf("%d characters (%d under the %d target)", r.CharCount, -diff, r.TargetChars)
	}
}

// Session carries state between the stages. Each stage replaces its own
// fields wholesale; fields of other stages carry over.
type Session struct {
	Videos    []scrape.VideoRef `json:"videos"`
	Analyses  []AnalysisRecord  `json:"analyses"`
	Patterns  PatternSummary    `json:"patterns"`
	CharStats CharStats         `json:"char_stats"`
	Ideas     IdeaSet           `json:"ideas"`
	Theme     string            `json:"theme"`
	Script    *ScriptResult     `json:"script,omitempty"`

	stop atomic.Bool
}

// NewSession returns an empty session
func NewSession() *Session {
	return &Session{}
}

// Stop asks a running analysis to finish after the current video.
func (s *Session) Stop() {
	s.stop.Store(true)
}

// StopRequested reports whether Stop was called since the last analysis began.
func (s *Session) StopRequested() bool {
	return s.stop.Load()
}

// Reset clears the videos and analyses.
func (s *Session) Reset() {
	s.Videos = nil
	s.Analyses = nil
	s.stop.Store(false)
}

// Successful returns the analyses that succeeded, in input order.
func (s *Session) Successful() []AnalysisRecord {
	var out []AnalysisRecord
	for _, r := range s.Analyses {
		if r.Success {
			out = append(out, r)
		}
	}
	return out
}

// Titles returns the titles of the successful analyses.
func (s *Session) Titles() []string {
	var titles []string
	for _, r := range s.Successful() {
		titles = append(titles, r.Video.DisplayTitle())
	}
	return titles
}

// Workflow runs the four generation stages against a Session.
type Workflow struct {
	generator Generator
	metadata  MetadataResolver
	captions  CaptionFinder
	shorts    ShortsFallback
	prompts   *PromptManager
	ui        UIManager
	language  string
}

// WorkflowOption configures a Workflow
type WorkflowOption func(*Workflow)

// WithShortsFallback enables audio transcription for caption-less shorts
func WithShortsFallback(f ShortsFallback) WorkflowOption {
	return func(w *Workflow) {
		w.shorts = f
	}
}

// WithUI sets the progress and status output
func WithUI(ui UIManager) WorkflowOption {
	return func(w *Workflow) {
		w.ui = ui
	}
}

// WithOutputLanguage sets the language the prompts ask for
func WithOutputLanguage(language string) WorkflowOption {
	return func(w *Workflow) {
		w.language = language
	}
}

// NewWorkflow creates a workflow
func NewWorkflow(generator Generator, metadata MetadataResolver, captions CaptionFinder, prompts *PromptManager, options ...WorkflowOption) *Workflow {
	w := &Workflow{
		generator: generator,
		metadata:  metadata,
		captions:  captions,
		prompts:   prompts,
		ui:        NewQuietUIManager(),
		language:  "Japanese",
	}
	for _, option := range options {
		option(w)
	}
	return w
}

// CollectVideoRefs turns direct URLs into references. Inputs may hold
// several URLs separated by newlines or commas. Inputs without a video id
// are returned separately; at most MaxVideos references are kept.
func CollectVideoRefs(inputs ...string) ([]scrape.VideoRef, []string) {
	var refs []scrape.VideoRef
	var rejected []string
	seen := make(map[string]bool)
	for _, input := range SplitInputs(inputs...) {
		id, ok := scrape.ExtractVideoID(input)
		if !ok {
			rejected = append(rejected, input)
			continue
		}
		if seen[id] || len(refs) == MaxVideos {
			continue
		}
		seen[id] = true
		refs = append(refs, scrape.VideoRef{ID: id, SourceURL: input})
	}
	return refs, rejected
}

// RefsFromListings converts channel or search results into references.
func RefsFromListings(listings []scrape.VideoListing) []scrape.VideoRef {
	refs := make([]scrape.VideoRef, 0, min(len(listings), MaxVideos))
	for _, l := range listings {
		if len(refs) == MaxVideos {
			break
		}
		refs = append(refs, l.Ref())
	}
	return refs
}

// Analyze runs stage 1 over refs one video at a time and replaces
// s.Analyses. A stop request or cancelled context ends the batch between
// videos; the records gathered so far are kept and ErrStopped or the
// context error is returned.
func (w *Workflow) Analyze(ctx context.Context, s *Session, refs []scrape.VideoRef) error {
	if len(refs) == 0 {
		return ErrNoVideos
	}
	if len(refs) > MaxVideos {
		refs = refs[:MaxVideos]
	}

	s.stop.Store(false)
	s.Videos = refs

	bar := w.ui.NewProgressBar(len(refs), "Analyzing")
	defer bar.Finish()

	records := make([]AnalysisRecord, 0, len(refs))
	var halt error
	for i, ref := range refs {
		if s.StopRequested() {
			halt = ErrStopped
			break
		}
		if err := ctx.Err(); err != nil {
			halt = err
			break
		}

		bar.Describe(fmt.Sprintf("Analyzing %d/%d", i+1, len(refs)))
		record := w.analyzeRef(ctx, ref)
		if !record.Success {
			w.ui.Verbose("Analysis of %s failed: %s\n", ref.ID, record.Error)
		}
		records = append(records, record)
		bar.Advance()
	}

	s.Analyses = records
	return halt
}

func (w *Workflow) analyzeRef(ctx context.Context, ref scrape.VideoRef) AnalysisRecord {
	isShort := ref.IsShort()
	meta := w.metadata.ResolveMetadata(ctx, ref.ID, isShort)
	if meta.Error != "" {
		w.ui.Verbose("Metadata for %s: %s\n", ref.ID, meta.Error)
	}

	transcript, ok := w.captions.Resolve(ctx, ref.ID)
	source := TranscriptFromCaptions
	if !ok && isShort && w.shorts != nil {
		w.ui.Verbose("No captions for short %s, transcribing audio\n", ref.ID)
		transcript, ok = w.shorts.Transcribe(ctx, ref.ID)
		source = TranscriptFromAudio
	}
	if !ok {
		transcript, source = "", ""
	}

	return w.AnalyzeVideo(ctx, meta, transcript, source)
}

// AnalyzeVideo generates the analysis of one video from its metadata and
// transcript. A generation failure is recorded on the returned record.
func (w *Workflow) AnalyzeVideo(ctx context.Context, meta scrape.VideoMetadata, transcript, source string) AnalysisRecord {
	charCount := utf8.RuneCountInString(transcript)
	hasTranscript := utf8.RuneCountInString(strings.TrimSpace(transcript)) > minTranscriptChars
	isShort := meta.IsShort || scrape.IsShortURL(meta.URL) || (charCount > 0 && charCount < shortFormChars)

	record := AnalysisRecord{
		Video:            meta,
		HasTranscript:    hasTranscript,
		Transcript:       transcript,
		TranscriptSource: source,
		CharCount:        charCount,
		IsShort:          isShort,
	}

	name, limit := PromptAnalysisLong, longTranscriptLimit
	if isShort {
		name, limit = PromptAnalysisShort, shortTranscriptLimit
	}
	body := ""
	if hasTranscript {
		body = truncateRunes(transcript, limit)
	}

	title := meta.DisplayTitle()
	prompt, err := w.prompts.Render(name, AnalysisPromptData{
		Language:      w.language,
		Title:         title,
		TitleLength:   utf8.RuneCountInString(title),
		Transcript:    body,
		HasTranscript: hasTranscript,
		CharCount:     charCount,
	})
	if err == nil {
		record.Analysis, err = w.generate(ctx, StageAnalysis, prompt, ImageFromThumbnail(meta.Thumbnail))
	}
	if err != nil {
		record.Analysis = errorText(err)
		record.Error = err.Error()
		record.HasTranscript = false
		record.Transcript = ""
		record.CharCount = 0
		return record
	}

	record.Success = true
	return record
}

// ExtractPatterns runs stage 2 over the successful analyses and replaces
// s.Patterns and s.CharStats.
func (w *Workflow) ExtractPatterns(ctx context.Context, s *Session) error {
	successes := s.Successful()
	if len(successes) == 0 {
		return ErrNoAnalyses
	}

	counts := make([]int, 0, len(successes))
	for _, r := range successes {
		counts = append(counts, r.CharCount)
	}
	charStats := ComputeCharStats(counts)
	titleStats := ComputeTitleStats(s.Titles())

	var combined strings.Builder
	for i, r := range s.Analyses {
		if !r.Success {
			continue
		}
		title := r.Video.DisplayTitle()
		fmt.Fprintf(&combined, "\n\n---[Video %d: %s (title %d chars, transcript %d chars)]---\n",
			i+1, title, utf8.RuneCountInString(title), r.CharCount)
		combined.WriteString(r.Analysis)
	}

	prompt, err := w.prompts.Render(PromptPatterns, PatternsPromptData{
		Language:   w.language,
		Combined:   truncateRunes(combined.String(), combinedLimit),
		Single:     len(s.Analyses) == 1,
		CharStats:  charStats,
		TitleStats: titleStats,
	})
	if err != nil {
		return err
	}

	text, err := w.generateWithSpinner(ctx, StagePatterns, prompt, "Extracting patterns")
	if err != nil {
		s.Patterns = PatternSummary{Text: errorText(err), Err: err}
		s.CharStats = CharStats{}
		return err
	}

	s.Patterns = PatternSummary{Text: text, CharStats: charStats, TitleStats: titleStats}
	s.CharStats = charStats
	return nil
}

// GenerateIdeas runs stage 3 from the extracted patterns. An empty theme
// lets the model propose one from the analysed titles.
func (w *Workflow) GenerateIdeas(ctx context.Context, s *Session, theme string) error {
	if !s.Patterns.Usable() {
		return ErrPatternsNotReady
	}

	theme = strings.TrimSpace(theme)
	themeText := theme
	if themeText == "" {
		titles := s.Titles()
		themeText = fmt.Sprintf("Propose the best theme based on the analysed videos (%s)",
			strings.Join(titles[:min(len(titles), 3)], ", "))
	}

	if err := w.ideas(ctx, s, truncateRunes(s.Patterns.Text, ideasPatternsLimit), themeText); err != nil {
		return err
	}

	s.Theme = theme
	if theme == "" {
		s.Theme = ProposedTheme
	}
	return nil
}

// GenerateIdeasDirect runs stage 3 from a theme alone, without analyses.
// The clamped target length becomes the session's length statistics.
func (w *Workflow) GenerateIdeasDirect(ctx context.Context, s *Session, theme, reference string, targetChars int) error {
	theme = strings.TrimSpace(theme)
	if theme == "" {
		return ErrThemeRequired
	}
	target := ClampTarget(targetChars)

	reference = strings.TrimSpace(reference)
	if reference == "" {
		reference = "none"
	}
	pattern := fmt.Sprintf("Theme: %s\nReference: %s", theme, reference)

	if err := w.ideas(ctx, s, pattern, theme); err != nil {
		return err
	}

	s.Theme = theme
	s.CharStats = CharStats{Avg: target, Max: target, Min: target}
	return nil
}

func (w *Workflow) ideas(ctx context.Context, s *Session, patterns, theme string) error {
	prompt, err := w.prompts.Render(PromptIdeas, IdeasPromptData{
		Language: w.language,
		Patterns: patterns,
		Theme:    theme,
	})
	if err != nil {
		return err
	}

	text, err := w.generateWithSpinner(ctx, StageIdeas, prompt, "Generating ideas")
	if err != nil {
		s.Ideas = IdeaSet{Text: errorText(err), Parsed: ParseIdeas(""), Err: err}
		return err
	}

	s.Ideas = IdeaSet{Text: text, Parsed: ParseIdeas(text)}
	return nil
}

// GenerateScript runs stage 4 and replaces s.Script. A failed generation
// returns the error text with the error and leaves s.Script alone.
func (w *Workflow) GenerateScript(ctx context.Context, s *Session, req ScriptRequest) (*ScriptResult, error) {
	if !s.Ideas.Usable() {
		return nil, ErrIdeasNotReady
	}

	title, thumbnailWord := s.Ideas.Parsed.Pick(max(req.Plan, 1), max(req.TitleIndex, 1))
	if t := strings.TrimSpace(req.Title); t != "" {
		title = t
	}
	if t := strings.TrimSpace(req.ThumbnailWord); t != "" {
		thumbnailWord = t
	}

	target := req.TargetChars
	if target <= 0 {
		target = s.CharStats.Avg
	}
	if target <= 0 {
		target = DefaultTargetChars
	}

	patterns := fmt.Sprintf("Theme: %s", s.Theme)
	if s.Patterns.Usable() {
		patterns = truncateRunes(s.Patterns.Text, scriptPatternsLimit)
	}

	allocation := Apportion(target)
	prompt, err := w.prompts.Render(PromptScript, ScriptPromptData{
		Language:      w.language,
		Patterns:      patterns,
		Theme:         s.Theme,
		Title:         title,
		ThumbnailWord: thumbnailWord,
		TargetChars:   target,
		Allocation:    allocation,
	})
	if err != nil {
		return nil, err
	}

	result := &ScriptResult{
		Title:         title,
		ThumbnailWord: thumbnailWord,
		TargetChars:   target,
		Allocation:    allocation,
	}

	text, err := w.generateWithSpinner(ctx, StageScript, prompt, "Writing script")
	if err != nil {
		result.Text = errorText(err)
		result.Err = err
		return result, err
	}

	result.Text = text
	result.CharCount = utf8.RuneCountInString(text)
	s.Script = result
	return result, nil
}

func (w *Workflow) generateWithSpinner(ctx context.Context, stage Stage, prompt, description string) (string, error) {
	spinner := w.ui.NewSpinner(description)
	defer spinner.Finish()
	return w.generate(ctx, stage, prompt, nil)
}

func (w *Workflow) generate(ctx context.Context, stage Stage, prompt string, image *Image) (string, error) {
	text, err := w.generator.Generate(ctx, prompt, image)
	if err != nil {
		return "", &GenerationError{Stage: stage, Err: err}
	}
	return text, nil
}

func errorText(err error) string {
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return "error: " + genErr.Err.Error()
	}
	return "error: " + err.Error()
}
