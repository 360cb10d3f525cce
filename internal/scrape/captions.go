package scrape

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
)

// DefaultCaptionLanguages lists the primary languages before their regional variants.
var DefaultCaptionLanguages = []string{"ja", "en", "ja-JP", "en-US"}

// TranscriptSource fetches caption text for a video.
type TranscriptSource interface {
	// Fetch returns the caption text in the given language.
	Fetch(ctx context.Context, videoID, lang string) (string, error)
	// List enumerates the caption tracks offered for the video.
	List(ctx context.Context, videoID string) ([]CaptionTrack, error)
	// FetchTrack returns the text of one listed track.
	FetchTrack(ctx context.Context, videoID string, track CaptionTrack) (string, error)
}

// CaptionResolver finds caption text through a language-priority pass and
// then a pass over every listed track.
type CaptionResolver struct {
	source    TranscriptSource
	languages []string
	verbose   bool
}

// NewCaptionResolver creates a resolver; an empty language list uses DefaultCaptionLanguages.
func NewCaptionResolver(source TranscriptSource, languages []string, verbose bool) *CaptionResolver {
	if len(languages) == 0 {
		languages = DefaultCaptionLanguages
	}
	return &CaptionResolver{source: source, languages: slices.Clone(languages), verbose: verbose}
}

// Resolve returns the caption text for id. Missing captions are not an
// error; the second result is false.
func (r *CaptionResolver) Resolve(ctx context.Context, id string) (string, bool) {
	ctx = withTrackMemo(ctx)
	for _, lang := range r.languages {
		if ctx.Err() != nil {
			return "", false
		}
		text, err := r.source.Fetch(ctx, id, lang)
		if err != nil {
			r.verbosef("No %s captions for %s: %v\n", lang, id, err)
			continue
		}
		if strings.TrimSpace(text) != "" {
			return text, true
		}
	}

	tracks, err := r.source.List(ctx, id)
	if err != nil {
		r.verbosef("Listing caption tracks for %s: %v\n", id, err)
		return "", false
	}

	// manual tracks first, then auto-generated
	for _, generated := range []bool{false, true} {
		for _, track := range tracks {
			if track.Generated != generated {
				continue
			}
			if ctx.Err() != nil {
				return "", false
			}
			text, err := r.source.FetchTrack(ctx, id, track)
			if err != nil {
				r.verbosef("Caption track %s for %s: %v\n", track.LanguageCode, id, err)
				continue
			}
			if strings.TrimSpace(text) != "" {
				return text, true
			}
		}
	}
	return "", false
}

func (r *CaptionResolver) verbosef(format string, args ...any) {
	if r.verbose {
		fmt.Printf(format, args...)
	}
}

type trackMemoKey struct{}

// trackMemo holds the track listings of one resolution. Caption URLs are
// signed and expire, so listings never outlive it.
type trackMemo struct {
	mu     sync.Mutex
	tracks map[string][]CaptionTrack
}

func withTrackMemo(ctx context.Context) context.Context {
	if trackMemoFrom(ctx) != nil {
		return ctx
	}
	return context.WithValue(ctx, trackMemoKey{}, &trackMemo{tracks: map[string][]CaptionTrack{}})
}

func trackMemoFrom(ctx context.Context) *trackMemo {
	m, _ := ctx.Value(trackMemoKey{}).(*trackMemo)
	return m
}

func (m *trackMemo) get(id string) ([]CaptionTrack, bool) {
	if m == nil {
		return nil, false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	tracks, ok := m.tracks[id]
	return tracks, ok
}

func (m *trackMemo) put(id string, tracks []CaptionTrack) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tracks[id] = tracks
}
