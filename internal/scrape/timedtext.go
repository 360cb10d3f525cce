package scrape

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

var (
	// ErrNoPlayerResponse means the watch page carried no player data.
	ErrNoPlayerResponse = errors.New("no player response in page")
	// ErrNoCaptionTrack means no track exists for the requested language.
	ErrNoCaptionTrack = errors.New("no caption track for language")
)

const captionTracksPath = "captions.playerCaptionsTracklistRenderer.captionTracks"

// PageTranscripts reads caption tracks from the player data embedded in the
// watch page and downloads them as timed text.
type PageTranscripts struct {
	client *Client
}

// NewPageTranscripts creates a TranscriptSource backed by c.
func NewPageTranscripts(c *Client) *PageTranscripts {
	return &PageTranscripts{client: c}
}

// List implements TranscriptSource. Inside a CaptionResolver.Resolve call
// the watch page is fetched once per video; failures are never reused.
func (p *PageTranscripts) List(ctx context.Context, videoID string) ([]CaptionTrack, error) {
	memo := trackMemoFrom(ctx)
	if tracks, ok := memo.get(videoID); ok {
		return tracks, nil
	}
	tracks, err := p.list(ctx, videoID)
	if err != nil {
		return nil, err
	}
	memo.put(videoID, tracks)
	return tracks, nil
}

func (p *PageTranscripts) list(ctx context.Context, videoID string) ([]CaptionTrack, error) {
	body, err := p.client.fetchPage(ctx, p.client.baseURL+"/watch?v="+videoID, p.client.pageTimeout)
	if err != nil {
		return nil, fmt.Errorf("fetching watch page: %w", err)
	}
	raw, ok := LocateRaw(body, InitialPlayerResponse)
	if !ok {
		return nil, ErrNoPlayerResponse
	}
	return parseCaptionTracks(raw), nil
}

// Fetch implements TranscriptSource. A manual track in lang is preferred over
// a generated one.
func (p *PageTranscripts) Fetch(ctx context.Context, videoID, lang string) (string, error) {
	tracks, err := p.List(ctx, videoID)
	if err != nil {
		return "", err
	}
	for _, generated := range []bool{false, true} {
		for _, track := range tracks {
			if track.LanguageCode == lang && track.Generated == generated {
				return p.FetchTrack(ctx, videoID, track)
			}
		}
	}
	return "", fmt.Errorf("%w %s", ErrNoCaptionTrack, lang)
}

// FetchTrack implements TranscriptSource.
func (p *PageTranscripts) FetchTrack(ctx context.Context, _ string, track CaptionTrack) (string, error) {
	if track.BaseURL == "" {
		return "", fmt.Errorf("caption track %s has no URL", track.LanguageCode)
	}
	body, status, err := p.client.fetch(ctx, track.BaseURL, p.client.pageTimeout)
	if err != nil {
		return "", fmt.Errorf("fetching timed text: %w", err)
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("%w %d for timed text", ErrUnexpectedStatus, status)
	}
	return ParseTimedText(body)
}

func parseCaptionTracks(playerResponse []byte) []CaptionTrack {
	var tracks []CaptionTrack
	gjson.GetBytes(playerResponse, captionTracksPath).ForEach(func(_, t gjson.Result) bool {
		name := t.Get("name.simpleText").String()
		if name == "" {
			name = t.Get("name.runs.0.text").String()
		}
		tracks = append(tracks, CaptionTrack{
			LanguageCode: t.Get("languageCode").String(),
			Name:         name,
			BaseURL:      t.Get("baseUrl").String(),
			Generated:    t.Get("kind").String() == "asr",
		})
		return true
	})
	return tracks
}

// timedText covers both the legacy <transcript><text> format and the
// srv3 <timedtext><body><p> format.
type timedText struct {
	Lines      []string `xml:"text"`
	Paragraphs []struct {
		Text     string   `xml:",chardata"`
		Segments []string `xml:"s"`
	} `xml:"body>p"`
}

// ParseTimedText converts a timed text document to plain text, one space
// between segments.
func ParseTimedText(data []byte) (string, error) {
	var tt timedText
	if err := xml.Unmarshal(data, &tt); err != nil {
		return "", fmt.Errorf("parsing timed text: %w", err)
	}

	var parts []string
	add := func(s string) {
		s = strings.Join(strings.Fields(html.UnescapeString(s)), " ")
		if s != "" {
			parts = append(parts, s)
		}
	}
	for _, line := range tt.Lines {
		add(line)
	}
	for _, p := range tt.Paragraphs {
		if len(p.Segments) > 0 {
			add(strings.Join(p.Segments, ""))
			continue
		}
		add(p.Text)
	}
	return strings.Join(parts, " "), nil
}
